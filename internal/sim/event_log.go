package sim

import (
	"fmt"
	"strings"
)

// Event is one recorded engine event.
type Event struct {
	Tick     int
	Category string  // session, state, pickup, speed, direction, pursuer, reward, leaderboard
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the event as a fixed-width log line.
//
//	[T=042] pickup      collect          (11,10) score=10
func (e Event) String() string {
	return fmt.Sprintf("[T=%03d] %-11s %-16s %s", e.Tick, e.Category, e.Key, e.Value)
}

// EventLog collects structured engine events. It is unbounded and
// machine-readable; verbose mode adds per-tick position entries.
type EventLog struct {
	entries []Event
	verbose bool
}

// NewEventLog creates an EventLog.
func NewEventLog(verbose bool) *EventLog {
	return &EventLog{verbose: verbose}
}

// Add records a new entry.
func (l *EventLog) Add(tick int, category, key, value string, numVal float64) {
	l.entries = append(l.entries, Event{
		Tick:     tick,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (l *EventLog) AddVerbose(tick int, category, key, value string, numVal float64) {
	if !l.verbose {
		return
	}
	l.Add(tick, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (l *EventLog) Entries() []Event {
	return l.entries
}

// Filter returns entries matching category and/or key. Empty matches any.
func (l *EventLog) Filter(category, key string) []Event {
	var out []Event
	for _, e := range l.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// CountCategory returns how many entries match category and key.
func (l *EventLog) CountCategory(category, key string) int {
	return len(l.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key.
func (l *EventLog) LastOf(category, key string) (Event, bool) {
	entries := l.Filter(category, key)
	if len(entries) == 0 {
		return Event{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry reports whether an entry matches category, key and value substring.
func (l *EventLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range l.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log, one line per entry.
func (l *EventLog) Format() string {
	var sb strings.Builder
	for _, e := range l.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
