package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONStore keeps every record in one JSON document of the form
// {"users":[...]}. Writes go to a temp file that is renamed over the target.
type JSONStore struct {
	path string

	mu   sync.Mutex
	data jsonDocument
}

type jsonDocument struct {
	Users []Record `json:"users"`
}

// OpenJSONStore loads path, creating it with an empty user list if missing.
func OpenJSONStore(path string) (*JSONStore, error) {
	s := &JSONStore{path: path, data: jsonDocument{Users: []Record{}}}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := s.flush(); err != nil {
			return nil, err
		}
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.data); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	if s.data.Users == nil {
		s.data.Users = []Record{}
	}
	return s, nil
}

func (s *JSONStore) FindByUsername(_ context.Context, username string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(username)
	if i < 0 {
		return nil, ErrNotFound
	}
	r := s.data.Users[i].clone()
	return &r, nil
}

func (s *JSONStore) Create(_ context.Context, r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(r.Username) >= 0 {
		return fmt.Errorf("create %q: duplicate username", r.Username)
	}
	s.data.Users = append(s.data.Users, r.clone())
	if err := s.flush(); err != nil {
		s.data.Users = s.data.Users[:len(s.data.Users)-1]
		return err
	}
	return nil
}

func (s *JSONStore) Update(_ context.Context, r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(r.Username)
	if i < 0 {
		return ErrNotFound
	}
	prev := s.data.Users[i]
	s.data.Users[i] = r.clone()
	if err := s.flush(); err != nil {
		s.data.Users[i] = prev
		return err
	}
	return nil
}

func (s *JSONStore) List(_ context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.data.Users))
	for i := range s.data.Users {
		out[i] = s.data.Users[i].clone()
	}
	return out, nil
}

// Ping checks that the backing directory is still reachable.
func (s *JSONStore) Ping(_ context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}

func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) indexOf(username string) int {
	key := usernameKey(username)
	for i := range s.data.Users {
		if usernameKey(s.data.Users[i].Username) == key {
			return i
		}
	}
	return -1
}

// flush writes the document atomically. Callers hold mu.
func (s *JSONStore) flush() error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode users: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
