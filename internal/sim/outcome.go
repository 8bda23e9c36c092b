package sim

// State is the session state machine position.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateWon
	StateLost
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateWon:
		return "won"
	case StateLost:
		return "lost"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends a session.
func (s State) Terminal() bool { return s == StateWon || s == StateLost }

// LossCause records why a session was lost.
type LossCause int

const (
	LossNone LossCause = iota
	LossCaught
	LossSelfCollision
)

func (c LossCause) String() string {
	switch c {
	case LossCaught:
		return "caught"
	case LossSelfCollision:
		return "self_collision"
	default:
		return "none"
	}
}
