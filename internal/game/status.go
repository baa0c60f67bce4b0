package game

import "fmt"

// Status is the lifecycle state of a session. Ended is terminal.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusPaused
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusEnded:
		return "ended"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for _, candidate := range []Status{StatusIdle, StatusRunning, StatusPaused, StatusEnded} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown session status %q", text)
}

// EndReason says why a session ended
type EndReason string

const (
	EndOutOfLives EndReason = "out_of_lives"
	EndTimeUp     EndReason = "time_up"
	EndExhausted  EndReason = "content_exhausted"
	EndAbandoned  EndReason = "abandoned"
)

