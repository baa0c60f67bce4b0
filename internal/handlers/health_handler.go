package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Startup tracks server initialization so the health endpoint can report
// progress before the API is ready.
type Startup struct {
	mu       sync.RWMutex
	ready    bool
	current  string
	progress int
	steps    []StartupStep
}

type StartupStep struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// NewStartup creates a tracker for the named steps
func NewStartup(steps ...string) *Startup {
	s := &Startup{current: "Initializing..."}
	for _, name := range steps {
		s.steps = append(s.steps, StartupStep{Name: name})
	}
	return s
}

// SetCurrentStep updates the current initialization step
func (s *Startup) SetCurrentStep(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = step
}

// CompleteStep marks a step as completed and updates progress
func (s *Startup) CompleteStep(stepName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.steps {
		if s.steps[i].Name == stepName {
			s.steps[i].Completed = true
			break
		}
	}

	if len(s.steps) == 0 {
		return
	}
	completed := 0
	for _, step := range s.steps {
		if step.Completed {
			completed++
		}
	}
	s.progress = (completed * 100) / len(s.steps)
}

// MarkReady marks the server as fully initialized
func (s *Startup) MarkReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
	s.current = "Server ready"
	s.progress = 100
}

// IsReady returns whether the server is fully initialized
func (s *Startup) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

type healthResponse struct {
	Ready    bool          `json:"ready"`
	Current  string        `json:"current"`
	Progress int           `json:"progress"`
	Steps    []StartupStep `json:"steps"`
	Database string        `json:"database,omitempty"`
}

// Pinger checks a backing store
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health reports startup progress and database reachability. It answers 503
// until the server is ready and while the database is unreachable.
func (s *Startup) Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		resp := healthResponse{
			Ready:    s.ready,
			Current:  s.current,
			Progress: s.progress,
			Steps:    append([]StartupStep(nil), s.steps...),
		}
		s.mu.RUnlock()

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		} else if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			resp.Database = "ok"
			if err := db.PingContext(ctx); err != nil {
				resp.Database = "unreachable"
				status = http.StatusServiceUnavailable
			}
		}

		if status != http.StatusOK {
			writeEnvelope(w, status, envelope{Error: true, Data: resp, Message: resp.Current})
			return
		}
		respondJSON(w, status, resp)
	}
}
