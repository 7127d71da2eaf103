package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"pricehawk/internal/backend"
	"pricehawk/internal/history"
	"pricehawk/internal/models"
)

// Phase is the lifecycle state of the current submission.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhasePending Phase = "pending"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// ErrorKind classifies a failed submission.
type ErrorKind string

const (
	ErrorValidation         ErrorKind = "validation"
	ErrorComparisonFailed   ErrorKind = "comparison_failed"
	ErrorBackendUnavailable ErrorKind = "backend_unavailable"
)

const (
	validationMessage  = "Please enter at least one product URL"
	unavailableMessage = "Cannot connect to the comparison backend"
	emptyResultMessage = "No product data could be extracted"
)

// Comparer is the outbound boundary to the analysis backend.
type Comparer interface {
	Compare(ctx context.Context, flipkartURL, amazonURL string) (*models.ComparisonResult, error)
}

// Snapshot is a point-in-time copy of the session state for display. It is
// the single source of truth for what the view shows.
type Snapshot struct {
	Phase        Phase                    `json:"phase"`
	ErrorKind    ErrorKind                `json:"error_kind,omitempty"`
	ErrorMessage string                   `json:"error,omitempty"`
	Result       *models.ComparisonResult `json:"result,omitempty"`
}

// Session drives one comparison request at a time through the
// Idle -> Pending -> Success/Error lifecycle and commits successful
// results into its history store.
//
// Submissions follow last-submission-wins: a new Submit while one is
// pending advances the generation counter, and a completion carrying a
// stale generation is discarded instead of applied. That discard check is
// the only form of cancellation; the superseded request itself is left to
// finish in the background.
type Session struct {
	backend Comparer
	history *history.Store

	mu         sync.Mutex
	generation uint64
	phase      Phase
	errKind    ErrorKind
	errMsg     string
	result     *models.ComparisonResult
}

func New(backend Comparer, hist *history.Store) *Session {
	return &Session{
		backend: backend,
		history: hist,
		phase:   PhaseIdle,
	}
}

// Submit starts a comparison for up to two product URLs. When both trim to
// empty the session moves straight to a validation error and no outbound
// call is made. The returned channel closes once this submission's
// completion has been applied or discarded; callers read State afterwards
// for the outcome.
func (s *Session) Submit(ctx context.Context, rawFlipkartURL, rawAmazonURL string) <-chan struct{} {
	done := make(chan struct{})

	flipkartURL := strings.TrimSpace(rawFlipkartURL)
	amazonURL := strings.TrimSpace(rawAmazonURL)

	s.mu.Lock()
	if flipkartURL == "" && amazonURL == "" {
		s.phase = PhaseError
		s.errKind = ErrorValidation
		s.errMsg = validationMessage
		s.result = nil
		s.mu.Unlock()
		close(done)
		return done
	}

	s.generation++
	gen := s.generation
	s.phase = PhasePending
	s.errKind = ""
	s.errMsg = ""
	s.result = nil
	s.mu.Unlock()

	go func() {
		defer close(done)
		result, err := s.backend.Compare(ctx, flipkartURL, amazonURL)
		s.apply(gen, result, err)
	}()

	return done
}

// apply delivers a completion. Completions are applied in delivery order;
// a stale generation means the submission was superseded and its outcome
// must not touch state.
func (s *Session) apply(gen uint64, result *models.ComparisonResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		log.Printf("[SESSION] Discarding completion for superseded submission (generation %d, current %d)", gen, s.generation)
		return
	}

	if err == nil && !result.HasProduct() {
		// A 200 with both product slots empty means the backend could not
		// extract anything usable from either page.
		err = &backend.CompareError{Message: emptyResultMessage}
	}

	if err != nil {
		s.phase = PhaseError
		s.result = nil

		var cmpErr *backend.CompareError
		if errors.As(err, &cmpErr) {
			s.errKind = ErrorComparisonFailed
			s.errMsg = cmpErr.Message
		} else {
			log.Printf("[SESSION] Comparison request failed: %v", err)
			s.errKind = ErrorBackendUnavailable
			s.errMsg = unavailableMessage
		}
		return
	}

	s.phase = PhaseSuccess
	s.errKind = ""
	s.errMsg = ""
	s.result = result

	if _, err := s.history.Record(result); err != nil {
		log.Printf("[SESSION] Failed to record comparison in history: %v", err)
	}
}

// State returns a copy of the current lifecycle state.
func (s *Session) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Phase:        s.phase,
		ErrorKind:    s.errKind,
		ErrorMessage: s.errMsg,
		Result:       s.result,
	}
}

// History exposes the store this session commits into.
func (s *Session) History() *history.Store {
	return s.history
}
