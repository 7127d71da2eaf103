package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pricehawk/internal/backend"
	"pricehawk/internal/history"
	"pricehawk/internal/models"
)

// fakeBackend resolves each Compare call through the compare func, which
// receives the 1-based call number. Tests gate individual calls through
// channels to force a delivery order.
type fakeBackend struct {
	mu      sync.Mutex
	calls   int
	compare func(call int, flipkartURL, amazonURL string) (*models.ComparisonResult, error)
}

func (f *fakeBackend) Compare(ctx context.Context, flipkartURL, amazonURL string) (*models.ComparisonResult, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	return f.compare(call, flipkartURL, amazonURL)
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestSession(t *testing.T, fb *fakeBackend) (*Session, *history.Store) {
	t.Helper()
	store, err := history.NewStore(history.DefaultLimit)
	if err != nil {
		t.Fatalf("Failed to create history store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return New(fb, store), store
}

func winnerResult(winner string) *models.ComparisonResult {
	return &models.ComparisonResult{
		Flipkart: &models.Product{Title: "Phone A", Price: "₹9,999"},
		Amazon:   &models.Product{Title: "Phone B", Price: "₹11,499"},
		Winner:   winner,
		PriceDifference: &models.PriceDifference{
			Amount:     5000,
			CheaperOn:  models.PlatformFlipkart,
			Percentage: 12,
		},
	}
}

func TestSubmitValidation(t *testing.T) {
	fb := &fakeBackend{compare: func(int, string, string) (*models.ComparisonResult, error) {
		return winnerResult("flipkart"), nil
	}}
	sess, store := newTestSession(t, fb)

	<-sess.Submit(context.Background(), "   ", "")

	snap := sess.State()
	if snap.Phase != PhaseError {
		t.Fatalf("Phase = %s, want error", snap.Phase)
	}
	if snap.ErrorKind != ErrorValidation {
		t.Errorf("ErrorKind = %s, want validation", snap.ErrorKind)
	}
	if snap.ErrorMessage != "Please enter at least one product URL" {
		t.Errorf("ErrorMessage = %q", snap.ErrorMessage)
	}
	if fb.callCount() != 0 {
		t.Errorf("Expected zero outbound calls, got %d", fb.callCount())
	}

	n, err := store.Len()
	if err != nil {
		t.Fatalf("Failed to count history: %v", err)
	}
	if n != 0 {
		t.Errorf("History length = %d, want 0", n)
	}
}

func TestSubmitSuccessCommitsHistory(t *testing.T) {
	fb := &fakeBackend{compare: func(_ int, flipkartURL, amazonURL string) (*models.ComparisonResult, error) {
		if flipkartURL != "urlA" || amazonURL != "urlB" {
			t.Errorf("Backend got (%q, %q)", flipkartURL, amazonURL)
		}
		return winnerResult("flipkart"), nil
	}}
	sess, store := newTestSession(t, fb)

	<-sess.Submit(context.Background(), " urlA ", "urlB")

	snap := sess.State()
	if snap.Phase != PhaseSuccess {
		t.Fatalf("Phase = %s, want success (error: %s)", snap.Phase, snap.ErrorMessage)
	}
	if snap.Result == nil || snap.Result.Winner != "flipkart" {
		t.Fatal("Expected the comparison result to be displayed")
	}

	entries, err := store.All()
	if err != nil {
		t.Fatalf("Failed to list history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("History length = %d, want 1", len(entries))
	}
	if entries[0].Result.Winner != "flipkart" {
		t.Errorf("Committed winner = %q", entries[0].Result.Winner)
	}
	if entries[0].Result.PriceDifference == nil || entries[0].Result.PriceDifference.Amount != 5000 {
		t.Error("Committed price difference did not round-trip")
	}
}

func TestSubmitSingleSource(t *testing.T) {
	fb := &fakeBackend{compare: func(_ int, flipkartURL, amazonURL string) (*models.ComparisonResult, error) {
		if flipkartURL != "" {
			t.Errorf("Expected empty flipkart URL, got %q", flipkartURL)
		}
		return &models.ComparisonResult{
			Amazon: &models.Product{Title: "Phone B"},
			Winner: "amazon",
		}, nil
	}}
	sess, _ := newTestSession(t, fb)

	<-sess.Submit(context.Background(), "", "urlB")

	snap := sess.State()
	if snap.Phase != PhaseSuccess {
		t.Fatalf("Phase = %s, want success", snap.Phase)
	}
	if snap.Result.Amazon == nil || snap.Result.Flipkart != nil {
		t.Error("Expected a single-source result")
	}
}

func TestSubmitDomainError(t *testing.T) {
	fb := &fakeBackend{compare: func(int, string, string) (*models.ComparisonResult, error) {
		return nil, &backend.CompareError{Message: "Invalid URL"}
	}}
	sess, store := newTestSession(t, fb)

	<-sess.Submit(context.Background(), "urlA", "")

	snap := sess.State()
	if snap.Phase != PhaseError {
		t.Fatalf("Phase = %s, want error", snap.Phase)
	}
	if snap.ErrorKind != ErrorComparisonFailed {
		t.Errorf("ErrorKind = %s, want comparison_failed", snap.ErrorKind)
	}
	if snap.ErrorMessage != "Invalid URL" {
		t.Errorf("ErrorMessage = %q, want the backend message verbatim", snap.ErrorMessage)
	}

	n, err := store.Len()
	if err != nil {
		t.Fatalf("Failed to count history: %v", err)
	}
	if n != 0 {
		t.Errorf("History length = %d, want 0", n)
	}
}

func TestSubmitTransportError(t *testing.T) {
	fb := &fakeBackend{compare: func(int, string, string) (*models.ComparisonResult, error) {
		return nil, errors.New("connection refused")
	}}
	sess, _ := newTestSession(t, fb)

	<-sess.Submit(context.Background(), "urlA", "")

	snap := sess.State()
	if snap.ErrorKind != ErrorBackendUnavailable {
		t.Errorf("ErrorKind = %s, want backend_unavailable", snap.ErrorKind)
	}
	if snap.ErrorMessage == "Invalid URL" || snap.ErrorMessage == "" {
		t.Errorf("Expected a distinct transport message, got %q", snap.ErrorMessage)
	}
}

func TestSubmitEmptyPayloadIsComparisonFailure(t *testing.T) {
	fb := &fakeBackend{compare: func(int, string, string) (*models.ComparisonResult, error) {
		return &models.ComparisonResult{Status: "success"}, nil
	}}
	sess, store := newTestSession(t, fb)

	<-sess.Submit(context.Background(), "urlA", "urlB")

	snap := sess.State()
	if snap.Phase != PhaseError || snap.ErrorKind != ErrorComparisonFailed {
		t.Fatalf("Expected a comparison failure, got phase %s kind %s", snap.Phase, snap.ErrorKind)
	}

	n, err := store.Len()
	if err != nil {
		t.Fatalf("Failed to count history: %v", err)
	}
	if n != 0 {
		t.Error("A productless payload must never reach the history")
	}
}

func TestNewSubmitClearsPreviousError(t *testing.T) {
	fb := &fakeBackend{compare: func(call int, _, _ string) (*models.ComparisonResult, error) {
		if call == 1 {
			return nil, &backend.CompareError{Message: "Invalid URL"}
		}
		return winnerResult("amazon"), nil
	}}
	sess, _ := newTestSession(t, fb)

	<-sess.Submit(context.Background(), "badURL", "")
	<-sess.Submit(context.Background(), "urlA", "urlB")

	snap := sess.State()
	if snap.Phase != PhaseSuccess {
		t.Fatalf("Phase = %s, want success", snap.Phase)
	}
	if snap.ErrorKind != "" || snap.ErrorMessage != "" {
		t.Errorf("Stale error leaked into a later submission: %s %q", snap.ErrorKind, snap.ErrorMessage)
	}
}

func TestSupersededCompletionIsDiscarded(t *testing.T) {
	firstGate := make(chan struct{})
	secondGate := make(chan struct{})
	fb := &fakeBackend{compare: func(_ int, flipkartURL, _ string) (*models.ComparisonResult, error) {
		if flipkartURL == "urlA" {
			<-firstGate
			return winnerResult("flipkart"), nil
		}
		<-secondGate
		return winnerResult("amazon"), nil
	}}
	sess, store := newTestSession(t, fb)

	// Second submit lands while the first is still pending.
	firstDone := sess.Submit(context.Background(), "urlA", "")
	secondDone := sess.Submit(context.Background(), "", "urlB")

	// The newer request resolves first and wins.
	close(secondGate)
	<-secondDone

	snap := sess.State()
	if snap.Phase != PhaseSuccess || snap.Result.Winner != "amazon" {
		t.Fatalf("Expected the second submission's result, got phase %s winner %v", snap.Phase, snap.Result)
	}

	// The superseded request's late completion must be discarded.
	close(firstGate)
	<-firstDone

	snap = sess.State()
	if snap.Result == nil || snap.Result.Winner != "amazon" {
		t.Fatal("A stale completion overwrote the session state")
	}

	entries, err := store.All()
	if err != nil {
		t.Fatalf("Failed to list history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("History length = %d, want 1 (stale result must not be committed)", len(entries))
	}
	if entries[0].Result.Winner != "amazon" {
		t.Errorf("Committed winner = %q, want amazon", entries[0].Result.Winner)
	}
}

func TestPendingStateWhileInFlight(t *testing.T) {
	gate := make(chan struct{})
	fb := &fakeBackend{compare: func(int, string, string) (*models.ComparisonResult, error) {
		<-gate
		return winnerResult("flipkart"), nil
	}}
	sess, _ := newTestSession(t, fb)

	done := sess.Submit(context.Background(), "urlA", "")

	snap := sess.State()
	if snap.Phase != PhasePending {
		t.Fatalf("Phase = %s, want pending", snap.Phase)
	}
	if snap.Result != nil || snap.ErrorMessage != "" {
		t.Error("Pending state must clear the previous result and error")
	}

	close(gate)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Submission never completed")
	}
}
