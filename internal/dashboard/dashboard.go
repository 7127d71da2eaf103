package dashboard

import (
	"context"
	"encoding/json"
	"log"

	"pricehawk/internal/history"
	"pricehawk/internal/models"
)

// Stats are the aggregates the dashboard derives from the local history.
type Stats struct {
	TotalComparisons int                     `json:"total_comparisons"`
	Wins             map[models.Platform]int `json:"wins"`
	TotalSavings     float64                 `json:"total_savings"`
}

// ComputeLocal derives dashboard statistics from the retained history.
// Ties count toward neither platform; savings sum the recorded price gaps.
func ComputeLocal(entries []history.Entry) Stats {
	stats := Stats{
		TotalComparisons: len(entries),
		Wins: map[models.Platform]int{
			models.PlatformFlipkart: 0,
			models.PlatformAmazon:   0,
		},
	}

	for _, entry := range entries {
		switch entry.Result.Winner {
		case string(models.PlatformFlipkart):
			stats.Wins[models.PlatformFlipkart]++
		case string(models.PlatformAmazon):
			stats.Wins[models.PlatformAmazon]++
		}
		if diff := entry.Result.PriceDifference; diff != nil {
			stats.TotalSavings += diff.Amount
		}
	}

	return stats
}

// Snapshot is the remote dashboard payload, kept opaque, or the degraded
// sentinel substituted when the remote source cannot be reached.
type Snapshot struct {
	Fallback bool
	Remote   json.RawMessage
}

// MarshalJSON renders a real snapshot exactly as the backend sent it and
// the degraded sentinel as {"fallback": true}, so consumers can tell the
// two apart by shape.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	if s.Fallback {
		return []byte(`{"fallback":true}`), nil
	}
	return s.Remote, nil
}

// RemoteSource is the outbound boundary to the remote aggregate source.
type RemoteSource interface {
	Dashboard(ctx context.Context) (json.RawMessage, error)
}

// Service fetches the remote dashboard snapshot. Failures never escalate
// past this boundary: the caller always gets a renderable snapshot.
type Service struct {
	source RemoteSource
}

func NewService(source RemoteSource) *Service {
	return &Service{source: source}
}

// Fetch calls the remote aggregate source fresh on every invocation;
// neither success nor failure is cached. Any failure yields the degraded
// sentinel rather than an error.
func (s *Service) Fetch(ctx context.Context) Snapshot {
	payload, err := s.source.Dashboard(ctx)
	if err != nil {
		log.Printf("[DASHBOARD] Remote snapshot unavailable: %v", err)
		return Snapshot{Fallback: true}
	}
	return Snapshot{Remote: payload}
}
