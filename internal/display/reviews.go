package display

import (
	"sync"

	"pricehawk/internal/models"
)

// collapsedReviewCount is how many reviews are surfaced before expanding.
const collapsedReviewCount = 3

// ReviewToggles tracks which platforms' review lists are expanded. Every
// platform starts collapsed; discarding the object resets all flags.
type ReviewToggles struct {
	mu       sync.Mutex
	expanded map[models.Platform]bool
}

func NewReviewToggles() *ReviewToggles {
	return &ReviewToggles{expanded: make(map[models.Platform]bool)}
}

func (t *ReviewToggles) IsExpanded(platform models.Platform) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expanded[platform]
}

// Toggle flips the flag for one platform, leaving all others untouched,
// and returns the new value.
func (t *ReviewToggles) Toggle(platform models.Platform) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expanded[platform] = !t.expanded[platform]
	return t.expanded[platform]
}

// VisibleCount returns how many of a platform's reviews should be shown:
// all of them when expanded, at most three when collapsed.
func (t *ReviewToggles) VisibleCount(platform models.Platform, totalReviews int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.expanded[platform] || totalReviews < collapsedReviewCount {
		return totalReviews
	}
	return collapsedReviewCount
}
