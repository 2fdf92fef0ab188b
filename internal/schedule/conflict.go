package schedule

import (
	"time"

	"github.com/draftly/post-scheduler/internal/domain"
)

// ConflictPolicy selects how a candidate selection collides with an already
// scheduled post.
type ConflictPolicy string

const (
	// PolicySameDay flags every scheduled post on the selected calendar day,
	// regardless of time. This is the canonical policy.
	PolicySameDay ConflictPolicy = "same_day"

	// PolicySameInstant flags only posts scheduled at the exact same minute.
	// Deprecated: retained for the legacy scheduling flow.
	PolicySameInstant ConflictPolicy = "same_instant"
)

// DetectConflicts returns the scheduled posts in window that collide with the
// selection under the given policy. The post identified by excludeID never
// appears in its own conflict set.
func DetectConflicts(policy ConflictPolicy, sel Selection, window []*domain.Post, excludeID string) ([]*domain.Post, error) {
	loc, err := time.LoadLocation(sel.Timezone)
	if err != nil {
		return nil, err
	}

	var candidate time.Time
	if policy == PolicySameInstant {
		candidate, err = Instant(sel)
		if err != nil {
			return nil, err
		}
	}

	var conflicts []*domain.Post
	for _, p := range window {
		if p.ID == excludeID || !p.IsScheduled() {
			continue
		}

		switch policy {
		case PolicySameInstant:
			if p.ScheduledAt.Truncate(time.Minute).Equal(candidate.Truncate(time.Minute)) {
				conflicts = append(conflicts, p)
			}
		default:
			if sameYMD(p.ScheduledAt.In(loc), sel.Date) {
				conflicts = append(conflicts, p)
			}
		}
	}

	return conflicts, nil
}
