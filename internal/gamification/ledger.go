// Package gamification tracks points and badges earned by teaching.
package gamification

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ziadkadry99/fixbot/internal/config"
	"github.com/ziadkadry99/fixbot/internal/storage"
)

// Profile is the persisted state of one user.
type Profile struct {
	Points int    `json:"points"`
	Badge  string `json:"badge"`
}

// Summary is a profile with its tier context, for display.
type Summary struct {
	Username       string             `json:"username"`
	Points         int                `json:"points"`
	Badge          string             `json:"badge"`
	Tiers          []config.BadgeTier `json:"tiers"`
	NextBadge      string             `json:"next_badge,omitempty"`
	PointsToNext   int                `json:"points_to_next,omitempty"`
	HighestReached bool               `json:"highest_reached"`
}

// Standing is one leaderboard row.
type Standing struct {
	Username string `json:"username"`
	Points   int    `json:"points"`
	Badge    string `json:"badge"`
}

// Ledger holds every user profile keyed by bare username.
type Ledger struct {
	mu       sync.RWMutex
	backend  storage.Backend
	tiers    []config.BadgeTier
	profiles map[string]Profile
}

// NewLedger loads profiles from backend. tiers must be in ascending
// point order starting at zero; config.Validate enforces that.
func NewLedger(ctx context.Context, backend storage.Backend, tiers []config.BadgeTier, logger *zap.Logger) (*Ledger, error) {
	if len(tiers) == 0 {
		tiers = config.DefaultBadges
	}
	l := &Ledger{
		backend:  backend,
		tiers:    append([]config.BadgeTier(nil), tiers...),
		profiles: make(map[string]Profile),
	}
	var loaded map[string]Profile
	ok, err := storage.LoadJSON(ctx, backend, storage.KeyProfiles, &loaded, logger)
	if err != nil {
		return nil, err
	}
	if ok {
		for name, p := range loaded {
			if p.Points < 0 {
				p.Points = 0
			}
			p.Badge = l.BadgeFor(p.Points)
			l.profiles[name] = p
		}
	}
	return l, nil
}

// BadgeFor returns the highest tier whose threshold is at most points.
func (l *Ledger) BadgeFor(points int) string {
	badge := l.tiers[0].Title
	for _, t := range l.tiers {
		if points >= t.Points {
			badge = t.Title
		}
	}
	return badge
}

// NextTier returns the first tier above points, if any.
func (l *Ledger) NextTier(points int) (config.BadgeTier, bool) {
	for _, t := range l.tiers {
		if t.Points > points {
			return t, true
		}
	}
	return config.BadgeTier{}, false
}

// Tiers returns the badge tiers in ascending order.
func (l *Ledger) Tiers() []config.BadgeTier {
	return append([]config.BadgeTier(nil), l.tiers...)
}

// Ensure creates a zero-point profile for user if none exists.
func (l *Ledger) Ensure(ctx context.Context, user string) (Profile, error) {
	user = strings.TrimSpace(user)
	l.mu.Lock()
	defer l.mu.Unlock()

	if p, ok := l.profiles[user]; ok {
		return p, nil
	}
	p := Profile{Points: 0, Badge: l.BadgeFor(0)}
	l.profiles[user] = p
	return p, l.flush(ctx)
}

// Reward adds delta points to user, creating the profile if needed, and
// recomputes the badge.
func (l *Ledger) Reward(ctx context.Context, user string, delta int) (Profile, error) {
	user = strings.TrimSpace(user)
	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.profiles[user]
	p.Points += delta
	if p.Points < 0 {
		p.Points = 0
	}
	p.Badge = l.BadgeFor(p.Points)
	l.profiles[user] = p
	return p, l.flush(ctx)
}

// Profile returns user's profile and whether it exists.
func (l *Ledger) Profile(user string) (Profile, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.profiles[strings.TrimSpace(user)]
	return p, ok
}

// Summary describes user's standing relative to the tiers. Unknown users
// are reported with zero points.
func (l *Ledger) Summary(user string) Summary {
	p, ok := l.Profile(user)
	if !ok {
		p = Profile{Badge: l.BadgeFor(0)}
	}
	s := Summary{
		Username: strings.TrimSpace(user),
		Points:   p.Points,
		Badge:    p.Badge,
		Tiers:    l.Tiers(),
	}
	if next, ok := l.NextTier(p.Points); ok {
		s.NextBadge = next.Title
		s.PointsToNext = next.Points - p.Points
	} else {
		s.HighestReached = true
	}
	return s
}

// Leaderboard returns the top n users by points, ties broken by name.
// A non-positive n returns everyone.
func (l *Ledger) Leaderboard(n int) []Standing {
	l.mu.RLock()
	out := make([]Standing, 0, len(l.profiles))
	for name, p := range l.profiles {
		out = append(out, Standing{Username: name, Points: p.Points, Badge: p.Badge})
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].Username < out[j].Username
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func (l *Ledger) flush(ctx context.Context) error {
	if err := storage.SaveJSON(ctx, l.backend, storage.KeyProfiles, l.profiles); err != nil {
		return fmt.Errorf("persisting profiles: %w", err)
	}
	return nil
}
