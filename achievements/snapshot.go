package achievements

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"smartbeans/grader"
	"smartbeans/level"
	"smartbeans/models"
)

// Identity is the user a trigger belongs to, with the grading-service token
// needed to read the user's progress.
type Identity struct {
	Username string
	Token    string
}

// UnlockStore persists unlock facts.
type UnlockStore interface {
	// CompletedIDs returns the ids of the user's completed achievements.
	CompletedIDs(ctx context.Context, username string) (map[int]bool, error)
	// RecordUnlock inserts an unlock. Inserting an existing pair succeeds.
	RecordUnlock(ctx context.Context, username string, id int, at time.Time) error
	// CountByAchievement returns the number of unlock rows per achievement id.
	CountByAchievement(ctx context.Context) (map[int]int64, error)
	// CountUsers returns the number of registered users.
	CountUsers(ctx context.Context) (int64, error)
}

// ProgressSource reads a user's progress from the grading service.
type ProgressSource interface {
	SolvedTaskIDs(ctx context.Context, token string) ([]int, error)
	Submissions(ctx context.Context, token string) ([]grader.Submission, error)
	TaskCount(ctx context.Context, token string) (int, error)
}

// SkillSource computes skill point totals.
type SkillSource interface {
	UserPoints(ctx context.Context, username string, solved []int) (level.Points, error)
	MaxPoints(ctx context.Context) (level.Points, error)
}

// CharacterSource reads a user's character. A user without a character
// yields nil and no error.
type CharacterSource interface {
	Character(ctx context.Context, username string) (*models.Character, error)
}

// CounterSource reads a persisted per-user counter.
type CounterSource interface {
	Counter(ctx context.Context, username, name string) (int, error)
}

// Snapshot is the input of one evaluation run. It is owned by that run and
// shared by all rules evaluated in it.
type Snapshot struct {
	Username    string
	Completed   map[int]bool
	Solved      []int
	Submissions []grader.Submission
	Skills      level.Points
	MaxSkills   level.Points
	TaskCount   int
	Character   *models.Character

	// CatalogSize is the number of achievements, meta included.
	CatalogSize int

	counters CounterSource
}

// Counter looks up a persisted counter for the snapshot's user.
func (s *Snapshot) Counter(ctx context.Context, name string) (int, error) {
	if s.counters == nil {
		return 0, fmt.Errorf("%w: no counter source for %q", ErrMalformedInput, name)
	}
	n, err := s.counters.Counter(ctx, s.Username, name)
	if err != nil {
		return 0, fmt.Errorf("%w: counter %q: %v", ErrMalformedInput, name, err)
	}
	return n, nil
}

// SnapshotProvider assembles snapshots from the collaborators.
type SnapshotProvider struct {
	Unlocks    UnlockStore
	Progress   ProgressSource
	Skills     SkillSource
	Characters CharacterSource
	Counters   CounterSource
}

// Build reads everything a sweep needs. Independent sources are read in
// parallel; any failure aborts the build with ErrCollaboratorUnavailable.
func (p *SnapshotProvider) Build(ctx context.Context, id Identity) (*Snapshot, error) {
	snap := &Snapshot{Username: id.Username, counters: p.Counters}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		completed, err := p.Unlocks.CompletedIDs(gctx, id.Username)
		if err != nil {
			return fmt.Errorf("completed achievements: %w", err)
		}
		snap.Completed = completed
		return nil
	})
	g.Go(func() error {
		solved, err := p.Progress.SolvedTaskIDs(gctx, id.Token)
		if err != nil {
			return fmt.Errorf("solved tasks: %w", err)
		}
		skills, err := p.Skills.UserPoints(gctx, id.Username, solved)
		if err != nil {
			return fmt.Errorf("user skill points: %w", err)
		}
		snap.Solved, snap.Skills = solved, skills
		return nil
	})
	g.Go(func() error {
		subs, err := p.Progress.Submissions(gctx, id.Token)
		if err != nil {
			return fmt.Errorf("submissions: %w", err)
		}
		snap.Submissions = subs
		return nil
	})
	g.Go(func() error {
		n, err := p.Progress.TaskCount(gctx, id.Token)
		if err != nil {
			return fmt.Errorf("task count: %w", err)
		}
		snap.TaskCount = n
		return nil
	})
	g.Go(func() error {
		max, err := p.Skills.MaxPoints(gctx)
		if err != nil {
			return fmt.Errorf("max skill points: %w", err)
		}
		snap.MaxSkills = max
		return nil
	})
	if p.Characters != nil {
		g.Go(func() error {
			ch, err := p.Characters.Character(gctx, id.Username)
			if err != nil {
				return fmt.Errorf("character: %w", err)
			}
			snap.Character = ch
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCollaboratorUnavailable, err)
	}
	if snap.Completed == nil {
		snap.Completed = make(map[int]bool)
	}
	return snap, nil
}
