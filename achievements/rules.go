package achievements

import (
	"context"
	"fmt"
	"sort"

	"smartbeans/level"
)

// Rule decides whether an achievement is reached. Rules never write; the
// engine persists the unlock after a rule returns true.
type Rule func(ctx context.Context, s *Snapshot) (bool, error)

// RuleFactory builds a rule from catalog parameters.
type RuleFactory func(p Params) (Rule, error)

// Registry maps achievement ids to their rules.
type Registry map[int]Rule

// ruleKinds is the rule library. Catalog entries reference these by name.
var ruleKinds = map[string]RuleFactory{
	"solved_at_least":                solvedAtLeast,
	"solved_all":                     solvedAll,
	"always":                         always,
	"character_complete":             characterComplete,
	"counter_at_least":               counterAtLeast,
	"result_count_at_least":          resultCountAtLeast,
	"identical_wrong_resubmission":   identicalWrongResubmission,
	"redundant_correct_resubmission": redundantCorrectResubmission,
	"skills_all_started":             skillsAllStarted,
	"skills_half_of_max":             skillsHalfOfMax,
	"skills_maxed_at_least":          skillsMaxedAtLeast,
	"skills_balanced":                skillsBalanced,
	"level_at_least":                 levelAtLeast,
	"loop_free_solution":             loopFreeSolution,
	"all_unlocked":                   allUnlocked,
}

// RuleKinds returns the names of all known rule kinds, sorted.
func RuleKinds() []string {
	names := make([]string, 0, len(ruleKinds))
	for name := range ruleKinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildRegistry creates the rule for every catalog entry.
func BuildRegistry(c *Catalog) (Registry, error) {
	reg := make(Registry, c.Len())
	for _, d := range c.All() {
		factory, ok := ruleKinds[d.Rule]
		if !ok {
			return nil, fmt.Errorf("%w: achievement %d uses unknown rule %q", ErrConfiguration, d.ID, d.Rule)
		}
		rule, err := factory(d.Params)
		if err != nil {
			return nil, fmt.Errorf("%w: achievement %d: %v", ErrConfiguration, d.ID, err)
		}
		reg[d.ID] = rule
	}
	return reg, ValidateRegistry(c, reg)
}

// ValidateRegistry checks that every catalog id has a rule and every rule
// belongs to a catalog id.
func ValidateRegistry(c *Catalog, reg Registry) error {
	for _, d := range c.All() {
		if reg[d.ID] == nil {
			return fmt.Errorf("%w: achievement %d has no rule", ErrConfiguration, d.ID)
		}
	}
	for id := range reg {
		if _, ok := c.Get(id); !ok {
			return fmt.Errorf("%w: rule registered for unknown achievement %d", ErrConfiguration, id)
		}
	}
	return nil
}

func requirePositive(name string, v int) error {
	if v <= 0 {
		return fmt.Errorf("parameter %s must be positive, got %d", name, v)
	}
	return nil
}

// === Counting =====

func solvedAtLeast(p Params) (Rule, error) {
	if err := requirePositive("n", p.N); err != nil {
		return nil, err
	}
	return func(_ context.Context, s *Snapshot) (bool, error) {
		return len(distinct(s.Solved)) >= p.N, nil
	}, nil
}

func solvedAll(Params) (Rule, error) {
	return func(_ context.Context, s *Snapshot) (bool, error) {
		if s.TaskCount <= 0 {
			return false, nil
		}
		return len(distinct(s.Solved)) == s.TaskCount, nil
	}, nil
}

func distinct(ids []int) map[int]struct{} {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// === Trigger-gated and persisted state =====

// always fires the first time one of the achievement's triggers occurs.
func always(Params) (Rule, error) {
	return func(context.Context, *Snapshot) (bool, error) {
		return true, nil
	}, nil
}

func characterComplete(Params) (Rule, error) {
	return func(_ context.Context, s *Snapshot) (bool, error) {
		if s.Character == nil {
			return false, nil
		}
		for _, slot := range s.Character.Slots() {
			if slot == nil {
				return false, nil
			}
		}
		return true, nil
	}, nil
}

func counterAtLeast(p Params) (Rule, error) {
	if p.Counter == "" {
		return nil, fmt.Errorf("parameter counter is required")
	}
	if err := requirePositive("n", p.N); err != nil {
		return nil, err
	}
	return func(ctx context.Context, s *Snapshot) (bool, error) {
		n, err := s.Counter(ctx, p.Counter)
		if err != nil {
			return false, err
		}
		return n >= p.N, nil
	}, nil
}

// === Submission patterns =====

func resultCountAtLeast(p Params) (Rule, error) {
	if p.Category == "" {
		return nil, fmt.Errorf("parameter category is required")
	}
	if err := requirePositive("n", p.N); err != nil {
		return nil, err
	}
	return func(_ context.Context, s *Snapshot) (bool, error) {
		count := 0
		for _, sub := range s.Submissions {
			if sub.ResultType == p.Category {
				count++
			}
		}
		return count >= p.N, nil
	}, nil
}

func identicalWrongResubmission(Params) (Rule, error) {
	return func(_ context.Context, s *Snapshot) (bool, error) {
		return HasIdenticalWrongResubmission(s.Submissions), nil
	}, nil
}

func redundantCorrectResubmission(Params) (Rule, error) {
	return func(_ context.Context, s *Snapshot) (bool, error) {
		return HasRedundantCorrectResubmission(s.Submissions), nil
	}, nil
}

func loopFreeSolution(p Params) (Rule, error) {
	if err := requirePositive("task", p.Task); err != nil {
		return nil, err
	}
	return func(_ context.Context, s *Snapshot) (bool, error) {
		for _, sub := range s.Submissions {
			if sub.TaskID == p.Task && sub.Correct() && !ContainsLoop(sub.Content) {
				return true, nil
			}
		}
		return false, nil
	}, nil
}

// === Skills =====

func skillsAllStarted(Params) (Rule, error) {
	return func(_ context.Context, s *Snapshot) (bool, error) {
		skills, err := skillNames(s)
		if err != nil {
			return false, err
		}
		for _, name := range skills {
			if s.Skills[name] <= 0 {
				return false, nil
			}
		}
		return true, nil
	}, nil
}

func skillsHalfOfMax(Params) (Rule, error) {
	return func(_ context.Context, s *Snapshot) (bool, error) {
		skills, err := skillNames(s)
		if err != nil {
			return false, err
		}
		for _, name := range skills {
			max := s.MaxSkills[name]
			if max <= 0 {
				continue
			}
			if float64(s.Skills[name])/float64(max) < 0.5 {
				return false, nil
			}
		}
		return true, nil
	}, nil
}

func skillsMaxedAtLeast(p Params) (Rule, error) {
	if err := requirePositive("n", p.N); err != nil {
		return nil, err
	}
	return func(_ context.Context, s *Snapshot) (bool, error) {
		skills, err := skillNames(s)
		if err != nil {
			return false, err
		}
		maxed := 0
		for _, name := range skills {
			if max := s.MaxSkills[name]; max > 0 && s.Skills[name] >= max {
				maxed++
			}
		}
		return maxed >= p.N, nil
	}, nil
}

func skillsBalanced(p Params) (Rule, error) {
	threshold := p.Threshold
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("parameter threshold must be in (0, 1], got %v", threshold)
	}
	return func(_ context.Context, s *Snapshot) (bool, error) {
		if s.Skills == nil || s.MaxSkills == nil {
			return false, fmt.Errorf("%w: skill points missing", ErrMalformedInput)
		}
		ratio, err := BalanceRatio(s.Skills, s.MaxSkills)
		if err != nil {
			return false, err
		}
		return ratio >= threshold, nil
	}, nil
}

func levelAtLeast(p Params) (Rule, error) {
	if err := requirePositive("n", p.N); err != nil {
		return nil, err
	}
	return func(_ context.Context, s *Snapshot) (bool, error) {
		total, ok := s.Skills[level.Total]
		if !ok {
			return false, fmt.Errorf("%w: no total skill", ErrMalformedInput)
		}
		return level.PointsToLevel(total) >= p.N, nil
	}, nil
}

// skillNames returns the skills of the global maximum. The user's points
// are compared against these names so both sides use one ordering.
func skillNames(s *Snapshot) ([]string, error) {
	if s.Skills == nil || s.MaxSkills == nil {
		return nil, fmt.Errorf("%w: skill points missing", ErrMalformedInput)
	}
	names := s.MaxSkills.Skills()
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no skills defined", ErrMalformedInput)
	}
	return names, nil
}

// === Meta =====

// allUnlocked holds once every other catalog achievement is completed. The
// engine evaluates it after the ordinary candidates of a run so it observes
// their unlocks.
func allUnlocked(Params) (Rule, error) {
	return func(_ context.Context, s *Snapshot) (bool, error) {
		if s.CatalogSize <= 1 {
			return false, nil
		}
		return len(s.Completed) == s.CatalogSize-1, nil
	}, nil
}
