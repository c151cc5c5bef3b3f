package achievements

import (
	"context"
	"sync"
	"time"

	"smartbeans/grader"
	"smartbeans/level"
	"smartbeans/models"
)

type fakeUnlocks struct {
	mu        sync.Mutex
	completed map[string]map[int]bool
	records   int
	users     int64
	err       error
}

func newFakeUnlocks() *fakeUnlocks {
	return &fakeUnlocks{completed: make(map[string]map[int]bool), users: 1}
}

func (f *fakeUnlocks) CompletedIDs(_ context.Context, username string) (map[int]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[int]bool)
	for id := range f.completed[username] {
		out[id] = true
	}
	return out, nil
}

func (f *fakeUnlocks) RecordUnlock(_ context.Context, username string, id int, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completed[username] == nil {
		f.completed[username] = make(map[int]bool)
	}
	if !f.completed[username][id] {
		f.records++
	}
	f.completed[username][id] = true
	return nil
}

func (f *fakeUnlocks) CountByAchievement(context.Context) (map[int]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int]int64)
	for _, ids := range f.completed {
		for id := range ids {
			out[id]++
		}
	}
	return out, nil
}

func (f *fakeUnlocks) CountUsers(context.Context) (int64, error) {
	return f.users, nil
}

func (f *fakeUnlocks) has(username string, id int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed[username][id]
}

func (f *fakeUnlocks) preset(username string, ids ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completed[username] == nil {
		f.completed[username] = make(map[int]bool)
	}
	for _, id := range ids {
		f.completed[username][id] = true
	}
}

type fakeProgress struct {
	solved    []int
	subs      []grader.Submission
	taskCount int
	err       error
}

func (f *fakeProgress) SolvedTaskIDs(context.Context, string) ([]int, error) {
	return f.solved, f.err
}

func (f *fakeProgress) Submissions(context.Context, string) ([]grader.Submission, error) {
	return f.subs, f.err
}

func (f *fakeProgress) TaskCount(context.Context, string) (int, error) {
	return f.taskCount, f.err
}

type fakeSkills struct {
	user level.Points
	max  level.Points
}

func (f *fakeSkills) UserPoints(context.Context, string, []int) (level.Points, error) {
	return f.user, nil
}

func (f *fakeSkills) MaxPoints(context.Context) (level.Points, error) {
	return f.max, nil
}

type fakeCharacters struct {
	character *models.Character
}

func (f *fakeCharacters) Character(context.Context, string) (*models.Character, error) {
	return f.character, nil
}

type fakeCounters map[string]int

func (f fakeCounters) Counter(_ context.Context, _, name string) (int, error) {
	return f[name], nil
}

type notification struct {
	username string
	kind     string
	payload  any
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (f *fakeNotifier) Notify(_ context.Context, username, kind string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, notification{username: username, kind: kind, payload: payload})
}

func (f *fakeNotifier) all() []notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]notification, len(f.sent))
	copy(out, f.sent)
	return out
}

func testSkills() *fakeSkills {
	return &fakeSkills{
		user: level.Points{level.Total: 0, "a": 0, "b": 0},
		max:  level.Points{level.Total: 200, "a": 100, "b": 100},
	}
}
