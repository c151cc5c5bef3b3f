package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	gormlogger "gorm.io/gorm/logger"

	"smartbeans/achievements"
	"smartbeans/assets"
	"smartbeans/database"
	"smartbeans/level"
	"smartbeans/middleware"
	"smartbeans/services"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type submitted struct {
	id      achievements.Identity
	trigger string
}

type fakeEngine struct {
	mu       sync.Mutex
	triggers []submitted
	admit    bool
	err      error
	list     []achievements.PublicAchievement
}

func (f *fakeEngine) Submit(_ context.Context, id achievements.Identity, trigger string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	f.triggers = append(f.triggers, submitted{id: id, trigger: trigger})
	return f.admit, nil
}

func (f *fakeEngine) PublicAchievements(context.Context, string) ([]achievements.PublicAchievement, error) {
	return f.list, nil
}

func (f *fakeEngine) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, s := range f.triggers {
		out = append(out, s.trigger)
	}
	return out
}

type fakeSolved struct {
	ids []int
	err error
}

func (f fakeSolved) SolvedTaskIDs(context.Context, string) ([]int, error) {
	return f.ids, f.err
}

type fakeCompleted struct {
	mu  sync.Mutex
	ids map[int]bool
}

func (f *fakeCompleted) CompletedIDs(context.Context, string) (map[int]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int]bool, len(f.ids))
	for id := range f.ids {
		out[id] = true
	}
	return out, nil
}

func (f *fakeCompleted) complete(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids[id] = true
}

type testServer struct {
	app       *fiber.App
	engine    *fakeEngine
	users     *services.UserService
	msgs      *services.NotificationService
	completed *fakeCompleted
}

func newTestServer(t *testing.T, solved fakeSolved) *testServer {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.Open(sqlite.Open(dsn), gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	calc, err := level.NewCalculator([]level.TaskStat{
		{ID: 1, Points: 30, Skills: []level.SkillPoints{{Name: "loops", Points: 30}}},
		{ID: 2, Points: 40, Skills: []level.SkillPoints{{Name: "io", Points: 40}}},
	})
	require.NoError(t, err)

	catalog, err := assets.NewCatalog([]assets.Asset{
		{ID: "hat_1", Slot: assets.SlotHat},
		{ID: "hat_2", Slot: assets.SlotHat, Precondition: assets.Precondition{AchievementID: 5}},
		{ID: "shirt_1", Slot: assets.SlotShirt, Precondition: assets.Precondition{TaskID: 2}},
	})
	require.NoError(t, err)

	s := &testServer{
		engine:    &fakeEngine{admit: true},
		users:     services.NewUserService(db),
		completed: &fakeCompleted{ids: make(map[int]bool)},
	}
	hub := services.NewHub(nil)
	s.msgs = services.NewNotificationService(db, hub, nil)
	Init(Deps{
		Engine:     s.engine,
		Users:      s.users,
		Characters: services.NewCharacterService(db),
		Skills:     services.NewSkillService(calc, s.users, nil),
		Messages:   s.msgs,
		Hub:        hub,
		Progress:   solved,
		Unlocks:    s.completed,
		Assets:     catalog,
	})

	s.app = fiber.New()
	SetupRoutes(s.app,
		middleware.AuthMiddleware(testSecret, s.users, nil),
		middleware.WebSocketAuthMiddleware(testSecret),
		middleware.UserRateLimitMiddleware(middleware.NewRateLimiter(100, time.Minute)),
	)
	return s
}

func (s *testServer) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	token, err := middleware.IssueToken(testSecret, "alice", "sid-1", time.Hour)
	require.NoError(t, err)

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestPostNotFound(t *testing.T) {
	s := newTestServer(t, fakeSolved{})

	resp := s.do(t, "POST", "/api/achievements/404", "")
	assert.Equal(t, 200, resp.StatusCode)
	require.Len(t, s.engine.triggers, 1)
	assert.Equal(t, achievements.Identity{Username: "alice", Token: "sid-1"}, s.engine.triggers[0].id)
	assert.Equal(t, achievements.TriggerNotFound, s.engine.triggers[0].trigger)
}

func TestPostTrigger(t *testing.T) {
	s := newTestServer(t, fakeSolved{})

	resp := s.do(t, "POST", "/api/achievements/trigger", `{"trigger":"submission"}`)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	var body map[string]any
	decode(t, resp, &body)
	assert.Equal(t, false, body["queued"])

	s.engine.admit = false
	resp = s.do(t, "POST", "/api/achievements/trigger", `{"trigger":"all"}`)
	decode(t, resp, &body)
	assert.Equal(t, true, body["queued"])

	resp = s.do(t, "POST", "/api/achievements/trigger", `{"trigger":"char_changed"}`)
	assert.Equal(t, 400, resp.StatusCode)

	assert.Equal(t, []string{"submission", "all"}, s.engine.names())
}

func TestPostTrigger_EngineClosed(t *testing.T) {
	s := newTestServer(t, fakeSolved{})
	s.engine.err = fmt.Errorf("schedule evaluation: %w", achievements.ErrPoolClosed)

	resp := s.do(t, "POST", "/api/achievements/trigger", `{"trigger":"submission"}`)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestGetAchievements(t *testing.T) {
	s := newTestServer(t, fakeSolved{})
	s.engine.list = []achievements.PublicAchievement{{ID: 1, Name: "Hello World", Completed: true, Frequency: 50}}

	resp := s.do(t, "GET", "/api/achievements", "")
	assert.Equal(t, 200, resp.StatusCode)
	var list []achievements.PublicAchievement
	decode(t, resp, &list)
	assert.Equal(t, s.engine.list, list)
}

func TestPostCharacter(t *testing.T) {
	s := newTestServer(t, fakeSolved{})

	resp := s.do(t, "POST", "/api/character", `{"hat_id":"hat_1","body_color":"#abcdef"}`)
	assert.Equal(t, 200, resp.StatusCode)

	resp = s.do(t, "POST", "/api/character", `{"hat_id":"hat_2"}`)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "hat_2 needs achievement 5")

	s.completed.complete(5)
	resp = s.do(t, "POST", "/api/character", `{"hat_id":"hat_2"}`)
	assert.Equal(t, 200, resp.StatusCode)

	n, err := s.users.Counter(context.Background(), "alice", services.CounterCharChanged)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "rejected saves are not counted")
	assert.Equal(t, []string{"char_changed", "char_changed"}, s.engine.names())

	resp = s.do(t, "GET", "/api/character", "")
	var ch map[string]any
	decode(t, resp, &ch)
	assert.Equal(t, "hat_2", ch["hat_id"])
	assert.Nil(t, ch["body_color"])
}

func TestPostCharacter_RejectsWrongSlotAndUnknownAssets(t *testing.T) {
	s := newTestServer(t, fakeSolved{ids: []int{2}})

	resp := s.do(t, "POST", "/api/character", `{"pants_id":"hat_1"}`)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp = s.do(t, "POST", "/api/character", `{"face_id":"face_99"}`)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp = s.do(t, "POST", "/api/character", `{"shirt_id":"shirt_1"}`)
	assert.Equal(t, 200, resp.StatusCode, "shirt_1 is unlocked by task 2")

	assert.Equal(t, []string{"char_changed"}, s.engine.names())
}

func TestGetAssets(t *testing.T) {
	s := newTestServer(t, fakeSolved{ids: []int{2}})

	resp := s.do(t, "GET", "/api/assets", "")
	assert.Equal(t, 200, resp.StatusCode)
	var ids []string
	decode(t, resp, &ids)
	assert.Equal(t, []string{"hat_1", "shirt_1"}, ids)

	s.completed.complete(5)
	resp = s.do(t, "GET", "/api/assets", "")
	decode(t, resp, &ids)
	assert.Equal(t, []string{"hat_1", "hat_2", "shirt_1"}, ids)
}

func TestGetAssets_GraderDown(t *testing.T) {
	s := newTestServer(t, fakeSolved{err: errors.New("down")})

	resp := s.do(t, "GET", "/api/assets", "")
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	resp = s.do(t, "POST", "/api/character", `{"hat_id":"hat_1"}`)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestGetCharName(t *testing.T) {
	s := newTestServer(t, fakeSolved{})

	resp := s.do(t, "GET", "/api/charname", "")
	assert.Equal(t, 200, resp.StatusCode)
	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "alice", body["charname"], "defaults to the username")

	s.do(t, "POST", "/api/charname", `{"charname":"Bean"}`)
	resp = s.do(t, "GET", "/api/charname", "")
	decode(t, resp, &body)
	assert.Equal(t, "Bean", body["charname"])
}

func TestPostCharName(t *testing.T) {
	s := newTestServer(t, fakeSolved{})

	resp := s.do(t, "POST", "/api/charname", `{"charname":"Bean"}`)
	assert.Equal(t, 200, resp.StatusCode)
	resp = s.do(t, "POST", "/api/charname", `{"charname":""}`)
	assert.Equal(t, 400, resp.StatusCode)

	assert.Equal(t, []string{"nickname_changed"}, s.engine.names())
}

func TestPostLogin(t *testing.T) {
	s := newTestServer(t, fakeSolved{})

	resp := s.do(t, "POST", "/api/login", "")
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, []string{"login"}, s.engine.names())
}

func TestGetLevelData(t *testing.T) {
	s := newTestServer(t, fakeSolved{ids: []int{2}})

	resp := s.do(t, "GET", "/api/level_data", "")
	assert.Equal(t, 200, resp.StatusCode)
	var summary level.Summary
	decode(t, resp, &summary)
	assert.Equal(t, 40, summary.Points)
	assert.Equal(t, 2, summary.Level)
	assert.Equal(t, 50, summary.NextPoints)
	assert.Equal(t, []level.SkillSummary{
		{Name: "io", Points: 40, MaxPoints: 40},
		{Name: "loops", Points: 0, MaxPoints: 30},
	}, summary.Skills)
}

func TestGetLevelData_GraderDown(t *testing.T) {
	s := newTestServer(t, fakeSolved{err: errors.New("down")})

	resp := s.do(t, "GET", "/api/level_data", "")
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestGetSystemMessages(t *testing.T) {
	s := newTestServer(t, fakeSolved{})
	s.msgs.Notify(context.Background(), "alice", "achievement_unlocked", achievements.PublicAchievement{ID: 5, Name: "Lost"})

	resp := s.do(t, "GET", "/api/system_messages", "")
	assert.Equal(t, 200, resp.StatusCode)
	var msgs []services.Message
	decode(t, resp, &msgs)
	require.Len(t, msgs, 1)
	assert.Equal(t, "achievement_unlocked", msgs[0].Type)

	var content achievements.PublicAchievement
	require.NoError(t, json.Unmarshal(msgs[0].Content, &content))
	assert.Equal(t, 5, content.ID)
}

func TestGetLeaderboard(t *testing.T) {
	s := newTestServer(t, fakeSolved{ids: []int{1, 2}})
	s.do(t, "GET", "/api/level_data", "")

	resp, err := s.app.Test(httptest.NewRequest("GET", "/api/leaderboard", nil))
	require.NoError(t, err)
	var body struct {
		Users []leaderboardEntry `json:"users"`
	}
	decode(t, resp, &body)
	require.Len(t, body.Users, 1)
	assert.Equal(t, leaderboardEntry{Rank: 1, Username: "alice", CharName: "alice", Points: 70, Level: 3}, body.Users[0])
}

func TestRoutesRequireAuth(t *testing.T) {
	s := newTestServer(t, fakeSolved{})

	for _, path := range []string{"/api/achievements", "/api/level_data", "/api/system_messages", "/api/assets", "/api/charname"} {
		resp, err := s.app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode, path)
	}

	resp, err := s.app.Test(httptest.NewRequest("GET", "/ws", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
