package service

import (
	"context"
	"testing"
	"time"

	"interview-prep/internal/domain"
	"interview-prep/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var adminNow = time.Date(2025, 6, 18, 15, 30, 0, 0, time.UTC)

type stubSystem struct{ summary dto.SystemSummary }

func (s stubSystem) Status(context.Context) (*dto.SystemStatusResponse, error)   { return nil, nil }
func (s stubSystem) Metrics(context.Context) (*dto.SystemMetricsResponse, error) { return nil, nil }
func (s stubSystem) Summary(context.Context) dto.SystemSummary                   { return s.summary }

type adminFixture struct {
	users     *MockUserRepository
	sessions  *MockSessionRepository
	questions *MockQuestionRepository
	quizzes   *MockQuizRepository
	materials *MockStudyMaterialRepository
	stats     *MockStatsRepository
	generator *MockTextGenerator
	keys      *KeyCipher
	svc       *adminServiceImpl
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	keys, err := NewKeyCipher(testEncryptionKey)
	require.NoError(t, err)
	f := &adminFixture{
		users:     new(MockUserRepository),
		sessions:  new(MockSessionRepository),
		questions: new(MockQuestionRepository),
		quizzes:   new(MockQuizRepository),
		materials: new(MockStudyMaterialRepository),
		stats:     new(MockStatsRepository),
		generator: new(MockTextGenerator),
		keys:      keys,
	}
	purger := NewPurger(f.users, f.sessions, f.questions, f.quizzes, f.materials)
	f.svc = NewAdminService(f.users, f.sessions, f.questions, f.quizzes, f.materials, f.stats, f.generator, keys, purger,
		stubSystem{summary: dto.SystemSummary{Status: "healthy", Uptime: "1h 0m"}}).(*adminServiceImpl)
	f.svc.now = func() time.Time { return adminNow }
	return f
}

func TestRoleCounts_FoldsUnknownRoles(t *testing.T) {
	got := roleCounts([]domain.LabelCount{{Label: "admin", Count: 2}, {Label: "user", Count: 5}, {Label: "", Count: 3}, {Label: "guest", Count: 1}})
	assert.Equal(t, dto.RoleCounts{"user": 9, "admin": 2, "moderator": 0}, got)
}

func TestSessionChart_ZeroFillsSevenDays(t *testing.T) {
	today := startOfDay(adminNow)
	chart := sessionChart([]domain.DayCount{{Date: "2025-06-18", Count: 4}, {Date: "2025-06-14", Count: 2}}, today)
	require.Len(t, chart, 7)
	assert.Equal(t, dto.DaySessions{Date: "2025-06-12", Day: "Thu", Sessions: 0}, chart[0])
	assert.Equal(t, int64(2), chart[2].Sessions)
	assert.Equal(t, dto.DaySessions{Date: "2025-06-18", Day: "Wed", Sessions: 4}, chart[6])
}

func TestPeriodStart(t *testing.T) {
	p, start := periodStart("bogus", adminNow)
	assert.Equal(t, "7d", p)
	assert.Equal(t, adminNow.AddDate(0, 0, -7), start)

	p, start = periodStart("year", adminNow)
	assert.Equal(t, "year", p)
	assert.Equal(t, adminNow.AddDate(-1, 0, 0), start)
}

func TestMonthlyActivity(t *testing.T) {
	sessions := []*domain.Session{
		{CreatedAt: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), Questions: make([]primitive.ObjectID, 3)},
		{CreatedAt: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), Questions: make([]primitive.ObjectID, 2)},
		{CreatedAt: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), Questions: make([]primitive.ObjectID, 9)},
	}
	got := monthlyActivity(sessions, adminNow)
	require.Len(t, got, 6)
	assert.Equal(t, dto.MonthActivity{Month: "Jan", Sessions: 1, Questions: 2}, got[0])
	assert.Equal(t, dto.MonthActivity{Month: "Jun", Sessions: 1, Questions: 3}, got[5])
}

func TestAdminService_DashboardStats(t *testing.T) {
	f := newAdminFixture(t)
	today := startOfDay(adminNow)
	topID := primitive.NewObjectID()
	f.stats.On("CollectionCounts", mock.Anything).Return(domain.CollectionCounts{Users: 12, Sessions: 30, Questions: 240, StudyMaterials: 8, Quizzes: 5}, nil)
	f.stats.On("CountUsersCreatedSince", mock.Anything, adminNow.AddDate(0, 0, -30)).Return(int64(4), nil)
	f.stats.On("CountSessionsCreatedSince", mock.Anything, adminNow.AddDate(0, 0, -30)).Return(int64(11), nil)
	f.stats.On("CountUsersActiveSince", mock.Anything, today).Return(int64(3), nil)
	f.stats.On("SessionAverages", mock.Anything).Return(domain.SessionAverages{AvgDuration: 1350, Found: true}, nil)
	f.stats.On("SessionsPerDay", mock.Anything, today.AddDate(0, 0, -6), today.AddDate(0, 0, 1)).Return([]domain.DayCount{}, nil)
	f.stats.On("TopUsers", mock.Anything, int64(dashboardListSize)).Return([]domain.TopUser{{ID: topID, Name: "Ada", Sessions: 2, Questions: 30, Score: 75.04}}, nil)
	f.stats.On("RecentUsers", mock.Anything, int64(dashboardListSize)).Return([]*domain.User{
		{ID: primitive.NewObjectID(), Name: "New", CreatedAt: adminNow.AddDate(0, 0, -1), UpdatedAt: adminNow.AddDate(0, 0, -1)},
		{ID: primitive.NewObjectID(), Name: "Old", CreatedAt: adminNow.AddDate(0, -2, 0), UpdatedAt: adminNow.AddDate(0, 0, -8)},
	}, nil)
	f.stats.On("UsersByRole", mock.Anything).Return([]domain.LabelCount{{Label: "user", Count: 11}, {Label: "admin", Count: 1}}, nil)

	resp, err := f.svc.DashboardStats(context.Background(), "30d")
	require.NoError(t, err)
	assert.Equal(t, "30d", resp.Period)
	assert.Equal(t, int64(12), resp.TotalUsers)
	assert.Equal(t, int64(4), resp.NewUsers)
	assert.Equal(t, int64(11), resp.NewSessions)
	assert.Equal(t, 22.5, resp.AvgSessionTime)
	assert.Len(t, resp.SessionsPerDay, 7)
	require.Len(t, resp.TopUsers, 1)
	assert.Equal(t, 75.0, resp.TopUsers[0].Score)
	assert.True(t, resp.RecentUsers[0].IsActive)
	assert.False(t, resp.RecentUsers[1].IsActive)
	assert.Equal(t, int64(0), resp.UsersByRole["moderator"])
	assert.Equal(t, "healthy", resp.SystemStatus.Status)
}

func TestAdminService_SessionStats_Fallbacks(t *testing.T) {
	f := newAdminFixture(t)
	f.stats.On("CountSessionsCreatedSince", mock.Anything, time.Time{}).Return(int64(8), nil)
	f.stats.On("CountSessionsCreatedSince", mock.Anything, adminNow.Add(-activeWindow)).Return(int64(2), nil)
	f.stats.On("CountSessionsByStatus", mock.Anything, domain.SessionStatusActive).Return(int64(6), nil)
	f.stats.On("CountSessionsByStatus", mock.Anything, domain.SessionStatusCompleted).Return(int64(2), nil)
	f.stats.On("SessionAverages", mock.Anything).Return(domain.SessionAverages{}, nil)
	f.stats.On("SessionsByRole", mock.Anything).Return([]domain.LabelCount{{Label: "Backend", Count: 5}}, nil)

	resp, err := f.svc.SessionStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25.0, resp.CompletionRate)
	assert.Equal(t, fallbackSessionMins, resp.AvgDuration)
	assert.Equal(t, fallbackQuestions, resp.AvgQuestions)
	assert.Equal(t, int64(5), resp.RoleDistribution["Backend"])
}

func TestAdminService_UpdateUser(t *testing.T) {
	actor := primitive.NewObjectID()

	t.Run("cannot modify self", func(t *testing.T) {
		f := newAdminFixture(t)
		_, err := f.svc.UpdateUser(context.Background(), actor, actor, &dto.AdminUpdateUserRequest{})
		require.Error(t, err)
		assert.Equal(t, "Cannot modify your own admin status", err.Error())
		f.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("invalid role", func(t *testing.T) {
		f := newAdminFixture(t)
		target := &domain.User{ID: primitive.NewObjectID(), Email: "a@example.com"}
		f.users.On("GetByID", mock.Anything, target.ID).Return(target, nil)
		role := "superuser"

		_, err := f.svc.UpdateUser(context.Background(), actor, target.ID, &dto.AdminUpdateUserRequest{Role: &role})
		require.Error(t, err)
		assert.Equal(t, "Invalid role", err.Error())
	})

	t.Run("email already in use", func(t *testing.T) {
		f := newAdminFixture(t)
		target := &domain.User{ID: primitive.NewObjectID(), Email: "a@example.com"}
		f.users.On("GetByID", mock.Anything, target.ID).Return(target, nil)
		f.users.On("GetByEmail", mock.Anything, "b@example.com").Return(&domain.User{ID: primitive.NewObjectID()}, nil)
		email := "B@example.com"

		_, err := f.svc.UpdateUser(context.Background(), actor, target.ID, &dto.AdminUpdateUserRequest{Email: &email})
		require.Error(t, err)
		assert.Equal(t, "Email already in use", err.Error())
	})

	t.Run("deactivation backdates activity and empty key removes it", func(t *testing.T) {
		f := newAdminFixture(t)
		target := &domain.User{ID: primitive.NewObjectID(), Email: "a@example.com"}
		f.users.On("GetByID", mock.Anything, target.ID).Return(target, nil)
		inactive, empty := false, ""
		f.users.On("Update", mock.Anything, target.ID, mock.MatchedBy(func(u domain.UserUpdate) bool {
			return u.UpdatedAt != nil && u.UpdatedAt.Equal(inactiveMarker) &&
				u.GeminiAPIKey != nil && *u.GeminiAPIKey == "" &&
				u.IsActive != nil && !*u.IsActive
		})).Return(&domain.User{ID: target.ID, Email: target.Email}, nil)

		resp, err := f.svc.UpdateUser(context.Background(), actor, target.ID, &dto.AdminUpdateUserRequest{IsActive: &inactive, GeminiAPIKey: &empty})
		require.NoError(t, err)
		assert.False(t, resp.HasGeminiKey)
		f.generator.AssertNotCalled(t, "ValidateKey", mock.Anything, mock.Anything)
	})
}

func TestAdminService_DeleteUser(t *testing.T) {
	actor := primitive.NewObjectID()

	t.Run("cannot delete self", func(t *testing.T) {
		f := newAdminFixture(t)
		err := f.svc.DeleteUser(context.Background(), actor, actor)
		require.Error(t, err)
		assert.Equal(t, "Cannot delete your own account", err.Error())
	})

	t.Run("missing user", func(t *testing.T) {
		f := newAdminFixture(t)
		id := primitive.NewObjectID()
		f.users.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)
		err := f.svc.DeleteUser(context.Background(), actor, id)
		assert.Equal(t, domain.CodeNotFound, domainCode(t, err))
	})

	t.Run("cascades children before the user", func(t *testing.T) {
		f := newAdminFixture(t)
		id := primitive.NewObjectID()
		sessionIDs := []primitive.ObjectID{primitive.NewObjectID()}
		f.users.On("GetByID", mock.Anything, id).Return(&domain.User{ID: id}, nil)
		f.sessions.On("IDsByUser", mock.Anything, id).Return(sessionIDs, nil)
		f.questions.On("DeleteBySessions", mock.Anything, sessionIDs).Return(int64(4), nil)
		f.quizzes.On("DeleteBySessions", mock.Anything, sessionIDs).Return(int64(1), nil)
		f.materials.On("DeleteBySessions", mock.Anything, []string{sessionIDs[0].Hex()}).Return(int64(2), nil)
		f.sessions.On("DeleteMany", mock.Anything, sessionIDs).Return(int64(1), nil)
		f.materials.On("DeleteByUser", mock.Anything, id.Hex()).Return(int64(0), nil)
		f.users.On("Delete", mock.Anything, id).Return(nil)

		require.NoError(t, f.svc.DeleteUser(context.Background(), actor, id))
		f.sessions.AssertExpectations(t)
		f.questions.AssertExpectations(t)
		f.quizzes.AssertExpectations(t)
		f.materials.AssertExpectations(t)
		f.users.AssertExpectations(t)
	})
}

func TestAdminService_ListUsers_MasksKeys(t *testing.T) {
	f := newAdminFixture(t)
	sealed, err := f.keys.Encrypt("AIzaSyD-1234567890")
	require.NoError(t, err)
	row := &domain.UserWithCounts{
		User:         domain.User{ID: primitive.NewObjectID(), Email: "a@example.com", GeminiAPIKey: sealed, UpdatedAt: adminNow.Add(-time.Hour)},
		SessionCount: 3,
	}
	f.users.On("List", mock.Anything, domain.UserFilter{Search: "ada", ActiveWindow: activeWindow, Page: 1, Limit: defaultPageSize}).
		Return([]*domain.UserWithCounts{row}, int64(1), nil)

	resp, err := f.svc.ListUsers(context.Background(), &dto.AdminUserListQuery{Search: " ada "})
	require.NoError(t, err)
	require.Len(t, resp.Users, 1)
	u := resp.Users[0]
	assert.True(t, u.HasGeminiKey)
	assert.Equal(t, "AIza**********7890", u.GeminiKeyMasked)
	assert.True(t, u.IsActive)
	assert.Equal(t, 3, u.SessionCount)
	assert.Equal(t, int64(1), resp.Pagination.Total)
}

func TestAdminService_GetSession_NotFound(t *testing.T) {
	f := newAdminFixture(t)
	id := primitive.NewObjectID()
	f.sessions.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)

	_, err := f.svc.GetSession(context.Background(), id)
	require.Error(t, err)
	assert.Equal(t, "Session not found", err.Error())
}
