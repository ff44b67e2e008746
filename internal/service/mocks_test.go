package service

import (
	"context"
	"os"
	"testing"
	"time"

	"interview-prep/internal/config"
	"interview-prep/internal/domain"
	"interview-prep/internal/logger"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Level: "error"}); err != nil {
		panic("failed to initialize logger for tests: " + err.Error())
	}
	exitVal := m.Run()
	_ = logger.Sync()
	os.Exit(exitVal)
}

// --- MockUserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, id primitive.ObjectID, update domain.UserUpdate) (*domain.User, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Touch(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, filter domain.UserFilter) ([]*domain.UserWithCounts, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.UserWithCounts), args.Get(1).(int64), args.Error(2)
}

// --- MockSessionRepository ---
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	if session.ID.IsZero() {
		session.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*domain.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) SetQuestions(ctx context.Context, id primitive.ObjectID, questionIDs []primitive.ObjectID) error {
	return m.Called(ctx, id, questionIDs).Error(0)
}

func (m *MockSessionRepository) AppendQuestions(ctx context.Context, id primitive.ObjectID, questionIDs []primitive.ObjectID) error {
	return m.Called(ctx, id, questionIDs).Error(0)
}

func (m *MockSessionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSessionRepository) IDsByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]primitive.ObjectID), args.Error(1)
}

func (m *MockSessionRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionRepository) List(ctx context.Context, filter domain.SessionFilter) ([]*domain.SessionWithOwner, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.SessionWithOwner), args.Get(1).(int64), args.Error(2)
}

// --- MockQuestionRepository ---
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) InsertMany(ctx context.Context, questions []*domain.Question) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, questions)
	ids := make([]primitive.ObjectID, len(questions))
	for i, q := range questions {
		q.ID = primitive.NewObjectID()
		ids[i] = q.ID
	}
	return ids, args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Question), args.Error(1)
}

func (m *MockQuestionRepository) ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]*domain.Question, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Question), args.Error(1)
}

func (m *MockQuestionRepository) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*domain.Question, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Question), args.Error(1)
}

func (m *MockQuestionRepository) FirstBySession(ctx context.Context, sessionID primitive.ObjectID, limit int64) ([]*domain.Question, error) {
	args := m.Called(ctx, sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Question), args.Error(1)
}

func (m *MockQuestionRepository) SetPinned(ctx context.Context, id primitive.ObjectID, pinned bool) error {
	return m.Called(ctx, id, pinned).Error(0)
}

func (m *MockQuestionRepository) SetNote(ctx context.Context, id primitive.ObjectID, note string) error {
	return m.Called(ctx, id, note).Error(0)
}

func (m *MockQuestionRepository) DeleteBySessions(ctx context.Context, sessionIDs []primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, sessionIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionRepository) CountBySessions(ctx context.Context, sessionIDs []primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, sessionIDs)
	return args.Get(0).(int64), args.Error(1)
}

// --- MockQuizRepository ---
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) Create(ctx context.Context, quiz *domain.Quiz) error {
	args := m.Called(ctx, quiz)
	if quiz.ID.IsZero() {
		quiz.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockQuizRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) Complete(ctx context.Context, id primitive.ObjectID, sub domain.QuizSubmission) error {
	return m.Called(ctx, id, sub).Error(0)
}

func (m *MockQuizRepository) ListBySessionAndUser(ctx context.Context, sessionID, userID primitive.ObjectID, limit int64) ([]*domain.Quiz, error) {
	args := m.Called(ctx, sessionID, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) ListCompleted(ctx context.Context, sessionID, userID primitive.ObjectID, since time.Time) ([]*domain.Quiz, error) {
	args := m.Called(ctx, sessionID, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) CountBySessionAndUser(ctx context.Context, sessionID, userID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, sessionID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuizRepository) AppendTiming(ctx context.Context, id primitive.ObjectID, timing domain.QuestionTiming) error {
	return m.Called(ctx, id, timing).Error(0)
}

func (m *MockQuizRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockQuizRepository) DeleteBySessions(ctx context.Context, sessionIDs []primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, sessionIDs)
	return args.Get(0).(int64), args.Error(1)
}

// --- MockStudyMaterialRepository ---
type MockStudyMaterialRepository struct {
	mock.Mock
}

func (m *MockStudyMaterialRepository) GetByQuestionAndUser(ctx context.Context, questionID, userID string) (*domain.StudyMaterial, error) {
	args := m.Called(ctx, questionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StudyMaterial), args.Error(1)
}

func (m *MockStudyMaterialRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.StudyMaterial, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StudyMaterial), args.Error(1)
}

func (m *MockStudyMaterialRepository) Upsert(ctx context.Context, material *domain.StudyMaterial) (*domain.StudyMaterial, error) {
	args := m.Called(ctx, material)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StudyMaterial), args.Error(1)
}

func (m *MockStudyMaterialRepository) ListBySessionAndUser(ctx context.Context, sessionID, userID string) ([]*domain.StudyMaterial, error) {
	args := m.Called(ctx, sessionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.StudyMaterial), args.Error(1)
}

func (m *MockStudyMaterialRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.StudyMaterial, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.StudyMaterial), args.Error(1)
}

func (m *MockStudyMaterialRepository) ListByQuestion(ctx context.Context, questionID, sessionID string) ([]*domain.StudyMaterial, error) {
	args := m.Called(ctx, questionID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.StudyMaterial), args.Error(1)
}

func (m *MockStudyMaterialRepository) DeleteOwned(ctx context.Context, id primitive.ObjectID, userID string) (int64, error) {
	args := m.Called(ctx, id, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStudyMaterialRepository) DeleteBySessions(ctx context.Context, sessionIDs []string) (int64, error) {
	args := m.Called(ctx, sessionIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStudyMaterialRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStudyMaterialRepository) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(int64), args.Error(1)
}

// --- MockStatsRepository ---
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) CollectionCounts(ctx context.Context) (domain.CollectionCounts, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.CollectionCounts), args.Error(1)
}

func (m *MockStatsRepository) CountUsersActiveSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsRepository) CountUsersCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsRepository) CountSessionsCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsRepository) CountSessionsByStatus(ctx context.Context, status string) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsRepository) UsersByRole(ctx context.Context) ([]domain.LabelCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LabelCount), args.Error(1)
}

func (m *MockStatsRepository) SessionsByRole(ctx context.Context) ([]domain.LabelCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LabelCount), args.Error(1)
}

func (m *MockStatsRepository) SessionsPerDay(ctx context.Context, from, to time.Time) ([]domain.DayCount, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DayCount), args.Error(1)
}

func (m *MockStatsRepository) TopUsers(ctx context.Context, limit int64) ([]domain.TopUser, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TopUser), args.Error(1)
}

func (m *MockStatsRepository) RecentUsers(ctx context.Context, limit int64) ([]*domain.User, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockStatsRepository) SessionAverages(ctx context.Context) (domain.SessionAverages, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.SessionAverages), args.Error(1)
}

func (m *MockStatsRepository) CountUserSessionsByStatus(ctx context.Context, userID primitive.ObjectID, status string) (int64, error) {
	args := m.Called(ctx, userID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsRepository) DataSizeBytes(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockStatsRepository) ActiveConnections(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// --- MockTrackingRepository ---
type MockTrackingRepository struct {
	mock.Mock
}

func (m *MockTrackingRepository) InsertPageView(ctx context.Context, pv *domain.PageView) error {
	return m.Called(ctx, pv).Error(0)
}

func (m *MockTrackingRepository) InsertEvent(ctx context.Context, ev *domain.Event) error {
	return m.Called(ctx, ev).Error(0)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCache) HGet(ctx context.Context, key, field string) (string, error) {
	args := m.Called(ctx, key, field)
	return args.String(0), args.Error(1)
}

func (m *MockCache) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockCache) HSet(ctx context.Context, key string, field string, value string) error {
	return m.Called(ctx, key, field, value).Error(0)
}

func (m *MockCache) HIncrBy(ctx context.Context, key, field string, incr int64) (int64, error) {
	args := m.Called(ctx, key, field, incr)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.Called(ctx, key, expiration).Error(0)
}

func (m *MockCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(time.Duration), args.Error(1)
}

// --- MockTextGenerator ---
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) Generate(ctx context.Context, apiKey, prompt string) (string, error) {
	args := m.Called(ctx, apiKey, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockTextGenerator) ValidateKey(ctx context.Context, apiKey string) error {
	return m.Called(ctx, apiKey).Error(0)
}

func (m *MockTextGenerator) ModelName() string {
	return "gemini-test"
}

// --- MockKeyResolver ---
type MockKeyResolver struct {
	mock.Mock
}

func (m *MockKeyResolver) GeminiKey(ctx context.Context, user *domain.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

// --- MockWebSearcher ---
type MockWebSearcher struct {
	mock.Mock
}

func (m *MockWebSearcher) Search(ctx context.Context, query string, maxResults int) []domain.SearchResult {
	args := m.Called(ctx, query, maxResults)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.SearchResult)
}

// --- MockVideoMetadata ---
type MockVideoMetadata struct {
	mock.Mock
}

func (m *MockVideoMetadata) Videos(ctx context.Context, ids []string) (map[string]domain.VideoDetails, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.VideoDetails), args.Error(1)
}

// --- MockAnalyticsReporter ---
type MockAnalyticsReporter struct {
	mock.Mock
}

func (m *MockAnalyticsReporter) RunReport(ctx context.Context, req domain.ReportRequest) ([]domain.ReportRow, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReportRow), args.Error(1)
}

func (m *MockAnalyticsReporter) RunRealtimeReport(ctx context.Context, dimensions, metrics []string) ([]domain.ReportRow, error) {
	args := m.Called(ctx, dimensions, metrics)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReportRow), args.Error(1)
}

func (m *MockAnalyticsReporter) PropertyID() string {
	return "properties/123"
}

// --- MockEventForwarder ---
type MockEventForwarder struct {
	mock.Mock
}

func (m *MockEventForwarder) Forward(ctx context.Context, event domain.TrackedEvent) error {
	return m.Called(ctx, event).Error(0)
}

// --- MockOTPSender ---
type MockOTPSender struct {
	mock.Mock
}

func (m *MockOTPSender) SendOTP(ctx context.Context, email, code string, ttl time.Duration) error {
	return m.Called(ctx, email, code, ttl).Error(0)
}
