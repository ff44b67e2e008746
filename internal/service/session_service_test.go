package service

import (
	"context"
	"errors"
	"testing"

	"interview-prep/internal/domain"
	"interview-prep/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sessionFixture struct {
	sessions  *MockSessionRepository
	questions *MockQuestionRepository
	quizzes   *MockQuizRepository
	materials *MockStudyMaterialRepository
	svc       SessionService
}

func newSessionFixture() *sessionFixture {
	f := &sessionFixture{
		sessions:  new(MockSessionRepository),
		questions: new(MockQuestionRepository),
		quizzes:   new(MockQuizRepository),
		materials: new(MockStudyMaterialRepository),
	}
	purger := NewPurger(new(MockUserRepository), f.sessions, f.questions, f.quizzes, f.materials)
	f.svc = NewSessionService(f.sessions, f.questions, purger)
	return f
}

// expectPurge stubs every delete of a session cascade.
func (f *sessionFixture) expectPurge(id primitive.ObjectID) {
	ids := []primitive.ObjectID{id}
	f.questions.On("DeleteBySessions", mock.Anything, ids).Return(int64(2), nil)
	f.quizzes.On("DeleteBySessions", mock.Anything, ids).Return(int64(1), nil)
	f.materials.On("DeleteBySessions", mock.Anything, []string{id.Hex()}).Return(int64(1), nil)
	f.sessions.On("DeleteMany", mock.Anything, ids).Return(int64(1), nil)
}

func TestSessionService_CreateSession(t *testing.T) {
	userID := primitive.NewObjectID()

	t.Run("questions persisted in submitted order and attached", func(t *testing.T) {
		f := newSessionFixture()
		var created *domain.Session
		f.sessions.On("Create", mock.Anything, mock.AnythingOfType("*domain.Session")).
			Run(func(args mock.Arguments) { created = args.Get(1).(*domain.Session) }).
			Return(nil)
		var inserted []*domain.Question
		f.questions.On("InsertMany", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { inserted = args.Get(1).([]*domain.Question) }).
			Return(nil)
		var attached []primitive.ObjectID
		f.sessions.On("SetQuestions", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { attached = args.Get(2).([]primitive.ObjectID) }).
			Return(nil)

		resp, err := f.svc.CreateSession(context.Background(), userID, &dto.CreateSessionRequest{
			Role:          " Backend Engineer ",
			Experience:    "3",
			TopicsToFocus: "go, databases",
			Questions: []dto.QuestionInput{
				{Question: "First?", Answer: "1"},
				{Question: "Second?", Answer: "2"},
				{Question: "Third?", Answer: "3"},
			},
		})
		require.NoError(t, err)

		require.NotNil(t, created)
		assert.Equal(t, userID, created.User)
		assert.Equal(t, "Backend Engineer", created.Role)
		assert.Equal(t, domain.SessionStatusActive, created.Status)

		require.Len(t, inserted, 3)
		require.Len(t, attached, 3)
		for i, want := range []string{"First?", "Second?", "Third?"} {
			assert.Equal(t, want, inserted[i].Question)
			assert.Equal(t, created.ID, inserted[i].Session)
			assert.Equal(t, inserted[i].ID, attached[i])
			assert.Equal(t, want, resp.Questions[i].Question)
		}
		assert.Equal(t, 3, resp.QuestionCount)
	})

	t.Run("no questions skips inserts", func(t *testing.T) {
		f := newSessionFixture()
		f.sessions.On("Create", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.svc.CreateSession(context.Background(), userID, &dto.CreateSessionRequest{
			Role: "SRE", Experience: "5", TopicsToFocus: "kubernetes",
		})
		require.NoError(t, err)
		assert.Empty(t, resp.Questions)
		f.questions.AssertNotCalled(t, "InsertMany", mock.Anything, mock.Anything)
	})

	t.Run("failed insert removes the half-created session", func(t *testing.T) {
		f := newSessionFixture()
		var created *domain.Session
		f.sessions.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { created = args.Get(1).(*domain.Session) }).
			Return(nil)
		f.questions.On("InsertMany", mock.Anything, mock.Anything).Return(errors.New("write conflict"))
		f.sessions.On("DeleteMany", mock.Anything, mock.Anything).Return(int64(1), nil)
		f.questions.On("DeleteBySessions", mock.Anything, mock.Anything).Return(int64(0), nil)
		f.quizzes.On("DeleteBySessions", mock.Anything, mock.Anything).Return(int64(0), nil)
		f.materials.On("DeleteBySessions", mock.Anything, mock.Anything).Return(int64(0), nil)

		_, err := f.svc.CreateSession(context.Background(), userID, &dto.CreateSessionRequest{
			Role: "SRE", Experience: "5", TopicsToFocus: "kubernetes",
			Questions: []dto.QuestionInput{{Question: "Q?", Answer: "A"}},
		})
		require.Error(t, err)
		assert.Equal(t, domain.CodeInternal, domainCode(t, err))
		require.NotNil(t, created)
		f.sessions.AssertCalled(t, "DeleteMany", mock.Anything, []primitive.ObjectID{created.ID})
		f.sessions.AssertNotCalled(t, "SetQuestions", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed attach removes session and questions", func(t *testing.T) {
		f := newSessionFixture()
		f.sessions.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.questions.On("InsertMany", mock.Anything, mock.Anything).Return(nil)
		f.sessions.On("SetQuestions", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("timeout"))
		f.questions.On("DeleteBySessions", mock.Anything, mock.Anything).Return(int64(1), nil)
		f.quizzes.On("DeleteBySessions", mock.Anything, mock.Anything).Return(int64(0), nil)
		f.materials.On("DeleteBySessions", mock.Anything, mock.Anything).Return(int64(0), nil)
		f.sessions.On("DeleteMany", mock.Anything, mock.Anything).Return(int64(1), nil)

		_, err := f.svc.CreateSession(context.Background(), userID, &dto.CreateSessionRequest{
			Role: "SRE", Experience: "5", TopicsToFocus: "kubernetes",
			Questions: []dto.QuestionInput{{Question: "Q?", Answer: "A"}},
		})
		require.Error(t, err)
		f.questions.AssertCalled(t, "DeleteBySessions", mock.Anything, mock.Anything)
		f.sessions.AssertCalled(t, "DeleteMany", mock.Anything, mock.Anything)
	})
}

func TestSessionService_GetSession(t *testing.T) {
	owner := primitive.NewObjectID()
	session := &domain.Session{ID: primitive.NewObjectID(), User: owner, Role: "SRE"}

	t.Run("missing", func(t *testing.T) {
		f := newSessionFixture()
		f.sessions.On("GetByID", mock.Anything, session.ID).Return(nil, domain.ErrNotFound)

		_, err := f.svc.GetSession(context.Background(), owner, session.ID)
		require.Error(t, err)
		assert.Equal(t, domain.CodeNotFound, domainCode(t, err))
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		f := newSessionFixture()
		f.sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)

		_, err := f.svc.GetSession(context.Background(), primitive.NewObjectID(), session.ID)
		require.Error(t, err)
		assert.Equal(t, domain.CodeForbidden, domainCode(t, err))
		f.questions.AssertNotCalled(t, "ListBySession", mock.Anything, mock.Anything)
	})

	t.Run("owner gets questions", func(t *testing.T) {
		f := newSessionFixture()
		f.sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)
		f.questions.On("ListBySession", mock.Anything, session.ID).Return([]*domain.Question{
			{ID: primitive.NewObjectID(), Session: session.ID, Question: "Pinned", IsPinned: true},
			{ID: primitive.NewObjectID(), Session: session.ID, Question: "Plain"},
		}, nil)

		resp, err := f.svc.GetSession(context.Background(), owner, session.ID)
		require.NoError(t, err)
		require.Len(t, resp.Questions, 2)
		assert.Equal(t, "Pinned", resp.Questions[0].Question)
	})
}

func TestSessionService_DeleteSession(t *testing.T) {
	owner := primitive.NewObjectID()
	session := &domain.Session{ID: primitive.NewObjectID(), User: owner}

	t.Run("cascades to questions, quizzes and materials", func(t *testing.T) {
		f := newSessionFixture()
		f.sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)
		f.expectPurge(session.ID)

		require.NoError(t, f.svc.DeleteSession(context.Background(), owner, session.ID))
		f.questions.AssertExpectations(t)
		f.quizzes.AssertExpectations(t)
		f.materials.AssertExpectations(t)
		f.sessions.AssertExpectations(t)
	})

	t.Run("other user cannot delete", func(t *testing.T) {
		f := newSessionFixture()
		f.sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)

		err := f.svc.DeleteSession(context.Background(), primitive.NewObjectID(), session.ID)
		require.Error(t, err)
		assert.Equal(t, domain.CodeForbidden, domainCode(t, err))
		f.sessions.AssertNotCalled(t, "DeleteMany", mock.Anything, mock.Anything)
	})

	t.Run("session is kept when a child delete fails", func(t *testing.T) {
		f := newSessionFixture()
		ids := []primitive.ObjectID{session.ID}
		f.sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)
		f.questions.On("DeleteBySessions", mock.Anything, ids).Return(int64(2), nil)
		f.quizzes.On("DeleteBySessions", mock.Anything, ids).Return(int64(0), errors.New("network"))

		err := f.svc.DeleteSession(context.Background(), owner, session.ID)
		require.Error(t, err)
		assert.Equal(t, domain.CodeInternal, domainCode(t, err))
		f.sessions.AssertNotCalled(t, "DeleteMany", mock.Anything, mock.Anything)
	})
}

func TestSessionService_MySessions(t *testing.T) {
	f := newSessionFixture()
	owner := primitive.NewObjectID()
	qID := primitive.NewObjectID()
	sessions := []*domain.Session{
		{ID: primitive.NewObjectID(), User: owner, Role: "Newest", Questions: []primitive.ObjectID{qID}},
		{ID: primitive.NewObjectID(), User: owner, Role: "Older"},
	}
	f.sessions.On("ListByUser", mock.Anything, owner).Return(sessions, nil)
	f.questions.On("ListByIDs", mock.Anything, []primitive.ObjectID{qID}).
		Return([]*domain.Question{{ID: qID, Question: "Q"}}, nil)
	f.questions.On("ListByIDs", mock.Anything, []primitive.ObjectID(nil)).Return([]*domain.Question{}, nil)

	resp, err := f.svc.MySessions(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, resp, 2)
	assert.Equal(t, "Newest", resp[0].Role)
	assert.Equal(t, 1, resp[0].QuestionCount)
	require.Len(t, resp[0].Questions, 1)
	assert.Empty(t, resp[1].Questions)
}
