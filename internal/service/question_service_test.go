package service

import (
	"context"
	"testing"

	"interview-prep/internal/domain"
	"interview-prep/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newQuestionFixture() (*MockSessionRepository, *MockQuestionRepository, QuestionService) {
	sessions := new(MockSessionRepository)
	questions := new(MockQuestionRepository)
	return sessions, questions, NewQuestionService(sessions, questions)
}

func TestQuestionService_AddQuestions(t *testing.T) {
	owner := primitive.NewObjectID()
	session := &domain.Session{ID: primitive.NewObjectID(), User: owner}
	inputs := []dto.QuestionInput{
		{Question: " What is a slice? ", Answer: "A view over an array."},
		{Question: "What is a map?", Answer: "A hash table."},
	}

	t.Run("pushes new ids onto the session in order", func(t *testing.T) {
		sessions, questions, svc := newQuestionFixture()
		sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)
		var inserted []*domain.Question
		questions.On("InsertMany", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { inserted = args.Get(1).([]*domain.Question) }).
			Return(nil)
		var pushed []primitive.ObjectID
		sessions.On("AppendQuestions", mock.Anything, session.ID, mock.Anything).
			Run(func(args mock.Arguments) { pushed = args.Get(2).([]primitive.ObjectID) }).
			Return(nil)

		resp, err := svc.AddQuestions(context.Background(), owner, session.ID, inputs)
		require.NoError(t, err)
		require.Len(t, resp, 2)
		assert.Equal(t, "What is a slice?", resp[0].Question)
		assert.Equal(t, session.ID.Hex(), resp[1].Session)
		require.Len(t, pushed, 2)
		assert.Equal(t, []primitive.ObjectID{inserted[0].ID, inserted[1].ID}, pushed)
	})

	t.Run("other user's session is forbidden", func(t *testing.T) {
		sessions, questions, svc := newQuestionFixture()
		sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)

		_, err := svc.AddQuestions(context.Background(), primitive.NewObjectID(), session.ID, inputs)
		require.Error(t, err)
		assert.Equal(t, domain.CodeForbidden, domainCode(t, err))
		questions.AssertNotCalled(t, "InsertMany", mock.Anything, mock.Anything)
	})

	t.Run("session removed before push", func(t *testing.T) {
		sessions, questions, svc := newQuestionFixture()
		sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)
		questions.On("InsertMany", mock.Anything, mock.Anything).Return(nil)
		sessions.On("AppendQuestions", mock.Anything, session.ID, mock.Anything).Return(domain.ErrNotFound)

		_, err := svc.AddQuestions(context.Background(), owner, session.ID, inputs)
		require.Error(t, err)
		assert.Equal(t, domain.CodeNotFound, domainCode(t, err))
	})
}

func TestQuestionService_TogglePin(t *testing.T) {
	owner := primitive.NewObjectID()
	session := &domain.Session{ID: primitive.NewObjectID(), User: owner}

	tests := []struct {
		name    string
		pinned  bool
		wantPin bool
	}{
		{"pins an unpinned question", false, true},
		{"unpins a pinned question", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions, questions, svc := newQuestionFixture()
			q := &domain.Question{ID: primitive.NewObjectID(), Session: session.ID, IsPinned: tt.pinned}
			questions.On("GetByID", mock.Anything, q.ID).Return(q, nil)
			sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)
			questions.On("SetPinned", mock.Anything, q.ID, tt.wantPin).Return(nil)

			resp, err := svc.TogglePin(context.Background(), owner, q.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPin, resp.IsPinned)
			questions.AssertExpectations(t)
		})
	}

	t.Run("missing question", func(t *testing.T) {
		_, questions, svc := newQuestionFixture()
		id := primitive.NewObjectID()
		questions.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)

		_, err := svc.TogglePin(context.Background(), owner, id)
		require.Error(t, err)
		assert.Equal(t, "Question not found", err.Error())
	})

	t.Run("question in someone else's session", func(t *testing.T) {
		sessions, questions, svc := newQuestionFixture()
		q := &domain.Question{ID: primitive.NewObjectID(), Session: session.ID}
		questions.On("GetByID", mock.Anything, q.ID).Return(q, nil)
		sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)

		_, err := svc.TogglePin(context.Background(), primitive.NewObjectID(), q.ID)
		require.Error(t, err)
		assert.Equal(t, domain.CodeForbidden, domainCode(t, err))
		questions.AssertNotCalled(t, "SetPinned", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestQuestionService_UpdateNote(t *testing.T) {
	owner := primitive.NewObjectID()
	session := &domain.Session{ID: primitive.NewObjectID(), User: owner}

	for _, note := range []string{"Remember escape analysis", ""} {
		t.Run("note "+note, func(t *testing.T) {
			sessions, questions, svc := newQuestionFixture()
			q := &domain.Question{ID: primitive.NewObjectID(), Session: session.ID, Note: "old"}
			questions.On("GetByID", mock.Anything, q.ID).Return(q, nil)
			sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)
			questions.On("SetNote", mock.Anything, q.ID, note).Return(nil)

			resp, err := svc.UpdateNote(context.Background(), owner, q.ID, note)
			require.NoError(t, err)
			assert.Equal(t, note, resp.Note)
			questions.AssertExpectations(t)
		})
	}
}
