package handler_test

import (
	"context"
	"testing"

	"interview-prep/internal/domain"
	"interview-prep/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"anonymous", "", fiber.StatusUnauthorized},
		{"member", "member", fiber.StatusForbidden},
		{"admin", "admin", fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp()

			resp, err := app.Test(request("GET", "/api/admin/health", tt.token, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestAdminHandler_Health(t *testing.T) {
	app, _ := newTestApp()

	resp, err := app.Test(request("GET", "/api/admin/health", "admin", nil))
	require.NoError(t, err)

	var body dto.HealthResponse
	decode(t, resp, &body)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "admin-api", body.Service)
	assert.False(t, body.Timestamp.IsZero())
}

func TestAdminHandler_ListUsersQuery(t *testing.T) {
	t.Run("parsed", func(t *testing.T) {
		app, s := newTestApp()
		s.admin.ListUsersFunc = func(_ context.Context, q *dto.AdminUserListQuery) (*dto.AdminUserListResponse, error) {
			assert.Equal(t, 2, q.Page)
			assert.Equal(t, 25, q.Limit)
			assert.Equal(t, "ada", q.Search)
			assert.Equal(t, "inactive", q.Status)
			return &dto.AdminUserListResponse{Pagination: dto.NewPaginationInfo(q.Page, q.Limit, 30)}, nil
		}

		resp, err := app.Test(request("GET", "/api/admin/users?page=2&limit=25&search=ada&status=inactive", "admin", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("limit above 100", func(t *testing.T) {
		app, _ := newTestApp()

		resp, err := app.Test(request("GET", "/api/admin/users?limit=500", "admin", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown role", func(t *testing.T) {
		app, _ := newTestApp()

		resp, err := app.Test(request("GET", "/api/admin/users?role=root", "admin", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestAdminHandler_DeleteUserPassesActor(t *testing.T) {
	app, s := newTestApp()
	target := primitive.NewObjectID()
	s.admin.DeleteUserFunc = func(_ context.Context, actorID, id primitive.ObjectID) error {
		assert.Equal(t, adminUser.ID, actorID)
		if actorID == id {
			return domain.NewInvalidInputError("You cannot delete your own account")
		}
		return nil
	}

	resp, err := app.Test(request("DELETE", "/api/admin/users/"+target.Hex(), "admin", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(request("DELETE", "/api/admin/users/"+adminUser.ID.Hex(), "admin", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAdminHandler_MaterialsByQuestion(t *testing.T) {
	app, s := newTestApp()
	questionID := primitive.NewObjectID()
	sessionID := primitive.NewObjectID().Hex()
	s.admin.MaterialsByQuestionFunc = func(_ context.Context, qid primitive.ObjectID, sid string) ([]dto.StudyMaterialResponse, error) {
		assert.Equal(t, questionID, qid)
		assert.Equal(t, sessionID, sid)
		return []dto.StudyMaterialResponse{{QuestionID: qid.Hex(), SessionID: sid}}, nil
	}

	resp, err := app.Test(request("GET", "/api/admin/study-materials/question/"+questionID.Hex()+"?session_id="+sessionID, "admin", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data []dto.StudyMaterialResponse `json:"data"`
	}
	decode(t, resp, &body)
	require.Len(t, body.Data, 1)
	assert.Equal(t, sessionID, body.Data[0].SessionID)
}
