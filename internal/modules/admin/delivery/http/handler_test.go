package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/collegetrack/internal/entity"
	"anoa.com/collegetrack/internal/middleware"
	"anoa.com/collegetrack/internal/modules/admin/dto"
	"anoa.com/collegetrack/pkg/apperror"
	"anoa.com/collegetrack/pkg/token"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	createErr error
	deleted   []dto.LinkInput
	query     dto.UserListQuery
}

func (s *stubService) ListUsers(_ context.Context, query dto.UserListQuery) (*dto.UserListResponse, error) {
	s.query = query
	return &dto.UserListResponse{}, nil
}

func (s *stubService) CreateLink(_ context.Context, input dto.LinkInput) (*dto.LinkResponse, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &dto.LinkResponse{ID: uuid.New()}, nil
}

func (s *stubService) DeleteLink(_ context.Context, input dto.LinkInput) error {
	s.deleted = append(s.deleted, input)
	return nil
}

func setupRouter(t *testing.T, svc *stubService) (*gin.Engine, *token.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens := token.NewManager("test-secret", time.Hour)
	auth := middleware.NewAuthMiddleware(tokens, "session")
	h := NewAdminHandler(svc)

	r := gin.New()
	group := r.Group("/admin", auth.RequireAuth(), auth.RequireRoles(entity.RoleAdmin))
	group.GET("/users", h.ListUsers)
	group.POST("/links", h.CreateLink)
	group.DELETE("/links", h.DeleteLink)
	return r, tokens
}

func bearer(t *testing.T, tokens *token.Manager, role entity.Role) string {
	t.Helper()
	signed, _, err := tokens.Generate(uuid.New(), "someone@example.com", string(role))
	require.NoError(t, err)
	return "Bearer " + signed
}

func do(r *gin.Engine, method, path, auth string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	r, tokens := setupRouter(t, &stubService{})

	w := do(r, http.MethodGet, "/admin/users", bearer(t, tokens, entity.RoleParent), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodGet, "/admin/users?role=PARENT&page=2", bearer(t, tokens, entity.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListUsers_BindsQuery(t *testing.T) {
	svc := &stubService{}
	r, tokens := setupRouter(t, svc)

	w := do(r, http.MethodGet, "/admin/users?role=STUDENT&search=kim&page=3&limit=5", bearer(t, tokens, entity.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "STUDENT", svc.query.Role)
	assert.Equal(t, "kim", svc.query.Search)
	assert.Equal(t, 3, svc.query.Page)
	assert.Equal(t, 5, svc.query.Limit)

	w = do(r, http.MethodGet, "/admin/users?role=ROBOT", bearer(t, tokens, entity.RoleAdmin), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateLink_Statuses(t *testing.T) {
	svc := &stubService{}
	r, tokens := setupRouter(t, svc)
	admin := bearer(t, tokens, entity.RoleAdmin)
	input := dto.LinkInput{ParentID: uuid.NewString(), StudentID: uuid.NewString()}

	w := do(r, http.MethodPost, "/admin/links", admin, input)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodPost, "/admin/links", admin, map[string]string{"parentId": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.createErr = apperror.ErrConflict
	w = do(r, http.MethodPost, "/admin/links", admin, input)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteLink(t *testing.T) {
	svc := &stubService{}
	r, tokens := setupRouter(t, svc)
	input := dto.LinkInput{ParentID: uuid.NewString(), StudentID: uuid.NewString()}

	w := do(r, http.MethodDelete, "/admin/links", bearer(t, tokens, entity.RoleAdmin), input)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []dto.LinkInput{input}, svc.deleted)
}
