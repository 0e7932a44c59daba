package middleware

import (
	"complaint_tracker_backend/internal/model"
	"complaint_tracker_backend/internal/util"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeValidator struct {
	claims map[string]*util.Claims
	err    error
}

func (f fakeValidator) ValidateToken(ctx context.Context, token string) (*util.Claims, error) {
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.claims[token]; ok {
		return c, nil
	}
	return nil, util.ErrTokenRevoked
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/probe", func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, string(claims.Role))
	})
	return r
}

func do(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	v := fakeValidator{claims: map[string]*util.Claims{
		"good": {UserID: 1, Role: model.Warden},
	}}
	r := newRouter(AuthMiddleware(v))

	cases := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{"valid bearer", "Bearer good", http.StatusOK, "WARDEN"},
		{"lowercase scheme", "bearer good", http.StatusOK, "WARDEN"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"no scheme", "good", http.StatusUnauthorized, ""},
		{"basic scheme", "Basic Z29vZA==", http.StatusUnauthorized, ""},
		{"unknown token", "Bearer revoked", http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, tc.header)
			assert.Equal(t, tc.code, w.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, w.Body.String())
			}
		})
	}
}

func TestAuthMiddlewareStoreFailureIs500(t *testing.T) {
	r := newRouter(AuthMiddleware(fakeValidator{err: errors.New("redis down")}))
	w := do(r, "Bearer good")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRoleMiddleware(t *testing.T) {
	v := fakeValidator{claims: map[string]*util.Claims{
		"student": {UserID: 1, Role: model.Student},
		"warden":  {UserID: 2, Role: model.Warden},
		"faculty": {UserID: 3, Role: model.Faculty},
		"admin":   {UserID: 4, Role: model.Admin},
	}}
	r := newRouter(AuthMiddleware(v), RoleMiddleware(model.Warden, model.Faculty))

	assert.Equal(t, http.StatusForbidden, do(r, "Bearer student").Code)
	assert.Equal(t, http.StatusOK, do(r, "Bearer warden").Code)
	assert.Equal(t, http.StatusOK, do(r, "Bearer faculty").Code)
	assert.Equal(t, http.StatusOK, do(r, "Bearer admin").Code)

	unauth := newRouter(RoleMiddleware(model.Warden))
	assert.Equal(t, http.StatusUnauthorized, do(unauth, "").Code)
}

type recordingActivity struct {
	mu   sync.Mutex
	seen []uint
	done chan struct{}
}

func (r *recordingActivity) UpdateLastSeen(userID uint) error {
	r.mu.Lock()
	r.seen = append(r.seen, userID)
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func TestActivityMiddleware(t *testing.T) {
	v := fakeValidator{claims: map[string]*util.Claims{"t": {UserID: 9, Role: model.Student}}}
	repo := &recordingActivity{done: make(chan struct{}, 1)}
	r := newRouter(AuthMiddleware(v), ActivityMiddleware(repo))

	require.Equal(t, http.StatusOK, do(r, "Bearer t").Code)
	select {
	case <-repo.done:
	case <-time.After(time.Second):
		t.Fatal("last seen was never updated")
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, []uint{9}, repo.seen)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := newRouter(RequestLogger(zap.New(core)))

	w := do(r, "")
	require.Equal(t, http.StatusOK, w.Code)
	id := w.Header().Get(util.RequestIDHeader)
	assert.NotEmpty(t, id)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, id, fields["request_id"])
	assert.Equal(t, "/probe", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(util.RequestIDHeader, "caller-supplied")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "caller-supplied", w.Header().Get(util.RequestIDHeader))
}
