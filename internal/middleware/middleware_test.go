package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"billvox/internal/domain"
	"billvox/internal/middleware"
	"billvox/internal/service"
	"billvox/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	r := gin.New()
	r.Use(middleware.AuthMiddleware(new(mocks.MockAuthService)))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	businessID := uuid.New()
	userID := uuid.New()

	authSvc := new(mocks.MockAuthService)
	authSvc.On("ValidateToken", "good-token").Return(&service.Claims{
		BusinessID: businessID,
		UserID:     userID,
		Email:      "user@test.com",
		Role:       domain.RoleBiller,
	}, nil)

	r := gin.New()
	r.Use(middleware.AuthMiddleware(authSvc))
	r.GET("/ping", func(c *gin.Context) {
		gotBusiness, err := middleware.GetBusinessID(c)
		assert.NoError(t, err)
		assert.Equal(t, businessID, gotBusiness)
		assert.Equal(t, string(domain.RoleBiller), middleware.GetRole(c))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	authSvc := new(mocks.MockAuthService)
	authSvc.On("ValidateToken", mock.Anything).Return(nil, domain.ErrUnauthorized)

	r := gin.New()
	r.Use(middleware.AuthMiddleware(authSvc))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.GET("/admin-only",
		func(c *gin.Context) { c.Set(middleware.ContextKeyRole, string(domain.RoleBiller)) },
		middleware.RequireRole(domain.RoleAdmin),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin-only", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	r2 := gin.New()
	r2.GET("/admin-only",
		func(c *gin.Context) { c.Set(middleware.ContextKeyRole, string(domain.RoleAdmin)) },
		middleware.RequireRole(domain.RoleAdmin),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	w2 := httptest.NewRecorder()
	req2, _ := http.NewRequest(http.MethodGet, "/admin-only", nil)
	r2.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusOK, w2.Code)
}

func TestCORS_AllowedOriginAndPreflight(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CORS([]string{"http://localhost:3000"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w2 := httptest.NewRecorder()
	req2, _ := http.NewRequest(http.MethodOptions, "/ping", nil)
	req2.Header.Set("Origin", "http://localhost:3000")
	r.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusNoContent, w2.Code)

	w3 := httptest.NewRecorder()
	req3, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req3.Header.Set("Origin", "http://evil.example")
	r.ServeHTTP(w3, req3)
	assert.Empty(t, w3.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit_BlocksAfterBurst(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RateLimit(1, 2))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	var lastCode int
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
		r.ServeHTTP(w, req)
		lastCode = w.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}
