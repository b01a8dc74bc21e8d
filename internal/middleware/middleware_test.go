package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/auth"
	"github.com/yigit/schooldesk/internal/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{"roll taken", fmt.Errorf("create: %w", apperrors.ErrRollNumberTaken), http.StatusConflict, dto.ErrorCodeRollTaken},
		{"teacher conflict", apperrors.NewCustomError(apperrors.ErrTeacherDoubleBooked, "Sam is busy"), http.StatusConflict, dto.ErrorCodeTeacherConflict},
		{"section mismatch", apperrors.ErrSectionNotInClass, http.StatusBadRequest, dto.ErrorCodeSectionMismatch},
		{"slot outside", apperrors.ErrSlotOutsideSchedule, http.StatusBadRequest, dto.ErrorCodeSlotOutOfWindow},
		{"session gone", apperrors.ErrSessionNotFound, http.StatusNotFound, dto.ErrorCodeSessionExpired},
		{"student missing", apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"validation", fmt.Errorf("%w: classId must be a UUID", apperrors.ErrValidationFailed), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"conflict", apperrors.NewConflictError("busy"), http.StatusConflict, dto.ErrorCodeConflict},
		{"conflict with own code", apperrors.NewCustomError(apperrors.ErrConflict, "lookup running").WithCode(string(dto.ErrorCodeRollPending)), http.StatusConflict, dto.ErrorCodeRollPending},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestHandleAPIErrorCarriesDetails(t *testing.T) {
	err := apperrors.NewCustomError(apperrors.ErrTeacherDoubleBooked, "Sam is already teaching Grade 2").
		WithDetails(map[string]interface{}{"conflicts": []string{"Grade 2"}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	HandleAPIError(c, err)

	resp := decodeError(t, w)
	assert.Equal(t, "Sam is already teaching Grade 2", resp.Message)
	details, ok := resp.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, details, "conflicts")
}

func TestHandleAPIErrorNamesFirstInvalidField(t *testing.T) {
	err := apperrors.NewCustomError(apperrors.ErrValidationFailed, "invalid rollNumber").
		WithDetails(map[string]interface{}{"fields": []validation.FieldError{{Field: "rollNumber", Rule: "roll_number"}}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	HandleAPIError(c, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "rollNumber", resp.Error.Field)
}

func TestHandleAPIErrorDebugInfoOutsideRelease(t *testing.T) {
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	for _, tt := range []struct {
		mode      string
		wantDebug string
	}{
		{gin.TestMode, "pool closed"},
		{gin.ReleaseMode, ""},
	} {
		t.Run(tt.mode, func(t *testing.T) {
			gin.SetMode(tt.mode)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			HandleAPIError(c, errors.New("pool closed"))

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantDebug, resp.Error.DebugInfo)
		})
	}
}

func newAuthRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", TokenIssuer: "schooldesk.test"})
	m := NewAuthMiddleware(jwtService)

	r := gin.New()
	r.GET("/me", m.JWTAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"staff": c.GetString(ContextStaffID), "org": c.GetString(ContextOrgID)})
	})
	r.PUT("/settings", m.JWTAuth(), m.RoleRequired("ADMIN", "PRINCIPAL"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, jwtService
}

func TestJWTAuth(t *testing.T) {
	r, jwtService := newAuthRouter(t)
	valid, err := jwtService.IssueToken("staff-1", "CLERK", "org-1", "branch-1", time.Hour)
	require.NoError(t, err)
	expired, err := jwtService.IssueToken("staff-1", "CLERK", "org-1", "branch-1", -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{"valid", "Bearer " + valid, http.StatusOK, ""},
		{"quoted", "\"Bearer " + valid + "\"", http.StatusOK, ""},
		{"missing", "", http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"no bearer prefix", valid, http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{"garbage", "Bearer not.a.token", http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, w).Error.Code)
			} else {
				assert.Contains(t, w.Body.String(), `"org":"org-1"`)
			}
		})
	}
}

func TestRoleRequired(t *testing.T) {
	r, jwtService := newAuthRouter(t)

	for role, want := range map[string]int{
		"PRINCIPAL": http.StatusNoContent,
		"CLERK":     http.StatusForbidden,
	} {
		token, err := jwtService.IssueToken("staff-1", role, "org-1", "", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPut, "/settings", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, role)
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(20)
	clock := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"), "burst of two exhausted")
	assert.True(t, limiter.Allow("10.0.0.2"), "clients are limited separately")

	clock = clock.Add(3 * time.Second)
	assert.True(t, limiter.Allow("10.0.0.1"), "one token refills every three seconds")

	r := gin.New()
	r.GET("/roll", NewRateLimiter(1).Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })
	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/roll", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiterSweepsIdleClientsOncePerWindow(t *testing.T) {
	limiter := NewRateLimiter(60)
	clock := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }
	at := func(d time.Duration, key string) {
		clock = time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC).Add(d)
		limiter.Allow(key)
	}
	clients := func() []string {
		keys := make([]string, 0, len(limiter.limiters))
		for k := range limiter.limiters {
			keys = append(keys, k)
		}
		return keys
	}

	at(0, "x")
	at(5*time.Minute, "a")
	at(12*time.Minute, "b")
	assert.ElementsMatch(t, []string{"a", "b"}, clients(), "x idled past the window")

	at(16*time.Minute, "c")
	assert.ElementsMatch(t, []string{"a", "b", "c"}, clients(), "no sweep until a full window has passed")

	at(22*time.Minute, "d")
	assert.ElementsMatch(t, []string{"b", "c", "d"}, clients())
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("requestID")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Body.String())
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{"any origin", []string{"*"}, "https://elsewhere.test", http.StatusNoContent, "*"},
		{"listed origin", []string{"https://admin.example.org"}, "https://admin.example.org", http.StatusNoContent, "https://admin.example.org"},
		{"unlisted origin", []string{"https://admin.example.org"}, "https://elsewhere.test", http.StatusForbidden, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORS(tt.origins))
			r.PUT("/settings", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodOptions, "/settings", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPut)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantAllow, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
