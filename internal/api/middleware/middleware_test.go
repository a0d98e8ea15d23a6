package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/linskybing/fundraise-go/internal/session"
	"github.com/linskybing/fundraise-go/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseToken(t *testing.T) {
	Init("secret", "fundraise")

	valid, err := GenerateToken("u1", "alice", time.Hour)
	require.NoError(t, err)

	expired, err := GenerateToken("u1", "alice", -time.Minute)
	require.NoError(t, err)

	Init("secret", "someone-else")
	foreign, err := GenerateToken("u1", "alice", time.Hour)
	require.NoError(t, err)
	Init("other-secret", "fundraise")
	wrongKey, err := GenerateToken("u1", "alice", time.Hour)
	require.NoError(t, err)
	Init("secret", "fundraise")

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, &types.Claims{
		UserID:           "u1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "fundraise"},
	})
	noExpStr, err := noExp.SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"valid", valid, false},
		{"expired", expired, true},
		{"wrong issuer", foreign, true},
		{"wrong key", wrongKey, true},
		{"missing expiry", noExpStr, true},
		{"garbage", "abc.def.ghi", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseToken(tt.token)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u1", claims.UID())
			assert.Equal(t, "alice", claims.Username)
		})
	}
}

func sessionRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/who", mw, func(c *gin.Context) {
		sess, ok := session.FromContext(c.Request.Context())
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, sess.UID)
	})
	return r
}

func TestJWTAuthMiddleware(t *testing.T) {
	Init("secret", "fundraise")
	tok, err := GenerateToken("u7", "bob", time.Hour)
	require.NoError(t, err)
	r := sessionRouter(JWTAuthMiddleware())

	t.Run("bearer header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/who", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "u7", w.Body.String())
	})

	t.Run("cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/who", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: tok})
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/who", nil)
		req.Header.Set("Authorization", "Token "+tok)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("query token outside websocket", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/who?token="+tok, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestOptionalJWTMiddleware(t *testing.T) {
	Init("secret", "fundraise")
	r := sessionRouter(OptionalJWTMiddleware())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/who", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestRequireSession(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequireSession(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:*", "https://app.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"http://localhost:19006", true},
		{"https://app.example.com", true},
		{"https://evil.example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("Origin", tt.origin)
			r.ServeHTTP(w, req)
			if tt.allowed {
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Equal(t, http.StatusForbidden, w.Code)
			}
		})
	}
}

func TestOriginAllowed(t *testing.T) {
	allowed := []string{"http://localhost:*", "https://app.example.com"}

	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"exact", allowed, "https://app.example.com", true},
		{"wildcard port", allowed, "http://localhost:8081", true},
		{"different host", allowed, "https://evil.example.com", false},
		{"suffix is not a prefix match", allowed, "https://app.example.com.evil.io", false},
		{"empty list", nil, "http://localhost:8081", false},
		{"allow all", []string{"*"}, "https://anything.io", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OriginAllowed(tt.allowed, tt.origin))
		})
	}
}
