package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/linskybing/fundraise-go/internal/session"
	"github.com/linskybing/fundraise-go/pkg/response"
	"github.com/linskybing/fundraise-go/pkg/types"
)

var (
	jwtKey    []byte
	jwtIssuer string

	errNoToken = errors.New("authorization required (header or cookie)")
)

// Init sets the JWT signing key and expected issuer.
func Init(secret, issuer string) {
	jwtKey = []byte(secret)
	jwtIssuer = issuer
}

// GenerateToken issues a signed token for uid. Tokens normally come from the
// identity service; this is used by tools and tests.
var GenerateToken = func(uid, username string, expireDuration time.Duration) (string, error) {
	now := time.Now()
	claims := &types.Claims{
		UserID:   uid,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(now.Add(expireDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    jwtIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

// ParseToken validates and extracts claims.
func ParseToken(tokenStr string) (*types.Claims, error) {
	claims := &types.Claims{}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if jwtIssuer != "" {
		opts = append(opts, jwt.WithIssuer(jwtIssuer))
	}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtKey, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UID() == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}

func tokenFromRequest(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", errors.New("authorization header format must be Bearer {token}")
		}
		return parts[1], nil
	}
	if cookie, err := c.Cookie("token"); err == nil && cookie != "" {
		return cookie, nil
	}
	// browsers cannot set headers on a websocket handshake
	if q := c.Query("token"); q != "" && c.IsWebsocket() {
		return q, nil
	}
	return "", errNoToken
}

func attachSession(c *gin.Context, claims *types.Claims) {
	sess := session.Session{UID: claims.UID(), Username: claims.Username}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	c.Set("claims", claims)
	c.Request = c.Request.WithContext(session.NewContext(c.Request.Context(), sess))
}

// JWTAuthMiddleware validates Bearer token in Authorization header or cookie.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := tokenFromRequest(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{Error: err.Error()})
			return
		}

		claims, err := ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{Error: "Invalid token: " + err.Error()})
			return
		}

		attachSession(c, claims)
		c.Next()
	}
}

// OptionalJWTMiddleware attaches a session when a valid token is present and
// lets anonymous requests through otherwise.
func OptionalJWTMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := tokenFromRequest(c)
		if err == nil {
			if claims, perr := ParseToken(tokenStr); perr == nil {
				attachSession(c, claims)
			}
		}
		c.Next()
	}
}
