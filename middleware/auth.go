package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the token claims carried between login and later requests.
// The engine only ever sees the opaque caller id and tenant id resolved
// from them; the token itself is transport concern.
type Claims struct {
	TenantID string `json:"tenant_id,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenTTL is how long an issued login token stays valid.
const TokenTTL = 12 * time.Hour

// IssueToken signs a token for the given caller.
func IssueToken(secret, callerID, tenantID, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		TenantID: tenantID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   callerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// EnsureValidToken is a middleware that will check the validity of our JWT.
func EnsureValidToken(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MISSING_TOKEN",
					"message": "Authorization header with bearer token required",
				},
			})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_TOKEN",
					"message": "Failed to validate token",
				},
			})
			c.Abort()
			return
		}

		// Store the validated identity hints in Gin context
		c.Set("caller_id", claims.Subject)
		c.Set("tenant_id", claims.TenantID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// GetCallerID extracts the caller ID from the Gin context
func GetCallerID(c *gin.Context) (string, error) {
	callerID, exists := c.Get("caller_id")
	if !exists {
		return "", &AuthError{Code: "MISSING_CALLER_ID", Message: "Caller ID not found in context"}
	}

	callerIDStr, ok := callerID.(string)
	if !ok || callerIDStr == "" {
		return "", &AuthError{Code: "INVALID_CALLER_ID", Message: "Caller ID is not a string"}
	}

	return callerIDStr, nil
}

// GetTenantID extracts the optional tenant ID from the Gin context
func GetTenantID(c *gin.Context) string {
	tenantID, exists := c.Get("tenant_id")
	if !exists {
		return ""
	}
	tenantIDStr, _ := tenantID.(string)
	return tenantIDStr
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
