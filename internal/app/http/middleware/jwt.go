package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"buildtactical/config"
	"buildtactical/internal/domain/identity"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie carries the JWT for the page-style routes; API clients use
// the Authorization header.
const SessionCookie = "session"

// AuthMiddleware validates the session JWT and stores user_id, email and
// role in the context. JSON 401 on failure.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing session"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// PageAuthMiddleware is the same check with redirect semantics: a guarded
// page visited without a valid session goes to sign-in.
func PageAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c) {
			c.Redirect(http.StatusSeeOther, "/sign-in")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Authenticated reports whether the request carries a valid session,
// without aborting. Used by the root redirect.
func Authenticated(c *gin.Context) bool {
	return authenticate(c)
}

func authenticate(c *gin.Context) bool {
	if _, exists := c.Get("user_id"); exists {
		return true
	}

	tokenString := bearerToken(c)
	if tokenString == "" {
		if cookie, err := c.Cookie(SessionCookie); err == nil {
			tokenString = cookie
		}
	}
	if tokenString == "" {
		return false
	}

	jwtKey := []byte(config.JWT_SECRET)
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtKey, nil
	})
	if err != nil || !token.Valid {
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	if email, ok := claims["email"].(string); ok {
		c.Set("email", email)
	}
	if role, ok := claims["role"].(string); ok {
		c.Set("role", role)
	}
	if userIDFloat, ok := claims["user_id"].(float64); ok {
		c.Set("user_id", uint(userIDFloat))
	}
	return true
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return ""
	}
	return tokenString
}

// RequireRole gates a route group on an exact role tag.
func RequireRole(role identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Role not found in session"})
			c.Abort()
			return
		}

		stored, _ := value.(string)
		if identity.ParseRole(stored) != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			c.Abort()
			return
		}

		c.Next()
	}
}
