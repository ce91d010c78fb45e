package middleware

import (
	"net/http"
	"strings"

	"anoa.com/collegetrack/internal/entity"
	"anoa.com/collegetrack/pkg/response"
	"anoa.com/collegetrack/pkg/token"
	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	tokens     *token.Manager
	cookieName string
}

func NewAuthMiddleware(tokens *token.Manager, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:     tokens,
		cookieName: cookieName,
	}
}

// RequireAuth accepts the session cookie, an "Authorization: Bearer" header, or a
// ?token= query parameter (websockets), in that order. A stale cookie does not hide a
// valid token from a later source.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		var candidates []string

		if cookie, err := c.Cookie(m.cookieName); err == nil && cookie != "" {
			candidates = append(candidates, cookie)
		}

		parts := strings.Split(c.GetHeader("Authorization"), " ")
		if len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "" {
			candidates = append(candidates, parts[1])
		}

		if q := c.Query("token"); q != "" {
			candidates = append(candidates, q)
		}

		if len(candidates) == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		var (
			claims *token.Claims
			err    error
		)
		for _, candidate := range candidates {
			if claims, err = m.tokens.Parse(candidate); err == nil {
				break
			}
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}

// RequireRoles must run after RequireAuth.
func (m *AuthMiddleware) RequireRoles(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := entity.Role(c.GetString("user_role"))
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role for this action"})
	}
}

// CurrentActor reads the authenticated caller set by RequireAuth.
func CurrentActor(c *gin.Context) (entity.Actor, error) {
	userID, err := response.GetUserID(c)
	if err != nil {
		return entity.Actor{}, err
	}
	role, err := response.GetUserRole(c)
	if err != nil {
		return entity.Actor{}, err
	}
	return entity.Actor{ID: userID, Role: entity.Role(role)}, nil
}
