package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"social-publisher/pkg/jwt"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// ActorKey is the gin context key holding the operator identified by the credential.
const ActorKey = "actor"

// AdminAuthMiddleware guards administrative routes with the shared admin secret. The credential may be the
// secret itself, a value matching ADMIN_SECRET_HASH (bcrypt), or an HS256 token signed with the secret.
// With neither secret nor hash configured every request passes.
func AdminAuthMiddleware(secret, secretHash string, jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" && secretHash == "" {
			c.Next()
			return
		}

		credential := extractCredential(c.Request)
		if credential == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: admin secret required"})
			c.Abort()
			return
		}

		if secret != "" && subtle.ConstantTimeCompare([]byte(credential), []byte(secret)) == 1 {
			c.Next()
			return
		}

		if secretHash != "" && bcrypt.CompareHashAndPassword([]byte(secretHash), []byte(credential)) == nil {
			c.Next()
			return
		}

		if jwtService != nil {
			if claims, err := jwtService.ValidateToken(credential); err == nil {
				c.Set(ActorKey, claims.Actor)
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: invalid admin secret"})
		c.Abort()
	}
}

// JobAuthMiddleware guards triggered jobs and service-to-service publish calls with a static bearer secret.
// An unset secret rejects everything.
func JobAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := bearerToken(c.GetHeader("Authorization"))
		if secret == "" || credential == "" || subtle.ConstantTimeCompare([]byte(credential), []byte(secret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func extractCredential(r *http.Request) string {
	if token := bearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	return strings.TrimSpace(r.Header.Get("X-Admin-Secret"))
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
