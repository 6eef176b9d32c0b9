package middleware

import (
	"net/http"
	"strings"

	"github.com/lumenworks/storefront/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// AdminAuthMiddleware guards the operator endpoints with an HS256 bearer
// token. The subject claim is exposed to handlers as "adminSubject".
func AdminAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing bearer token"))
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid token"))
			return
		}

		if sub, ok := claims["sub"].(string); ok {
			c.Set("adminSubject", sub)
		}
		c.Next()
	}
}
