package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserAuth validates user JWT tokens and injects the userId into the context.
func UserAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" {
			log.Println("[AUTH] [ERROR] missing token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		userID, err := parseBearerUserID(raw, secret)
		if err != nil {
			log.Println("[AUTH] [ERROR] token validation failed:", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set("userId", userID)
		c.Next()
	}
}

// OptionalUserAuth injects the userId when a valid bearer token is present
// and lets the request through as anonymous when the header is absent. A
// present but invalid token is still rejected.
func OptionalUserAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" {
			c.Next()
			return
		}

		userID, err := parseBearerUserID(raw, secret)
		if err != nil {
			log.Println("[AUTH] [ERROR] token validation failed:", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set("userId", userID)
		c.Next()
	}
}

func parseBearerUserID(header, secret string) (primitive.ObjectID, error) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return primitive.NilObjectID, jwt.ErrTokenMalformed
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}
	if !token.Valid {
		return primitive.NilObjectID, jwt.ErrTokenUnverifiable
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return primitive.NilObjectID, jwt.ErrTokenInvalidClaims
	}

	userIDValue, ok := claims["userId"].(string)
	if !ok || strings.TrimSpace(userIDValue) == "" {
		return primitive.NilObjectID, jwt.ErrTokenInvalidClaims
	}

	userID, err := primitive.ObjectIDFromHex(userIDValue)
	if err != nil {
		return primitive.NilObjectID, jwt.ErrTokenInvalidClaims
	}

	return userID, nil
}
