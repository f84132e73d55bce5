package middleware

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/DanielAlexandrow/next-ecommerce-sub000/cart"
)

func ValidateToken(c *gin.Context) {
	tokenString := c.GetHeader("Authorization")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
		c.Abort()
		return
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		c.Abort()
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
		c.Abort()
		return
	}

	c.Set("user_id", claims["user_id"])
	c.Set("role", claims["role"])

	c.Next()
}

// CallerIdentity builds the cart identity for the request: a guest token
// yields a session identity, a user token a user identity. An optional
// X-Session-ID header on an authenticated request carries the pre-login
// guest session so the resolver can merge the old cart.
func CallerIdentity(c *gin.Context) (cart.Identity, bool) {
	idVal, exists := c.Get("user_id")
	if !exists {
		return cart.Identity{}, false
	}
	id, ok := idVal.(string)
	if !ok || id == "" {
		return cart.Identity{}, false
	}

	role, _ := c.Get("role")
	if role == "guest" {
		return cart.GuestIdentity(id), true
	}

	identity := cart.UserIdentity(id)
	if session := c.GetHeader("X-Session-ID"); session != "" {
		identity = identity.WithSession(session)
	}
	return identity, true
}
