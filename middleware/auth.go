// middleware/auth.go
package middleware

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"smartbeans/achievements"
	"smartbeans/models"
)

// Request locals set by the auth middlewares.
const (
	LocalUsername    = "username"
	LocalGraderToken = "graderToken"
)

// UserRegistry records users on their first authenticated request.
type UserRegistry interface {
	EnsureUser(ctx context.Context, username string) (*models.User, error)
}

// Claims is the JWT payload. Token is the user's grading-service session.
type Claims struct {
	Username string `json:"username"`
	Token    string `json:"token"`
	jwt.RegisteredClaims
}

// IssueToken signs a token for username that carries the grading-service
// session token.
func IssueToken(secret, username, graderToken string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		Token:    graderToken,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func parseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(401, "Invalid signing method")
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, fiber.NewError(401, "Invalid or expired token")
	}
	if claims.Username == "" {
		return nil, fiber.NewError(401, "Invalid token claims")
	}
	return claims, nil
}

// AuthMiddleware validates the bearer token and stores the identity in the
// request locals.
func AuthMiddleware(secret string, users UserRegistry, logger *slog.Logger) fiber.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"success": false, "error": "Missing authorization header"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(401).JSON(fiber.Map{"success": false, "error": "Invalid authorization header format"})
		}

		claims, err := parseToken(secret, parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"success": false, "error": err.Error()})
		}

		if users != nil {
			if _, err := users.EnsureUser(c.UserContext(), claims.Username); err != nil {
				logger.Error("registering user failed", slog.String("user", claims.Username), slog.Any("error", err))
				return fiber.NewError(fiber.StatusServiceUnavailable, "User store unavailable")
			}
		}

		c.Locals(LocalUsername, claims.Username)
		c.Locals(LocalGraderToken, claims.Token)
		return c.Next()
	}
}

// WebSocketAuthMiddleware validates the token of a websocket upgrade. Browsers
// cannot set headers on upgrades, so the token may come as ?token=.
func WebSocketAuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var tokenString string

		// Try Authorization header first (Bearer token)
		if parts := strings.Split(c.Get("Authorization"), " "); len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			return fiber.NewError(401, "Missing token")
		}

		claims, err := parseToken(secret, tokenString)
		if err != nil {
			return err
		}

		c.Locals(LocalUsername, claims.Username)
		c.Locals(LocalGraderToken, claims.Token)
		return c.Next()
	}
}

// GetUsername returns the authenticated username.
func GetUsername(c *fiber.Ctx) (string, error) {
	if name, ok := c.Locals(LocalUsername).(string); ok && name != "" {
		return name, nil
	}
	return "", fiber.NewError(401, "User not authenticated")
}

// GetIdentity returns the authenticated user with the grading-service token.
func GetIdentity(c *fiber.Ctx) (achievements.Identity, error) {
	name, err := GetUsername(c)
	if err != nil {
		return achievements.Identity{}, err
	}
	token, _ := c.Locals(LocalGraderToken).(string)
	return achievements.Identity{Username: name, Token: token}, nil
}
