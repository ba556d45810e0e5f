package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt"

	"github.com/arturoeanton/scout/internal/domain"
	"github.com/arturoeanton/scout/internal/port"
)

// JWTConfig holds JWT middleware configuration.
type JWTConfig struct {
	Secret    string
	Issuer    string
	ExpiresIn time.Duration
}

// Claims represents the admin token payload.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.StandardClaims
}

// JWTMiddleware creates a Fiber middleware that validates admin tokens
// and injects an AdminContext into the request context.
func JWTMiddleware(cfg JWTConfig) fiber.Handler {
	return func(c fiber.Ctx) error {
		var token string

		// Try Authorization header first
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				token = parts[1]
			}
		}

		// Fallback: ?token= query param (for SSE/EventSource which can't set headers)
		if token == "" {
			token = c.Query("token")
		}

		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing authorization",
			})
		}

		claims, err := ValidateJWT(token, cfg)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		c.Locals("admin", &domain.AdminContext{
			Subject: claims.Subject,
			Name:    claims.Name,
			Role:    claims.Role,
		})

		return c.Next()
	}
}

// GetAdminContext extracts the AdminContext from Fiber locals.
func GetAdminContext(c fiber.Ctx) *domain.AdminContext {
	a, ok := c.Locals("admin").(*domain.AdminContext)
	if !ok {
		return nil
	}
	return a
}

// GenerateJWT creates a signed HS256 token for an operator.
func GenerateJWT(admin domain.AdminContext, cfg JWTConfig) (string, error) {
	now := time.Now()
	claims := Claims{
		Name: admin.Name,
		Role: admin.Role,
		StandardClaims: jwt.StandardClaims{
			Subject:   admin.Subject,
			Issuer:    cfg.Issuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(cfg.ExpiresIn).Unix(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateJWT parses tokenStr and checks signature, expiry and issuer.
func ValidateJWT(tokenStr string, cfg JWTConfig) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, port.ErrTokenExpired
		}
		return nil, port.ErrTokenInvalid
	}
	if !token.Valid || !claims.VerifyIssuer(cfg.Issuer, true) {
		return nil, port.ErrTokenInvalid
	}
	return claims, nil
}
