package middleware

import (
	"github.com/AryanPatankar27/NagrikSathi/internal/config"
	"github.com/AryanPatankar27/NagrikSathi/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AdminRequired guards moderation routes. Two ways in:
//  1. the X-Admin-Token header matching config ADMIN_TOKEN;
//  2. a bearer JWT (verified against JWT_SECRET) whose "role" claim is admin.
//
// Token issuance is not this service's concern; tokens come from the shared
// identity service and are only verified here.
func AdminRequired(cfg *config.Config) fiber.Handler {
	verifyJWT := jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Success: false,
				Message: "Unauthorized: invalid or expired token",
			})
		},
		SuccessHandler: requireAdminClaim,
	})

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
			return c.Next()
		}
		if cfg.JWTSecret == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Success: false,
				Message: "Unauthorized",
			})
		}
		return verifyJWT(c)
	}
}

func requireAdminClaim(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Success: false,
			Message: "Unauthorized",
		})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Success: false,
			Message: "Invalid claims",
		})
	}

	if role, _ := claims["role"].(string); role != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Success: false,
			Message: "Admin access required",
		})
	}
	return c.Next()
}
