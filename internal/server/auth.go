package server

import (
	"strings"

	"cookbook/internal/models"
	"cookbook/internal/observability"
	"cookbook/internal/session"

	"github.com/gofiber/fiber/v2"
)

const (
	localUserID = "userID"
	localRole   = "role"
	localToken  = "token"
)

func bearerToken(c *fiber.Ctx) string {
	parts := strings.Split(c.Get(fiber.HeaderAuthorization), " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// authenticate stores the verified caller in locals and the request context.
func (s *Server) authenticate(c *fiber.Ctx, token string) error {
	claims, err := s.userService.ParseToken(token)
	if err != nil {
		return err
	}
	c.Locals(localUserID, claims.UserID)
	c.Locals(localRole, claims.Role)
	c.Locals(localToken, token)
	c.SetUserContext(observability.WithUserID(c.UserContext(), claims.UserID))
	return nil
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return respondError(c, models.NewUnauthorizedError("Authorization required"))
		}
		if err := s.authenticate(c, token); err != nil {
			return respondError(c, err)
		}
		return c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and
// otherwise lets the request through anonymously.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			_ = s.authenticate(c, token)
		}
		return c.Next()
	}
}

// actor is the caller as the authorization policy sees it.
func actor(c *fiber.Ctx) session.Session {
	var s session.Session
	s.UserID, _ = c.Locals(localUserID).(string)
	s.Role, _ = c.Locals(localRole).(string)
	s.Token, _ = c.Locals(localToken).(string)
	return s
}
