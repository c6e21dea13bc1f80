package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/launchlift/launchlift/internal/auth"
	"github.com/launchlift/launchlift/internal/guard"
	"github.com/launchlift/launchlift/internal/models"
)

type LoginResponse struct {
	Token     string          `json:"token"`
	TokenType string          `json:"type"`
	Identity  models.Identity `json:"identity"`
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req auth.Credentials
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email and password are required",
		})
	}

	slog.Info("Authentication attempt", "email", req.Email, "role", req.Role)

	result, err := s.authn.Login(c.Context(), req)
	if err != nil {
		return authFailure(c, err)
	}

	slog.Info("User successfully authenticated", "email", req.Email)
	return c.JSON(LoginResponse{
		Token:     result.Token,
		TokenType: "Bearer",
		Identity:  result.Identity,
	})
}

func (s *Server) handleSignup(c *fiber.Ctx) error {
	var req auth.SignupPayload
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := s.authn.Signup(c.Context(), req)
	if err != nil {
		var ae *auth.Error
		if errors.As(err, &ae) {
			status := fiber.StatusBadRequest
			if errors.Is(err, auth.ErrEmailTaken) {
				status = fiber.StatusConflict
			}
			return c.Status(status).JSON(fiber.Map{"error": ae.Message})
		}
		slog.Error("Signup error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create account",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(LoginResponse{
		Token:     result.Token,
		TokenType: "Bearer",
		Identity:  result.Identity,
	})
}

func (s *Server) handleSendVerification(c *fiber.Ctx) error {
	var req struct {
		Email string      `json:"email"`
		Role  models.Role `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email is required",
		})
	}

	if err := s.authn.SendVerificationEmail(c.Context(), req.Email, req.Role); err != nil {
		slog.Error("Failed to send verification email", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to send verification email",
		})
	}
	return c.JSON(fiber.Map{"sent": true})
}

func (s *Server) handleVerifyCode(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email and code are required",
		})
	}

	result, err := s.authn.VerifyCode(c.Context(), req.Email, req.Code)
	if err != nil {
		return authFailure(c, err)
	}
	return c.JSON(LoginResponse{
		Token:     result.Token,
		TokenType: "Bearer",
		Identity:  result.Identity,
	})
}

func (s *Server) handlePasswordResetRequest(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email is required",
		})
	}

	if err := s.authn.RequestPasswordReset(c.Context(), req.Email); err != nil {
		slog.Error("Failed to request password reset", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to request password reset",
		})
	}
	// Always report success so the endpoint does not reveal which
	// accounts exist.
	return c.JSON(fiber.Map{"sent": true})
}

func (s *Server) handlePasswordReset(c *fiber.Ctx) error {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil || req.Token == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Token and password are required",
		})
	}

	if err := s.authn.ResetPassword(c.Context(), req.Token, req.Password); err != nil {
		var ae *auth.Error
		if errors.As(err, &ae) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": ae.Message})
		}
		slog.Error("Failed to reset password", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to reset password",
		})
	}
	return c.JSON(fiber.Map{"reset": true})
}

// handleProfile re-resolves the bearer token to its current identity.
func (s *Server) handleProfile(c *fiber.Ctx) error {
	principal := guard.Principal(c)
	if principal == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":    "authentication required",
			"redirect": guard.LoginPath,
		})
	}

	identity, err := s.authn.FetchProfile(c.Context(), rawToken(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":    "session expired",
			"redirect": guard.LoginPath,
		})
	}
	return c.JSON(fiber.Map{"identity": identity})
}

// authFailure maps authenticator errors to responses. Bad credentials stay
// 401; the RequiresOTP flag is forwarded so clients can switch to the
// email verification flow.
func authFailure(c *fiber.Ctx, err error) error {
	var ae *auth.Error
	if errors.As(err, &ae) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":        ae.Message,
			"requires_otp": ae.RequiresOTP,
		})
	}
	slog.Error("Authentication error", "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Authentication service error",
	})
}
