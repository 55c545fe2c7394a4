package handlers

import (
	"time"

	"microblog/internal/middleware"
	"microblog/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// rememberFor approximates a permanent cookie.
const rememberFor = 20 * 365 * 24 * time.Hour

// AuthHandler handles signup, sessions, account activation and password resets.
type AuthHandler struct {
	authService *services.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/signup", h.HandleSignup)
	router.Post("/login", h.HandleLogin)
	router.Delete("/logout", middleware.AuthRequired(), h.HandleLogout)

	activations := router.Group("/account_activations")
	activations.Get("/:token/edit", h.HandleActivate)
	activations.Post("/", h.HandleResendActivation)

	resets := router.Group("/password_resets")
	resets.Post("/", h.HandleRequestReset)
	resets.Get("/:token/edit", h.HandleCheckReset)
	resets.Patch("/:token", h.HandleReset)
}

// HandleSignup creates an inactive account and mails the activation link.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var in services.UserInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, err)
	}

	user, err := h.authService.Register(in)
	if err != nil {
		return respondError(c, h.logger, "Could not register user", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Please check your email to activate your account.",
		"user":    user,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// HandleLogin authenticates the user, issues a session token and, with
// remember_me, the remember-me cookies.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}

	result, err := h.authService.Login(req.Email, req.Password, req.RememberMe)
	if err != nil {
		return respondError(c, h.logger, "Authentication failed", err)
	}

	if result.RememberToken != "" {
		setRememberCookies(c, result.User.ID, result.RememberToken)
	} else {
		clearRememberCookies(c)
	}

	return c.JSON(fiber.Map{
		"message":    "Login successful",
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
		"user":       result.User,
	})
}

// HandleLogout forgets the remember-me token and clears its cookies.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if err := h.authService.Logout(middleware.CurrentUser(c)); err != nil {
		return respondError(c, h.logger, "Could not log out", err)
	}
	clearRememberCookies(c)
	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}

// HandleActivate follows the mailed activation link.
func (h *AuthHandler) HandleActivate(c *fiber.Ctx) error {
	user, err := h.authService.ActivateAccount(c.Query("email"), c.Params("token"))
	if err != nil {
		return respondError(c, h.logger, "Activation failed", err)
	}
	return c.JSON(fiber.Map{
		"message": "Account activated!",
		"user":    user,
	})
}

type emailRequest struct {
	Email string `json:"email"`
}

// HandleResendActivation mails a fresh activation link to an inactive account.
func (h *AuthHandler) HandleResendActivation(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.authService.ResendActivation(req.Email); err != nil {
		return respondError(c, h.logger, "Could not resend activation", err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Please check your email to activate your account.",
	})
}

// HandleRequestReset mails a password reset link.
func (h *AuthHandler) HandleRequestReset(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.authService.RequestPasswordReset(req.Email); err != nil {
		return respondError(c, h.logger, "Could not start password reset", err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Email sent with password reset instructions",
	})
}

// HandleCheckReset reports whether a reset link is still usable.
func (h *AuthHandler) HandleCheckReset(c *fiber.Ctx) error {
	if _, err := h.authService.CheckResetLink(c.Query("email"), c.Params("token")); err != nil {
		return respondError(c, h.logger, "Invalid password reset link", err)
	}
	return c.JSON(fiber.Map{
		"message": "Password reset link is valid",
	})
}

type resetRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// HandleReset sets the new password of a reset link.
func (h *AuthHandler) HandleReset(c *fiber.Ctx) error {
	var req resetRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}

	user, err := h.authService.ResetPassword(req.Email, c.Params("token"), req.Password, req.PasswordConfirmation)
	if err != nil {
		return respondError(c, h.logger, "Password reset failed", err)
	}
	return c.JSON(fiber.Map{
		"message": "Password has been reset.",
		"user":    user,
	})
}

func setRememberCookies(c *fiber.Ctx, userID, token string) {
	expires := time.Now().Add(rememberFor)
	c.Cookie(&fiber.Cookie{
		Name:     middleware.UserIDCookie,
		Value:    userID,
		Expires:  expires,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Cookie(&fiber.Cookie{
		Name:     middleware.RememberTokenCookie,
		Value:    token,
		Expires:  expires,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func clearRememberCookies(c *fiber.Ctx) {
	c.ClearCookie(middleware.UserIDCookie, middleware.RememberTokenCookie)
}
