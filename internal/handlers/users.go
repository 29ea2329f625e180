package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/estatery/listings/internal/auth"
	"github.com/estatery/listings/internal/middleware"
	"github.com/estatery/listings/internal/models"
	"github.com/estatery/listings/internal/types"
	"github.com/estatery/listings/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// UsersHandler serves the /api/users routes.
type UsersHandler struct {
	Auth *auth.Service
}

// NewUsersHandler wires the account routes over the auth service.
func NewUsersHandler(svc *auth.Service) *UsersHandler {
	return &UsersHandler{Auth: svc}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func validateRegister(in *auth.RegisterInput) *types.ValidationError {
	verr := &types.ValidationError{}
	if strings.TrimSpace(in.FirstName) == "" {
		verr.Add("firstName", "is required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		verr.Add("lastName", "is required")
	}
	if !strings.Contains(in.Email, "@") {
		verr.Add("email", "must be a valid email address")
	}
	if len(in.Password) < 6 {
		verr.Add("password", "must be at least 6 characters")
	}
	if verr.Any() {
		return verr
	}
	return nil
}

// Register handles POST /api/users/register
// @Summary Create an account
// @Tags Users
// @Accept json
// @Produce json
// @Param body body auth.RegisterInput true "Account details"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /users/register [post]
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var in auth.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return (&types.ValidationError{}).Add("body", "invalid JSON")
	}
	if verr := validateRegister(&in); verr != nil {
		return verr
	}

	u, tokens, err := h.Auth.Register(c.Context(), in)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, fiber.Map{
		"message": "User registered successfully",
		"user":    u,
		"tokens":  tokens,
	}, fiber.StatusCreated)
}

// Login handles POST /api/users/login
// @Summary Log in
// @Tags Users
// @Accept json
// @Produce json
// @Param body body credentialsRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 423 {object} map[string]interface{}
// @Router /users/login [post]
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var in credentialsRequest
	if err := c.BodyParser(&in); err != nil {
		return (&types.ValidationError{}).Add("body", "invalid JSON")
	}
	if in.Email == "" || in.Password == "" {
		verr := &types.ValidationError{}
		if in.Email == "" {
			verr.Add("email", "is required")
		}
		if in.Password == "" {
			verr.Add("password", "is required")
		}
		return verr
	}

	u, tokens, err := h.Auth.Login(c.Context(), in.Email, in.Password)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, fiber.Map{
		"message": "Login successful",
		"user":    u,
		"tokens":  tokens,
	}, fiber.StatusOK)
}

// Refresh handles POST /api/users/refresh-token
// @Summary Exchange a refresh token for a new access token
// @Tags Users
// @Accept json
// @Produce json
// @Param body body refreshRequest true "Refresh token"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /users/refresh-token [post]
func (h *UsersHandler) Refresh(c *fiber.Ctx) error {
	var in refreshRequest
	if err := c.BodyParser(&in); err != nil {
		return (&types.ValidationError{}).Add("body", "invalid JSON")
	}

	tokens, err := h.Auth.Refresh(c.Context(), in.RefreshToken)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, fiber.Map{
		"message": "Token refreshed successfully",
		"tokens":  tokens,
	}, fiber.StatusOK)
}

// Logout handles POST /api/users/logout
// @Summary Log out one device
// @Description Revokes the supplied refresh token; idempotent
// @Tags Users
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /users/logout [post]
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	var in refreshRequest
	// Body is optional; ignore parse failures.
	_ = c.BodyParser(&in)

	p := middleware.Principal(c)
	if err := h.Auth.Logout(c.Context(), p.ID, in.RefreshToken); err != nil {
		return err
	}
	return utils.MessageResponse(c, "Logged out successfully")
}

// LogoutAll handles POST /api/users/logout-all
// @Summary Log out every device
// @Tags Users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /users/logout-all [post]
func (h *UsersHandler) LogoutAll(c *fiber.Ctx) error {
	p := middleware.Principal(c)
	n, err := h.Auth.LogoutAll(c.Context(), p.ID)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.Map{
		"message":         "Logged out from all devices",
		"sessionsRevoked": n,
	}, fiber.StatusOK)
}

// Me handles GET /api/users/me
// @Summary Current account
// @Tags Users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /users/me [get]
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	p := middleware.Principal(c)
	u, err := h.Auth.Users().GetByID(c.Context(), p.ID)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.Map{"user": u}, fiber.StatusOK)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword handles PUT /api/users/change-password
// @Summary Change the account password
// @Description Revokes all refresh tokens; other devices must log in again
// @Tags Users
// @Accept json
// @Produce json
// @Param body body changePasswordRequest true "Current and new password"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Security BearerAuth
// @Router /users/change-password [put]
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	var in changePasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return (&types.ValidationError{}).Add("body", "invalid JSON")
	}
	if len(in.NewPassword) < 6 {
		return (&types.ValidationError{}).Add("newPassword", "must be at least 6 characters")
	}

	p := middleware.Principal(c)
	if err := h.Auth.ChangePassword(c.Context(), p.ID, in.CurrentPassword, in.NewPassword); err != nil {
		return err
	}
	return utils.MessageResponse(c, "Password changed successfully. Please log in again.")
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword handles POST /api/users/forgot-password
// @Summary Request a password reset
// @Description Responds identically whether or not the account exists
// @Tags Users
// @Accept json
// @Produce json
// @Param body body forgotPasswordRequest true "Account email"
// @Success 200 {object} map[string]interface{}
// @Router /users/forgot-password [post]
func (h *UsersHandler) ForgotPassword(c *fiber.Ctx) error {
	var in forgotPasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return (&types.ValidationError{}).Add("body", "invalid JSON")
	}

	// The response never reveals whether the account exists.
	if _, err := h.Auth.Users().GetByEmail(c.Context(), in.Email); err == nil {
		log.Printf("password reset requested for %s", in.Email)
	}
	return utils.MessageResponse(c, "If an account exists for that email, a reset link has been sent.")
}

// List handles GET /api/users
// @Summary List accounts
// @Description Admin only; newest first
// @Tags Users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param role query string false "Filter by role"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /users [get]
func (h *UsersHandler) List(c *fiber.Ctx) error {
	page, limit := parsePage(c, 10)
	role := c.Query("role")
	if role != "" && !models.ValidRole(role) {
		return (&types.ValidationError{}).Add("role", "must be one of buyer, seller, agent, admin")
	}

	users, total, err := h.Auth.Users().List(c.Context(), page, limit, role)
	if err != nil {
		return err
	}

	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return utils.SuccessResponse(c, fiber.Map{
		"users":       users,
		"total":       total,
		"totalPages":  totalPages,
		"currentPage": page,
	}, fiber.StatusOK)
}

// GetByID handles GET /api/users/:id
// @Summary Fetch one account
// @Description Admin only
// @Tags Users
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *UsersHandler) GetByID(c *fiber.Ctx) error {
	u, err := h.Auth.Users().GetByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return utils.NotFoundResponse(c, "User not found")
		}
		return err
	}
	return utils.SuccessResponse(c, fiber.Map{"user": u}, fiber.StatusOK)
}

// userUpdate carries the admin-mutable account fields; nil means unchanged.
type userUpdate struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"isActive"`
}

// Update handles PUT /api/users/:id
// @Summary Update an account
// @Description Admin only
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User id"
// @Param body body userUpdate true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /users/{id} [put]
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	u, err := h.Auth.Users().GetByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return utils.NotFoundResponse(c, "User not found")
		}
		return err
	}

	var upd userUpdate
	if err := c.BodyParser(&upd); err != nil {
		return (&types.ValidationError{}).Add("body", "invalid JSON")
	}
	if upd.Role != nil && !models.ValidRole(*upd.Role) {
		return (&types.ValidationError{}).Add("role", "must be one of buyer, seller, agent, admin")
	}

	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.IsActive != nil {
		u.IsActive = *upd.IsActive
	}

	if err := h.Auth.Users().Update(c.Context(), u); err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.Map{
		"message": "User updated successfully",
		"user":    u,
	}, fiber.StatusOK)
}

// Delete handles DELETE /api/users/:id
// @Summary Delete an account
// @Description Admin only
// @Tags Users
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	if err := h.Auth.Users().Delete(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return utils.NotFoundResponse(c, "User not found")
		}
		return err
	}
	return utils.MessageResponse(c, "User deleted successfully")
}
