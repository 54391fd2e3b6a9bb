package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/bonsai/api/http/middleware"
	"github.com/artem13815/bonsai/api/http/presenter"
	"github.com/artem13815/bonsai/pkg/auth"
)

type AuthHandler struct {
	useCase  auth.SessionUseCase
	validate *validator.Validate
}

func NewAuthHandler(useCase auth.SessionUseCase) *AuthHandler {
	return &AuthHandler{useCase: useCase, validate: auth.NewValidator()}
}

type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type verifyResponse struct {
	Valid    bool   `json:"valid"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// Register handles user registration.
// @Summary Register user
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body auth.RegisterInput true "registration payload"
// @Success 201 {object} auth.PublicProfile
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req auth.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid request body")
	}

	p, err := h.useCase.Register(c.UserContext(), req)
	if err != nil {
		return presenter.FromError(c, err)
	}
	profile, err := h.useCase.WhoAmI(p)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, profile)
}

// Login accepts form-encoded or JSON credentials.
// @Summary Login
// @Tags    auth
// @Accept  x-www-form-urlencoded,json
// @Produce json
// @Param   username formData string true "username"
// @Param   password formData string true "password"
// @Success 200 {object} auth.AccessToken
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 429 {object} presenter.ErrorResponse
// @Router  /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid request body")
	}
	return h.login(c, req)
}

// LoginJSON accepts JSON credentials only.
// @Summary Login (JSON)
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body loginRequest true "credentials"
// @Success 200 {object} auth.AccessToken
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 415 {object} presenter.ErrorResponse
// @Router  /auth/login/json [post]
func (h *AuthHandler) LoginJSON(c *fiber.Ctx) error {
	if !c.Is("json") {
		return presenter.Error(c, http.StatusUnsupportedMediaType, "content type must be application/json")
	}
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	return h.login(c, req)
}

func (h *AuthHandler) login(c *fiber.Ctx, req loginRequest) error {
	if err := auth.Validate(h.validate, req); err != nil {
		return presenter.FromError(c, err)
	}
	token, err := h.useCase.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, token)
}

// Me returns the caller's profile.
// @Summary Current user
// @Tags    auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} auth.PublicProfile
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	profile, err := h.useCase.WhoAmI(middleware.Principal(c))
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, profile)
}

// Verify reports whether the presented token is still good.
// @Summary Verify token
// @Tags    auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} verifyResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /auth/verify [get]
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	token, err := auth.ExtractBearer(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return presenter.FromError(c, err)
	}
	status, err := h.useCase.Verify(c.UserContext(), token)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, verifyResponse{Valid: true, UserID: status.UserID, Username: status.Username})
}
