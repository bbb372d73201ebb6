package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	jwtutil "github.com/Danny213123/cps714-group5/util/jwt"
)

// Controller mints bearer tokens for local development. Real deployments
// front the API with an external identity provider; the engine only needs
// the sub claim, so this endpoint is disabled outside dev.
type Controller struct {
	JWTSecret string
	Env       string
	V         *validator.Validate
	Log       *slog.Logger
}

type mintReq struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"omitempty,oneof=user admin"`
}

// POST /v1/auth/token  (dev only)
func (h *Controller) Mint(c echo.Context) error {
	if h.Env != "dev" {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	}
	var req mintReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	if req.Role == "" {
		req.Role = "user"
	}

	tok, err := jwtutil.Issue(h.JWTSecret, req.UserID, req.Role, 24)
	if err != nil {
		h.Log.Error("token mint", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"token": tok})
}
