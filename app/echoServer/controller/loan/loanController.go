package loan

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Danny213123/cps714-group5/service/access"
	"github.com/Danny213123/cps714-group5/service/lending"
)

type Controller struct {
	Svc    lending.Service
	Access access.Service
	V      *validator.Validate
	Log    *slog.Logger
}

func userID(c echo.Context) string {
	uid, _ := c.Get("user_id").(string)
	return uid
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "admin"
}

// POST /v1/loans
func (h *Controller) Checkout(c echo.Context) error {
	var req CheckoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid := userID(c)

	out, err := h.Svc.Checkout(c.Request().Context(), uid, req.ItemID, req.LoanPeriodDays)
	if err != nil {
		switch lending.Code(err) {
		case lending.ErrInvalidPeriod:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid loan period"})
		case lending.ErrLimitReached:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "active loan limit reached"})
		case lending.ErrAlreadyCheckedOut:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "item already checked out"})
		case lending.ErrItemNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "item not found"})
		case lending.ErrNoCopies:
			return c.JSON(http.StatusConflict, echo.Map{"message": "no copies available"})
		default:
			h.Log.Error("checkout", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	// the opaque token in the URL is the sole credential on the download path
	dec, err := h.Access.AuthorizeDownload(out.LoanID, uid, c.Request().Header.Get("X-Device-ID"), c.RealIP())
	if err != nil {
		h.Log.Error("post-checkout authorize", "loan_id", out.LoanID, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"loan_id":      out.LoanID,
		"expires_at":   out.ExpiresAt.Format(time.RFC3339),
		"download_url": downloadURL(out.LoanID, dec.Token),
	})
}

func downloadURL(loanID, token string) string {
	return fmt.Sprintf("/v1/downloads/%s?token=%s", loanID, token)
}

// POST /v1/loans/:id/return
func (h *Controller) Return(c echo.Context) error {
	id := c.Param("id")
	ln, ok := h.Svc.GetLoan(id)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "loan not found"})
	}
	if ln.UserID != userID(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	if !h.Svc.Return(c.Request().Context(), id) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "return failed: loan not active"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "returned"})
}

// POST /v1/loans/:id/renew
func (h *Controller) Renew(c echo.Context) error {
	id := c.Param("id")
	var req RenewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	ln, ok := h.Svc.GetLoan(id)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "loan not found"})
	}
	if ln.UserID != userID(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	if !h.Svc.Renew(c.Request().Context(), id, req.ExtensionDays) {
		return c.JSON(http.StatusConflict, echo.Map{"message": "cannot renew"})
	}
	ln, _ = h.Svc.GetLoan(id)
	return c.JSON(http.StatusOK, echo.Map{"loan_id": id, "expires_at": ln.ExpiresAt.Format(time.RFC3339)})
}

// GET /v1/loans/my?active=true
func (h *Controller) My(c echo.Context) error {
	activeOnly := c.QueryParam("active") == "true"
	rows := h.Svc.GetUserLoans(c.Request().Context(), userID(c), activeOnly)
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// POST /v1/loans/:id/revoke-access  (admin)
func (h *Controller) RevokeAccess(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id := c.Param("id")
	if _, ok := h.Svc.GetLoan(id); !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "loan not found"})
	}
	h.Access.RevokeAccess(id)
	return c.JSON(http.StatusOK, echo.Map{"message": "access revoked"})
}
