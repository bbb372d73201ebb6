package download

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Danny213123/cps714-group5/service/access"
	catalogsvc "github.com/Danny213123/cps714-group5/service/catalog"
	"github.com/Danny213123/cps714-group5/service/lending"
)

// Controller serves the download authorization path. No JWT here: the
// opaque access token in the query string is the sole bearer credential.
type Controller struct {
	Loans   lending.Service
	Access  access.Service
	Catalog catalogsvc.Service
	Log     *slog.Logger
}

// GET /v1/downloads/:id?token=...
func (h *Controller) Authorize(c echo.Context) error {
	loanID := c.Param("id")
	token := c.QueryParam("token")
	if token == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "missing token"})
	}

	ln, ok := h.Loans.GetLoan(loanID)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "loan not found"})
	}
	if !h.Access.ValidateAccess(token, ln.ItemID) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "invalid or expired token"})
	}

	item, err := h.Catalog.Detail(c.Request().Context(), ln.ItemID)
	if err != nil {
		h.Log.Error("download metadata", "loan_id", loanID, "err", err)
		return c.JSON(http.StatusNotFound, echo.Map{"message": "item not found"})
	}

	// actual byte delivery is the content service's job
	return c.JSON(http.StatusOK, echo.Map{
		"authorized": true,
		"loan_id":    loanID,
		"item":       item,
	})
}
