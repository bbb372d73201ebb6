package item

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Danny213123/cps714-group5/model"
	catalogsvc "github.com/Danny213123/cps714-group5/service/catalog"
)

type Controller struct {
	Svc catalogsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "admin"
}

// POST /v1/items  (admin)
func (h *Controller) Create(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	var req CreateItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	item := model.ContentItem{
		Title:       req.Title,
		Author:      req.Author,
		Format:      model.ContentFormat(req.Format),
		TotalCopies: req.TotalCopies,
	}
	if req.Ebook != nil {
		item.Ebook = &model.EbookInfo{PageCount: req.Ebook.PageCount, Genre: req.Ebook.Genre}
	}
	if req.Audiobook != nil {
		item.Audiobook = &model.AudiobookInfo{DurationMinutes: req.Audiobook.DurationMinutes, Narrator: req.Audiobook.Narrator}
	}

	id, err := h.Svc.Create(c.Request().Context(), item)
	if err != nil {
		h.Log.Error("item create", "err", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// POST /v1/items/:id/copies  (admin)
func (h *Controller) AddCopies(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	var req AddCopiesReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	total, err := h.Svc.AddCopies(c.Request().Context(), c.Param("id"), req.Count)
	if err != nil {
		h.Log.Error("add copies", "err", err)
		return c.JSON(http.StatusNotFound, echo.Map{"message": "item not found"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"total_copies": total})
}

// GET /v1/items
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("item list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/items/:id
func (h *Controller) Detail(c echo.Context) error {
	row, err := h.Svc.Detail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "item not found"})
	}
	return c.JSON(http.StatusOK, row)
}
