package preferences

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for preferences.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new preferences handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers preference routes on an Echo group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/preferences", h.Get)
	g.PUT("/preferences", h.Update)
}

// Get returns the current preferences.
// GET /api/v1/settings/preferences
func (h *Handlers) Get(c echo.Context) error {
	prefs, err := h.service.Get(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, prefs)
}

// Update applies a partial preferences update.
// PUT /api/v1/settings/preferences
func (h *Handlers) Update(c echo.Context) error {
	var input UpdateInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if err := h.service.Update(c.Request().Context(), input); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	prefs, err := h.service.Get(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, prefs)
}
