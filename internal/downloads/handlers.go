package downloads

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/debrideck/debrideck/internal/debrid"
)

// Handlers provides HTTP handlers for the download list and actions.
type Handlers struct {
	service    *Service
	dispatcher *Dispatcher
}

// NewHandlers creates a new downloads handlers instance.
func NewHandlers(service *Service, dispatcher *Dispatcher) *Handlers {
	return &Handlers{service: service, dispatcher: dispatcher}
}

// RegisterRoutes registers download routes on an Echo group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("/refresh", h.Refresh)
	g.POST("/:kind/:id/link", h.RetrieveLink)
	g.DELETE("/:kind/:id", h.Delete)
}

// List returns display rows filtered by the q parameter.
// GET /api/v1/downloads?q=
func (h *Handlers) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.List(c.QueryParam("q")))
}

// Refresh triggers a re-aggregation in the background. The loading flag
// in subsequent list responses is the only feedback.
// POST /api/v1/downloads/refresh
func (h *Handlers) Refresh(c echo.Context) error {
	go func() {
		// Detached from the request: an in-flight fetch is never
		// aborted by the caller going away.
		if err := h.service.Refresh(context.Background()); err != nil {
			// Already surfaced through the error state and toast.
			_ = err
		}
	}()
	return c.NoContent(http.StatusAccepted)
}

// RetrieveLink requests a direct link for a ready item.
// POST /api/v1/downloads/:kind/:id/link
func (h *Handlers) RetrieveLink(c echo.Context) error {
	item, ok := h.resolveItem(c)
	if !ok {
		return nil
	}

	if !IsReady(item) {
		return c.JSON(http.StatusConflict, map[string]string{"error": "download not ready"})
	}

	link, err := h.dispatcher.RetrieveLink(c.Request().Context(), item)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"link": link})
}

// Delete removes a download. Any download may be deleted, finished or
// not; the list reflects it after the triggered refresh lands.
// DELETE /api/v1/downloads/:kind/:id
func (h *Handlers) Delete(c echo.Context) error {
	item, ok := h.resolveItem(c)
	if !ok {
		return nil
	}

	if err := h.dispatcher.DeleteDownload(c.Request().Context(), item); err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	return c.NoContent(http.StatusAccepted)
}

// resolveItem parses the kind/id path params and looks the item up in
// the held list. On failure the response has already been written and
// false is returned.
func (h *Handlers) resolveItem(c echo.Context) (debrid.TaggedDownload, bool) {
	kind, ok := debrid.ParseKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid kind"})
		return debrid.TaggedDownload{}, false
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return debrid.TaggedDownload{}, false
	}

	item, found := h.service.Item(kind, id)
	if !found {
		c.JSON(http.StatusNotFound, map[string]string{"error": "download not found"})
		return debrid.TaggedDownload{}, false
	}

	return item, true
}
