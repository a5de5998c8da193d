package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/debrideck/debrideck/internal/config"
)

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// getStatus reports version and whether a credential is available.
// GET /api/v1/status
func (s *Server) getStatus(c echo.Context) error {
	_, credErr := s.creds.Credential(c.Request().Context())

	return c.JSON(http.StatusOK, map[string]interface{}{
		"version":       config.Version,
		"startTime":     s.startTime.Format(time.RFC3339),
		"credentialSet": credErr == nil,
		"loading":       s.downloadsService.Loading(),
		"wsClients":     s.hub.ClientCount(),
	})
}

// testConnection verifies the resolved credential against the remote
// service.
// POST /api/v1/settings/test
func (s *Server) testConnection(c echo.Context) error {
	ctx := c.Request().Context()

	cred, err := s.creds.Credential(ctx)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := s.client.Test(ctx, cred); err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
