package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/debrideck/debrideck/internal/scheduler"
)

// listTasks returns the registered background tasks.
// GET /api/v1/scheduler/tasks
func (s *Server) listTasks(c echo.Context) error {
	return c.JSON(http.StatusOK, s.sched.ListTasks())
}

// runTask triggers a task immediately, outside its cron schedule.
// POST /api/v1/scheduler/tasks/:id/run
func (s *Server) runTask(c echo.Context) error {
	err := s.sched.RunNow(c.Param("id"))
	switch {
	case errors.Is(err, scheduler.ErrTaskNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, scheduler.ErrTaskRunning):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.NoContent(http.StatusAccepted)
}
