package http

import (
	_ "embed"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed dashboard.html
var dashboardHTML string

// DashboardHandler serves the single-page operator dashboard.
type DashboardHandler struct{}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// RegisterRoutes registers the dashboard route on the Echo instance.
func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Dashboard)
}

// Dashboard serves the embedded dashboard page.
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	return c.HTML(http.StatusOK, dashboardHTML)
}
