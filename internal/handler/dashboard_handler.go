package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/service"
	appErrors "github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/errors"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/response"
)

// DashboardHandler serves admin dashboard statistics and the sidebar menu.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Stats godoc
// @Summary Dashboard statistics
// @Description Aggregated counters for the admin dashboard, cached briefly
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Menu godoc
// @Summary Sidebar menu for the current role
// @Description Return the role's menu; admins may pass ?perspective= to
// @Description preview another role's view
// @Tags Dashboard
// @Produce json
// @Param perspective query string false "Role to preview (admin only)"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /me/menu [get]
func (h *DashboardHandler) Menu(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	menu := service.MenuForRequest(claims.Role, c.Query("perspective"))
	response.JSON(c, http.StatusOK, menu, nil)
}
