package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chillerd"
)

const (
	statusOK           = "ok"
	errInvalidBodyPref = "invalid body: "
)

// respondStatus writes a command result as JSON, including the human
// readable message for non-success codes.
func respondStatus(c *gin.Context, status chillerd.CommandStatus) {
	body := gin.H{"status": int(status)}
	if status != chillerd.Succeeded {
		body["message"] = status.Message()
	}
	c.JSON(httpCodeFor(status), body)
}

func httpCodeFor(status chillerd.CommandStatus) int {
	switch status {
	case chillerd.Succeeded:
		return http.StatusOK
	case chillerd.InvalidControlIP:
		return http.StatusForbidden
	case chillerd.ModeIsAutomatic:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// Request DTO for switching the control mode.
type modeRequest struct {
	Mode string `json:"mode" binding:"required"` // AUTOMATIC | MANUAL
}

// Request DTO for the manual enable/disable request. Pointer so that
// {"enabled": false} still binds.
type enabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Current chiller status merged with the control mode
// @Tags         chiller
// @Produce      json
// @Success      200  {object}  chillerd.StatusReport
// @Router       /api/v1/chiller/status [get]
func (h *Handler) reportStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Monitoring.ReportStatus())
}

// @Summary      Switch between automatic and manual control
// @Description  Restricted to the control allow-list
// @Tags         chiller
// @Accept       json
// @Produce      json
// @Param        body  body      modeRequest  true  "Mode payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      403   {object}  map[string]interface{}
// @Router       /api/v1/chiller/mode [post]
func (h *Handler) setMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	respondStatus(c, h.services.Control.SetMode(req.Mode))
}

// @Summary      Request manual enable/disable
// @Description  Restricted to the control allow-list; rejected while the chiller is in automatic mode
// @Tags         chiller
// @Accept       json
// @Produce      json
// @Param        body  body      enabledRequest  true  "Enable payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      403   {object}  map[string]interface{}
// @Failure      409   {object}  map[string]interface{}
// @Router       /api/v1/chiller/enabled [post]
func (h *Handler) setEnabled(c *gin.Context) {
	var req enabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	respondStatus(c, h.services.Control.SetEnabled(*req.Enabled))
}

// @Summary      Keep-alive notification from a cooling consumer
// @Description  Restricted to the camera allow-list; fire-and-forget
// @Tags         chiller
// @Success      200
// @Router       /api/v1/chiller/notify [post]
func (h *Handler) notifyCoolingActive(c *gin.Context) {
	h.services.Control.NotifyCoolingActive()
	c.Status(http.StatusOK)
}
