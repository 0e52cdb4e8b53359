package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chillerd"
)

// allowList is a set of network origins authorized for privileged calls.
type allowList struct {
	ips map[string]struct{}
}

func newAllowList(ips []string) *allowList {
	set := make(map[string]struct{}, len(ips))
	for _, ip := range ips {
		set[ip] = struct{}{}
	}
	return &allowList{ips: set}
}

func (a *allowList) contains(ip string) bool {
	_, ok := a.ips[ip]
	return ok
}

// controlIPMiddleware guards mode and manual enable/disable calls. A caller
// outside the control allow-list gets InvalidControlIP and no side effects.
// Rejections are command results, not faults, so they are never logged.
func (h *Handler) controlIPMiddleware(c *gin.Context) {
	if !h.control.contains(c.ClientIP()) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"status":  int(chillerd.InvalidControlIP),
			"message": chillerd.InvalidControlIP.Message(),
		})
		return
	}
	c.Next()
}

// cameraIPMiddleware guards keep-alive notifications. The call is
// fire-and-forget: an unauthorized caller is silently dropped.
func (h *Handler) cameraIPMiddleware(c *gin.Context) {
	if !h.camera.contains(c.ClientIP()) {
		c.AbortWithStatus(http.StatusOK)
		return
	}
	c.Next()
}
