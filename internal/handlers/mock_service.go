package handlers

import (
	"chillerd"
	"chillerd/internal/config"
	"chillerd/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockMonitoring struct {
	report chillerd.StatusReport
}

func (m *mockMonitoring) ReportStatus() chillerd.StatusReport {
	return m.report
}

type mockControl struct {
	setModeResp    chillerd.CommandStatus
	setEnabledResp chillerd.CommandStatus

	setModeCalls    int
	setEnabledCalls int
	notifyCalls     int
	lastMode        string
	lastEnabled     bool
}

func (m *mockControl) SetMode(mode string) chillerd.CommandStatus {
	m.setModeCalls++
	m.lastMode = mode
	return m.setModeResp
}

func (m *mockControl) SetEnabled(enabled bool) chillerd.CommandStatus {
	m.setEnabledCalls++
	m.lastEnabled = enabled
	return m.setEnabledResp
}

func (m *mockControl) NotifyCoolingActive() {
	m.notifyCalls++
}

// ---- Shared Test Helpers ----

const (
	controlIP  = "10.0.0.1"
	cameraIP   = "10.0.0.2"
	strangerIP = "10.9.9.9"
)

func testAllowlists() config.Allowlists {
	return config.Allowlists{
		Control: []string{controlIP},
		Camera:  []string{cameraIP},
	}
}

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, testAllowlists(), nil)
	return h.InitRoutes()
}
