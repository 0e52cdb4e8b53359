package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chillerd"
	"chillerd/internal/service"
)

func doRequest(r http.Handler, method, path, fromIP, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.RemoteAddr = fromIP + ":51234"
	r.ServeHTTP(w, req)
	return w
}

func decodeStatusBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&service.Service{})
	w := doRequest(r, http.MethodGet, "/health", strangerIP, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestReportStatusIsOpen(t *testing.T) {
	water := 12.3
	mon := &mockMonitoring{report: chillerd.StatusReport{
		Date:        time.Now(),
		Mode:        chillerd.ModeAutomatic,
		ModeLabel:   "AUTOMATIC",
		Status:      chillerd.StateCooling,
		StatusLabel: "COOLING",
		WaterTemp:   &water,
	}}
	r := newTestRouter(&service.Service{Monitoring: mon})

	// Status queries need no allow-list membership.
	w := doRequest(r, http.MethodGet, "/api/v1/chiller/status", strangerIP, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	out := decodeStatusBody(t, w)
	if out["status_label"] != "COOLING" || out["mode_label"] != "AUTOMATIC" {
		t.Fatalf("unexpected body: %v", out)
	}
	if out["water_temp"] != 12.3 {
		t.Fatalf("water_temp = %v", out["water_temp"])
	}
}

func TestSetModeUnauthorized(t *testing.T) {
	ctl := &mockControl{setModeResp: chillerd.Succeeded}
	r := newTestRouter(&service.Service{Control: ctl})

	w := doRequest(r, http.MethodPost, "/api/v1/chiller/mode", strangerIP, `{"mode":"MANUAL"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	out := decodeStatusBody(t, w)
	if out["status"] != float64(chillerd.InvalidControlIP) {
		t.Fatalf("body status = %v, want %d", out["status"], chillerd.InvalidControlIP)
	}
	if out["message"] != chillerd.InvalidControlIP.Message() {
		t.Fatalf("message = %v", out["message"])
	}
	if ctl.setModeCalls != 0 {
		t.Fatalf("rejected call must have no side effects")
	}
}

func TestSetModeAuthorized(t *testing.T) {
	ctl := &mockControl{setModeResp: chillerd.Succeeded}
	r := newTestRouter(&service.Service{Control: ctl})

	w := doRequest(r, http.MethodPost, "/api/v1/chiller/mode", controlIP, `{"mode":"MANUAL"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	out := decodeStatusBody(t, w)
	if out["status"] != float64(chillerd.Succeeded) {
		t.Fatalf("body status = %v", out["status"])
	}
	if ctl.setModeCalls != 1 || ctl.lastMode != "MANUAL" {
		t.Fatalf("mock not called as expected: %+v", ctl)
	}
}

func TestSetModeBadBody(t *testing.T) {
	ctl := &mockControl{}
	r := newTestRouter(&service.Service{Control: ctl})

	w := doRequest(r, http.MethodPost, "/api/v1/chiller/mode", controlIP, `{"nope":true}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if ctl.setModeCalls != 0 {
		t.Fatalf("invalid body must not reach the service")
	}
}

func TestSetEnabledWhileAutomatic(t *testing.T) {
	ctl := &mockControl{setEnabledResp: chillerd.ModeIsAutomatic}
	r := newTestRouter(&service.Service{Control: ctl})

	w := doRequest(r, http.MethodPost, "/api/v1/chiller/enabled", controlIP, `{"enabled":true}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	out := decodeStatusBody(t, w)
	if out["status"] != float64(chillerd.ModeIsAutomatic) {
		t.Fatalf("body status = %v", out["status"])
	}
}

func TestSetEnabledFalseBinds(t *testing.T) {
	ctl := &mockControl{setEnabledResp: chillerd.Succeeded}
	r := newTestRouter(&service.Service{Control: ctl})

	w := doRequest(r, http.MethodPost, "/api/v1/chiller/enabled", controlIP, `{"enabled":false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ctl.setEnabledCalls != 1 || ctl.lastEnabled {
		t.Fatalf("expected SetEnabled(false), got %+v", ctl)
	}
}

func TestNotifyRequiresCameraAllowlist(t *testing.T) {
	ctl := &mockControl{}
	r := newTestRouter(&service.Service{Control: ctl})

	// Authorized camera host refreshes the keep-alive.
	w := doRequest(r, http.MethodPost, "/api/v1/chiller/notify", cameraIP, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ctl.notifyCalls != 1 {
		t.Fatalf("notify calls = %d, want 1", ctl.notifyCalls)
	}

	// Control hosts are a separate allow-list: silently dropped.
	w = doRequest(r, http.MethodPost, "/api/v1/chiller/notify", controlIP, "")
	if w.Code != http.StatusOK {
		t.Fatalf("unauthorized notify must still return 200, got %d", w.Code)
	}
	if ctl.notifyCalls != 1 {
		t.Fatalf("unauthorized notify must be a no-op")
	}
}
