package service

import (
	"time"

	"chillerd"
	"chillerd/internal/logger"
	"chillerd/internal/store"
)

// ControlService records remote control requests in the shared store. It
// never touches the serial connection: the poll loop picks the requests up
// on its next decision, woken early by the store's wake signal.
type ControlService struct {
	store *store.StatusStore
	log   *logger.Logger
}

func NewControlService(st *store.StatusStore, log *logger.Logger) *ControlService {
	return &ControlService{store: st, log: log}
}

// SetMode switches between automatic and manual control.
func (s *ControlService) SetMode(mode string) chillerd.CommandStatus {
	m, ok := chillerd.ParseMode(mode)
	if !ok {
		return chillerd.Failed
	}
	s.store.SetMode(m)
	if s.log != nil {
		s.log.Infow("control mode changed", "mode", m.Label())
	}
	return chillerd.Succeeded
}

// SetEnabled records a manual enable/disable request. Only honored in
// manual mode; the request is left untouched otherwise.
func (s *ControlService) SetEnabled(enabled bool) chillerd.CommandStatus {
	if s.store.Mode() != chillerd.ModeManual {
		return chillerd.ModeIsAutomatic
	}
	s.store.SetManualEnabled(enabled)
	if s.log != nil {
		s.log.Infow("manual request recorded", "enabled", enabled)
	}
	return chillerd.Succeeded
}

// NotifyCoolingActive refreshes the keep-alive timestamp. Fire-and-forget:
// outside automatic mode the notification is dropped without an error.
func (s *ControlService) NotifyCoolingActive() {
	if s.store.Mode() != chillerd.ModeAutomatic {
		return
	}
	s.store.NotifyKeepAlive(time.Now())
}
