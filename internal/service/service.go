package service

import (
	"context"

	"chillerd"
	"chillerd/internal/clients"
	"chillerd/internal/config"
	"chillerd/internal/control"
	"chillerd/internal/logger"
	"chillerd/internal/serial"
	"chillerd/internal/store"
)

// Monitoring exposes the read-only merged status.
type Monitoring interface {
	ReportStatus() chillerd.StatusReport
}

// Control exposes the privileged remote operations. Authorization happens
// at the transport layer; these methods only validate mode semantics.
type Control interface {
	SetMode(mode string) chillerd.CommandStatus
	SetEnabled(enabled bool) chillerd.CommandStatus
	NotifyCoolingActive()
}

// Poller runs the background loop that owns the serial connection.
// Stop via context cancellation in main() for graceful shutdown.
type Poller interface {
	Run(ctx context.Context)
}

// Service aggregates all sub-services.
type Service struct {
	Monitoring
	Control
	Poller
}

// NewService wires the shared store, serial link and collaborator clients
// into concrete services.
func NewService(cfg *config.Config, st *store.StatusStore, link *serial.Link,
	env *clients.Environment, power *clients.Power, ctrl *control.Controller,
	log *logger.Logger) *Service {
	return &Service{
		Monitoring: NewMonitoringService(st),
		Control:    NewControlService(st, log),
		Poller:     NewPollerService(cfg, st, link, env, power, ctrl, log),
	}
}
