package service

import (
	"chillerd"
	"chillerd/internal/store"
)

// MonitoringService serves status queries: the latest snapshot merged with
// the control mode. Read-only, no side effects.
type MonitoringService struct {
	store *store.StatusStore
}

func NewMonitoringService(st *store.StatusStore) *MonitoringService {
	return &MonitoringService{store: st}
}

func (s *MonitoringService) ReportStatus() chillerd.StatusReport {
	return s.store.Report()
}
