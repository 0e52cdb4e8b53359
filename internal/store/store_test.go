package store

import (
	"sync"
	"testing"
	"time"

	"chillerd"
)

func TestDefaults(t *testing.T) {
	s := New()
	if s.Mode() != chillerd.ModeAutomatic {
		t.Fatalf("default mode = %v, want automatic", s.Mode())
	}
	if s.ManualEnabled() {
		t.Fatalf("manual request must default to disabled")
	}
	if s.Snapshot().State != chillerd.StateDisabled {
		t.Fatalf("initial snapshot must be the Disabled placeholder")
	}
	if !s.LastKeepAlive().IsZero() {
		t.Fatalf("keep-alive timestamp must start zero")
	}
}

func TestPublishReplacesWholesale(t *testing.T) {
	s := New()
	snap := chillerd.StatusSnapshot{
		Date:         time.Now(),
		State:        chillerd.StateCooling,
		WaterTemp:    12.5,
		SetpointTemp: 10,
		TECPower:     50,
	}
	s.Publish(snap)
	got := s.Snapshot()
	if got.State != chillerd.StateCooling || got.WaterTemp != 12.5 || got.TECPower != 50 {
		t.Fatalf("snapshot = %+v", got)
	}
}

func TestPublishTimestampNeverDecreases(t *testing.T) {
	s := New()
	later := time.Now().Add(time.Hour)
	s.Publish(chillerd.StatusSnapshot{Date: later, State: chillerd.StateIdle})
	s.Publish(chillerd.StatusSnapshot{Date: later.Add(-time.Minute), State: chillerd.StateIdle})
	if got := s.Snapshot().Date; got.Before(later) {
		t.Fatalf("snapshot date went backwards: %v < %v", got, later)
	}
}

func TestRemoteCallsWakeThePollLoop(t *testing.T) {
	s := New()
	s.SetMode(chillerd.ModeManual)
	select {
	case <-s.Wake():
	default:
		t.Fatalf("SetMode must signal the wake channel")
	}

	// Multiple notifications coalesce into one pending signal.
	s.SetManualEnabled(true)
	s.NotifyKeepAlive(time.Now())
	select {
	case <-s.Wake():
	default:
		t.Fatalf("expected one pending wake signal")
	}
	select {
	case <-s.Wake():
		t.Fatalf("wake signals must coalesce, got a second one")
	default:
	}
}

func TestReportMergesSnapshotAndMode(t *testing.T) {
	s := New()
	s.SetMode(chillerd.ModeManual)
	s.Publish(chillerd.StatusSnapshot{Date: time.Now(), State: chillerd.StateHeating})
	r := s.Report()
	if r.Mode != chillerd.ModeManual || r.Status != chillerd.StateHeating {
		t.Fatalf("report = %+v", r)
	}
}

func TestConcurrentReadersAndWriter(t *testing.T) {
	s := New()
	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
			}
			s.Publish(chillerd.StatusSnapshot{
				Date:      time.Now(),
				State:     chillerd.StateCooling,
				WaterTemp: float64(i),
				TECPower:  i % 101,
			})
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				snap := s.Snapshot()
				if snap.TECPower < 0 || snap.TECPower > 100 {
					t.Errorf("torn snapshot read: %+v", snap)
					return
				}
				_ = s.Report()
				_ = s.Mode()
			}
		}()
	}

	time.Sleep(10 * time.Millisecond)
	close(done)
	wg.Wait()
}
