package service

import (
	"context"
	"time"

	"chillerd"
	"chillerd/internal/clients"
	"chillerd/internal/config"
	"chillerd/internal/control"
	"chillerd/internal/logger"
	"chillerd/internal/serial"
	"chillerd/internal/store"
)

// PollerService is the single worker that owns the serial connection. It
// drives the chiller each cycle, consults the controller, issues actuation
// commands and publishes snapshots. All serial failures are recovered here
// through reconnect with backoff; callers only ever see a Disabled status.
type PollerService struct {
	store *store.StatusStore
	link  *serial.Link
	ctrl  *control.Controller
	env   *clients.Environment
	power *clients.Power
	log   *logger.Logger

	queryDelay     time.Duration
	pollInterval   time.Duration
	reconnectDelay time.Duration

	// Error-episode latches: each failure class is logged once when it
	// starts and once more on recovery, never once per cycle.
	episodeErrored bool
	connectLogged  bool
	envDown        bool
	powerDown      bool
}

func NewPollerService(cfg *config.Config, st *store.StatusStore, link *serial.Link,
	env *clients.Environment, power *clients.Power, ctrl *control.Controller,
	log *logger.Logger) *PollerService {
	return &PollerService{
		store:          st,
		link:           link,
		ctrl:           ctrl,
		env:            env,
		power:          power,
		log:            log,
		queryDelay:     cfg.Serial.QueryDelay,
		pollInterval:   cfg.Poll.Interval,
		reconnectDelay: cfg.Poll.ReconnectDelay,
	}
}

// Run drives the Disconnected -> Polling state machine until ctx is
// cancelled. No error terminates the loop.
func (p *PollerService) Run(ctx context.Context) {
	p.log.Infow("chiller poll loop started")
	for ctx.Err() == nil {
		if !p.connect(ctx) {
			continue
		}
		p.poll(ctx)
	}
	p.link.Close()
	p.log.Infow("chiller poll loop stopped")
}

// connect attempts to open the serial link. On failure it publishes a
// Disabled snapshot, logs once per error episode and backs off.
func (p *PollerService) connect(ctx context.Context) bool {
	if err := p.link.Connect(); err != nil {
		p.store.Publish(chillerd.DisabledSnapshot(time.Now()))
		if !p.connectLogged {
			p.log.Errorw("unable to connect to chiller", "err", err)
			p.connectLogged = true
		}
		p.episodeErrored = true
		p.sleep(ctx, p.reconnectDelay)
		return false
	}
	if p.episodeErrored {
		p.log.Infow("chiller connection restored")
	} else {
		p.log.Infow("chiller connection established")
	}
	p.episodeErrored = false
	p.connectLogged = false
	return true
}

// poll runs cycles until a serial error or shutdown. On error the store is
// immediately downgraded to a Disabled placeholder and the connection is
// dropped; mode and requests persist for the next session.
func (p *PollerService) poll(ctx context.Context) {
	for ctx.Err() == nil {
		transitioned, err := p.cycle(ctx)
		if err != nil {
			p.store.Publish(chillerd.DisabledSnapshot(time.Now()))
			p.link.Close()
			p.log.Errorw("chiller communication lost", "err", err)
			p.episodeErrored = true
			p.sleep(ctx, p.reconnectDelay)
			return
		}
		if transitioned {
			// Actuation was applied eagerly; re-read the device state
			// right away so the next snapshot reflects it.
			continue
		}
		p.wait(ctx, p.pollInterval)
	}
}

// cycle performs one full poll: read the device registers, consult the
// collaborators and the controller, actuate if needed, else publish a
// snapshot. Returns transitioned=true when an actuation command was issued
// (no snapshot published, no sleep).
func (p *PollerService) cycle(ctx context.Context) (bool, error) {
	now := time.Now()

	statusPayload, err := p.exchange(serial.CmdReadStatus, "")
	if err != nil {
		return false, err
	}
	pumpOn, tecMode, err := serial.ParseStatusPayload(statusPayload)
	if err != nil {
		return false, err
	}
	state := chillerd.DeriveState(pumpOn, tecMode)

	setpoint, err := p.readTemperature(serial.CmdReadSetpoint)
	if err != nil {
		return false, err
	}
	water, err := p.readTemperature(serial.CmdReadTemperature)
	if err != nil {
		return false, err
	}
	ambient, err := p.readTemperature(serial.CmdReadAmbient)
	if err != nil {
		return false, err
	}
	tecPayload, err := p.exchange(serial.CmdReadTECLevel, "")
	if err != nil {
		return false, err
	}
	tecPower, err := serial.ParseTECLevel(tecPayload)
	if err != nil {
		return false, err
	}

	domeTemp := p.fetchDomeTemp(ctx)
	channels, channelsOK := p.fetchChannels(ctx)

	sensors := control.Sensors{
		Reference:    ambient,
		ReferenceOK:  true,
		Ambient:      ambient,
		AmbientOK:    true,
		AnyChannelOn: channelsOK && len(channels) > 0,
	}
	if domeTemp != nil {
		sensors.Reference = *domeTemp
	}
	requests := control.Requests{
		ManualEnabled: p.store.ManualEnabled(),
		LastKeepAlive: p.store.LastKeepAlive(),
		Now:           now,
	}
	desired := p.ctrl.Decide(p.store.Mode(), requests, sensors)

	enabled := state == chillerd.StateCooling || state == chillerd.StateHeating
	if desired != enabled {
		payload := "0"
		if desired {
			payload = "1"
		}
		if _, err := p.exchange(serial.CmdSetStatus, payload); err != nil {
			return false, err
		}
		p.log.Infow("chiller actuated", "enabled", desired, "state", state.Label())
		return true, nil
	}

	p.store.Publish(chillerd.StatusSnapshot{
		Date:              now,
		State:             state,
		SetpointTemp:      setpoint,
		WaterTemp:         water,
		AmbientTemp:       ambient,
		DomeTemp:          domeTemp,
		TECPower:          tecPower,
		ChannelsEnabled:   channels,
		AntifreezeEnabled: p.ctrl.AntifreezeEngaged(),
	})
	return false, nil
}

// exchange runs one send/receive pair followed by the fixed inter-command
// pacing delay the device needs between exchanges. The exchange itself is
// never cancelled; it runs to completion or to its own I/O timeout.
func (p *PollerService) exchange(cmd serial.Command, payload string) (string, error) {
	reply, err := p.link.Query(cmd, payload)
	if err != nil {
		return "", err
	}
	time.Sleep(p.queryDelay)
	return reply, nil
}

func (p *PollerService) readTemperature(cmd serial.Command) (float64, error) {
	payload, err := p.exchange(cmd, "")
	if err != nil {
		return 0, err
	}
	return serial.ParseTemperature(payload)
}

// fetchDomeTemp queries the environment collaborator best-effort. Failures
// degrade to the chiller's own ambient sensor and are logged once per
// outage, with a matching recovery log.
func (p *PollerService) fetchDomeTemp(ctx context.Context) *float64 {
	if p.env == nil || !p.env.Enabled() {
		return nil
	}
	v, err := p.env.Temperature(ctx)
	if err != nil {
		if !p.envDown {
			p.log.Warnw("environment service unavailable, using chiller ambient sensor", "err", err)
			p.envDown = true
		}
		return nil
	}
	if p.envDown {
		p.log.Infow("environment service recovered")
		p.envDown = false
	}
	return &v
}

// fetchChannels queries the power collaborator best-effort. On failure the
// channel state is excluded from the decision for this cycle.
func (p *PollerService) fetchChannels(ctx context.Context) ([]string, bool) {
	if p.power == nil || !p.power.Enabled() {
		return nil, false
	}
	channels, err := p.power.EnabledChannels(ctx)
	if err != nil {
		if !p.powerDown {
			p.log.Warnw("power service unavailable, ignoring channel state", "err", err)
			p.powerDown = true
		}
		return nil, false
	}
	if p.powerDown {
		p.log.Infow("power service recovered")
		p.powerDown = false
	}
	return channels, true
}

// sleep waits for the backoff interval or shutdown, whichever comes first.
func (p *PollerService) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// wait is the interruptible between-cycle wait: it returns on the poll
// interval elapsing, a remote-call wake signal or shutdown.
func (p *PollerService) wait(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	case <-p.store.Wake():
	}
}
