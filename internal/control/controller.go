package control

import (
	"fmt"
	"time"

	"chillerd"
	"chillerd/internal/config"
)

// Sensors carries the environmental inputs for one decision.
type Sensors struct {
	// Reference is the antifreeze reference temperature: the dome sensor
	// when reachable, else the chiller's own ambient sensor.
	Reference   float64
	ReferenceOK bool

	Ambient   float64
	AmbientOK bool

	// AnyChannelOn reports whether any monitored power channel is on.
	// False when the power collaborator is unreachable.
	AnyChannelOn bool
}

// Requests carries the remote-call state for one decision.
type Requests struct {
	ManualEnabled bool
	LastKeepAlive time.Time
	Now           time.Time
}

// policy is the automatic decision strategy, selected by configuration.
type policy interface {
	decide(req Requests, in Sensors) bool
	engaged() bool
}

// Controller maps mode plus sensor and request inputs to the desired
// enabled state. Decisions are pure with respect to the outside world; the
// antifreeze policy keeps only its hysteresis latch between calls.
type Controller struct {
	policy policy
}

// New selects the decision policy from configuration.
func New(cfg config.Controller) (*Controller, error) {
	switch cfg.Policy {
	case config.PolicyAntifreeze:
		return &Controller{policy: &antifreezePolicy{
			enableLimit:  cfg.AntifreezeEnableLimit,
			disableLimit: cfg.AntifreezeDisableLimit,
		}}, nil
	case config.PolicyKeepAlive:
		return &Controller{policy: &keepAlivePolicy{
			timeout:        cfg.KeepAliveTimeout,
			frostThreshold: cfg.FrostThreshold,
		}}, nil
	}
	return nil, fmt.Errorf("unknown controller policy %q", cfg.Policy)
}

// Decide returns whether the chiller should be enabled. In Manual mode the
// last explicitly requested value wins and sensor inputs are ignored.
func (c *Controller) Decide(mode chillerd.Mode, req Requests, in Sensors) bool {
	if mode == chillerd.ModeManual {
		return req.ManualEnabled
	}
	return c.policy.decide(req, in)
}

// AntifreezeEngaged reports whether the cold-weather protection latched on
// during the last decision. Feeds the status snapshot.
func (c *Controller) AntifreezeEngaged() bool {
	return c.policy.engaged()
}

// antifreezePolicy enables the chiller when the reference temperature drops
// below enableLimit and keeps it enabled until the reference climbs back to
// disableLimit, or whenever a monitored power channel is on. The gap between
// the two limits prevents chatter around a single threshold.
type antifreezePolicy struct {
	enableLimit  float64
	disableLimit float64
	active       bool
}

func (p *antifreezePolicy) decide(_ Requests, in Sensors) bool {
	if in.ReferenceOK {
		if in.Reference < p.enableLimit {
			p.active = true
		} else if in.Reference >= p.disableLimit {
			p.active = false
		}
	}
	return p.active || in.AnyChannelOn
}

func (p *antifreezePolicy) engaged() bool { return p.active }

// keepAlivePolicy enables the chiller while a cooling consumer has
// recently signalled continued need, or while the ambient temperature sits
// below the frost threshold.
type keepAlivePolicy struct {
	timeout        time.Duration
	frostThreshold float64
	frostGuard     bool
}

func (p *keepAlivePolicy) decide(req Requests, in Sensors) bool {
	p.frostGuard = in.AmbientOK && in.Ambient < p.frostThreshold
	alive := !req.LastKeepAlive.IsZero() && req.Now.Sub(req.LastKeepAlive) < p.timeout
	return alive || p.frostGuard
}

func (p *keepAlivePolicy) engaged() bool { return p.frostGuard }
