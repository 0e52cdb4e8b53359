package chillerd

import "time"

// Mode selects who decides whether the chiller runs: the automatic
// controller or the last manual request.
type Mode int

const (
	ModeManual Mode = iota
	ModeAutomatic
)

var modeLabels = map[Mode]string{
	ModeManual:    "MANUAL",
	ModeAutomatic: "AUTOMATIC",
}

// Label returns a human readable string describing a mode.
func (m Mode) Label() string {
	if l, ok := modeLabels[m]; ok {
		return l
	}
	return "UNKNOWN"
}

// ParseMode converts a remote-call mode string ("AUTOMATIC" / "MANUAL").
// The boolean reports whether the string was recognized.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "AUTOMATIC":
		return ModeAutomatic, true
	case "MANUAL":
		return ModeManual, true
	}
	return ModeManual, false
}

// DeviceState is the chiller hardware status derived from the last poll.
type DeviceState int

const (
	StateDisabled DeviceState = iota
	StateIdle
	StateCooling
	StateHeating
)

var stateLabels = map[DeviceState]string{
	StateDisabled: "OFFLINE",
	StateIdle:     "IDLE",
	StateCooling:  "COOLING",
	StateHeating:  "HEATING",
}

// Label returns a human readable string describing a device state.
func (s DeviceState) Label() string {
	if l, ok := stateLabels[s]; ok {
		return l
	}
	return "UNKNOWN"
}

// DeriveState maps the raw status register to a DeviceState. The pump flag
// gates everything: with the pump stopped the TEC mode character is stale
// and must be ignored.
func DeriveState(pumpOn bool, tecMode byte) DeviceState {
	if !pumpOn {
		return StateIdle
	}
	switch tecMode {
	case 'C':
		return StateCooling
	case 'H':
		return StateHeating
	default:
		return StateIdle
	}
}

// CommandStatus is the numeric return code for remote control calls.
type CommandStatus int

const (
	Succeeded        CommandStatus = 0
	Failed           CommandStatus = 1
	Blocked          CommandStatus = 2
	InvalidControlIP CommandStatus = 3

	ModeIsAutomatic CommandStatus = 10
)

var statusMessages = map[CommandStatus]string{
	Failed:           "error: command failed",
	Blocked:          "error: another command is already running",
	InvalidControlIP: "error: command not accepted from this IP",
	ModeIsAutomatic:  "error: chiller is not in manual mode",
}

// Message returns a human readable string describing a command status.
func (c CommandStatus) Message() string {
	if m, ok := statusMessages[c]; ok {
		return m
	}
	return "error: unknown error code"
}

// StatusSnapshot is the state observed during one poll cycle. Snapshots are
// immutable values: the poll loop publishes a fresh one each cycle and
// readers never see a partially updated copy.
type StatusSnapshot struct {
	Date              time.Time   `json:"date"`
	State             DeviceState `json:"status"`
	SetpointTemp      float64     `json:"setpoint_temp"`
	WaterTemp         float64     `json:"water_temp"`
	AmbientTemp       float64     `json:"ambient_temp"`
	DomeTemp          *float64    `json:"dome_temp,omitempty"` // nil when the dome sensor is unreachable
	TECPower          int         `json:"tec_power"`           // percent, 0..100
	ChannelsEnabled   []string    `json:"channels_enabled,omitempty"`
	AntifreezeEnabled bool        `json:"antifreeze_enabled"`
}

// DisabledSnapshot is the placeholder published while the chiller is
// unreachable.
func DisabledSnapshot(now time.Time) StatusSnapshot {
	return StatusSnapshot{Date: now, State: StateDisabled}
}

// StatusReport merges the latest snapshot with the control mode for status
// queries. Sensor fields are omitted while offline.
type StatusReport struct {
	Date        time.Time   `json:"date"`
	Mode        Mode        `json:"mode"`
	ModeLabel   string      `json:"mode_label"`
	Status      DeviceState `json:"status"`
	StatusLabel string      `json:"status_label"`

	SetpointTemp      *float64 `json:"setpoint_temp,omitempty"`
	WaterTemp         *float64 `json:"water_temp,omitempty"`
	AmbientTemp       *float64 `json:"ambient_temp,omitempty"`
	DomeTemp          *float64 `json:"dome_temp,omitempty"`
	TECPower          *int     `json:"tec_power,omitempty"`
	ChannelsEnabled   []string `json:"channels_enabled,omitempty"`
	AntifreezeEnabled *bool    `json:"antifreeze_enabled,omitempty"`
}

// BuildReport assembles the status query payload from a snapshot and mode.
func BuildReport(s StatusSnapshot, m Mode) StatusReport {
	r := StatusReport{
		Date:        s.Date,
		Mode:        m,
		ModeLabel:   m.Label(),
		Status:      s.State,
		StatusLabel: s.State.Label(),
	}
	if s.State == StateDisabled {
		return r
	}
	setpoint, water, ambient := s.SetpointTemp, s.WaterTemp, s.AmbientTemp
	tec := s.TECPower
	antifreeze := s.AntifreezeEnabled
	r.SetpointTemp = &setpoint
	r.WaterTemp = &water
	r.AmbientTemp = &ambient
	r.DomeTemp = s.DomeTemp
	r.TECPower = &tec
	r.ChannelsEnabled = s.ChannelsEnabled
	r.AntifreezeEnabled = &antifreeze
	return r
}
