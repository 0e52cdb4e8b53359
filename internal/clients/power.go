package clients

import (
	"context"
	"net/http"

	"chillerd/internal/config"
)

// Power queries the power-channel collaborator and reports which of the
// monitored channels are switched on. Calls are best-effort: on failure the
// controller excludes channel state from its decision.
type Power struct {
	url      string
	channels []string
	client   *http.Client
}

func NewPower(cfg config.Power) *Power {
	return &Power{
		url:      cfg.URL,
		channels: cfg.Channels,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

// Enabled reports whether a collaborator endpoint is configured.
func (p *Power) Enabled() bool { return p.url != "" }

// EnabledChannels returns the monitored channels the collaborator reports
// as on, preserving the configured order.
func (p *Power) EnabledChannels(ctx context.Context) ([]string, error) {
	payload, err := fetchJSON(ctx, p.client, p.url)
	if err != nil {
		return nil, err
	}
	var on []string
	for _, ch := range p.channels {
		if truthy(payload[ch]) {
			on = append(on, ch)
		}
	}
	return on, nil
}

// truthy interprets the channel field formats the power daemon has used
// over time: booleans, numeric 0/1 and "on"/"off" strings.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t == "1" || t == "on" || t == "true"
	}
	return false
}
