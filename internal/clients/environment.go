package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"chillerd/internal/config"
)

// Environment queries the environment-temperature collaborator for the dome
// temperature. Calls are best-effort: the poll loop falls back to the
// chiller's own ambient sensor when this service is unreachable.
type Environment struct {
	url      string
	valueKey string
	validKey string
	client   *http.Client
}

func NewEnvironment(cfg config.Environment) *Environment {
	return &Environment{
		url:      cfg.URL,
		valueKey: cfg.ValueKey,
		validKey: cfg.ValidKey,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

// Enabled reports whether a collaborator endpoint is configured.
func (e *Environment) Enabled() bool { return e.url != "" }

// Temperature fetches the configured temperature reading. When a validity
// key is configured the reading must also be flagged valid.
func (e *Environment) Temperature(ctx context.Context) (float64, error) {
	payload, err := fetchJSON(ctx, e.client, e.url)
	if err != nil {
		return 0, err
	}
	if e.validKey != "" {
		valid, ok := payload[e.validKey].(bool)
		if !ok || !valid {
			return 0, fmt.Errorf("environment reading %q flagged invalid", e.valueKey)
		}
	}
	v, ok := toFloat(payload[e.valueKey])
	if !ok {
		return 0, fmt.Errorf("environment response missing numeric %q", e.valueKey)
	}
	return v, nil
}

// fetchJSON performs a GET with a bounded timeout and decodes a JSON object.
func fetchJSON(ctx context.Context, client *http.Client, url string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", url, resp.Status)
	}
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", url, err)
	}
	return payload, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
