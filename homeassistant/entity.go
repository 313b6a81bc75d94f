package homeassistant

import "encoding/json"

// EntityState is the document the hub returns from /api/states/{entity_id}.
// Attributes is kept raw: each consumer picks the keys it cares about.
type EntityState struct {
	EntityID    string          `json:"entity_id"`
	State       string          `json:"state"`
	Attributes  json.RawMessage `json:"attributes"`
	LastChanged string          `json:"last_changed"`
	LastUpdated string          `json:"last_updated"`
}
