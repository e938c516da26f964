package requests

import (
	"encoding/json"
)

// Save - persist a new entity
type Save struct {
	Entity json.RawMessage `json:"entity"`
}

// Update - replace a stored entity
type Update struct {
	Entity json.RawMessage `json:"entity"`
}

// Get - fetch one entity by key
type Get struct {
	Key string `json:"key"`
}

// GetAll - fetch all stored entities
type GetAll struct{}

// Delete - remove one entity by key
type Delete struct {
	Key string `json:"key"`
}

// Exists - check whether a key is stored
type Exists struct {
	Key string `json:"key"`
}

// Count - query the number of stored entities
type Count struct{}

// Stats - query store statistics
type Stats struct{}
