package responses

// Result - outcome of a mutating operation
type Result struct {
	// did it work or not
	Success bool   `json:"success"`
	Key     string `json:"key,omitempty"`
	// whether a delete actually removed an entity
	Found bool `json:"found,omitempty"`
}

// Exists - whether a key is stored
type Exists struct {
	Exists bool `json:"exists"`
}

// Count - number of stored entities
type Count struct {
	Count int `json:"count"`
}

// Stats - store statistics
type Stats struct {
	Count int `json:"count"`
	// retained backup snapshots, newest first
	Revisions []string `json:"revisions"`
}
