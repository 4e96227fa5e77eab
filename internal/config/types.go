package config

// Config represents the main project configuration (kudzu.yaml)
type Config struct {
	Name    string        `yaml:"name" json:"name"`
	Version string        `yaml:"version" json:"version"`
	Node    NodeConfig    `yaml:"node" json:"node"`
	Memory  MemoryConfig  `yaml:"memory" json:"memory"`
	Store   StoreConfig   `yaml:"store" json:"store"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// NodeConfig identifies this agent in causal clocks and OR-Set tags.
type NodeConfig struct {
	ID string `yaml:"id" json:"id"` // opaque agent identifier (default: hostname)
}

// MemoryConfig tunes the vector engine and the co-occurrence store.
type MemoryConfig struct {
	Dimension      int     `yaml:"dimension" json:"dimension"`             // vector length (default 512)
	BlendStrength  float64 `yaml:"blend_strength" json:"blend_strength"`   // contextual blend (default 0.3)
	DecayFactor    float64 `yaml:"decay_factor" json:"decay_factor"`       // maintenance decay (default 0.98)
	PruneThreshold float64 `yaml:"prune_threshold" json:"prune_threshold"` // drop weights below (default 1.0)
	RecallLimit    int     `yaml:"recall_limit" json:"recall_limit"`       // default top-k for queries
}

// StoreConfig configures durable persistence.
type StoreConfig struct {
	Driver string `yaml:"driver" json:"driver"` // sqlite
	Path   string `yaml:"path" json:"path"`     // database file path
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level   string `yaml:"level" json:"level"`     // debug, info, warn, error
	Format  string `yaml:"format" json:"format"`   // text, json
	Metrics string `yaml:"metrics" json:"metrics"` // JSONL metrics file; empty disables export
}
