package ddr

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config is the reference DDR slave's tunable response latency, in the
// teacher's JSON-config style: a plain struct with json tags, a
// Default constructor, file load/save, and a Validate pass.
type Config struct {
	// ARLatency is the number of cycles between AR handshake and the
	// corresponding R response becoming valid.
	ARLatency uint64 `json:"ar_latency"`
	// AWLatency is the number of cycles between AW handshake and WReady
	// being asserted.
	AWLatency uint64 `json:"aw_latency"`
	// BLatency is the number of cycles between the W handshake and the
	// B response becoming valid.
	BLatency uint64 `json:"b_latency"`
}

// DefaultConfig returns a DDR timing profile with single-digit cycle
// latencies, representative of nothing in particular beyond being
// runnable end to end without an embedder-supplied model.
func DefaultConfig() Config {
	return Config{
		ARLatency: 4,
		AWLatency: 2,
		BLatency:  4,
	}
}

// LoadConfig reads a Config from a JSON file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading ddr config: %w", err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing ddr config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SaveConfig writes a Config to a JSON file.
func SaveConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding ddr config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects configurations that would make the slave respond
// before the request it's responding to, which would violate the AXI4
// ordering the core assumes.
func (c Config) Validate() error {
	if c.ARLatency == 0 {
		return fmt.Errorf("ar_latency must be >= 1")
	}
	if c.AWLatency == 0 {
		return fmt.Errorf("aw_latency must be >= 1")
	}
	if c.BLatency == 0 {
		return fmt.Errorf("b_latency must be >= 1")
	}
	return nil
}

// Clone returns an independent copy.
func (c Config) Clone() Config {
	return c
}
