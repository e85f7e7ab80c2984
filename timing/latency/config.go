package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// Fetch buffer modes.
const (
	FetchBufferDisabled = "disabled"
	FetchBufferOpcode   = "opcode"
	FetchBufferFull     = "full"
)

// TimingConfig holds the memory-system parameters that turn ARM7TDMI bus
// cycle counts into clock cycles.
type TimingConfig struct {
	// ClockHz is the core clock. Default: 16.78 MHz.
	ClockHz uint64 `json:"clock_hz"`

	// NonSequentialWaitStates is added to every N cycle. Default: 3.
	NonSequentialWaitStates uint64 `json:"n_wait_states"`

	// SequentialWaitStates is added to every S cycle. Default: 1.
	SequentialWaitStates uint64 `json:"s_wait_states"`

	// InternalCycleCost is the length of an I cycle. Default: 1.
	InternalCycleCost uint64 `json:"internal_cycle_cost"`

	// FetchBufferMode selects which reads the fetch buffer serves:
	// "disabled", "opcode" or "full". Default: "disabled".
	FetchBufferMode string `json:"fetch_buffer_mode"`

	// FetchBufferLines is the number of buffered lines. Default: 4.
	FetchBufferLines int `json:"fetch_buffer_lines"`

	// FetchLineBytes is the line size in bytes. Default: 16.
	FetchLineBytes int `json:"fetch_line_bytes"`

	// FetchMissPenalty is the stall on a line miss. Default: 3 cycles.
	FetchMissPenalty uint64 `json:"fetch_miss_penalty"`
}

// DefaultTimingConfig returns a TimingConfig for a flash-backed ARM7TDMI
// with the fetch buffer off.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ClockHz:                 16_777_216,
		NonSequentialWaitStates: 3,
		SequentialWaitStates:    1,
		InternalCycleCost:       1,
		FetchBufferMode:         FetchBufferDisabled,
		FetchBufferLines:        4,
		FetchLineBytes:          16,
		FetchMissPenalty:        3,
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Missing fields keep
// their defaults.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timing config %s: %w", path, err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration is usable.
func (c *TimingConfig) Validate() error {
	if c.ClockHz == 0 {
		return fmt.Errorf("clock_hz must be > 0")
	}
	if c.InternalCycleCost == 0 {
		return fmt.Errorf("internal_cycle_cost must be > 0")
	}
	switch c.FetchBufferMode {
	case FetchBufferDisabled, FetchBufferOpcode, FetchBufferFull:
	default:
		return fmt.Errorf("fetch_buffer_mode %q must be disabled, opcode or full", c.FetchBufferMode)
	}
	if c.FetchBufferLines <= 0 {
		return fmt.Errorf("fetch_buffer_lines must be > 0")
	}
	if c.FetchLineBytes < 4 || c.FetchLineBytes&(c.FetchLineBytes-1) != 0 {
		return fmt.Errorf("fetch_line_bytes must be a power of two >= 4")
	}
	return nil
}

// Clone returns a copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
