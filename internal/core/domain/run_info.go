package domain

import "time"

// RunInfo records the last successful run of a cacheable command.
type RunInfo struct {
	CommandName string    `json:"command_name,omitzero"`
	InputHash   string    `json:"input_hash,omitzero"`
	Timestamp   time.Time `json:"timestamp,omitzero"`
}
