package metrics

import "github.com/kilianp07/fuzzycharge/core/factory"

// Config lists the sinks receiving simulation runs.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
}
