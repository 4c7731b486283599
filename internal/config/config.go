// Package config loads the optional HCL configuration file cmd/scheme
// reads at startup, mirroring nomad's HCL-based agent configuration. The
// evaluation core itself takes plain Go values (heap.Options); this
// package only exists to decorate the outer CLI.
package config

import (
	"os"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Config is the decoded shape of a scheme.hcl file. Every field is
// optional; zero values fall back to the core's own defaults.
type Config struct {
	HeapCapacity int      `hcl:"heap_capacity,optional"`
	EnvCapacity  int      `hcl:"env_capacity,optional"`
	LogLevel     string   `hcl:"log_level,optional"`
	Preload      []string `hcl:"preload,optional"`
}

// Load reads and decodes the HCL file at path. A missing file is not an
// error — it just means "use defaults" — but a malformed one is.
func Load(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil
	}
	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
