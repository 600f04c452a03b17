// Package config provides configuration loading and validation for the
// chunked recording service. It handles YAML-based configuration with
// per-section validation and sensible defaults for optional fields.
package config
