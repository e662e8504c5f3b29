// Package config loads and validates summarizer configuration.
//
// Configuration is YAML with ${VAR} environment expansion. Load reads the
// raw file, LoadWithDefaults fills unset fields, and LoadAndValidate is what
// binaries call.
package config
