package autorefresh

import _ "embed"

// DefaultSettings is the embedded baseline settings file.
//
//go:embed config/defaults.toml
var DefaultSettings []byte
