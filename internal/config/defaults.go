package config

import (
	_ "embed"
)

//go:embed defaults/inkgrid.yaml
var defaultYAML []byte
