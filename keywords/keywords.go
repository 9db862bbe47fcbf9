// Package keywords embeds the built-in keyword definitions.
package keywords

import "embed"

// FS holds one JSON file per keyword and YAML files holding lists of definitions.
//
//go:embed *.json *.yaml
var FS embed.FS
