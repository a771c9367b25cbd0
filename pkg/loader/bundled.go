package loader

import (
	"bytes"
	_ "embed"
)

// BundledName identifies the embedded payload in logs and hook events.
const BundledName = "bundled:derivation.json"

//go:embed data/derivation.json
var bundled []byte

// Bundled returns a copy of the embedded derivation graph payload.
func Bundled() []byte {
	return bytes.Clone(bundled)
}
