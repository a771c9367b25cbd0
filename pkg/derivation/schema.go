package derivation

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "derivation-graph.schema.json"

//go:embed schema/derivation-graph.schema.json
var schemaJSON []byte

// Schema returns the JSON Schema document a payload is validated against.
// The returned slice is a copy.
func Schema() []byte {
	return bytes.Clone(schemaJSON)
}

// compiledSchema compiles the embedded schema on first use. The schema is
// fixed at build time, so a compile failure means the binary is broken.
var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	s, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return s, nil
})
