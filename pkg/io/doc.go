// Package io reads and writes derivation graph documents.
//
// # Import
//
// [ImportJSON] reads a file and validates it with [derivation.Parse];
// [ReadJSON] does the same for any io.Reader. [ReadPayload] returns the raw
// bytes without validating, for callers that hand the payload to a
// [loader.Loader]:
//
//	g, err := io.ImportJSON("graph.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Import errors carry codes from the errors package: FILE_NOT_FOUND when
// the path does not exist and INVALID_SCHEMA when validation fails.
//
// # Export
//
// [WriteJSON] and [ExportJSON] write indented JSON; [WriteYAML] writes the
// same document as YAML. Node and link order is preserved, so an exported
// document re-imports to an identical graph.
//
// [derivation.Parse]: github.com/matzehuels/derivgraph/pkg/derivation.Parse
// [loader.Loader]: github.com/matzehuels/derivgraph/pkg/loader.Loader
package io
