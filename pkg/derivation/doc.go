// Package derivation defines the derivation graph model and its schema.
//
// # Overview
//
// A derivation graph describes how a result was produced: every [Node] is one
// derivation step (a build rule, an inference rule) with the inputs it
// consumed, the outputs it produced and the steps it was derived from. A
// [Link] is a directed edge between two steps.
//
// # JSON Format
//
//	{
//	  "nodes": [
//	    {"id": 1, "rule": "compile", "inputs": ["a.c"], "outputs": ["a.o"], "children": []}
//	  ],
//	  "links": [
//	    {"source": 1, "target": 2}
//	  ]
//	}
//
// # Validation
//
// [Parse] checks a payload against an embedded JSON Schema and decodes it into
// a [Graph]. Validation is structural only: field types, required fields and
// container shapes. References between nodes (children, link endpoints) are
// not checked, and a child id that matches no node still validates. Every
// failure is reported as a [*SchemaValidationError] listing the offending
// locations.
//
// Use [Check] to report dangling references and duplicate ids after a
// successful parse, and [Summarize] for counts, roots and leaves.
package derivation
