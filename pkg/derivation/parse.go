package derivation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	errs "github.com/matzehuels/derivgraph/pkg/errors"
)

// Issue is a single field-level validation failure.
type Issue struct {
	// Path is a JSON pointer to the offending value, e.g. "/nodes/0/id".
	// The empty string refers to the document root.
	Path    string `json:"path"`
	Message string `json:"message"`
}

// String formats the issue as "path: message".
func (i Issue) String() string {
	path := i.Path
	if path == "" {
		path = "(root)"
	}
	return path + ": " + i.Message
}

// SchemaValidationError is returned by [Parse] when a payload does not match
// the derivation graph schema.
type SchemaValidationError struct {
	Issues []Issue
	cause  error
}

// Error implements the error interface.
func (e *SchemaValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = is.String()
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

// Unwrap returns the underlying validator or decoder error.
func (e *SchemaValidationError) Unwrap() error { return e.cause }

// Code returns [errs.ErrCodeInvalidSchema].
func (e *SchemaValidationError) Code() errs.Code { return errs.ErrCodeInvalidSchema }

// Parse validates data against the derivation graph schema and decodes it.
//
// The payload is decoded with numbers kept as json.Number, checked against
// the schema, and the validated document is converted into a [Graph].
// Integral numbers written as 1.0 or 1e2 satisfy "integer" and are accepted.
// Malformed JSON, type mismatches, missing fields and integers that do not
// fit an int are all reported as a [*SchemaValidationError]. Dangling child
// or link references are accepted.
func Parse(data []byte) (*Graph, error) {
	schema, err := compiledSchema()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "derivation schema unavailable")
	}

	doc, err := decodeDocument(data)
	if err != nil {
		return nil, &SchemaValidationError{
			Issues: []Issue{{Message: fmt.Sprintf("invalid JSON: %v", err)}},
			cause:  err,
		}
	}

	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return nil, &SchemaValidationError{Issues: []Issue{{Message: err.Error()}}, cause: err}
		}
		return nil, &SchemaValidationError{Issues: leafIssues(ve, nil), cause: err}
	}

	var b graphBuilder
	g := b.graph(doc)
	if len(b.issues) > 0 {
		return nil, &SchemaValidationError{Issues: b.issues}
	}
	return g, nil
}

// decodeDocument decodes exactly one JSON value, keeping numbers exact.
func decodeDocument(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, err
	}
	return doc, nil
}

// leafIssues flattens a validation error tree into its leaf causes, which
// carry the precise instance location.
func leafIssues(ve *jsonschema.ValidationError, out []Issue) []Issue {
	if len(ve.Causes) == 0 {
		return append(out, Issue{Path: ve.InstanceLocation, Message: ve.Message})
	}
	for _, c := range ve.Causes {
		out = leafIssues(c, out)
	}
	return out
}

// graphBuilder converts a schema-valid generic document into a Graph.
// Shapes are guaranteed by validation; only integer ranges can still fail.
type graphBuilder struct {
	issues []Issue
}

var (
	minInt = new(big.Float).SetInt64(math.MinInt)
	maxInt = new(big.Float).SetInt64(math.MaxInt)
)

func (b *graphBuilder) graph(doc any) *Graph {
	obj, _ := doc.(map[string]any)
	nodes, _ := obj["nodes"].([]any)
	links, _ := obj["links"].([]any)

	g := &Graph{
		Nodes: make([]Node, len(nodes)),
		Links: make([]Link, len(links)),
	}
	for i, v := range nodes {
		n, _ := v.(map[string]any)
		path := fmt.Sprintf("/nodes/%d", i)
		g.Nodes[i] = Node{
			ID:       b.int(n["id"], path+"/id"),
			Rule:     asString(n["rule"]),
			Inputs:   asStrings(n["inputs"]),
			Outputs:  asStrings(n["outputs"]),
			Children: b.ints(n["children"], path+"/children"),
		}
	}
	for i, v := range links {
		l, _ := v.(map[string]any)
		path := fmt.Sprintf("/links/%d", i)
		g.Links[i] = Link{
			Source: b.int(l["source"], path+"/source"),
			Target: b.int(l["target"], path+"/target"),
		}
	}
	return g
}

func (b *graphBuilder) int(v any, path string) int {
	num, _ := v.(json.Number)
	if i, err := strconv.ParseInt(string(num), 10, 0); err == nil {
		return int(i)
	}

	f, _, err := big.ParseFloat(string(num), 10, 256, big.ToNearestEven)
	switch {
	case err == nil && !f.IsInt():
		b.issues = append(b.issues, Issue{Path: path, Message: fmt.Sprintf("%s is not an integer", num)})
	case err != nil || f.Cmp(minInt) < 0 || f.Cmp(maxInt) > 0:
		b.issues = append(b.issues, Issue{Path: path, Message: fmt.Sprintf("%s is out of range for an id", num)})
	default:
		i, _ := f.Int64()
		return int(i)
	}
	return 0
}

func (b *graphBuilder) ints(v any, path string) []int {
	items, _ := v.([]any)
	out := make([]int, len(items))
	for i, item := range items {
		out[i] = b.int(item, path+"/"+strconv.Itoa(i))
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStrings(v any) []string {
	items, _ := v.([]any)
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = asString(item)
	}
	return out
}
