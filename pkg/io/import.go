package io

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/matzehuels/derivgraph/pkg/derivation"
	errs "github.com/matzehuels/derivgraph/pkg/errors"
)

// ReadPayload reads the raw document at path without validating it.
func ReadPayload(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "no such file: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// ReadJSON reads a document from r and validates it.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*derivation.Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return derivation.Parse(data)
}

// ImportJSON reads the document at path and validates it.
func ImportJSON(path string) (*derivation.Graph, error) {
	data, err := ReadPayload(path)
	if err != nil {
		return nil, err
	}
	g, err := derivation.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
