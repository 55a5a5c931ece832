package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/pixil98/go-errors"
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9-]*$`)

// CurrentVersion is written into every saved document.
const CurrentVersion = 1

type ValidatingSpec interface {
	Validate() error
}

// Document is the envelope around every state file the engine writes.
type Document[T ValidatingSpec] struct {
	Version    uint   `json:"version"`
	Identifier string `json:"id"`
	Spec       T      `json:"spec"`
}

func NewDocument[T ValidatingSpec](id string, spec T) *Document[T] {
	return &Document[T]{
		Version:    CurrentVersion,
		Identifier: id,
		Spec:       spec,
	}
}

func (d *Document[T]) Validate() error {
	el := errors.NewErrorList()

	if d.Version == 0 {
		el.Add(fmt.Errorf("version must be set"))
	} else if d.Version > CurrentVersion {
		el.Add(fmt.Errorf("version %d is newer than supported version %d", d.Version, CurrentVersion))
	}

	if d.Identifier == "" {
		el.Add(fmt.Errorf("id must be set"))
	}

	if !identifierPattern.MatchString(d.Identifier) {
		el.Add(fmt.Errorf("id must be alphanumeric"))
	}

	el.Add(d.Spec.Validate())

	return el.Err()
}

// ReadDocument loads and validates the document at path. A missing file is
// reported with an error satisfying errors.Is(err, os.ErrNotExist).
func ReadDocument[T ValidatingSpec](path, id string, spec T) (*Document[T], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	doc := &Document[T]{Spec: spec}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("unmarshalling %s: %w", path, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	if doc.Identifier != id {
		return nil, fmt.Errorf("%s holds %q, expected %q", path, doc.Identifier, id)
	}

	return doc, nil
}
