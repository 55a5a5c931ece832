package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// CompileSchema compiles an in-memory JSON schema registered under name.
func CompileSchema(name string, schema []byte) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("adding schema %s: %w", name, err)
	}
	s, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", name, err)
	}
	return s, nil
}

// DecodeValidated checks data against schema before unmarshalling it into out.
func DecodeValidated(data []byte, schema *jsonschema.Schema, out any) error {
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("parsing json: %w", err)
	}
	if err := schema.Validate(generic); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding: %w", err)
	}
	return nil
}

// LoadValidated reads path and decodes it with DecodeValidated.
func LoadValidated(path string, schema *jsonschema.Schema, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := DecodeValidated(data, schema, out); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
