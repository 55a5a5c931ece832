package storage

import (
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
)

const numbersSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id"],
		"properties": {"id": {"type": "integer"}}
	}
}`

func TestDecodeValidated(t *testing.T) {
	schema, err := CompileSchema("numbers.schema.json", []byte(numbersSchema))
	if err != nil {
		t.Fatalf("compiling schema: %v", err)
	}

	tests := map[string]struct {
		data   string
		expErr string
		expLen int
	}{
		"valid":          {data: `[{"id":1},{"id":2}]`, expLen: 2},
		"missing id":     {data: `[{"name":"x"}]`, expErr: "schema validation"},
		"wrong type":     {data: `[{"id":"one"}]`, expErr: "schema validation"},
		"not json":       {data: `[{`, expErr: "parsing json"},
		"not even array": {data: `{"id":1}`, expErr: "schema validation"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var out []struct {
				ID int64 `json:"id"`
			}
			err := DecodeValidated([]byte(tt.data), schema, &out)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "length", len(out), tt.expLen)
		})
	}
}

func TestLoadValidated_MissingFile(t *testing.T) {
	schema, err := CompileSchema("numbers.schema.json", []byte(numbersSchema))
	if err != nil {
		t.Fatalf("compiling schema: %v", err)
	}
	var out []any
	err = LoadValidated(filepath.Join(t.TempDir(), "nope.json"), schema, &out)
	testutil.AssertErrorContains(t, err, "nope.json")
}
