package storage

import (
	"encoding/json"
	"fmt"
)

// Payload holds opaque per-owner JSON blobs keyed by the component that
// wrote them.
type Payload map[string]json.RawMessage

// Set stores v under key after marshalling it to JSON.
func (p *Payload) Set(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal payload %q: %w", key, err)
	}

	if *p == nil {
		*p = Payload{}
	}
	(*p)[key] = json.RawMessage(b)
	return nil
}

// Get unmarshals the value at key into out.
// Returns (found=false, nil) if not present.
func (p Payload) Get(key string, out any) (bool, error) {
	raw, ok := p[key]
	if !ok || len(raw) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("unmarshal payload %q: %w", key, err)
	}
	return true, nil
}

func (p Payload) Delete(key string) {
	delete(p, key)
}
