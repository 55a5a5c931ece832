package storage

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestPayload_SetGet(t *testing.T) {
	type deathRecord struct {
		DiedAt int64 `json:"died_at"`
	}

	tests := map[string]struct {
		initial  Payload
		key      string
		value    any
		expErr   bool
		expFound bool
	}{
		"set on nil map": {
			initial:  nil,
			key:      "being-dead",
			value:    deathRecord{DiedAt: 42},
			expFound: true,
		},
		"overwrite existing": {
			initial:  Payload{"being-dead": []byte(`{"died_at":1}`)},
			key:      "being-dead",
			value:    deathRecord{DiedAt: 42},
			expFound: true,
		},
		"marshal error with channel": {
			initial: Payload{},
			key:     "bad",
			value:   make(chan int),
			expErr:  true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p := tt.initial
			err := p.Set(tt.key, tt.value)
			if tt.expErr {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var out deathRecord
			found, err := p.Get(tt.key, &out)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "found", found, tt.expFound)
			testutil.AssertEqual(t, "died at", out.DiedAt, int64(42))
		})
	}
}

func TestPayload_GetMissing(t *testing.T) {
	var p Payload
	var out int
	found, err := p.Get("nothing", &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "found", found, false)
}

func TestPayload_GetBadJSON(t *testing.T) {
	p := Payload{"n": []byte(`"text"`)}
	var out int
	found, err := p.Get("n", &out)
	testutil.AssertEqual(t, "found", found, true)
	testutil.AssertErrorContains(t, err, `unmarshal payload "n"`)
}

func TestPayload_Delete(t *testing.T) {
	p := Payload{"a": []byte("1"), "b": []byte("2")}
	p.Delete("a")
	testutil.AssertEqual(t, "length", len(p), 1)

	var nilPayload Payload
	nilPayload.Delete("a")
}
