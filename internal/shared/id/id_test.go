package id

import (
	"strings"
	"sync"
	"testing"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	if id1.String() == id2.String() {
		t.Error("Generated IDs should be unique")
	}
}

func TestGenerateString(t *testing.T) {
	gen := NewGenerator()

	id := gen.GenerateString()

	if len(id) != 26 {
		t.Errorf("ULID should be 26 characters, got %d", len(id))
	}
}

func TestGenerateWithPrefix(t *testing.T) {
	gen := NewGenerator()

	tests := []struct {
		prefix string
	}{
		{"inst"},
		{"sess"},
		{"req"},
	}

	for _, tt := range tests {
		id := gen.GenerateWithPrefix(tt.prefix)

		if !strings.HasPrefix(id, tt.prefix+"_") {
			t.Errorf("ID should start with '%s_', got: %s", tt.prefix, id)
		}

		parts := strings.Split(id, "_")
		if len(parts) != 2 {
			t.Errorf("Prefixed ID should have format 'prefix_ulid', got: %s", id)
		}

		if !IsValid(parts[1]) {
			t.Errorf("ULID part should be valid: %s", parts[1])
		}
	}
}

func TestTypedIDs(t *testing.T) {
	inst := NewInstanceID()
	sess := NewSessionID()
	req := NewRequestID()

	if !strings.HasPrefix(inst.String(), "inst_") {
		t.Errorf("Instance ID should have inst_ prefix, got: %s", inst)
	}
	if !strings.HasPrefix(sess.String(), "sess_") {
		t.Errorf("Session ID should have sess_ prefix, got: %s", sess)
	}
	if !strings.HasPrefix(req.String(), "req_") {
		t.Errorf("Request ID should have req_ prefix, got: %s", req)
	}
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()
	seen := make(map[string]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := gen.GenerateString()
				mu.Lock()
				if seen[id] {
					t.Errorf("Duplicate ID generated: %s", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
}

func TestTimestamp(t *testing.T) {
	gen := NewGenerator()
	id := gen.GenerateString()

	ts, err := Timestamp(id)
	if err != nil {
		t.Fatalf("Timestamp extraction failed: %v", err)
	}
	if ts.IsZero() {
		t.Error("Timestamp should not be zero")
	}
}
