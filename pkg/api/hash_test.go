package api

import "testing"

func TestContentHashDeterministic(t *testing.T) {
	a := ContentHash("# Title\n\nbody")
	b := ContentHash("# Title\n\nbody")
	if a != b {
		t.Fatalf("same content produced different hashes: %s vs %s", a, b)
	}
}

func TestContentHashSensitivity(t *testing.T) {
	a := ContentHash("hello")
	b := ContentHash("hello ")
	if a == b {
		t.Fatalf("trailing whitespace should change the hash")
	}
	if ContentHash("") == ContentHash("\x00") {
		t.Fatalf("empty and NUL bodies should hash differently")
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewID()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id after %d generations: %s", i, id)
		}
		seen[id] = struct{}{}
	}
}
