package idgen

import (
	"strings"
	"testing"
	"time"
)

func TestNanoID_Length(t *testing.T) {
	for _, length := range []int{7, 12, 24} {
		if id := NanoID(length)(); len(id) != length {
			t.Fatalf("NanoID(%d): got length %d", length, len(id))
		}
	}
}

func TestNanoID_Alphabet(t *testing.T) {
	id := NanoID(100)()
	for _, c := range id {
		if !strings.ContainsRune(alphabet, c) {
			t.Fatalf("NanoID: unexpected character %q in %q", c, id)
		}
	}
}

func TestWidget_Uniqueness(t *testing.T) {
	gen := Widget()
	seen := make(map[string]struct{}, 5000)
	for i := 0; i < 5000; i++ {
		id := gen()
		if _, ok := seen[id]; ok {
			t.Fatalf("Widget: duplicate at iteration %d: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestSalted_Prefix(t *testing.T) {
	at := time.UnixMilli(1708700000000)
	gen := Salted(func() string { return "abc" }, func() time.Time { return at })
	id := gen()
	if !strings.HasSuffix(id, "abc") {
		t.Fatalf("Salted: %q missing random suffix", id)
	}
	if len(id) != len("abc")+8 {
		t.Fatalf("Salted: unexpected shape %q", id)
	}
}

func TestUUIDv7_Format(t *testing.T) {
	id := UUIDv7()()
	if parts := strings.Split(id, "-"); len(parts) != 5 || len(id) != 36 {
		t.Fatalf("UUIDv7: bad format %q", id)
	}
}

func TestPrefixed(t *testing.T) {
	id := Prefixed("exp_", NanoID(8))()
	if !strings.HasPrefix(id, "exp_") || len(id) != 12 {
		t.Fatalf("Prefixed: got %q", id)
	}
}

func TestSequence(t *testing.T) {
	gen := Sequence("n")
	if a, b := gen(), gen(); a != "n1" || b != "n2" {
		t.Fatalf("Sequence: got %q, %q", a, b)
	}
}
