package checksum

import "testing"

func TestChanged(t *testing.T) {
	sum, changed := Changed("", []byte("a"))
	if !changed || sum != Sum([]byte("a")) {
		t.Fatalf("first Changed = %q, %v", sum, changed)
	}
	if _, changed := Changed(sum, []byte("a")); changed {
		t.Error("same data reported as changed")
	}
	if _, changed := Changed(sum, []byte("b")); !changed {
		t.Error("different data reported as unchanged")
	}
}
