package utils

import (
	"bytes"
	"testing"
)

func TestHashWithDomain(t *testing.T) {
	data := []byte("blocks")
	a := HashWithDomain("message", data)
	b := HashWithDomain("signature", data)
	if bytes.Equal(a, b) {
		t.Error("different domains should give different hashes")
	}
	if !bytes.Equal(a, HashWithDomain("message", data)) {
		t.Error("HashWithDomain is not deterministic")
	}

	defer func() {
		if recover() == nil {
			t.Error("HashWithDomain should panic on long domain")
		}
	}()
	HashWithDomain(string(make([]byte, 256)), data)
}

func TestEncodeUint64s(t *testing.T) {
	out := EncodeUint64s([]uint64{1, 0x0102})
	want := []byte{
		2, 0, 0, 0,
		1, 0, 0, 0, 0, 0, 0, 0,
		2, 1, 0, 0, 0, 0, 0, 0,
	}
	if !bytes.Equal(out, want) {
		t.Errorf("EncodeUint64s = %v, want %v", out, want)
	}
}

func TestHashUint64sOrderSensitive(t *testing.T) {
	a := HashUint64s("d", []uint64{1, 2})
	b := HashUint64s("d", []uint64{2, 1})
	if a == b {
		t.Error("HashUint64s should depend on order")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
}
