package test

import (
	"bytes"
	"context"
	"math/big"
	"strings"
	"testing"

	rsablocks "github.com/BackendStack21/rsa-blocks-go"
	"github.com/BackendStack21/rsa-blocks-go/codec"
	"github.com/BackendStack21/rsa-blocks-go/core"
	"github.com/BackendStack21/rsa-blocks-go/decoder"
	"github.com/BackendStack21/rsa-blocks-go/keyring"
	"github.com/BackendStack21/rsa-blocks-go/modexp"
	"github.com/BackendStack21/rsa-blocks-go/report"
)

const (
	expectedMessage   = "MESSAGE ENCRYPTED AN IS THIS"
	expectedSignature = "VINCE"
)

func TestSubmissionDecodes(t *testing.T) {
	p, err := core.GetPreset(core.DefaultKeyName)
	if err != nil {
		t.Fatalf("GetPreset failed: %v", err)
	}

	var out bytes.Buffer
	tr, err := report.Run(context.Background(), &out, decoder.New(p.Key), p.Message, p.Signature)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if tr.Message.Text != expectedMessage {
		t.Errorf("message = %q, want %q", tr.Message.Text, expectedMessage)
	}
	if tr.Signature.Text != expectedSignature {
		t.Errorf("signature = %q, want %q", tr.Signature.Text, expectedSignature)
	}

	lines := strings.Split(out.String(), "\n")
	if lines[0] != "=== DECRYPTING MESSAGE ===" {
		t.Errorf("first line = %q", lines[0])
	}
	if lines[1] != "1096074 -> 22 -> 'M'" {
		t.Errorf("second line = %q", lines[1])
	}
}

// Every block must agree with an independent big-integer computation.
func TestBlocksMatchBigInt(t *testing.T) {
	p := core.VincePreset
	n := new(big.Int).SetUint64(p.Key.N)
	d := new(big.Int).SetUint64(p.Key.D)

	for _, c := range append(append([]uint64{}, p.Message...), p.Signature...) {
		want := new(big.Int).Exp(new(big.Int).SetUint64(c), d, n).Uint64()
		if got := modexp.ModExp(c, p.Key.D, p.Key.N); got != want {
			t.Errorf("ModExp(%d) = %d, want %d", c, got, want)
		}
	}
}

func TestLookupTotalOverDecryptedRange(t *testing.T) {
	// Every value in [0, n) either maps or yields the invalid marker.
	n := core.VincePreset.Key.N
	mapped := 0
	for code := uint64(0); code < n; code++ {
		if _, ok := codec.Standard.Lookup(code); ok {
			mapped++
		} else if line := decoder.TraceLine(rsablocks.BlockResult{Plain: code}); !strings.HasSuffix(line, codec.Invalid+"\n") {
			t.Fatalf("code %d is unmapped but traced as %q", code, line)
		}
	}
	if mapped != 27 {
		t.Errorf("mapped codes = %d, want 27", mapped)
	}
}

func TestReversedBlocksReverseText(t *testing.T) {
	p := core.VincePreset
	rev := make([]uint64, len(p.Message))
	for i, c := range p.Message {
		rev[len(rev)-1-i] = c
	}

	res, err := decoder.New(p.Key).Decode(context.Background(), rev)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	runes := []rune(expectedMessage)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	if res.Text != string(runes) {
		t.Errorf("reversed text = %q, want %q", res.Text, string(runes))
	}
}

func TestKeyringKeyDecodesSubmission(t *testing.T) {
	kr, err := keyring.Parse([]byte(`{"keys":[{"name":"submitted","modulus":1233229,"public":65537,"private":317105,"primeP":787,"primeQ":1567}]}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	key, err := kr.Find("submitted")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}

	tr, err := report.Decode(context.Background(), decoder.New(key), core.VincePreset.Message, core.VincePreset.Signature, nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if tr.Message.Text != expectedMessage || tr.Signature.Text != expectedSignature {
		t.Errorf("unexpected transcript: %q / %q", tr.Message.Text, tr.Signature.Text)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := core.VincePreset.Key
	d := decoder.New(key)

	for _, msg := range []string{"HELLO WORLD", "THE QUICK BROWN FOX", "Z"} {
		blocks, err := d.Encrypt(msg)
		if err != nil {
			t.Fatalf("Encrypt(%q) failed: %v", msg, err)
		}
		res, err := d.Decode(context.Background(), blocks)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if res.Text != msg {
			t.Errorf("round trip %q -> %q", msg, res.Text)
		}
	}
}

func TestCustomAlphabet(t *testing.T) {
	digits := codec.New(map[uint64]rune{0: '0', 1: '1', 2: '2'})
	key := rsablocks.KeyParams{Name: "tiny", N: 33, E: 3, D: 7, P: 3, Q: 11}
	if err := core.ValidateParams(key); err != nil {
		t.Fatalf("ValidateParams failed: %v", err)
	}

	d := decoder.New(key)
	d.Alphabet = digits

	blocks, err := d.Encrypt("2102")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	res, err := d.Decode(context.Background(), blocks)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if res.Text != "2102" {
		t.Errorf("custom alphabet round trip = %q", res.Text)
	}
}
