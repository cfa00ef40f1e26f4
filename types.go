// Package rsablocks decrypts textbook RSA ciphertext, one character code per block.
//
// Every block is a single integer c in [0, n). Decryption computes c^d mod n
// and maps the resulting code through a fixed alphabet (10..35 for A..Z and
// 99 for space). There is no padding and no signature verification: the
// "signature" is simply a second block sequence decrypted with the same key.
//
// WARNING: textbook RSA over a 21-bit modulus offers no security at all.
// This package exists for teaching and for checking classroom exercises.
package rsablocks

// =============================================================================
// Key Types
// =============================================================================

// KeyParams holds the parameters of a textbook RSA key.
// E is carried for display and for the encryption helper; decryption only uses N and D.
// P and Q are optional and are zero when the factorisation is not known.
type KeyParams struct {
	Name string `json:"name"`
	N    uint64 `json:"modulus"`
	E    uint64 `json:"public"`
	D    uint64 `json:"private"`
	P    uint64 `json:"primeP,omitempty"`
	Q    uint64 `json:"primeQ,omitempty"`
}

// HasFactors reports whether both prime factors of the modulus are known.
func (k KeyParams) HasFactors() bool {
	return k.P != 0 && k.Q != 0
}

// =============================================================================
// Decode Results
// =============================================================================

// BlockResult is the outcome of decrypting one ciphertext block.
// Char holds the mapped character, or several when packed blocks are split
// into two-digit codes. It is empty when Valid is false.
type BlockResult struct {
	Ciphertext uint64 `json:"ciphertext"`
	Plain      uint64 `json:"plain"`
	Char       string `json:"char,omitempty"`
	Valid      bool   `json:"valid"`
}

// DecodeResult is the ordered outcome of decrypting a block sequence.
// Text holds the valid characters only, in block order.
type DecodeResult struct {
	Blocks []BlockResult `json:"blocks"`
	Text   string        `json:"text"`
}

// InvalidCount returns the number of blocks whose code had no character.
func (r DecodeResult) InvalidCount() int {
	n := 0
	for _, b := range r.Blocks {
		if !b.Valid {
			n++
		}
	}
	return n
}

// Transcript bundles the key and both decoded sequences of one run.
type Transcript struct {
	Key       KeyParams    `json:"key"`
	Message   DecodeResult `json:"message"`
	Signature DecodeResult `json:"signature"`
}
