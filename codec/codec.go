// Package codec maps decrypted plaintext codes to characters and back.
//
// The standard alphabet assigns two-digit codes to the characters of a
// message: 10..35 for 'A'..'Z' and 99 for a space. Codes 00..09 are never
// used, which keeps every encoded character exactly two decimal digits wide.
package codec

import (
	"strconv"
	"unicode"
)

// Invalid is the marker printed for a code that has no character.
const Invalid = "[INVALID]"

// SpaceCode is the code assigned to the space character.
const SpaceCode = 99

// Alphabet is an immutable bidirectional code table.
type Alphabet struct {
	toChar map[uint64]rune
	toCode map[rune]uint64
}

// Standard is the textbook alphabet used by every built-in key.
var Standard = newStandard()

func newStandard() *Alphabet {
	pairs := make(map[uint64]rune, 27)
	for i := 0; i < 26; i++ {
		pairs[uint64(10+i)] = rune('A' + i)
	}
	pairs[SpaceCode] = ' '
	return New(pairs)
}

// New builds an alphabet from a code to character table.
// The table is copied; later changes to pairs do not affect the alphabet.
func New(pairs map[uint64]rune) *Alphabet {
	a := &Alphabet{
		toChar: make(map[uint64]rune, len(pairs)),
		toCode: make(map[rune]uint64, len(pairs)),
	}
	for code, ch := range pairs {
		a.toChar[code] = ch
		a.toCode[ch] = code
	}
	return a
}

// Lookup returns the character for code. It is total: an unmapped code
// yields ok == false and never an error.
func (a *Alphabet) Lookup(code uint64) (ch rune, ok bool) {
	ch, ok = a.toChar[code]
	return ch, ok
}

// Code returns the code for ch. A character without an exact entry is
// retried in upper case, so lower-case messages encode with Standard.
func (a *Alphabet) Code(ch rune) (uint64, bool) {
	if code, ok := a.toCode[ch]; ok {
		return code, true
	}
	code, ok := a.toCode[unicode.ToUpper(ch)]
	return code, ok
}

// Len returns the number of mapped characters.
func (a *Alphabet) Len() int {
	return len(a.toChar)
}

// Format renders decoded characters for trace output: quoted, or Invalid
// when there are none.
func Format(chars string) string {
	if chars == "" {
		return Invalid
	}
	return "'" + chars + "'"
}

// Encode converts a message into one code per character.
// Characters without a code are dropped.
func (a *Alphabet) Encode(message string) []uint64 {
	codes := make([]uint64, 0, len(message))
	for _, ch := range message {
		if code, ok := a.Code(ch); ok {
			codes = append(codes, code)
		}
	}
	return codes
}

// Decode maps codes to a string, skipping codes without a character.
func (a *Alphabet) Decode(codes []uint64) string {
	out := make([]rune, 0, len(codes))
	for _, code := range codes {
		if ch, ok := a.Lookup(code); ok {
			out = append(out, ch)
		}
	}
	return string(out)
}

// SplitPairs splits a block holding several packed characters into
// two-digit codes, most significant first. An odd number of digits is
// left padded with a zero, so 3217 gives [32 17] and 517 gives [5 17].
func SplitPairs(block uint64) []uint64 {
	digits := strconv.FormatUint(block, 10)
	if len(digits)%2 != 0 {
		digits = "0" + digits
	}

	pairs := make([]uint64, 0, len(digits)/2)
	for i := 0; i < len(digits); i += 2 {
		v := uint64(digits[i]-'0')*10 + uint64(digits[i+1]-'0')
		pairs = append(pairs, v)
	}
	return pairs
}
