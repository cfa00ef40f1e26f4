// Package modexp provides modular exponentiation for textbook RSA blocks.
//
// Three implementations are available and must always agree:
// a square-and-multiply loop on native words, a math/big reference and a
// constant-time variant backed by safenum.
package modexp

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/cronokirby/safenum"
)

var (
	// ErrZeroModulus indicates a modulus of zero.
	ErrZeroModulus = errors.New("modulus must be positive")

	// ErrEvenModulus indicates an even modulus passed to the constant-time engine.
	ErrEvenModulus = errors.New("constant-time engine requires an odd modulus")

	// ErrUnknownEngine indicates an unrecognised engine name.
	ErrUnknownEngine = errors.New("unknown exponentiation engine")
)

// Engine selects the exponentiation implementation.
type Engine string

const (
	// EngineSquare uses ModExp.
	EngineSquare Engine = "square"
	// EngineBig uses ModExpBig.
	EngineBig Engine = "big"
	// EngineConstantTime uses ModExpConstantTime.
	EngineConstantTime Engine = "ct"
)

// ParseEngine maps a user supplied name to an Engine. The empty string selects EngineSquare.
func ParseEngine(name string) (Engine, error) {
	switch name {
	case "", "square", "sq":
		return EngineSquare, nil
	case "big", "bigint":
		return EngineBig, nil
	case "ct", "constant-time", "safenum":
		return EngineConstantTime, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}

// Exp computes base^exp mod mod with the selected implementation.
func (e Engine) Exp(base, exp, mod uint64) (uint64, error) {
	if mod == 0 {
		return 0, ErrZeroModulus
	}
	switch e {
	case EngineSquare, "":
		return ModExp(base, exp, mod), nil
	case EngineBig:
		b := new(big.Int).SetUint64(base)
		x := new(big.Int).SetUint64(exp)
		m := new(big.Int).SetUint64(mod)
		return ModExpBig(b, x, m).Uint64(), nil
	case EngineConstantTime:
		return ModExpConstantTime(base, exp, mod)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownEngine, string(e))
	}
}

// ModExp computes base^exp mod mod by right-to-left square-and-multiply.
// Each product is formed in 128 bits and reduced, so any 64-bit modulus is safe.
// The base is reduced first; mod == 1 yields 0. Panics if mod is zero.
func ModExp(base, exp, mod uint64) uint64 {
	if mod == 0 {
		panic("modexp: zero modulus")
	}
	if mod == 1 {
		return 0
	}

	result := uint64(1)
	base %= mod
	for exp > 0 {
		if exp&1 == 1 {
			result = mulMod(result, base, mod)
		}
		base = mulMod(base, base, mod)
		exp >>= 1
	}
	return result
}

// MulMod returns a*b mod m without overflow. Panics if m is zero.
func MulMod(a, b, m uint64) uint64 {
	return mulMod(a, b, m)
}

func mulMod(a, b, m uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return bits.Rem64(hi, lo, m)
}

// ModExpBig computes base^exp mod mod with math/big.
// Panics if mod is not positive.
func ModExpBig(base, exp, mod *big.Int) *big.Int {
	if mod.Sign() <= 0 {
		panic("modexp: modulus must be positive")
	}
	return new(big.Int).Exp(base, exp, mod)
}

// ModExpConstantTime computes base^exp mod mod in time independent of the
// values of base and exp. The modulus must be odd, as every RSA modulus is.
func ModExpConstantTime(base, exp, mod uint64) (uint64, error) {
	if mod == 0 {
		return 0, ErrZeroModulus
	}
	if mod == 1 {
		return 0, nil
	}
	if mod&1 == 0 {
		return 0, ErrEvenModulus
	}

	m := safenum.ModulusFromBytes(new(big.Int).SetUint64(mod).Bytes())

	var x, y safenum.Nat
	x.SetUint64(base % mod)
	y.SetUint64(exp)

	z := new(safenum.Nat).Exp(&x, &y, m)
	return z.Big().Uint64(), nil
}
