// Package core provides built-in keys, ciphertext sets and key validation.
package core

import (
	"errors"
	"fmt"
	"sort"

	rsablocks "github.com/BackendStack21/rsa-blocks-go"
	"github.com/BackendStack21/rsa-blocks-go/modexp"
	"github.com/BackendStack21/rsa-blocks-go/utils"
)

// DefaultKeyName is the key used when none is requested.
const DefaultKeyName = "vince"

var (
	// ErrUnknownKey indicates a key name that is not built in.
	ErrUnknownKey = errors.New("unknown key")

	// ErrInvalidModulus indicates a modulus below 2.
	ErrInvalidModulus = errors.New("modulus must be at least 2")

	// ErrInvalidExponent indicates a zero private exponent.
	ErrInvalidExponent = errors.New("private exponent must be positive")

	// ErrInvalidFactors indicates prime factors that do not match the modulus.
	ErrInvalidFactors = errors.New("prime factors do not match modulus")

	// ErrInverseMismatch indicates e*d is not 1 modulo phi(n).
	ErrInverseMismatch = errors.New("public and private exponents are not inverses")
)

// Preset is a built-in key together with the ciphertext it was issued with.
type Preset struct {
	Key       rsablocks.KeyParams
	Message   []uint64
	Signature []uint64
}

// VincePreset is the classroom submission key: p = 787, q = 1567.
var VincePreset = Preset{
	Key: rsablocks.KeyParams{
		Name: "vince",
		N:    1233229,
		E:    65537,
		D:    317105,
		P:    787,
		Q:    1567,
	},
	Message: []uint64{
		1096074, 984155, 248123, 248123, 993997, 178219, 984155, 509954,
		984155, 560265, 333498, 914356, 47218, 451518, 983323, 984155,
		214257, 509954, 993997, 560265, 509954, 427536, 248123, 509954,
		983323, 900151, 427536, 248123,
	},
	Signature: []uint64{540847, 427536, 560265, 333498, 984155},
}

// ClassPub7Preset decrypts with the class public exponent 7 over n = 13321.
// Its blocks were issued under a different key, so none decode to a character.
var ClassPub7Preset = Preset{
	Key: rsablocks.KeyParams{
		Name: "class-pub7",
		N:    13321,
		D:    7,
	},
	Message: []uint64{
		638, 4431, 7686, 7686, 9250, 3985, 4431, 5720,
		4431, 4489, 11639, 11311, 5886, 6598, 7211, 4431,
		6607, 5720, 9250, 4489, 5720, 193, 7686, 5720,
		7211, 11910, 193, 7686,
	},
	Signature: []uint64{6835, 193, 4489, 11639, 4431},
}

var presets = map[string]Preset{
	VincePreset.Key.Name:     VincePreset,
	ClassPub7Preset.Key.Name: ClassPub7Preset,
}

// GetPreset returns the named built-in preset. The block slices are copies.
func GetPreset(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %s", ErrUnknownKey, name)
	}
	p.Message = append([]uint64(nil), p.Message...)
	p.Signature = append([]uint64(nil), p.Signature...)
	return p, nil
}

// GetParams returns the key parameters of the named built-in preset.
func GetParams(name string) (rsablocks.KeyParams, error) {
	p, err := GetPreset(name)
	if err != nil {
		return rsablocks.KeyParams{}, err
	}
	return p.Key, nil
}

// PresetNames lists the built-in preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateParams checks a key for internal consistency.
// When both factors are known they must be distinct primes that multiply to N, and if E
// is also set then E*D must be 1 modulo (P-1)(Q-1). Keys without factors only
// get the basic range checks.
func ValidateParams(key rsablocks.KeyParams) error {
	if key.N < 2 {
		return ErrInvalidModulus
	}
	if err := utils.CheckPositive(key.D, "private exponent"); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidExponent, err)
	}
	if !key.HasFactors() {
		return nil
	}
	if !isPrime(key.P) || !isPrime(key.Q) {
		return fmt.Errorf("%w: p and q must be prime", ErrInvalidFactors)
	}
	if key.P == key.Q {
		return fmt.Errorf("%w: p and q must be distinct", ErrInvalidFactors)
	}
	n, err := utils.SafeMultiplyUint64(key.P, key.Q)
	if err != nil || n != key.N {
		return fmt.Errorf("%w: %d * %d != %d", ErrInvalidFactors, key.P, key.Q, key.N)
	}
	if key.E == 0 {
		return nil
	}
	phi := (key.P - 1) * (key.Q - 1)
	if modexp.MulMod(key.E, key.D, phi) != 1 {
		return fmt.Errorf("%w: e=%d d=%d phi=%d", ErrInverseMismatch, key.E, key.D, phi)
	}
	return nil
}

// isPrime checks if a number is prime using a simple trial division.
// This is used for validating small textbook factors, not for generating primes.
func isPrime(n uint64) bool {
	if n < 2 {
		return false
	}
	if n == 2 {
		return true
	}
	if n%2 == 0 {
		return false
	}
	for i := uint64(3); i <= n/i; i += 2 {
		if n%i == 0 {
			return false
		}
	}
	return true
}
