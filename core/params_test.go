package core

import (
	"errors"
	"testing"

	rsablocks "github.com/BackendStack21/rsa-blocks-go"
)

func TestGetParams(t *testing.T) {
	key, err := GetParams(DefaultKeyName)
	if err != nil {
		t.Fatalf("GetParams(vince) failed: %v", err)
	}
	if key.N != 1233229 || key.D != 317105 || key.E != 65537 {
		t.Errorf("unexpected vince key: %+v", key)
	}

	key, err = GetParams("class-pub7")
	if err != nil {
		t.Fatalf("GetParams(class-pub7) failed: %v", err)
	}
	if key.N != 13321 || key.D != 7 {
		t.Errorf("unexpected class-pub7 key: %+v", key)
	}

	// Test invalid
	_, err = GetParams("INVALID")
	if !errors.Is(err, ErrUnknownKey) {
		t.Errorf("GetParams(INVALID) should fail with ErrUnknownKey, got %v", err)
	}
}

func TestGetPresetReturnsCopies(t *testing.T) {
	p, err := GetPreset(DefaultKeyName)
	if err != nil {
		t.Fatalf("GetPreset failed: %v", err)
	}
	if len(p.Message) != 28 || len(p.Signature) != 5 {
		t.Fatalf("unexpected block counts: %d, %d", len(p.Message), len(p.Signature))
	}
	p.Message[0] = 0

	again, _ := GetPreset(DefaultKeyName)
	if again.Message[0] != 1096074 {
		t.Error("GetPreset leaked a shared slice")
	}
}

func TestPresetNames(t *testing.T) {
	names := PresetNames()
	if len(names) != 2 || names[0] != "class-pub7" || names[1] != "vince" {
		t.Errorf("PresetNames() = %v", names)
	}
}

func TestValidateParams(t *testing.T) {
	for _, name := range PresetNames() {
		key, _ := GetParams(name)
		if err := ValidateParams(key); err != nil {
			t.Errorf("ValidateParams(%s) failed: %v", name, err)
		}
	}

	base := VincePreset.Key

	invalid := base
	invalid.N = 1
	if err := ValidateParams(invalid); !errors.Is(err, ErrInvalidModulus) {
		t.Errorf("expected ErrInvalidModulus, got %v", err)
	}

	invalid = base
	invalid.D = 0
	if err := ValidateParams(invalid); !errors.Is(err, ErrInvalidExponent) {
		t.Errorf("expected ErrInvalidExponent, got %v", err)
	}

	invalid = base
	invalid.P = 788
	if err := ValidateParams(invalid); !errors.Is(err, ErrInvalidFactors) {
		t.Errorf("expected ErrInvalidFactors for composite p, got %v", err)
	}

	invalid = base
	invalid.Q = 1571
	if err := ValidateParams(invalid); !errors.Is(err, ErrInvalidFactors) {
		t.Errorf("expected ErrInvalidFactors for wrong product, got %v", err)
	}

	// The interactive program displayed e = 5 for this key, which is not d's inverse.
	invalid = base
	invalid.E = 5
	if err := ValidateParams(invalid); !errors.Is(err, ErrInverseMismatch) {
		t.Errorf("expected ErrInverseMismatch, got %v", err)
	}

	noPublic := base
	noPublic.E = 0
	if err := ValidateParams(noPublic); err != nil {
		t.Errorf("key without e should validate: %v", err)
	}
}

func TestValidateParamsRejectsSquareModulus(t *testing.T) {
	// phi(121) is 110, so d = 67 is not the inverse of e = 3 even though
	// (p-1)(q-1) = 100 would make it look consistent.
	tests := []rsablocks.KeyParams{
		{Name: "square", N: 121, E: 3, D: 67, P: 11, Q: 11},
		{Name: "square-no-e", N: 121, D: 67, P: 11, Q: 11},
	}
	for _, key := range tests {
		if err := ValidateParams(key); !errors.Is(err, ErrInvalidFactors) {
			t.Errorf("ValidateParams(%s) = %v, want ErrInvalidFactors", key.Name, err)
		}
	}
}

func TestIsPrime(t *testing.T) {
	primes := []uint64{2, 3, 5, 7, 11, 13, 787, 1567, 65537}
	nonPrimes := []uint64{0, 1, 4, 9, 15, 13321, 1233229}

	for _, p := range primes {
		if !isPrime(p) {
			t.Errorf("isPrime(%d) returned false", p)
		}
	}

	for _, np := range nonPrimes {
		if isPrime(np) {
			t.Errorf("isPrime(%d) returned true", np)
		}
	}
}
