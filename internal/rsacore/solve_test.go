package rsacore

import (
	"math/big"
	"testing"
)

func TestSolveFixedExample(t *testing.T) {
	result, err := Solve(DefaultParams())
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	tests := []struct {
		name string
		got  *big.Int
		want int64
	}{
		{"n", result.N, 3233},
		{"totient", result.Totient, 3120},
		{"d", result.D, 2753},
		{"ciphertext", result.Ciphertext, 2790},
		{"decrypted", result.Decrypted, 65},
	}
	for _, test := range tests {
		if test.got.Int64() != test.want {
			t.Errorf("Expected %s=%d, got %s", test.name, test.want, test.got)
		}
	}

	if !result.OK {
		t.Error("Expected OK for the textbook example")
	}
	if len(result.Steps) == 0 {
		t.Error("Expected a recorded step trace")
	}
}

func TestDefaultParams(t *testing.T) {
	params := DefaultParams()
	if params.P.Int64() != 61 || params.Q.Int64() != 53 || params.E.Int64() != 17 || params.M.Int64() != 65 {
		t.Errorf("Unexpected defaults: p=%s q=%s e=%s m=%s", params.P, params.Q, params.E, params.M)
	}
}

func TestParseParams(t *testing.T) {
	params, err := ParseParams("61", "53", "17", "65")
	if err != nil {
		t.Fatalf("ParseParams failed: %v", err)
	}
	if params.P.Int64() != 61 || params.M.Int64() != 65 {
		t.Errorf("Unexpected parse: p=%s m=%s", params.P, params.M)
	}

	// Values beyond 64 bits must parse
	big1, err := ParseParams("170141183460469231731687303715884105727", "53", "17", "65")
	if err != nil {
		t.Fatalf("ParseParams failed on large value: %v", err)
	}
	if big1.P.BitLen() != 127 {
		t.Errorf("Expected 127-bit p, got %d bits", big1.P.BitLen())
	}

	invalid := []struct {
		p, q, e, m string
	}{
		{"sixty-one", "53", "17", "65"},
		{"61", "", "17", "65"},
		{"61", "53", "0x11", "65"},
		{"61", "53", "17", "6 5"},
	}
	for _, test := range invalid {
		if _, err := ParseParams(test.p, test.q, test.e, test.m); err == nil {
			t.Errorf("Expected error for (%q, %q, %q, %q)", test.p, test.q, test.e, test.m)
		}
	}
}

func TestSolveLargerPrimes(t *testing.T) {
	params, err := ParseParams("1000003", "999983", "65537", "123456")
	if err != nil {
		t.Fatalf("ParseParams failed: %v", err)
	}

	result, err := Solve(params)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	if !result.OK {
		t.Errorf("Expected round trip to succeed, decrypted %s", result.Decrypted)
	}

	// (e*d) mod totient == 1
	prod := new(big.Int).Mul(params.E, result.D)
	prod.Mod(prod, result.Totient)
	if prod.Int64() != 1 {
		t.Errorf("(e*d) mod totient = %s, want 1", prod)
	}
}
