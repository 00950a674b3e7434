package rsacore

import (
	"fmt"
	"math/big"
	"time"
)

// Params are the inputs of one RSA demonstration: the prime pair,
// the public exponent and the message. None of them are validated
// here; the arithmetic assumes p and q prime, gcd(e, φ(n)) = 1 and
// 0 <= M < n.
type Params struct {
	P *big.Int `json:"p"`
	Q *big.Int `json:"q"`
	E *big.Int `json:"e"`
	M *big.Int `json:"m"`
}

// DefaultParams is the textbook example: p=61, q=53, e=17, M=65.
func DefaultParams() Params {
	return Params{
		P: big.NewInt(61),
		Q: big.NewInt(53),
		E: big.NewInt(17),
		M: big.NewInt(65),
	}
}

// ParseParams builds Params from base-10 strings.
func ParseParams(p, q, e, m string) (Params, error) {
	params := Params{}
	for _, field := range []struct {
		name string
		raw  string
		dst  **big.Int
	}{
		{"p", p, &params.P},
		{"q", q, &params.Q},
		{"e", e, &params.E},
		{"m", m, &params.M},
	} {
		v, ok := new(big.Int).SetString(field.raw, 10)
		if !ok {
			return Params{}, fmt.Errorf("invalid value for %s: %q", field.name, field.raw)
		}
		*field.dst = v
	}
	return params, nil
}

// Result holds every intermediate value of one demonstration run.
type Result struct {
	Params     Params        `json:"params"`
	N          *big.Int      `json:"n"`
	Totient    *big.Int      `json:"totient"`
	D          *big.Int      `json:"d"`
	Ciphertext *big.Int      `json:"ciphertext"`
	Decrypted  *big.Int      `json:"decrypted"`
	OK         bool          `json:"ok"`
	Steps      []Step        `json:"steps,omitempty"`
	Elapsed    time.Duration `json:"elapsed_ns"`
}

// Solve runs the whole sequence: modulus and totient, private key via
// the extended Euclidean algorithm, then encrypt and decrypt the
// message. The extended-Euclid step trace is always recorded; it is a
// handful of entries even for large keys.
func Solve(params Params) (*Result, error) {
	start := time.Now()

	n, totient := NTotient(params.P, params.Q)

	_, x, _, steps := ExtendedGCDSteps(params.E, totient)
	d := x.Mod(x, totient)

	c, err := Encrypt(params.M, params.E, n)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}

	decrypted, err := Decrypt(c, d, n)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}

	return &Result{
		Params:     params,
		N:          n,
		Totient:    totient,
		D:          d,
		Ciphertext: c,
		Decrypted:  decrypted,
		OK:         decrypted.Cmp(params.M) == 0,
		Steps:      steps,
		Elapsed:    time.Since(start),
	}, nil
}
