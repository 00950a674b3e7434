package rsacore

import (
	"fmt"
	"math/big"
)

// NTotient returns the RSA modulus n = p*q and the totient
// φ(n) = (p-1)(q-1). The inputs are taken on faith as primes;
// nothing here checks primality (see cmd/paramcheck for that).
func NTotient(p, q *big.Int) (n, totient *big.Int) {
	n = new(big.Int).Mul(p, q)

	pMinusOne := new(big.Int).Sub(p, one)
	qMinusOne := new(big.Int).Sub(q, one)
	totient = pMinusOne.Mul(pMinusOne, qMinusOne)

	return n, totient
}

// Step is one division step of the extended Euclidean algorithm,
// with the running Bézout coefficients after the step. Values are
// decimal strings so they survive JSON without precision loss.
type Step struct {
	Iteration int    `json:"iteration"`
	Quotient  string `json:"quotient"`
	Remainder string `json:"remainder"`
	X         string `json:"x"`
	Y         string `json:"y"`
}

var one = big.NewInt(1)

// ExtendedGCD returns (g, x, y) such that a*x + b*y = g = gcd(a, b).
//
// Precondition: a and b are non-negative. The coefficient update is
// only a valid Bézout reduction when division yields non-negative
// remainders, which holds in that regime; negative inputs are not
// guarded against. ExtendedGCD(0, 0) returns the degenerate (0, 0, 1).
func ExtendedGCD(a, b *big.Int) (g, x, y *big.Int) {
	g, x, y, _ = extendedGCD(a, b, false)
	return g, x, y
}

// ExtendedGCDSteps is ExtendedGCD with a record of every division
// step, for the trace output and the websocket trace stream.
func ExtendedGCDSteps(a, b *big.Int) (g, x, y *big.Int, steps []Step) {
	return extendedGCD(a, b, true)
}

// extendedGCD runs the iterative form of the recursion
//
//	egcd(0, b) = (b, 0, 1)
//	egcd(a, b) = let (g, x1, y1) = egcd(b mod a, a)
//	             in (g, y1 - (b div a)*x1, x1)
//
// carrying (g, r) and both coefficient pairs instead of recursing, so
// stack depth stays constant for large inputs. The two forms return
// identical values for all non-negative a, b.
func extendedGCD(a, b *big.Int, trace bool) (g, x, y *big.Int, steps []Step) {
	if a.Sign() == 0 {
		return new(big.Int).Set(b), big.NewInt(0), big.NewInt(1), nil
	}

	g = new(big.Int).Set(a)
	r := new(big.Int).Set(b)
	x, xNext := big.NewInt(1), big.NewInt(0)
	y, yNext := big.NewInt(0), big.NewInt(1)

	q := new(big.Int)
	rem := new(big.Int)
	for i := 0; r.Sign() != 0; i++ {
		q.QuoRem(g, r, rem)

		g, r = r, g.Set(rem)
		t := new(big.Int).Mul(q, xNext)
		x, xNext = xNext, t.Sub(x, t)
		t = new(big.Int).Mul(q, yNext)
		y, yNext = yNext, t.Sub(y, t)

		if trace {
			steps = append(steps, Step{
				Iteration: i + 1,
				Quotient:  q.String(),
				Remainder: r.String(),
				X:         x.String(),
				Y:         y.String(),
			})
		}
	}

	return g, x, y, steps
}

// PrivateKey returns the private exponent d, the inverse of e modulo
// the totient, reduced into [0, totient). Mod on big.Int is Euclidean
// for a positive modulus, so a negative Bézout coefficient lands in
// range without a separate sign fixup.
//
// If gcd(e, totient) != 1 no inverse exists; the returned d is then
// simply wrong, not an error. Callers that care run cmd/paramcheck
// or check the gcd themselves.
func PrivateKey(e, totient *big.Int) *big.Int {
	_, x, _ := ExtendedGCD(e, totient)
	return x.Mod(x, totient)
}

// ModPow computes base^exp mod mod by binary square-and-multiply.
// Naive exponentiation before reduction is infeasible at real RSA
// sizes, so the intermediate product is reduced every step.
//
// All inputs must be non-negative and mod must be positive.
func ModPow(base, exp, mod *big.Int) (*big.Int, error) {
	if mod.Sign() <= 0 {
		return nil, fmt.Errorf("modular exponentiation: modulus must be positive, got %s", mod)
	}
	if base.Sign() < 0 || exp.Sign() < 0 {
		return nil, fmt.Errorf("modular exponentiation: negative operand (base %s, exponent %s)", base, exp)
	}

	result := new(big.Int).Mod(one, mod)
	b := new(big.Int).Mod(base, mod)
	for i, n := 0, exp.BitLen(); i < n; i++ {
		if exp.Bit(i) == 1 {
			result.Mul(result, b)
			result.Mod(result, mod)
		}
		b.Mul(b, b)
		b.Mod(b, mod)
	}

	return result, nil
}

// Encrypt computes the ciphertext C = M^e mod n.
func Encrypt(m, e, n *big.Int) (*big.Int, error) {
	c, err := ModPow(m, e, n)
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}
	return c, nil
}

// Decrypt computes the plaintext M = C^d mod n.
func Decrypt(c, d, n *big.Int) (*big.Int, error) {
	m, err := ModPow(c, d, n)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return m, nil
}
