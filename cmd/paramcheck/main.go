// Command paramcheck checks the preconditions the calculator itself
// never enforces: that p and q are (probable) primes, that e is
// coprime to the totient, and that the message fits below the
// modulus. Exit status 1 means at least one precondition failed.
package main

import (
	"fmt"
	"math/big"
	"os"

	"github.com/user/rsacalc/internal/rsacore"
)

const millerRabinRounds = 20

func main() {
	if len(os.Args) < 4 {
		fmt.Fprintf(os.Stderr, "Usage: %s <p> <q> <e> [M]\n", os.Args[0])
		os.Exit(1)
	}

	p, ok := new(big.Int).SetString(os.Args[1], 10)
	if !ok {
		fmt.Fprintf(os.Stderr, "Invalid p: %q\n", os.Args[1])
		os.Exit(1)
	}
	q, ok := new(big.Int).SetString(os.Args[2], 10)
	if !ok {
		fmt.Fprintf(os.Stderr, "Invalid q: %q\n", os.Args[2])
		os.Exit(1)
	}
	e, ok := new(big.Int).SetString(os.Args[3], 10)
	if !ok {
		fmt.Fprintf(os.Stderr, "Invalid e: %q\n", os.Args[3])
		os.Exit(1)
	}

	failed := false

	if p.ProbablyPrime(millerRabinRounds) {
		fmt.Printf("p = %s is a probable prime\n", p)
	} else {
		fmt.Printf("p = %s is NOT prime\n", p)
		failed = true
	}

	if q.ProbablyPrime(millerRabinRounds) {
		fmt.Printf("q = %s is a probable prime\n", q)
	} else {
		fmt.Printf("q = %s is NOT prime\n", q)
		failed = true
	}

	n, totient := rsacore.NTotient(p, q)
	g, _, _ := rsacore.ExtendedGCD(e, totient)
	if g.Cmp(big.NewInt(1)) == 0 {
		fmt.Printf("gcd(e, phi(n)) = 1, private key exists\n")
	} else {
		fmt.Printf("gcd(e, phi(n)) = %s, NO modular inverse for e = %s\n", g, e)
		failed = true
	}

	if len(os.Args) > 4 {
		m, ok := new(big.Int).SetString(os.Args[4], 10)
		if !ok {
			fmt.Fprintf(os.Stderr, "Invalid M: %q\n", os.Args[4])
			os.Exit(1)
		}
		if m.Sign() >= 0 && m.Cmp(n) < 0 {
			fmt.Printf("M = %s fits below n = %s\n", m, n)
		} else {
			fmt.Printf("M = %s is NOT in [0, n) for n = %s\n", m, n)
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}
