// Package weights computes the size-indexed cooperative-game weight
// vectors: Shapley, Banzhaf, and raw Count. All arithmetic
// is exact rational arithmetic via math/big, matching the core's
// exact-rationals-throughout requirement.
package weights

import (
	"fmt"
	"math/big"
)

// Type selects which cooperative-game weighting to apply when
// combining per-size pivotal counts into a total responsibility value.
type Type int

const (
	Shapley Type = iota
	Banzhaf
	Count
)

func (t Type) String() string {
	switch t {
	case Shapley:
		return "Shapley"
	case Banzhaf:
		return "Banzhaf"
	case Count:
		return "Count"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// ParseType accepts the canonical names, case-sensitively, matching
// how RunConfig's YAML is expected to spell them.
func ParseType(s string) (Type, error) {
	switch s {
	case "Shapley":
		return Shapley, nil
	case "Banzhaf":
		return Banzhaf, nil
	case "Count":
		return Count, nil
	default:
		return 0, fmt.Errorf("weights: unknown weight type %q", s)
	}
}

// factorial returns n! as an exact big.Int. Nothing is cached: Vector
// recomputes the factorials it needs (all at most n) on every call.
func factorial(n int) *big.Int {
	result := big.NewInt(1)
	for i := 2; i <= n; i++ {
		result.Mul(result, big.NewInt(int64(i)))
	}
	return result
}

// Vector returns weight[s] for s = 0..n, indexed by coalition size s
// (weight[0] is always zero: a player is never pivotal for the empty
// coalition producing a size-0 result).
func Vector(t Type, n int) []*big.Rat {
	w := make([]*big.Rat, n+1)
	for i := range w {
		w[i] = new(big.Rat)
	}

	switch t {
	case Shapley:
		nFact := factorial(n)
		for s := 1; s <= n; s++ {
			num := new(big.Int).Mul(factorial(n-s), factorial(s-1))
			w[s] = new(big.Rat).SetFrac(num, nFact)
		}
	case Banzhaf:
		denom := big.NewInt(1)
		if n > 0 {
			denom = new(big.Int).Lsh(big.NewInt(1), uint(n-1))
		}
		v := new(big.Rat).SetFrac(big.NewInt(1), denom)
		for s := 1; s <= n; s++ {
			w[s] = new(big.Rat).Set(v)
		}
	case Count:
		for s := 1; s <= n; s++ {
			w[s] = new(big.Rat).SetInt64(1)
		}
	}

	return w
}

// Binomial returns C(n, k) as an exact big.Int, used by the optimistic
// closed form.
func Binomial(n, k int) *big.Int {
	if k < 0 || k > n {
		return big.NewInt(0)
	}
	if k > n-k {
		k = n - k
	}
	result := big.NewInt(1)
	for i := 0; i < k; i++ {
		result.Mul(result, big.NewInt(int64(n-i)))
		result.Div(result, big.NewInt(int64(i+1)))
	}
	return result
}
