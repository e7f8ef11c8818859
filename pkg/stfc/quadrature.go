package stfc

import (
	"math"
	"sync"
)

// legendreTolerance is the Newton convergence threshold on successive root estimates
const legendreTolerance = 3.0e-11

// QuadratureRule holds Gauss-Legendre nodes and weights on [0,1]
type QuadratureRule struct {
	Nodes   []float64 `json:"nodes"`
	Weights []float64 `json:"weights"`
}

// Order returns the number of nodes in the rule
func (q QuadratureRule) Order() int {
	return len(q.Nodes)
}

// GaussLegendre computes the order-n Gauss-Legendre rule on [0,1].
// Roots of P_n are found by Newton iteration on the three-term recurrence,
// starting from the Chebyshev-like guess cos(pi*(i-1/4)/(n+1/2)); only the
// first half is iterated and the rest is filled by symmetry about 1/2.
func GaussLegendre(n int) (QuadratureRule, error) {
	if err := validateOrder(n); err != nil {
		return QuadratureRule{}, err
	}

	nodes := make([]float64, n)
	weights := make([]float64, n)

	const lower, upper = 0.0, 1.0
	xm := 0.5 * (upper + lower)
	xl := 0.5 * (upper - lower)
	fn := float64(n)

	for i := 1; i <= (n+1)/2; i++ {
		z := math.Cos(math.Pi * (float64(i) - 0.25) / (fn + 0.5))
		var pp float64
		for {
			// P_n(z) and P_{n-1}(z) by the recurrence
			p1, p2 := 1.0, 0.0
			for j := 1; j <= n; j++ {
				p3 := p2
				p2 = p1
				fj := float64(j)
				p1 = ((2.0*fj-1.0)*z*p2 - (fj-1.0)*p3) / fj
			}
			pp = fn * (z*p1 - p2) / (z*z - 1.0)
			z1 := z
			z = z1 - p1/pp
			if math.Abs(z-z1) <= legendreTolerance {
				break
			}
		}

		nodes[i-1] = xm - xl*z
		nodes[n-i] = xm + xl*z
		weights[i-1] = 2.0 * xl / ((1.0 - z*z) * pp * pp)
		weights[n-i] = weights[i-1]
	}

	return QuadratureRule{Nodes: nodes, Weights: weights}, nil
}

// clone returns a copy that shares no memory with q
func (q QuadratureRule) clone() QuadratureRule {
	return QuadratureRule{
		Nodes:   append([]float64(nil), q.Nodes...),
		Weights: append([]float64(nil), q.Weights...),
	}
}

// quadratureCache memoizes rules by order and hands out copies.
type quadratureCache struct {
	mu    sync.Mutex
	rules map[int]QuadratureRule
}

func newQuadratureCache() *quadratureCache {
	return &quadratureCache{rules: make(map[int]QuadratureRule)}
}

// get returns the cached rule for order n, computing it on first use
func (c *quadratureCache) get(n int) (QuadratureRule, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rule, exists := c.rules[n]; exists {
		return rule.clone(), nil
	}

	rule, err := GaussLegendre(n)
	if err != nil {
		return QuadratureRule{}, err
	}
	c.rules[n] = rule
	return rule.clone(), nil
}
