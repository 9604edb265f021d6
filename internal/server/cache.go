package server

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/njchilds90/linsolve"
)

// parser parses equations, remembering results by normalized text. Cached
// triples are shared and must not be mutated.
type parser struct {
	cache   *lru.Cache[string, linsolve.RatTriple]
	metrics *metrics
}

// newParser returns a caching parser; size 0 disables the cache.
func newParser(size int, m *metrics) (*parser, error) {
	p := &parser{metrics: m}
	if size <= 0 {
		return p, nil
	}
	cache, err := lru.New[string, linsolve.RatTriple](size)
	if err != nil {
		return nil, fmt.Errorf("init parse cache: %w", err)
	}
	p.cache = cache
	return p, nil
}

func (p *parser) parse(eq string) (linsolve.RatTriple, error) {
	if p.cache == nil {
		return linsolve.ParseEquationExact(eq)
	}
	key := linsolve.Normalize(eq)
	if t, ok := p.cache.Get(key); ok {
		p.metrics.cache.WithLabelValues("hit").Inc()
		return t, nil
	}
	p.metrics.cache.WithLabelValues("miss").Inc()
	t, err := linsolve.ParseEquationExact(key)
	if err != nil {
		return linsolve.RatTriple{}, err
	}
	p.cache.Add(key, t)
	return t, nil
}

// solve parses both equations and solves the system over exact rationals.
func (p *parser) solve(eq1, eq2 string) (linsolve.RatSolution, error) {
	t1, err := p.parse(eq1)
	if err != nil {
		return linsolve.RatSolution{}, linsolve.WithEquation(err, 1)
	}
	t2, err := p.parse(eq2)
	if err != nil {
		return linsolve.RatSolution{}, linsolve.WithEquation(err, 2)
	}
	return linsolve.SolveTriplesExact(t1, t2)
}
