package model

import (
	"fmt"

	"github.com/san-kum/dyncontact/internal/linalg"
	"github.com/san-kum/dyncontact/internal/scalar"
)

// cache holds the quantities derived from v. Each flag guards its own
// field; all of them are cleared together when v changes.
type cache[T scalar.Scalar[T]] struct {
	constraintVelocitiesValid bool
	constraintVelocities      []T

	momentumGainValid bool
	momentumGain      []T

	momentumCostValid bool
	momentumCost      T

	unprojectedImpulsesValid bool
	unprojectedImpulses      []T

	impulsesValid bool
	impulses      []T

	costValid bool
	cost      T

	gradientValid bool
	gradient      []T

	hessianValid bool
	hessian      []*linalg.Matrix[T]
}

func (c *cache[T]) invalidate() {
	c.constraintVelocitiesValid = false
	c.momentumGainValid = false
	c.momentumCostValid = false
	c.unprojectedImpulsesValid = false
	c.impulsesValid = false
	c.costValid = false
	c.gradientValid = false
	c.hessianValid = false
}

// Context is one evaluation session of a Model: the reduced velocities v
// and everything derived from them. A Context must not be shared between
// goroutines.
type Context[T scalar.Scalar[T]] struct {
	model         *Model[T]
	v             []T
	velocitiesSet bool
	cache         cache[T]
}

// MakeContext returns a context with no velocities set.
func (m *Model[T]) MakeContext() *Context[T] {
	return &Context[T]{model: m, v: make([]T, m.NumVelocities())}
}

func (m *Model[T]) checkContext(ctx *Context[T]) error {
	if ctx == nil || ctx.model != m {
		return ErrForeignContext
	}
	if !ctx.velocitiesSet {
		return ErrVelocitiesNotSet
	}
	return nil
}

// SetVelocities stores a copy of v in ctx and invalidates every derived
// quantity.
func (m *Model[T]) SetVelocities(ctx *Context[T], v []T) error {
	if ctx == nil || ctx.model != m {
		return ErrForeignContext
	}
	if len(v) != m.NumVelocities() {
		return fmt.Errorf("%d velocities, model has %d: %w", len(v), m.NumVelocities(), ErrVelocitiesSize)
	}
	copy(ctx.v, v)
	ctx.velocitiesSet = true
	ctx.cache.invalidate()
	return nil
}

// GetVelocities returns the velocities stored in ctx. The slice is owned
// by ctx.
func (m *Model[T]) GetVelocities(ctx *Context[T]) ([]T, error) {
	if err := m.checkContext(ctx); err != nil {
		return nil, err
	}
	return ctx.v, nil
}
