package constraint

import (
	"fmt"
	"strings"

	"github.com/san-kum/dyncontact/internal/linalg"
	"github.com/san-kum/dyncontact/internal/scalar"
)

// Projection selects the projection operator of an Explicit constraint.
type Projection int

const (
	// Identity is γ = y.
	Identity Projection = iota
	// Clamp is γ = max(0, y) componentwise.
	Clamp
)

func (p Projection) String() string {
	switch p {
	case Identity:
		return "identity"
	case Clamp:
		return "clamp"
	}
	return fmt.Sprintf("Projection(%d)", int(p))
}

// ParseProjection resolves a projection by name.
func ParseProjection(name string) (Projection, error) {
	switch strings.ToLower(name) {
	case "", "identity":
		return Identity, nil
	case "clamp", "max":
		return Clamp, nil
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownProjection)
}

func project[T scalar.Scalar[T]](p Projection, y, gamma []T, dPdy *linalg.Matrix[T]) {
	switch p {
	case Clamp:
		projectClamp(y, gamma, dPdy)
	default:
		projectIdentity(y, gamma, dPdy)
	}
}

func checkProjectShapes[T scalar.Scalar[T]](y, gamma []T, dPdy *linalg.Matrix[T]) {
	if len(gamma) != len(y) {
		panic(linalg.ErrShape)
	}
	if dPdy != nil && (dPdy.Rows() != len(y) || dPdy.Cols() != len(y)) {
		panic(linalg.ErrShape)
	}
}

func projectIdentity[T scalar.Scalar[T]](y, gamma []T, dPdy *linalg.Matrix[T]) {
	checkProjectShapes(y, gamma, dPdy)
	copy(gamma, y)
	if dPdy != nil {
		dPdy.SetIdentity()
	}
}

// projectClamp uses the Heaviside function with H(0) = 1 as derivative.
func projectClamp[T scalar.Scalar[T]](y, gamma []T, dPdy *linalg.Matrix[T]) {
	checkProjectShapes(y, gamma, dPdy)
	var zero T
	if dPdy != nil {
		dPdy.Zero()
	}
	one := scalar.Of[T](1)
	for i, yi := range y {
		if yi.Value() >= 0 {
			gamma[i] = yi
			if dPdy != nil {
				dPdy.Set(i, i, one)
			}
		} else {
			gamma[i] = zero
		}
	}
}
