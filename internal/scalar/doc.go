// Package scalar defines the numeric contract the contact model is written
// against.
//
// Every kernel in linalg, constraint, bundle and model is generic over a
// type T satisfying [Scalar]. Three implementations are provided:
//
//   - [Float]: plain float64 arithmetic, used for production evaluation.
//   - [Dual]: forward-mode dual numbers carrying one directional derivative.
//   - [HyperDual]: hyper-dual numbers carrying two first-order directions and
//     their mixed second derivative.
//
// Real parts of Dual and HyperDual are computed with exactly the same
// float64 operations as Float, so a model instantiated on either type
// reproduces the Float results bit for bit while also propagating
// derivatives.
//
// # Example
//
//	grad, err := scalar.Gradient(v, func(x []scalar.Dual) (scalar.Dual, error) {
//		if err := m.SetVelocities(x, ctx); err != nil {
//			return scalar.Dual{}, err
//		}
//		return m.EvalCost(ctx)
//	})
package scalar
