package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// R3VectorAlmostEqual compares two vectors component-wise within tol.
func R3VectorAlmostEqual(a, b r3.Vector, tol float64) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}

// Diag3 returns the diagonal matrix with v on its diagonal.
func Diag3(v r3.Vector) *mat.DiagDense {
	return mat.NewDiagDense(3, []float64{v.X, v.Y, v.Z})
}

// VecToR3 reads the first three entries of v.
func VecToR3(v mat.Vector) r3.Vector {
	return r3.Vector{X: v.AtVec(0), Y: v.AtVec(1), Z: v.AtVec(2)}
}

// R3ToVec copies v into a new dense vector.
func R3ToVec(v r3.Vector) *mat.VecDense {
	return mat.NewVecDense(3, []float64{v.X, v.Y, v.Z})
}

// MulVec3 returns m·v for a 3x3 matrix m.
func MulVec3(m mat.Matrix, v r3.Vector) r3.Vector {
	var out mat.VecDense
	out.MulVec(m, R3ToVec(v))
	return VecToR3(&out)
}

// InverseDiag3 inverts a diagonal matrix, failing on a zero entry.
func InverseDiag3(v r3.Vector) (*mat.DiagDense, error) {
	if v.X == 0 || v.Y == 0 || v.Z == 0 {
		return nil, errors.Errorf("cannot invert diagonal matrix with zero entry: %v", v)
	}
	return Diag3(r3.Vector{X: 1 / v.X, Y: 1 / v.Y, Z: 1 / v.Z}), nil
}
