// Package spatialmath defines the rigid-body quantities exchanged between the contact
// manager, the kinetics observer and the robot model: orientations, kinematics and wrenches.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// NewZeroOrientation returns an orientation which signifies no rotation.
func NewZeroOrientation() quat.Number {
	return quat.Number{Real: 1}
}

// Normalize returns the unit quaternion pointing in the same direction as q.
// A zero quaternion is mapped to the identity.
func Normalize(q quat.Number) quat.Number {
	norm := quat.Abs(q)
	if norm == 0 {
		return NewZeroOrientation()
	}
	return quat.Scale(1/norm, q)
}

// QuaternionAlmostEqual returns whether two quaternions describe the same rotation within tol.
// q and -q are considered equal.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	same := math.Abs(a.Real-b.Real) < tol &&
		math.Abs(a.Imag-b.Imag) < tol &&
		math.Abs(a.Jmag-b.Jmag) < tol &&
		math.Abs(a.Kmag-b.Kmag) < tol
	if same {
		return true
	}
	return math.Abs(a.Real+b.Real) < tol &&
		math.Abs(a.Imag+b.Imag) < tol &&
		math.Abs(a.Jmag+b.Jmag) < tol &&
		math.Abs(a.Kmag+b.Kmag) < tol
}

// OrientationBetween returns the rotation taking o1 onto o2.
func OrientationBetween(o1, o2 quat.Number) quat.Number {
	return quat.Mul(o2, quat.Conj(o1))
}

// RotateVector rotates v by the unit quaternion q.
func RotateVector(q quat.Number, v r3.Vector) r3.Vector {
	p := quat.Mul(quat.Mul(q, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
	return r3.Vector{X: p.Imag, Y: p.Jmag, Z: p.Kmag}
}

// InverseRotateVector rotates v by the inverse of the unit quaternion q.
func InverseRotateVector(q quat.Number, v r3.Vector) r3.Vector {
	return RotateVector(quat.Conj(q), v)
}

// QuatToRotationMatrix returns the 3x3 rotation matrix of the unit quaternion q.
func QuatToRotationMatrix(q quat.Number) *mat.Dense {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return mat.NewDense(3, 3, []float64{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y),
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x),
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y),
	})
}

// RotationMatrixToQuat converts a 3x3 rotation matrix to a unit quaternion with a non-negative real part.
func RotationMatrixToQuat(m mat.Matrix) quat.Number {
	m00, m11, m22 := m.At(0, 0), m.At(1, 1), m.At(2, 2)
	trace := m00 + m11 + m22
	var q quat.Number
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		q = quat.Number{
			Real: 0.25 / s,
			Imag: (m.At(2, 1) - m.At(1, 2)) * s,
			Jmag: (m.At(0, 2) - m.At(2, 0)) * s,
			Kmag: (m.At(1, 0) - m.At(0, 1)) * s,
		}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = quat.Number{
			Real: (m.At(2, 1) - m.At(1, 2)) / s,
			Imag: 0.25 * s,
			Jmag: (m.At(0, 1) + m.At(1, 0)) / s,
			Kmag: (m.At(0, 2) + m.At(2, 0)) / s,
		}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = quat.Number{
			Real: (m.At(0, 2) - m.At(2, 0)) / s,
			Imag: (m.At(0, 1) + m.At(1, 0)) / s,
			Jmag: 0.25 * s,
			Kmag: (m.At(1, 2) + m.At(2, 1)) / s,
		}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = quat.Number{
			Real: (m.At(1, 0) - m.At(0, 1)) / s,
			Imag: (m.At(0, 2) + m.At(2, 0)) / s,
			Jmag: (m.At(1, 2) + m.At(2, 1)) / s,
			Kmag: 0.25 * s,
		}
	}
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	return Normalize(q)
}

// QuatToVector4 lays out q as [x, y, z, w], the ordering used by state vectors.
func QuatToVector4(q quat.Number) []float64 {
	return []float64{q.Imag, q.Jmag, q.Kmag, q.Real}
}

// Vector4ToQuat is the inverse of QuatToVector4.
func Vector4ToQuat(v []float64) quat.Number {
	return quat.Number{Imag: v[0], Jmag: v[1], Kmag: v[2], Real: v[3]}
}
