package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Below this angle the log and exp maps switch to their first-order expansions.
const smallAngle = 1e-9

// R4AA represents an R4 axis angle: a unit axis and a rotation theta in radians around it.
type R4AA struct {
	Theta float64 `json:"th"`
	RX    float64 `json:"x"`
	RY    float64 `json:"y"`
	RZ    float64 `json:"z"`
}

// NewR4AA creates an axis angle with no rotation around Z.
func NewR4AA() *R4AA {
	return &R4AA{Theta: 0, RX: 0, RY: 0, RZ: 1}
}

// Axis returns the rotation axis.
func (r4 *R4AA) Axis() r3.Vector {
	return r3.Vector{X: r4.RX, Y: r4.RY, Z: r4.RZ}
}

// ToR3 converts an R4 angle axis to a rotation vector.
func (r4 *R4AA) ToR3() r3.Vector {
	return r3.Vector{X: r4.RX * r4.Theta, Y: r4.RY * r4.Theta, Z: r4.RZ * r4.Theta}
}

// ToQuat converts an R4 axis angle to a unit quaternion.
// A zero axis yields the identity.
func (r4 *R4AA) ToQuat() quat.Number {
	axis := r4.Axis()
	norm := axis.Norm()
	if norm == 0 {
		return NewZeroOrientation()
	}
	axis = axis.Mul(1 / norm)
	sinA := math.Sin(r4.Theta / 2)
	return quat.Number{
		Real: math.Cos(r4.Theta / 2),
		Imag: axis.X * sinA,
		Jmag: axis.Y * sinA,
		Kmag: axis.Z * sinA,
	}
}

// R3ToR4 converts a rotation vector to R4. The zero vector maps to NewR4AA.
func R3ToR4(aa r3.Vector) *R4AA {
	theta := aa.Norm()
	if theta == 0 {
		return NewR4AA()
	}
	return &R4AA{Theta: theta, RX: aa.X / theta, RY: aa.Y / theta, RZ: aa.Z / theta}
}

// QuatToR4AA returns the axis angle of a unit quaternion with theta in [0, pi].
func QuatToR4AA(q quat.Number) *R4AA {
	v := QuatToRotationVector(q)
	return R3ToR4(v)
}

// QuatToRotationVector is the logarithm map of SO(3): the axis scaled by the angle.
func QuatToRotationVector(q quat.Number) r3.Vector {
	q = Normalize(q)
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	v := r3.Vector{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
	n := v.Norm()
	if n < smallAngle {
		return v.Mul(2)
	}
	angle := 2 * math.Atan2(n, q.Real)
	return v.Mul(angle / n)
}

// RotationVectorToQuat is the exponential map of SO(3).
func RotationVectorToQuat(v r3.Vector) quat.Number {
	angle := v.Norm()
	if angle < smallAngle {
		return Normalize(quat.Number{Real: 1, Imag: v.X / 2, Jmag: v.Y / 2, Kmag: v.Z / 2})
	}
	return (&R4AA{Theta: angle, RX: v.X / angle, RY: v.Y / angle, RZ: v.Z / angle}).ToQuat()
}
