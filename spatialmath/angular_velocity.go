package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// QuatToAngVel returns the constant angular velocity, in rad/s and expressed in the
// world frame, that rotates from onto to in dt seconds.
func QuatToAngVel(from, to quat.Number, dt float64) r3.Vector {
	if dt <= 0 {
		return r3.Vector{}
	}
	return QuatToRotationVector(OrientationBetween(from, to)).Mul(1 / dt)
}

// FiniteDiffVel returns the linear velocity that moves from onto to in dt seconds.
func FiniteDiffVel(from, to r3.Vector, dt float64) r3.Vector {
	if dt <= 0 {
		return r3.Vector{}
	}
	return to.Sub(from).Mul(1 / dt)
}
