package spatialmath

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

func TestQuatToAngVel(t *testing.T) {
	dt := 2.0
	for _, rate := range []struct {
		TestName    string
		AngularRate r3.Vector
	}{
		{"unitary roll", r3.Vector{X: 1, Y: 0, Z: 0}},
		{"unitary pitch", r3.Vector{X: 0, Y: 1, Z: 0}},
		{"unitary yaw", r3.Vector{X: 0, Y: 0, Z: 1}},
		{"roll", r3.Vector{X: 0.5, Y: 0, Z: 0}},
		{"mixed", r3.Vector{X: 0.2, Y: -0.3, Z: 0.4}},
	} {
		t.Run(rate.TestName, func(t *testing.T) {
			from := RotationVectorToQuat(r3.Vector{X: 0.1, Y: 0.2})
			step := RotationVectorToQuat(rate.AngularRate.Mul(dt))
			to := Normalize(quat.Mul(step, from))
			av := QuatToAngVel(from, to, dt)
			test.That(t, R3VectorAlmostEqual(av, rate.AngularRate, 1e-9), test.ShouldBeTrue)
		})
	}

	test.That(t, QuatToAngVel(NewZeroOrientation(), NewZeroOrientation(), 0), test.ShouldResemble, r3.Vector{})
}

func TestFiniteDiffVel(t *testing.T) {
	v := FiniteDiffVel(r3.Vector{X: 1}, r3.Vector{X: 2, Z: -1}, 0.5)
	test.That(t, v, test.ShouldResemble, r3.Vector{X: 2, Z: -2})
	test.That(t, FiniteDiffVel(r3.Vector{}, r3.Vector{X: 1}, 0), test.ShouldResemble, r3.Vector{})
}
