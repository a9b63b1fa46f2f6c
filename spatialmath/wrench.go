package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Wrench is a force and a torque applied at the origin of the frame they are expressed in.
type Wrench struct {
	Force  r3.Vector
	Torque r3.Vector
}

// Add returns the sum of two wrenches expressed in the same frame.
func (w Wrench) Add(other Wrench) Wrench {
	return Wrench{Force: w.Force.Add(other.Force), Torque: w.Torque.Add(other.Torque)}
}

// Transform re-expresses the wrench in the parent frame of pose: the force is rotated
// and the torque gains the moment of the force about the new origin.
func (w Wrench) Transform(pose Kinematics) Wrench {
	r := pose.Rotation()
	force := RotateVector(r, w.Force)
	torque := RotateVector(r, w.Torque).Add(pose.pick(HasPosition, pose.Position).Cross(force))
	return Wrench{Force: force, Torque: torque}
}

// Slice lays out the wrench as [fx fy fz tx ty tz].
func (w Wrench) Slice() []float64 {
	return []float64{w.Force.X, w.Force.Y, w.Force.Z, w.Torque.X, w.Torque.Y, w.Torque.Z}
}

func (w Wrench) String() string {
	return fmt.Sprintf("{force:%v torque:%v}", w.Force, w.Torque)
}
