package spatialmath

import (
	"fmt"
	"strings"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// KinematicsFlags records which components of a Kinematics carry data.
type KinematicsFlags uint8

// The individual kinematic components.
const (
	HasPosition KinematicsFlags = 1 << iota
	HasOrientation
	HasLinVel
	HasAngVel
	HasLinAcc
	HasAngAcc

	HasPose = HasPosition | HasOrientation
	HasVels = HasLinVel | HasAngVel
	HasAccs = HasLinAcc | HasAngAcc
	HasAll  = HasPose | HasVels | HasAccs
)

// Has reports whether every component in want is present.
func (f KinematicsFlags) Has(want KinematicsFlags) bool {
	return f&want == want
}

// String lists the present components.
func (f KinematicsFlags) String() string {
	names := []string{"position", "orientation", "linVel", "angVel", "linAcc", "angAcc"}
	var present []string
	for i, name := range names {
		if f&(1<<i) != 0 {
			present = append(present, name)
		}
	}
	return "[" + strings.Join(present, " ") + "]"
}

// Kinematics is the pose and its first two time derivatives of a frame, expressed in a parent frame.
// Components not flagged in Flags are treated as zero.
type Kinematics struct {
	Position    r3.Vector
	Orientation quat.Number
	LinVel      r3.Vector
	AngVel      r3.Vector
	LinAcc      r3.Vector
	AngAcc      r3.Vector
	Flags       KinematicsFlags
}

// NewPoseKinematics returns kinematics holding only a pose.
func NewPoseKinematics(position r3.Vector, orientation quat.Number) Kinematics {
	return Kinematics{Position: position, Orientation: orientation, Flags: HasPose}
}

// NewZeroKinematics returns the identity pose with zero velocities and accelerations.
func NewZeroKinematics() Kinematics {
	return Kinematics{Orientation: NewZeroOrientation(), Flags: HasAll}
}

// Rotation returns the orientation, or the identity when absent.
func (k Kinematics) Rotation() quat.Number {
	if !k.Flags.Has(HasOrientation) || quat.Abs(k.Orientation) == 0 {
		return NewZeroOrientation()
	}
	return k.Orientation
}

func (k Kinematics) pick(flag KinematicsFlags, v r3.Vector) r3.Vector {
	if !k.Flags.Has(flag) {
		return r3.Vector{}
	}
	return v
}

// Compose returns the kinematics of frame c in frame a given b expressed in a (the receiver)
// and c expressed in b.
func (k Kinematics) Compose(other Kinematics) Kinematics {
	ra := k.Rotation()
	pa := k.pick(HasPosition, k.Position)
	va, wa := k.pick(HasLinVel, k.LinVel), k.pick(HasAngVel, k.AngVel)
	aa, ala := k.pick(HasLinAcc, k.LinAcc), k.pick(HasAngAcc, k.AngAcc)

	rpb := RotateVector(ra, other.pick(HasPosition, other.Position))
	rvb := RotateVector(ra, other.pick(HasLinVel, other.LinVel))
	rwb := RotateVector(ra, other.pick(HasAngVel, other.AngVel))
	rab := RotateVector(ra, other.pick(HasLinAcc, other.LinAcc))
	ralb := RotateVector(ra, other.pick(HasAngAcc, other.AngAcc))

	return Kinematics{
		Position:    pa.Add(rpb),
		Orientation: Normalize(quat.Mul(ra, other.Rotation())),
		AngVel:      wa.Add(rwb),
		LinVel:      va.Add(wa.Cross(rpb)).Add(rvb),
		AngAcc:      ala.Add(ralb).Add(wa.Cross(rwb)),
		LinAcc: aa.
			Add(ala.Cross(rpb)).
			Add(wa.Cross(wa.Cross(rpb))).
			Add(wa.Cross(rvb).Mul(2)).
			Add(rab),
		Flags: k.Flags | other.Flags,
	}
}

// Inverse returns the kinematics of the parent frame expressed in this frame.
// Only the pose and velocities are inverted; accelerations are dropped.
func (k Kinematics) Inverse() Kinematics {
	r := k.Rotation()
	p := k.pick(HasPosition, k.Position)
	v, w := k.pick(HasLinVel, k.LinVel), k.pick(HasAngVel, k.AngVel)
	return Kinematics{
		Position:    InverseRotateVector(r, p).Mul(-1),
		Orientation: quat.Conj(r),
		LinVel:      InverseRotateVector(r, w.Cross(p).Sub(v)),
		AngVel:      InverseRotateVector(r, w).Mul(-1),
		Flags:       k.Flags &^ HasAccs,
	}
}

// Pose returns a copy holding only the pose components.
func (k Kinematics) Pose() Kinematics {
	return Kinematics{Position: k.Position, Orientation: k.Orientation, Flags: k.Flags & HasPose}
}

// AlmostEqual compares the flagged components of two kinematics within tol.
func (k Kinematics) AlmostEqual(other Kinematics, tol float64) bool {
	if k.Flags != other.Flags {
		return false
	}
	vecs := []struct {
		flag KinematicsFlags
		a, b r3.Vector
	}{
		{HasPosition, k.Position, other.Position},
		{HasLinVel, k.LinVel, other.LinVel},
		{HasAngVel, k.AngVel, other.AngVel},
		{HasLinAcc, k.LinAcc, other.LinAcc},
		{HasAngAcc, k.AngAcc, other.AngAcc},
	}
	for _, v := range vecs {
		if k.Flags.Has(v.flag) && !R3VectorAlmostEqual(v.a, v.b, tol) {
			return false
		}
	}
	if k.Flags.Has(HasOrientation) && !QuaternionAlmostEqual(k.Orientation, other.Orientation, tol) {
		return false
	}
	return true
}

func (k Kinematics) String() string {
	return fmt.Sprintf("{pos:%v ori:%v flags:%v}", k.Position, k.Orientation, k.Flags)
}
