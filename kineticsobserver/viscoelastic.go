package kineticsobserver

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/stateobservation/spatialmath"
)

// ViscoElasticModel is the linear spring-damper law relating the deflection of a contact,
// from its rest (reference) pose to its actual pose, to the wrench it transmits.
// Every vector is the diagonal of a 3x3 matrix.
type ViscoElasticModel struct {
	LinStiffness r3.Vector
	LinDamping   r3.Vector
	AngStiffness r3.Vector
	AngDamping   r3.Vector
}

// Validate checks that both stiffness matrices are invertible.
func (m ViscoElasticModel) Validate() error {
	if _, err := spatialmath.InverseDiag3(m.LinStiffness); err != nil {
		return errors.Wrap(err, "linear stiffness")
	}
	if _, err := spatialmath.InverseDiag3(m.AngStiffness); err != nil {
		return errors.Wrap(err, "angular stiffness")
	}
	return nil
}

func (m ViscoElasticModel) compliances() (lin, ang *mat.DiagDense, err error) {
	if lin, err = spatialmath.InverseDiag3(m.LinStiffness); err != nil {
		return nil, nil, err
	}
	if ang, err = spatialmath.InverseDiag3(m.AngStiffness); err != nil {
		return nil, nil, err
	}
	return lin, ang, nil
}

// flexRotation returns the rotation taking the rest orientation onto the deflected one.
// direction is -2·R·Kθ⁻¹·τ', its norm halved is the sine of the angle and is clamped into [-1, 1].
func flexRotation(direction r3.Vector) quat.Number {
	norm := direction.Norm()
	if norm == 0 {
		return spatialmath.NewZeroOrientation()
	}
	angle := math.Asin(math.Max(-1, math.Min(1, norm/2)))
	return spatialmath.R3ToR4(direction.Mul(angle / norm)).ToQuat()
}

// ReferenceKinematics returns the rest pose of a contact from its deflected world kinematics
// and the wrench it transmits, expressed in the contact frame.
func (m ViscoElasticModel) ReferenceKinematics(
	worldContact spatialmath.Kinematics,
	wrench spatialmath.Wrench,
) (spatialmath.Kinematics, error) {
	linCompliance, angCompliance, err := m.compliances()
	if err != nil {
		return spatialmath.Kinematics{}, err
	}
	r := worldContact.Rotation()
	var linVel, angVel r3.Vector
	if worldContact.Flags.Has(spatialmath.HasLinVel) {
		linVel = worldContact.LinVel
	}
	if worldContact.Flags.Has(spatialmath.HasAngVel) {
		angVel = worldContact.AngVel
	}

	force := wrench.Force.Add(spatialmath.InverseRotateVector(r, spatialmath.MulVec3(spatialmath.Diag3(m.LinDamping), linVel)))
	position := spatialmath.RotateVector(r, spatialmath.MulVec3(linCompliance, force)).Add(worldContact.Position)

	torque := wrench.Torque.Add(spatialmath.InverseRotateVector(r, spatialmath.MulVec3(spatialmath.Diag3(m.AngDamping), angVel)))
	direction := spatialmath.RotateVector(r, spatialmath.MulVec3(angCompliance, torque)).Mul(-2)
	orientation := spatialmath.Normalize(quat.Mul(quat.Conj(flexRotation(direction)), r))

	return spatialmath.NewPoseKinematics(position, orientation), nil
}

// DeflectedKinematics is the forward law of ReferenceKinematics for a contact at rest: the
// world pose reached from reference under wrench.
func (m ViscoElasticModel) DeflectedKinematics(
	reference spatialmath.Kinematics,
	wrench spatialmath.Wrench,
) (spatialmath.Kinematics, error) {
	linCompliance, angCompliance, err := m.compliances()
	if err != nil {
		return spatialmath.Kinematics{}, err
	}
	// the deflection axis is left unchanged by the deflection itself
	rest := reference.Rotation()
	direction := spatialmath.RotateVector(rest, spatialmath.MulVec3(angCompliance, wrench.Torque)).Mul(-2)
	r := spatialmath.Normalize(quat.Mul(flexRotation(direction), rest))
	position := reference.Position.Sub(spatialmath.RotateVector(r, spatialmath.MulVec3(linCompliance, wrench.Force)))
	return spatialmath.NewPoseKinematics(position, r), nil
}
