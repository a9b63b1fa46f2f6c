package kineticsobserver

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/stateobservation/spatialmath"
)

// Layout of the floating base block at the head of the engine state vector.
const (
	PosIndex    = 0
	OriIndex    = 3
	LinVelIndex = 7
	AngVelIndex = 10
	BaseSize    = 13
)

// Covariances holds the diagonal covariance blocks handed to the engine once at configuration.
// Contact blocks are 12x12 (position, orientation, force, torque); the unmodeled wrench
// and contact sensor blocks are 6x6; every other block is 3x3.
type Covariances struct {
	StatePositionInit   *mat.DiagDense
	StateOriInit        *mat.DiagDense
	StateLinVelInit     *mat.DiagDense
	StateAngVelInit     *mat.DiagDense
	GyroBiasInit        *mat.DiagDense
	UnmodeledWrenchInit *mat.DiagDense
	ContactInit         *mat.DiagDense

	StatePositionProcess   *mat.DiagDense
	StateOriProcess        *mat.DiagDense
	StateLinVelProcess     *mat.DiagDense
	StateAngVelProcess     *mat.DiagDense
	GyroBiasProcess        *mat.DiagDense
	UnmodeledWrenchProcess *mat.DiagDense
	ContactProcess         *mat.DiagDense

	PositionSensor    *mat.DiagDense
	OrientationSensor *mat.DiagDense
	AcceleroSensor    *mat.DiagDense
	GyroSensor        *mat.DiagDense
	ContactSensor     *mat.DiagDense
}

// Engine is the extended Kalman filter estimating the floating base and contact states.
// Contact and IMU numbers are the ids of the measurement registries. Local kinematics are
// expressed in the floating base frame, global ones in the world.
type Engine interface {
	SetSamplingTime(dt float64)
	SetMass(mass float64)
	SetWithUnmodeledWrench(enabled bool)
	SetWithGyroBias(enabled bool)
	SetAllCovariances(covariances Covariances)

	SetCenterOfMass(position, velocity, acceleration r3.Vector)
	SetCoMAngularMomentum(momentum, derivative r3.Vector)
	SetAdditionalWrench(force, torque r3.Vector)
	SetIMU(acc, gyro r3.Vector, accCov, gyroCov *mat.DiagDense, local spatialmath.Kinematics, num int) error

	AddContact(reference spatialmath.Kinematics, initCov, processCov *mat.DiagDense, num int, model ViscoElasticModel) error
	RemoveContact(num int) error
	UpdateContactWithWrenchSensor(wrench spatialmath.Wrench, cov *mat.DiagDense, local spatialmath.Kinematics, num int) error
	UpdateContactWithNoSensor(local spatialmath.Kinematics, num int) error
	NumberOfSetContacts() int

	StateSize() int
	SetInitWorldCentroidStateVector(state mat.Vector) error
	// Update runs one prediction and correction and returns the new state vector.
	Update() (mat.Vector, error)
	// GlobalKinematicsOf returns the world kinematics of a frame given in the floating base frame.
	GlobalKinematicsOf(local spatialmath.Kinematics) spatialmath.Kinematics
	ContactKinematics(num int) (spatialmath.Kinematics, error)
	ContactWrench(num int) (spatialmath.Wrench, error)
	// GyroBias returns the bias of an IMU gyrometer, in the IMU frame. It fails unless the
	// bias is estimated.
	GyroBias(num int) (r3.Vector, error)

	CurrentStateVector() mat.Vector
	Innovation() mat.Vector
	LastMeasurement() mat.Vector
	LastPredictedMeasurement() mat.Vector
	SimulatedMeasurement() mat.Vector
}
