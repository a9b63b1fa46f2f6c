// Package robot defines the view of a legged robot's model and sensors consumed once per
// control cycle by the contact manager and the kinetics observer.
package robot

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/stateobservation/spatialmath"
)

// ErrNotFound is returned when a named sensor, surface or frame is not part of the robot model.
var ErrNotFound = errors.New("not found on robot")

// NewNotFoundError returns an error wrapping ErrNotFound for the given kind of element.
func NewNotFoundError(kind, name string) error {
	return errors.Wrapf(ErrNotFound, "%s %q", kind, name)
}

// ForceSensor is a force/torque sensor reading.
type ForceSensor struct {
	Name       string
	ParentBody string
	// WrenchWithoutGravity is the measured wrench in the sensor frame, compensated for the
	// weight of the bodies below the sensor.
	WrenchWithoutGravity spatialmath.Wrench
	// Kinematics of the sensor frame in the floating base frame.
	Kinematics spatialmath.Kinematics
}

// WorldWrenchWithoutGravity returns the gravity free wrench expressed at the origin of the
// floating base frame.
func (fs ForceSensor) WorldWrenchWithoutGravity() spatialmath.Wrench {
	return fs.WrenchWithoutGravity.Transform(fs.Kinematics)
}

// Surface is a named contact surface of the robot.
type Surface struct {
	Name string
	// ForceSensor is the sensor measuring the wrench on the surface, empty if there is none.
	ForceSensor string
	// DirectSensor is true when the sensor frame coincides with the surface frame.
	DirectSensor bool
	// Kinematics of the surface frame in the floating base frame.
	Kinematics spatialmath.Kinematics
}

// IMU is an inertial measurement unit reading.
type IMU struct {
	Name               string
	LinearAcceleration r3.Vector
	AngularVelocity    r3.Vector
	// Kinematics of the IMU frame in the floating base frame.
	Kinematics spatialmath.Kinematics
}

// A Robot gives access to the kinematic state and sensor readings of a robot for the
// current control cycle. Frame kinematics are expressed in the floating base frame; the
// floating base pose in the world is given by FloatingBase.
type Robot interface {
	Name() string
	Mass() float64

	// FloatingBase returns the kinematics of the floating base in the world.
	FloatingBase() spatialmath.Kinematics
	// CenterOfMass returns the position, velocity and acceleration of the center of mass
	// in the floating base frame.
	CenterOfMass() spatialmath.Kinematics
	// AngularMomentum returns the angular momentum at the center of mass and its time derivative.
	AngularMomentum() (momentum, derivative r3.Vector)

	// ForceSensors returns the names of every force sensor of the robot.
	ForceSensors() []string
	ForceSensor(name string) (ForceSensor, error)
	Surface(name string) (Surface, error)
	IMU(name string) (IMU, error)

	// ContactSurfaces returns the surfaces currently in contact according to the
	// controller's contact solver.
	ContactSurfaces() []string
}

// WorldKinematicsOf returns the world kinematics of a frame given in the floating base frame of r.
func WorldKinematicsOf(r Robot, local spatialmath.Kinematics) spatialmath.Kinematics {
	return r.FloatingBase().Compose(local)
}
