// Package fake implements an in-memory robot whose readings are set by the caller before each cycle.
package fake

import (
	"slices"

	"github.com/golang/geo/r3"

	"go.viam.com/stateobservation/robot"
	"go.viam.com/stateobservation/spatialmath"
)

// Robot is a fake robot.Robot. It is not safe for concurrent use.
type Robot struct {
	name string
	mass float64

	base          spatialmath.Kinematics
	com           spatialmath.Kinematics
	momentum      r3.Vector
	momentumDeriv r3.Vector

	forceSensorOrder []string
	forceSensors     map[string]robot.ForceSensor
	surfaces         map[string]robot.Surface
	imus             map[string]robot.IMU
	contactSurfaces  []string
}

// NewRobot returns a robot with its floating base at the world origin and no sensors.
func NewRobot(name string, mass float64) *Robot {
	return &Robot{
		name:         name,
		mass:         mass,
		base:         spatialmath.NewZeroKinematics(),
		com:          spatialmath.Kinematics{Orientation: spatialmath.NewZeroOrientation(), Flags: spatialmath.HasAll},
		forceSensors: map[string]robot.ForceSensor{},
		surfaces:     map[string]robot.Surface{},
		imus:         map[string]robot.IMU{},
	}
}

// Name returns the robot name.
func (r *Robot) Name() string {
	return r.name
}

// Mass returns the robot mass.
func (r *Robot) Mass() float64 {
	return r.mass
}

// FloatingBase returns the floating base kinematics in the world.
func (r *Robot) FloatingBase() spatialmath.Kinematics {
	return r.base
}

// SetFloatingBase sets the floating base kinematics in the world.
func (r *Robot) SetFloatingBase(k spatialmath.Kinematics) {
	r.base = k
}

// CenterOfMass returns the CoM kinematics in the floating base frame.
func (r *Robot) CenterOfMass() spatialmath.Kinematics {
	return r.com
}

// SetCenterOfMass sets the CoM kinematics in the floating base frame.
func (r *Robot) SetCenterOfMass(k spatialmath.Kinematics) {
	r.com = k
}

// AngularMomentum returns the angular momentum and its derivative.
func (r *Robot) AngularMomentum() (r3.Vector, r3.Vector) {
	return r.momentum, r.momentumDeriv
}

// SetAngularMomentum sets the angular momentum and its derivative.
func (r *Robot) SetAngularMomentum(momentum, derivative r3.Vector) {
	r.momentum = momentum
	r.momentumDeriv = derivative
}

// AddForceSensor adds or replaces a force sensor.
func (r *Robot) AddForceSensor(fs robot.ForceSensor) {
	if _, ok := r.forceSensors[fs.Name]; !ok {
		r.forceSensorOrder = append(r.forceSensorOrder, fs.Name)
	}
	if fs.Kinematics.Flags == 0 {
		fs.Kinematics = spatialmath.NewPoseKinematics(r3.Vector{}, spatialmath.NewZeroOrientation())
	}
	r.forceSensors[fs.Name] = fs
}

// SetWrench sets the gravity free wrench measured by a sensor.
func (r *Robot) SetWrench(sensor string, w spatialmath.Wrench) error {
	fs, ok := r.forceSensors[sensor]
	if !ok {
		return robot.NewNotFoundError("force sensor", sensor)
	}
	fs.WrenchWithoutGravity = w
	r.forceSensors[sensor] = fs
	return nil
}

// SetForce sets the force measured by a sensor and zeroes its torque.
func (r *Robot) SetForce(sensor string, force r3.Vector) error {
	return r.SetWrench(sensor, spatialmath.Wrench{Force: force})
}

// ForceSensors returns the force sensor names in the order they were added.
func (r *Robot) ForceSensors() []string {
	return slices.Clone(r.forceSensorOrder)
}

// ForceSensor returns a force sensor reading.
func (r *Robot) ForceSensor(name string) (robot.ForceSensor, error) {
	fs, ok := r.forceSensors[name]
	if !ok {
		return robot.ForceSensor{}, robot.NewNotFoundError("force sensor", name)
	}
	return fs, nil
}

// AddSurface adds or replaces a contact surface.
func (r *Robot) AddSurface(s robot.Surface) {
	if s.Kinematics.Flags == 0 {
		s.Kinematics = spatialmath.NewPoseKinematics(r3.Vector{}, spatialmath.NewZeroOrientation())
	}
	r.surfaces[s.Name] = s
}

// Surface returns a contact surface.
func (r *Robot) Surface(name string) (robot.Surface, error) {
	s, ok := r.surfaces[name]
	if !ok {
		return robot.Surface{}, robot.NewNotFoundError("surface", name)
	}
	return s, nil
}

// AddIMU adds or replaces an IMU.
func (r *Robot) AddIMU(imu robot.IMU) {
	if imu.Kinematics.Flags == 0 {
		imu.Kinematics = spatialmath.NewPoseKinematics(r3.Vector{}, spatialmath.NewZeroOrientation())
	}
	r.imus[imu.Name] = imu
}

// SetIMUReading sets the accelerometer and gyrometer readings of an IMU.
func (r *Robot) SetIMUReading(name string, acc, gyro r3.Vector) error {
	imu, ok := r.imus[name]
	if !ok {
		return robot.NewNotFoundError("imu", name)
	}
	imu.LinearAcceleration = acc
	imu.AngularVelocity = gyro
	r.imus[name] = imu
	return nil
}

// IMU returns an IMU reading.
func (r *Robot) IMU(name string) (robot.IMU, error) {
	imu, ok := r.imus[name]
	if !ok {
		return robot.IMU{}, robot.NewNotFoundError("imu", name)
	}
	return imu, nil
}

// SetContactSurfaces sets the surfaces reported in contact by the solver.
func (r *Robot) SetContactSurfaces(names ...string) {
	r.contactSurfaces = slices.Clone(names)
}

// ContactSurfaces returns the surfaces reported in contact by the solver.
func (r *Robot) ContactSurfaces() []string {
	return slices.Clone(r.contactSurfaces)
}
