package inject

import (
	"github.com/golang/geo/r3"

	"go.viam.com/stateobservation/robot"
	"go.viam.com/stateobservation/spatialmath"
)

// Robot is an injected robot.
type Robot struct {
	robot.Robot
	NameFunc            func() string
	MassFunc            func() float64
	FloatingBaseFunc    func() spatialmath.Kinematics
	CenterOfMassFunc    func() spatialmath.Kinematics
	AngularMomentumFunc func() (momentum, derivative r3.Vector)
	ForceSensorsFunc    func() []string
	ForceSensorFunc     func(name string) (robot.ForceSensor, error)
	SurfaceFunc         func(name string) (robot.Surface, error)
	IMUFunc             func(name string) (robot.IMU, error)
	ContactSurfacesFunc func() []string
}

// NewRobot returns an injected robot falling back to r.
func NewRobot(r robot.Robot) *Robot {
	return &Robot{Robot: r}
}

// Name calls the injected Name or the real version.
func (r *Robot) Name() string {
	if r.NameFunc == nil {
		return r.Robot.Name()
	}
	return r.NameFunc()
}

// Mass calls the injected Mass or the real version.
func (r *Robot) Mass() float64 {
	if r.MassFunc == nil {
		return r.Robot.Mass()
	}
	return r.MassFunc()
}

// FloatingBase calls the injected FloatingBase or the real version.
func (r *Robot) FloatingBase() spatialmath.Kinematics {
	if r.FloatingBaseFunc == nil {
		return r.Robot.FloatingBase()
	}
	return r.FloatingBaseFunc()
}

// CenterOfMass calls the injected CenterOfMass or the real version.
func (r *Robot) CenterOfMass() spatialmath.Kinematics {
	if r.CenterOfMassFunc == nil {
		return r.Robot.CenterOfMass()
	}
	return r.CenterOfMassFunc()
}

// AngularMomentum calls the injected AngularMomentum or the real version.
func (r *Robot) AngularMomentum() (momentum, derivative r3.Vector) {
	if r.AngularMomentumFunc == nil {
		return r.Robot.AngularMomentum()
	}
	return r.AngularMomentumFunc()
}

// ForceSensors calls the injected ForceSensors or the real version.
func (r *Robot) ForceSensors() []string {
	if r.ForceSensorsFunc == nil {
		return r.Robot.ForceSensors()
	}
	return r.ForceSensorsFunc()
}

// ForceSensor calls the injected ForceSensor or the real version.
func (r *Robot) ForceSensor(name string) (robot.ForceSensor, error) {
	if r.ForceSensorFunc == nil {
		return r.Robot.ForceSensor(name)
	}
	return r.ForceSensorFunc(name)
}

// Surface calls the injected Surface or the real version.
func (r *Robot) Surface(name string) (robot.Surface, error) {
	if r.SurfaceFunc == nil {
		return r.Robot.Surface(name)
	}
	return r.SurfaceFunc(name)
}

// IMU calls the injected IMU or the real version.
func (r *Robot) IMU(name string) (robot.IMU, error) {
	if r.IMUFunc == nil {
		return r.Robot.IMU(name)
	}
	return r.IMUFunc(name)
}

// ContactSurfaces calls the injected ContactSurfaces or the real version.
func (r *Robot) ContactSurfaces() []string {
	if r.ContactSurfacesFunc == nil {
		return r.Robot.ContactSurfaces()
	}
	return r.ContactSurfacesFunc()
}
