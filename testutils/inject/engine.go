package inject

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/stateobservation/kineticsobserver"
	"go.viam.com/stateobservation/spatialmath"
)

// Engine is an injected kinetics observer Engine.
type Engine struct {
	kineticsobserver.Engine
	SetSamplingTimeFunc        func(dt float64)
	SetMassFunc                func(mass float64)
	SetWithUnmodeledWrenchFunc func(enabled bool)
	SetWithGyroBiasFunc        func(enabled bool)
	SetAllCovariancesFunc      func(covariances kineticsobserver.Covariances)

	SetCenterOfMassFunc       func(position, velocity, acceleration r3.Vector)
	SetCoMAngularMomentumFunc func(momentum, derivative r3.Vector)
	SetAdditionalWrenchFunc   func(force, torque r3.Vector)
	SetIMUFunc                func(acc, gyro r3.Vector, accCov, gyroCov *mat.DiagDense, local spatialmath.Kinematics, num int) error

	AddContactFunc func(
		reference spatialmath.Kinematics,
		initCov, processCov *mat.DiagDense,
		num int,
		model kineticsobserver.ViscoElasticModel,
	) error
	RemoveContactFunc                 func(num int) error
	UpdateContactWithWrenchSensorFunc func(wrench spatialmath.Wrench, cov *mat.DiagDense, local spatialmath.Kinematics, num int) error
	UpdateContactWithNoSensorFunc     func(local spatialmath.Kinematics, num int) error
	NumberOfSetContactsFunc           func() int

	StateSizeFunc                       func() int
	SetInitWorldCentroidStateVectorFunc func(state mat.Vector) error
	UpdateFunc                          func() (mat.Vector, error)
	GlobalKinematicsOfFunc              func(local spatialmath.Kinematics) spatialmath.Kinematics
	ContactKinematicsFunc               func(num int) (spatialmath.Kinematics, error)
	ContactWrenchFunc                   func(num int) (spatialmath.Wrench, error)
	GyroBiasFunc                        func(num int) (r3.Vector, error)
}

// NewEngine returns an injected engine falling back to engine, which may be nil when every
// called method is injected.
func NewEngine(engine kineticsobserver.Engine) *Engine {
	return &Engine{Engine: engine}
}

// SetSamplingTime calls the injected SetSamplingTime or the real version.
func (e *Engine) SetSamplingTime(dt float64) {
	if e.SetSamplingTimeFunc == nil {
		e.Engine.SetSamplingTime(dt)
		return
	}
	e.SetSamplingTimeFunc(dt)
}

// SetMass calls the injected SetMass or the real version.
func (e *Engine) SetMass(mass float64) {
	if e.SetMassFunc == nil {
		e.Engine.SetMass(mass)
		return
	}
	e.SetMassFunc(mass)
}

// SetWithUnmodeledWrench calls the injected SetWithUnmodeledWrench or the real version.
func (e *Engine) SetWithUnmodeledWrench(enabled bool) {
	if e.SetWithUnmodeledWrenchFunc == nil {
		e.Engine.SetWithUnmodeledWrench(enabled)
		return
	}
	e.SetWithUnmodeledWrenchFunc(enabled)
}

// SetWithGyroBias calls the injected SetWithGyroBias or the real version.
func (e *Engine) SetWithGyroBias(enabled bool) {
	if e.SetWithGyroBiasFunc == nil {
		e.Engine.SetWithGyroBias(enabled)
		return
	}
	e.SetWithGyroBiasFunc(enabled)
}

// SetAllCovariances calls the injected SetAllCovariances or the real version.
func (e *Engine) SetAllCovariances(covariances kineticsobserver.Covariances) {
	if e.SetAllCovariancesFunc == nil {
		e.Engine.SetAllCovariances(covariances)
		return
	}
	e.SetAllCovariancesFunc(covariances)
}

// SetCenterOfMass calls the injected SetCenterOfMass or the real version.
func (e *Engine) SetCenterOfMass(position, velocity, acceleration r3.Vector) {
	if e.SetCenterOfMassFunc == nil {
		e.Engine.SetCenterOfMass(position, velocity, acceleration)
		return
	}
	e.SetCenterOfMassFunc(position, velocity, acceleration)
}

// SetCoMAngularMomentum calls the injected SetCoMAngularMomentum or the real version.
func (e *Engine) SetCoMAngularMomentum(momentum, derivative r3.Vector) {
	if e.SetCoMAngularMomentumFunc == nil {
		e.Engine.SetCoMAngularMomentum(momentum, derivative)
		return
	}
	e.SetCoMAngularMomentumFunc(momentum, derivative)
}

// SetAdditionalWrench calls the injected SetAdditionalWrench or the real version.
func (e *Engine) SetAdditionalWrench(force, torque r3.Vector) {
	if e.SetAdditionalWrenchFunc == nil {
		e.Engine.SetAdditionalWrench(force, torque)
		return
	}
	e.SetAdditionalWrenchFunc(force, torque)
}

// SetIMU calls the injected SetIMU or the real version.
func (e *Engine) SetIMU(acc, gyro r3.Vector, accCov, gyroCov *mat.DiagDense, local spatialmath.Kinematics, num int) error {
	if e.SetIMUFunc == nil {
		return e.Engine.SetIMU(acc, gyro, accCov, gyroCov, local, num)
	}
	return e.SetIMUFunc(acc, gyro, accCov, gyroCov, local, num)
}

// AddContact calls the injected AddContact or the real version.
func (e *Engine) AddContact(
	reference spatialmath.Kinematics,
	initCov, processCov *mat.DiagDense,
	num int,
	model kineticsobserver.ViscoElasticModel,
) error {
	if e.AddContactFunc == nil {
		return e.Engine.AddContact(reference, initCov, processCov, num, model)
	}
	return e.AddContactFunc(reference, initCov, processCov, num, model)
}

// RemoveContact calls the injected RemoveContact or the real version.
func (e *Engine) RemoveContact(num int) error {
	if e.RemoveContactFunc == nil {
		return e.Engine.RemoveContact(num)
	}
	return e.RemoveContactFunc(num)
}

// UpdateContactWithWrenchSensor calls the injected UpdateContactWithWrenchSensor or the real version.
func (e *Engine) UpdateContactWithWrenchSensor(
	wrench spatialmath.Wrench,
	cov *mat.DiagDense,
	local spatialmath.Kinematics,
	num int,
) error {
	if e.UpdateContactWithWrenchSensorFunc == nil {
		return e.Engine.UpdateContactWithWrenchSensor(wrench, cov, local, num)
	}
	return e.UpdateContactWithWrenchSensorFunc(wrench, cov, local, num)
}

// UpdateContactWithNoSensor calls the injected UpdateContactWithNoSensor or the real version.
func (e *Engine) UpdateContactWithNoSensor(local spatialmath.Kinematics, num int) error {
	if e.UpdateContactWithNoSensorFunc == nil {
		return e.Engine.UpdateContactWithNoSensor(local, num)
	}
	return e.UpdateContactWithNoSensorFunc(local, num)
}

// NumberOfSetContacts calls the injected NumberOfSetContacts or the real version.
func (e *Engine) NumberOfSetContacts() int {
	if e.NumberOfSetContactsFunc == nil {
		return e.Engine.NumberOfSetContacts()
	}
	return e.NumberOfSetContactsFunc()
}

// StateSize calls the injected StateSize or the real version.
func (e *Engine) StateSize() int {
	if e.StateSizeFunc == nil {
		return e.Engine.StateSize()
	}
	return e.StateSizeFunc()
}

// SetInitWorldCentroidStateVector calls the injected SetInitWorldCentroidStateVector or the real version.
func (e *Engine) SetInitWorldCentroidStateVector(state mat.Vector) error {
	if e.SetInitWorldCentroidStateVectorFunc == nil {
		return e.Engine.SetInitWorldCentroidStateVector(state)
	}
	return e.SetInitWorldCentroidStateVectorFunc(state)
}

// Update calls the injected Update or the real version.
func (e *Engine) Update() (mat.Vector, error) {
	if e.UpdateFunc == nil {
		return e.Engine.Update()
	}
	return e.UpdateFunc()
}

// GlobalKinematicsOf calls the injected GlobalKinematicsOf or the real version.
func (e *Engine) GlobalKinematicsOf(local spatialmath.Kinematics) spatialmath.Kinematics {
	if e.GlobalKinematicsOfFunc == nil {
		return e.Engine.GlobalKinematicsOf(local)
	}
	return e.GlobalKinematicsOfFunc(local)
}

// ContactKinematics calls the injected ContactKinematics or the real version.
func (e *Engine) ContactKinematics(num int) (spatialmath.Kinematics, error) {
	if e.ContactKinematicsFunc == nil {
		return e.Engine.ContactKinematics(num)
	}
	return e.ContactKinematicsFunc(num)
}

// ContactWrench calls the injected ContactWrench or the real version.
func (e *Engine) ContactWrench(num int) (spatialmath.Wrench, error) {
	if e.ContactWrenchFunc == nil {
		return e.Engine.ContactWrench(num)
	}
	return e.ContactWrenchFunc(num)
}

// GyroBias calls the injected GyroBias or the real version.
func (e *Engine) GyroBias(num int) (r3.Vector, error) {
	if e.GyroBiasFunc == nil {
		return e.Engine.GyroBias(num)
	}
	return e.GyroBiasFunc(num)
}
