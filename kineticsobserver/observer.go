// Package kineticsobserver estimates the floating base kinematics of a legged robot by feeding
// its contacts, IMUs and centroidal quantities to a kinetics observer engine once per cycle.
package kineticsobserver

import (
	"context"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/stateobservation/logging"
	"go.viam.com/stateobservation/measurements"
	"go.viam.com/stateobservation/robot"
	"go.viam.com/stateobservation/spatialmath"
)

// FloatingBaseEstimate is the world kinematics of the floating base estimated on the last cycle.
type FloatingBaseEstimate struct {
	Pose            spatialmath.Kinematics
	LinVel          r3.Vector
	AngVel          r3.Vector
	LinAcc          r3.Vector
	AngAcc          r3.Vector
	HasVelocity     bool
	HasAcceleration bool
}

// Kinematics merges the estimate into a single Kinematics flagged with what was estimated.
func (e FloatingBaseEstimate) Kinematics() spatialmath.Kinematics {
	k := e.Pose
	if e.HasVelocity {
		k.LinVel, k.AngVel = e.LinVel, e.AngVel
		k.Flags |= spatialmath.HasVels
	}
	if e.HasAcceleration {
		k.LinAcc, k.AngAcc = e.LinAcc, e.AngAcc
		k.Flags |= spatialmath.HasAccs
	}
	return k
}

// ContactEstimate is the state of a set contact as estimated by the engine.
type ContactEstimate struct {
	// Kinematics is the reference pose of the contact in the world.
	Kinematics spatialmath.Kinematics
	Wrench     spatialmath.Wrench
}

// Observer drives an Engine with the measurements of a robot. It owns the contact and IMU
// registries. It is not safe for concurrent use.
type Observer struct {
	name   string
	dt     float64
	engine Engine
	logger logging.Logger

	cfg            *Config
	managerCfg     measurements.ContactsManagerConfig
	odometry       OdometryType
	velocityUpdate VelocityUpdate
	model          ViscoElasticModel
	listeners      listeners

	manager *measurements.ContactsManager
	imus    measurements.IMUs

	started          bool
	ekfConverged     bool
	additionalWrench spatialmath.Wrench
	floatingBase     FloatingBaseEstimate
	hasFloatingBase  bool
	debug            *DebugSnapshot
}

// New returns an observer running engine every dt seconds. It must be configured before use.
func New(name string, dt float64, engine Engine, logger logging.Logger) *Observer {
	return &Observer{
		name:   name,
		dt:     dt,
		engine: engine,
		logger: logger,
	}
}

// Name returns the name of the observer.
func (o *Observer) Name() string {
	return o.name
}

// Configure validates cfg, sets up the engine and resets the observer on r.
func (o *Observer) Configure(r robot.Robot, cfg *Config) error {
	if cfg == nil {
		return ErrConfigRequired
	}
	if err := cfg.Validate(o.name); err != nil {
		return err
	}
	detection, err := measurements.ParseContactsDetection(cfg.ContactsDetection)
	if err != nil {
		return err
	}
	odometry, err := ParseOdometryType(cfg.OdometryType)
	if err != nil {
		return err
	}
	velocityUpdate, err := ParseVelocityUpdate(cfg.VelocityUpdate)
	if err != nil {
		return err
	}
	model := cfg.ViscoElasticModel()
	if err := model.Validate(); err != nil {
		return errors.Wrap(err, "invalid contact model")
	}

	o.cfg = cfg
	o.odometry = odometry
	o.velocityUpdate = velocityUpdate
	o.model = model
	o.managerCfg = measurements.ContactsManagerConfig{
		Detection:                   detection,
		SurfacesForContactDetection: cfg.SurfacesForContactDetection,
		ContactSensorsDisabledInit:  cfg.ContactsSensorDisabledInit,
		ContactDetectionThreshold:   measurements.ContactDetectionThreshold(r.Mass(), cfg.ContactDetectionPropThreshold),
		Verbose:                     cfg.Verbose,
	}

	o.engine.SetSamplingTime(o.dt)
	o.engine.SetWithUnmodeledWrench(cfg.WithUnmodeledWrench)
	o.engine.SetWithGyroBias(cfg.WithGyroBias)
	o.engine.SetAllCovariances(cfg.Covariances())

	if err := o.Reset(r); err != nil {
		return err
	}
	o.logger.Infow("kinetics observer configured",
		"robot", r.Name(),
		"detection", detection,
		"threshold", o.managerCfg.ContactDetectionThreshold,
		"odometry", odometry,
		"velocity_update", velocityUpdate,
		"imus", o.imus.Names())
	return nil
}

// Reset forgets every contact and restarts the estimation from the first contact detected on measured.
func (o *Observer) Reset(measured robot.Robot) error {
	if o.cfg == nil {
		return ErrNotConfigured
	}
	if o.manager != nil {
		for _, id := range o.manager.ContactsFound().Sorted() {
			if err := o.engine.RemoveContact(id); err != nil {
				return errors.Wrapf(err, "removing contact %d on reset", id)
			}
		}
	}

	manager, err := measurements.NewContactsManager(o.managerCfg, o.logger.Sublogger("contacts"))
	if err != nil {
		return err
	}
	if err := manager.Init(measured); err != nil {
		return err
	}
	imus := measurements.NewIMUs()
	for _, name := range o.cfg.IMUSensors {
		if _, err := measured.IMU(name); err != nil {
			return err
		}
		imus.InsertIMU(name)
	}

	o.manager = manager
	o.imus = imus
	o.engine.SetMass(measured.Mass())
	o.started = false
	o.ekfConverged = false
	o.additionalWrench = spatialmath.Wrench{}
	o.floatingBase = FloatingBaseEstimate{}
	o.hasFloatingBase = false
	o.debug = nil
	return nil
}

// AddContactListener registers l for the contact changes of the following cycles.
func (o *Observer) AddContactListener(l ContactListener) {
	o.listeners = append(o.listeners, l)
}

// Run performs one estimation cycle from the measured robot. The control robot provides the
// contact poses that the estimation does not provide. A cancelled ctx stops the cycle before
// anything is changed.
func (o *Observer) Run(ctx context.Context, measured, control robot.Robot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if o.manager == nil {
		return ErrNotConfigured
	}

	// the engine expresses the robot frames around the center of mass
	com := measured.CenterOfMass()
	o.engine.SetCenterOfMass(com.Position, com.LinVel, com.LinAcc)

	found, err := o.manager.FindContacts(measured)
	if err != nil {
		return err
	}
	if err := o.inputAdditionalWrench(measured); err != nil {
		return err
	}
	if !o.started && found.Len() > 0 {
		if err := o.initStateVector(measured); err != nil {
			return err
		}
		o.started = true
		o.logger.Infow("contacts detected, starting the estimation", "contacts", o.manager.FormatSet(found))
	}
	if !o.started {
		return nil
	}

	if err := o.updateIMUs(measured); err != nil {
		return err
	}
	for _, id := range found.Sorted() {
		if err := o.updateContact(measured, control, id); err != nil {
			return err
		}
	}
	removed := o.manager.RemovedContacts()
	for _, id := range removed.Sorted() {
		if err := o.removeContact(id); err != nil {
			return err
		}
	}

	momentum, derivative := measured.AngularMomentum()
	o.engine.SetCoMAngularMomentum(momentum, derivative)

	if o.cfg.WithDebugLogs && !o.ekfConverged {
		o.logger.Infow("kinetics observer before first update", "snapshot", o.snapshot().String())
	}
	if _, err := o.engine.Update(); err != nil {
		return errors.Wrap(err, "updating the kinetics observer")
	}
	if o.cfg.WithDebugLogs && !o.ekfConverged {
		o.logger.Infow("kinetics observer after first update", "snapshot", o.snapshot().String())
	}
	o.ekfConverged = true

	if err := o.updateGyroBiases(); err != nil {
		return err
	}
	o.updateFloatingBase()
	if o.cfg.WithDebugLogs {
		o.debug = o.snapshot()
	}
	if o.cfg.Debug {
		o.logger.Debugw("kinetics observer cycle",
			"found", o.manager.FormatSet(found),
			"removed", o.manager.FormatSet(removed),
			"set_in_engine", o.engine.NumberOfSetContacts())
	}
	return nil
}

// initStateVector seeds the engine with the center of mass position and velocity, a zero
// orientation and a zero angular velocity.
func (o *Observer) initStateVector(measured robot.Robot) error {
	state := mat.NewVecDense(o.engine.StateSize(), nil)
	com := robot.WorldKinematicsOf(measured, measured.CenterOfMass())
	setR3(state, PosIndex, com.Position)
	for i, v := range spatialmath.QuatToVector4(spatialmath.NewZeroOrientation()) {
		state.SetVec(OriIndex+i, v)
	}
	if com.Flags.Has(spatialmath.HasLinVel) {
		setR3(state, LinVelIndex, com.LinVel)
	}
	return errors.Wrap(o.engine.SetInitWorldCentroidStateVector(state), "initializing the state vector")
}

func setR3(v *mat.VecDense, at int, value r3.Vector) {
	v.SetVec(at, value.X)
	v.SetVec(at+1, value.Y)
	v.SetVec(at+2, value.Z)
}

func (o *Observer) updateIMUs(measured robot.Robot) error {
	for _, imu := range o.imus.All() {
		reading, err := measured.IMU(imu.Name())
		if err != nil {
			return err
		}
		if err := o.engine.SetIMU(
			reading.LinearAcceleration,
			reading.AngularVelocity,
			o.cfg.AcceleroCovariance(),
			o.cfg.GyroCovariance(),
			reading.Kinematics,
			imu.ID(),
		); err != nil {
			return errors.Wrapf(err, "setting imu %q", imu.Name())
		}
	}
	return nil
}

// updateGyroBiases copies the biases estimated by the engine into the IMU registry.
func (o *Observer) updateGyroBiases() error {
	if !o.cfg.WithGyroBias {
		return nil
	}
	for _, imu := range o.imus.All() {
		bias, err := o.engine.GyroBias(imu.ID())
		if err != nil {
			return errors.Wrapf(err, "gyrometer bias of imu %q", imu.Name())
		}
		imu.GyroBias = bias
	}
	return nil
}

func (o *Observer) removeContact(id int) error {
	contact, err := o.manager.Contacts().At(id)
	if err != nil {
		return err
	}
	if err := o.engine.RemoveContact(id); err != nil {
		return errors.Wrapf(err, "removing contact %q", contact.Name())
	}
	o.listeners.removedContact(contact)
	return nil
}

func (o *Observer) updateFloatingBase() {
	global := o.engine.GlobalKinematicsOf(spatialmath.NewZeroKinematics())
	estimate := FloatingBaseEstimate{Pose: global.Pose()}

	switch o.velocityUpdate {
	case FromUpstream:
		if global.Flags.Has(spatialmath.HasVels) {
			estimate.LinVel, estimate.AngVel = global.LinVel, global.AngVel
			estimate.HasVelocity = true
		}
		if global.Flags.Has(spatialmath.HasAccs) {
			estimate.LinAcc, estimate.AngAcc = global.LinAcc, global.AngAcc
			estimate.HasAcceleration = true
		}
	case FiniteDiff:
		if o.hasFloatingBase {
			previous := o.floatingBase.Pose
			estimate.LinVel = spatialmath.FiniteDiffVel(previous.Position, estimate.Pose.Position, o.dt)
			estimate.AngVel = spatialmath.QuatToAngVel(previous.Rotation(), estimate.Pose.Rotation(), o.dt)
			estimate.HasVelocity = true
		}
	case NoUpdate:
	}
	o.floatingBase = estimate
	o.hasFloatingBase = true
}

// FloatingBase returns the estimate of the last cycle. It is the zero value until the estimation starts.
func (o *Observer) FloatingBase() FloatingBaseEstimate {
	return o.floatingBase
}

// ContactEstimate returns the engine estimate of a set contact.
func (o *Observer) ContactEstimate(id int) (ContactEstimate, error) {
	kinematics, err := o.engine.ContactKinematics(id)
	if err != nil {
		return ContactEstimate{}, err
	}
	wrench, err := o.engine.ContactWrench(id)
	if err != nil {
		return ContactEstimate{}, err
	}
	return ContactEstimate{Kinematics: kinematics, Wrench: wrench}, nil
}

// Started returns whether a contact has been detected since the last reset.
func (o *Observer) Started() bool {
	return o.started
}

// EKFConverged returns whether the engine completed at least one update since the last reset.
func (o *Observer) EKFConverged() bool {
	return o.ekfConverged
}

// IMUs returns the registry of the IMUs, with the gyrometer biases of the last cycle.
func (o *Observer) IMUs() measurements.IMUs {
	return o.imus
}

// ContactsManager returns the manager of the contacts, nil before Configure.
func (o *Observer) ContactsManager() *measurements.ContactsManager {
	return o.manager
}

// AdditionalWrench returns the wrench of the unset contact sensors fed on the last cycle,
// at the floating base origin.
func (o *Observer) AdditionalWrench() spatialmath.Wrench {
	return o.additionalWrench
}

// Debug returns the snapshot of the last updated cycle, nil unless with_debug_logs is set.
func (o *Observer) Debug() *DebugSnapshot {
	return o.debug
}
