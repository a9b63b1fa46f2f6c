package kineticsobserver

import (
	"github.com/pkg/errors"

	"go.viam.com/stateobservation/measurements"
	"go.viam.com/stateobservation/robot"
	"go.viam.com/stateobservation/spatialmath"
)

func (o *Observer) updateContact(measured, control robot.Robot, id int) error {
	contact, err := o.manager.Contacts().At(id)
	if err != nil {
		return err
	}
	switch c := contact.(type) {
	case *measurements.ContactWithSensor:
		return o.updateContactWithSensor(measured, control, c)
	case *measurements.ContactWithoutSensor:
		return o.updateContactWithoutSensor(measured, control, c)
	default:
		return errors.Errorf("unexpected contact type %T", contact)
	}
}

// sensorContactKinematics returns the frame of a contact with sensor in the floating base frame
// of r and the measured wrench expressed in that frame.
func sensorContactKinematics(
	r robot.Robot,
	c *measurements.ContactWithSensor,
) (spatialmath.Kinematics, spatialmath.Wrench, error) {
	sensor, err := r.ForceSensor(c.ForceSensorName)
	if err != nil {
		return spatialmath.Kinematics{}, spatialmath.Wrench{}, err
	}
	if c.SensorAttachedToSurface {
		return sensor.Kinematics, sensor.WrenchWithoutGravity, nil
	}
	surfaceName, _ := c.SurfaceName()
	surface, err := r.Surface(surfaceName)
	if err != nil {
		return spatialmath.Kinematics{}, spatialmath.Wrench{}, err
	}
	sensorInSurface := surface.Kinematics.Inverse().Compose(sensor.Kinematics)
	return surface.Kinematics, sensor.WrenchWithoutGravity.Transform(sensorInSurface), nil
}

func (o *Observer) updateContactWithSensor(measured, control robot.Robot, c *measurements.ContactWithSensor) error {
	local, wrench, err := sensorContactKinematics(measured, c)
	if err != nil {
		return err
	}

	if c.WasAlreadySet {
		if err := o.correctWithSensor(c, wrench, local); err != nil {
			return err
		}
		o.listeners.maintainedContact(c)
		return nil
	}

	var reference spatialmath.Kinematics
	if o.odometry.WithOdometry() {
		world := o.engine.GlobalKinematicsOf(local)
		if reference, err = o.model.ReferenceKinematics(world, wrench); err != nil {
			return errors.Wrapf(err, "reference of contact %q", c.Name())
		}
		if o.odometry.Flat() {
			controlLocal, _, err := sensorContactKinematics(control, c)
			if err != nil {
				return err
			}
			reference.Position.Z = robot.WorldKinematicsOf(control, controlLocal).Position.Z
		}
		if !c.SensorEnabled {
			o.logger.Infow("contact sensor used for odometry but not for the correction", "contact", c.Name())
		}
	} else {
		controlLocal, _, err := sensorContactKinematics(control, c)
		if err != nil {
			return err
		}
		reference = robot.WorldKinematicsOf(control, controlLocal).Pose()
	}

	if err := o.addContact(c, reference); err != nil {
		return err
	}
	return o.correctWithSensor(c, wrench, local)
}

// correctWithSensor updates a set contact with its measured wrench while its sensor is enabled.
func (o *Observer) correctWithSensor(c *measurements.ContactWithSensor, wrench spatialmath.Wrench, local spatialmath.Kinematics) error {
	if c.SensorEnabled {
		if err := o.engine.UpdateContactWithWrenchSensor(wrench, o.cfg.ContactSensorCovariance(), local, c.ID()); err != nil {
			return errors.Wrapf(err, "updating contact %q", c.Name())
		}
		if !c.SensorWasEnabled {
			c.SensorWasEnabled = true
			o.listeners.sensorEnabledChange(c, true)
		}
		return nil
	}
	if err := o.engine.UpdateContactWithNoSensor(local, c.ID()); err != nil {
		return errors.Wrapf(err, "updating contact %q", c.Name())
	}
	if c.SensorWasEnabled {
		c.SensorWasEnabled = false
		o.listeners.sensorEnabledChange(c, false)
	}
	return nil
}

func (o *Observer) updateContactWithoutSensor(measured, control robot.Robot, c *measurements.ContactWithoutSensor) error {
	surface, err := measured.Surface(c.Name())
	if err != nil {
		return err
	}
	local := surface.Kinematics

	if !c.WasAlreadySet {
		controlSurface, err := control.Surface(c.Name())
		if err != nil {
			return err
		}
		controlWorld := robot.WorldKinematicsOf(control, controlSurface.Kinematics).Pose()
		reference := controlWorld
		if o.odometry.WithOdometry() {
			// without a wrench the contact is taken at rest where it is estimated
			reference = o.engine.GlobalKinematicsOf(local).Pose()
			if o.odometry.Flat() {
				reference.Position.Z = controlWorld.Position.Z
			}
		}
		if err := o.addContact(c, reference); err != nil {
			return err
		}
	}

	if err := o.engine.UpdateContactWithNoSensor(local, c.ID()); err != nil {
		return errors.Wrapf(err, "updating contact %q", c.Name())
	}
	if c.WasAlreadySet {
		o.listeners.maintainedContact(c)
	}
	return nil
}

// addContact adds a contact to the engine with the initial covariance of the first contacts
// when no other contact is set.
func (o *Observer) addContact(c measurements.ContactRecord, reference spatialmath.Kinematics) error {
	initCov := o.cfg.FirstContactsInitCovariance()
	if o.engine.NumberOfSetContacts() > 0 {
		initCov = o.cfg.NewContactsInitCovariance()
	}
	if err := o.engine.AddContact(reference, initCov, o.cfg.ContactProcessCovariance(), c.ID(), o.model); err != nil {
		return errors.Wrapf(err, "adding contact %q", c.Name())
	}
	o.listeners.newContact(c)
	return nil
}
