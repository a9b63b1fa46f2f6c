package kineticsobserver

import "go.viam.com/stateobservation/measurements"

// A ContactListener is notified of the contact changes applied to the engine, synchronously
// and right after the engine call they mirror. Any field may be nil. Listeners must not block.
type ContactListener struct {
	// OnNewContact is called once a contact has been added to the engine.
	OnNewContact func(contact measurements.ContactRecord)
	// OnMaintainedContact is called once a contact set on the previous cycle has been updated.
	OnMaintainedContact func(contact measurements.ContactRecord)
	// OnRemovedContact is called once a contact has been removed from the engine.
	OnRemovedContact func(contact measurements.ContactRecord)
	// OnSensorEnabledChange is called when the observer starts or stops using the sensor of
	// a set contact in the correction.
	OnSensorEnabledChange func(contact *measurements.ContactWithSensor, enabled bool)
}

type listeners []ContactListener

func (ls listeners) newContact(c measurements.ContactRecord) {
	for _, l := range ls {
		if l.OnNewContact != nil {
			l.OnNewContact(c)
		}
	}
}

func (ls listeners) maintainedContact(c measurements.ContactRecord) {
	for _, l := range ls {
		if l.OnMaintainedContact != nil {
			l.OnMaintainedContact(c)
		}
	}
}

func (ls listeners) removedContact(c measurements.ContactRecord) {
	for _, l := range ls {
		if l.OnRemovedContact != nil {
			l.OnRemovedContact(c)
		}
	}
}

func (ls listeners) sensorEnabledChange(c *measurements.ContactWithSensor, enabled bool) {
	for _, l := range ls {
		if l.OnSensorEnabledChange != nil {
			l.OnSensorEnabledChange(c, enabled)
		}
	}
}
