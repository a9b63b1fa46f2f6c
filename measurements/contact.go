package measurements

import "go.viam.com/stateobservation/spatialmath"

// Contact holds the per-cycle state shared by both kinds of contacts.
type Contact struct {
	Sensor
	// IsSet is true while the contact is detected during the current cycle.
	IsSet bool
	// WasAlreadySet is true when the contact was also set during the previous cycle.
	WasAlreadySet bool

	surface    string
	hasSurface bool
}

// SurfaceName returns the contact surface, if the contact was created with one.
func (c *Contact) SurfaceName() (string, bool) {
	return c.surface, c.hasSurface
}

// State returns the shared contact state.
func (c *Contact) State() *Contact {
	return c
}

func (c *Contact) reset() {
	c.IsSet = false
	c.WasAlreadySet = false
}

// ContactRecord is implemented only by *ContactWithSensor and *ContactWithoutSensor.
type ContactRecord interface {
	ID() int
	Name() string
	SurfaceName() (string, bool)
	State() *Contact

	reset()
}

// ContactWithSensor is a contact whose wrench is measured by a force sensor.
// Detected by thresholding, it is named after its sensor and has no surface. Created from a
// surface, it is named after the surface so that two surfaces can share one sensor.
type ContactWithSensor struct {
	Contact
	ForceSensorName string
	// SensorEnabled is whether the sensor measurement is used in the correction.
	SensorEnabled bool
	// SensorWasEnabled mirrors the enabled state last acted upon by the observer.
	SensorWasEnabled bool
	// SensorAttachedToSurface is true when the sensor frame is the contact frame.
	SensorAttachedToSurface bool

	// WrenchInCentroid is the measured wrench at the center of mass, refreshed every cycle
	// when the observer logs debug values.
	WrenchInCentroid spatialmath.Wrench
	// ForceNorm is refreshed by every contact detection.
	ForceNorm float64
}

func newContactWithSensor(id int, forceSensor string) *ContactWithSensor {
	return &ContactWithSensor{
		Contact:                 Contact{Sensor: Sensor{id: id, name: forceSensor}},
		ForceSensorName:         forceSensor,
		SensorEnabled:           true,
		SensorAttachedToSurface: true,
	}
}

func newContactWithSensorOnSurface(id int, forceSensor, surface string, attached bool) *ContactWithSensor {
	c := newContactWithSensor(id, forceSensor)
	c.name = surface
	c.surface = surface
	c.hasSurface = true
	c.SensorAttachedToSurface = attached
	return c
}

func (c *ContactWithSensor) reset() {
	c.Contact.reset()
	c.SensorWasEnabled = false
}

// ContactWithoutSensor is a contact asserted by an external source, such as the
// controller's contact solver, with no force sensor. Its surface is its name.
type ContactWithoutSensor struct {
	Contact
}

func newContactWithoutSensor(id int, surface string) *ContactWithoutSensor {
	return &ContactWithoutSensor{Contact{Sensor: Sensor{id: id, name: surface}, surface: surface, hasSurface: true}}
}
