package measurements

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Contacts is the registry of contacts with and without sensors. Both kinds share one dense
// id space, and a name keeps the sensor association it was first registered with.
type Contacts struct {
	registry  *Registry[ContactRecord]
	hasSensor map[string]bool
}

// NewContacts returns an empty contact registry.
func NewContacts() *Contacts {
	return &Contacts{registry: NewRegistry[ContactRecord](), hasSensor: map[string]bool{}}
}

// InsertWithSensor registers a contact named after its force sensor, without surface.
func (c *Contacts) InsertWithSensor(forceSensor string) (*ContactWithSensor, error) {
	if existing, ok := c.hasSensor[forceSensor]; ok {
		if !existing {
			return nil, errors.Wrapf(ErrContactKindMismatch, "%q was registered without a sensor", forceSensor)
		}
		return c.WithSensor(forceSensor)
	}
	return c.insert(forceSensor, true, func(id int) ContactRecord {
		return newContactWithSensor(id, forceSensor)
	}).(*ContactWithSensor), nil
}

// InsertWithSensorOnSurface registers a contact named after surface and measured by forceSensor.
func (c *Contacts) InsertWithSensorOnSurface(forceSensor, surface string, attached bool) (*ContactWithSensor, error) {
	if existing, ok := c.hasSensor[surface]; ok {
		if !existing {
			return nil, errors.Wrapf(ErrContactKindMismatch, "%q was registered without a sensor", surface)
		}
		contact, err := c.WithSensor(surface)
		if err != nil {
			return nil, err
		}
		if contact.SensorAttachedToSurface != attached {
			return nil, errors.Wrapf(ErrContactKindMismatch,
				"%q was registered with sensor attached to surface = %t", surface, contact.SensorAttachedToSurface)
		}
		return contact, nil
	}
	return c.insert(surface, true, func(id int) ContactRecord {
		return newContactWithSensorOnSurface(id, forceSensor, surface, attached)
	}).(*ContactWithSensor), nil
}

// InsertWithoutSensor registers a sensorless contact on surface.
func (c *Contacts) InsertWithoutSensor(surface string) (*ContactWithoutSensor, error) {
	if existing, ok := c.hasSensor[surface]; ok {
		if existing {
			return nil, errors.Wrapf(ErrContactKindMismatch, "%q was registered with a sensor", surface)
		}
		return c.WithoutSensor(surface)
	}
	return c.insert(surface, false, func(id int) ContactRecord {
		return newContactWithoutSensor(id, surface)
	}).(*ContactWithoutSensor), nil
}

func (c *Contacts) insert(name string, hasSensor bool, build func(id int) ContactRecord) ContactRecord {
	id, _ := c.registry.Insert(name, build)
	c.hasSensor[name] = hasSensor
	contact, _ := c.registry.At(id)
	return contact
}

// Get returns the contact registered as name.
func (c *Contacts) Get(name string) (ContactRecord, error) {
	contact, err := c.registry.Get(name)
	if err != nil {
		return nil, newNotFoundError("contact", name)
	}
	return contact, nil
}

// At returns the contact registered under id.
func (c *Contacts) At(id int) (ContactRecord, error) {
	contact, err := c.registry.At(id)
	if err != nil {
		return nil, newOutOfRangeError("contact", id, c.registry.Len())
	}
	return contact, nil
}

// WithSensor returns the contact with sensor registered as name.
func (c *Contacts) WithSensor(name string) (*ContactWithSensor, error) {
	contact, err := c.Get(name)
	if err != nil {
		return nil, err
	}
	return asWithSensor(contact)
}

// WithSensorAt returns the contact with sensor registered under id.
func (c *Contacts) WithSensorAt(id int) (*ContactWithSensor, error) {
	contact, err := c.At(id)
	if err != nil {
		return nil, err
	}
	return asWithSensor(contact)
}

// WithoutSensor returns the sensorless contact registered as name.
func (c *Contacts) WithoutSensor(name string) (*ContactWithoutSensor, error) {
	contact, err := c.Get(name)
	if err != nil {
		return nil, err
	}
	return asWithoutSensor(contact)
}

// WithoutSensorAt returns the sensorless contact registered under id.
func (c *Contacts) WithoutSensorAt(id int) (*ContactWithoutSensor, error) {
	contact, err := c.At(id)
	if err != nil {
		return nil, err
	}
	return asWithoutSensor(contact)
}

func asWithSensor(contact ContactRecord) (*ContactWithSensor, error) {
	withSensor, ok := contact.(*ContactWithSensor)
	if !ok {
		return nil, errors.Wrapf(ErrContactKindMismatch, "contact %q has no sensor", contact.Name())
	}
	return withSensor, nil
}

func asWithoutSensor(contact ContactRecord) (*ContactWithoutSensor, error) {
	withoutSensor, ok := contact.(*ContactWithoutSensor)
	if !ok {
		return nil, errors.Wrapf(ErrContactKindMismatch, "contact %q has a sensor", contact.Name())
	}
	return withoutSensor, nil
}

// HasSensor returns whether the contact registered as name is measured by a force sensor.
func (c *Contacts) HasSensor(name string) (bool, error) {
	hasSensor, ok := c.hasSensor[name]
	if !ok {
		return false, newNotFoundError("contact", name)
	}
	return hasSensor, nil
}

// IDOf returns the id of the contact registered as name.
func (c *Contacts) IDOf(name string) (int, error) {
	id, err := c.registry.IDOf(name)
	if err != nil {
		return 0, newNotFoundError("contact", name)
	}
	return id, nil
}

// NameOf returns the name of the contact registered under id.
func (c *Contacts) NameOf(id int) (string, error) {
	name, err := c.registry.NameOf(id)
	if err != nil {
		return "", newOutOfRangeError("contact", id, c.registry.Len())
	}
	return name, nil
}

// Contains returns whether a contact is registered as name.
func (c *Contacts) Contains(name string) bool {
	return c.registry.Contains(name)
}

// Names returns the contact names in id order.
func (c *Contacts) Names() []string {
	return c.registry.Names()
}

// Len returns the number of registered contacts.
func (c *Contacts) Len() int {
	return c.registry.Len()
}

// All returns every contact in id order.
func (c *Contacts) All() []ContactRecord {
	return c.registry.All()
}

// ContactsWithSensors returns the contacts with sensor in id order.
func (c *Contacts) ContactsWithSensors() []*ContactWithSensor {
	return lo.FilterMap(c.registry.All(), func(contact ContactRecord, _ int) (*ContactWithSensor, bool) {
		withSensor, ok := contact.(*ContactWithSensor)
		return withSensor, ok
	})
}

// ContactsWithoutSensors returns the sensorless contacts in id order.
func (c *Contacts) ContactsWithoutSensors() []*ContactWithoutSensor {
	return lo.FilterMap(c.registry.All(), func(contact ContactRecord, _ int) (*ContactWithoutSensor, bool) {
		withoutSensor, ok := contact.(*ContactWithoutSensor)
		return withoutSensor, ok
	})
}
