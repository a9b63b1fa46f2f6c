package measurements

import (
	"github.com/pkg/errors"

	"go.viam.com/stateobservation/robot"
)

// GravityConstant is the standard gravity used to turn a mass into a weight, in m/s².
const GravityConstant = 9.81

// ContactDetectionThreshold returns the force above which a contact is considered set: a
// fraction of the robot weight.
func ContactDetectionThreshold(mass, fraction float64) float64 {
	return mass * GravityConstant * fraction
}

// ContactsDetection names a contact detection method.
type ContactsDetection string

// The supported detection methods.
const (
	// FromSurfaces thresholds the forces measured on a configured list of surfaces.
	FromSurfaces ContactsDetection = "fromSurfaces"
	// FromThreshold thresholds the force of every force sensor of the robot.
	FromThreshold ContactsDetection = "fromThreshold"
	// FromSolver takes the contacts of the controller's solver, corroborated by their force.
	FromSolver ContactsDetection = "fromSolver"
)

// ParseContactsDetection parses a detection method. Names are case sensitive.
func ParseContactsDetection(s string) (ContactsDetection, error) {
	switch d := ContactsDetection(s); d {
	case FromSurfaces, FromThreshold, FromSolver:
		return d, nil
	}
	return "", errors.Wrapf(ErrUnknownDetection, "%q, pick among [%s, %s, %s]", s, FromSurfaces, FromThreshold, FromSolver)
}

// Strategy is a contact detection method. Its implementations are selected with
// ContactsDetection when the manager is created.
type Strategy interface {
	Detection() ContactsDetection

	// register adds the contacts known before the first cycle.
	register(m *ContactsManager, r robot.Robot) error
	// find adds the ids of the contacts set during this cycle to found.
	find(m *ContactsManager, r robot.Robot, found ContactSet) error
}

func newStrategy(detection ContactsDetection) (Strategy, error) {
	switch detection {
	case FromSurfaces:
		return surfacesStrategy{}, nil
	case FromThreshold:
		return thresholdStrategy{}, nil
	case FromSolver:
		return solverStrategy{}, nil
	}
	return nil, errors.Wrapf(ErrUnknownDetection, "%q", detection)
}

// thresholdStrategy registers every force sensor as a contact.
type thresholdStrategy struct{}

func (thresholdStrategy) Detection() ContactsDetection {
	return FromThreshold
}

func (thresholdStrategy) register(m *ContactsManager, r robot.Robot) error {
	for _, name := range r.ForceSensors() {
		if _, err := m.contacts.InsertWithSensor(name); err != nil {
			return err
		}
	}
	return nil
}

func (thresholdStrategy) find(m *ContactsManager, r robot.Robot, found ContactSet) error {
	return m.thresholdContactsWithSensors(r, found)
}

// surfacesStrategy registers the configured surfaces, keyed by surface name.
type surfacesStrategy struct{}

func (surfacesStrategy) Detection() ContactsDetection {
	return FromSurfaces
}

func (surfacesStrategy) register(m *ContactsManager, r robot.Robot) error {
	for _, name := range m.cfg.SurfacesForContactDetection {
		surface, err := r.Surface(name)
		if err != nil {
			return err
		}
		if surface.ForceSensor == "" {
			return errors.Errorf("surface %q used for contact detection has no force sensor", name)
		}
		if _, err := m.contacts.InsertWithSensorOnSurface(surface.ForceSensor, name, surface.DirectSensor); err != nil {
			return err
		}
	}
	return nil
}

func (surfacesStrategy) find(m *ContactsManager, r robot.Robot, found ContactSet) error {
	return m.thresholdContactsWithSensors(r, found)
}

// solverStrategy registers the contacts reported by the solver on first sight.
type solverStrategy struct{}

func (solverStrategy) Detection() ContactsDetection {
	return FromSolver
}

func (solverStrategy) register(*ContactsManager, robot.Robot) error {
	return nil
}

func (solverStrategy) find(m *ContactsManager, r robot.Robot, found ContactSet) error {
	for _, name := range r.ContactSurfaces() {
		surface, err := r.Surface(name)
		if err != nil {
			return err
		}
		if surface.ForceSensor == "" {
			contact, err := m.contacts.InsertWithoutSensor(name)
			if err != nil {
				return err
			}
			found.Add(contact.ID())
			continue
		}

		isNew := !m.contacts.Contains(name)
		contact, err := m.contacts.InsertWithSensorOnSurface(surface.ForceSensor, name, surface.DirectSensor)
		if err != nil {
			return err
		}
		if isNew {
			m.applyDisabledInit(contact)
		}
		isSet, err := m.thresholdContact(r, contact)
		if err != nil {
			return err
		}
		if isSet {
			found.Add(contact.ID())
		}
	}
	return nil
}
