package measurements

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/stateobservation/logging"
	"go.viam.com/stateobservation/robot"
)

// ContactsManagerConfig configures a ContactsManager.
type ContactsManagerConfig struct {
	Detection ContactsDetection
	// SurfacesForContactDetection is required by FromSurfaces.
	SurfacesForContactDetection []string
	// ContactSensorsDisabledInit lists the contacts, by contact or sensor name, whose sensor
	// is not used in the correction from the start.
	ContactSensorsDisabledInit []string
	// ContactDetectionThreshold is the force norm, in N, above which a contact is set.
	ContactDetectionThreshold float64
	Verbose                   bool
}

// ContactsManager detects on every cycle which contacts are set and diffs them against the
// previous cycle. It owns the contact registry. It is not safe for concurrent use.
type ContactsManager struct {
	cfg      ContactsManagerConfig
	strategy Strategy
	contacts *Contacts
	logger   logging.Logger

	found   ContactSet
	old     ContactSet
	removed ContactSet
}

// NewContactsManager validates cfg and returns a manager with an empty registry.
func NewContactsManager(cfg ContactsManagerConfig, logger logging.Logger) (*ContactsManager, error) {
	strategy, err := newStrategy(cfg.Detection)
	if err != nil {
		return nil, err
	}
	if cfg.Detection == FromSurfaces && len(cfg.SurfacesForContactDetection) == 0 {
		return nil, errors.Errorf("contacts detection %s requires at least one surface", FromSurfaces)
	}
	if math.IsNaN(cfg.ContactDetectionThreshold) || cfg.ContactDetectionThreshold < 0 {
		return nil, errors.Errorf("invalid contact detection threshold %v", cfg.ContactDetectionThreshold)
	}
	return &ContactsManager{
		cfg:      cfg,
		strategy: strategy,
		contacts: NewContacts(),
		logger:   logger,
		found:    NewContactSet(),
		old:      NewContactSet(),
		removed:  NewContactSet(),
	}, nil
}

// Init registers the contacts known before the first cycle and disables the sensors listed
// in ContactSensorsDisabledInit.
func (m *ContactsManager) Init(r robot.Robot) error {
	if err := m.strategy.register(m, r); err != nil {
		return errors.Wrapf(err, "initializing %s contacts detection", m.strategy.Detection())
	}

	for _, name := range m.cfg.ContactSensorsDisabledInit {
		matched := lo.Filter(m.contacts.ContactsWithSensors(), func(c *ContactWithSensor, _ int) bool {
			return c.Name() == name || c.ForceSensorName == name
		})
		for _, c := range matched {
			c.SensorEnabled = false
		}
		if len(matched) == 0 && m.strategy.Detection() != FromSolver {
			m.logger.Warnw("sensor disabled at start matches no contact", "name", name)
		}
	}

	if m.cfg.Verbose {
		m.logger.Infow("contacts registered",
			"detection", m.strategy.Detection(),
			"contacts", m.contacts.Names(),
			"threshold", m.cfg.ContactDetectionThreshold)
	}
	return nil
}

func (m *ContactsManager) applyDisabledInit(c *ContactWithSensor) {
	if slices.Contains(m.cfg.ContactSensorsDisabledInit, c.Name()) ||
		slices.Contains(m.cfg.ContactSensorsDisabledInit, c.ForceSensorName) {
		c.SensorEnabled = false
	}
}

// thresholdContact refreshes the measured force norm of c and compares it with the threshold.
// A force exactly at the threshold does not set the contact.
func (m *ContactsManager) thresholdContact(r robot.Robot, c *ContactWithSensor) (bool, error) {
	fs, err := r.ForceSensor(c.ForceSensorName)
	if err != nil {
		return false, err
	}
	c.ForceNorm = fs.WrenchWithoutGravity.Force.Norm()
	return c.ForceNorm > m.cfg.ContactDetectionThreshold, nil
}

func (m *ContactsManager) thresholdContactsWithSensors(r robot.Robot, found ContactSet) error {
	for _, c := range m.contacts.ContactsWithSensors() {
		isSet, err := m.thresholdContact(r, c)
		if err != nil {
			return err
		}
		if isSet {
			found.Add(c.ID())
		}
	}
	return nil
}

// FindContacts runs the detection for the current cycle and returns the ids of the set contacts.
func (m *ContactsManager) FindContacts(r robot.Robot) (ContactSet, error) {
	found := NewContactSet()
	if err := m.strategy.find(m, r, found); err != nil {
		return nil, errors.Wrapf(err, "finding contacts with %s", m.strategy.Detection())
	}
	m.found = found
	m.updateContacts()
	return m.found.Clone(), nil
}

// updateContacts diffs the found contacts against the previous cycle and updates their states.
func (m *ContactsManager) updateContacts() {
	m.removed = m.old.Difference(m.found)
	for _, id := range m.removed.Sorted() {
		if c, err := m.contacts.At(id); err == nil {
			c.reset()
			if m.cfg.Verbose {
				m.logger.Infow("contact removed", "contact", c.Name())
			}
		}
	}
	for _, id := range m.found.Sorted() {
		c, err := m.contacts.At(id)
		if err != nil {
			continue
		}
		state := c.State()
		state.WasAlreadySet = state.IsSet
		state.IsSet = true
		if m.cfg.Verbose && !state.WasAlreadySet {
			m.logger.Infow("contact set", "contact", c.Name())
		}
	}
	m.old = m.found.Clone()
}

// ContactsFound returns the ids of the contacts set during the last cycle.
func (m *ContactsManager) ContactsFound() ContactSet {
	return m.found.Clone()
}

// RemovedContacts returns the ids of the contacts set during the cycle before the last one
// but not during the last one.
func (m *ContactsManager) RemovedContacts() ContactSet {
	return m.removed.Clone()
}

// OldContacts returns the found set kept for the next diff.
func (m *ContactsManager) OldContacts() ContactSet {
	return m.old.Clone()
}

// Contacts returns the contact registry.
func (m *ContactsManager) Contacts() *Contacts {
	return m.contacts
}

// Strategy returns the detection strategy selected at creation.
func (m *ContactsManager) Strategy() Strategy {
	return m.strategy
}

// Threshold returns the contact detection threshold in N.
func (m *ContactsManager) Threshold() float64 {
	return m.cfg.ContactDetectionThreshold
}

// ContactsByForce returns the set contacts with sensor by decreasing measured force.
// Exact ties keep the earlier registered contact first.
func (m *ContactsManager) ContactsByForce() []*ContactWithSensor {
	set := lo.Filter(m.contacts.ContactsWithSensors(), func(c *ContactWithSensor, _ int) bool {
		return c.IsSet
	})
	slices.SortStableFunc(set, func(a, b *ContactWithSensor) int {
		return cmp.Compare(b.ForceNorm, a.ForceNorm)
	})
	return set
}

// FormatSet returns the names of the contacts of set, in id order, separated by commas.
func (m *ContactsManager) FormatSet(set ContactSet) string {
	return strings.Join(lo.Map(set.Sorted(), func(id int, _ int) string {
		name, err := m.contacts.NameOf(id)
		if err != nil {
			return "#" + strconv.Itoa(id)
		}
		return name
	}), ", ")
}
