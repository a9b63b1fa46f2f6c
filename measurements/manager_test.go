package measurements

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/stateobservation/logging"
	"go.viam.com/stateobservation/robot"
	"go.viam.com/stateobservation/robot/fake"
)

func newThresholdManager(t *testing.T, r *fake.Robot, fraction float64) *ContactsManager {
	t.Helper()
	m, err := NewContactsManager(ContactsManagerConfig{
		Detection:                 FromThreshold,
		ContactDetectionThreshold: ContactDetectionThreshold(r.Mass(), fraction),
	}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Init(r), test.ShouldBeNil)
	return m
}

func TestContactLifecycle(t *testing.T) {
	r := fake.NewRobot("hrp", 50)
	r.AddForceSensor(robot.ForceSensor{Name: "RightFoot"})
	m := newThresholdManager(t, r, 0.05)
	test.That(t, m.Threshold(), test.ShouldAlmostEqual, 24.525)

	forces := []float64{10, 10, 10, 30, 30, 30, 30, 30, 5, 5}
	for i, fz := range forces {
		cycle := i + 1
		test.That(t, r.SetForce("RightFoot", r3.Vector{Z: fz}), test.ShouldBeNil)
		found, err := m.FindContacts(r)
		test.That(t, err, test.ShouldBeNil)
		contact, err := m.Contacts().WithSensor("RightFoot")
		test.That(t, err, test.ShouldBeNil)

		switch {
		case cycle <= 3:
			test.That(t, found.Len(), test.ShouldEqual, 0)
			test.That(t, m.RemovedContacts().Len(), test.ShouldEqual, 0)
		case cycle <= 8:
			test.That(t, found.Equal(NewContactSet(contact.ID())), test.ShouldBeTrue)
			test.That(t, contact.IsSet, test.ShouldBeTrue)
			test.That(t, contact.WasAlreadySet, test.ShouldEqual, cycle > 4)
			test.That(t, m.RemovedContacts().Len(), test.ShouldEqual, 0)
		case cycle == 9:
			test.That(t, found.Len(), test.ShouldEqual, 0)
			test.That(t, m.RemovedContacts().Equal(NewContactSet(contact.ID())), test.ShouldBeTrue)
			test.That(t, contact.IsSet, test.ShouldBeFalse)
			test.That(t, contact.WasAlreadySet, test.ShouldBeFalse)
		default:
			test.That(t, found.Len(), test.ShouldEqual, 0)
			test.That(t, m.RemovedContacts().Len(), test.ShouldEqual, 0)
		}
		test.That(t, m.OldContacts().Equal(found), test.ShouldBeTrue)
		test.That(t, contact.ForceNorm, test.ShouldAlmostEqual, fz)
	}
}

func TestThresholdBoundary(t *testing.T) {
	r := fake.NewRobot("hrp", 50)
	r.AddForceSensor(robot.ForceSensor{Name: "RightFoot"})
	m := newThresholdManager(t, r, 0.05)

	test.That(t, r.SetForce("RightFoot", r3.Vector{Z: m.Threshold()}), test.ShouldBeNil)
	found, err := m.FindContacts(r)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, found.Len(), test.ShouldEqual, 0)

	test.That(t, r.SetForce("RightFoot", r3.Vector{Z: math.Nextafter(m.Threshold(), math.Inf(1))}), test.ShouldBeNil)
	found, err = m.FindContacts(r)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, found.Len(), test.ShouldEqual, 1)
}

func TestDiffCorrectness(t *testing.T) {
	r := fake.NewRobot("hrp", 10)
	sensors := []string{"RightFoot", "LeftFoot", "RightHand", "LeftHand"}
	for _, name := range sensors {
		r.AddForceSensor(robot.ForceSensor{Name: name})
	}
	m := newThresholdManager(t, r, 0.1)

	// bit i of a pattern sets sensor i above threshold
	patterns := []int{0b0000, 0b0011, 0b0110, 0b0110, 0b1001, 0b1111, 0b0000, 0b0100}
	previous := NewContactSet()
	for _, pattern := range patterns {
		for i, name := range sensors {
			force := 1.0
			if pattern&(1<<i) != 0 {
				force = 100
			}
			test.That(t, r.SetForce(name, r3.Vector{X: force}), test.ShouldBeNil)
		}
		found, err := m.FindContacts(r)
		test.That(t, err, test.ShouldBeNil)

		removed := m.RemovedContacts()
		test.That(t, removed.Equal(previous.Difference(found)), test.ShouldBeTrue)
		for _, id := range removed.Sorted() {
			test.That(t, found.Contains(id), test.ShouldBeFalse)
		}
		for _, c := range m.Contacts().ContactsWithSensors() {
			test.That(t, c.IsSet, test.ShouldEqual, found.Contains(c.ID()))
			test.That(t, c.WasAlreadySet, test.ShouldEqual, found.Contains(c.ID()) && previous.Contains(c.ID()))
		}
		previous = found
	}
}

func TestFromSurfaces(t *testing.T) {
	r := fake.NewRobot("hrp", 50)
	r.AddForceSensor(robot.ForceSensor{Name: "LeftFootForceSensor"})
	r.AddSurface(robot.Surface{Name: "LeftFoot", ForceSensor: "LeftFootForceSensor", DirectSensor: true})
	r.AddSurface(robot.Surface{Name: "LeftFootToe", ForceSensor: "LeftFootForceSensor"})
	r.AddSurface(robot.Surface{Name: "Chest"})

	logger, logs := logging.NewObservedTestLogger(t)
	m, err := NewContactsManager(ContactsManagerConfig{
		Detection:                   FromSurfaces,
		SurfacesForContactDetection: []string{"LeftFoot", "LeftFootToe"},
		ContactSensorsDisabledInit:  []string{"LeftFootToe", "Knee"},
		ContactDetectionThreshold:   ContactDetectionThreshold(r.Mass(), 0.05),
	}, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Init(r), test.ShouldBeNil)
	test.That(t, logs.FilterMessage("sensor disabled at start matches no contact").Len(), test.ShouldEqual, 1)

	test.That(t, cmp.Diff(m.Contacts().Names(), []string{"LeftFoot", "LeftFootToe"}), test.ShouldBeEmpty)
	foot, err := m.Contacts().WithSensor("LeftFoot")
	test.That(t, err, test.ShouldBeNil)
	toe, err := m.Contacts().WithSensor("LeftFootToe")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, foot.SensorEnabled, test.ShouldBeTrue)
	test.That(t, toe.SensorEnabled, test.ShouldBeFalse)
	test.That(t, toe.SensorAttachedToSurface, test.ShouldBeFalse)

	test.That(t, r.SetForce("LeftFootForceSensor", r3.Vector{Z: 300}), test.ShouldBeNil)
	found, err := m.FindContacts(r)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cmp.Diff(found.Sorted(), []int{0, 1}), test.ShouldBeEmpty)
	test.That(t, m.FormatSet(found), test.ShouldEqual, "LeftFoot, LeftFootToe")
	test.That(t, m.FormatSet(NewContactSet(7)), test.ShouldEqual, "#7")

	t.Run("missing surface", func(t *testing.T) {
		m, err := NewContactsManager(ContactsManagerConfig{
			Detection:                   FromSurfaces,
			SurfacesForContactDetection: []string{"RightFoot"},
		}, logging.NewTestLogger(t))
		test.That(t, err, test.ShouldBeNil)
		err = m.Init(r)
		test.That(t, errors.Is(err, robot.ErrNotFound), test.ShouldBeTrue)
	})
	t.Run("surface without sensor", func(t *testing.T) {
		m, err := NewContactsManager(ContactsManagerConfig{
			Detection:                   FromSurfaces,
			SurfacesForContactDetection: []string{"Chest"},
		}, logging.NewTestLogger(t))
		test.That(t, err, test.ShouldBeNil)
		err = m.Init(r)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "Chest")
	})
	t.Run("no surfaces", func(t *testing.T) {
		_, err := NewContactsManager(ContactsManagerConfig{Detection: FromSurfaces}, logging.NewTestLogger(t))
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestFromSolver(t *testing.T) {
	r := fake.NewRobot("hrp", 50)
	r.AddForceSensor(robot.ForceSensor{Name: "RightFootForceSensor"})
	r.AddSurface(robot.Surface{Name: "RightFoot", ForceSensor: "RightFootForceSensor", DirectSensor: true})
	r.AddSurface(robot.Surface{Name: "RightHand"})

	m, err := NewContactsManager(ContactsManagerConfig{
		Detection:                  FromSolver,
		ContactSensorsDisabledInit: []string{"RightFoot"},
		ContactDetectionThreshold:  ContactDetectionThreshold(r.Mass(), 0.05),
	}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Init(r), test.ShouldBeNil)
	test.That(t, m.Contacts().Len(), test.ShouldEqual, 0)

	r.SetContactSurfaces("RightFoot", "RightHand")
	test.That(t, r.SetForce("RightFootForceSensor", r3.Vector{Z: 5}), test.ShouldBeNil)
	found, err := m.FindContacts(r)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cmp.Diff(m.Contacts().Names(), []string{"RightFoot", "RightHand"}), test.ShouldBeEmpty)
	// the foot is reported by the solver but its force does not corroborate it
	test.That(t, m.FormatSet(found), test.ShouldEqual, "RightHand")

	foot, err := m.Contacts().WithSensor("RightFoot")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, foot.SensorEnabled, test.ShouldBeFalse)
	hasSensor, err := m.Contacts().HasSensor("RightHand")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, hasSensor, test.ShouldBeFalse)

	test.That(t, r.SetForce("RightFootForceSensor", r3.Vector{Z: 400}), test.ShouldBeNil)
	found, err = m.FindContacts(r)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.FormatSet(found), test.ShouldEqual, "RightFoot, RightHand")

	r.SetContactSurfaces("RightFoot")
	found, err = m.FindContacts(r)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.FormatSet(found), test.ShouldEqual, "RightFoot")
	test.That(t, m.FormatSet(m.RemovedContacts()), test.ShouldEqual, "RightHand")

	r.SetContactSurfaces("Knee")
	_, err = m.FindContacts(r)
	test.That(t, errors.Is(err, robot.ErrNotFound), test.ShouldBeTrue)
}

func TestContactsByForce(t *testing.T) {
	r := fake.NewRobot("hrp", 10)
	for _, name := range []string{"A", "B", "C", "D"} {
		r.AddForceSensor(robot.ForceSensor{Name: name})
	}
	m := newThresholdManager(t, r, 0.1)
	for name, fz := range map[string]float64{"A": 50, "B": 80, "C": 50, "D": 1} {
		test.That(t, r.SetForce(name, r3.Vector{Z: fz}), test.ShouldBeNil)
	}
	_, err := m.FindContacts(r)
	test.That(t, err, test.ShouldBeNil)

	var names []string
	for _, c := range m.ContactsByForce() {
		names = append(names, c.Name())
	}
	test.That(t, cmp.Diff(names, []string{"B", "A", "C"}), test.ShouldBeEmpty)
}

func TestParseContactsDetection(t *testing.T) {
	for _, name := range []string{"fromSurfaces", "fromThreshold", "fromSolver"} {
		d, err := ParseContactsDetection(name)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, string(d), test.ShouldEqual, name)
	}
	for _, name := range []string{"fromthreshold", "FromSolver", ""} {
		_, err := ParseContactsDetection(name)
		test.That(t, errors.Is(err, ErrUnknownDetection), test.ShouldBeTrue)
	}

	_, err := NewContactsManager(ContactsManagerConfig{Detection: "fromForces"}, logging.NewTestLogger(t))
	test.That(t, errors.Is(err, ErrUnknownDetection), test.ShouldBeTrue)
	_, err = NewContactsManager(ContactsManagerConfig{Detection: FromThreshold, ContactDetectionThreshold: -1},
		logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
}
