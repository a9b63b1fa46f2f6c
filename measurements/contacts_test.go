package measurements

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestContactsSharedIDSpace(t *testing.T) {
	contacts := NewContacts()

	rf, err := contacts.InsertWithSensor("RightFootForceSensor")
	test.That(t, err, test.ShouldBeNil)
	lf, err := contacts.InsertWithSensorOnSurface("LeftFootForceSensor", "LeftFoot", true)
	test.That(t, err, test.ShouldBeNil)
	hand, err := contacts.InsertWithoutSensor("RightHand")
	test.That(t, err, test.ShouldBeNil)
	heel, err := contacts.InsertWithSensorOnSurface("LeftFootForceSensor", "LeftHeel", false)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, rf.ID(), test.ShouldEqual, 0)
	test.That(t, lf.ID(), test.ShouldEqual, 1)
	test.That(t, hand.ID(), test.ShouldEqual, 2)
	test.That(t, heel.ID(), test.ShouldEqual, 3)
	test.That(t, cmp.Diff(contacts.Names(), []string{"RightFootForceSensor", "LeftFoot", "RightHand", "LeftHeel"}),
		test.ShouldBeEmpty)

	_, hasSurface := rf.SurfaceName()
	test.That(t, hasSurface, test.ShouldBeFalse)
	test.That(t, rf.SensorEnabled, test.ShouldBeTrue)
	test.That(t, rf.SensorAttachedToSurface, test.ShouldBeTrue)

	surface, hasSurface := heel.SurfaceName()
	test.That(t, hasSurface, test.ShouldBeTrue)
	test.That(t, surface, test.ShouldEqual, "LeftHeel")
	test.That(t, heel.ForceSensorName, test.ShouldEqual, "LeftFootForceSensor")
	test.That(t, heel.SensorAttachedToSurface, test.ShouldBeFalse)

	surface, _ = hand.SurfaceName()
	test.That(t, surface, test.ShouldEqual, "RightHand")

	hasSensor, err := contacts.HasSensor("RightHand")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, hasSensor, test.ShouldBeFalse)
	hasSensor, err = contacts.HasSensor("LeftFoot")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, hasSensor, test.ShouldBeTrue)

	test.That(t, len(contacts.ContactsWithSensors()), test.ShouldEqual, 3)
	test.That(t, len(contacts.ContactsWithoutSensors()), test.ShouldEqual, 1)

	again, err := contacts.InsertWithSensorOnSurface("LeftFootForceSensor", "LeftFoot", true)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, again, test.ShouldEqual, lf)
	test.That(t, contacts.Len(), test.ShouldEqual, 4)
}

func TestContactsNoDoubleInsert(t *testing.T) {
	contacts := NewContacts()
	_, err := contacts.InsertWithSensor("RightFoot")
	test.That(t, err, test.ShouldBeNil)
	_, err = contacts.InsertWithoutSensor("Hand")
	test.That(t, err, test.ShouldBeNil)
	_, err = contacts.InsertWithSensorOnSurface("HeelSensor", "Heel", true)
	test.That(t, err, test.ShouldBeNil)

	namesBefore := contacts.Names()

	_, err = contacts.InsertWithoutSensor("RightFoot")
	test.That(t, errors.Is(err, ErrContactKindMismatch), test.ShouldBeTrue)
	_, err = contacts.InsertWithSensor("Hand")
	test.That(t, errors.Is(err, ErrContactKindMismatch), test.ShouldBeTrue)
	_, err = contacts.InsertWithSensorOnSurface("HandSensor", "Hand", true)
	test.That(t, errors.Is(err, ErrContactKindMismatch), test.ShouldBeTrue)
	_, err = contacts.InsertWithSensorOnSurface("HeelSensor", "Heel", false)
	test.That(t, errors.Is(err, ErrContactKindMismatch), test.ShouldBeTrue)

	test.That(t, cmp.Diff(contacts.Names(), namesBefore), test.ShouldBeEmpty)
	hasSensor, err := contacts.HasSensor("RightFoot")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, hasSensor, test.ShouldBeTrue)
	hasSensor, err = contacts.HasSensor("Hand")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, hasSensor, test.ShouldBeFalse)
	heel, err := contacts.WithSensor("Heel")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, heel.SensorAttachedToSurface, test.ShouldBeTrue)
}

func TestContactsLookups(t *testing.T) {
	contacts := NewContacts()
	_, err := contacts.InsertWithSensor("RightFoot")
	test.That(t, err, test.ShouldBeNil)
	_, err = contacts.InsertWithoutSensor("Hand")
	test.That(t, err, test.ShouldBeNil)

	_, err = contacts.WithoutSensor("RightFoot")
	test.That(t, errors.Is(err, ErrContactKindMismatch), test.ShouldBeTrue)
	_, err = contacts.WithSensorAt(1)
	test.That(t, errors.Is(err, ErrContactKindMismatch), test.ShouldBeTrue)
	hand, err := contacts.WithoutSensorAt(1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, hand.Name(), test.ShouldEqual, "Hand")

	_, err = contacts.Get("Knee")
	test.That(t, errors.Is(err, ErrNotFound), test.ShouldBeTrue)
	_, err = contacts.IDOf("Knee")
	test.That(t, errors.Is(err, ErrNotFound), test.ShouldBeTrue)
	_, err = contacts.HasSensor("Knee")
	test.That(t, errors.Is(err, ErrNotFound), test.ShouldBeTrue)
	_, err = contacts.At(2)
	test.That(t, errors.Is(err, ErrOutOfRange), test.ShouldBeTrue)
	_, err = contacts.NameOf(-1)
	test.That(t, errors.Is(err, ErrOutOfRange), test.ShouldBeTrue)

	record, err := contacts.At(0)
	test.That(t, err, test.ShouldBeNil)
	switch c := record.(type) {
	case *ContactWithSensor:
		test.That(t, c.ForceSensorName, test.ShouldEqual, "RightFoot")
	case *ContactWithoutSensor:
		t.Fatal("expected a contact with sensor")
	}
}

func TestContactReset(t *testing.T) {
	contacts := NewContacts()
	c, err := contacts.InsertWithSensor("RightFoot")
	test.That(t, err, test.ShouldBeNil)
	c.IsSet = true
	c.WasAlreadySet = true
	c.SensorWasEnabled = true
	c.SensorEnabled = false

	var record ContactRecord = c
	record.reset()
	test.That(t, c.IsSet, test.ShouldBeFalse)
	test.That(t, c.WasAlreadySet, test.ShouldBeFalse)
	test.That(t, c.SensorWasEnabled, test.ShouldBeFalse)
	test.That(t, c.SensorEnabled, test.ShouldBeFalse)
}
