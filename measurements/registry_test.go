package measurements

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestRegistryIdentityStability(t *testing.T) {
	imus := NewIMUs()
	names := []string{"Accelerometer", "Gyro", "Accelerometer", "BackIMU", "Gyro", "Gyro"}
	ids := map[string]int{}
	for _, name := range names {
		id := imus.InsertIMU(name)
		if first, ok := ids[name]; ok {
			test.That(t, id, test.ShouldEqual, first)
		}
		ids[name] = id
	}
	test.That(t, imus.Len(), test.ShouldEqual, 3)
	test.That(t, cmp.Diff(imus.Names(), []string{"Accelerometer", "Gyro", "BackIMU"}), test.ShouldBeEmpty)

	for i, name := range imus.Names() {
		id, err := imus.IDOf(name)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, id, test.ShouldEqual, i)

		got, err := imus.NameOf(i)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldEqual, name)
	}

	imu, err := imus.Get("BackIMU")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, imu.ID(), test.ShouldEqual, 2)
	test.That(t, imu.GyroBias, test.ShouldResemble, r3.Vector{})
}

func TestRegistryLookupErrors(t *testing.T) {
	r := NewRegistry[*IMU]()
	r.Insert("imu", func(id int) *IMU { return NewIMU(id, "imu") })

	_, err := r.IDOf("missing")
	test.That(t, errors.Is(err, ErrNotFound), test.ShouldBeTrue)
	_, err = r.Get("missing")
	test.That(t, errors.Is(err, ErrNotFound), test.ShouldBeTrue)

	for _, id := range []int{-1, 1, 5} {
		_, err = r.NameOf(id)
		test.That(t, errors.Is(err, ErrOutOfRange), test.ShouldBeTrue)
		_, err = r.At(id)
		test.That(t, errors.Is(err, ErrOutOfRange), test.ShouldBeTrue)
	}
	test.That(t, r.Contains("imu"), test.ShouldBeTrue)
	test.That(t, r.Contains("missing"), test.ShouldBeFalse)
}

func TestRegistryInsertIsIdempotent(t *testing.T) {
	r := NewRegistry[*IMU]()
	builds := 0
	build := func(id int) *IMU {
		builds++
		return NewIMU(id, "imu")
	}
	id, inserted := r.Insert("imu", build)
	test.That(t, id, test.ShouldEqual, 0)
	test.That(t, inserted, test.ShouldBeTrue)
	id, inserted = r.Insert("imu", build)
	test.That(t, id, test.ShouldEqual, 0)
	test.That(t, inserted, test.ShouldBeFalse)
	test.That(t, builds, test.ShouldEqual, 1)
	test.That(t, len(r.All()), test.ShouldEqual, 1)
}
