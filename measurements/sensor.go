// Package measurements keeps the registries of IMUs and contacts used by the observers and
// tracks, cycle after cycle, which contacts are set.
package measurements

import "github.com/golang/geo/r3"

// Sensor is the identity shared by every registered measurement: a dense id assigned at
// registration and a unique name. Neither changes afterwards.
type Sensor struct {
	id   int
	name string
}

// ID returns the insertion index of the sensor.
func (s *Sensor) ID() int {
	return s.id
}

// Name returns the sensor name.
func (s *Sensor) Name() string {
	return s.name
}

// IMU is a registered inertial measurement unit.
type IMU struct {
	Sensor
	// GyroBias is the gyrometer bias in the IMU frame, updated by the observer every cycle
	// when the bias is estimated.
	GyroBias r3.Vector
}

// NewIMU returns an IMU with a zero gyrometer bias.
func NewIMU(id int, name string) *IMU {
	return &IMU{Sensor: Sensor{id: id, name: name}}
}

// IMUs is the registry of the IMUs used by an observer.
type IMUs struct {
	*Registry[*IMU]
}

// NewIMUs returns an empty IMU registry.
func NewIMUs() IMUs {
	return IMUs{NewRegistry[*IMU]()}
}

// InsertIMU registers an IMU if it is not known yet and returns its id.
func (imus IMUs) InsertIMU(name string) int {
	id, _ := imus.Insert(name, func(id int) *IMU { return NewIMU(id, name) })
	return id
}
