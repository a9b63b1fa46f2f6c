package main

import (
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"go.viam.com/stateobservation/robot"
	"go.viam.com/stateobservation/robot/fake"
	"go.viam.com/stateobservation/spatialmath"
)

// trace is a recorded run: the robot description, the observer attributes and the readings
// of every cycle.
type trace struct {
	DT       float64                `yaml:"dt"`
	Robot    robotSpec              `yaml:"robot"`
	Observer map[string]interface{} `yaml:"observer"`
	Cycles   []cycleSpec            `yaml:"cycles"`
}

// frameSpec is a frame in the floating base frame. Rotation is a rotation vector in radians.
type frameSpec struct {
	Position []float64 `yaml:"position"`
	Rotation []float64 `yaml:"rotation"`
}

type forceSensorSpec struct {
	Name       string    `yaml:"name"`
	ParentBody string    `yaml:"parent_body"`
	Frame      frameSpec `yaml:",inline"`
}

type surfaceSpec struct {
	Name         string    `yaml:"name"`
	ForceSensor  string    `yaml:"force_sensor"`
	DirectSensor bool      `yaml:"direct_sensor"`
	Frame        frameSpec `yaml:",inline"`
}

type imuSpec struct {
	Name  string    `yaml:"name"`
	Frame frameSpec `yaml:",inline"`
}

type robotSpec struct {
	Name         string            `yaml:"name"`
	Mass         float64           `yaml:"mass"`
	CenterOfMass []float64         `yaml:"center_of_mass"`
	ForceSensors []forceSensorSpec `yaml:"force_sensors"`
	Surfaces     []surfaceSpec     `yaml:"surfaces"`
	IMUs         []imuSpec         `yaml:"imus"`
}

type imuReading struct {
	Acc  []float64 `yaml:"acc"`
	Gyro []float64 `yaml:"gyro"`
}

// cycleSpec holds the readings of a cycle. Sensors missing from Forces and Torques read zero.
type cycleSpec struct {
	// Repeat replays the cycle this many times, at least once.
	Repeat          int                   `yaml:"repeat"`
	Forces          map[string][]float64  `yaml:"forces"`
	Torques         map[string][]float64  `yaml:"torques"`
	IMUs            map[string]imuReading `yaml:"imus"`
	ContactSurfaces []string              `yaml:"contact_surfaces"`
}

func readTrace(path string) (*trace, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading trace")
	}
	var tr trace
	if err := yaml.Unmarshal(data, &tr); err != nil {
		return nil, errors.Wrapf(err, "decoding trace %q", path)
	}
	if tr.DT <= 0 {
		return nil, errors.Errorf("trace %q: dt must be positive, got %v", path, tr.DT)
	}
	if tr.Robot.Mass <= 0 {
		return nil, errors.Errorf("trace %q: robot mass must be positive, got %v", path, tr.Robot.Mass)
	}
	return &tr, nil
}

func toVector(what string, v []float64) (r3.Vector, error) {
	switch len(v) {
	case 0:
		return r3.Vector{}, nil
	case 3:
		return r3.Vector{X: v[0], Y: v[1], Z: v[2]}, nil
	default:
		return r3.Vector{}, errors.Errorf("%s must have 3 values, got %d", what, len(v))
	}
}

func (f frameSpec) kinematics(what string) (spatialmath.Kinematics, error) {
	position, err := toVector(what+" position", f.Position)
	if err != nil {
		return spatialmath.Kinematics{}, err
	}
	rotation, err := toVector(what+" rotation", f.Rotation)
	if err != nil {
		return spatialmath.Kinematics{}, err
	}
	return spatialmath.NewPoseKinematics(position, spatialmath.RotationVectorToQuat(rotation)), nil
}

func (s robotSpec) build() (*fake.Robot, error) {
	r := fake.NewRobot(s.Name, s.Mass)
	com, err := toVector("center of mass", s.CenterOfMass)
	if err != nil {
		return nil, err
	}
	r.SetCenterOfMass(spatialmath.Kinematics{
		Position:    com,
		Orientation: spatialmath.NewZeroOrientation(),
		Flags:       spatialmath.HasAll,
	})

	for _, fs := range s.ForceSensors {
		k, err := fs.Frame.kinematics(fs.Name)
		if err != nil {
			return nil, err
		}
		r.AddForceSensor(robot.ForceSensor{Name: fs.Name, ParentBody: fs.ParentBody, Kinematics: k})
	}
	for _, surface := range s.Surfaces {
		k, err := surface.Frame.kinematics(surface.Name)
		if err != nil {
			return nil, err
		}
		r.AddSurface(robot.Surface{
			Name:         surface.Name,
			ForceSensor:  surface.ForceSensor,
			DirectSensor: surface.DirectSensor,
			Kinematics:   k,
		})
	}
	for _, imu := range s.IMUs {
		k, err := imu.Frame.kinematics(imu.Name)
		if err != nil {
			return nil, err
		}
		r.AddIMU(robot.IMU{Name: imu.Name, Kinematics: k})
	}
	return r, nil
}

// apply sets the readings of the cycle on r.
func (c cycleSpec) apply(r *fake.Robot) error {
	for name := range c.Forces {
		if _, err := r.ForceSensor(name); err != nil {
			return err
		}
	}
	for name := range c.Torques {
		if _, err := r.ForceSensor(name); err != nil {
			return err
		}
	}
	for _, name := range r.ForceSensors() {
		force, err := toVector(name+" force", c.Forces[name])
		if err != nil {
			return err
		}
		torque, err := toVector(name+" torque", c.Torques[name])
		if err != nil {
			return err
		}
		if err := r.SetWrench(name, spatialmath.Wrench{Force: force, Torque: torque}); err != nil {
			return err
		}
	}
	for name, reading := range c.IMUs {
		acc, err := toVector(name+" acc", reading.Acc)
		if err != nil {
			return err
		}
		gyro, err := toVector(name+" gyro", reading.Gyro)
		if err != nil {
			return err
		}
		if err := r.SetIMUReading(name, acc, gyro); err != nil {
			return err
		}
	}
	r.SetContactSurfaces(c.ContactSurfaces...)
	return nil
}
