package kineticsobserver

import (
	"math"

	"github.com/go-viper/mapstructure/v2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/stateobservation/measurements"
	"go.viam.com/stateobservation/spatialmath"
)

// Config configures an Observer. Every 3-vector is the diagonal of a 3x3 matrix.
type Config struct {
	ContactsDetection             string   `json:"contacts_detection"`
	ContactDetectionPropThreshold float64  `json:"contact_detection_prop_threshold"`
	SurfacesForContactDetection   []string `json:"surfaces_for_contact_detection,omitempty"`
	ContactsSensorDisabledInit    []string `json:"contacts_sensor_disabled_init,omitempty"`
	IMUSensors                    []string `json:"imu_sensors,omitempty"`

	OdometryType   string `json:"odometry_type"`
	VelocityUpdate string `json:"velocity_update,omitempty"`

	WithDebugLogs       bool `json:"with_debug_logs,omitempty"`
	Debug               bool `json:"debug,omitempty"`
	Verbose             bool `json:"verbose,omitempty"`
	WithUnmodeledWrench bool `json:"with_unmodeled_wrench,omitempty"`
	WithGyroBias        bool `json:"with_gyro_bias,omitempty"`

	LinStiffness []float64 `json:"lin_stiffness"`
	AngStiffness []float64 `json:"ang_stiffness"`
	LinDamping   []float64 `json:"lin_damping"`
	AngDamping   []float64 `json:"ang_damping"`

	StatePositionInitVariance []float64 `json:"state_position_init_variance"`
	StateOriInitVariance      []float64 `json:"state_ori_init_variance"`
	StateLinVelInitVariance   []float64 `json:"state_lin_vel_init_variance"`
	StateAngVelInitVariance   []float64 `json:"state_ang_vel_init_variance"`

	// Required only with WithGyroBias.
	GyroBiasInitVariance    []float64 `json:"gyro_bias_init_variance,omitempty"`
	GyroBiasProcessVariance []float64 `json:"gyro_bias_process_variance,omitempty"`

	// Required only with WithUnmodeledWrench.
	UnmodeledForceInitVariance     []float64 `json:"unmodeled_force_init_variance,omitempty"`
	UnmodeledTorqueInitVariance    []float64 `json:"unmodeled_torque_init_variance,omitempty"`
	UnmodeledForceProcessVariance  []float64 `json:"unmodeled_force_process_variance,omitempty"`
	UnmodeledTorqueProcessVariance []float64 `json:"unmodeled_torque_process_variance,omitempty"`

	ContactPositionInitVarianceFirstContacts []float64 `json:"contact_position_init_variance_first_contacts"`
	ContactOriInitVarianceFirstContacts      []float64 `json:"contact_ori_init_variance_first_contacts"`
	ContactForceInitVarianceFirstContacts    []float64 `json:"contact_force_init_variance_first_contacts"`
	ContactTorqueInitVarianceFirstContacts   []float64 `json:"contact_torque_init_variance_first_contacts"`
	ContactPositionInitVarianceNewContacts   []float64 `json:"contact_position_init_variance_new_contacts"`
	ContactOriInitVarianceNewContacts        []float64 `json:"contact_ori_init_variance_new_contacts"`
	ContactForceInitVarianceNewContacts      []float64 `json:"contact_force_init_variance_new_contacts"`
	ContactTorqueInitVarianceNewContacts     []float64 `json:"contact_torque_init_variance_new_contacts"`

	StatePositionProcessVariance []float64 `json:"state_position_process_variance"`
	StateOriProcessVariance      []float64 `json:"state_ori_process_variance"`
	StateLinVelProcessVariance   []float64 `json:"state_lin_vel_process_variance"`
	StateAngVelProcessVariance   []float64 `json:"state_ang_vel_process_variance"`

	ContactPositionProcessVariance    []float64 `json:"contact_position_process_variance"`
	ContactOrientationProcessVariance []float64 `json:"contact_orientation_process_variance"`
	ContactForceProcessVariance       []float64 `json:"contact_force_process_variance"`
	ContactTorqueProcessVariance      []float64 `json:"contact_torque_process_variance"`

	PositionSensorVariance    []float64 `json:"position_sensor_variance"`
	OrientationSensorVariance []float64 `json:"orientation_sensor_variance"`
	AcceleroSensorVariance    []float64 `json:"accelero_sensor_variance"`
	GyroSensorVariance        []float64 `json:"gyro_sensor_variance"`
	ForceSensorVariance       []float64 `json:"force_sensor_variance"`
	TorqueSensorVariance      []float64 `json:"torque_sensor_variance"`
}

// DecodeConfig converts a raw attribute map, as read from JSON or YAML, into a Config.
func DecodeConfig(attributes map[string]interface{}) (*Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "decoding kinetics observer config")
	}
	return &cfg, nil
}

type vectorField struct {
	name     string
	value    []float64
	positive bool
	optional bool
}

func (cfg *Config) vectorFields() []vectorField {
	fields := []vectorField{
		{name: "lin_stiffness", value: cfg.LinStiffness, positive: true},
		{name: "ang_stiffness", value: cfg.AngStiffness, positive: true},
		{name: "lin_damping", value: cfg.LinDamping},
		{name: "ang_damping", value: cfg.AngDamping},

		{name: "state_position_init_variance", value: cfg.StatePositionInitVariance},
		{name: "state_ori_init_variance", value: cfg.StateOriInitVariance},
		{name: "state_lin_vel_init_variance", value: cfg.StateLinVelInitVariance},
		{name: "state_ang_vel_init_variance", value: cfg.StateAngVelInitVariance},
		{name: "gyro_bias_init_variance", value: cfg.GyroBiasInitVariance, optional: !cfg.WithGyroBias},
		{name: "unmodeled_force_init_variance", value: cfg.UnmodeledForceInitVariance, optional: !cfg.WithUnmodeledWrench},
		{name: "unmodeled_torque_init_variance", value: cfg.UnmodeledTorqueInitVariance, optional: !cfg.WithUnmodeledWrench},

		{name: "contact_position_init_variance_first_contacts", value: cfg.ContactPositionInitVarianceFirstContacts},
		{name: "contact_ori_init_variance_first_contacts", value: cfg.ContactOriInitVarianceFirstContacts},
		{name: "contact_force_init_variance_first_contacts", value: cfg.ContactForceInitVarianceFirstContacts},
		{name: "contact_torque_init_variance_first_contacts", value: cfg.ContactTorqueInitVarianceFirstContacts},
		{name: "contact_position_init_variance_new_contacts", value: cfg.ContactPositionInitVarianceNewContacts},
		{name: "contact_ori_init_variance_new_contacts", value: cfg.ContactOriInitVarianceNewContacts},
		{name: "contact_force_init_variance_new_contacts", value: cfg.ContactForceInitVarianceNewContacts},
		{name: "contact_torque_init_variance_new_contacts", value: cfg.ContactTorqueInitVarianceNewContacts},

		{name: "state_position_process_variance", value: cfg.StatePositionProcessVariance},
		{name: "state_ori_process_variance", value: cfg.StateOriProcessVariance},
		{name: "state_lin_vel_process_variance", value: cfg.StateLinVelProcessVariance},
		{name: "state_ang_vel_process_variance", value: cfg.StateAngVelProcessVariance},
		{name: "gyro_bias_process_variance", value: cfg.GyroBiasProcessVariance, optional: !cfg.WithGyroBias},
		{name: "unmodeled_force_process_variance", value: cfg.UnmodeledForceProcessVariance, optional: !cfg.WithUnmodeledWrench},
		{name: "unmodeled_torque_process_variance", value: cfg.UnmodeledTorqueProcessVariance, optional: !cfg.WithUnmodeledWrench},

		{name: "contact_position_process_variance", value: cfg.ContactPositionProcessVariance},
		{name: "contact_orientation_process_variance", value: cfg.ContactOrientationProcessVariance},
		{name: "contact_force_process_variance", value: cfg.ContactForceProcessVariance},
		{name: "contact_torque_process_variance", value: cfg.ContactTorqueProcessVariance},

		{name: "position_sensor_variance", value: cfg.PositionSensorVariance},
		{name: "orientation_sensor_variance", value: cfg.OrientationSensorVariance},
		{name: "accelero_sensor_variance", value: cfg.AcceleroSensorVariance},
		{name: "gyro_sensor_variance", value: cfg.GyroSensorVariance},
		{name: "force_sensor_variance", value: cfg.ForceSensorVariance},
		{name: "torque_sensor_variance", value: cfg.TorqueSensorVariance},
	}
	return fields
}

// Validate ensures all parts of the config are valid. Every invalid field is reported.
func (cfg *Config) Validate(path string) error {
	var errs error

	if cfg.ContactsDetection == "" {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "contacts_detection"))
	} else if detection, err := measurements.ParseContactsDetection(cfg.ContactsDetection); err != nil {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path, err))
	} else if detection == measurements.FromSurfaces && len(cfg.SurfacesForContactDetection) == 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "surfaces_for_contact_detection"))
	}

	if cfg.ContactDetectionPropThreshold == 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "contact_detection_prop_threshold"))
	} else if !(cfg.ContactDetectionPropThreshold > 0) {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("contact_detection_prop_threshold must be positive, got %v", cfg.ContactDetectionPropThreshold)))
	}

	if cfg.OdometryType == "" {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "odometry_type"))
	} else if _, err := ParseOdometryType(cfg.OdometryType); err != nil {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path, err))
	}
	if _, err := ParseVelocityUpdate(cfg.VelocityUpdate); err != nil {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path, err))
	}

	for _, f := range cfg.vectorFields() {
		if len(f.value) == 0 {
			if !f.optional {
				errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, f.name))
			}
			continue
		}
		if len(f.value) != 3 {
			errs = multierr.Append(errs, utils.NewConfigValidationError(path,
				errors.Errorf("%s must have 3 values, got %d", f.name, len(f.value))))
			continue
		}
		for _, v := range f.value {
			if math.IsNaN(v) || v < 0 || (f.positive && v == 0) {
				errs = multierr.Append(errs, utils.NewConfigValidationError(path,
					errors.Errorf("%s has invalid value %v", f.name, v)))
				break
			}
		}
	}
	return errs
}

func toR3(v []float64) r3.Vector {
	if len(v) != 3 {
		return r3.Vector{}
	}
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

func diag(blocks ...[]float64) *mat.DiagDense {
	var values []float64
	for _, b := range blocks {
		if len(b) != 3 {
			b = make([]float64, 3)
		}
		values = append(values, b...)
	}
	return mat.NewDiagDense(len(values), values)
}

// ViscoElasticModel returns the contact model built from the stiffness and damping fields.
func (cfg *Config) ViscoElasticModel() ViscoElasticModel {
	return ViscoElasticModel{
		LinStiffness: toR3(cfg.LinStiffness),
		AngStiffness: toR3(cfg.AngStiffness),
		LinDamping:   toR3(cfg.LinDamping),
		AngDamping:   toR3(cfg.AngDamping),
	}
}

// Covariances returns the engine covariance blocks. Contact init blocks are those of the
// first contacts; see NewContactsInitCovariance.
func (cfg *Config) Covariances() Covariances {
	return Covariances{
		StatePositionInit:   diag(cfg.StatePositionInitVariance),
		StateOriInit:        diag(cfg.StateOriInitVariance),
		StateLinVelInit:     diag(cfg.StateLinVelInitVariance),
		StateAngVelInit:     diag(cfg.StateAngVelInitVariance),
		GyroBiasInit:        diag(cfg.GyroBiasInitVariance),
		UnmodeledWrenchInit: diag(cfg.UnmodeledForceInitVariance, cfg.UnmodeledTorqueInitVariance),
		ContactInit:         cfg.FirstContactsInitCovariance(),

		StatePositionProcess:   diag(cfg.StatePositionProcessVariance),
		StateOriProcess:        diag(cfg.StateOriProcessVariance),
		StateLinVelProcess:     diag(cfg.StateLinVelProcessVariance),
		StateAngVelProcess:     diag(cfg.StateAngVelProcessVariance),
		GyroBiasProcess:        diag(cfg.GyroBiasProcessVariance),
		UnmodeledWrenchProcess: diag(cfg.UnmodeledForceProcessVariance, cfg.UnmodeledTorqueProcessVariance),
		ContactProcess:         cfg.ContactProcessCovariance(),

		PositionSensor:    diag(cfg.PositionSensorVariance),
		OrientationSensor: diag(cfg.OrientationSensorVariance),
		AcceleroSensor:    diag(cfg.AcceleroSensorVariance),
		GyroSensor:        diag(cfg.GyroSensorVariance),
		ContactSensor:     cfg.ContactSensorCovariance(),
	}
}

// FirstContactsInitCovariance is the initial covariance of a contact added while no other is set.
func (cfg *Config) FirstContactsInitCovariance() *mat.DiagDense {
	return diag(
		cfg.ContactPositionInitVarianceFirstContacts,
		cfg.ContactOriInitVarianceFirstContacts,
		cfg.ContactForceInitVarianceFirstContacts,
		cfg.ContactTorqueInitVarianceFirstContacts)
}

// NewContactsInitCovariance is the initial covariance of a contact added while others are set.
func (cfg *Config) NewContactsInitCovariance() *mat.DiagDense {
	return diag(
		cfg.ContactPositionInitVarianceNewContacts,
		cfg.ContactOriInitVarianceNewContacts,
		cfg.ContactForceInitVarianceNewContacts,
		cfg.ContactTorqueInitVarianceNewContacts)
}

// ContactProcessCovariance is the process covariance of a contact state.
func (cfg *Config) ContactProcessCovariance() *mat.DiagDense {
	return diag(
		cfg.ContactPositionProcessVariance,
		cfg.ContactOrientationProcessVariance,
		cfg.ContactForceProcessVariance,
		cfg.ContactTorqueProcessVariance)
}

// ContactSensorCovariance is the covariance of a force/torque sensor measurement.
func (cfg *Config) ContactSensorCovariance() *mat.DiagDense {
	return diag(cfg.ForceSensorVariance, cfg.TorqueSensorVariance)
}

// AcceleroCovariance is the covariance of an accelerometer measurement.
func (cfg *Config) AcceleroCovariance() *mat.DiagDense {
	return spatialmath.Diag3(toR3(cfg.AcceleroSensorVariance))
}

// GyroCovariance is the covariance of a gyrometer measurement.
func (cfg *Config) GyroCovariance() *mat.DiagDense {
	return spatialmath.Diag3(toR3(cfg.GyroSensorVariance))
}
