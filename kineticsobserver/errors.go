package kineticsobserver

import "github.com/pkg/errors"

var (
	// ErrUnknownOdometryType is returned for an odometry type other than None, flatOdometry or 6dOdometry.
	ErrUnknownOdometryType = errors.New("unknown odometry type")
	// ErrUnknownVelocityUpdate is returned for a velocity update other than NoUpdate, FiniteDiff or FromUpstream.
	ErrUnknownVelocityUpdate = errors.New("unknown velocity update")
	// ErrConfigRequired is returned when configuring an observer without a config.
	ErrConfigRequired = errors.New("kinetics observer config is required")
	// ErrNotConfigured is returned when running or resetting an observer before Configure.
	ErrNotConfigured = errors.New("observer is not configured")
)
