package kineticsobserver

import "github.com/pkg/errors"

// OdometryType selects how the reference pose of a new contact is obtained.
type OdometryType string

// The supported odometry types.
const (
	// NoOdometry takes new contact references from the control robot.
	NoOdometry OdometryType = "None"
	// FlatOdometry estimates new contact references but keeps the control robot's height.
	FlatOdometry OdometryType = "flatOdometry"
	// SixDOdometry estimates the full pose of new contact references.
	SixDOdometry OdometryType = "6dOdometry"
)

// ParseOdometryType parses an odometry type.
func ParseOdometryType(s string) (OdometryType, error) {
	switch o := OdometryType(s); o {
	case NoOdometry, FlatOdometry, SixDOdometry:
		return o, nil
	}
	return "", errors.Wrapf(ErrUnknownOdometryType, "%q, pick among [%s, %s, %s]", s, NoOdometry, FlatOdometry, SixDOdometry)
}

// WithOdometry returns whether new contact references are estimated.
func (o OdometryType) WithOdometry() bool {
	return o == FlatOdometry || o == SixDOdometry
}

// Flat returns whether the reference height comes from the control robot.
func (o OdometryType) Flat() bool {
	return o == FlatOdometry
}

// VelocityUpdate selects how the floating base velocity is published.
type VelocityUpdate string

// The supported velocity updates.
const (
	// NoUpdate publishes the pose only.
	NoUpdate VelocityUpdate = "NoUpdate"
	// FiniteDiff differentiates successive estimated poses.
	FiniteDiff VelocityUpdate = "FiniteDiff"
	// FromUpstream publishes the velocity and acceleration estimated by the engine.
	FromUpstream VelocityUpdate = "FromUpstream"
)

// ParseVelocityUpdate parses a velocity update. The empty string selects NoUpdate.
func ParseVelocityUpdate(s string) (VelocityUpdate, error) {
	if s == "" {
		return NoUpdate, nil
	}
	switch v := VelocityUpdate(s); v {
	case NoUpdate, FiniteDiff, FromUpstream:
		return v, nil
	}
	return "", errors.Wrapf(ErrUnknownVelocityUpdate, "%q, pick among [%s, %s, %s]", s, NoUpdate, FiniteDiff, FromUpstream)
}
