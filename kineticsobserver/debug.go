package kineticsobserver

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"go.viam.com/stateobservation/spatialmath"
)

// DebugSnapshot is a copy of the engine internals and of the inputs computed by the observer
// during the last cycle. It never feeds back into the estimation.
type DebugSnapshot struct {
	StateVector          *mat.VecDense
	Measurement          *mat.VecDense
	PredictedMeasurement *mat.VecDense
	CorrectedMeasurement *mat.VecDense
	Innovation           *mat.VecDense
	AdditionalWrench     spatialmath.Wrench
	// CentroidWrenches are the measured wrenches of every contact with sensor, at the center of mass.
	CentroidWrenches map[string]spatialmath.Wrench
}

func cloneVec(v mat.Vector) *mat.VecDense {
	if v == nil || v.Len() == 0 {
		return nil
	}
	return mat.VecDenseCopyOf(v)
}

func formatVec(v *mat.VecDense) string {
	if v == nil {
		return "[]"
	}
	return fmt.Sprintf("%v", mat.Formatted(v.T(), mat.Squeeze()))
}

func (s *DebugSnapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "state: %s\n", formatVec(s.StateVector))
	fmt.Fprintf(&b, "measurement: %s\n", formatVec(s.Measurement))
	fmt.Fprintf(&b, "predicted measurement: %s\n", formatVec(s.PredictedMeasurement))
	fmt.Fprintf(&b, "corrected measurement: %s\n", formatVec(s.CorrectedMeasurement))
	fmt.Fprintf(&b, "innovation: %s\n", formatVec(s.Innovation))
	fmt.Fprintf(&b, "additional wrench: %v", s.AdditionalWrench)
	return b.String()
}
