package kineticsobserver

import (
	"github.com/golang/geo/r3"
	"github.com/samber/lo"

	"go.viam.com/stateobservation/measurements"
	"go.viam.com/stateobservation/robot"
	"go.viam.com/stateobservation/spatialmath"
)

// wrenchAtCenterOfMass moves the reference point of a wrench from the floating base origin to com.
func wrenchAtCenterOfMass(w spatialmath.Wrench, com r3.Vector) spatialmath.Wrench {
	return spatialmath.Wrench{Force: w.Force, Torque: w.Torque.Sub(com.Cross(w.Force))}
}

// inputAdditionalWrench feeds the engine with the wrench measured by the enabled sensors of
// the contacts that are not set. A sensor shared by several contacts counts once, and not at
// all when one of its contacts is set. With debug logs, it also refreshes the centroid wrench
// of every contact with sensor.
func (o *Observer) inputAdditionalWrench(measured robot.Robot) error {
	contacts := o.manager.Contacts().ContactsWithSensors()
	setSensors := lo.SliceToMap(
		lo.Filter(contacts, func(c *measurements.ContactWithSensor, _ int) bool { return c.IsSet }),
		func(c *measurements.ContactWithSensor) (string, struct{}) { return c.ForceSensorName, struct{}{} })
	sensors := lo.Uniq(lo.FilterMap(contacts, func(c *measurements.ContactWithSensor, _ int) (string, bool) {
		_, used := setSensors[c.ForceSensorName]
		return c.ForceSensorName, c.SensorEnabled && !used
	}))

	var total spatialmath.Wrench
	for _, name := range sensors {
		sensor, err := measured.ForceSensor(name)
		if err != nil {
			return err
		}
		total = total.Add(sensor.WorldWrenchWithoutGravity())
	}
	o.additionalWrench = total
	o.engine.SetAdditionalWrench(total.Force, total.Torque)

	if !o.cfg.WithDebugLogs {
		return nil
	}
	com := measured.CenterOfMass().Position
	for _, c := range contacts {
		sensor, err := measured.ForceSensor(c.ForceSensorName)
		if err != nil {
			return err
		}
		c.WrenchInCentroid = wrenchAtCenterOfMass(sensor.WorldWrenchWithoutGravity(), com)
	}
	return nil
}

func (o *Observer) snapshot() *DebugSnapshot {
	centroid := map[string]spatialmath.Wrench{}
	for _, c := range o.manager.Contacts().ContactsWithSensors() {
		centroid[c.Name()] = c.WrenchInCentroid
	}
	return &DebugSnapshot{
		StateVector:          cloneVec(o.engine.CurrentStateVector()),
		Measurement:          cloneVec(o.engine.LastMeasurement()),
		PredictedMeasurement: cloneVec(o.engine.LastPredictedMeasurement()),
		CorrectedMeasurement: cloneVec(o.engine.SimulatedMeasurement()),
		Innovation:           cloneVec(o.engine.Innovation()),
		AdditionalWrench:     o.additionalWrench,
		CentroidWrenches:     centroid,
	}
}
