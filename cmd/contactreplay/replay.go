package main

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"

	"go.viam.com/stateobservation/kineticsobserver"
	"go.viam.com/stateobservation/kineticsobserver/fake"
	"go.viam.com/stateobservation/logging"
	"go.viam.com/stateobservation/measurements"
)

type event struct {
	Cycle   int
	Kind    string
	Contact string
	Detail  string
}

type replayResult struct {
	Cycles       int
	Events       []event
	FloatingBase kineticsobserver.FloatingBaseEstimate
}

// replay runs the observer on every cycle of tr, the recorded robot being both the measured
// and the control robot.
func replay(ctx context.Context, tr *trace, logger logging.Logger) (*replayResult, error) {
	cfg, err := kineticsobserver.DecodeConfig(tr.Observer)
	if err != nil {
		return nil, err
	}
	r, err := tr.Robot.build()
	if err != nil {
		return nil, err
	}

	maxContacts := max(len(tr.Robot.ForceSensors)+len(tr.Robot.Surfaces), 1)
	engine := fake.NewEngine(maxContacts, len(tr.Robot.IMUs))
	obs := kineticsobserver.New("kinetics_observer", tr.DT, engine, logger.Sublogger("observer"))
	if err := obs.Configure(r, cfg); err != nil {
		return nil, err
	}

	res := &replayResult{}
	record := func(kind, contact, detail string) {
		res.Events = append(res.Events, event{Cycle: res.Cycles, Kind: kind, Contact: contact, Detail: detail})
	}
	obs.AddContactListener(kineticsobserver.ContactListener{
		OnNewContact: func(c measurements.ContactRecord) {
			record("new", c.Name(), fmt.Sprintf("id %d", c.ID()))
		},
		OnMaintainedContact: func(c measurements.ContactRecord) {
			record("maintained", c.Name(), "")
		},
		OnRemovedContact: func(c measurements.ContactRecord) {
			record("removed", c.Name(), "")
		},
		OnSensorEnabledChange: func(c *measurements.ContactWithSensor, enabled bool) {
			detail := "disabled"
			if enabled {
				detail = "enabled"
			}
			record("sensor", c.Name(), detail)
		},
	})

	for _, cycle := range tr.Cycles {
		for i := 0; i < max(cycle.Repeat, 1); i++ {
			res.Cycles++
			if err := cycle.apply(r); err != nil {
				return nil, errors.Wrapf(err, "cycle %d", res.Cycles)
			}
			if err := obs.Run(ctx, r, r); err != nil {
				return nil, errors.Wrapf(err, "cycle %d", res.Cycles)
			}
		}
	}
	res.FloatingBase = obs.FloatingBase()
	logger.Debugw("replay done", "cycles", res.Cycles, "events", len(res.Events), "set_contacts", engine.NumberOfSetContacts())
	return res, nil
}

func eventTable(res *replayResult) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Cycle", "Event", "Contact", "Detail"})
	for _, e := range res.Events {
		t.AppendRow(table.Row{e.Cycle, e.Kind, e.Contact, e.Detail})
	}
	p := res.FloatingBase.Pose.Position
	t.AppendFooter(table.Row{res.Cycles, "floating base", "", fmt.Sprintf("%.4f %.4f %.4f", p.X, p.Y, p.Z)})
	return t
}
