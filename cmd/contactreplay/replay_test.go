package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/stateobservation/logging"
	"go.viam.com/stateobservation/robot"
	"go.viam.com/stateobservation/testutils"
)

func TestReplay(t *testing.T) {
	tr, err := readTrace("testdata/walk.yaml")
	test.That(t, err, test.ShouldBeNil)

	res, err := replay(context.Background(), tr, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Cycles, test.ShouldEqual, 9)
	test.That(t, res.Events, test.ShouldResemble, []event{
		{Cycle: 4, Kind: "new", Contact: "RightFoot", Detail: "id 0"},
		{Cycle: 4, Kind: "sensor", Contact: "RightFoot", Detail: "enabled"},
		{Cycle: 5, Kind: "maintained", Contact: "RightFoot"},
		{Cycle: 6, Kind: "maintained", Contact: "RightFoot"},
		{Cycle: 7, Kind: "maintained", Contact: "RightFoot"},
		{Cycle: 8, Kind: "maintained", Contact: "RightFoot"},
		{Cycle: 9, Kind: "removed", Contact: "RightFoot"},
	})
	test.That(t, res.FloatingBase.HasVelocity, test.ShouldBeTrue)
	test.That(t, res.FloatingBase.Pose.Position.Norm(), test.ShouldBeLessThan, 1e-2)
}

func TestReplayCommand(t *testing.T) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	test.That(t, app.Run([]string{"contactreplay", "--trace", "testdata/walk.yaml", "--csv"}), test.ShouldBeNil)

	lines := strings.Split(out.String(), "\n")
	test.That(t, strings.ToLower(lines[0]), test.ShouldEqual, "cycle,event,contact,detail")
	test.That(t, lines, test.ShouldContain, "4,new,RightFoot,id 0")
	test.That(t, lines, test.ShouldContain, "9,removed,RightFoot,")

	out.Reset()
	test.That(t, app.Run([]string{"contactreplay", "-t", "testdata/walk.yaml"}), test.ShouldBeNil)
	test.That(t, strings.ToUpper(out.String()), test.ShouldContainSubstring, "FLOATING BASE")

	err := app.Run([]string{"contactreplay"})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, flagTrace)
}

func TestReplayErrors(t *testing.T) {
	walk, err := os.ReadFile("testdata/walk.yaml")
	test.That(t, err, test.ShouldBeNil)

	_, err = readTrace("testdata/missing.yaml")
	test.That(t, err, test.ShouldNotBeNil)

	path := testutils.WriteTempFile(t, "no_dt.yaml", strings.Replace(string(walk), "dt: 0.005", "dt: 0", 1))
	_, err = readTrace(path)
	test.That(t, err.Error(), test.ShouldContainSubstring, "dt must be positive")

	path = testutils.WriteTempFile(t, "bad_position.yaml",
		strings.Replace(string(walk), "position: [0, -0.1, -0.8]", "position: [0, -0.1]", 1))
	tr, err := readTrace(path)
	test.That(t, err, test.ShouldBeNil)
	_, err = replay(context.Background(), tr, logging.NewTestLogger(t))
	test.That(t, err.Error(), test.ShouldContainSubstring, "RightFoot position must have 3 values, got 2")

	path = testutils.WriteTempFile(t, "unknown_sensor.yaml", string(walk)+"  - forces:\n      LeftFoot: [0, 0, 30]\n")
	tr, err = readTrace(path)
	test.That(t, err, test.ShouldBeNil)
	_, err = replay(context.Background(), tr, logging.NewTestLogger(t))
	test.That(t, errors.Is(err, robot.ErrNotFound), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cycle 10")

	path = testutils.WriteTempFile(t, "bad_observer.yaml",
		strings.Replace(string(walk), "contacts_detection: fromThreshold", "contacts_detection: fromNowhere", 1))
	tr, err = readTrace(path)
	test.That(t, err, test.ShouldBeNil)
	_, err = replay(context.Background(), tr, logging.NewTestLogger(t))
	test.That(t, err.Error(), test.ShouldContainSubstring, "fromNowhere")
}
