// Package main replays a recorded trace of robot readings through the kinetics observer and
// prints the contact events it produced.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"go.viam.com/stateobservation/logging"
)

const (
	// Flags.
	flagTrace = "trace"
	flagCSV   = "csv"
	flagDebug = "debug"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "contactreplay",
		Usage: "replay a recorded trace through the kinetics observer",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     flagTrace,
				Aliases:  []string{"t"},
				Required: true,
				Usage:    "path to the YAML trace to replay",
			},
			&cli.BoolFlag{
				Name:  flagCSV,
				Usage: "print the events as CSV",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "log at debug level",
			},
		},
		Action: replayAction,
	}
}

func replayAction(c *cli.Context) error {
	logger := logging.NewLogger("contactreplay")
	if c.Bool(flagDebug) {
		logger.SetLevel(logging.DEBUG)
	}

	tr, err := readTrace(c.String(flagTrace))
	if err != nil {
		return err
	}
	res, err := replay(c.Context, tr, logger)
	if err != nil {
		return err
	}

	t := eventTable(res)
	if c.Bool(flagCSV) {
		fmt.Fprintln(c.App.Writer, t.RenderCSV())
		return nil
	}
	fmt.Fprintln(c.App.Writer, t.Render())
	return nil
}
