// Package testutils holds helpers shared by the tests of this module.
package testutils

import (
	"go.uber.org/goleak"
)

// VerifyTestMain runs the tests of a package and fails them if goroutines are left running.
// ignore lists the top functions of goroutines that are expected to outlive the tests.
func VerifyTestMain(m goleak.TestingM, ignore ...string) {
	opts := make([]goleak.Option, 0, len(ignore))
	for _, fn := range ignore {
		opts = append(opts, goleak.IgnoreTopFunction(fn))
	}
	goleak.VerifyTestMain(m, opts...)
}
