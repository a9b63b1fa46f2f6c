package measurements

import "github.com/pkg/errors"

var (
	// ErrNotFound is returned when looking up a name that was never registered.
	ErrNotFound = errors.New("not registered")
	// ErrOutOfRange is returned when looking up an id outside [0, count).
	ErrOutOfRange = errors.New("id out of range")
	// ErrContactKindMismatch is returned when a contact is registered again with a different
	// sensor association than the first time.
	ErrContactKindMismatch = errors.New("contact already registered with a different sensor association")
	// ErrUnknownDetection is returned for a contacts detection method that is not one of
	// fromSurfaces, fromThreshold or fromSolver.
	ErrUnknownDetection = errors.New("unknown contacts detection method")
)

func newNotFoundError(kind, name string) error {
	return errors.Wrapf(ErrNotFound, "%s %q", kind, name)
}

func newOutOfRangeError(kind string, id, count int) error {
	return errors.Wrapf(ErrOutOfRange, "%s id %d not in [0, %d)", kind, id, count)
}
