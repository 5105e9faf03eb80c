package combatlog

import (
	"errors"
	"fmt"
)

// ErrMissingActor is matched by every MissingActorError
var ErrMissingActor = errors.New("actor not found")

// MissingActorError reports a participant, boss or tank that the supplied
// metadata could not resolve. It is fatal to the run that hit it.
type MissingActorError struct {
	Role string
	Name string
	ID   int
}

func (e *MissingActorError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s %q not found in report", e.Role, e.Name)
	}
	return fmt.Sprintf("%s (id %d) not found in report", e.Role, e.ID)
}

// Is makes errors.Is(err, ErrMissingActor) hold
func (e *MissingActorError) Is(target error) bool {
	return target == ErrMissingActor
}
