package sim

import "fmt"

// ValidationMessage is returned by the various Validate methods across the
// design to report a single configuration problem. A nil/empty slice of
// these means the thing being validated is usable.
type ValidationMessage struct {
	Message string
	Source  string
}

func (m ValidationMessage) String() string {
	return fmt.Sprintf("%s: %q", m.Source, m.Message)
}
