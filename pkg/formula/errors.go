package formula

import "fmt"

// BuildError reports a formula that parsed cleanly but is semantically
// inconsistent, such as a response variable reused as a grouping factor.
type BuildError struct {
	Variable string
	Message  string
}

func (e *BuildError) Error() string {
	if e.Variable != "" {
		return fmt.Sprintf("invalid formula: variable %q: %s", e.Variable, e.Message)
	}
	return fmt.Sprintf("invalid formula: %s", e.Message)
}
