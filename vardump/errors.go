package vardump

import "fmt"

// InvalidArgumentError means a log row cannot hold a variable dump at all. This points at corrupted data, unlike an
// empty dump field.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid var dump row: %s", e.Reason)
}
