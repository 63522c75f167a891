package async

import "fmt"

// PanicError carries a value recovered from a panic.
// Its message is the value formatted with fmt.Sprint.
type PanicError struct {
	Value any
}

// Recovered converts a recovered panic value into an error.
// Error values pass through unchanged.
func Recovered(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &PanicError{Value: r}
}

func (e *PanicError) Error() string {
	return fmt.Sprint(e.Value)
}
