package inventory

import "fmt"

// ErrorKind identifies which store operation failed. There is no finer
// classification: transport failures and non-success statuses look the same.
type ErrorKind string

const (
	LoadFailed   ErrorKind = "LoadFailed"
	CreateFailed ErrorKind = "CreateFailed"
	UpdateFailed ErrorKind = "UpdateFailed"
	DeleteFailed ErrorKind = "DeleteFailed"
)

// Message is the user-facing text for the kind.
func (k ErrorKind) Message() string {
	switch k {
	case LoadFailed:
		return "Failed to load equipment"
	case CreateFailed:
		return "Add failed"
	case UpdateFailed:
		return "Update failed"
	case DeleteFailed:
		return "Delete failed"
	}
	return string(k)
}

// OpError is the error state recorded by a failed store operation.
type OpError struct {
	Kind ErrorKind
	// ID is the target record, empty for load and create.
	ID  string
	Err error
}

func (e *OpError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s: %v", e.Kind, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
