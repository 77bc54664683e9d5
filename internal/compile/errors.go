package compile

import "fmt"

// HTTPError is a non-2xx answer from the service.
type HTTPError struct {
	Action Action
	Status int
	// Detail is the service's own explanation, empty when the body carried none.
	Detail string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Action == Export {
		return fmt.Sprintf("DOCX export failed (%d)", e.Status)
	}
	return fmt.Sprintf("Compile failed (%d)", e.Status)
}

// TransportError means no response arrived: refused connections, resets, timeouts, context
// cancellation.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError means a response arrived but its body could not be read.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return e.Err.Error() }

func (e *DecodeError) Unwrap() error { return e.Err }
