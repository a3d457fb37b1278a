package gateway

import "fmt"

// TransportError means the remote store could not be reached at all:
// dial failure, DNS, timeout. The operation had no partial effect.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: remote store unreachable: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteRejection is a non-2xx response from the remote store. Message
// carries the server's own wording when the body had one; it is surfaced
// to the user verbatim.
type RemoteRejection struct {
	Op      string
	Status  int
	Message string
}

func (e *RemoteRejection) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: remote store rejected the request (status %d)", e.Op, e.Status)
}

// UnknownFailure covers everything else that can go wrong during a call:
// a 2xx body that does not decode, a response that cannot be read.
type UnknownFailure struct {
	Op  string
	Err error
}

func (e *UnknownFailure) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *UnknownFailure) Unwrap() error { return e.Err }
