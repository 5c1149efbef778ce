package relay

import "fmt"

// WebSocket close codes the relay uses for connection-fatal failures.
const (
	// CloseInvalidPayload covers binary frames, unparseable JSON, unknown
	// discriminants, and failed field validation.
	CloseInvalidPayload = 1003
	// CloseMessageTooBig covers frames over MaxMessageSize.
	CloseMessageTooBig = 1009
	// CloseInternalError covers name-store write failures.
	CloseInternalError = 1011
)

// CloseError instructs the transport to close the offending connection. It is
// local to that connection; other members of the room are unaffected.
type CloseError struct {
	Code   int
	Reason string
}

func (e *CloseError) Error() string {
	return fmt.Sprintf("close %d: %s", e.Code, e.Reason)
}

func closeError(code int, reason string) *CloseError {
	return &CloseError{Code: code, Reason: reason}
}
