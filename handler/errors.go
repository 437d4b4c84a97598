package handler

import "errors"

var (
	ErrInvalidOpCode      = errors.New("invalid op code")
	ErrInvalidMessageType = errors.New("invalid message type")
	ErrNoQuestion         = errors.New("no question")
	ErrInvalidZone        = errors.New("invalid zone")
	ErrInvalidCidrQuery   = errors.New("invalid cidr query")
	ErrInvalidEpochQuery  = errors.New("invalid epoch query")
	ErrTransportSend      = errors.New("transport send failure")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrInvalidOpCode, "InvalidOpCode"},
	{ErrInvalidMessageType, "InvalidMessageType"},
	{ErrNoQuestion, "NoQuestion"},
	{ErrInvalidZone, "InvalidZone"},
	{ErrInvalidCidrQuery, "InvalidCidrQuery"},
	{ErrInvalidEpochQuery, "InvalidEpochQuery"},
	{ErrTransportSend, "TransportSendFailure"},
}

// ErrorKind names the class of a dispatch error for logs.
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "Internal"
}
