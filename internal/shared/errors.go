package shared

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected = errors.New("not connected")
	ErrClosed       = errors.New("client closed")
)

// ErrorKind classifies the failures the realtime client can observe. Every
// kind is recoverable: transport errors feed the reconnect policy, decode and
// protocol errors drop the offending frame and the loop continues.
type ErrorKind int

const (
	KindTransport ErrorKind = iota
	KindDecode
	KindProtocol
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	case KindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

type ClientError struct {
	Kind ErrorKind
	Err  error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

func TransportErr(err error) error {
	return &ClientError{Kind: KindTransport, Err: err}
}

func DecodeErr(err error) error {
	return &ClientError{Kind: KindDecode, Err: err}
}

func ProtocolErr(format string, args ...any) error {
	return &ClientError{Kind: KindProtocol, Err: fmt.Errorf(format, args...)}
}

// KindOf reports the classification of err, if it carries one.
func KindOf(err error) (ErrorKind, bool) {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}
