package shared

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKind_String(t *testing.T) {
	cases := []struct {
		kind ErrorKind
		want string
	}{
		{KindTransport, "transport"},
		{KindDecode, "decode"},
		{KindProtocol, "protocol"},
		{ErrorKind(99), "unknown"},
	}
	for _, c := range cases {
		if got := c.kind.String(); got != c.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", c.kind, got, c.want)
		}
	}
}

func TestClientError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := TransportErr(inner)

	if !errors.Is(err, inner) {
		t.Error("TransportErr should wrap the inner error")
	}

	wrapped := fmt.Errorf("dial companion: %w", err)
	kind, ok := KindOf(wrapped)
	if !ok {
		t.Fatal("KindOf should find the classification through wrapping")
	}
	if kind != KindTransport {
		t.Errorf("expected KindTransport, got %s", kind)
	}
}

func TestKindOf_Unclassified(t *testing.T) {
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("plain errors should not carry a kind")
	}
	if _, ok := KindOf(nil); ok {
		t.Error("nil should not carry a kind")
	}
}

func TestProtocolErr_Message(t *testing.T) {
	err := ProtocolErr("unknown message type %q", "weird")
	want := `protocol: unknown message type "weird"`
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}
