package protocol

import (
	"errors"
	"testing"
)

func TestIsInitRequestPrefixMatch(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want bool
	}{
		{name: "exact", in: []byte(InitRequest), want: true},
		{name: "padded", in: append([]byte(InitRequest), make([]byte, 64)...), want: true},
		{name: "trailing garbage", in: []byte(InitRequest + "xyz"), want: true},
		{name: "truncated", in: []byte(InitRequest[:10]), want: false},
		{name: "ack is not a request", in: []byte(InitAck), want: false},
		{name: "empty", in: nil, want: false},
	}
	for _, tc := range cases {
		if got := IsInitRequest(tc.in); got != tc.want {
			t.Fatalf("%s: IsInitRequest=%v want %v", tc.name, got, tc.want)
		}
	}
}

func TestCheckInitRequest(t *testing.T) {
	if err := CheckInitRequest([]byte("hello")); !errors.Is(err, ErrNotInitRequest) {
		t.Fatalf("expected ErrNotInitRequest, got %v", err)
	}
	if err := CheckInitRequest([]byte(InitRequest)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAckPayloadIsACopy(t *testing.T) {
	a := AckPayload()
	a[0] = 'X'
	if string(AckPayload()) != InitAck {
		t.Fatalf("ack payload mutated through returned slice")
	}
}

func TestValidatePort(t *testing.T) {
	if err := ValidatePort(DefaultPort); err != nil {
		t.Fatalf("default port rejected: %v", err)
	}
	for _, p := range []int{0, -1, 70000} {
		if err := ValidatePort(p); !errors.Is(err, ErrInvalidPort) {
			t.Fatalf("port %d: expected ErrInvalidPort, got %v", p, err)
		}
	}
}
