package repeater

import (
	"errors"
	"syscall"
)

// ErrKind classifies a socket-layer failure the way the core cares about,
// independent of the underlying OS error number. Callers branch on kind,
// never on a numeric errno, per the error taxonomy in the specification.
type ErrKind int

const (
	// ErrKindOther is any failure that doesn't fit a named kind below; the
	// caller logs it and otherwise treats it as transient.
	ErrKindOther ErrKind = iota
	// ErrKindAddressInUse means bind failed because the port is already
	// bound by another socket (possibly in another process).
	ErrKindAddressInUse
	// ErrKindConnRefused means a connected send() surfaced ECONNREFUSED,
	// i.e. the peer's kernel rejected the datagram outright.
	ErrKindConnRefused
)

// classify maps an error from the net package (or a wrapped syscall error)
// to an ErrKind. It understands both the net.OpError/os.SyscallError
// wrapping that the net package uses and bare syscall.Errno values, so it
// works uniformly across bind(), connect(), and send() failures.
func classify(err error) ErrKind {
	if err == nil {
		return ErrKindOther
	}
	switch {
	case errors.Is(err, syscall.EADDRINUSE):
		return ErrKindAddressInUse
	case errors.Is(err, syscall.ECONNREFUSED):
		return ErrKindConnRefused
	default:
		return ErrKindOther
	}
}

// IsAddressInUse reports whether err represents a bind-time address-in-use
// condition.
func IsAddressInUse(err error) bool { return classify(err) == ErrKindAddressInUse }

// IsConnRefused reports whether err represents a send-time ECONNREFUSED.
func IsConnRefused(err error) bool { return classify(err) == ErrKindConnRefused }
