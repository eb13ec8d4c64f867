package domain

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"unicode"
)

var (
	ErrInvalidTarget = errors.New("invalid target")
	ErrInvalidCount  = errors.New("invalid count")
)

type TargetKind int

const (
	KindAddr TargetKind = iota + 1
	KindHost
)

func (k TargetKind) String() string {
	switch k {
	case KindAddr:
		return "addr"
	case KindHost:
		return "host"
	default:
		return "unknown"
	}
}

// Target is where a probe is sent: either a literal IP address or a hostname
// that is handed to the probe tool untouched.
type Target struct {
	Kind TargetKind
	Addr netip.Addr // set when Kind == KindAddr
	Host string     // set when Kind == KindHost
}

// ParseTarget tries the address form first and falls back to a hostname.
// Hostnames are rejected when empty, when they contain whitespace or control
// characters, or when they start with '-' (they end up on a command line).
func ParseTarget(raw string) (Target, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Target{}, fmt.Errorf("%w: empty", ErrInvalidTarget)
	}
	if addr, err := netip.ParseAddr(s); err == nil {
		return Target{Kind: KindAddr, Addr: addr}, nil
	}
	if strings.HasPrefix(s, "-") {
		return Target{}, fmt.Errorf("%w: %q starts with '-'", ErrInvalidTarget, s)
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return Target{}, fmt.Errorf("%w: %q contains whitespace or control characters", ErrInvalidTarget, s)
		}
	}
	return Target{Kind: KindHost, Host: s}, nil
}

func (t Target) IsIPv6() bool {
	return t.Kind == KindAddr && t.Addr.Is6() && !t.Addr.Is4In6()
}

// String renders the target back into its command argument form.
func (t Target) String() string {
	switch t.Kind {
	case KindAddr:
		return t.Addr.String()
	case KindHost:
		return t.Host
	default:
		return ""
	}
}

const DefaultCount = 1

type ProbeRequest struct {
	Target Target
	Count  int
}

// NewProbeRequest builds a request; count must be positive. Use ParseCount
// for raw query values, which supplies DefaultCount when none is given.
func NewProbeRequest(t Target, count int) (ProbeRequest, error) {
	if t.Kind != KindAddr && t.Kind != KindHost {
		return ProbeRequest{}, fmt.Errorf("%w: unset", ErrInvalidTarget)
	}
	if count <= 0 {
		return ProbeRequest{}, fmt.Errorf("%w: %d is not positive", ErrInvalidCount, count)
	}
	return ProbeRequest{Target: t, Count: count}, nil
}

// ParseCount reads a count query value. Empty means DefaultCount; anything
// else must be a positive base-10 integer.
func ParseCount(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return DefaultCount, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidCount, s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d is not positive", ErrInvalidCount, n)
	}
	return n, nil
}
