package edgetrust

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRange = errors.New("invalid network range")

	ErrFetch = errors.New("failed to fetch range list")

	ErrLoadCancelled = errors.New("range loading cancelled")

	ErrLoaderNotStarted = errors.New("range loader not started")

	ErrMultipleHeaderValues = errors.New("multiple forwarded header values received")

	ErrInvalidHeaderValue = errors.New("invalid forwarded header value")
)

// RangeParseError reports a malformed "address/prefixLength" entry.
//
// Line and URL are set when the entry came from a fetched range list.
type RangeParseError struct {
	Err    error
	Input  string
	Reason string
	Line   int
	URL    string
}

func (e *RangeParseError) Error() string {
	msg := fmt.Sprintf("%v %q: %s", e.Err, e.Input, e.Reason)
	if e.Line > 0 {
		msg = fmt.Sprintf("%s (line=%d)", msg, e.Line)
	}
	if e.URL != "" {
		msg = fmt.Sprintf("%s (url=%s)", msg, e.URL)
	}
	return msg
}

func (e *RangeParseError) Unwrap() error {
	return e.Err
}

// FetchError reports a transport failure while retrieving a range list.
type FetchError struct {
	Family Family
	URL    string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%v: %s list (url=%s): %v", ErrFetch, e.Family, e.URL, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrFetch, e.Err}
}

// LoadError is the terminal error of a failed loader run.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("trusted range load failed: %v", e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Family identifies an address family.
type Family int

const (
	FamilyIPv4 Family = iota + 1
	FamilyIPv6
)

// String returns the canonical text representation of f.
func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	default:
		return "unknown"
	}
}
