package edgetrust

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

func (c *config) validate() error {
	if c.headerName == "" {
		return fmt.Errorf("header name cannot be empty")
	}
	if strings.ContainsAny(c.headerName, " \t:") {
		return fmt.Errorf("invalid header name %q", c.headerName)
	}
	if c.useIPv4List {
		if err := validateListURL(c.ipv4ListURL, FamilyIPv4); err != nil {
			return err
		}
	}
	if c.useIPv6List {
		if err := validateListURL(c.ipv6ListURL, FamilyIPv6); err != nil {
			return err
		}
	}
	if !c.matchStrategy.valid() {
		return fmt.Errorf("invalid match strategy %d (must be MatchLinear=1 or MatchTrie=2)", c.matchStrategy)
	}

	if isNilInterface(c.fetcher) {
		return fmt.Errorf("fetcher cannot be nil")
	}
	if isNilInterface(c.rewriter) {
		return fmt.Errorf("rewriter cannot be nil")
	}
	if isNilInterface(c.logger) {
		return fmt.Errorf("logger cannot be nil")
	}
	if isNilInterface(c.metrics) {
		return fmt.Errorf("metrics cannot be nil")
	}
	return nil
}

func validateListURL(raw string, family Family) error {
	if raw == "" {
		return fmt.Errorf("%s list URL cannot be empty while the list is enabled", family)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s list URL %q: %w", family, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s list URL %q: scheme must be http or https", family, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid %s list URL %q: missing host", family, raw)
	}

	return nil
}

func isNilInterface(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}
