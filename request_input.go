package edgetrust

import (
	"context"
)

// HeaderValues provides access to request header values by name.
//
// Header names are requested in canonical MIME format (for example
// "Cf_connecting_ip" for the default header).
//
// net/http's http.Header satisfies this interface directly.
type HeaderValues interface {
	Values(name string) []string
}

// HeaderValuesFunc adapts a function to the HeaderValues interface.
type HeaderValuesFunc func(name string) []string

// Values implements HeaderValues.
func (f HeaderValuesFunc) Values(name string) []string {
	if f == nil {
		return nil
	}

	return f(name)
}

// RequestInput provides framework-agnostic request data for trust decisions.
//
// Context defaults to context.Background() when nil. It bounds how long the
// decision may wait for an in-flight range load.
type RequestInput struct {
	Context    context.Context
	RemoteAddr string
	Headers    HeaderValues
}

func requestInputContext(input RequestInput) context.Context {
	if input.Context == nil {
		return context.Background()
	}

	return input.Context
}

func headerPresent(headers HeaderValues, key string) bool {
	if isNilInterface(headers) {
		return false
	}

	return len(headers.Values(key)) > 0
}
