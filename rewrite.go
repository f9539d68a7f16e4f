package edgetrust

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// HeaderOriginalFor records the peer address a request arrived from before
// RemoteAddrRewriter replaced it.
const HeaderOriginalFor = "X-Original-For"

// Rewriter applies a trusted forwarded header to a request.
//
// The Gate calls Rewrite only for requests whose peer is inside the trusted
// ranges. An error means the header was rejected; implementations must leave
// the request unmodified in that case.
type Rewriter interface {
	Rewrite(r *http.Request, headerName string) error
}

// RewriterFunc adapts a function to the Rewriter interface.
type RewriterFunc func(r *http.Request, headerName string) error

// Rewrite implements Rewriter.
func (f RewriterFunc) Rewrite(r *http.Request, headerName string) error {
	return f(r, headerName)
}

// RemoteAddrRewriter replaces Request.RemoteAddr with the address carried in
// the forwarded header.
//
// The header must hold exactly one address; lists are rejected. The peer's
// port is kept unless the header supplies one. The previous RemoteAddr is
// stored in X-Original-For and the consumed header is removed.
type RemoteAddrRewriter struct{}

// Rewrite implements Rewriter.
func (RemoteAddrRewriter) Rewrite(r *http.Request, headerName string) error {
	values := r.Header.Values(headerName)
	if len(values) > 1 {
		return fmt.Errorf("%w (header=%s, count=%d)", ErrMultipleHeaderValues, headerName, len(values))
	}
	if len(values) == 0 {
		return fmt.Errorf("%w (header=%s): header missing", ErrInvalidHeaderValue, headerName)
	}

	value := values[0]
	if strings.Contains(value, ",") {
		return fmt.Errorf("%w (header=%s, value=%q)", ErrMultipleHeaderValues, headerName, value)
	}

	ip, port := parseIP(value)
	if !ip.IsValid() {
		return fmt.Errorf("%w (header=%s, value=%q)", ErrInvalidHeaderValue, headerName, value)
	}
	ip = normalizeIP(ip)

	if port == "" {
		_, port = parseRemoteAddr(r.RemoteAddr)
	}

	original := r.RemoteAddr
	if port != "" {
		r.RemoteAddr = net.JoinHostPort(ip.String(), port)
	} else {
		r.RemoteAddr = ip.String()
	}

	r.Header.Set(HeaderOriginalFor, original)
	r.Header.Del(headerName)

	return nil
}
