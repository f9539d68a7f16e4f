package edgetrust

import (
	"net/http"
)

// Handler wraps next with the trust decision.
//
// Trusted requests are passed to the configured Rewriter first. Every request
// reaches next, whatever the decision; a rejected header is logged and the
// request continues with its original peer address.
func (g *Gate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.Decide(r).Trusted {
			g.rewrite(r)
		}

		next.ServeHTTP(w, r)
	})
}

func (g *Gate) rewrite(r *http.Request) {
	remoteAddr := r.RemoteAddr
	if err := g.config.rewriter.Rewrite(r, g.config.headerName); err != nil {
		g.config.metrics.RecordRewriteFailure()
		g.config.logger.WarnContext(r.Context(), "forwarded header rejected from trusted peer",
			"header", g.config.headerName,
			"path", requestPath(r),
			"remote_addr", remoteAddr,
			"error", err,
		)
	}
}

func requestPath(r *http.Request) string {
	if r.URL == nil {
		return ""
	}
	return r.URL.Path
}
