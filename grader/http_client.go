package grader

import "net/http"

// headerTransport injects request metadata into outgoing vision-model
// HTTP calls. Done at the transport layer so per-request headers need
// no changes inside langchaingo's client.
type headerTransport struct {
	base http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	if req != nil {
		meta := RequestMetaFromContext(req.Context())

		// Do not overwrite headers already set by the caller.
		if req.Header.Get("X-Title") == "" {
			req.Header.Set("X-Title", "gradesheet")
		}
		if req.Header.Get("X-Grading-Batch") == "" && meta.BatchID != "" {
			req.Header.Set("X-Grading-Batch", meta.BatchID)
		}
		if req.Header.Get("X-Grading-Page") == "" && meta.PageID != "" {
			req.Header.Set("X-Grading-Page", meta.PageID)
		}
	}

	return base.RoundTrip(req)
}

func createInstrumentedHTTPClient() *http.Client {
	return &http.Client{
		Transport: &headerTransport{base: http.DefaultTransport},
	}
}
