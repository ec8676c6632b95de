package groq

import (
	"context"
	"net/http"
)

type statusKey struct{}

// withStatus makes singleAttemptTransport record the response status in dst.
func withStatus(ctx context.Context, dst *int) context.Context {
	return context.WithValue(ctx, statusKey{}, dst)
}

// singleAttemptTransport reports 500 and 503 responses as 502 Bad Gateway.
// groq-go resends a chat completion without limit on 500 and 503; with the
// rewrite every Complete call makes exactly one request.
type singleAttemptTransport struct {
	base http.RoundTripper
}

func (t *singleAttemptTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if dst, ok := req.Context().Value(statusKey{}).(*int); ok {
		*dst = resp.StatusCode
	}
	if resp.StatusCode == http.StatusInternalServerError || resp.StatusCode == http.StatusServiceUnavailable {
		resp.StatusCode = http.StatusBadGateway
		resp.Status = "502 Bad Gateway"
	}
	return resp, nil
}
