package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"mindcare/internal/entities"

	log "github.com/sirupsen/logrus"
)

// maxVendorBody bounds how much of an upstream response is read.
const maxVendorBody = 4 << 20

// NewHTTPClient returns the client shared by vendor adapters. Per-call deadlines
// come from the caller's context, so the client itself has no Timeout.
func NewHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 10
	transport.IdleConnTimeout = 90 * time.Second
	transport.TLSHandshakeTimeout = 10 * time.Second
	return &http.Client{Transport: transport}
}

// postJSON sends body to url and returns the 2xx response body. When the call
// fails the returned result carries the failure; a nil-failure result means the
// HTTP exchange succeeded and the caller still has to extract the text.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body []byte) ([]byte, entities.VendorResult) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, entities.Failed(entities.FailureTransport, 0, fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, entities.Failed(classifyTransportError(ctx, err), 0, err.Error())
	}
	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			log.Errorf("vendor client: close response body error: %v", errClose)
		}
	}()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxVendorBody))
	if err != nil {
		return nil, entities.Failed(classifyTransportError(ctx, err), resp.StatusCode, fmt.Sprintf("read body: %v", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Debugf("request error, error status: %d, error body: %s", resp.StatusCode, summarize(payload))
		return nil, entities.Failed(entities.FailureStatus, resp.StatusCode, fmt.Sprintf("upstream status %d", resp.StatusCode))
	}
	return payload, entities.VendorResult{StatusCode: resp.StatusCode}
}

func classifyTransportError(ctx context.Context, err error) entities.FailureKind {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return entities.FailureTimeout
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return entities.FailureCanceled
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return entities.FailureTimeout
	}
	return entities.FailureTransport
}

func summarize(b []byte) string {
	const limit = 512
	if len(b) <= limit {
		return string(b)
	}
	return string(b[:limit]) + "..."
}
