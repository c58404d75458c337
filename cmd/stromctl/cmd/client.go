package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rhuss/strom/pkg/api"
	"github.com/rhuss/strom/pkg/auth/apikey"
)

// client talks to a strom server.
type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// streamResult describes a finished stream.
type streamResult struct {
	SessionID   string
	RequestID   string
	ContentType string
	Bytes       int64
}

// stream opens a stream of kind and copies the body to out as it arrives.
// Metrics streams are opened with GET and take their fields as query
// parameters, all other kinds are POSTed as JSON.
func (c *client) stream(ctx context.Context, kind api.Kind, fields map[string]any, out io.Writer) (*streamResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown stream kind %q", kind)
	}

	endpoint := c.baseURL + "/api/v1/stream/" + string(kind)
	var req *http.Request
	var err error

	if kind == api.KindMetrics {
		q := url.Values{}
		for k, v := range fields {
			q.Set(k, fmt.Sprint(v))
		}
		if len(q) > 0 {
			endpoint += "?" + q.Encode()
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	} else {
		body, merr := json.Marshal(fields)
		if merr != nil {
			return nil, fmt.Errorf("encoding request: %w", merr)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err == nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	res := &streamResult{
		SessionID:   resp.Header.Get("X-Session-ID"),
		RequestID:   resp.Header.Get("X-Request-ID"),
		ContentType: resp.Header.Get("Content-Type"),
	}

	res.Bytes, err = copyChunks(out, resp.Body)
	if err != nil {
		return res, fmt.Errorf("stream interrupted after %d bytes: %w", res.Bytes, err)
	}
	return res, nil
}

// health fetches GET /health.
func (c *client) health(ctx context.Context) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}
	var status map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decoding health response: %w", err)
	}
	return status, nil
}

func (c *client) do(req *http.Request) (*http.Response, error) {
	if c.apiKey != "" {
		req.Header.Set(apikey.Header, c.apiKey)
	}
	hc := c.http
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	return resp, nil
}

// copyChunks copies src to dst without waiting for a full buffer, so
// every chunk is visible as soon as it is read.
func copyChunks(dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, 32*1024)
	var total int64
	for {
		n, err := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			total += int64(w)
			if werr != nil {
				return total, werr
			}
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// responseError turns a non-200 response into an error, using the JSON
// error body when there is one.
func responseError(resp *http.Response) error {
	var body api.ErrorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err := json.Unmarshal(data, &body); err == nil && body.Error != nil {
		msg := fmt.Sprintf("server returned %d: %s", resp.StatusCode, body.Error.Message)
		if body.Error.Param != "" {
			msg += " (param: " + body.Error.Param + ")"
		}
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			msg += ", retry after " + ra + "s"
		}
		return fmt.Errorf("%s", msg)
	}
	return fmt.Errorf("server returned %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}

// parseValue interprets a --data value: integers and booleans keep their
// type, anything else is a string.
func parseValue(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}
