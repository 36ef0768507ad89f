// Package lambda runs an http.Handler behind API Gateway v2 HTTP APIs and
// Lambda function URLs. Each event becomes one *http.Request; the response
// is buffered and returned as a single event, base64-encoded when binary.
package lambda

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"

	"github.com/kbukum/fileproxy/logger"
)

// Adapter converts events to requests for a single handler.
type Adapter struct {
	handler http.Handler
	log     *logger.Logger
}

// New wraps h.
func New(h http.Handler, log *logger.Logger) *Adapter {
	if log == nil {
		log = logger.NewNop()
	}
	return &Adapter{handler: h, log: log.WithComponent("lambda")}
}

// Start hands the adapter to the Lambda runtime. It never returns.
func Start(h http.Handler, log *logger.Logger) {
	awslambda.Start(New(h, log).Invoke)
}

// Invoke serves one event. Handler failures are already encoded in the
// response; only a malformed event returns an error.
func (a *Adapter) Invoke(ctx context.Context, ev events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	req, err := NewRequest(ctx, ev)
	if err != nil {
		a.log.Error("invalid event", logger.Fields(logger.FieldError, err.Error(), "request_id", ev.RequestContext.RequestID))
		return events.APIGatewayV2HTTPResponse{}, err
	}

	w := newResponseWriter()
	a.handler.ServeHTTP(w, req)
	return w.event(), nil
}

// NewRequest builds the request an event describes.
func NewRequest(ctx context.Context, ev events.APIGatewayV2HTTPRequest) (*http.Request, error) {
	path := ev.RawPath
	if path == "" {
		path = "/"
	}
	target := path
	if ev.RawQueryString != "" {
		target += "?" + ev.RawQueryString
	}
	u, err := url.ParseRequestURI(target)
	if err != nil {
		return nil, fmt.Errorf("lambda: parse path %q: %w", target, err)
	}

	body := []byte(ev.Body)
	if ev.IsBase64Encoded {
		body, err = base64.StdEncoding.DecodeString(ev.Body)
		if err != nil {
			return nil, fmt.Errorf("lambda: decode body: %w", err)
		}
	}

	method := ev.RequestContext.HTTP.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("lambda: build request: %w", err)
	}

	for k, v := range ev.Headers {
		req.Header.Set(k, v)
	}
	if len(ev.Cookies) > 0 {
		req.Header.Set("Cookie", strings.Join(ev.Cookies, "; "))
	}
	req.Host = req.Header.Get("Host")
	if req.Host == "" {
		req.Host = ev.RequestContext.DomainName
	}
	if req.Header.Get("X-Forwarded-Proto") == "" {
		req.Header.Set("X-Forwarded-Proto", "https")
	}
	req.URL.Host = req.Host
	req.RequestURI = u.RequestURI()
	req.RemoteAddr = ev.RequestContext.HTTP.SourceIP
	req.ContentLength = int64(len(body))
	return req, nil
}

// responseWriter buffers the whole response.
type responseWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newResponseWriter() *responseWriter {
	return &responseWriter{header: make(http.Header)}
}

func (w *responseWriter) Header() http.Header { return w.header }

func (w *responseWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
}

func (w *responseWriter) Write(p []byte) (int, error) {
	w.WriteHeader(http.StatusOK)
	return w.body.Write(p)
}

// Flush is a no-op; the body is returned in one piece.
func (w *responseWriter) Flush() {}

func (w *responseWriter) event() events.APIGatewayV2HTTPResponse {
	status := w.status
	if status == 0 {
		status = http.StatusOK
	}
	resp := events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    make(map[string]string, len(w.header)),
		Cookies:    w.header.Values("Set-Cookie"),
	}
	for k, v := range w.header {
		if k == "Set-Cookie" {
			continue
		}
		resp.Headers[k] = strings.Join(v, ", ")
	}

	data := w.body.Bytes()
	if isText(w.header.Get("Content-Type"), data) {
		resp.Body = string(data)
	} else {
		resp.Body = base64.StdEncoding.EncodeToString(data)
		resp.IsBase64Encoded = true
	}
	return resp
}

// isText reports whether a body can travel as a plain string.
func isText(contentType string, data []byte) bool {
	if len(data) == 0 {
		return true
	}
	if !utf8.Valid(data) {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return contentType == ""
	}
	switch {
	case strings.HasPrefix(mediaType, "text/"),
		strings.HasSuffix(mediaType, "json"),
		strings.HasSuffix(mediaType, "xml"),
		mediaType == "application/javascript",
		mediaType == "application/x-www-form-urlencoded":
		return true
	}
	return false
}
