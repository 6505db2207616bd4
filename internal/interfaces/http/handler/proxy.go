package handler

import (
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/codeforge/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	errMissingTargetURL = errors.New("url query parameter is required")
	errInvalidTargetURL = errors.New("target must be an absolute http or https URL")
)

// strippedRequestHeaders are never forwarded upstream; the transport
// re-derives them from the outgoing request
var strippedRequestHeaders = map[string]bool{
	"Host":           true,
	"Connection":     true,
	"Content-Length": true,
	"Content-Md5":    true,
	"Content-Type":   true,
}

// strippedResponseHeaders are dropped from upstream responses so the
// body we write matches the framing gin produces
var strippedResponseHeaders = map[string]bool{
	"Transfer-Encoding": true,
	"Content-Encoding":  true,
	"Content-Length":    true,
}

// ProxyHandler forwards HTTP requests to arbitrary upstream URLs on
// behalf of authenticated clients
type ProxyHandler struct {
	BaseHandler
	client          *http.Client
	maxResponseSize int64
	logger          *zap.Logger
}

// NewProxyHandler creates a proxy handler with its own HTTP client
func NewProxyHandler(cfg config.ProxyConfig, logger *zap.Logger) *ProxyHandler {
	transport := http.DefaultTransport
	if cfg.InsecureSkipVerify {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		transport = t
	}
	return &ProxyHandler{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		maxResponseSize: cfg.MaxResponseSize,
		logger:          logger,
	}
}

// Forward godoc
// @ID           proxyForward
// @Summary      Forward a request
// @Description  Forward the request to the target URL without credentials
// @Tags         proxy
// @Param        url query string true "Target URL (URL-encoded)"
// @Success      200 {string} binary "Upstream response"
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /proxy/forward [get]
// @Router       /proxy/forward [post]
func (h *ProxyHandler) Forward(c *gin.Context) {
	h.forward(c, false)
}

// Direct godoc
// @ID           proxyDirect
// @Summary      Forward a request with credentials
// @Description  Forward the request to the target URL, passing the Authorization header through unchanged
// @Tags         proxy
// @Param        url query string true "Target URL (URL-encoded)"
// @Success      200 {string} binary "Upstream response"
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /proxy/direct [get]
// @Router       /proxy/direct [post]
func (h *ProxyHandler) Direct(c *gin.Context) {
	h.forward(c, true)
}

func (h *ProxyHandler) forward(c *gin.Context, forwardAuth bool) {
	target, err := h.targetURL(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), requestMethod(c), target.String(), c.Request.Body)
	if err != nil {
		h.BadRequest(c, "Failed to build upstream request")
		return
	}
	copyRequestHeaders(req.Header, c.Request.Header, forwardAuth)

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Warn("Proxy request failed",
			zap.String("target", target.Redacted()),
			zap.Error(err),
		)
		h.BadGateway(c, "Upstream request failed")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	for name, values := range resp.Header {
		if strippedResponseHeaders[http.CanonicalHeaderKey(name)] {
			continue
		}
		for _, v := range values {
			c.Writer.Header().Add(name, v)
		}
	}
	c.Status(resp.StatusCode)

	body := io.Reader(resp.Body)
	if h.maxResponseSize > 0 {
		body = io.LimitReader(resp.Body, h.maxResponseSize)
	}
	if _, err := io.Copy(c.Writer, body); err != nil {
		// response already committed, nothing to send back
		h.logger.Warn("Proxy response copy failed",
			zap.String("target", target.Redacted()),
			zap.Error(err),
		)
	}
}

// targetURL parses and validates the url query parameter. Every other
// query parameter except the reserved url/method pair is passed through
// to the target.
func (h *ProxyHandler) targetURL(c *gin.Context) (*url.URL, error) {
	raw := c.Query("url")
	if raw == "" {
		return nil, errMissingTargetURL
	}
	target, err := url.Parse(raw)
	if err != nil || !target.IsAbs() {
		return nil, errInvalidTargetURL
	}
	scheme := strings.ToLower(target.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, errInvalidTargetURL
	}

	query := target.Query()
	for key, values := range c.Request.URL.Query() {
		if key == "url" || key == "method" {
			continue
		}
		for _, v := range values {
			query.Add(key, v)
		}
	}
	target.RawQuery = query.Encode()

	return target, nil
}

// requestMethod returns the upstream method, which the method query
// parameter may override
func requestMethod(c *gin.Context) string {
	if override := c.Query("method"); override != "" {
		return strings.ToUpper(override)
	}
	return c.Request.Method
}

func copyRequestHeaders(dst, src http.Header, forwardAuth bool) {
	for name, values := range src {
		canonical := http.CanonicalHeaderKey(name)
		if strippedRequestHeaders[canonical] {
			continue
		}
		if canonical == "Authorization" && !forwardAuth {
			continue
		}
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}
