package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/codeforge/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// maxLoggedBodySize is the truncation limit for logged bodies
	maxLoggedBodySize = 1000
	// redactedPlaceholder replaces sensitive values in logged bodies
	redactedPlaceholder = "[REDACTED]"
	// suppressedPlaceholder replaces whole bodies on sensitive routes
	suppressedPlaceholder = "[SUPPRESSED]"
)

// sensitiveFields are JSON field names whose values are never logged
var sensitiveFields = map[string]bool{
	"id_token":      true,
	"token":         true,
	"refresh_token": true,
	"authorization": true,
}

// RequestLogConfig holds configuration for the request/response logging middleware
type RequestLogConfig struct {
	Logger *zap.Logger
	// LogRequestBody enables logging of request bodies
	LogRequestBody bool
	// LogResponseBody enables logging of response bodies
	LogResponseBody bool
	// LogHeaders enables logging of request headers (Authorization redacted)
	LogHeaders bool
	// LogSensitive enables body logging on auth routes. When false the
	// bodies of sensitive routes are suppressed entirely.
	LogSensitive bool
	// ExcludePaths are paths that are not logged at all
	ExcludePaths []string
	// SensitivePathPrefixes are route prefixes whose bodies carry credentials
	SensitivePathPrefixes []string
}

// DefaultRequestLogConfig returns a request logging configuration from
// the application log settings
func DefaultRequestLogConfig(cfg config.LogConfig, logger *zap.Logger) RequestLogConfig {
	excludePaths := cfg.ExcludePaths
	if len(excludePaths) == 0 {
		excludePaths = []string{"/health", "/healthz", "/ready"}
	}
	return RequestLogConfig{
		Logger:                logger,
		LogRequestBody:        cfg.RequestBody,
		LogResponseBody:       cfg.ResponseBody,
		LogHeaders:            cfg.Headers,
		LogSensitive:          cfg.Sensitive,
		ExcludePaths:          excludePaths,
		SensitivePathPrefixes: []string{"/api/v1/auth"},
	}
}

// teeResponseWriter captures the response body while writing it through
type teeResponseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *teeResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *teeResponseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// RequestLog returns a middleware that logs every request and response
// with sensitive data redacted
func RequestLog(cfg RequestLogConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, excluded := range cfg.ExcludePaths {
			if path == excluded {
				c.Next()
				return
			}
		}

		// Ensure a request ID exists even if the RequestID middleware
		// is not installed ahead of us
		requestID := c.GetString("request_id")
		if requestID == "" {
			requestID = c.GetHeader("X-Request-ID")
			if requestID == "" {
				requestID = generateRequestID()
			}
			c.Set("request_id", requestID)
			c.Writer.Header().Set("X-Request-ID", requestID)
		}

		start := time.Now()

		var requestBody []byte
		if cfg.LogRequestBody && c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
			// Replay the body for the handler
			c.Request.Body = io.NopCloser(bytes.NewReader(requestBody))
		}

		var tee *teeResponseWriter
		if cfg.LogResponseBody {
			tee = &teeResponseWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
			c.Writer = tee
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		sensitive := isSensitivePath(path, cfg.SensitivePathPrefixes)

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}

		if query := c.Request.URL.RawQuery; query != "" {
			fields = append(fields, zap.String("query", query))
		}
		if userID := GetJWTUserID(c); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}
		if cfg.LogHeaders {
			fields = append(fields, zap.Any("headers", sanitizeHeaders(c)))
		}
		if cfg.LogRequestBody {
			fields = append(fields, zap.String("request_body", renderBody(requestBody, sensitive, cfg.LogSensitive)))
		}
		if cfg.LogResponseBody && tee != nil {
			fields = append(fields, zap.String("response_body", renderBody(tee.body.Bytes(), sensitive, cfg.LogSensitive)))
		}

		logger := cfg.Logger
		if logger == nil {
			logger = zap.L()
		}

		switch {
		case status >= 500:
			logger.Error("HTTP request", fields...)
		case status >= 400:
			logger.Warn("HTTP request", fields...)
		default:
			logger.Info("HTTP request", fields...)
		}
	}
}

func isSensitivePath(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// renderBody produces the loggable form of a request or response body:
// sensitive routes are suppressed, JSON credential fields redacted,
// binary content replaced with a length marker, and long bodies truncated
func renderBody(body []byte, sensitive, logSensitive bool) string {
	if len(body) == 0 {
		return ""
	}
	if sensitive && !logSensitive {
		return suppressedPlaceholder
	}
	if !utf8.Valid(body) {
		return fmt.Sprintf("<%d bytes>", len(body))
	}

	rendered := string(body)
	if redacted, ok := redactJSON(body); ok {
		rendered = redacted
	}

	if len(rendered) > maxLoggedBodySize {
		rendered = rendered[:maxLoggedBodySize] + "...(truncated)"
	}
	return rendered
}

// redactJSON replaces the values of sensitive fields in a JSON document.
// Returns false if the body is not a JSON object or array.
func redactJSON(body []byte) (string, bool) {
	var parsed interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", false
	}
	switch parsed.(type) {
	case map[string]interface{}, []interface{}:
	default:
		return "", false
	}

	redacted := redactValue(parsed)
	out, err := json.Marshal(redacted)
	if err != nil {
		return "", false
	}
	return string(out), true
}

func redactValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for key, inner := range val {
			if sensitiveFields[strings.ToLower(key)] {
				val[key] = redactedPlaceholder
				continue
			}
			val[key] = redactValue(inner)
		}
		return val
	case []interface{}:
		for i, inner := range val {
			val[i] = redactValue(inner)
		}
		return val
	default:
		return v
	}
}

// sanitizeHeaders returns request headers with credentials removed
func sanitizeHeaders(c *gin.Context) map[string]string {
	headers := make(map[string]string, len(c.Request.Header))
	for name, values := range c.Request.Header {
		if strings.EqualFold(name, "Authorization") || strings.EqualFold(name, "Cookie") {
			headers[name] = redactedPlaceholder
			continue
		}
		headers[name] = strings.Join(values, ", ")
	}
	return headers
}
