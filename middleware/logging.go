package middleware

import (
	"bytes"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"atelier-backend/pkg/log"
)

type LoggerConfig struct {
	// SkipPaths lists url paths that are never logged.
	SkipPaths []string

	// EnableRequestBody and EnableResponseBody include the request or
	// response body in the log entry. Only honored by
	// DetailedLoggingMiddleware.
	EnableRequestBody  bool
	EnableResponseBody bool

	// MaxBodySize caps how much of a body is logged. Defaults to 4096 bytes.
	MaxBodySize int
}

type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// LoggingMiddleware logs one structured entry per request. The entry level
// follows the response status, server errors log at error level.
func (m *middlewares) LoggingMiddleware(config ...LoggerConfig) gin.HandlerFunc {
	var conf LoggerConfig
	if len(config) > 0 {
		conf = config[0]
	}

	skipPaths := make(map[string]bool, len(conf.SkipPaths))
	for _, path := range conf.SkipPaths {
		skipPaths[path] = true
	}

	return func(c *gin.Context) {
		if skipPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		fields := requestFields(c, time.Since(start))
		m.logByStatus(c.Writer.Status(), "http request", fields)
	}
}

// DetailedLoggingMiddleware is LoggingMiddleware plus request and response
// body capture. Meant for non-production environments, bodies can carry
// credentials and PII.
func (m *middlewares) DetailedLoggingMiddleware(config LoggerConfig) gin.HandlerFunc {
	if config.MaxBodySize == 0 {
		config.MaxBodySize = 4096
	}

	skipPaths := make(map[string]bool, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skipPaths[path] = true
	}

	return func(c *gin.Context) {
		if skipPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()

		var requestBody []byte
		if config.EnableRequestBody && c.Request.Body != nil {
			requestBody, _ = io.ReadAll(io.LimitReader(c.Request.Body, int64(config.MaxBodySize)))
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(requestBody), c.Request.Body))
		}

		var responseBody *bytes.Buffer
		if config.EnableResponseBody {
			responseBody = &bytes.Buffer{}
			c.Writer = &bodyLogWriter{
				ResponseWriter: c.Writer,
				body:           responseBody,
			}
		}

		c.Next()

		fields := requestFields(c, time.Since(start))

		if config.EnableRequestBody && len(requestBody) > 0 {
			fields = append(fields, log.String("request_body", string(requestBody)))
		}
		if config.EnableResponseBody && responseBody != nil {
			body := responseBody.String()
			if len(body) > config.MaxBodySize {
				body = body[:config.MaxBodySize] + "...[truncated]"
			}
			fields = append(fields, log.String("response_body", body))
		}

		m.logByStatus(c.Writer.Status(), "http request", fields)
	}
}

func (m *middlewares) logByStatus(status int, msg string, fields []log.Field) {
	switch {
	case status >= 500:
		m.logger.Error(msg, fields...)
	case status >= 400:
		m.logger.Warn(msg, fields...)
	default:
		m.logger.Info(msg, fields...)
	}
}

func requestFields(c *gin.Context, latency time.Duration) []log.Field {
	if latency > time.Minute {
		latency = latency.Truncate(time.Second)
	}

	path := c.Request.URL.Path
	if raw := c.Request.URL.RawQuery; raw != "" {
		path = path + "?" + raw
	}

	fields := []log.Field{
		log.String("method", c.Request.Method),
		log.String("path", path),
		log.Int("status_code", c.Writer.Status()),
		log.Duration("latency", latency),
		log.String("client_ip", c.ClientIP()),
		log.String("user_agent", c.Request.UserAgent()),
		log.Int("response_size", c.Writer.Size()),
	}

	if requestID := c.GetString("request_id"); requestID != "" {
		fields = append(fields, log.String("request_id", requestID))
	}
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(string); ok {
			fields = append(fields, log.String("user_id", id))
		}
	}
	if len(c.Errors) > 0 {
		msgs := make([]string, len(c.Errors))
		for i, err := range c.Errors {
			msgs[i] = err.Error()
		}
		fields = append(fields, log.Any("errors", msgs))
	}

	return fields
}

// RequestIDMiddleware tags every request with an id, honoring one supplied
// by the caller so ids survive proxy hops.
func (m *middlewares) RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}
