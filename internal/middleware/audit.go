package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/huangang/venturelink/pkg/logger"
)

const maxAuditBody = 2000

var sensitiveKeys = []string{"password", "newpassword", "otp", "token", "secret", "refresh_token", "access_token"}

// AuditLog writes one structured line per mutating request: who did what on
// which route, and with which (masked) body. Multipart bodies are skipped.
func AuditLog() gin.HandlerFunc {
	log := logger.Component("audit")

	return func(c *gin.Context) {
		method := c.Request.Method
		if method != http.MethodPost && method != http.MethodPut && method != http.MethodPatch && method != http.MethodDelete {
			c.Next()
			return
		}

		var body string
		if c.Request.Body != nil && !strings.HasPrefix(c.ContentType(), "multipart/") {
			raw, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(raw))
			body = string(raw)
			if len(body) > maxAuditBody {
				body = body[:maxAuditBody] + "...[truncated]"
			}
			body = maskSensitiveFields(body)
		}

		c.Next()

		module, action := parseRouteInfo(c.FullPath(), method)
		status := c.Writer.Status()

		evt := log.Info()
		if status >= http.StatusBadRequest {
			evt = log.Warn()
		}
		evt.Str("module", module).
			Str("action", action).
			Str("user_id", GetUserID(c)).
			Str("role", GetRole(c)).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Str("ip", c.ClientIP()).
			Str("body", body).
			Msg("audit")
	}
}

// parseRouteInfo maps "/api/connections/:id/approve" + PUT to
// ("connections", "update").
func parseRouteInfo(fullPath, method string) (module, action string) {
	path := strings.TrimPrefix(fullPath, "/api/")
	module = strings.SplitN(path, "/", 2)[0]
	if module == "" {
		module = "unknown"
	}

	switch method {
	case http.MethodPost:
		action = "create"
	case http.MethodPut, http.MethodPatch:
		action = "update"
	case http.MethodDelete:
		action = "delete"
	default:
		action = strings.ToLower(method)
	}
	return module, action
}

func maskSensitiveFields(body string) string {
	for _, key := range sensitiveKeys {
		body = maskJSONValue(body, key)
	}
	return body
}

// maskJSONValue replaces every string value stored under key (case-insensitive)
// with "***". It is a best-effort scan, not a JSON parser.
func maskJSONValue(body, key string) string {
	needle := "\"" + key + "\""
	from := 0
	for {
		idx := strings.Index(strings.ToLower(body[from:]), needle)
		if idx == -1 {
			return body
		}
		pos := from + idx + len(needle)

		colon := strings.IndexByte(body[pos:], ':')
		if colon == -1 {
			return body
		}
		start := pos + colon + 1
		for start < len(body) && (body[start] == ' ' || body[start] == '\t') {
			start++
		}
		if start >= len(body) || body[start] != '"' {
			from = start
			continue
		}
		end := strings.IndexByte(body[start+1:], '"')
		if end == -1 {
			return body
		}
		body = body[:start+1] + "***" + body[start+1+end:]
		from = start + 5
	}
}
