package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/huangang/venturelink/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestMaskSensitiveFields(t *testing.T) {
	in := `{"email":"a@b.c","password":"hunter2","nested":{"Password": "again"},"otp":"123456"}`
	out := maskSensitiveFields(in)
	require.NotContains(t, out, "hunter2")
	require.NotContains(t, out, "again")
	require.NotContains(t, out, "123456")
	require.Contains(t, out, `"a@b.c"`)
}

func TestMaskSensitiveFields_NonStringValue(t *testing.T) {
	in := `{"token":null,"password":"x"}`
	require.Equal(t, `{"token":null,"password":"***"}`, maskSensitiveFields(in))
}

func TestParseRouteInfo(t *testing.T) {
	module, action := parseRouteInfo("/api/connections/:id/approve", "PUT")
	require.Equal(t, "connections", module)
	require.Equal(t, "update", action)

	module, action = parseRouteInfo("", "DELETE")
	require.Equal(t, "unknown", module)
	require.Equal(t, "delete", action)
}

func TestAuditLog_WritesMaskedLine(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf, zerolog.InfoLevel)
	defer logger.Init("info")

	router := gin.New()
	router.Use(AuditLog())
	router.POST("/api/auth/login", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "success"})
	})
	router.GET("/api/deals", func(c *gin.Context) { c.Status(200) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"email":"x@y.z","password":"s3cret"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/deals", nil)
	router.ServeHTTP(w, req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "reads are not audited")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "auth", entry["module"])
	require.Equal(t, "create", entry["action"])
	require.NotContains(t, entry["body"], "s3cret")
}
