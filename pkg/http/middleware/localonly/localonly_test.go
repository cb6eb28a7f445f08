package localonly

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLoopback(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{addr: "127.0.0.1:51234", want: true},
		{addr: "[::1]:51234", want: true},
		{addr: "[::ffff:127.0.0.1]:80", want: true},
		{addr: "localhost:4000", want: true},
		{addr: "127.0.0.1", want: true},
		{addr: "", want: true},
		{addr: "192.168.1.20:51234", want: false},
		{addr: "127.0.0.2:80", want: false},
		{addr: "[2001:db8::1]:443", want: false},
		{addr: "10.0.0.1", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLoopback(tt.addr))
		})
	}
}

func TestMiddleware(t *testing.T) {
	reached := false
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))

	remote := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	remote.RemoteAddr = "203.0.113.9:40000"
	remote.Header.Set("X-Forwarded-For", "127.0.0.1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, remote)

	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, Code, body["code"])
	assert.Equal(t, "Access Denied", body["error"])

	local := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	local.RemoteAddr = "127.0.0.1:40000"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, local)

	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
}
