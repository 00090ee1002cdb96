package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:5123"
	require.Equal(t, "10.0.0.9", ClientIP(req))

	req.Header.Set("X-Real-IP", "192.0.2.7")
	require.Equal(t, "192.0.2.7", ClientIP(req))

	req.Header.Set("X-Forwarded-For", " 203.0.113.4 , 10.0.0.1")
	require.Equal(t, "203.0.113.4", ClientIP(req))

	require.Empty(t, ClientIP(nil))
}

func TestIsMutating(t *testing.T) {
	require.True(t, IsMutating(http.MethodPost))
	require.True(t, IsMutating(http.MethodDelete))
	require.False(t, IsMutating(http.MethodGet))
	require.False(t, IsMutating(http.MethodHead))
}
