package helpers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nfaa/webapp/internal/infrastructure/httpserver/helpers"
)

func TestClientIdentifier(t *testing.T) {
	cases := []struct {
		name string
		xff  string
		want string
	}{
		{"absent", "", "anon"},
		{"single", "203.0.113.7", "203.0.113.7"},
		{"first of many", "203.0.113.7, 10.0.0.1, 10.0.0.2", "203.0.113.7"},
		{"trimmed", "  198.51.100.1  ,10.0.0.1", "198.51.100.1"},
		{"blank first", " , 10.0.0.1", "anon"},
		{"arbitrary token", "not-an-ip", "not-an-ip"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			c, _ := newContext(req)
			require.Equal(t, tc.want, helpers.ClientIdentifier(c))
		})
	}
}
