package utils

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/itchan-dev/nanashi/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValidate(t *testing.T) {
	type TestStruct struct {
		Field1 string `json:"field1" validate:"required"`
		Field2 int    `json:"field2"`
	}

	tests := []struct {
		name        string
		requestBody string
		expectedErr *errors.ErrorWithStatusCode
	}{
		{"valid", `{"field1": "value", "field2": 123}`, nil},
		{"valid without optional", `{"field1": "value"}`, nil},
		{"invalid json", `{"field1": "value", "field2": 123`, &errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: 400}},
		{"missing required", `{"field2": 123}`, &errors.ErrorWithStatusCode{Message: "Required fields missing", StatusCode: 400}},
		{"empty body", "", &errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: 400}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var target TestStruct
			err := DecodeValidate(io.NopCloser(bytes.NewBufferString(tt.requestBody)), &target)
			if tt.expectedErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.expectedErr, err)
		})
	}
}

func TestWriteErrorAndStatusCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"not found", errors.NotFound("thread"), http.StatusNotFound, "thread not found"},
		{"capacity", errors.CapacityExceeded(1000), http.StatusConflict, "1000"},
		{"rate limited", errors.RateLimited(), http.StatusTooManyRequests, "too fast"},
		{"validation", errors.Validation("title is required"), http.StatusBadRequest, "title is required"},
		{"wrapped status", fmt.Errorf("outer: %w", errors.NotFound("board")), http.StatusNotFound, "board not found"},
		{"storage failure hides cause", errors.Storage("insert response", fmt.Errorf("pq: connection reset")), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteErrorAndStatusCode(rr, tt.err)
			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.wantBody)
			assert.NotContains(t, rr.Body.String(), "pq:")
		})
	}
}

func TestGetIP(t *testing.T) {
	newReq := func(remote string, headers map[string]string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = remote
		for k, v := range headers {
			r.Header.Set(k, v)
		}
		return r
	}
	proxies := MustParseProxies([]string{"10.0.0.0/8", "::1"})

	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		proxies *Proxies
		want    string
	}{
		{"remote addr", "192.0.2.1:5555", nil, proxies, "192.0.2.1"},
		{"headers ignored without trust", "192.0.2.1:5555", map[string]string{"X-Forwarded-For": "198.51.100.9"}, nil, "192.0.2.1"},
		{"headers ignored from untrusted peer", "192.0.2.1:5555", map[string]string{"X-Forwarded-For": "198.51.100.9", "X-Real-IP": "198.51.100.10"}, proxies, "192.0.2.1"},
		{"forwarded by trusted peer", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "198.51.100.9"}, proxies, "198.51.100.9"},
		{"rightmost untrusted hop wins", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "6.6.6.6, 198.51.100.9, 10.0.0.2"}, proxies, "198.51.100.9"},
		{"malformed hop stops the walk", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "198.51.100.9, junk, 203.0.113.7"}, proxies, "203.0.113.7"},
		{"all hops trusted", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "10.0.0.3, 10.0.0.2"}, proxies, "10.0.0.3"},
		{"real ip fallback", "10.0.0.1:80", map[string]string{"X-Real-IP": "203.0.113.5"}, proxies, "203.0.113.5"},
		{"trusted peer without headers", "[::1]:80", nil, proxies, "::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ip, err := GetIP(newReq(tt.remote, tt.headers), tt.proxies)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ip)
		})
	}

	t.Run("garbage remote addr", func(t *testing.T) {
		_, err := GetIP(newReq("not-an-ip", nil), proxies)
		assert.Error(t, err)
	})
}

// The frontend resolves the visitor with its own (empty) trust list and
// forwards the result; the api believes it only because the frontend's
// address is on the api list.
func TestGetIPAcrossFrontendAndAPI(t *testing.T) {
	frontendTrust := MustParseProxies(nil)
	apiTrust := MustParseProxies([]string{"10.0.0.5/32"})

	viaFrontend := func(visitor, forged string) string {
		in := httptest.NewRequest(http.MethodPost, "/threads", nil)
		in.RemoteAddr = visitor
		if forged != "" {
			in.Header.Set("X-Forwarded-For", forged)
		}
		clientIP, err := GetIP(in, frontendTrust)
		require.NoError(t, err)

		out := httptest.NewRequest(http.MethodPost, "/v1/threads", nil)
		out.RemoteAddr = "10.0.0.5:51234"
		out.Header.Set("X-Forwarded-For", clientIP)
		ip, err := GetIP(out, apiTrust)
		require.NoError(t, err)
		return ip
	}

	assert.Equal(t, "203.0.113.1", viaFrontend("203.0.113.1:40000", ""))
	assert.Equal(t, "198.51.100.2", viaFrontend("198.51.100.2:40000", ""))
	assert.Equal(t, "203.0.113.1", viaFrontend("203.0.113.1:40000", "198.51.100.2"), "visitor cannot pick another address")

	t.Run("direct request to the api", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/v1/threads", nil)
		r.RemoteAddr = "203.0.113.1:40000"
		r.Header.Set("X-Forwarded-For", "198.51.100.2")
		ip, err := GetIP(r, apiTrust)
		require.NoError(t, err)
		assert.Equal(t, "203.0.113.1", ip)
	})
}

func TestParseProxies(t *testing.T) {
	p, err := ParseProxies([]string{"127.0.0.1/32", " 192.0.2.7 ", "::1/128"})
	require.NoError(t, err)
	assert.True(t, p.Contains(net.ParseIP("127.0.0.1")))
	assert.True(t, p.Contains(net.ParseIP("192.0.2.7")))
	assert.True(t, p.Contains(net.ParseIP("::1")))
	assert.False(t, p.Contains(net.ParseIP("192.0.2.8")))
	assert.False(t, p.Contains(nil))

	var none *Proxies
	assert.False(t, none.Contains(net.ParseIP("127.0.0.1")))

	for _, bad := range []string{"localhost", "10.0.0.0/33", ""} {
		_, err := ParseProxies([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSON(rr, http.StatusCreated, map[string]int{"res_number": 2})
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"res_number": 2}`, rr.Body.String())
}
