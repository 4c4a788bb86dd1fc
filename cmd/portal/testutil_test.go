package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// mockServer is a fluent builder for an httptest.Server that checks the
// request line and replies with a canned response.
type mockServer struct {
	t          *testing.T
	handler    http.HandlerFunc
	expectPath string
	expectMeth string
	expectBody string
	expectCode int
}

func newMockServer(t *testing.T) *mockServer {
	t.Helper()
	return &mockServer{t: t}
}

func (m *mockServer) ExpectPath(path string) *mockServer {
	m.expectPath = path
	return m
}

func (m *mockServer) ExpectMethod(method string) *mockServer {
	m.expectMeth = method
	return m
}

func (m *mockServer) ExpectGET() *mockServer  { return m.ExpectMethod(http.MethodGet) }
func (m *mockServer) ExpectPUT() *mockServer  { return m.ExpectMethod(http.MethodPut) }
func (m *mockServer) ExpectPOST() *mockServer { return m.ExpectMethod(http.MethodPost) }

// ExpectJSONBody checks the request body is JSON-equal to body.
func (m *mockServer) ExpectJSONBody(body string) *mockServer {
	m.expectBody = body
	return m
}

// Handler sets a custom handler run after the request checks pass.
func (m *mockServer) Handler(h func(w http.ResponseWriter, r *http.Request)) *mockServer {
	m.handler = h
	return m
}

// RespondJSON replies with v encoded as JSON and status 200.
func (m *mockServer) RespondJSON(v any) *mockServer {
	return m.RespondJSONStatus(http.StatusOK, v)
}

// RespondJSONStatus replies with v encoded as JSON and the given status.
func (m *mockServer) RespondJSONStatus(code int, v any) *mockServer {
	m.expectCode = code
	m.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(m.expectCode)
		if err := json.NewEncoder(w).Encode(v); err != nil {
			m.t.Errorf("failed to encode JSON response: %v", err)
		}
	}
	return m
}

// RespondError replies with a plain-text body.
func (m *mockServer) RespondError(code int, message string) *mockServer {
	m.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
		_, _ = w.Write([]byte(message))
	}
	return m
}

// Build starts the server; close it with defer srv.Close().
func (m *mockServer) Build() *httptest.Server {
	m.t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.expectPath != "" {
			assert.Equal(m.t, m.expectPath, r.URL.Path, "unexpected request path")
		}
		if m.expectMeth != "" {
			assert.Equal(m.t, m.expectMeth, r.Method, "unexpected request method")
		}
		if m.expectBody != "" {
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(m.t, m.expectBody, string(body), "unexpected request body")
		}
		if m.handler != nil {
			m.handler(w, r)
		}
	}))
}

// withServerURL points the commands at url until the test ends.
func withServerURL(t *testing.T, url string) {
	t.Helper()
	old := serverURL
	serverURL = url
	t.Cleanup(func() { serverURL = old })
}
