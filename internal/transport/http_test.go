package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type testHandler struct {
	method string
	userID *string
}

func (h *testHandler) Handle(_ context.Context, companyID string, userID *string, method string, params json.RawMessage) (any, error) {
	h.method = method
	h.userID = userID
	return map[string]string{"company": companyID}, nil
}

type staticResolver struct {
	company string
}

func (r *staticResolver) ResolveCompany(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	return r.company, nil
}

func TestHTTPServer_RPC(t *testing.T) {
	handler := &testHandler{}
	resolver := &staticResolver{company: "company1"}
	server := httptest.NewServer(NewServer(handler, AuthMiddleware(resolver)))
	t.Cleanup(server.Close)

	body := bytes.NewBufferString(`{"jsonrpc":"2.0","method":"list_documents","id":1}`)
	req, err := http.NewRequest(http.MethodPost, server.URL+"/rpc", body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "user1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "list_documents", handler.method)
	require.NotNil(t, handler.userID)
	require.Equal(t, "user1", *handler.userID)
}

func TestHTTPServer_RPC_NoUser(t *testing.T) {
	handler := &testHandler{}
	resolver := &staticResolver{company: "company1"}
	server := httptest.NewServer(NewServer(handler, AuthMiddleware(resolver)))
	t.Cleanup(server.Close)

	body := bytes.NewBufferString(`{"jsonrpc":"2.0","method":"list_documents","id":1}`)
	req, err := http.NewRequest(http.MethodPost, server.URL+"/rpc", body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Nil(t, handler.userID)
}

func TestHTTPServer_Health(t *testing.T) {
	handler := &testHandler{}
	server := httptest.NewServer(NewServer(handler, nil))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
