package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intentions/internal/platform/notify"
	usersservice "intentions/internal/users/service"
	usersstore "intentions/internal/users/store"
)

func newUsersServer(t *testing.T) *Catalog {
	t.Helper()
	svc := usersservice.New(usersstore.NewInMemory(), notify.NewBus())
	return NewCatalog([][]Tool{UserTools(svc)})
}

type rpcResponse struct {
	ID     int `json:"id"`
	Result struct {
		Tools []struct {
			Name        string          `json:"name"`
			InputSchema json.RawMessage `json:"inputSchema"`
		} `json:"tools"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func roundTrip(t *testing.T, c *Catalog, message string) rpcResponse {
	t.Helper()
	s := NewServer(c, "intentions", "test")
	raw, err := json.Marshal(s.HandleMessage(context.Background(), json.RawMessage(message)))
	require.NoError(t, err)
	var resp rpcResponse
	require.NoError(t, json.Unmarshal(raw, &resp), string(raw))
	require.Nil(t, resp.Error, string(raw))
	return resp
}

func TestServerListsCatalog(t *testing.T) {
	c := newUsersServer(t)
	resp := roundTrip(t, c, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)

	var names []string
	for _, tool := range resp.Result.Tools {
		names = append(names, tool.Name)
		assert.Contains(t, string(tool.InputSchema), `"type":"object"`)
	}
	assert.ElementsMatch(t, []string{"list_users", "get_user", "create_user", "update_user", "delete_user"}, names)
}

func TestServerDispatchesCalls(t *testing.T) {
	c := newUsersServer(t)

	resp := roundTrip(t, c, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"create_user","arguments":{"username":"ada","email":"ada@example.com"}}}`)
	require.Len(t, resp.Result.Content, 1)
	assert.False(t, resp.Result.IsError)
	assert.Contains(t, resp.Result.Content[0].Text, `"username": "ada"`)

	resp = roundTrip(t, c, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"get_user","arguments":{"user_id":7}}}`)
	require.Len(t, resp.Result.Content, 1)
	assert.Equal(t, "User not found", resp.Result.Content[0].Text)
}

func TestHTTPHandlerServesToolsList(t *testing.T) {
	srv := httptest.NewServer(HTTPHandler(NewServer(newUsersServer(t), "intentions", "test")))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL,
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode, string(body))
	assert.Contains(t, string(body), `"delete_user"`)
}

func TestServeStdioStopsAtEOF(t *testing.T) {
	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n")
	var out strings.Builder
	err := ServeStdio(context.Background(), NewServer(newUsersServer(t), "intentions", "test"), in, &out, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"list_users"`)
}
