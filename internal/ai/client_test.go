package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTools() []ToolDefinition {
	return []ToolDefinition{{
		Name:        "create_task",
		Description: "Create a task",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{"type": "string"},
			},
		},
	}}
}

func newTestClient(srv *httptest.Server) *Client {
	c := New("test-key", "gemini-2.5-flash")
	c.BaseURL = srv.URL
	return c
}

func TestSendMessageText(t *testing.T) {
	var gotReq geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": "Hello there."}},
				},
				"finishReason": "STOP",
			}},
		})
	}))
	defer srv.Close()

	c := newTestClient(srv)
	history := []Turn{
		{Role: RoleUser, Text: "hi"},
		{Role: RoleModel, Text: "hello"},
	}

	reply, err := c.SendMessage(context.Background(), history, "how are you?", testTools())
	require.NoError(t, err)
	assert.Equal(t, "Hello there.", reply.Text)
	assert.Empty(t, reply.ToolCalls)

	// History plus the new message went over the wire, with the catalog.
	require.Len(t, gotReq.Contents, 3)
	assert.Equal(t, "user", gotReq.Contents[0].Role)
	assert.Equal(t, "model", gotReq.Contents[1].Role)
	assert.Equal(t, "how are you?", gotReq.Contents[2].Parts[0].Text)
	require.Len(t, gotReq.Tools, 1)
	require.Len(t, gotReq.Tools[0].FunctionDeclarations, 1)
	assert.Equal(t, "create_task", gotReq.Tools[0].FunctionDeclarations[0].Name)
	require.NotNil(t, gotReq.SystemInstruction)
}

func TestSendMessageFunctionCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role": "model",
					"parts": []map[string]any{
						{"text": "On it."},
						{"functionCall": map[string]any{
							"name": "create_task",
							"args": map[string]any{"title": "Buy milk", "priority": "Low"},
						}},
					},
				},
				"finishReason": "STOP",
			}},
		})
	}))
	defer srv.Close()

	reply, err := newTestClient(srv).SendMessage(context.Background(), nil, "add buy milk", testTools())
	require.NoError(t, err)

	assert.Equal(t, "On it.", reply.Text)
	require.Len(t, reply.ToolCalls, 1)
	assert.Equal(t, "create_task", reply.ToolCalls[0].Name)
	assert.Equal(t, "Buy milk", reply.ToolCalls[0].Args["title"])
	assert.Equal(t, "Low", reply.ToolCalls[0].Args["priority"])
}

func TestSendMessageUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"code":503,"message":"overloaded"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).SendMessage(context.Background(), nil, "hi", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestSendMessageNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).SendMessage(context.Background(), nil, "hi", nil)
	assert.Error(t, err)
}

func TestSendMessageRequiresKey(t *testing.T) {
	c := New("", "gemini-2.5-flash")
	_, err := c.SendMessage(context.Background(), nil, "hi", nil)
	assert.Error(t, err)
}
