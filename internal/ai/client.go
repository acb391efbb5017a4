package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const systemPrompt = "You are a task-management assistant. You help the user manage " +
	"their to-do list through the provided functions. Be concise. Use the functions " +
	"for any request that creates, lists, updates, or deletes tasks; answer in plain " +
	"text otherwise."

type Client struct {
	APIKey  string
	BaseURL string
	Model   string

	httpClient *http.Client
}

func New(apiKey, model string) *Client {
	return &Client{
		APIKey:  apiKey,
		BaseURL: defaultBaseURL,
		Model:   model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SendMessage submits the transcript plus the new user message and the
// tool catalog, and returns the model's text and requested tool calls.
func (c *Client) SendMessage(ctx context.Context, history []Turn, message string, tools []ToolDefinition) (*Reply, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("gemini api key not configured")
	}

	// The model call is the one long-latency operation; make sure it is
	// always bounded even when the caller's context has no deadline.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	contents := make([]geminiContent, 0, len(history)+1)
	for _, turn := range history {
		contents = append(contents, geminiContent{
			Role:  turn.Role,
			Parts: []geminiPart{{Text: turn.Text}},
		})
	}
	contents = append(contents, geminiContent{
		Role:  RoleUser,
		Parts: []geminiPart{{Text: message}},
	})

	reqBody := geminiRequest{
		Contents: contents,
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: systemPrompt}},
		},
	}

	if len(tools) > 0 {
		decls := make([]geminiFunctionDeclaration, len(tools))
		for i, t := range tools {
			decls[i] = geminiFunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			}
		}
		reqBody.Tools = []geminiTool{{FunctionDeclarations: decls}}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.BaseURL, c.Model, c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("api error: %s", parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	reply := &Reply{}
	var textBuilder strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		if part.Text != "" {
			textBuilder.WriteString(part.Text)
		}
		if part.FunctionCall != nil {
			reply.ToolCalls = append(reply.ToolCalls, ToolCall{
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
		}
	}
	reply.Text = strings.TrimSpace(textBuilder.String())

	return reply, nil
}
