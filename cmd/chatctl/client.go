package main

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

type historyItem struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatReply struct {
	Message       string
	Action        string
	MissingFields []string
	IsComplete    bool
	SessionID     string
	Slot          map[string]any
}

type chatClient struct {
	baseURL    string
	httpClient *http.Client
}

func newChatClient(baseURL string, timeout time.Duration) *chatClient {
	return &chatClient{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *chatClient) Send(
	ctx context.Context,
	domain string,
	sessionID string,
	message string,
	history []historyItem,
	slot map[string]any,
) (chatReply, error) {
	payload := map[string]any{
		"message": message,
		"history": history,
	}
	if sessionID != "" {
		payload["session_id"] = sessionID
	}
	if slot != nil {
		payload[domain] = slot
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return chatReply{}, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/"+domain, bytes.NewReader(body))
	if err != nil {
		return chatReply{}, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.do(req)
	if err != nil {
		return chatReply{}, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return chatReply{}, fmt.Errorf("decode chat response: %w", err)
	}

	var reply chatReply
	decode := []struct {
		key string
		dst any
	}{
		{"message", &reply.Message},
		{"action", &reply.Action},
		{"missing_fields", &reply.MissingFields},
		{"is_complete", &reply.IsComplete},
		{"session_id", &reply.SessionID},
		{domain, &reply.Slot},
	}
	for _, d := range decode {
		v, ok := fields[d.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, d.dst); err != nil {
			return chatReply{}, fmt.Errorf("decode %s: %w", d.key, err)
		}
	}
	return reply, nil
}

func (c *chatClient) Health(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return "", fmt.Errorf("build health request: %w", err)
	}
	raw, err := c.do(req)
	if err != nil {
		return "", err
	}
	var out struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode health response: %w", err)
	}
	return out.Status, nil
}

func (c *chatClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("server returned %d", resp.StatusCode)
	}
	return raw, nil
}
