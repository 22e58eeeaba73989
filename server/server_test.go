package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	orchestratorx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/agents/orchestrator"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
	extractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/extract"
	"github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/slot"
	statex "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/state"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	sessions := statex.NewSessionStore(statex.NewMemoryStore())
	locker := statex.NewKeyedLocker()
	strategies := []contractx.Strategy{extractx.NewStrategy()}

	var handlers []*Handler
	for _, schema := range []*slot.Schema{slot.Profile(), slot.Sorting()} {
		o, err := orchestratorx.New(schema, sessions, strategies, nil, orchestratorx.Config{Locker: locker})
		if err != nil {
			t.Fatalf("orchestrator.New(%s) error = %v", schema.Domain(), err)
		}
		handlers = append(handlers, NewHandler(o))
	}

	server := httptest.NewServer(NewRouter(Config{
		AllowedOrigins: []string{"http://localhost:4200"},
		RequestTimeout: 5 * time.Second,
	}, handlers...))
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, server *httptest.Server, path string, body any) (int, map[string]any) {
	t.Helper()

	var raw []byte
	switch b := body.(type) {
	case string:
		raw = []byte(b)
	default:
		var err error
		if raw, err = json.Marshal(b); err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}

	resp, err := server.Client().Post(server.URL+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s error = %v", path, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	resp, err := server.Client().Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	defer resp.Body.Close()

	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != http.StatusOK || out["status"] != "ok" {
		t.Fatalf("status=%d body=%#v", resp.StatusCode, out)
	}
}

func TestProfileChatResponseShape(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	status, out := postJSON(t, server, "/chat/profile", map[string]any{
		"message": "My name is Taylor",
		"history": []any{},
		"profile": map[string]any{"full_name": nil, "email": nil, "bio": nil, "is_complete": true},
	})
	if status != http.StatusOK {
		t.Fatalf("status = %d body=%#v", status, out)
	}
	if out["action"] != "request_more_info" || out["is_complete"] != false {
		t.Fatalf("body = %#v", out)
	}
	if !reflect.DeepEqual(out["missing_fields"], []any{"email", "bio"}) {
		t.Fatalf("missing_fields = %#v", out["missing_fields"])
	}
	profile, ok := out["profile"].(map[string]any)
	if !ok {
		t.Fatalf("profile = %#v", out["profile"])
	}
	want := map[string]any{"full_name": "Taylor", "email": nil, "bio": nil, "is_complete": false}
	if !reflect.DeepEqual(profile, want) {
		t.Fatalf("profile = %#v, want %#v", profile, want)
	}
	if id, _ := out["session_id"].(string); id == "" {
		t.Fatal("session_id not generated")
	}
}

func TestSortingChatRoundTrip(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	_, first := postJSON(t, server, "/chat/sorting", map[string]any{
		"message": "Sorter ID is S-100. Tag serial number is TAG-204.",
	})
	if first["action"] != "request_confirmation" {
		t.Fatalf("first = %#v", first)
	}

	_, second := postJSON(t, server, "/chat/sorting", map[string]any{
		"message":    "yes",
		"session_id": first["session_id"],
	})
	if second["action"] != "submit_request" || second["session_id"] != first["session_id"] {
		t.Fatalf("second = %#v", second)
	}
	sorting := second["sorting"].(map[string]any)
	if sorting["sorter_id"] != "S-100" || sorting["tag_serial_no"] != "TAG-204" {
		t.Fatalf("sorting = %#v", sorting)
	}
}

func TestLegacyChatRouteServesProfile(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	status, out := postJSON(t, server, "/chat", map[string]any{"message": "hi"})
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if _, ok := out["profile"]; !ok {
		t.Fatalf("legacy route did not use profile schema: %#v", out)
	}
}

func TestChatToleratesWrongShapes(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	status, out := postJSON(t, server, "/chat/profile", map[string]any{
		"message": "My email is taylor@example.com",
		"history": "not a list",
		"profile": []any{"wrong"},
	})
	if status != http.StatusOK {
		t.Fatalf("status = %d body=%#v", status, out)
	}
	if !reflect.DeepEqual(out["missing_fields"], []any{"full_name", "bio"}) {
		t.Fatalf("missing_fields = %#v", out["missing_fields"])
	}
}

func TestChatRejectsBadRequests(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	status, _ := postJSON(t, server, "/chat/profile", `{"message":`)
	if status != http.StatusBadRequest {
		t.Fatalf("invalid json status = %d", status)
	}

	status, out := postJSON(t, server, "/chat/profile", map[string]any{"message": "   "})
	if status != http.StatusBadRequest || out["error"] == nil {
		t.Fatalf("blank message status=%d body=%#v", status, out)
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	req, err := http.NewRequestWithContext(context.Background(), http.MethodOptions, server.URL+"/chat/profile", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Origin", "http://localhost:4200")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("OPTIONS error = %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:4200" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestDecodeHistorySkipsBadItems(t *testing.T) {
	t.Parallel()

	got := decodeHistory(json.RawMessage(`[{"role":"user","content":"hi"},{"role":"system","content":"x"},{"role":"assistant"},{"role":"Assistant","content":"Hello!"}]`))
	want := []statex.Turn{
		{Role: statex.RoleUser, Content: "hi"},
		{Role: statex.RoleAssistant, Content: "Hello!"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("decodeHistory() = %#v, want %#v", got, want)
	}
}
