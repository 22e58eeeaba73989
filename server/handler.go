package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	orchestratorx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/agents/orchestrator"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/slot"
	statex "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/state"
)

const maxRequestBodyBytes = 1 << 20

// Turner runs one dialogue turn for a single schema.
type Turner interface {
	Schema() *slot.Schema
	HandleTurn(ctx context.Context, req orchestratorx.TurnRequest) (orchestratorx.TurnResponse, error)
}

var _ Turner = (*orchestratorx.Orchestrator)(nil)

type Handler struct {
	turner Turner
}

func NewHandler(turner Turner) *Handler {
	return &Handler{turner: turner}
}

func (h *Handler) Domain() string { return h.turner.Schema().Domain() }

// HandleChat serves one turn. Only a body that is not a JSON object or a
// blank message is rejected; every other field of the wrong shape is read
// as absent.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	schema := h.turner.Schema()

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	req := orchestratorx.TurnRequest{
		SessionID: decodeString(raw["session_id"]),
		Message:   decodeString(raw["message"]),
		History:   decodeHistory(raw["history"]),
		Slots:     decodeSlots(raw[schema.Domain()], schema),
	}

	resp, err := h.turner.HandleTurn(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, contractx.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, context.DeadlineExceeded):
			log.Error().Err(err).Str("domain", schema.Domain()).Msg("chat turn timed out")
			writeError(w, http.StatusGatewayTimeout, "request timed out")
		default:
			log.Error().Err(err).Str("domain", schema.Domain()).Msg("chat turn failed")
			writeError(w, http.StatusInternalServerError, "processing error")
		}
		return
	}

	log.Info().
		Str("domain", schema.Domain()).
		Str("session_id", resp.SessionID).
		Str("action", string(resp.Action)).
		Str("source", resp.Source).
		Msg("chat turn")

	writeJSON(w, http.StatusOK, encodeResponse(schema, resp))
}

func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func decodeHistory(raw json.RawMessage) []statex.Turn {
	var items []map[string]any
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}

	turns := make([]statex.Turn, 0, len(items))
	for _, item := range items {
		role, _ := item["role"].(string)
		content, _ := item["content"].(string)
		parsed, err := statex.ParseRole(role)
		if err != nil || strings.TrimSpace(content) == "" {
			continue
		}
		turns = append(turns, statex.Turn{Role: parsed, Content: content})
	}
	return turns
}

// decodeSlots keeps string values of schema fields. is_complete is always
// recomputed and never read.
func decodeSlots(raw json.RawMessage, schema *slot.Schema) slot.Values {
	var obj map[string]any
	if len(raw) == 0 || json.Unmarshal(raw, &obj) != nil {
		return slot.Values{}
	}

	values := slot.Values{}
	for _, name := range schema.RequiredFields() {
		if s, ok := obj[name].(string); ok {
			values[name] = s
		}
	}
	return values
}

func encodeResponse(schema *slot.Schema, resp orchestratorx.TurnResponse) map[string]any {
	slotObj := make(map[string]any, len(schema.RequiredFields())+1)
	for _, name := range schema.RequiredFields() {
		if v, ok := resp.Slots.Values.Get(name); ok {
			slotObj[name] = v
		} else {
			slotObj[name] = nil
		}
	}
	slotObj["is_complete"] = resp.Slots.IsComplete

	missing := resp.MissingFields
	if missing == nil {
		missing = []string{}
	}

	return map[string]any{
		"message":        resp.Message,
		"action":         resp.Action,
		"missing_fields": missing,
		schema.Domain():  slotObj,
		"is_complete":    resp.Slots.IsComplete,
		"session_id":     resp.SessionID,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
