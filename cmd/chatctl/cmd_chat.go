package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	actionRequestConfirmation = "request_confirmation"
	actionSubmitRequest       = "submit_request"
)

type chatSession struct {
	client    *chatClient
	domain    string
	sessionID string
	history   []historyItem
	slot      map[string]any
}

// Run reads one message per line until EOF or /quit.
func (s *chatSession) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Chatting about %s. Commands: /reset /state /quit\n", s.domain)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit":
			return nil
		case "/reset":
			s.reset()
			fmt.Fprintln(out, "Session reset.")
			continue
		case "/state":
			s.printState(out)
			continue
		}

		reply, err := s.client.Send(ctx, s.domain, s.sessionID, line, s.history, s.slot)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		s.apply(line, reply)

		fmt.Fprintf(out, "bot> %s\n", reply.Message)
		switch reply.Action {
		case actionRequestConfirmation:
			fmt.Fprintln(out, "[AWAITING CONFIRMATION]")
		case actionSubmitRequest:
			fmt.Fprintln(out, "[SUBMITTED]")
		}
		fmt.Fprintf(out, "session: %s\n", s.sessionID)
	}
}

func (s *chatSession) apply(message string, reply chatReply) {
	s.sessionID = reply.SessionID
	s.slot = reply.Slot
	s.history = append(s.history,
		historyItem{Role: "user", Content: message},
		historyItem{Role: "assistant", Content: reply.Message},
	)
}

func (s *chatSession) reset() {
	s.sessionID = ""
	s.history = nil
	s.slot = nil
}

func (s *chatSession) printState(out io.Writer) {
	sessionID := s.sessionID
	if sessionID == "" {
		sessionID = "(none)"
	}
	fmt.Fprintf(out, "session: %s\n", sessionID)
	if s.slot == nil {
		fmt.Fprintln(out, "slot: {}")
		return
	}
	raw, err := json.MarshalIndent(s.slot, "", "  ")
	if err != nil {
		fmt.Fprintf(out, "slot: %v\n", s.slot)
		return
	}
	fmt.Fprintf(out, "slot: %s\n", raw)
}
