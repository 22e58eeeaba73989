package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/slot"
)

var (
	ErrNilSession    = errors.New("session is nil")
	ErrInvalidDomain = errors.New("session domain is empty")
	ErrInvalidRole   = errors.New("invalid turn role")
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func ParseRole(raw string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(raw))); r {
	case RoleUser, RoleAssistant:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, raw)
	}
}

// Turn is one transcript entry. Turns are append-only.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Key identifies a session within one domain. The same opaque id used on two
// domains addresses two independent sessions.
type Key struct {
	Domain string
	ID     string
}

func (k Key) String() string { return k.Domain + ":" + k.ID }

func (k Key) validate() error {
	if strings.TrimSpace(k.Domain) == "" {
		return ErrInvalidDomain
	}
	if strings.TrimSpace(k.ID) == "" {
		return ErrInvalidSession
	}
	return nil
}

// Session is the server-side memory of one conversation. It is replaced as a
// whole once per turn.
type Session struct {
	ID                   string      `json:"id"`
	Domain               string      `json:"domain"`
	Transcript           []Turn      `json:"transcript"`
	Slots                slot.Values `json:"slots"`
	AwaitingConfirmation bool        `json:"awaiting_confirmation"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

func NewSession(key Key, now time.Time) *Session {
	return &Session{
		ID:         key.ID,
		Domain:     key.Domain,
		Transcript: []Turn{},
		Slots:      slot.Values{},
		UpdatedAt:  now.UTC(),
	}
}

func (s *Session) Key() Key { return Key{Domain: s.Domain, ID: s.ID} }

func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// Append adds a user turn and the assistant reply it produced.
func (s *Session) Append(userMessage, reply string) {
	s.Transcript = append(s.Transcript,
		Turn{Role: RoleUser, Content: userMessage},
		Turn{Role: RoleAssistant, Content: reply},
	)
}

func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Transcript = append([]Turn(nil), s.Transcript...)
	out.Slots = s.Slots.Clone()
	return &out
}

func (s *Session) Validate() error {
	if s == nil {
		return ErrNilSession
	}
	if err := s.Key().validate(); err != nil {
		return err
	}
	for i, t := range s.Transcript {
		if _, err := ParseRole(string(t.Role)); err != nil {
			return fmt.Errorf("turn %d: %w", i, err)
		}
	}
	return nil
}

// LastTurns returns at most n trailing turns; n <= 0 returns all of them.
func LastTurns(turns []Turn, n int) []Turn {
	if n <= 0 || len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}
