package submit

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
)

type publisher interface {
	Publish(ctx context.Context, destination string, body []byte) (string, error)
}

// QStashSink publishes each submission as JSON to a QStash destination.
type QStashSink struct {
	client      publisher
	destination string
}

var _ contractx.SubmissionSink = (*QStashSink)(nil)

func NewQStashSink(client publisher, destination string) *QStashSink {
	return &QStashSink{client: client, destination: destination}
}

func (s *QStashSink) Submit(ctx context.Context, sub contractx.Submission) error {
	body, err := sonic.Marshal(sub)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}
	id, err := s.client.Publish(ctx, s.destination, body)
	if err != nil {
		return fmt.Errorf("publish submission: %w", err)
	}
	log.Debug().Str("session_id", sub.SessionID).Str("message_id", id).Msg("submission published")
	return nil
}
