// Package submit delivers confirmed slot records to downstream systems.
package submit

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
	qstashx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/pkg/qstash"
)

type Config struct {
	// DatabaseURL enables the Postgres archive when set.
	DatabaseURL string `envconfig:"DATABASE_URL" split_words:"true"`
	// QStashDestination enables QStash delivery when set.
	QStashDestination string `envconfig:"QSTASH_DESTINATION" split_words:"true"`
}

// LogSink only records that a submission happened. Values stay out of the log.
type LogSink struct{}

var _ contractx.SubmissionSink = LogSink{}

func (LogSink) Submit(_ context.Context, sub contractx.Submission) error {
	fields := make([]string, 0, len(sub.Values))
	for name := range sub.Values {
		fields = append(fields, name)
	}
	log.Info().
		Str("domain", sub.Domain).
		Str("session_id", sub.SessionID).
		Strs("fields", fields).
		Time("submitted_at", sub.SubmittedAt).
		Msg("submission received")
	return nil
}

// Multi fans a submission out to every sink and joins their errors.
type Multi []contractx.SubmissionSink

var _ contractx.SubmissionSink = Multi(nil)

func (m Multi) Submit(ctx context.Context, sub contractx.Submission) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Submit(ctx, sub); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// New builds the sink chain from config. The log sink is always present.
// The returned close func releases database handles.
func New(ctx context.Context, cfg Config, qstash *qstashx.Config) (contractx.SubmissionSink, func() error, error) {
	sinks := Multi{LogSink{}}
	closeFn := func() error { return nil }

	if cfg.DatabaseURL != "" {
		archive, err := OpenBunSink(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open submission archive: %w", err)
		}
		sinks = append(sinks, archive)
		closeFn = archive.Close
	}

	if cfg.QStashDestination != "" {
		if qstash == nil {
			return nil, nil, errors.New("qstash config is required for qstash destination")
		}
		client, err := qstashx.NewClient(*qstash)
		if err != nil {
			return nil, nil, fmt.Errorf("create qstash client: %w", err)
		}
		sinks = append(sinks, NewQStashSink(client, cfg.QStashDestination))
	}

	return sinks, closeFn, nil
}
