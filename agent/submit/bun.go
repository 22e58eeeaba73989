package submit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type submissionRecord struct {
	bun.BaseModel `bun:"table:slot_submissions,alias:ss"`

	ID          int64             `bun:"id,pk,autoincrement"`
	Domain      string            `bun:"domain,notnull"`
	SessionID   string            `bun:"session_id,notnull"`
	SlotValues  map[string]string `bun:"slot_values,type:jsonb,notnull"`
	SubmittedAt time.Time         `bun:"submitted_at,notnull"`
}

func newSubmissionRecord(sub contractx.Submission) *submissionRecord {
	values := make(map[string]string, len(sub.Values))
	for k, v := range sub.Values {
		values[k] = v
	}
	submittedAt := sub.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now()
	}
	return &submissionRecord{
		Domain:      sub.Domain,
		SessionID:   sub.SessionID,
		SlotValues:  values,
		SubmittedAt: submittedAt.UTC(),
	}
}

// BunSink archives submissions in Postgres.
type BunSink struct {
	db *bun.DB
}

var _ contractx.SubmissionSink = (*BunSink)(nil)

// OpenBunSink connects to dsn and makes sure the archive table exists.
func OpenBunSink(ctx context.Context, dsn string) (*BunSink, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	sink := NewBunSink(db)
	if err := sink.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return sink, nil
}

func NewBunSink(db *bun.DB) *BunSink {
	return &BunSink{db: db}
}

func (s *BunSink) ensureSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*submissionRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create slot_submissions table: %w", err)
	}
	return nil
}

func (s *BunSink) Submit(ctx context.Context, sub contractx.Submission) error {
	if _, err := s.db.NewInsert().Model(newSubmissionRecord(sub)).Exec(ctx); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (s *BunSink) Close() error {
	return s.db.Close()
}
