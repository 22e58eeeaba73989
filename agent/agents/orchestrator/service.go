package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
	nodex "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/nodes/orchestrator"
	policyx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/policy"
	"github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/slot"
	statex "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/state"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
)

type Config struct {
	// Policy defaults to the standard phrase sets for the schema.
	Policy *policyx.Policy
	// Locker serializes turns per session; it may be shared across domains.
	Locker *statex.KeyedLocker
}

// Orchestrator runs one dialogue turn for a single slot schema.
type Orchestrator struct {
	schema     *slot.Schema
	policy     *policyx.Policy
	sessions   *statex.SessionStore
	strategies []contractx.Strategy
	sink       contractx.SubmissionSink
	locks      *statex.KeyedLocker

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

type TurnRequest struct {
	SessionID string
	Message   string
	History   []statex.Turn
	Slots     slot.Values
}

type TurnResponse struct {
	SessionID            string
	Message              string
	Action               contractx.Action
	MissingFields        []string
	Slots                slot.State
	AwaitingConfirmation bool
	UpdatedFields        []string
	Source               string
	Submitted            bool
}

// New wires an orchestrator. Strategies are tried in order; the last one
// should always succeed, which the pattern strategy does.
func New(
	schema *slot.Schema,
	sessions *statex.SessionStore,
	strategies []contractx.Strategy,
	sink contractx.SubmissionSink,
	cfg Config,
) (*Orchestrator, error) {
	if schema == nil {
		return nil, errors.New("slot schema is required")
	}
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if len(strategies) == 0 {
		return nil, errors.New("at least one extraction strategy is required")
	}

	policy := cfg.Policy
	if policy == nil {
		policy = policyx.New(schema)
	}
	locks := cfg.Locker
	if locks == nil {
		locks = statex.NewKeyedLocker()
	}

	o := &Orchestrator{
		schema:     schema,
		policy:     policy,
		sessions:   sessions,
		strategies: strategies,
		sink:       sink,
		locks:      locks,
		now:        time.Now,
	}

	graphRunner, err := o.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

func (o *Orchestrator) Schema() *slot.Schema { return o.schema }

// HandleTurn resolves the session id, then runs the turn graph while holding
// the per-session lock.
func (o *Orchestrator) HandleTurn(ctx context.Context, req TurnRequest) (TurnResponse, error) {
	sessionID := o.sessions.EnsureID(req.SessionID)
	key := statex.Key{Domain: o.schema.Domain(), ID: sessionID}

	unlock, err := o.locks.Lock(ctx, key.String())
	if err != nil {
		return TurnResponse{}, err
	}
	defer unlock()

	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Message:   req.Message,
		History:   req.History,
		Slots:     req.Slots,
	})
	if err != nil {
		return TurnResponse{}, err
	}

	return TurnResponse{
		SessionID:            out.SessionID,
		Message:              out.Decision.Message,
		Action:               out.Decision.Action,
		MissingFields:        out.Missing,
		Slots:                out.Slots,
		AwaitingConfirmation: out.Decision.AwaitingConfirmation,
		UpdatedFields:        out.Updated,
		Source:               out.Source,
		Submitted:            out.Submitted,
	}, nil
}
