package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhive/internal/core/id"
)

// stubRows feeds pre-built outbox messages through the pgx.Rows surface
// the relay actually touches.
type stubRows struct {
	pgx.Rows
	msgs []*OutboxMessage
	i    int
}

func (r *stubRows) Next() bool {
	if r.i >= len(r.msgs) {
		return false
	}
	r.i++
	return true
}

func (r *stubRows) Scan(dest ...any) error {
	m := r.msgs[r.i-1]
	*dest[0].(*id.ID) = m.ID
	*dest[1].(*string) = m.EntityType
	*dest[2].(*id.ID) = m.EntityID
	*dest[3].(*id.ID) = m.OrgID
	*dest[4].(*string) = m.EventType
	*dest[5].(*[]byte) = m.Payload
	*dest[6].(*OutboxStatus) = m.Status
	*dest[7].(*int) = m.RetryCount
	*dest[8].(**string) = m.LastError
	*dest[9].(**time.Time) = m.NextRetryAt
	*dest[10].(*time.Time) = m.CreatedAt
	*dest[11].(**time.Time) = m.PublishedAt
	return nil
}

func (r *stubRows) Close()     {}
func (r *stubRows) Err() error { return nil }

// stubTx records every statement run on it so tests can assert that the
// fetch and the status updates share one transaction.
type stubTx struct {
	pgx.Tx
	rows *stubRows
	ops  []string
	exec []string
}

func (t *stubTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	t.ops = append(t.ops, "query")
	return t.rows, nil
}

func (t *stubTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.ops = append(t.ops, "exec")
	t.exec = append(t.exec, sql)
	return pgconn.CommandTag{}, nil
}

func (t *stubTx) Commit(ctx context.Context) error {
	t.ops = append(t.ops, "commit")
	return nil
}

func (t *stubTx) Rollback(ctx context.Context) error {
	t.ops = append(t.ops, "rollback")
	return nil
}

type stubBeginner struct {
	tx     *stubTx
	begun  int
	beginE error
}

func (d *stubBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	d.begun++
	if d.beginE != nil {
		return nil, d.beginE
	}
	return d.tx, nil
}

type captureHandler struct {
	seen   []*OutboxMessage
	failOn string // event type that fails
}

func (h *captureHandler) Handle(ctx context.Context, msg *OutboxMessage) error {
	h.seen = append(h.seen, msg)
	if h.failOn != "" && msg.EventType == h.failOn {
		return errors.New("hub unavailable")
	}
	return nil
}

func pendingMsg(eventType string) *OutboxMessage {
	return &OutboxMessage{
		ID:         id.New(),
		EntityType: "task",
		EntityID:   id.New(),
		OrgID:      id.New(),
		EventType:  eventType,
		Payload:    []byte(`{}`),
		Status:     OutboxStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestOutboxRelayBatchSharesTransaction(t *testing.T) {
	tx := &stubTx{rows: &stubRows{msgs: []*OutboxMessage{
		pendingMsg(EventCreated),
		pendingMsg(EventDeleted),
	}}}
	db := &stubBeginner{tx: tx}
	handler := &captureHandler{}

	relay := NewOutboxRelay(db, 100, handler)
	processed, err := relay.ProcessBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, processed)
	assert.Len(t, handler.seen, 2)
	assert.Equal(t, 1, db.begun)

	// Fetch, both status updates, then commit, all on the one tx. The
	// deferred rollback after commit is a no-op.
	assert.Equal(t, []string{"query", "exec", "exec", "commit", "rollback"}, tx.ops)
	for _, sql := range tx.exec {
		assert.Contains(t, sql, "published_at")
	}
}

func TestOutboxRelayHandlerFailureRecordsRetry(t *testing.T) {
	bad := pendingMsg(EventUpdated)
	good := pendingMsg(EventCreated)
	tx := &stubTx{rows: &stubRows{msgs: []*OutboxMessage{bad, good}}}
	db := &stubBeginner{tx: tx}
	handler := &captureHandler{failOn: EventUpdated}

	relay := NewOutboxRelay(db, 100, handler)
	processed, err := relay.ProcessBatch(context.Background())
	require.NoError(t, err)

	// The failed message is skipped but its retry bookkeeping still lands
	// in the same transaction as the successful publish.
	assert.Equal(t, 1, processed)
	require.Len(t, tx.exec, 2)
	assert.Contains(t, tx.exec[0], "retry_count")
	assert.Contains(t, tx.exec[1], "published_at")
	assert.Equal(t, "commit", tx.ops[len(tx.ops)-2])
}

func TestOutboxRelayBeginFailure(t *testing.T) {
	db := &stubBeginner{beginE: errors.New("pool exhausted")}

	relay := NewOutboxRelay(db, 100, &captureHandler{})
	_, err := relay.ProcessBatch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin outbox batch")
}
