package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/yndnr/refstore/internal/core/domain"
)

// faultEngine is a KVEngine whose Begin and Commit can be made to fail.
type faultEngine struct {
	KVEngine
	beginErr  error
	commitErr error
	discards  int
}

func (e *faultEngine) Begin(ctx context.Context) (KVTxn, error) {
	if e.beginErr != nil {
		return nil, e.beginErr
	}
	txn, err := e.KVEngine.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &faultTxn{KVTxn: txn, engine: e}, nil
}

type faultTxn struct {
	KVTxn
	engine *faultEngine
}

func (t *faultTxn) Commit() error {
	if t.engine.commitErr != nil {
		return t.engine.commitErr
	}
	return t.KVTxn.Commit()
}

func (t *faultTxn) Discard() {
	t.engine.discards++
	t.KVTxn.Discard()
}

func TestTransaction_Commit(t *testing.T) {
	engine := newTestBadger(t)
	ctx := context.Background()

	tx, err := Begin(ctx, engine)
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Discard()

	if tx.State() != TxnCreated {
		t.Errorf("State() = %v, want created", tx.State())
	}
	if tx.ID() == "" {
		t.Error("ID() should not be empty")
	}

	if err := tx.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	if tx.State() != TxnCommitted {
		t.Errorf("State() = %v, want committed", tx.State())
	}

	got, err := engine.Get(ctx, []byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v" {
		t.Errorf("expected v, got %s", got)
	}
}

func TestTransaction_FinishedHandle(t *testing.T) {
	engine := newTestBolt(t)
	ctx := context.Background()

	tx, err := Begin(ctx, engine)
	if err != nil {
		t.Fatal(err)
	}
	if err := tx.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	if err := tx.Commit(); !errors.Is(err, domain.ErrTxnFinished) {
		t.Errorf("second Commit: expected ErrTxnFinished, got %v", err)
	}
	if err := tx.Put([]byte("k"), []byte("v2")); !errors.Is(err, domain.ErrTxnFinished) {
		t.Errorf("Put after Commit: expected ErrTxnFinished, got %v", err)
	}
	if err := tx.Delete([]byte("k")); !errors.Is(err, domain.ErrTxnFinished) {
		t.Errorf("Delete after Commit: expected ErrTxnFinished, got %v", err)
	}

	tx.Discard()
	if tx.State() != TxnCommitted {
		t.Errorf("Discard changed committed state to %v", tx.State())
	}
}

func TestTransaction_DiscardWithoutCommit(t *testing.T) {
	engine := newTestBolt(t)
	ctx := context.Background()

	tx, err := Begin(ctx, engine)
	if err != nil {
		t.Fatal(err)
	}
	if err := tx.Put([]byte("gone"), []byte("v")); err != nil {
		t.Fatal(err)
	}
	tx.Discard()

	if tx.State() != TxnAborted {
		t.Errorf("State() = %v, want aborted", tx.State())
	}
	if _, err := engine.Get(ctx, []byte("gone")); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
	if err := tx.Commit(); !errors.Is(err, domain.ErrTxnFinished) {
		t.Errorf("Commit after Discard: expected ErrTxnFinished, got %v", err)
	}
}

func TestTransaction_BeginFailure(t *testing.T) {
	cause := errors.New("engine busy")
	engine := &faultEngine{KVEngine: newTestBadger(t), beginErr: cause}

	_, err := Begin(context.Background(), engine)
	if !errors.Is(err, domain.ErrTxnBegin) {
		t.Errorf("expected ErrTxnBegin, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped, got %v", err)
	}
}

func TestTransaction_CommitFailure(t *testing.T) {
	cause := errors.New("disk full")
	engine := &faultEngine{KVEngine: newTestBadger(t), commitErr: cause}
	ctx := context.Background()

	tx, err := Begin(ctx, engine)
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Discard()

	if err := tx.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatal(err)
	}

	err = tx.Commit()
	if !errors.Is(err, domain.ErrTxnCommit) || !errors.Is(err, cause) {
		t.Errorf("expected ErrTxnCommit wrapping cause, got %v", err)
	}
	if tx.State() != TxnAborted {
		t.Errorf("State() = %v, want aborted", tx.State())
	}
	if engine.discards != 1 {
		t.Errorf("engine txn discards = %d, want 1", engine.discards)
	}
}

func TestTxnState_String(t *testing.T) {
	tests := map[TxnState]string{
		TxnCreated:   "created",
		TxnCommitted: "committed",
		TxnAborted:   "aborted",
		TxnState(9):  "TxnState(9)",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
