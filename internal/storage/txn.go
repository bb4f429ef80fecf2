package storage

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/refstore/internal/core/domain"
)

// TxnState is the lifecycle state of a Transaction.
type TxnState int

const (
	// TxnCreated means the transaction is open and accepts one write.
	TxnCreated TxnState = iota
	// TxnCommitted is terminal: the write is durable.
	TxnCommitted
	// TxnAborted is terminal: the write was discarded or the commit failed.
	TxnAborted
)

// String returns the state name.
func (s TxnState) String() string {
	switch s {
	case TxnCreated:
		return "created"
	case TxnCommitted:
		return "committed"
	case TxnAborted:
		return "aborted"
	default:
		return fmt.Sprintf("TxnState(%d)", int(s))
	}
}

// Transaction is a single-use handle over one engine transaction.
//
// It is created fresh for each mutation and owned by the goroutine that
// created it. Typical use:
//
//	tx, err := storage.Begin(ctx, engine)
//	if err != nil {
//		return err
//	}
//	defer tx.Discard()
//	if err := tx.Put(key, record); err != nil {
//		return err
//	}
//	return tx.Commit()
type Transaction struct {
	id    ulid.ULID
	txn   KVTxn
	state TxnState
}

// Begin starts a Transaction on engine. Engine failures are returned as
// domain.ErrTxnBegin with the engine error as cause.
func Begin(ctx context.Context, engine KVEngine) (*Transaction, error) {
	txn, err := engine.Begin(ctx)
	if err != nil {
		return nil, domain.ErrTxnBegin.WithCause(err)
	}

	return &Transaction{
		id:    ulid.Make(),
		txn:   txn,
		state: TxnCreated,
	}, nil
}

// ID returns the transaction id, used for log correlation.
func (t *Transaction) ID() string {
	return t.id.String()
}

// State returns the current lifecycle state.
func (t *Transaction) State() TxnState {
	return t.state
}

// Put stages key=value.
func (t *Transaction) Put(key, value []byte) error {
	if t.state != TxnCreated {
		return domain.ErrTxnFinished.WithDetails(t.state.String())
	}
	if err := t.txn.Set(key, value); err != nil {
		return fmt.Errorf("txn %s: put: %w", t.id, err)
	}
	return nil
}

// Delete stages removal of key.
func (t *Transaction) Delete(key []byte) error {
	if t.state != TxnCreated {
		return domain.ErrTxnFinished.WithDetails(t.state.String())
	}
	if err := t.txn.Delete(key); err != nil {
		return fmt.Errorf("txn %s: delete: %w", t.id, err)
	}
	return nil
}

// Commit finalizes the staged write. The handle is finished afterwards
// whether or not the commit succeeded.
func (t *Transaction) Commit() error {
	if t.state != TxnCreated {
		return domain.ErrTxnFinished.WithDetails(t.state.String())
	}

	if err := t.txn.Commit(); err != nil {
		t.state = TxnAborted
		t.txn.Discard()
		return domain.ErrTxnCommit.WithCause(err)
	}

	t.state = TxnCommitted
	return nil
}

// Discard aborts an open transaction. It is a no-op once the transaction
// is committed or aborted.
func (t *Transaction) Discard() {
	if t.state != TxnCreated {
		return
	}
	t.txn.Discard()
	t.state = TxnAborted
}
