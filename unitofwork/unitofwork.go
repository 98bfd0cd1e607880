/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package unitofwork batches repository mutations into one atomic commit
// against the storage engine.
//
// A UnitOfWork is meant for one logical operation on one goroutine, e.g.
// one inbound request. It holds no internal locking around its pending
// change set; sharing one instance across goroutines is a caller mistake,
// not something this package defends against.
package unitofwork

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/tomoncle/keel/database"
)

// ErrAlreadyDisposed reports an operation attempted on a disposed unit of
// work or on a repository derived from one.
var ErrAlreadyDisposed = errors.New("unitofwork: unit of work has been disposed")

// State is the lifecycle position of a UnitOfWork.
type State int

const (
	StateActive State = iota
	StateCommitted
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateCommitted:
		return "committed"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Operation is one pending mutation, executed inside the commit
// transaction.
type Operation func(ctx context.Context, tx bun.IDB) error

// UnitOfWork accumulates mutations registered by repositories and persists
// them atomically on Commit. Disposal without commit discards everything.
type UnitOfWork struct {
	id       uuid.UUID
	db       *bun.DB
	logger   database.Logger
	pending  []Operation
	disposed bool
	commits  int
}

// Option customizes a UnitOfWork.
type Option func(*UnitOfWork)

// WithLogger overrides the logger used for commit diagnostics.
func WithLogger(logger database.Logger) Option {
	return func(u *UnitOfWork) { u.logger = logger }
}

// New creates an active unit of work over the given Bun database.
func New(db *bun.DB, opts ...Option) *UnitOfWork {
	u := &UnitOfWork{
		id:     uuid.New(),
		db:     db,
		logger: database.GetLogger(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// ID returns the unit's identity, used to correlate log entries.
func (u *UnitOfWork) ID() uuid.UUID { return u.id }

// State reports where the unit is in its lifecycle. A committed unit stays
// usable; only disposal is terminal.
func (u *UnitOfWork) State() State {
	switch {
	case u.disposed:
		return StateDisposed
	case u.commits > 0:
		return StateCommitted
	default:
		return StateActive
	}
}

// Pending returns the number of registered, not yet committed operations.
func (u *UnitOfWork) Pending() int { return len(u.pending) }

// DB exposes the query handle repositories read through. It fails once the
// unit has been disposed.
func (u *UnitOfWork) DB() (bun.IDB, error) {
	if u.disposed {
		return nil, ErrAlreadyDisposed
	}
	return u.db, nil
}

// Register appends a mutation to the pending change set.
func (u *UnitOfWork) Register(op Operation) error {
	if u.disposed {
		return ErrAlreadyDisposed
	}
	u.pending = append(u.pending, op)
	return nil
}

// Commit persists every pending operation in one transaction. An empty
// change set commits successfully without touching storage. A storage
// failure is logged once with full context and returned unchanged; the
// pending set is kept so the caller can inspect it before disposing. No
// retry happens here: callers retry with a fresh unit of work.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.disposed {
		return ErrAlreadyDisposed
	}
	if len(u.pending) == 0 {
		u.commits++
		u.logger.Debug("commit with empty change set", "unit_of_work", u.id.String())
		return nil
	}

	ops := u.pending
	err := u.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, op := range ops {
			if err := op(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		u.logger.Error("commit failed",
			"unit_of_work", u.id.String(),
			"pending", len(ops),
			"fault", database.Classify(err).String(),
			"error", err.Error(),
		)
		return err
	}

	u.pending = nil
	u.commits++
	u.logger.Debug("commit succeeded", "unit_of_work", u.id.String(), "operations", len(ops))
	return nil
}

// CheckOnline probes storage connectivity. It answers "is it reachable",
// so ordinary connectivity failures surface as false, never as an error.
func (u *UnitOfWork) CheckOnline(ctx context.Context) bool {
	if u.disposed || u.db == nil {
		return false
	}
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return u.db.PingContext(ctxTimeout) == nil
}

// Dispose terminates the unit, discarding any uncommitted operations.
// It is idempotent and never fails, so it is safe to run from any deferred
// cleanup path. The shared database handle is not closed here; it belongs
// to the process, not to one unit of work.
func (u *UnitOfWork) Dispose() {
	if u.disposed {
		return
	}
	discarded := len(u.pending)
	u.pending = nil
	u.disposed = true
	if discarded > 0 {
		u.logger.Debug("disposed without commit", "unit_of_work", u.id.String(), "discarded", discarded)
	}
}
