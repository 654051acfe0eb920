package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// UnitOfWork wraps a function in a single transaction. Every multi-step
// mutation of the engine (generation, progression, deletion, event
// logging) runs inside one Do call so a failure leaves no partial
// state.
//
// Transactions run at serializable isolation: two sibling fixtures
// finishing concurrently each read the other's row before deciding
// whether to create or fill the shared next-round fixture, and at
// weaker levels both would take the create path. Under serializable
// one of the two commits and the other fails with a serialization
// error the caller can retry.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(exec SQLExecutor) error) error
}

type sqlUnitOfWork struct {
	db *sql.DB
}

func NewUnitOfWork(db *sql.DB) UnitOfWork {
	return &sqlUnitOfWork{db: db}
}

func (u *sqlUnitOfWork) Do(ctx context.Context, fn func(exec SQLExecutor) error) (err error) {
	tx, err := u.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	err = fn(tx)
	return err
}
