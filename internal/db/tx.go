package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"github.com/tauhid97k/voters-info-api/pkg"
)

// ErrTxTimeout marks a transaction that did not finish within its deadline.
var ErrTxTimeout = errors.New("transaction timed out")

// WithTx runs fn inside a transaction bounded by timeout. The transaction is
// committed when fn returns nil and rolled back otherwise. Deadline and
// postgres timeout failures are reported as ErrTxTimeout.
func WithTx(
	ctx context.Context,
	conn Conn,
	timeout time.Duration,
	fn func(ctx context.Context, tx pgx.Tx) error,
) (err error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if err != nil && isTimeout(ctx, err) {
			err = fmt.Errorf("%w: %w", ErrTxTimeout, err)
		}
	}()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(ctx, tx); err != nil {
		// the original error matters more than a failed rollback
		if rollbackErr := tx.Rollback(context.WithoutCancel(ctx)); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			log.Errorf("rollback tx: %s", rollbackErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	return pkg.IsStatementTimeoutError(err)
}
