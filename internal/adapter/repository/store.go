package repository

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"

	"github.com/eslsoft/traitscore/internal/infrastructure/database"
)

const (
	algorithmsTable = "scoring_algorithms"
	responsesTable  = "assessment_responses"
	resultsTable    = "assessment_results"
)

// store runs ent SQL builders against a dialect driver, or against one of its
// transactions when created by withTx.
type store struct {
	drv     dialect.Driver
	conn    dialect.ExecQuerier
	dialect string
	now     func() time.Time
}

func newStore(drv dialect.Driver) store {
	return store{
		drv:     drv,
		conn:    drv,
		dialect: drv.Dialect(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s store) builder() *sql.DialectBuilder {
	return sql.Dialect(s.dialect)
}

// withTx runs fn on a store bound to a new transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
func (s store) withTx(ctx context.Context, fn func(tx store) error) error {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	txStore := s
	txStore.conn = tx
	if err := fn(txStore); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("%w: rollback: %v", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s store) query(ctx context.Context, q sql.Querier, each func(*sql.Rows) error) error {
	query, args := q.Query()
	rows := &sql.Rows{}
	if err := s.conn.Query(ctx, query, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := each(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s store) exec(ctx context.Context, q sql.Querier) (int64, error) {
	query, args := q.Query()
	var res sql.Result
	if err := s.conn.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// insert runs ins and returns the generated id.
func (s store) insert(ctx context.Context, ins *sql.InsertBuilder) (int64, error) {
	if s.dialect == dialect.Postgres {
		var id int64
		found := false
		err := s.query(ctx, ins.Returning("id"), func(rows *sql.Rows) error {
			found = true
			return rows.Scan(&id)
		})
		if err != nil {
			return 0, err
		}
		if !found {
			return 0, fmt.Errorf("insert returned no id")
		}
		return id, nil
	}
	query, args := ins.Query()
	var res sql.Result
	if err := s.conn.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s store) count(ctx context.Context, sel *sql.Selector) (int64, error) {
	var total int64
	err := s.query(ctx, sel, func(rows *sql.Rows) error { return rows.Scan(&total) })
	return total, err
}

func isUniqueViolation(err error) bool { return database.IsUniqueViolation(err) }
