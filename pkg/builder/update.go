package builder

import (
	"context"
	"fmt"
	"strings"
)

// Set sets a column value for the UPDATE.
func (q *UpdateQuery[T]) Set(column string, value any) *UpdateQuery[T] {
	return q.SetExpr(column, "?", value)
}

// SetExpr sets a column to an SQL expression evaluated by the database, with
// ? placeholders for args. Expressions may reference the row's current
// values, which keeps read-modify-write updates inside a single statement:
//
//	Update[Counter](db).SetExpr("hits", "hits + ?", 1)
func (q *UpdateQuery[T]) SetExpr(column, expr string, args ...any) *UpdateQuery[T] {
	q.sets = append(q.sets, setClause{Column: column, Expr: expr, Args: args})
	return q
}

// Where adds a WHERE condition.
func (q *UpdateQuery[T]) Where(condition Condition) *UpdateQuery[T] {
	q.where = append(q.where, condition)
	return q
}

// Returning specifies columns to return after update.
func (q *UpdateQuery[T]) Returning(columns ...string) *UpdateQuery[T] {
	q.returning = columns
	return q
}

// ToSQL generates the UPDATE SQL and arguments.
func (q *UpdateQuery[T]) ToSQL() (string, []any, error) {
	if q.table == nil {
		return "", nil, tableErr(q.err)
	}
	if len(q.sets) == 0 {
		return "", nil, fmt.Errorf("no columns to update")
	}

	var sql strings.Builder
	var args []any
	paramNum := 1

	sql.WriteString("UPDATE ")
	sql.WriteString(q.table.Name)
	sql.WriteString(" SET ")

	setClauses := make([]string, len(q.sets))
	for i, set := range q.sets {
		expr, err := rebind(set.Expr, paramNum, len(set.Args))
		if err != nil {
			return "", nil, fmt.Errorf("column %s: %w", set.Column, err)
		}
		setClauses[i] = set.Column + " = " + expr
		args = append(args, set.Args...)
		paramNum += len(set.Args)
	}
	sql.WriteString(strings.Join(setClauses, ", "))

	if len(q.where) > 0 {
		whereSQL, whereArgs, err := NewWhereBuilderWithStart(paramNum, q.where...).Build()
		if err != nil {
			return "", nil, fmt.Errorf("failed to build WHERE clause: %w", err)
		}
		sql.WriteString(" ")
		sql.WriteString(whereSQL)
		args = append(args, whereArgs...)
	}

	if len(q.returning) > 0 {
		sql.WriteString(" RETURNING ")
		sql.WriteString(strings.Join(q.returning, ", "))
	}

	return sql.String(), args, nil
}

// Exec executes the UPDATE query and returns the number of affected rows.
func (q *UpdateQuery[T]) Exec(ctx context.Context) (int64, error) {
	q.returning = nil
	sql, args, err := q.ToSQL()
	if err != nil {
		return 0, err
	}
	return q.db.Exec(ctx, sql, args...)
}

// ExecReturning executes the UPDATE and returns the updated rows.
func (q *UpdateQuery[T]) ExecReturning(ctx context.Context) ([]T, error) {
	if len(q.returning) == 0 {
		q.Returning("*")
	}
	sql, args, err := q.ToSQL()
	if err != nil {
		return nil, err
	}
	return queryAll[T](ctx, q.db.q, q.table, sql, args)
}
