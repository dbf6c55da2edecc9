package builder

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/marshallshelly/bazaar/pkg/runtime"
	"github.com/marshallshelly/bazaar/pkg/schema"
)

// scanIntoStruct scans the current row into dest by matching result
// column names against the table's column metadata.
func scanIntoStruct(rows pgx.Rows, dest any, table *schema.TableMetadata) error {
	destValue := reflect.ValueOf(dest)
	if destValue.Kind() != reflect.Ptr || destValue.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("dest must be a pointer to struct")
	}
	destValue = destValue.Elem()

	fieldDescriptions := rows.FieldDescriptions()
	scanTargets := make([]any, len(fieldDescriptions))

	for i, fd := range fieldDescriptions {
		col := table.GetColumnByName(fd.Name)
		if col == nil {
			var discard any
			scanTargets[i] = &discard
			continue
		}
		field := destValue.FieldByName(col.GoField)
		if !field.IsValid() || !field.CanSet() {
			var discard any
			scanTargets[i] = &discard
			continue
		}
		scanTargets[i] = field.Addr().Interface()
	}

	if err := rows.Scan(scanTargets...); err != nil {
		return fmt.Errorf("failed to scan row: %w", err)
	}
	return nil
}

// queryAll runs sql and scans every row into a T.
func queryAll[T any](ctx context.Context, q Querier, table *schema.TableMetadata, sql string, args []any) ([]T, error) {
	if q == nil {
		return nil, runtime.ErrNoConnection
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []T
	for rows.Next() {
		var item T
		if err := scanIntoStruct(rows, &item, table); err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	// Constraint violations on RETURNING statements surface here rather than
	// from Query itself.
	if err := rows.Err(); err != nil {
		return nil, runtime.WrapError(sql, err)
	}
	return results, nil
}

// structToValues converts a struct to column names and values. Zero-valued
// fields whose column has a database default are omitted so the default applies.
func structToValues(model any, table *schema.TableMetadata) ([]string, []any, error) {
	modelValue := reflect.ValueOf(model)
	if modelValue.Kind() == reflect.Ptr {
		modelValue = modelValue.Elem()
	}
	if modelValue.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be a struct")
	}

	var columns []string
	var values []any

	for _, col := range table.Columns {
		field := modelValue.FieldByName(col.GoField)
		if !field.IsValid() {
			continue
		}

		if col.Default != nil && field.IsZero() {
			continue
		}

		columns = append(columns, col.Name)
		values = append(values, field.Interface())
	}

	return columns, values, nil
}
