package store

import (
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/relc/internal/ir"
)

// StreamTSV writes result rows as tab-separated text, one row per line,
// columns in result order. NULL renders as the empty field; floats use the
// shortest round-tripping decimal form. This is the stable output format
// shared with the generated runner program.
//
// Returns the number of rows written. The rows are always drained or failed,
// never left half-read; the caller still owns Close.
func StreamTSV(w io.Writer, rows *sql.Rows) (int, error) {
	cols, err := rows.Columns()
	if err != nil {
		return 0, fmt.Errorf("reading result columns: %w", err)
	}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	count := 0
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return count, fmt.Errorf("scanning row %d: %w", count+1, err)
		}
		fields := make([]string, len(values))
		for i, raw := range values {
			v, err := driverValue(raw)
			if err != nil {
				return count, fmt.Errorf("row %d column %q: %w", count+1, cols[i], err)
			}
			fields[i] = ir.Render(v)
		}
		if _, err := fmt.Fprintln(w, strings.Join(fields, "\t")); err != nil {
			return count, err
		}
		count++
	}
	return count, rows.Err()
}

// driverValue converts a database/sql driver value into an ir.Value so row
// output shares the IR's stable rendering.
func driverValue(raw any) (ir.Value, error) {
	switch v := raw.(type) {
	case nil:
		return ir.Null{}, nil
	case []byte:
		return ir.String(string(v)), nil
	case string:
		return ir.String(v), nil
	case int64:
		return ir.Int(v), nil
	case float64:
		return ir.Float(v), nil
	case bool:
		return ir.Bool(v), nil
	default:
		return nil, fmt.Errorf("unsupported driver value type %T", raw)
	}
}
