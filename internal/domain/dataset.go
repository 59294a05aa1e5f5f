package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Record is one entity as returned by the API: field name → scalar value.
// The schema is externally defined; the pipeline only touches a few fields.
type Record map[string]interface{}

// ColumnType is the storage type of a dataset column.
type ColumnType string

// Column types, matching the types the lake engine materializes.
const (
	TypeVarchar ColumnType = "VARCHAR"
	TypeDouble  ColumnType = "DOUBLE"
	TypeBigint  ColumnType = "BIGINT"
	TypeBoolean ColumnType = "BOOLEAN"
)

// Column describes one named, typed column of a dataset.
type Column struct {
	Name string
	Type ColumnType
}

// Dataset is an ordered sequence of rows with a uniform column set.
// Each stage owns the dataset it produces; datasets are exchanged by
// value-copy through the partition store, never mutated across stages.
type Dataset struct {
	Columns []Column
	Rows    [][]interface{}
}

// NewDataset creates an empty dataset with the given columns.
func NewDataset(columns ...Column) *Dataset {
	return &Dataset{Columns: columns}
}

// FromRecords builds a dataset from API records. The column set is the
// union of all record keys, sorted for determinism (JSON objects carry no
// ordering). Column types are inferred from the first non-null value;
// columns with mixed or unknown types fall back to VARCHAR.
func FromRecords(records []Record) *Dataset {
	seen := make(map[string]bool)
	var names []string
	for _, r := range records {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	sort.Strings(names)

	columns := make([]Column, len(names))
	for i, name := range names {
		columns[i] = Column{Name: name, Type: inferType(records, name)}
	}

	ds := &Dataset{Columns: columns, Rows: make([][]interface{}, 0, len(records))}
	for _, r := range records {
		row := make([]interface{}, len(columns))
		for i, col := range names {
			row[i] = r[col]
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds
}

func inferType(records []Record, name string) ColumnType {
	for _, r := range records {
		v, ok := r[name]
		if !ok || v == nil {
			continue
		}
		switch v.(type) {
		case float64, float32:
			return TypeDouble
		case int, int32, int64:
			return TypeBigint
		case bool:
			return TypeBoolean
		default:
			return TypeVarchar
		}
	}
	return TypeVarchar
}

// NumRows returns the number of rows in the dataset.
func (d *Dataset) NumRows() int { return len(d.Rows) }

// ColumnNames returns the column names in order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the dataset contains the named column.
func (d *Dataset) HasColumn(name string) bool { return d.ColumnIndex(name) >= 0 }

// AddColumn appends a column filled with a constant value on every row.
func (d *Dataset) AddColumn(name string, typ ColumnType, value interface{}) {
	d.Columns = append(d.Columns, Column{Name: name, Type: typ})
	for i := range d.Rows {
		d.Rows[i] = append(d.Rows[i], value)
	}
}

// Project returns a dataset holding only the named columns, in the given
// order. Unknown columns yield a validation error.
func (d *Dataset) Project(names ...string) (*Dataset, error) {
	idx := make([]int, len(names))
	cols := make([]Column, len(names))
	for i, name := range names {
		j := d.ColumnIndex(name)
		if j < 0 {
			return nil, ErrValidation("unknown column %q", name)
		}
		idx[i] = j
		cols[i] = d.Columns[j]
	}

	out := &Dataset{Columns: cols, Rows: make([][]interface{}, len(d.Rows))}
	for r, row := range d.Rows {
		projected := make([]interface{}, len(idx))
		for i, j := range idx {
			projected[i] = row[j]
		}
		out.Rows[r] = projected
	}
	return out, nil
}

// Filter returns the rows whose named column equals value (after string
// coercion). Used to restrict a full dataset read to one ingestion date.
func (d *Dataset) Filter(name, value string) (*Dataset, error) {
	j := d.ColumnIndex(name)
	if j < 0 {
		return nil, ErrValidation("unknown column %q", name)
	}
	out := &Dataset{Columns: d.Columns}
	for _, row := range d.Rows {
		if CoerceString(row[j]) == value {
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}

// GroupCount groups rows by the given dimension columns and counts group
// membership. Only combinations actually present are emitted, in order of
// first appearance. The count column is appended as BIGINT.
func (d *Dataset) GroupCount(dims []string, countName string) (*Dataset, error) {
	projected, err := d.Project(dims...)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	firstRow := make(map[string][]interface{})
	var order []string

	for _, row := range projected.Rows {
		parts := make([]string, len(row))
		for i, v := range row {
			parts[i] = CoerceString(v)
		}
		key := strings.Join(parts, "\x00")
		if _, ok := counts[key]; !ok {
			order = append(order, key)
			firstRow[key] = row
		}
		counts[key]++
	}

	cols := append(append([]Column{}, projected.Columns...), Column{Name: countName, Type: TypeBigint})
	out := &Dataset{Columns: cols, Rows: make([][]interface{}, 0, len(order))}
	for _, key := range order {
		row := append(append([]interface{}{}, firstRow[key]...), counts[key])
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// CoerceString converts a cell value to text. Null-like values become the
// empty string, which keeps partitions with and without nulls schema-stable.
func CoerceString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
