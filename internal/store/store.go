// Package store implements the partition store over DuckDB-managed Parquet.
//
// Datasets live as hive-partitioned Parquet trees on the local filesystem
// (e.g. data/bronze/date_request=2024_01_01/...). Reads go through DuckDB's
// read_parquet table function, writes through COPY ... PARTITION_BY.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"brewlake/internal/domain"
)

// Store is a PartitionStore backed by a DuckDB connection pool.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a partition store on the given DuckDB handle.
func New(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// ReadAll reads every partition under datasetPath. When columns are given,
// only those are projected (cheap for row-counting and gold's dimension
// read). Returns StorageNotFoundError when no parquet files exist there.
func (s *Store) ReadAll(ctx context.Context, datasetPath string, columns ...string) (*domain.Dataset, error) {
	if !hasParquetFiles(datasetPath) {
		return nil, domain.ErrStorageNotFound("no data at %s", datasetPath)
	}

	projection := "*"
	if len(columns) > 0 {
		quoted := make([]string, len(columns))
		for i, c := range columns {
			quoted[i] = quoteIdent(c)
		}
		projection = strings.Join(quoted, ", ")
	}

	q := fmt.Sprintf(
		"SELECT %s FROM read_parquet(%s, hive_partitioning = true, union_by_name = true)",
		projection, quoteLiteral(parquetGlob(datasetPath)),
	)

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", datasetPath, err)
	}
	defer rows.Close() //nolint:errcheck

	ds, err := scanDataset(rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", datasetPath, err)
	}
	return ds, nil
}

// CountRows returns the partition's row count without materializing data
// columns. Returns StorageNotFoundError when the partition is absent.
func (s *Store) CountRows(ctx context.Context, partitionPath string) (int64, error) {
	if !hasParquetFiles(partitionPath) {
		return 0, domain.ErrStorageNotFound("no data at %s", partitionPath)
	}

	q := fmt.Sprintf("SELECT count(*) FROM read_parquet(%s)", quoteLiteral(parquetGlob(partitionPath)))
	var n int64
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows at %s: %w", partitionPath, err)
	}
	return n, nil
}

// Write materializes ds under datasetPath, one physical sub-directory per
// distinct partition-key combination. The base directory is created when
// absent; existing sibling partitions are left alone (APPEND mode).
func (s *Store) Write(ctx context.Context, datasetPath string, ds *domain.Dataset, partitionKeys ...string) error {
	if len(ds.Columns) == 0 {
		return domain.ErrValidation("cannot write a dataset with no columns")
	}
	for _, key := range partitionKeys {
		if !ds.HasColumn(key) {
			return domain.ErrValidation("partition key %q is not a dataset column", key)
		}
	}

	if err := os.MkdirAll(datasetPath, 0o755); err != nil {
		return fmt.Errorf("create dataset dir %s: %w", datasetPath, err)
	}

	// Temp tables are connection-scoped, so pin one connection for the
	// whole create/insert/copy sequence.
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close() //nolint:errcheck

	staging := "staging_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	if err := s.createStaging(ctx, conn, staging, ds); err != nil {
		return err
	}
	defer func() {
		_, _ = conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(staging))
	}()

	if err := insertRows(ctx, conn, staging, ds); err != nil {
		return err
	}

	keys := make([]string, len(partitionKeys))
	for i, k := range partitionKeys {
		keys[i] = quoteIdent(k)
	}
	copyStmt := fmt.Sprintf(
		"COPY (SELECT * FROM %s) TO %s (FORMAT PARQUET, PARTITION_BY (%s), APPEND)",
		quoteIdent(staging), quoteLiteral(filepath.ToSlash(datasetPath)), strings.Join(keys, ", "),
	)
	if _, err := conn.ExecContext(ctx, copyStmt); err != nil {
		return fmt.Errorf("write %s: %w", datasetPath, err)
	}

	s.logger.Info("partition write complete",
		"path", datasetPath, "rows", ds.NumRows(), "partition_keys", strings.Join(partitionKeys, ","))
	return nil
}

func (s *Store) createStaging(ctx context.Context, conn *sql.Conn, name string, ds *domain.Dataset) error {
	defs := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		defs[i] = quoteIdent(c.Name) + " " + string(c.Type)
	}
	stmt := fmt.Sprintf("CREATE TEMP TABLE %s (%s)", quoteIdent(name), strings.Join(defs, ", "))
	if _, err := conn.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create staging table: %w", err)
	}
	return nil
}

func insertRows(ctx context.Context, conn *sql.Conn, staging string, ds *domain.Dataset) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ds.Columns)), ", ")
	stmt, err := conn.PrepareContext(ctx,
		fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(staging), placeholders))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck

	for _, row := range ds.Rows {
		args := make([]interface{}, len(row))
		for i, v := range row {
			args[i] = coerceForColumn(v, ds.Columns[i].Type)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
	}
	return nil
}

// coerceForColumn aligns a cell value with its column's declared type, so
// mixed-type JSON feeds don't fail the staging insert.
func coerceForColumn(v interface{}, typ domain.ColumnType) interface{} {
	if v == nil {
		return nil
	}
	switch typ {
	case domain.TypeVarchar:
		return domain.CoerceString(v)
	case domain.TypeDouble:
		switch t := v.(type) {
		case float64:
			return t
		case float32:
			return float64(t)
		case int64:
			return float64(t)
		case int:
			return float64(t)
		case string:
			if f, err := strconv.ParseFloat(t, 64); err == nil {
				return f
			}
			return nil
		default:
			return nil
		}
	case domain.TypeBigint:
		switch t := v.(type) {
		case int64:
			return t
		case int:
			return int64(t)
		case float64:
			return int64(t)
		default:
			return nil
		}
	default:
		return v
	}
}

// scanDataset drains a result set into a Dataset, normalizing driver types.
func scanDataset(rows *sql.Rows) (*domain.Dataset, error) {
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	columns := make([]domain.Column, len(colTypes))
	for i, ct := range colTypes {
		columns[i] = domain.Column{Name: ct.Name(), Type: mapDBType(ct.DatabaseTypeName())}
	}

	ds := &domain.Dataset{Columns: columns}
	for rows.Next() {
		vals := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			vals[i] = normalizeValue(v)
		}
		ds.Rows = append(ds.Rows, vals)
	}
	return ds, rows.Err()
}

func mapDBType(name string) domain.ColumnType {
	switch strings.ToUpper(name) {
	case "DOUBLE", "FLOAT", "REAL":
		return domain.TypeDouble
	case "BIGINT", "INTEGER", "INT", "SMALLINT", "TINYINT", "HUGEINT":
		return domain.TypeBigint
	case "BOOLEAN":
		return domain.TypeBoolean
	default:
		return domain.TypeVarchar
	}
}

func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case int:
		return int64(t)
	case int32:
		return int64(t)
	default:
		return v
	}
}

// parquetGlob returns the recursive parquet glob for a dataset path.
func parquetGlob(path string) string {
	return filepath.ToSlash(filepath.Join(path, "**", "*.parquet"))
}

// hasParquetFiles reports whether any *.parquet file exists under path.
func hasParquetFiles(path string) bool {
	found := false
	_ = filepath.WalkDir(path, func(_ string, d os.DirEntry, err error) error {
		if err != nil || found {
			return filepath.SkipAll
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".parquet") {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
