package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/momento/internal/domain"
)

var tracer = otel.Tracer("repository")

// ClientProvider hands out the shared store handle.
type ClientProvider interface {
	Client() (*gorm.DB, error)
}

// TableRepository reads and writes rows of one resource table, decoding them into T.
type TableRepository[T any] struct {
	provider ClientProvider
	def      domain.Definition
}

func NewTableRepository[T any](provider ClientProvider, def domain.Definition) *TableRepository[T] {
	return &TableRepository[T]{provider: provider, def: def}
}

func (r *TableRepository[T]) Select(ctx context.Context, where domain.Fields, limit int) ([]T, error) {
	ctx, span := r.start(ctx, "Table.Repository.Select")
	defer span.End()

	db, err := r.provider.Client()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	tx := db.WithContext(ctx).Table(r.def.Table)
	if len(where) > 0 {
		tx = tx.Where(map[string]any(where))
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	rows, err := tx.Rows()
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrapf(err, "select %s", r.def.Table)
	}
	return r.scan(ctx, db, rows)
}

func (r *TableRepository[T]) Insert(ctx context.Context, values domain.Fields) ([]T, error) {
	ctx, span := r.start(ctx, "Table.Repository.Insert")
	defer span.End()

	db, err := r.provider.Client()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	cols := values.Columns()
	columns := make([]clause.Column, len(cols))
	vars := make([]any, len(cols))
	for i, col := range cols {
		columns[i] = clause.Column{Name: col}
		vars[i] = values[col]
	}

	rows, err := db.WithContext(ctx).
		Raw("INSERT INTO ? (?) VALUES (?) RETURNING *", clause.Table{Name: r.def.Table}, columns, vars).
		Rows()
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrapf(err, "insert %s", r.def.Table)
	}
	return r.scan(ctx, db, rows)
}

func (r *TableRepository[T]) Update(ctx context.Context, where, values domain.Fields) ([]T, error) {
	ctx, span := r.start(ctx, "Table.Repository.Update")
	defer span.End()

	db, err := r.provider.Client()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	rows, err := updateQuery(db.WithContext(ctx), r.def.Table, where, values).Rows()
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrapf(err, "update %s", r.def.Table)
	}
	return r.scan(ctx, db, rows)
}

func (r *TableRepository[T]) Delete(ctx context.Context, where domain.Fields) ([]T, error) {
	ctx, span := r.start(ctx, "Table.Repository.Delete")
	defer span.End()

	db, err := r.provider.Client()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	rows, err := deleteQuery(db.WithContext(ctx), r.def.Table, where).Rows()
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrapf(err, "delete %s", r.def.Table)
	}
	return r.scan(ctx, db, rows)
}

func (r *TableRepository[T]) start(ctx context.Context, name string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, name)
	span.SetAttributes(attribute.String("table", r.def.Table))
	return ctx, span
}

// scan decodes every returned row into T. A row that does not fit T is a DecodingError.
func (r *TableRepository[T]) scan(ctx context.Context, db *gorm.DB, rows *sql.Rows) ([]T, error) {
	defer rows.Close()

	result := []T{}
	for rows.Next() {
		var row T
		if err := db.WithContext(ctx).ScanRows(rows, &row); err != nil {
			return nil, domain.DecodingError{Resource: r.def.Singular, Err: err}
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %s", r.def.Table)
	}
	return result, nil
}

// updateQuery builds UPDATE ... RETURNING *. clause.Set and clause.Where render their
// own SET and WHERE keywords.
func updateQuery(tx *gorm.DB, table string, where, values domain.Fields) *gorm.DB {
	set := make(clause.Set, 0, len(values))
	for _, col := range values.Columns() {
		set = append(set, clause.Assignment{Column: clause.Column{Name: col}, Value: values[col]})
	}
	return tx.Raw("UPDATE ? ? ? RETURNING *", clause.Table{Name: table}, set, whereClause(where))
}

func deleteQuery(tx *gorm.DB, table string, where domain.Fields) *gorm.DB {
	return tx.Raw("DELETE FROM ? ? RETURNING *", clause.Table{Name: table}, whereClause(where))
}

// whereClause ANDs an equality predicate per column.
func whereClause(where domain.Fields) clause.Where {
	exprs := make([]clause.Expression, 0, len(where))
	for _, col := range where.Columns() {
		exprs = append(exprs, clause.Eq{Column: clause.Column{Name: col}, Value: where[col]})
	}
	return clause.Where{Exprs: exprs}
}
