package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ExecBuilder renders the builder and executes the resulting statement. The
// command tag is returned so callers can check how many rows were touched.
func ExecBuilder(ctx context.Context, exec Executor, builder squirrel.Sqlizer) (pgconn.CommandTag, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, errors.Wrap(err, "can't build sql query")
	}

	tag, err := exec.Exec(ctx, query, args...)
	return tag, errors.Wrap(err, "error executing sql query")
}

// ForEachRow executes the query and calls fn on every returned row. The rows
// cursor is closed on every exit path.
func ForEachRow(ctx context.Context, exec Executor, query squirrel.Sqlizer,
	fn func(row pgx.CollectableRow) error,
) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return errors.Wrap(err, "can't build sql query")
	}

	rows, err := exec.Query(ctx, sql, args...)
	if err != nil {
		return errors.Wrap(err, "error executing sql query")
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return errors.Wrap(rows.Err(), "error iterating over rows")
}

// SqlToListOfModels executes the query and adapts every row, scanned into
// DBModel by column name, into a Model.
func SqlToListOfModels[DBModel, Model any](ctx context.Context, exec Executor,
	query squirrel.Sqlizer, adapter func(dbModel DBModel) Model,
) ([]Model, error) {
	return SqlToListOfModelsAdapterWithErr(ctx, exec, query, func(dbModel DBModel) (Model, error) {
		return adapter(dbModel), nil
	})
}

func SqlToListOfModelsAdapterWithErr[DBModel, Model any](ctx context.Context, exec Executor,
	query squirrel.Sqlizer, adapter func(dbModel DBModel) (Model, error),
) ([]Model, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "can't build sql query")
	}

	rows, err := exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error executing sql query")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Model, error) {
		dbModel, err := pgx.RowToStructByName[DBModel](row)
		if err != nil {
			var zeroModel Model
			return zeroModel, errors.Wrap(err, fmt.Sprintf("error scanning row to struct %T", dbModel))
		}
		return adapter(dbModel)
	})
}

// NewQueryBuilder returns a statement builder using Postgres placeholders.
func NewQueryBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
