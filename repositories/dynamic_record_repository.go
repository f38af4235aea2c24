package repositories

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/easynut/easynut-backend/models"
)

// MsfIdPadding is the width patient identifiers are zero-padded to. The ids
// are stored as text, so padding keeps lexical and numeric order aligned.
const MsfIdPadding = 6

const searchResultsLimit = 100

type DynamicRecordRepository interface {
	GetRecordByPk(ctx context.Context, exec Executor, config models.ModelConfig, pk int) (models.DynamicRecord, error)
	GetRecordByMsfId(ctx context.Context, exec Executor, config models.ModelConfig, msfId string) (models.DynamicRecord, error)
	ListRecordsByMsfId(ctx context.Context, exec Executor, config models.ModelConfig, msfId string) ([]models.DynamicRecord, error)
	ListAllRecords(ctx context.Context, exec Executor, config models.ModelConfig) ([]models.DynamicRecord, error)
	InsertRecord(ctx context.Context, exec Executor, config models.ModelConfig, user string, values map[int]any) (int, error)
	UpdateRecord(ctx context.Context, exec Executor, config models.ModelConfig, pk int, user string, values map[int]any) error
	DeleteRecord(ctx context.Context, exec Executor, config models.ModelConfig, pk int) error
	NextMsfId(ctx context.Context, exec Executor, config models.ModelConfig) (string, error)
	MsfIdExists(ctx context.Context, exec Executor, config models.ModelConfig, msfId string) (bool, error)
	SearchRecords(ctx context.Context, exec Executor, config models.ModelConfig, terms []string) ([]models.DynamicRecord, error)
	QueryBySlugs(ctx context.Context, exec Executor, schema models.Schema, sqlQuery string) ([]map[models.DataSlug]any, error)
}

type DynamicRecordRepositoryPostgresql struct{}

func (repo DynamicRecordRepositoryPostgresql) GetRecordByPk(
	ctx context.Context, exec Executor, config models.ModelConfig, pk int,
) (models.DynamicRecord, error) {
	records, err := repo.listRecords(ctx, exec, config,
		repo.selectRecords(config).Where(squirrel.Eq{models.PkDbColumnName: pk}))
	if err != nil {
		return models.DynamicRecord{}, err
	}
	if len(records) == 0 {
		return models.DynamicRecord{}, errors.Wrapf(models.ErrRecordNotFound,
			"model %d pk %d", config.Id, pk)
	}
	return records[0], nil
}

// GetRecordByMsfId returns the single record a patient has on one model.
// Several records for one identifier mean the caller wanted
// ListRecordsByMsfId, so that case is an error rather than a silent pick.
func (repo DynamicRecordRepositoryPostgresql) GetRecordByMsfId(
	ctx context.Context, exec Executor, config models.ModelConfig, msfId string,
) (models.DynamicRecord, error) {
	msfIdField, err := config.MsfIdFieldConfig()
	if err != nil {
		return models.DynamicRecord{}, err
	}
	records, err := repo.listRecords(ctx, exec, config,
		repo.selectRecords(config).Where(squirrel.Eq{msfIdField.DbColumnName(): msfId}))
	if err != nil {
		return models.DynamicRecord{}, err
	}
	if len(records) == 0 {
		return models.DynamicRecord{}, errors.Wrapf(models.ErrRecordNotFound,
			"model %d msf id %s", config.Id, msfId)
	}
	if len(records) > 1 {
		return models.DynamicRecord{}, errors.Newf(
			"expected one record for msf id %s on model %d, got %d", msfId, config.Id, len(records))
	}
	return records[0], nil
}

// ListRecordsByMsfId returns all of a patient's records on one model, most
// recent first when the model is dated.
func (repo DynamicRecordRepositoryPostgresql) ListRecordsByMsfId(
	ctx context.Context, exec Executor, config models.ModelConfig, msfId string,
) ([]models.DynamicRecord, error) {
	msfIdField, err := config.MsfIdFieldConfig()
	if err != nil {
		return nil, err
	}
	orderBy, err := config.OrderByColumns()
	if err != nil {
		return nil, err
	}
	return repo.listRecords(ctx, exec, config,
		repo.selectRecords(config).
			Where(squirrel.Eq{msfIdField.DbColumnName(): msfId}).
			OrderBy(orderBy...))
}

// ListAllRecords streams the whole data table of one model, in the model's
// canonical order. Exports are the only caller.
func (repo DynamicRecordRepositoryPostgresql) ListAllRecords(
	ctx context.Context, exec Executor, config models.ModelConfig,
) ([]models.DynamicRecord, error) {
	orderBy, err := config.OrderByColumns()
	if err != nil {
		return nil, err
	}
	return repo.listRecords(ctx, exec, config, repo.selectRecords(config).OrderBy(orderBy...))
}

func (repo DynamicRecordRepositoryPostgresql) InsertRecord(
	ctx context.Context, exec Executor, config models.ModelConfig, user string, values map[int]any,
) (int, error) {
	columns := []string{fmt.Sprintf("%q", models.UserDbColumnName)}
	args := []any{user}
	for _, fieldId := range sortedFieldIds(values) {
		field, err := config.GetFieldConfig(fieldId)
		if err != nil {
			return 0, err
		}
		dbValue, err := field.ToDbValue(values[fieldId])
		if err != nil {
			return 0, errors.Wrapf(err, "model %d field %d", config.Id, fieldId)
		}
		columns = append(columns, field.DbColumnName())
		args = append(args, dbValue)
	}

	sql, sqlArgs, err := NewQueryBuilder().
		Insert(config.DataTableName()).
		Columns(columns...).
		Values(args...).
		Suffix("RETURNING " + models.PkDbColumnName).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "can't build sql query")
	}

	var pk int
	if err := exec.QueryRow(ctx, sql, sqlArgs...).Scan(&pk); err != nil {
		return 0, errors.Wrapf(err, "inserting record on model %d", config.Id)
	}
	return pk, nil
}

func (repo DynamicRecordRepositoryPostgresql) UpdateRecord(
	ctx context.Context, exec Executor, config models.ModelConfig, pk int, user string, values map[int]any,
) error {
	query := NewQueryBuilder().
		Update(config.DataTableName()).
		Set(fmt.Sprintf("%q", models.UserDbColumnName), user).
		Where(squirrel.Eq{models.PkDbColumnName: pk})
	for _, fieldId := range sortedFieldIds(values) {
		field, err := config.GetFieldConfig(fieldId)
		if err != nil {
			return err
		}
		dbValue, err := field.ToDbValue(values[fieldId])
		if err != nil {
			return errors.Wrapf(err, "model %d field %d", config.Id, fieldId)
		}
		query = query.Set(field.DbColumnName(), dbValue)
	}

	tag, err := ExecBuilder(ctx, exec, query)
	if err != nil {
		return errors.Wrapf(err, "updating record %d on model %d", pk, config.Id)
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(models.ErrRecordNotFound, "model %d pk %d", config.Id, pk)
	}
	return nil
}

func (repo DynamicRecordRepositoryPostgresql) DeleteRecord(
	ctx context.Context, exec Executor, config models.ModelConfig, pk int,
) error {
	tag, err := ExecBuilder(ctx, exec, NewQueryBuilder().
		Delete(config.DataTableName()).
		Where(squirrel.Eq{models.PkDbColumnName: pk}))
	if err != nil {
		return errors.Wrapf(err, "deleting record %d on model %d", pk, config.Id)
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(models.ErrRecordNotFound, "model %d pk %d", config.Id, pk)
	}
	return nil
}

// NextMsfId allocates the next patient identifier on the given model, which
// in practice is always the main model. Identifiers are text, so the current
// maximum is parsed back to an integer before incrementing.
func (repo DynamicRecordRepositoryPostgresql) NextMsfId(
	ctx context.Context, exec Executor, config models.ModelConfig,
) (string, error) {
	msfIdField, err := config.MsfIdFieldConfig()
	if err != nil {
		return "", err
	}
	sql, args, err := NewQueryBuilder().
		Select(fmt.Sprintf("MAX(%s)", msfIdField.DbColumnName())).
		From(config.DataTableName()).
		ToSql()
	if err != nil {
		return "", errors.Wrap(err, "can't build sql query")
	}

	var currentMax pgtype.Text
	if err := exec.QueryRow(ctx, sql, args...).Scan(&currentMax); err != nil {
		return "", errors.Wrapf(err, "reading max msf id on model %d", config.Id)
	}
	next := 1
	if currentMax.Valid && currentMax.String != "" {
		current, err := strconv.Atoi(currentMax.String)
		if err != nil {
			return "", errors.Wrapf(models.ErrSchemaIntegrity,
				"non numeric msf id %q on model %d", currentMax.String, config.Id)
		}
		next = current + 1
	}
	return fmt.Sprintf("%0*d", MsfIdPadding, next), nil
}

func (repo DynamicRecordRepositoryPostgresql) MsfIdExists(
	ctx context.Context, exec Executor, config models.ModelConfig, msfId string,
) (bool, error) {
	msfIdField, err := config.MsfIdFieldConfig()
	if err != nil {
		return false, err
	}
	sql, args, err := NewQueryBuilder().
		Select("COUNT(*)").
		From(config.DataTableName()).
		Where(squirrel.Eq{msfIdField.DbColumnName(): msfId}).
		ToSql()
	if err != nil {
		return false, errors.Wrap(err, "can't build sql query")
	}

	var count int
	if err := exec.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return false, errors.Wrapf(err, "checking msf id on model %d", config.Id)
	}
	return count > 0, nil
}

// SearchRecords matches every term against every searchable field of the
// model: terms combine with AND, fields with OR. Models with no searchable
// field return no results rather than scanning everything.
func (repo DynamicRecordRepositoryPostgresql) SearchRecords(
	ctx context.Context, exec Executor, config models.ModelConfig, terms []string,
) ([]models.DynamicRecord, error) {
	if len(terms) == 0 {
		return nil, errors.Wrap(models.BadParameterError, "empty search terms")
	}

	var searchable []models.FieldConfig
	for _, field := range config.Fields {
		if field.HasFind {
			searchable = append(searchable, field)
		}
	}
	if len(searchable) == 0 {
		return nil, nil
	}

	orderBy, err := config.OrderByColumns()
	if err != nil {
		return nil, err
	}
	query := repo.selectRecords(config).
		OrderBy(orderBy...).
		Limit(searchResultsLimit)
	for _, term := range terms {
		matchAnyField := squirrel.Or{}
		for _, field := range searchable {
			matchAnyField = append(matchAnyField,
				squirrel.ILike{field.DbColumnName() + "::TEXT": "%" + term + "%"})
		}
		query = query.Where(matchAnyField)
	}
	return repo.listRecords(ctx, exec, config, query)
}

// QueryBySlugs runs a cross-model query whose columns are aliased to data
// slugs, and returns one slug-to-typed-value map per row. The query carries
// no placeholders: it comes straight out of the schema's sql builder.
func (repo DynamicRecordRepositoryPostgresql) QueryBySlugs(
	ctx context.Context, exec Executor, schema models.Schema, sqlQuery string,
) ([]map[models.DataSlug]any, error) {
	rows, err := exec.Query(ctx, sqlQuery)
	if err != nil {
		return nil, errors.Wrap(err, "error executing sql query")
	}
	defer rows.Close()

	var results []map[models.DataSlug]any
	for rows.Next() {
		rawValues, err := rows.Values()
		if err != nil {
			return nil, errors.Wrap(err, "error reading row values")
		}

		result := make(map[models.DataSlug]any, len(rawValues))
		for i, description := range rows.FieldDescriptions() {
			slug := models.DataSlug(description.Name)
			modelId, fieldId, err := slug.Split()
			if err != nil {
				return nil, err
			}
			config, err := schema.ModelConfig(modelId)
			if err != nil {
				return nil, err
			}
			field, err := config.GetFieldConfig(fieldId)
			if err != nil {
				return nil, err
			}
			value, err := field.FromDbValue(rawValues[i])
			if err != nil {
				return nil, errors.Wrapf(err, "column %s", slug)
			}
			result[slug] = value
		}
		results = append(results, result)
	}
	return results, errors.Wrap(rows.Err(), "error iterating over rows")
}

// sortedFieldIds fixes the column order of generated DML statements.
func sortedFieldIds(values map[int]any) []int {
	fieldIds := make([]int, 0, len(values))
	for fieldId := range values {
		fieldIds = append(fieldIds, fieldId)
	}
	sort.Ints(fieldIds)
	return fieldIds
}

func (repo DynamicRecordRepositoryPostgresql) selectRecords(config models.ModelConfig) squirrel.SelectBuilder {
	return NewQueryBuilder().Select("*").From(config.DataTableName())
}

func (repo DynamicRecordRepositoryPostgresql) listRecords(
	ctx context.Context, exec Executor, config models.ModelConfig, query squirrel.SelectBuilder,
) ([]models.DynamicRecord, error) {
	var records []models.DynamicRecord
	err := ForEachRow(ctx, exec, query, func(row pgx.CollectableRow) error {
		rawValues, err := row.Values()
		if err != nil {
			return errors.Wrap(err, "error reading row values")
		}
		rawRow := make(map[string]any, len(rawValues))
		for i, description := range row.FieldDescriptions() {
			rawRow[description.Name] = rawValues[i]
		}
		record, err := models.NewDynamicRecordFromRow(config, rawRow)
		if err != nil {
			return err
		}
		records = append(records, record)
		return nil
	})
	return records, err
}
