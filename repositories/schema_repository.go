package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"

	"github.com/easynut/easynut-backend/models"
	"github.com/easynut/easynut-backend/repositories/dbmodels"
)

// SchemaRepository loads the dynamic schema metadata: the models declared in
// "tablas" and, per model, its field configs from "tabla_N_des".
type SchemaRepository interface {
	ListModelConfigs(ctx context.Context, exec Executor, ids ...int) ([]models.ModelConfig, error)
}

type SchemaRepositoryPostgresql struct{}

func (repo SchemaRepositoryPostgresql) ListModelConfigs(
	ctx context.Context, exec Executor, ids ...int,
) ([]models.ModelConfig, error) {
	query := NewQueryBuilder().
		Select(dbmodels.SelectModelConfigColumns...).
		From(models.MetadataTableName).
		OrderBy("registros")
	if len(ids) > 0 {
		query = query.Where(squirrel.Eq{"tabla_id": ids})
	}

	attrsList, err := SqlToListOfModelsAdapterWithErr(ctx, exec, query, dbmodels.AdaptModelConfigAttrs)
	if err != nil {
		return nil, err
	}
	if len(attrsList) == 0 {
		if len(ids) > 0 {
			return nil, errors.Wrapf(models.ErrModelNotFound, "ids %v", ids)
		}
		return nil, errors.Wrap(models.ErrSchemaIntegrity, "no dynamic models found in database")
	}

	configs := make([]models.ModelConfig, 0, len(attrsList))
	for _, attrs := range attrsList {
		fields, err := repo.listFieldConfigs(ctx, exec, attrs.Id)
		if err != nil {
			return nil, err
		}
		config, err := models.NewModelConfig(
			attrs.Id,
			attrs.Name,
			attrs.Position,
			attrs.IsMainTable,
			attrs.IsMainJoinTable,
			attrs.MsfIdFieldId,
			attrs.DateFieldId,
			fields,
		)
		if err != nil {
			return nil, err
		}
		configs = append(configs, config)
	}
	return configs, nil
}

func (repo SchemaRepositoryPostgresql) listFieldConfigs(
	ctx context.Context, exec Executor, modelId int,
) ([]models.FieldConfig, error) {
	fields, err := SqlToListOfModelsAdapterWithErr(
		ctx,
		exec,
		NewQueryBuilder().
			Select(dbmodels.SelectFieldConfigColumns...).
			From(models.ModelFieldsTableName(modelId)).
			OrderBy("pos"),
		dbmodels.AdaptFieldConfig,
	)
	return fields, errors.Wrapf(err, "loading field configs of model %d", modelId)
}
