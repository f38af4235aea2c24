package usecases

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/easynut/easynut-backend/models"
	"github.com/easynut/easynut-backend/repositories"
	"github.com/easynut/easynut-backend/utils"
)

// DynamicRecordUsecase covers the record lifecycle on one dynamic model:
// read, search, create, edit, delete. Every operation checks the caller's
// composed permissions before touching the data table.
type DynamicRecordUsecase struct {
	executorGetter   repositories.ExecutorGetter
	registry         *SchemaRegistry
	recordRepository repositories.DynamicRecordRepository
}

func NewDynamicRecordUsecase(
	executorGetter repositories.ExecutorGetter,
	registry *SchemaRegistry,
	recordRepository repositories.DynamicRecordRepository,
) DynamicRecordUsecase {
	return DynamicRecordUsecase{
		executorGetter:   executorGetter,
		registry:         registry,
		recordRepository: recordRepository,
	}
}

func (uc DynamicRecordUsecase) GetRecord(
	ctx context.Context, permissions models.UserPermissions, modelId, pk int,
) (models.DynamicRecord, error) {
	if !permissions.For(modelId).CanView {
		return models.DynamicRecord{}, errors.Wrapf(models.ForbiddenError,
			"view on model %d", modelId)
	}
	config, err := uc.registry.GetModelConfig(ctx, modelId)
	if err != nil {
		return models.DynamicRecord{}, err
	}
	return uc.recordRepository.GetRecordByPk(ctx, uc.executorGetter.GetExecutor(), config, pk)
}

// ListPatientRecords returns one patient's records on one model, most recent
// first when the model is dated.
func (uc DynamicRecordUsecase) ListPatientRecords(
	ctx context.Context, permissions models.UserPermissions, modelId int, msfId string,
) ([]models.DynamicRecord, error) {
	if !permissions.For(modelId).CanView {
		return nil, errors.Wrapf(models.ForbiddenError, "view on model %d", modelId)
	}
	config, err := uc.registry.GetModelConfig(ctx, modelId)
	if err != nil {
		return nil, err
	}
	return uc.recordRepository.ListRecordsByMsfId(ctx, uc.executorGetter.GetExecutor(), config, msfId)
}

// SearchRecords splits the query into whitespace-separated terms and matches
// them all against the model's searchable fields.
func (uc DynamicRecordUsecase) SearchRecords(
	ctx context.Context, permissions models.UserPermissions, modelId int, query string,
) ([]models.DynamicRecord, error) {
	if !permissions.For(modelId).CanView {
		return nil, errors.Wrapf(models.ForbiddenError, "view on model %d", modelId)
	}
	config, err := uc.registry.GetModelConfig(ctx, modelId)
	if err != nil {
		return nil, err
	}
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return nil, errors.Wrap(models.BadParameterError, "empty search query")
	}
	return uc.recordRepository.SearchRecords(ctx, uc.executorGetter.GetExecutor(), config, terms)
}

// CreateRecord inserts a record. On the main model the patient identifier is
// allocated here, inside the same transaction as the insert so two
// registrations cannot race to the same id. On the other models the caller
// supplies an existing patient's identifier, which must be known.
func (uc DynamicRecordUsecase) CreateRecord(
	ctx context.Context, permissions models.UserPermissions,
	modelId int, user string, values map[int]any,
) (models.DynamicRecord, error) {
	if !permissions.For(modelId).CanAdd {
		return models.DynamicRecord{}, errors.Wrapf(models.ForbiddenError,
			"add on model %d", modelId)
	}
	config, err := uc.registry.GetModelConfig(ctx, modelId)
	if err != nil {
		return models.DynamicRecord{}, err
	}
	msfIdField, err := config.MsfIdFieldConfig()
	if err != nil {
		return models.DynamicRecord{}, err
	}

	var record models.DynamicRecord
	err = uc.executorGetter.Transaction(ctx, func(tx repositories.Executor) error {
		recordValues := values
		if config.IsMainTable {
			if _, ok := values[msfIdField.Id]; !ok {
				msfId, err := uc.recordRepository.NextMsfId(ctx, tx, config)
				if err != nil {
					return err
				}
				recordValues = make(map[int]any, len(values)+1)
				for fieldId, value := range values {
					recordValues[fieldId] = value
				}
				recordValues[msfIdField.Id] = msfId
			}
		} else {
			rawMsfId, ok := values[msfIdField.Id]
			if !ok {
				return errors.Wrapf(models.BadParameterError,
					"missing msf id on model %d", modelId)
			}
			msfId, ok := rawMsfId.(string)
			if !ok {
				return errors.Wrapf(models.BadParameterError,
					"msf id is %T, not a string", rawMsfId)
			}
			mainConfig, err := uc.mainModelConfig(ctx)
			if err != nil {
				return err
			}
			exists, err := uc.recordRepository.MsfIdExists(ctx, tx, mainConfig, msfId)
			if err != nil {
				return err
			}
			if !exists {
				return errors.Wrapf(models.ErrRecordNotFound, "unknown msf id %s", msfId)
			}
		}

		pk, err := uc.recordRepository.InsertRecord(ctx, tx, config, user, recordValues)
		if err != nil {
			return err
		}
		record, err = uc.recordRepository.GetRecordByPk(ctx, tx, config, pk)
		return err
	})
	if err != nil {
		return models.DynamicRecord{}, err
	}

	utils.LoggerFromContext(ctx).InfoContext(ctx, "record created",
		"model_id", modelId, "pk", record.Pk, "user", user)
	return record, nil
}

func (uc DynamicRecordUsecase) UpdateRecord(
	ctx context.Context, permissions models.UserPermissions,
	modelId, pk int, user string, values map[int]any,
) (models.DynamicRecord, error) {
	if !permissions.For(modelId).CanEdit {
		return models.DynamicRecord{}, errors.Wrapf(models.ForbiddenError,
			"edit on model %d", modelId)
	}
	config, err := uc.registry.GetModelConfig(ctx, modelId)
	if err != nil {
		return models.DynamicRecord{}, err
	}

	for fieldId := range values {
		field, err := config.GetFieldConfig(fieldId)
		if err != nil {
			return models.DynamicRecord{}, err
		}
		if !field.IsEditable {
			return models.DynamicRecord{}, errors.Wrapf(models.BadParameterError,
				"field %d on model %d is not editable", fieldId, modelId)
		}
	}

	var record models.DynamicRecord
	err = uc.executorGetter.Transaction(ctx, func(tx repositories.Executor) error {
		if err := uc.recordRepository.UpdateRecord(ctx, tx, config, pk, user, values); err != nil {
			return err
		}
		record, err = uc.recordRepository.GetRecordByPk(ctx, tx, config, pk)
		return err
	})
	if err != nil {
		return models.DynamicRecord{}, err
	}

	utils.LoggerFromContext(ctx).InfoContext(ctx, "record updated",
		"model_id", modelId, "pk", pk, "user", user)
	return record, nil
}

func (uc DynamicRecordUsecase) DeleteRecord(
	ctx context.Context, permissions models.UserPermissions, modelId, pk int, user string,
) error {
	if !permissions.For(modelId).CanDelete {
		return errors.Wrapf(models.ForbiddenError, "delete on model %d", modelId)
	}
	config, err := uc.registry.GetModelConfig(ctx, modelId)
	if err != nil {
		return err
	}
	if err := uc.recordRepository.DeleteRecord(ctx, uc.executorGetter.GetExecutor(), config, pk); err != nil {
		return err
	}

	utils.LoggerFromContext(ctx).InfoContext(ctx, "record deleted",
		"model_id", modelId, "pk", pk, "user", user)
	return nil
}

// NextMsfId previews the identifier the next registration would take. The
// authoritative allocation still happens inside CreateRecord's transaction.
func (uc DynamicRecordUsecase) NextMsfId(
	ctx context.Context, permissions models.UserPermissions,
) (string, error) {
	if !permissions.CanLastId {
		return "", errors.Wrap(models.ForbiddenError, "last id lookup")
	}
	mainConfig, err := uc.mainModelConfig(ctx)
	if err != nil {
		return "", err
	}
	return uc.recordRepository.NextMsfId(ctx, uc.executorGetter.GetExecutor(), mainConfig)
}

func (uc DynamicRecordUsecase) mainModelConfig(ctx context.Context) (models.ModelConfig, error) {
	schema, err := uc.registry.Snapshot(ctx)
	if err != nil {
		return models.ModelConfig{}, err
	}
	return schema.MainModelConfig(), nil
}
