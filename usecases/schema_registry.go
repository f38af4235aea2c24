package usecases

import (
	"context"
	"sync"

	"github.com/easynut/easynut-backend/models"
	"github.com/easynut/easynut-backend/repositories"
	"github.com/easynut/easynut-backend/utils"
)

// SchemaRegistry is the process-wide cache of model configs. Loading a model
// config takes one metadata query plus one field-config query, so every
// operation going back to the database would double its query count; the
// registry loads each config once and hands out copies.
//
// The registry is constructed once and injected everywhere a config is
// needed. Configs never expire: the metadata tables only change through
// Reload, which administrative code calls after editing them.
type SchemaRegistry struct {
	executorGetter   repositories.ExecutorGetter
	schemaRepository repositories.SchemaRepository
	recordRepository repositories.DynamicRecordRepository

	mu        sync.Mutex
	configs   map[int]models.ModelConfig
	allLoaded bool
}

func NewSchemaRegistry(
	executorGetter repositories.ExecutorGetter,
	schemaRepository repositories.SchemaRepository,
	recordRepository repositories.DynamicRecordRepository,
) *SchemaRegistry {
	return &SchemaRegistry{
		executorGetter:   executorGetter,
		schemaRepository: schemaRepository,
		recordRepository: recordRepository,
		configs:          make(map[int]models.ModelConfig),
	}
}

// GetModelConfig returns one model config, loading it on first use.
func (r *SchemaRegistry) GetModelConfig(ctx context.Context, modelId int) (models.ModelConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if config, ok := r.configs[modelId]; ok {
		return config, nil
	}
	if err := r.loadLocked(ctx, modelId); err != nil {
		return models.ModelConfig{}, err
	}
	return r.configs[modelId], nil
}

// LoadAll warms the cache with every declared model. Calling it twice is
// free: the second call returns without touching the database.
func (r *SchemaRegistry) LoadAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.allLoaded {
		return nil
	}
	return r.loadLocked(ctx)
}

// Reload drops the cached configs and fetches fresh ones: all of them when
// called without ids, otherwise just the given models.
func (r *SchemaRegistry) Reload(ctx context.Context, modelIds ...int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(modelIds) == 0 {
		r.configs = make(map[int]models.ModelConfig)
		r.allLoaded = false
		return r.loadLocked(ctx)
	}
	for _, modelId := range modelIds {
		delete(r.configs, modelId)
	}
	return r.loadLocked(ctx, modelIds...)
}

// Snapshot returns a validated, immutable view of the full schema, the unit
// the query planner consumes.
func (r *SchemaRegistry) Snapshot(ctx context.Context) (models.Schema, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.allLoaded {
		if err := r.loadLocked(ctx); err != nil {
			return models.Schema{}, err
		}
	}
	configs := make([]models.ModelConfig, 0, len(r.configs))
	for _, config := range r.configs {
		configs = append(configs, config)
	}
	return models.NewSchema(configs)
}

// BuildSelectSql plans the cross-model query selecting the requested fields,
// joined on patient identity and date.
func (r *SchemaRegistry) BuildSelectSql(ctx context.Context, modelsFields models.QueryFields) (string, error) {
	schema, err := r.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	return schema.BuildSelectSql(modelsFields)
}

// GetRecord materializes one record by primary key, through the cached
// config of its model.
func (r *SchemaRegistry) GetRecord(ctx context.Context, modelId, pk int) (models.DynamicRecord, error) {
	config, err := r.GetModelConfig(ctx, modelId)
	if err != nil {
		return models.DynamicRecord{}, err
	}
	return r.recordRepository.GetRecordByPk(ctx, r.executorGetter.GetExecutor(), config, pk)
}

// GetRecordByMsfId fetches a patient's single record on one model through
// the patient identifier. On models where a patient holds several records,
// use ListRecords instead.
func (r *SchemaRegistry) GetRecordByMsfId(ctx context.Context, modelId int, msfId string) (models.DynamicRecord, error) {
	config, err := r.GetModelConfig(ctx, modelId)
	if err != nil {
		return models.DynamicRecord{}, err
	}
	return r.recordRepository.GetRecordByMsfId(ctx, r.executorGetter.GetExecutor(), config, msfId)
}

// ListRecords returns one patient's records on one model.
func (r *SchemaRegistry) ListRecords(ctx context.Context, modelId int, msfId string) ([]models.DynamicRecord, error) {
	config, err := r.GetModelConfig(ctx, modelId)
	if err != nil {
		return nil, err
	}
	return r.recordRepository.ListRecordsByMsfId(ctx, r.executorGetter.GetExecutor(), config, msfId)
}

// loadLocked fetches configs from the database into the cache. Callers hold
// the mutex; holding it across the query is deliberate, so that concurrent
// misses on the same model produce one load instead of a stampede.
func (r *SchemaRegistry) loadLocked(ctx context.Context, modelIds ...int) error {
	exec := r.executorGetter.GetExecutor()
	configs, err := r.schemaRepository.ListModelConfigs(ctx, exec, modelIds...)
	if err != nil {
		return err
	}
	for _, config := range configs {
		r.configs[config.Id] = config
	}
	if len(modelIds) == 0 {
		r.allLoaded = true
		utils.LoggerFromContext(ctx).DebugContext(ctx, "dynamic schema loaded",
			"models", len(configs))
	}
	return nil
}
