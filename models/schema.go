package models

import (
	"sort"

	"github.com/cockroachdb/errors"
)

// Schema is a validated, immutable snapshot of all loaded model configs.
// It is the unit the query planner works on: once built, exactly one model is
// the main table and at most one is the main join table.
type Schema struct {
	modelsById map[int]ModelConfig
	order      []int

	mainModelId     int
	mainJoinModelId int
	hasMainJoin     bool
}

// NewSchema validates the loaded configs and fails fast on zero or multiple
// main flags rather than silently picking one.
func NewSchema(configs []ModelConfig) (Schema, error) {
	schema := Schema{
		modelsById: make(map[int]ModelConfig, len(configs)),
		order:      make([]int, 0, len(configs)),
	}

	mainCount := 0
	mainJoinCount := 0
	for _, config := range configs {
		if _, ok := schema.modelsById[config.Id]; ok {
			return Schema{}, errors.Wrapf(ErrSchemaIntegrity, "duplicate model id %d", config.Id)
		}
		schema.modelsById[config.Id] = config
		schema.order = append(schema.order, config.Id)

		if config.IsMainTable {
			mainCount++
			schema.mainModelId = config.Id
		}
		if config.IsMainJoinTable {
			mainJoinCount++
			schema.mainJoinModelId = config.Id
			schema.hasMainJoin = true
		}
	}

	if mainCount != 1 {
		return Schema{}, errors.Wrapf(ErrSchemaIntegrity,
			"expected exactly one main table, found %d", mainCount)
	}
	if mainJoinCount > 1 {
		return Schema{}, errors.Wrapf(ErrSchemaIntegrity,
			"expected at most one main join table, found %d", mainJoinCount)
	}

	sort.Slice(schema.order, func(i, j int) bool {
		a := schema.modelsById[schema.order[i]]
		b := schema.modelsById[schema.order[j]]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.Id < b.Id
	})
	return schema, nil
}

func (s Schema) ModelConfig(modelId int) (ModelConfig, error) {
	config, ok := s.modelsById[modelId]
	if !ok {
		return ModelConfig{}, errors.Wrapf(ErrModelNotFound, "model %d", modelId)
	}
	return config, nil
}

// AllModelConfigs returns every model config, in declared position order.
func (s Schema) AllModelConfigs() []ModelConfig {
	configs := make([]ModelConfig, 0, len(s.order))
	for _, id := range s.order {
		configs = append(configs, s.modelsById[id])
	}
	return configs
}

func (s Schema) MainModelConfig() ModelConfig {
	return s.modelsById[s.mainModelId]
}

func (s Schema) MainJoinModelConfig() (ModelConfig, bool) {
	if !s.hasMainJoin {
		return ModelConfig{}, false
	}
	return s.modelsById[s.mainJoinModelId], true
}
