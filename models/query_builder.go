package models

import (
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
)

// QueryFields maps a model id to the field ids a caller wants selected.
type QueryFields map[int][]int

// SortedModelIds returns the requested model ids in ascending order, so that
// query planning is deterministic whatever the map iteration order.
func (q QueryFields) SortedModelIds() []int {
	ids := make([]int, 0, len(q))
	for id := range q {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// BuildSelectSql produces one SELECT statement joining all requested models
// on the shared MSF ID (and, for dated models, on the Date dimension), with
// every column aliased to its data slug. Aliasing is mandatory: campo_2
// exists in every joined table, so bare column access is ambiguous.
func (s Schema) BuildSelectSql(modelsFields QueryFields) (string, error) {
	if len(modelsFields) == 0 {
		return "", ErrEmptyQuerySpec
	}

	modelIds := modelsFields.SortedModelIds()
	for _, modelId := range modelIds {
		if _, err := s.ModelConfig(modelId); err != nil {
			return "", err
		}
	}

	anchor, err := s.resolveAnchor(modelsFields, modelIds)
	if err != nil {
		return "", err
	}
	joinDateSource, hasJoinDateSource := s.resolveJoinDateSource(modelsFields, modelIds, anchor)

	query := squirrel.Select().From(anchor.DataTableName())

	// The join-date source itself joins on MSF ID only: it is the reference
	// the other dated models equate their Date column against.
	if hasJoinDateSource && joinDateSource.Id != anchor.Id {
		sourceMsfId, err := joinDateSource.MsfIdFieldConfig()
		if err != nil {
			return "", err
		}
		anchorMsfId, err := anchor.MsfIdFieldConfig()
		if err != nil {
			return "", err
		}
		query = query.LeftJoin(fmt.Sprintf("%s ON (%s = %s)",
			joinDateSource.DataTableName(),
			sourceMsfId.FullDbColumnName(),
			anchorMsfId.FullDbColumnName()))
	}

	for _, modelId := range modelIds {
		if modelId == anchor.Id || (hasJoinDateSource && modelId == joinDateSource.Id) {
			continue
		}
		config, _ := s.ModelConfig(modelId)
		joinClause, err := config.SqlJoinClause(anchor, joinDateSource, "LEFT JOIN")
		if err != nil {
			return "", err
		}
		query = query.JoinClause(joinClause)
	}

	for _, modelId := range modelIds {
		config, _ := s.ModelConfig(modelId)
		for _, fieldId := range modelsFields[modelId] {
			field, err := config.GetFieldConfig(fieldId)
			if err != nil {
				return "", err
			}
			query = query.Column(fmt.Sprintf("%s AS %q",
				field.FullDbColumnName(), field.DataSlug()))
		}
	}

	anchorMsfId, err := anchor.MsfIdFieldConfig()
	if err != nil {
		return "", err
	}
	query = query.OrderBy(anchorMsfId.FullDbColumnName())
	if dateField, ok := anchor.DateFieldConfig(); ok {
		query = query.OrderBy(dateField.FullDbColumnName())
	} else if hasJoinDateSource {
		if dateField, ok := joinDateSource.DateFieldConfig(); ok {
			query = query.OrderBy(dateField.FullDbColumnName())
		}
	}

	sql, _, err := query.ToSql()
	if err != nil {
		return "", errors.Wrap(err, "can't build dynamic select query")
	}
	return sql, nil
}

// resolveAnchor picks the main model when requested, else falls back to the
// lowest requested model id. The fallback is only meant for ad hoc queries
// that deliberately leave the main table out.
func (s Schema) resolveAnchor(modelsFields QueryFields, sortedIds []int) (ModelConfig, error) {
	if _, ok := modelsFields[s.mainModelId]; ok {
		return s.MainModelConfig(), nil
	}
	return s.ModelConfig(sortedIds[0])
}

// resolveJoinDateSource picks the model supplying the Date dimension: the
// main join model if requested, else the anchor if it is dated, else the
// first requested dated model. Queries across purely non-dated models
// resolve to none, which is fine: they never need the Date equality.
func (s Schema) resolveJoinDateSource(
	modelsFields QueryFields, sortedIds []int, anchor ModelConfig,
) (ModelConfig, bool) {
	if s.hasMainJoin {
		if _, ok := modelsFields[s.mainJoinModelId]; ok {
			config, _ := s.MainJoinModelConfig()
			return config, true
		}
	}
	if anchor.HasDateField() {
		return anchor, true
	}
	for _, modelId := range sortedIds {
		config, _ := s.ModelConfig(modelId)
		if config.HasDateField() {
			return config, true
		}
	}
	return ModelConfig{}, false
}
