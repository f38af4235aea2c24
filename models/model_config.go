package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/guregu/null/v5"
)

// Physical table names of the dynamic schema. MetadataTableName lists the
// models themselves; each model then owns a data table and a field-config
// table derived from its id.
const MetadataTableName = "tablas"

func ModelDataTableName(modelId int) string {
	return fmt.Sprintf("tabla_%d", modelId)
}

func ModelFieldsTableName(modelId int) string {
	return fmt.Sprintf("tabla_%d_des", modelId)
}

// Fixed columns present in every data table, next to the dynamic campo_N
// columns.
const (
	PkDbColumnName        = "_id"
	UserDbColumnName      = "user"
	TimestampDbColumnName = "timestamp"
)

// ModelConfig describes one dynamic model: its metadata row plus the ordered
// collection of its field configs. Constructed once per model id via
// NewModelConfig and immutable afterwards.
type ModelConfig struct {
	Id       int
	Name     string
	Position int

	// IsMainTable marks the anchor model all searches and joins key off.
	// Exactly one loaded model carries it.
	IsMainTable bool

	// IsMainJoinTable marks the model supplying the default "Date" dimension
	// for joins. At most one loaded model carries it.
	IsMainJoinTable bool

	// MsfIdFieldId points at the field holding the cross-model patient
	// identifier. DateFieldId is optional: purely categorical models have no
	// date dimension, which is a normal state and not an error.
	MsfIdFieldId int
	DateFieldId  null.Int

	// Fields is ordered by declared position.
	Fields []FieldConfig

	fieldsById map[int]int
}

// NewModelConfig builds a ModelConfig from its metadata attributes and its
// loaded field configs. A model with zero fields is always a configuration
// bug, never a valid empty state.
func NewModelConfig(
	id int,
	name string,
	position int,
	isMainTable, isMainJoinTable bool,
	msfIdFieldId int,
	dateFieldId null.Int,
	fields []FieldConfig,
) (ModelConfig, error) {
	if len(fields) == 0 {
		return ModelConfig{}, errors.Wrapf(ErrSchemaIntegrity,
			"no field config found for model %d", id)
	}

	config := ModelConfig{
		Id:              id,
		Name:            name,
		Position:        position,
		IsMainTable:     isMainTable,
		IsMainJoinTable: isMainJoinTable,
		MsfIdFieldId:    msfIdFieldId,
		DateFieldId:     dateFieldId,
		Fields:          make([]FieldConfig, len(fields)),
		fieldsById:      make(map[int]int, len(fields)),
	}
	for i, field := range fields {
		field.ModelId = id
		field.IsMsfId = field.Id == msfIdFieldId
		field.IsDate = dateFieldId.Valid && field.Id == int(dateFieldId.Int64)
		config.Fields[i] = field
		config.fieldsById[field.Id] = i
	}
	return config, nil
}

func (m ModelConfig) DataTableName() string {
	return ModelDataTableName(m.Id)
}

func (m ModelConfig) FieldsTableName() string {
	return ModelFieldsTableName(m.Id)
}

// GetFieldConfig returns the config of a field by id. It never returns a
// silent zero value: downstream code indexes the result directly.
func (m ModelConfig) GetFieldConfig(fieldId int) (FieldConfig, error) {
	i, ok := m.fieldsById[fieldId]
	if !ok {
		return FieldConfig{}, errors.Wrapf(ErrFieldNotFound,
			"field %d on model %d", fieldId, m.Id)
	}
	return m.Fields[i], nil
}

// MsfIdFieldConfig resolves the "MSF ID" special field. A dangling pointer is
// a schema integrity error: every model must carry the patient identifier.
func (m ModelConfig) MsfIdFieldConfig() (FieldConfig, error) {
	field, err := m.GetFieldConfig(m.MsfIdFieldId)
	if err != nil {
		return FieldConfig{}, errors.Wrapf(ErrSchemaIntegrity,
			"model %d: msf id field %d not in field config", m.Id, m.MsfIdFieldId)
	}
	return field, nil
}

// DateFieldConfig resolves the "Date" special field. The false return is the
// normal "no date dimension" state.
func (m ModelConfig) DateFieldConfig() (FieldConfig, bool) {
	if !m.DateFieldId.Valid {
		return FieldConfig{}, false
	}
	field, err := m.GetFieldConfig(int(m.DateFieldId.Int64))
	if err != nil {
		return FieldConfig{}, false
	}
	return field, true
}

func (m ModelConfig) HasDateField() bool {
	_, ok := m.DateFieldConfig()
	return ok
}

// FieldIdFromDbColumnName reverses the campo_N encoding. The false return
// covers the three fixed columns (_id, user, timestamp); a campo_N column
// not declared in the field config resolves to false as well, which callers
// treat as schema drift.
func (m ModelConfig) FieldIdFromDbColumnName(dbColumnName string) (int, bool) {
	suffix, found := strings.CutPrefix(dbColumnName, "campo_")
	if !found {
		return 0, false
	}
	fieldId, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	if _, ok := m.fieldsById[fieldId]; !ok {
		return 0, false
	}
	return fieldId, true
}

func (m ModelConfig) IsFixedDbColumnName(dbColumnName string) bool {
	switch dbColumnName {
	case PkDbColumnName, UserDbColumnName, TimestampDbColumnName:
		return true
	}
	return false
}

// SqlJoinClause builds the join of this model's data table against the main
// model, on MSF ID equality, plus Date equality against the main-join model
// when this model carries a Date field. Two dated models joined without the
// Date equality fan out every visit against every visit of the same patient,
// so the second predicate is the load-bearing part.
func (m ModelConfig) SqlJoinClause(main, mainJoin ModelConfig, kind string) (string, error) {
	msfIdField, err := m.MsfIdFieldConfig()
	if err != nil {
		return "", err
	}
	mainMsfIdField, err := main.MsfIdFieldConfig()
	if err != nil {
		return "", err
	}

	conditions := []string{
		fmt.Sprintf("%s = %s", msfIdField.FullDbColumnName(), mainMsfIdField.FullDbColumnName()),
	}

	if dateField, ok := m.DateFieldConfig(); ok {
		mainJoinDateField, ok := mainJoin.DateFieldConfig()
		if !ok {
			return "", errors.Wrapf(ErrSchemaIntegrity,
				"model %d has a date field but join-date model %d has none", m.Id, mainJoin.Id)
		}
		conditions = append(conditions,
			fmt.Sprintf("%s = %s", dateField.FullDbColumnName(), mainJoinDateField.FullDbColumnName()))
	}

	return fmt.Sprintf("%s %s ON (%s)",
		strings.ToUpper(kind), m.DataTableName(), strings.Join(conditions, " AND ")), nil
}

// OrderByColumns returns the qualified columns sorting this model's own
// records: MSF ID first, then the Date column (descending) when present.
func (m ModelConfig) OrderByColumns() ([]string, error) {
	msfIdField, err := m.MsfIdFieldConfig()
	if err != nil {
		return nil, err
	}
	columns := []string{msfIdField.FullDbColumnName()}
	if dateField, ok := m.DateFieldConfig(); ok {
		columns = append(columns, dateField.FullDbColumnName()+" DESC")
	}
	return columns, nil
}
