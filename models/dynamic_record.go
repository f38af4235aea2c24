package models

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/easynut/easynut-backend/pure_utils"
)

// DynamicRecord is one materialized row of one model's data table: typed
// field values keyed by field id, plus the three fixed bookkeeping columns.
// Records live for the duration of one operation and are never cached.
type DynamicRecord struct {
	ModelId   int
	Pk        int
	User      string
	Timestamp time.Time
	Values    map[int]any
}

// NewDynamicRecordFromRow converts a raw database row (column name to raw
// value) into a typed record. Columns that are neither a fixed column nor a
// declared campo_N column indicate drift between code and schema and fail
// the whole record: a conversion failure on any single field does too.
func NewDynamicRecordFromRow(config ModelConfig, row map[string]any) (DynamicRecord, error) {
	record := DynamicRecord{
		ModelId: config.Id,
		Values:  make(map[int]any, len(row)),
	}

	for dbColumnName, rawValue := range row {
		if config.IsFixedDbColumnName(dbColumnName) {
			if err := record.setFixedColumn(dbColumnName, rawValue); err != nil {
				return DynamicRecord{}, errors.Wrapf(err,
					"model %d column %s", config.Id, dbColumnName)
			}
			continue
		}

		fieldId, ok := config.FieldIdFromDbColumnName(dbColumnName)
		if !ok {
			return DynamicRecord{}, errors.Wrapf(ErrSchemaIntegrity,
				"unknown column %s on model %d", dbColumnName, config.Id)
		}
		field, err := config.GetFieldConfig(fieldId)
		if err != nil {
			return DynamicRecord{}, err
		}
		value, err := field.FromDbValue(rawValue)
		if err != nil {
			return DynamicRecord{}, errors.Wrapf(err,
				"model %d field %d", config.Id, fieldId)
		}
		record.Values[fieldId] = value
	}
	return record, nil
}

func (r *DynamicRecord) setFixedColumn(dbColumnName string, rawValue any) error {
	if rawValue == nil {
		return nil
	}
	switch dbColumnName {
	case PkDbColumnName:
		pk, err := pure_utils.CastInt(rawValue)
		if err != nil {
			return err
		}
		r.Pk = pk
	case UserDbColumnName:
		user, ok := rawValue.(string)
		if !ok {
			return errors.Newf("user column is %T, not a string", rawValue)
		}
		r.User = user
	case TimestampDbColumnName:
		timestamp, err := pure_utils.CastDateTime(rawValue)
		if err != nil {
			return err
		}
		r.Timestamp = timestamp
	}
	return nil
}

func (r DynamicRecord) Value(fieldId int) (any, bool) {
	value, ok := r.Values[fieldId]
	return value, ok
}

// MsfId returns the record's patient identifier, resolved through the owning
// model config.
func (r DynamicRecord) MsfId(config ModelConfig) any {
	value := r.Values[config.MsfIdFieldId]
	return value
}

// Date returns the record's date value, or nil when the model has no date
// dimension.
func (r DynamicRecord) Date(config ModelConfig) any {
	dateField, ok := config.DateFieldConfig()
	if !ok {
		return nil
	}
	return r.Values[dateField.Id]
}
