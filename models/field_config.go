package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/easynut/easynut-backend/pure_utils"
)

// FieldConfig describes one dynamic column of a dynamic model. It is loaded
// once from the model's field-config table and immutable afterwards.
type FieldConfig struct {
	Id       int
	ModelId  int
	Name     string
	Position int
	Kind     FieldKind

	// ValuesList is only meaningful for select/radio kinds.
	ValuesList []string

	HasList     bool
	HasDetail   bool
	HasFind     bool
	HasUse      bool
	HasNewLine  bool
	IsEditable  bool
	IsSensitive bool

	// Special-field markers, derived from the owning model config.
	IsMsfId bool
	IsDate  bool
}

// FieldDbColumnName encodes a field id into its physical column name.
// This encoding and its reverse in ModelConfig.FieldIdFromDbColumnName are
// the only two places allowed to know the "campo_N" format.
func FieldDbColumnName(fieldId int) string {
	return fmt.Sprintf("campo_%d", fieldId)
}

func (f FieldConfig) DbColumnName() string {
	return FieldDbColumnName(f.Id)
}

// FullDbColumnName returns the qualified "tabla_X.campo_Y" form used in
// SELECT, JOIN and ORDER BY clauses.
func (f FieldConfig) FullDbColumnName() string {
	return fmt.Sprintf("%s.%s", ModelDataTableName(f.ModelId), f.DbColumnName())
}

func (f FieldConfig) DataSlug() DataSlug {
	return NewDataSlug(f.ModelId, f.Id)
}

// FromDbValue converts a raw database value for this field into its typed
// value, according to the field kind. Nil always maps to nil, whatever the
// kind. Text-like kinds (text, notes, radio, select) pass through unchanged.
func (f FieldConfig) FromDbValue(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch f.Kind {
	case FieldKindBool:
		return pure_utils.CastBool(value)
	case FieldKindDate:
		return pure_utils.CastDate(value)
	case FieldKindInt:
		return pure_utils.CastInt(value)
	}
	return value, nil
}

// ToDbValue is the write-path inverse of FromDbValue. Dynamic data columns
// are stored as text, so the canonical database value is a string: bools
// encode as "true"/"false", dates as "2006-01-02", integers in decimal.
// Free-text values are stripped of quote characters, matching what the
// legacy writers did before literal-encoding them. Nil stays nil.
func (f FieldConfig) ToDbValue(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch f.Kind {
	case FieldKindBool:
		b, err := pure_utils.CastBool(value)
		if err != nil {
			return nil, err
		}
		if b {
			return "true", nil
		}
		return "false", nil
	case FieldKindDate:
		t, err := pure_utils.CastDate(value)
		if err != nil {
			return nil, err
		}
		return t.Format(pure_utils.DateFormat), nil
	case FieldKindInt:
		i, err := pure_utils.CastInt(value)
		if err != nil {
			return nil, err
		}
		return fmt.Sprintf("%d", i), nil
	}

	switch val := value.(type) {
	case string:
		return cleanTextValue(val), nil
	case time.Time:
		return val.Format(pure_utils.DateFormat), nil
	}
	return nil, errors.Newf("cannot encode %T as db value for field %s", value, f.DataSlug())
}

func cleanTextValue(s string) string {
	return strings.NewReplacer(`"`, "", "'", "", "`", "").Replace(s)
}
