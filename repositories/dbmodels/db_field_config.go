package dbmodels

import (
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/easynut/easynut-backend/models"
	"github.com/easynut/easynut-backend/pure_utils"
)

// DbFieldConfig is one row of a model's field-config table (tabla_N_des),
// scanned through the aliases of SelectFieldConfigColumns.
type DbFieldConfig struct {
	Id          int64       `db:"id"`
	DbColName   string      `db:"db_col_name"`
	Name        string      `db:"name"`
	Position    int64       `db:"position"`
	Kind        string      `db:"kind"`
	ValuesList  pgtype.Text `db:"values_list"`
	HasList     pgtype.Text `db:"has_list"`
	HasDetail   pgtype.Text `db:"has_detail"`
	HasFind     pgtype.Text `db:"has_find"`
	HasUse      pgtype.Text `db:"has_use"`
	HasNewLine  pgtype.Text `db:"has_new_line"`
	IsEditable  pgtype.Text `db:"is_editable"`
	IsSensitive pgtype.Text `db:"is_sensitive"`
}

var SelectFieldConfigColumns = []string{
	"campo_id AS id",
	"campo AS db_col_name",
	"presentador AS name",
	"pos AS position",
	"tipo AS kind",
	"varios AS values_list",
	"listado AS has_list",
	"detalle AS has_detail",
	"buscar AS has_find",
	"usar AS has_use",
	// Snake-cased from the legacy nuevaLinea: unquoted camelCase identifiers
	// fold to lowercase in postgres, so the camel spelling cannot survive the
	// port anyway.
	"nueva_linea AS has_new_line",
	"editable AS is_editable",
	"is_sensitive",
}

func AdaptFieldConfig(db DbFieldConfig) (models.FieldConfig, error) {
	fieldId := int(db.Id)

	// The physical column name is derived from the field id. A mismatch means
	// the metadata row points at a column the code will never read.
	if expected := models.FieldDbColumnName(fieldId); db.DbColName != expected {
		return models.FieldConfig{}, errors.Wrapf(models.ErrSchemaIntegrity,
			"field %d declares column %q, expected %q", fieldId, db.DbColName, expected)
	}

	kind, err := models.FieldKindFrom(db.Kind)
	if err != nil {
		return models.FieldConfig{}, errors.Wrapf(err, "field %d", fieldId)
	}

	var valuesList []string
	if db.ValuesList.Valid {
		valuesList, err = pure_utils.CastCSV(db.ValuesList.String, ",")
		if err != nil {
			return models.FieldConfig{}, errors.Wrapf(err, "field %d options", fieldId)
		}
	}

	flags := make([]bool, 7)
	for i, flag := range []pgtype.Text{
		db.HasList, db.HasDetail, db.HasFind, db.HasUse,
		db.HasNewLine, db.IsEditable, db.IsSensitive,
	} {
		flags[i], err = castFlag(flag)
		if err != nil {
			return models.FieldConfig{}, errors.Wrapf(err, "field %d flags", fieldId)
		}
	}

	return models.FieldConfig{
		Id:          fieldId,
		Name:        db.Name,
		Position:    int(db.Position),
		Kind:        kind,
		ValuesList:  valuesList,
		HasList:     flags[0],
		HasDetail:   flags[1],
		HasFind:     flags[2],
		HasUse:      flags[3],
		HasNewLine:  flags[4],
		IsEditable:  flags[5],
		IsSensitive: flags[6],
	}, nil
}
