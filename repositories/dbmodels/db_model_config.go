// Package dbmodels holds the raw row shapes of the metadata tables, plus the
// adapt functions converting them into domain models. The legacy tables store
// most attributes as text ('true'/'false' flags, comma-separated option
// lists), so adapting is where the value caster earns its keep.
package dbmodels

import (
	"github.com/guregu/null/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/easynut/easynut-backend/pure_utils"
)

// DbModelConfig is one row of the "tablas" metadata table, scanned through
// the column aliases of SelectModelConfigColumns.
type DbModelConfig struct {
	Id              int64       `db:"id"`
	Name            string      `db:"name"`
	Position        int64       `db:"position"`
	IsMainTable     pgtype.Text `db:"is_main_table"`
	IsMainJoinTable pgtype.Text `db:"is_main_join_table"`
	MsfIdFieldId    int64       `db:"msf_id_field_id"`
	DateFieldId     pgtype.Int8 `db:"date_field_id"`
}

// SelectModelConfigColumns maps the legacy Spanish column names onto the
// stable aliases the rest of the code uses. The physical names are part of
// the external interface and must not be renamed.
var SelectModelConfigColumns = []string{
	"tabla_id AS id",
	"presentador AS name",
	"registros AS position",
	"main_table AS is_main_table",
	"main_join_table AS is_main_join_table",
	"msf_id_field_id",
	"date_field_id",
}

// ModelConfigAttrs carries the adapted scalar attributes of one model; the
// field configs are loaded separately before the full ModelConfig is built.
type ModelConfigAttrs struct {
	Id              int
	Name            string
	Position        int
	IsMainTable     bool
	IsMainJoinTable bool
	MsfIdFieldId    int
	DateFieldId     null.Int
}

func AdaptModelConfigAttrs(db DbModelConfig) (ModelConfigAttrs, error) {
	isMainTable, err := castFlag(db.IsMainTable)
	if err != nil {
		return ModelConfigAttrs{}, err
	}
	isMainJoinTable, err := castFlag(db.IsMainJoinTable)
	if err != nil {
		return ModelConfigAttrs{}, err
	}

	dateFieldId := null.Int{}
	if db.DateFieldId.Valid {
		dateFieldId = null.IntFrom(db.DateFieldId.Int64)
	}

	return ModelConfigAttrs{
		Id:              int(db.Id),
		Name:            db.Name,
		Position:        int(db.Position),
		IsMainTable:     isMainTable,
		IsMainJoinTable: isMainJoinTable,
		MsfIdFieldId:    int(db.MsfIdFieldId),
		DateFieldId:     dateFieldId,
	}, nil
}

// castFlag reads a legacy text flag. Null and empty both mean false: the
// legacy tables carry plenty of '' entries where false is intended.
func castFlag(flag pgtype.Text) (bool, error) {
	if !flag.Valid || flag.String == "" {
		return false, nil
	}
	return pure_utils.CastBool(flag.String)
}
