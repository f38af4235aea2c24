package dbmodels

import (
	"github.com/easynut/easynut-backend/models"
)

// DbRolePermission is one row of the easy_roles table. Permissions are
// stored as 0/1 smallints in the legacy schema.
type DbRolePermission struct {
	GroupId     int64 `db:"group_id"`
	ModelId     int64 `db:"table_id"`
	ViewTable   int64 `db:"view_table"`
	AddTable    int64 `db:"add_table"`
	EditTable   int64 `db:"edit_table"`
	DeleteTable int64 `db:"delete_table"`
}

const TABLE_EASY_ROLES = "easy_roles"

var SelectRolePermissionColumns = []string{
	"group_id",
	"table_id",
	"view_table",
	"add_table",
	"edit_table",
	"delete_table",
}

func AdaptRolePermission(db DbRolePermission) models.RolePermission {
	return models.RolePermission{
		GroupId: int(db.GroupId),
		ModelId: int(db.ModelId),
		ModelPermissions: models.ModelPermissions{
			CanView:   db.ViewTable != 0,
			CanAdd:    db.AddTable != 0,
			CanEdit:   db.EditTable != 0,
			CanDelete: db.DeleteTable != 0,
		},
	}
}
