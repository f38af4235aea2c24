package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/easynut/easynut-backend/models"
	"github.com/easynut/easynut-backend/repositories/dbmodels"
)

type RoleRepository interface {
	ListRolePermissions(ctx context.Context, exec Executor, groupIds ...int) ([]models.RolePermission, error)
}

type RoleRepositoryPostgresql struct{}

func (repo RoleRepositoryPostgresql) ListRolePermissions(
	ctx context.Context, exec Executor, groupIds ...int,
) ([]models.RolePermission, error) {
	query := NewQueryBuilder().
		Select(dbmodels.SelectRolePermissionColumns...).
		From(dbmodels.TABLE_EASY_ROLES).
		OrderBy("group_id", "table_id")
	if len(groupIds) > 0 {
		query = query.Where(squirrel.Eq{"group_id": groupIds})
	}
	return SqlToListOfModels(ctx, exec, query, dbmodels.AdaptRolePermission)
}
