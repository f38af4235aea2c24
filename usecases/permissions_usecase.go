package usecases

import (
	"context"

	"github.com/easynut/easynut-backend/models"
	"github.com/easynut/easynut-backend/repositories"
)

// AdminGroupId is the group whose members bypass per-model permission rows.
const AdminGroupId = 1

// PermissionsUsecase composes a user's effective permissions from the
// easy_roles rows of the groups they belong to. The registry and the record
// usecases do not check permissions themselves: callers compose once per
// request and gate with the result.
type PermissionsUsecase struct {
	executorGetter repositories.ExecutorGetter
	roleRepository repositories.RoleRepository
	registry       *SchemaRegistry
}

func NewPermissionsUsecase(
	executorGetter repositories.ExecutorGetter,
	roleRepository repositories.RoleRepository,
	registry *SchemaRegistry,
) PermissionsUsecase {
	return PermissionsUsecase{
		executorGetter: executorGetter,
		roleRepository: roleRepository,
		registry:       registry,
	}
}

// UserPermissions folds the permission rows of the given groups into one
// permission set. A user in several groups gets the union of their rights.
// Members of the admin group get every right on every model, plus the
// app-level export and last-id rights.
func (uc PermissionsUsecase) UserPermissions(
	ctx context.Context, groupIds ...int,
) (models.UserPermissions, error) {
	// A user in no groups has no rights. Without this guard the unfiltered
	// role listing would hand them everyone's rows.
	if len(groupIds) == 0 {
		return models.UserPermissions{
			Models: make(map[int]models.ModelPermissions),
		}, nil
	}

	for _, groupId := range groupIds {
		if groupId == AdminGroupId {
			return uc.adminPermissions(ctx)
		}
	}

	rolePermissions, err := uc.roleRepository.ListRolePermissions(
		ctx, uc.executorGetter.GetExecutor(), groupIds...)
	if err != nil {
		return models.UserPermissions{}, err
	}

	permissions := models.UserPermissions{
		Models: make(map[int]models.ModelPermissions),
	}
	for _, role := range rolePermissions {
		current := permissions.Models[role.ModelId]
		permissions.Models[role.ModelId] = models.ModelPermissions{
			CanView:   current.CanView || role.CanView,
			CanAdd:    current.CanAdd || role.CanAdd,
			CanEdit:   current.CanEdit || role.CanEdit,
			CanDelete: current.CanDelete || role.CanDelete,
		}
	}
	return permissions, nil
}

func (uc PermissionsUsecase) adminPermissions(ctx context.Context) (models.UserPermissions, error) {
	schema, err := uc.registry.Snapshot(ctx)
	if err != nil {
		return models.UserPermissions{}, err
	}

	permissions := models.UserPermissions{
		Models:    make(map[int]models.ModelPermissions),
		CanExport: true,
		CanLastId: true,
	}
	for _, config := range schema.AllModelConfigs() {
		permissions.Models[config.Id] = models.ModelPermissions{
			CanView:   true,
			CanAdd:    true,
			CanEdit:   true,
			CanDelete: true,
		}
	}
	return permissions, nil
}
