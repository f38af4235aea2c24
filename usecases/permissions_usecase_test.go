package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easynut/easynut-backend/models"
	"github.com/easynut/easynut-backend/repositories"
)

func TestPermissionsUsecase_UserPermissions(t *testing.T) {
	schemaRepo := &fakeSchemaRepository{configs: []models.ModelConfig{newBioDataConfig(t), newVisitsConfig(t)}}
	registry := newTestRegistry(t, schemaRepo)
	roleRepo := fakeRoleRepository{permissions: []models.RolePermission{
		{GroupId: 2, ModelId: 1, ModelPermissions: models.ModelPermissions{CanView: true}},
		{GroupId: 2, ModelId: 2, ModelPermissions: models.ModelPermissions{CanView: true, CanAdd: true}},
		{GroupId: 3, ModelId: 1, ModelPermissions: models.ModelPermissions{CanView: true, CanEdit: true}},
	}}
	uc := NewPermissionsUsecase(repositories.NewExecutorGetter(nil), roleRepo, registry)

	t.Run("single group", func(t *testing.T) {
		permissions, err := uc.UserPermissions(context.Background(), 2)
		require.NoError(t, err)

		assert.True(t, permissions.For(1).CanView)
		assert.False(t, permissions.For(1).CanEdit)
		assert.True(t, permissions.For(2).CanAdd)
		assert.False(t, permissions.CanExport)
		assert.False(t, permissions.CanLastId)
	})

	t.Run("several groups union their rights", func(t *testing.T) {
		permissions, err := uc.UserPermissions(context.Background(), 2, 3)
		require.NoError(t, err)

		assert.True(t, permissions.For(1).CanView)
		assert.True(t, permissions.For(1).CanEdit)
		assert.False(t, permissions.For(1).CanDelete)
	})

	t.Run("unlisted model yields zero permissions", func(t *testing.T) {
		permissions, err := uc.UserPermissions(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, models.ModelPermissions{}, permissions.For(2))
	})

	t.Run("no groups yields no rights", func(t *testing.T) {
		permissions, err := uc.UserPermissions(context.Background())
		require.NoError(t, err)

		assert.Empty(t, permissions.Models)
		assert.False(t, permissions.For(1).CanView)
		assert.False(t, permissions.For(1).CanDelete)
		assert.False(t, permissions.CanExport)
		assert.False(t, permissions.CanLastId)
	})

	t.Run("admin group gets blanket rights", func(t *testing.T) {
		permissions, err := uc.UserPermissions(context.Background(), AdminGroupId, 3)
		require.NoError(t, err)

		for _, modelId := range []int{1, 2} {
			assert.Equal(t, models.ModelPermissions{
				CanView: true, CanAdd: true, CanEdit: true, CanDelete: true,
			}, permissions.For(modelId))
		}
		assert.True(t, permissions.CanExport)
		assert.True(t, permissions.CanLastId)
	})
}
