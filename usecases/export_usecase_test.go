package usecases

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easynut/easynut-backend/models"
	"github.com/easynut/easynut-backend/repositories"
)

func newExportUsecaseForTest(t *testing.T, recordRepo *fakeRecordRepository) ExportUsecase {
	t.Helper()
	schemaRepo := &fakeSchemaRepository{configs: []models.ModelConfig{newBioDataConfig(t), newVisitsConfig(t)}}
	registry := newTestRegistry(t, schemaRepo)
	return NewExportUsecase(repositories.NewExecutorGetter(nil), registry, recordRepo)
}

func viewAllPermissions(canExport bool) models.UserPermissions {
	return models.UserPermissions{
		Models: map[int]models.ModelPermissions{
			1: {CanView: true},
			2: {CanView: true},
		},
		CanExport: canExport,
	}
}

func TestExportUsecase_ExportCatalog(t *testing.T) {
	uc := newExportUsecaseForTest(t, &fakeRecordRepository{})

	var buf bytes.Buffer
	require.NoError(t, uc.ExportCatalog(context.Background(), &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Data Slug,Table Id,Table Name,Field Id,Field Name,Type,Values", lines[0])
	assert.Equal(t, "01#01,1,Bio Data,1,MSF ID,texto,", lines[1])
	assert.Equal(t, "02#02,2,Visits,2,Date,fecha,", lines[4])
	assert.Equal(t, "02#03,2,Visits,3,Weight (kg),entero,", lines[5])
}

func TestExportUsecase_ExportModelRecords(t *testing.T) {
	record := models.DynamicRecord{
		ModelId:   1,
		Pk:        1,
		User:      "nurse.a",
		Timestamp: time.Date(2023, 5, 1, 10, 30, 0, 0, time.UTC),
		Values:    map[int]any{1: "000123", 2: "Jane Doe"},
	}
	uc := newExportUsecaseForTest(t, &fakeRecordRepository{records: []models.DynamicRecord{record}})

	t.Run("sensitive fields are masked without the export right", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, uc.ExportModelRecords(context.Background(), viewAllPermissions(false), 1, &buf))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "MSF ID,Name,User,Timestamp", lines[0])
		assert.Equal(t, "000123,***,nurse.a,2023-05-01T10:30:00", lines[1])
	})

	t.Run("export right reveals sensitive fields", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, uc.ExportModelRecords(context.Background(), viewAllPermissions(true), 1, &buf))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		assert.Equal(t, "000123,Jane Doe,nurse.a,2023-05-01T10:30:00", lines[1])
	})

	t.Run("view permission is required", func(t *testing.T) {
		err := uc.ExportModelRecords(context.Background(), models.UserPermissions{}, 1, &bytes.Buffer{})
		assert.ErrorIs(t, err, models.ForbiddenError)
	})
}

func TestExportUsecase_ExportQuery(t *testing.T) {
	recordRepo := &fakeRecordRepository{
		queryRows: []map[models.DataSlug]any{
			{
				"01#01": "000123",
				"02#02": time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
				"02#03": 12,
			},
		},
	}
	uc := newExportUsecaseForTest(t, recordRepo)
	fields := models.QueryFields{1: {1}, 2: {2, 3}}

	t.Run("nominal", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, uc.ExportQuery(context.Background(), viewAllPermissions(true), fields, &buf))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "01#01,02#02,02#03", lines[0])
		assert.Equal(t, "000123,2023-05-01,12", lines[1])

		assert.Contains(t, recordRepo.lastQuery, "LEFT JOIN tabla_2 ON (tabla_2.campo_1 = tabla_1.campo_1)")
	})

	t.Run("export right is required", func(t *testing.T) {
		err := uc.ExportQuery(context.Background(), viewAllPermissions(false), fields, &bytes.Buffer{})
		assert.ErrorIs(t, err, models.ForbiddenError)
	})

	t.Run("view permission on every requested model is required", func(t *testing.T) {
		permissions := viewAllPermissions(true)
		delete(permissions.Models, 2)
		err := uc.ExportQuery(context.Background(), permissions, fields, &bytes.Buffer{})
		assert.ErrorIs(t, err, models.ForbiddenError)
	})
}
