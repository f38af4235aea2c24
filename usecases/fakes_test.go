package usecases

import (
	"context"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/guregu/null/v5"
	"github.com/stretchr/testify/require"

	"github.com/easynut/easynut-backend/models"
	"github.com/easynut/easynut-backend/repositories"
)

func newBioDataConfig(t *testing.T) models.ModelConfig {
	t.Helper()
	config, err := models.NewModelConfig(1, "Bio Data", 1, true, false, 1, null.Int{}, []models.FieldConfig{
		{Id: 1, Name: "MSF ID", Position: 1, Kind: models.FieldKindText, HasFind: true},
		{Id: 2, Name: "Name", Position: 2, Kind: models.FieldKindText, HasFind: true, IsSensitive: true},
	})
	require.NoError(t, err)
	return config
}

func newVisitsConfig(t *testing.T) models.ModelConfig {
	t.Helper()
	config, err := models.NewModelConfig(2, "Visits", 2, false, true, 1, null.IntFrom(2), []models.FieldConfig{
		{Id: 1, Name: "MSF ID", Position: 1, Kind: models.FieldKindText},
		{Id: 2, Name: "Date", Position: 2, Kind: models.FieldKindDate},
		{Id: 3, Name: "Weight (kg)", Position: 3, Kind: models.FieldKindInt},
	})
	require.NoError(t, err)
	return config
}

// fakeSchemaRepository serves in-memory configs and counts loads, so tests
// can assert how often the registry goes back to the database.
type fakeSchemaRepository struct {
	mu      sync.Mutex
	configs []models.ModelConfig
	loads   int
}

func (f *fakeSchemaRepository) ListModelConfigs(
	ctx context.Context, exec repositories.Executor, ids ...int,
) ([]models.ModelConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++

	if len(ids) == 0 {
		return f.configs, nil
	}
	var result []models.ModelConfig
	for _, id := range ids {
		found := false
		for _, config := range f.configs {
			if config.Id == id {
				result = append(result, config)
				found = true
			}
		}
		if !found {
			return nil, errors.Wrapf(models.ErrModelNotFound, "ids %v", ids)
		}
	}
	return result, nil
}

func (f *fakeSchemaRepository) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

type fakeRoleRepository struct {
	permissions []models.RolePermission
}

func (f fakeRoleRepository) ListRolePermissions(
	ctx context.Context, exec repositories.Executor, groupIds ...int,
) ([]models.RolePermission, error) {
	groups := make(map[int]bool, len(groupIds))
	for _, groupId := range groupIds {
		groups[groupId] = true
	}
	var result []models.RolePermission
	for _, permission := range f.permissions {
		if len(groupIds) == 0 || groups[permission.GroupId] {
			result = append(result, permission)
		}
	}
	return result, nil
}

// fakeRecordRepository returns canned records and captures queries. Only the
// methods the tested usecases reach are implemented with behavior.
type fakeRecordRepository struct {
	records    []models.DynamicRecord
	queryRows  []map[models.DataSlug]any
	lastQuery  string
	nextMsfId  string
	knownMsfId string
}

func (f *fakeRecordRepository) GetRecordByPk(
	ctx context.Context, exec repositories.Executor, config models.ModelConfig, pk int,
) (models.DynamicRecord, error) {
	for _, record := range f.records {
		if record.ModelId == config.Id && record.Pk == pk {
			return record, nil
		}
	}
	return models.DynamicRecord{}, errors.Wrapf(models.ErrRecordNotFound, "pk %d", pk)
}

func (f *fakeRecordRepository) GetRecordByMsfId(
	ctx context.Context, exec repositories.Executor, config models.ModelConfig, msfId string,
) (models.DynamicRecord, error) {
	for _, record := range f.records {
		if record.ModelId == config.Id && record.MsfId(config) == msfId {
			return record, nil
		}
	}
	return models.DynamicRecord{}, errors.Wrapf(models.ErrRecordNotFound, "msf id %s", msfId)
}

func (f *fakeRecordRepository) ListRecordsByMsfId(
	ctx context.Context, exec repositories.Executor, config models.ModelConfig, msfId string,
) ([]models.DynamicRecord, error) {
	var result []models.DynamicRecord
	for _, record := range f.records {
		if record.ModelId == config.Id && record.MsfId(config) == msfId {
			result = append(result, record)
		}
	}
	return result, nil
}

func (f *fakeRecordRepository) ListAllRecords(
	ctx context.Context, exec repositories.Executor, config models.ModelConfig,
) ([]models.DynamicRecord, error) {
	var result []models.DynamicRecord
	for _, record := range f.records {
		if record.ModelId == config.Id {
			result = append(result, record)
		}
	}
	return result, nil
}

func (f *fakeRecordRepository) InsertRecord(
	ctx context.Context, exec repositories.Executor, config models.ModelConfig,
	user string, values map[int]any,
) (int, error) {
	pk := len(f.records) + 1
	record := models.DynamicRecord{ModelId: config.Id, Pk: pk, User: user, Values: values}
	f.records = append(f.records, record)
	return pk, nil
}

func (f *fakeRecordRepository) UpdateRecord(
	ctx context.Context, exec repositories.Executor, config models.ModelConfig,
	pk int, user string, values map[int]any,
) error {
	for i, record := range f.records {
		if record.ModelId == config.Id && record.Pk == pk {
			for fieldId, value := range values {
				f.records[i].Values[fieldId] = value
			}
			f.records[i].User = user
			return nil
		}
	}
	return errors.Wrapf(models.ErrRecordNotFound, "pk %d", pk)
}

func (f *fakeRecordRepository) DeleteRecord(
	ctx context.Context, exec repositories.Executor, config models.ModelConfig, pk int,
) error {
	for i, record := range f.records {
		if record.ModelId == config.Id && record.Pk == pk {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return errors.Wrapf(models.ErrRecordNotFound, "pk %d", pk)
}

func (f *fakeRecordRepository) NextMsfId(
	ctx context.Context, exec repositories.Executor, config models.ModelConfig,
) (string, error) {
	return f.nextMsfId, nil
}

func (f *fakeRecordRepository) MsfIdExists(
	ctx context.Context, exec repositories.Executor, config models.ModelConfig, msfId string,
) (bool, error) {
	return msfId == f.knownMsfId, nil
}

func (f *fakeRecordRepository) SearchRecords(
	ctx context.Context, exec repositories.Executor, config models.ModelConfig, terms []string,
) ([]models.DynamicRecord, error) {
	return f.records, nil
}

func (f *fakeRecordRepository) QueryBySlugs(
	ctx context.Context, exec repositories.Executor, schema models.Schema, sqlQuery string,
) ([]map[models.DataSlug]any, error) {
	f.lastQuery = sqlQuery
	return f.queryRows, nil
}

func newTestRegistry(t *testing.T, repo repositories.SchemaRepository) *SchemaRegistry {
	t.Helper()
	return NewSchemaRegistry(repositories.NewExecutorGetter(nil), repo, &fakeRecordRepository{})
}
