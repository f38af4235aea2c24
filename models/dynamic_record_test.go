package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDynamicRecordFromRow(t *testing.T) {
	config := newVisitsConfig(t)

	t.Run("materializes fixed and dynamic columns", func(t *testing.T) {
		record, err := NewDynamicRecordFromRow(config, map[string]any{
			"_id":       int64(7),
			"user":      "nurse.a",
			"timestamp": "2023-05-01T10:30:00",
			"campo_1":   "000123",
			"campo_2":   "2023-05-01",
			"campo_3":   "12",
		})
		require.NoError(t, err)

		assert.Equal(t, 2, record.ModelId)
		assert.Equal(t, 7, record.Pk)
		assert.Equal(t, "nurse.a", record.User)
		assert.Equal(t, time.Date(2023, 5, 1, 10, 30, 0, 0, time.UTC), record.Timestamp)

		assert.Equal(t, "000123", record.MsfId(config))
		assert.Equal(t, time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), record.Date(config))
		weight, ok := record.Value(3)
		require.True(t, ok)
		assert.Equal(t, 12, weight)
	})

	t.Run("null dynamic values stay nil", func(t *testing.T) {
		record, err := NewDynamicRecordFromRow(config, map[string]any{
			"_id":     int64(7),
			"campo_3": nil,
		})
		require.NoError(t, err)
		weight, ok := record.Value(3)
		assert.True(t, ok)
		assert.Nil(t, weight)
	})

	t.Run("unknown column fails the whole record", func(t *testing.T) {
		_, err := NewDynamicRecordFromRow(config, map[string]any{
			"_id":      int64(7),
			"campo_99": "stray",
		})
		assert.ErrorIs(t, err, ErrSchemaIntegrity)
	})

	t.Run("conversion failure on one field fails the whole record", func(t *testing.T) {
		_, err := NewDynamicRecordFromRow(config, map[string]any{
			"_id":     int64(7),
			"campo_3": "not a number",
		})
		assert.Error(t, err)
	})

	t.Run("date accessor on a dateless model returns nil", func(t *testing.T) {
		bioData := newBioDataConfig(t)
		record, err := NewDynamicRecordFromRow(bioData, map[string]any{
			"campo_1": "000123",
		})
		require.NoError(t, err)
		assert.Nil(t, record.Date(bioData))
	})
}
