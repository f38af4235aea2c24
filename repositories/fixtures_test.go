package repositories

import (
	"testing"

	"github.com/guregu/null/v5"
	"github.com/stretchr/testify/require"

	"github.com/easynut/easynut-backend/models"
)

func newBioDataConfig(t *testing.T) models.ModelConfig {
	t.Helper()
	config, err := models.NewModelConfig(1, "Bio Data", 1, true, false, 1, null.Int{}, []models.FieldConfig{
		{Id: 1, Name: "MSF ID", Position: 1, Kind: models.FieldKindText, HasFind: true},
		{Id: 2, Name: "Name", Position: 2, Kind: models.FieldKindText, HasFind: true},
		{Id: 3, Name: "Date of Birth", Position: 3, Kind: models.FieldKindDate},
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
