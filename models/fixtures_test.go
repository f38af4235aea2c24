package models

import (
	"testing"

	"github.com/guregu/null/v5"
	"github.com/stretchr/testify/require"
)

// The fixture schema mirrors a small deployment: a main identity model, a
// dated visits model supplying the join date, and a second dated model.

func newBioDataConfig(t *testing.T) ModelConfig {
	t.Helper()
	config, err := NewModelConfig(1, "Bio Data", 1, true, false, 1, null.Int{}, []FieldConfig{
		{Id: 1, Name: "MSF ID", Position: 1, Kind: FieldKindText, HasFind: true},
		{Id: 2, Name: "Name", Position: 2, Kind: FieldKindText, HasFind: true, IsSensitive: true},
		{Id: 3, Name: "Date of Birth", Position: 3, Kind: FieldKindDate},
	})
	require.NoError(t, err)
	return config
}

func newVisitsConfig(t *testing.T) ModelConfig {
	t.Helper()
	config, err := NewModelConfig(2, "Visits", 2, false, true, 1, null.IntFrom(2), []FieldConfig{
		{Id: 1, Name: "MSF ID", Position: 1, Kind: FieldKindText},
		{Id: 2, Name: "Date", Position: 2, Kind: FieldKindDate},
		{Id: 3, Name: "Weight (kg)", Position: 3, Kind: FieldKindInt},
	})
	require.NoError(t, err)
	return config
}

func newLabResultsConfig(t *testing.T) ModelConfig {
	t.Helper()
	config, err := NewModelConfig(3, "Lab Results", 3, false, false, 1, null.IntFrom(2), []FieldConfig{
		{Id: 1, Name: "MSF ID", Position: 1, Kind: FieldKindText},
		{Id: 2, Name: "Date", Position: 2, Kind: FieldKindDate},
		{Id: 4, Name: "Result", Position: 3, Kind: FieldKindText},
	})
	require.NoError(t, err)
	return config
}

func newTestSchema(t *testing.T) Schema {
	t.Helper()
	schema, err := NewSchema([]ModelConfig{
		newBioDataConfig(t),
		newVisitsConfig(t),
		newLabResultsConfig(t),
	})
	require.NoError(t, err)
	return schema
}
