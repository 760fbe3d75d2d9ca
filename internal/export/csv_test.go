package export

import (
	"os"
	"path/filepath"
	"testing"

	"immoeliza/server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func floatPtr(v float64) *float64 {
	return &v
}

func TestWriteCSV(t *testing.T) {
	table := &models.CleanTable{
		Columns: []string{"property_id", "price", "living_area", "number_rooms", "facades", "postal_code", "province", "price_per_m2"},
		Rows: []*models.Listing{
			{
				PropertyID:  strPtr("A1"),
				Price:       floatPtr(350000),
				LivingArea:  floatPtr(140),
				NumberRooms: floatPtr(3),
				Facades:     floatPtr(2),
				PostalCode:  strPtr("1000"),
				Province:    strPtr("Brussels"),
				PricePerM2:  floatPtr(2500),
			},
			{
				PropertyID: strPtr("A2"),
				Price:      floatPtr(199000),
				LivingArea: floatPtr(100),
				PostalCode: nil,
				Province:   strPtr("Ghent"),
				PricePerM2: floatPtr(1990),
			},
		},
	}

	path := filepath.Join(t.TempDir(), "cleaned.csv")
	require.NoError(t, WriteCSV(path, table))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "property_id,price,living_area,number_rooms,facades,postal_code,province,price_per_m2\n" +
		"A1,350000,140,3,2,1000,Brussels,2500\n" +
		"A2,199000,100,,,,Ghent,1990\n"
	assert.Equal(t, want, string(content))
}

func TestWriteCSV_ExtraColumns(t *testing.T) {
	table := &models.CleanTable{
		Columns: []string{"property_id", "garden", "price_per_m2"},
		Rows: []*models.Listing{
			{
				PropertyID: strPtr("A1"),
				PricePerM2: floatPtr(2500),
				Extra:      map[string]*string{"garden": strPtr("yes")},
			},
			{
				PropertyID: strPtr("A2"),
				PricePerM2: floatPtr(1800),
			},
		},
	}

	path := filepath.Join(t.TempDir(), "cleaned.csv")
	require.NoError(t, WriteCSV(path, table))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "property_id,garden,price_per_m2\n" +
		"A1,yes,2500\n" +
		"A2,,1800\n"
	assert.Equal(t, want, string(content))
}

func TestWriteCSV_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "cleaned.csv")
	table := &models.CleanTable{Columns: []string{"property_id", "price_per_m2"}}

	require.NoError(t, WriteCSV(path, table))
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	// An empty result set still produces a header-only file
	assert.Equal(t, "property_id,price_per_m2\n", string(content))
}
