package retailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/retail-presence/internal/table"
)

func TestList(t *testing.T) {
	tbl := table.New("board", []string{
		"PROFILE_ID", "PROFILE_NAME", "LATITUDE", "LONGITUDE", "S3_ARN", "SALES_REGION", "DISTRICT",
	}, [][]string{
		{"R1", "Shop One", "6.9", "79.8", "arn:aws:s3:::b/k1.jpg", "Western", "Colombo"},
		{"R1", "Shop One again", "6.9", "79.8", "", "Western", "Colombo"},
		{"R2", "", "7.2", "80.6", "", "Central", ""},
		{"R3", "No coords", "abc", "80.1", "", "", ""},
		{"", "No id", "7.0", "80.0", "", "", ""},
		{"R3", "Coords later", "7.5", "80.2", "", "", ""},
	})

	got := List(tbl)
	require.Len(t, got, 3)
	assert.Equal(t, Retailer{
		ID: "R1", Name: "Shop One", Latitude: 6.9, Longitude: 79.8,
		ImageIdentifier: "arn:aws:s3:::b/k1.jpg", Province: "Western", District: "Colombo",
	}, got[0])
	assert.Equal(t, Retailer{ID: "R2", Name: UnnamedLabel, Latitude: 7.2, Longitude: 80.6, Province: "Central"}, got[1])
	assert.Equal(t, "Coords later", got[2].Name)
}

func TestList_NoCoordinateColumns(t *testing.T) {
	tbl := table.New("posm", []string{"PROFILE_ID"}, [][]string{{"R1"}})
	assert.Empty(t, List(tbl))
}

func TestNewIndex(t *testing.T) {
	tbl := table.New("board", []string{"PROFILE_ID", "LATITUDE", "LONGITUDE"}, [][]string{
		{"R1", "1", "2"},
		{"R2", "3", "4"},
	})
	idx := NewIndex(tbl)
	assert.Len(t, idx, 2)
	assert.Equal(t, 3.0, idx["R2"].Latitude)
	_, ok := idx["R9"]
	assert.False(t, ok)
}
