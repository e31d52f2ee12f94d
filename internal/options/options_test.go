package options

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/retail-presence/internal/filter"
	"github.com/sells-group/retail-presence/internal/table"
)

func surveyTable() *table.Table {
	return table.New("board", []string{
		"PROFILE_ID", "PROVINCE", "DISTRICT", "DS_DIVISION", "DIALOG_NAME_BOARD", "MOBITEL_TIN_BOARD",
	}, [][]string{
		{"R1", "Western Province", "Colombo", "Dehiwala", "1", "0"},
		{"R2", "Western Province", "Gampaha", "Negombo", "0", "1"},
		{"R3", "Central", "Kandy", "Gangawata Korale", "1", "0"},
		{"R4", "  ", "Kandy", "", "1", "0"},
		{"R5", "nan", "Colombo", "Kolonnawa", "1", "1"},
		{"R6", "Western Province", "Colombo", "Dehiwala", "1", "0"},
	})
}

func TestDerive(t *testing.T) {
	got := Derive(surveyTable(), "PROVINCE")
	assert.Equal(t, []Option{
		{Value: "central", Label: "Central"},
		{Value: "western_province", Label: "Western Province"},
	}, got)
}

func TestDerive_PreservesCasingAndSortsByLabel(t *testing.T) {
	tbl := table.New("x", []string{"DISTRICT"}, [][]string{{"b Town"}, {"A City"}, {"a city"}, {"B Town"}})
	got := Derive(tbl, "DISTRICT")
	assert.Equal(t, []Option{
		{Value: "a_city", Label: "A City"},
		{Value: "b_town", Label: "B Town"},
		{Value: "a_city", Label: "a city"},
		{Value: "b_town", Label: "b Town"},
	}, got)
}

func TestDerive_MissingColumn(t *testing.T) {
	got := Derive(surveyTable(), "GN_DIVISION")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestProvinces_FilteredByProvider(t *testing.T) {
	got := Provinces(surveyTable(), filter.Spec{Provider: "mobitel", Province: "central"}, filter.Board)
	assert.Equal(t, []Option{{Value: "western_province", Label: "Western Province"}}, got)
}

func TestDistricts_HonorProvince(t *testing.T) {
	got := Districts(surveyTable(), filter.Spec{Province: "western_province", District: "kandy"}, filter.Board)
	assert.Equal(t, []Option{
		{Value: "colombo", Label: "Colombo"},
		{Value: "gampaha", Label: "Gampaha"},
	}, got)
}

func TestDivisions_HonorProvinceAndDistrict(t *testing.T) {
	got := Divisions(surveyTable(), filter.Spec{Province: "western_province", District: "colombo", Division: "x"}, filter.Board)
	assert.Equal(t, []Option{{Value: "dehiwala", Label: "Dehiwala"}}, got)
}

func TestForLevel_FallbackColumn(t *testing.T) {
	tbl := table.New("posm", []string{"SALES_REGION", "DIALOG_AREA_PERCENTAGE"}, [][]string{
		{"South", "10"},
		{"North", "0"},
	})
	got := Provinces(tbl, filter.Spec{Provider: "dialog"}, filter.Posm)
	assert.Equal(t, []Option{{Value: "south", Label: "South"}}, got)
}

func TestForLevel_UnknownProvider(t *testing.T) {
	assert.Empty(t, Provinces(surveyTable(), filter.Spec{Provider: "etisalat"}, filter.Board))
}
