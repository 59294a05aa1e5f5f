package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRecords_InfersTypesAndSortsColumns(t *testing.T) {
	records := []Record{
		{"name": "Brew 1", "longitude": -119.5, "active": true, "id": "b1"},
		{"name": "Brew 2", "longitude": nil, "active": false, "id": "b2"},
	}

	ds := FromRecords(records)

	assert.Equal(t, []string{"active", "id", "longitude", "name"}, ds.ColumnNames())
	assert.Equal(t, TypeBoolean, ds.Columns[0].Type)
	assert.Equal(t, TypeVarchar, ds.Columns[1].Type)
	assert.Equal(t, TypeDouble, ds.Columns[2].Type)
	require.Equal(t, 2, ds.NumRows())
	assert.Equal(t, "b1", ds.Rows[0][1])
	assert.Nil(t, ds.Rows[1][2])
}

func TestFromRecords_UnionOfKeys(t *testing.T) {
	records := []Record{
		{"id": "b1"},
		{"id": "b2", "city": "Portland"},
	}

	ds := FromRecords(records)

	assert.Equal(t, []string{"city", "id"}, ds.ColumnNames())
	assert.Nil(t, ds.Rows[0][0]) // missing key reads as null
}

func TestFromRecords_AllNullColumnDefaultsToVarchar(t *testing.T) {
	ds := FromRecords([]Record{{"phone": nil}})
	assert.Equal(t, TypeVarchar, ds.Columns[0].Type)
}

func TestAddColumn_StampsEveryRow(t *testing.T) {
	ds := FromRecords([]Record{{"id": "b1"}, {"id": "b2"}})
	ds.AddColumn("date_request", TypeVarchar, "2024_01_01")

	require.True(t, ds.HasColumn("date_request"))
	for _, row := range ds.Rows {
		assert.Equal(t, "2024_01_01", row[ds.ColumnIndex("date_request")])
	}
}

func TestProject_ReordersAndDrops(t *testing.T) {
	ds := FromRecords([]Record{{"a": "1", "b": "2", "c": "3"}})

	out, err := ds.Project("c", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, out.ColumnNames())
	assert.Equal(t, []interface{}{"3", "1"}, out.Rows[0])
}

func TestProject_UnknownColumn(t *testing.T) {
	ds := FromRecords([]Record{{"a": "1"}})
	_, err := ds.Project("nope")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestFilter_KeepsMatchingRows(t *testing.T) {
	ds := FromRecords([]Record{
		{"id": "b1", "date_request": "2024_01_01"},
		{"id": "b2", "date_request": "2024_01_02"},
		{"id": "b3", "date_request": "2024_01_01"},
	})

	out, err := ds.Filter("date_request", "2024_01_01")
	require.NoError(t, err)
	assert.Equal(t, 2, out.NumRows())
}

func TestGroupCount_CountsObservedCombinations(t *testing.T) {
	ds := FromRecords([]Record{
		{"brewery_type": "micro", "country": "USA", "state_province": "CA"},
		{"brewery_type": "micro", "country": "USA", "state_province": "CA"},
		{"brewery_type": "large", "country": "USA", "state_province": "NY"},
	})

	out, err := ds.GroupCount([]string{"brewery_type", "country", "state_province"}, "count")
	require.NoError(t, err)

	require.Equal(t, 2, out.NumRows())
	assert.Equal(t, []string{"brewery_type", "country", "state_province", "count"}, out.ColumnNames())
	assert.Equal(t, []interface{}{"micro", "USA", "CA", int64(2)}, out.Rows[0])
	assert.Equal(t, []interface{}{"large", "USA", "NY", int64(1)}, out.Rows[1])
}

func TestGroupCount_NullDimensionGroupsAsEmpty(t *testing.T) {
	ds := FromRecords([]Record{
		{"country": nil},
		{"country": ""},
	})

	out, err := ds.GroupCount([]string{"country"}, "count")
	require.NoError(t, err)
	require.Equal(t, 1, out.NumRows())
	assert.Equal(t, int64(2), out.Rows[0][1])
}

func TestCoerceString(t *testing.T) {
	assert.Equal(t, "", CoerceString(nil))
	assert.Equal(t, "abc", CoerceString("abc"))
	assert.Equal(t, "1.5", CoerceString(1.5))
	assert.Equal(t, "42", CoerceString(int64(42)))
	assert.Equal(t, "true", CoerceString(true))
}
