package database

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inventoryCSV = `Model,RAM,HDD,Location,Price,Notes
Dell R210Intel Xeon X3440,16GBDDR3,2x2TBSATA2,AmsterdamAMS-01,€49.99,ignored
HP DL180G62x Intel Xeon E5620,32GBDDR3,8x2TBSATA2,AmsterdamAMS-01,€119.00
,,,,
HP DL120G7Intel G850,4GBDDR3,,AmsterdamAMS-01,€39.99
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "servers.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func collect(t *testing.T, it RowIterator) []Row {
	t.Helper()
	defer it.Close()
	var rows []Row
	for it.Next() {
		rows = append(rows, it.Row())
	}
	require.NoError(t, it.Error())
	return rows
}

func TestDecodeCells(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		want  Record
	}{
		{
			name:  "full row ignores extra columns",
			cells: []string{"m", "16GBDDR3", "2x2TBSATA2", "AmsterdamAMS-01", "€49.99", "F", "G"},
			want:  Record{"m", "16GBDDR3", "2x2TBSATA2", "AmsterdamAMS-01", "€49.99"},
		},
		{
			name:  "empty cell ends the row",
			cells: []string{"m", "16GBDDR3", "", "AmsterdamAMS-01", "€49.99"},
			want:  Record{Model: "m", RAM: "16GBDDR3"},
		},
		{
			name:  "short row",
			cells: []string{"m"},
			want:  Record{Model: "m"},
		},
		{
			name:  "empty model",
			cells: []string{"", "16GBDDR3"},
			want:  Record{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, DecodeCells(tt.cells)); diff != "" {
				t.Errorf("DecodeCells() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRecordOrderedMap(t *testing.T) {
	r := Record{Model: "m", RAM: "16GBDDR3", HDD: "2x2TBSATA2", Location: "AmsterdamAMS-01", Price: "€49.99"}
	b, err := json.Marshal(r.OrderedMap())
	require.NoError(t, err)
	assert.Equal(t, `{"Model":"m","RAM":"16GBDDR3","HDD":"2x2TBSATA2","Location":"AmsterdamAMS-01","Price":"€49.99"}`, string(b))

	partial := Record{Model: "m", RAM: "16GBDDR3"}
	assert.Equal(t, `{"Model":"m","RAM":"16GBDDR3"}`, partial.OrderedMap().String())

	var back OrderedMap
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, r, RecordFromMap(back))
	assert.Equal(t, "Model", back[0].Key)
	assert.Equal(t, "Price", back[4].Key)
}

func TestOrderedMapUnmarshalRejectsArray(t *testing.T) {
	var om OrderedMap
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &om))
}

func TestSheetTableWindow(t *testing.T) {
	table := NewSheetTable(writeCSV(t, inventoryCSV))
	assert.Equal(t, "servers", table.Name())

	total, err := table.TotalRows()
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	it, err := table.Window(2, 2)
	require.NoError(t, err)
	rows := collect(t, it)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Index)
	assert.Equal(t, "2x2TBSATA2", rows[0].Record.HDD)
	assert.Equal(t, 3, rows[1].Index)

	it, err = table.Window(4, 200)
	require.NoError(t, err)
	rows = collect(t, it)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Empty())
	assert.Equal(t, Record{Model: "HP DL120G7Intel G850", RAM: "4GBDDR3"}, rows[1].Record)

	it, err = table.Window(50, 200)
	require.NoError(t, err)
	assert.Empty(t, collect(t, it))
}

func TestSheetTableBlankLines(t *testing.T) {
	table := NewSheetTable(writeCSV(t, "Model,RAM\nDell R210,16GBDDR3\n\nHP DL120,4GBDDR3\n"))

	total, err := table.TotalRows()
	require.NoError(t, err)
	assert.Equal(t, 4, total)

	it, err := table.Window(3, 2)
	require.NoError(t, err)
	rows := collect(t, it)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Empty())
	assert.Equal(t, 3, rows[0].Index)
	assert.Equal(t, Row{Index: 4, Record: Record{Model: "HP DL120", RAM: "4GBDDR3"}}, rows[1])
}

func TestOpenSheetTableStdin(t *testing.T) {
	table, err := OpenSheetTable("-", strings.NewReader(inventoryCSV))
	require.NoError(t, err)
	path := table.Path()

	total, err := table.TotalRows()
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	require.NoError(t, table.Close())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestOpenSheetTableMissing(t *testing.T) {
	_, err := OpenSheetTable(filepath.Join(t.TempDir(), "missing.csv"), nil)
	assert.Error(t, err)
}

func TestCatalog(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte(inventoryCSV), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.xlsx"), []byte("PK"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("#"), 0644))

	c := NewCatalog()
	n, err := c.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a.csv", "b.xlsx"}, c.Names())

	table, err := c.GetTable("a.csv")
	require.NoError(t, err)
	assert.Equal(t, "a", table.Name())

	_, err = c.GetTable("missing")
	assert.True(t, errors.Is(err, ErrTableNotFound))

	n, err = NewCatalog().LoadDir(filepath.Join(dir, "nope"))
	require.NoError(t, err)
	assert.Zero(t, n)
}
