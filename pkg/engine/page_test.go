package engine

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bisegni/invscan/pkg/database"
)

func samplePage() *Page {
	return &Page{
		Records: []database.Record{
			{Model: "Dell R210Intel Xeon X3440", RAM: "16GBDDR3", HDD: "2x2TBSATA2", Location: "AmsterdamAMS-01", Price: "€49.99"},
			{Model: "HP DL120G7Intel G850", RAM: "4GBDDR3"},
		},
		Cursor: Cursor{RowIndex: 14, StartRow: 202},
		Phase:  Exhausted,
	}
}

func TestPageMarshalJSON(t *testing.T) {
	b, err := json.Marshal(samplePage())
	require.NoError(t, err)

	want := `[{"Model":"Dell R210Intel Xeon X3440","RAM":"16GBDDR3","HDD":"2x2TBSATA2","Location":"AmsterdamAMS-01","Price":"€49.99"},` +
		`{"Model":"HP DL120G7Intel G850","RAM":"4GBDDR3"},` +
		`{"rowIndex":14},{"startrow":202}]`
	assert.Equal(t, want, string(b))
}

func TestEmptyPageKeepsTrailers(t *testing.T) {
	b, err := json.Marshal(&Page{Cursor: Cursor{StartRow: 500}})
	require.NoError(t, err)
	assert.Equal(t, `[{"rowIndex":0},{"startrow":500}]`, string(b))
}

func TestParsePage(t *testing.T) {
	b, err := json.Marshal(samplePage())
	require.NoError(t, err)

	page, err := ParsePage(b)
	require.NoError(t, err)
	assert.Equal(t, samplePage().Records, page.Records)
	assert.Equal(t, samplePage().Cursor, page.Cursor)
}

func TestParsePageErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `{`},
		{"not an array", `{"rowIndex":1}`},
		{"missing trailers", `[{"rowIndex":1}]`},
		{"swapped trailers", `[{"startrow":1},{"rowIndex":1}]`},
		{"string cursor", `[{"rowIndex":"1"},{"startrow":2}]`},
		{"extra key", `[{"rowIndex":1,"x":1},{"startrow":2}]`},
		{"fractional cursor", `[{"rowIndex":1.5},{"startrow":2}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePage([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, samplePage(), false))

	compact, err := json.Marshal(samplePage())
	require.NoError(t, err)
	assert.Equal(t, string(compact)+"\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, samplePage(), true))
	assert.True(t, strings.HasPrefix(buf.String(), "[\n  {\n    \"Model\""))

	page, err := ParsePage(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, samplePage().Cursor, page.Cursor)
}

func TestWriteJSONL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, samplePage()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, `{"Model":"HP DL120G7Intel G850","RAM":"4GBDDR3"}`, lines[1])
	assert.Equal(t, `{"rowIndex":14}`, lines[2])
	assert.Equal(t, `{"startrow":202}`, lines[3])
}

func TestPageDone(t *testing.T) {
	assert.True(t, (&Page{Phase: Exhausted}).Done())
	assert.False(t, (&Page{Phase: LimitReached}).Done())
	assert.Equal(t, "limit_reached", LimitReached.String())
	assert.Equal(t, "exhausted", Exhausted.String())
	assert.Equal(t, "scanning", Scanning.String())
}
