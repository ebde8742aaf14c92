package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCriteria(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Criteria
	}{
		{
			name:  "single clause",
			input: "ram = 64GB",
			want:  Criteria{RAM: "64GB"},
		},
		{
			name:  "ram set",
			input: "ram IN (16GB, 32GB, 64GB)",
			want:  Criteria{RAM: "16GB,32GB,64GB"},
		},
		{
			name:  "storage range and unquoted dashed location",
			input: "storage = 1TB-4TB and location = AmsterdamAMS-01",
			want:  Criteria{Storage: "1TB-4TB", Location: "AmsterdamAMS-01"},
		},
		{
			name:  "quoted location and implicit and",
			input: `hdisk = SATA2 location = "Washington D.C.WDC-01"`,
			want:  Criteria{HDisk: "SATA2", Location: "Washington D.C.WDC-01"},
		},
		{
			name:  "paging and case",
			input: "DISK = SSD AND Limit = 5 and offset = 202",
			want:  Criteria{HDisk: "SSD", Limit: 5, Offset: 202},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCriteria(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCriteriaErrors(t *testing.T) {
	tests := []string{
		"",
		"color = red",
		"storage IN (1TB, 2TB)",
		"limit = many",
		"ram =",
		"ram IN 16GB",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := ParseCriteria(input)
			assert.Error(t, err)
		})
	}
}
