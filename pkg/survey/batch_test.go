package survey

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyline/survey-engine/pkg/models"
)

func makeRows(n int) []models.Row {
	rows := make([]models.Row, n)
	for i := range rows {
		rows[i] = models.Row{Ordinal: i, Text: fmt.Sprintf("answer %d", i)}
	}
	return rows
}

func TestChunkIsLosslessAndOrderPreserving(t *testing.T) {
	rows := makeRows(25)

	for _, size := range []int{1, 2, 7, 10, 25, 300} {
		batches := Chunk(rows, size)

		var flattened []models.Row
		for _, b := range batches {
			flattened = append(flattened, b...)
		}
		assert.Equal(t, rows, flattened, "size %d", size)
	}
}

func TestChunkBatchCount(t *testing.T) {
	tests := []struct {
		rows    int
		size    int
		batches int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{300, 300, 1},
		{301, 300, 2},
	}

	for _, tt := range tests {
		batches := Chunk(makeRows(tt.rows), tt.size)
		assert.Len(t, batches, tt.batches, "%d rows, size %d", tt.rows, tt.size)
	}
}

func TestChunkLastBatchShort(t *testing.T) {
	batches := Chunk(makeRows(25), 10)

	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 10)
	assert.Len(t, batches[1], 10)
	assert.Len(t, batches[2], 5)
}

func TestChunkEmptyInput(t *testing.T) {
	assert.Empty(t, Chunk(nil, 10))
	assert.Empty(t, Chunk([]models.Row{}, 10))
}
