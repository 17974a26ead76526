package survey

import "github.com/tallyline/survey-engine/pkg/models"

// Chunk splits rows into batches of at most size rows, preserving order.
// The last batch may be shorter; empty input yields no batches. size must
// be >= 1 (enforced by config validation).
func Chunk(rows []models.Row, size int) [][]models.Row {
	if len(rows) == 0 {
		return nil
	}
	batches := make([][]models.Row, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		batches = append(batches, rows[start:end])
	}
	return batches
}
