package survey

import (
	"strings"

	"github.com/tallyline/survey-engine/pkg/models"
)

// Project builds the working dataset for one target column: the identity
// fields plus the answer text, one record per raw row that actually
// answered. Rows whose target value is empty or the sentinel are dropped;
// source order is preserved and the answer text carried verbatim. Missing
// identity cells default to "".
func Project(rows []models.RawRow, identityColumns []string, targetColumn, sentinel string) []models.Row {
	out := make([]models.Row, 0, len(rows))
	for i, raw := range rows {
		text := raw[targetColumn]
		normalized := Normalize(text)
		if normalized == "" || strings.EqualFold(normalized, sentinel) {
			continue
		}

		identity := make(map[string]string, len(identityColumns))
		for _, col := range identityColumns {
			identity[col] = raw[col]
		}

		out = append(out, models.Row{
			Ordinal:  i,
			Identity: identity,
			Text:     text,
		})
	}
	return out
}

// IdentityColumns resolves which header columns hold respondent identity.
// Named columns win when configured and present; otherwise the first
// positional columns are used, fewer if the sheet is narrow. The target
// column is never an identity column.
func IdentityColumns(headers []string, named []string, positional int, targetColumn string) []string {
	if len(named) > 0 {
		out := make([]string, 0, len(named))
		for _, want := range named {
			for _, h := range headers {
				if h == want && h != targetColumn {
					out = append(out, h)
					break
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	out := make([]string, 0, positional)
	for _, h := range headers {
		if len(out) == positional {
			break
		}
		if h == targetColumn {
			continue
		}
		out = append(out, h)
	}
	return out
}
