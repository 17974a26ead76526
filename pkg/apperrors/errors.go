package apperrors

import "errors"

var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrRunInProgress   = errors.New("run already in progress")
	ErrAlreadyAnalyzed = errors.New("dataset already analyzed")
	ErrNoTopics        = errors.New("no classification topics supplied")
	ErrEmptyWorkbook   = errors.New("workbook has no data rows")
	ErrUnsupportedFile = errors.New("unsupported file type")
)
