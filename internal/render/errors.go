package render

import "errors"

// Sentinel kinds for rendering errors.
var (
	ErrParse   = errors.New("template parse failed")
	ErrExecute = errors.New("template execute failed")
)

// ErrWorkbook wraps failures while building the statistics export.
var ErrWorkbook = errors.New("workbook export failed")
