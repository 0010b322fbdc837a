package detector

import "errors"

// Sentinel kinds for detector errors.
var (
	ErrEmptyImage    = errors.New("empty image")
	ErrDecodeImage   = errors.New("decode image")
	ErrEmptyResponse = errors.New("empty response from detector")
	ErrParse         = errors.New("parse detector response")
)
