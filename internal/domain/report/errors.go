package report

import "errors"

var (
	ErrInvalidPeriod = errors.New("period must be one of weekly, monthly, quarterly, yearly")
	ErrInvalidMonth  = errors.New("month must be between 1 and 12")
	ErrInvalidYear   = errors.New("year must be a valid year")
)
