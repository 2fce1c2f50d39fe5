package reports

import "errors"

var (
	// ErrUnknownFlag is returned for a selection flag outside NationalTeam, RegionalTeam, JEM, EM and WM.
	ErrUnknownFlag = errors.New("unknown selection flag")
	// ErrUnknownExport is returned for an export kind other than soc or athletes.
	ErrUnknownExport = errors.New("unknown export kind")
	// ErrInvalidQuery is returned when a required query field is blank.
	ErrInvalidQuery = errors.New("invalid query")
)
