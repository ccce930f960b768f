package dashboard

import "errors"

var (
	ErrBusy   = errors.New("an analysis is already in progress")
	ErrClosed = errors.New("dashboard is closed")
)
