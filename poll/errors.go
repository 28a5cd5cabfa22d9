package poll

import "errors"

var (
	ErrNotFound      = errors.New("poll not found")
	ErrPollClosed    = errors.New("poll is closed")
	ErrAlreadyClosed = errors.New("poll is already closed")
	ErrForbidden     = errors.New("only the poll creator can do that")

	ErrEmptyQuestion             = errors.New("poll question cannot be empty")
	ErrTooFewOptions             = errors.New("a poll needs at least 2 options")
	ErrEmptySelection            = errors.New("no options were selected")
	ErrInvalidOption             = errors.New("option does not belong to this poll")
	ErrMultipleAnswersNotAllowed = errors.New("this poll only allows a single answer")
	ErrOptionsLocked             = errors.New("this poll does not accept new options")
	ErrEmptyText                 = errors.New("option text cannot be empty")
)
