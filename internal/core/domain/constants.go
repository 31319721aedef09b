package domain

import "errors"

var (
	ErrSendingReplyFailed = errors.New("failed to send reply")
	ErrMissingArguments   = errors.New("missing command arguments")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrFormAbandoned      = errors.New("form abandoned")
)
