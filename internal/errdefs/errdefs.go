package errdefs

type ErrorType int

const (
	ErrTypeParseFailed ErrorType = iota
	ErrTypeIndexingFailed
	ErrTypeSearchFailed
	ErrTypeStoreFailed
	ErrTypeSnapshotFailed
	ErrTypeWatcherFailed
	ErrTypeInvalidConfig
	ErrTypeFileAccessDenied
)

type CustomError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

func NewCustomError(errType ErrorType, message string, err error) error {
	return &CustomError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

var (
	ErrParseFailed      = &CustomError{Type: ErrTypeParseFailed, Message: "query parse failed"}
	ErrIndexingFailed   = &CustomError{Type: ErrTypeIndexingFailed, Message: "indexing failed"}
	ErrSearchFailed     = &CustomError{Type: ErrTypeSearchFailed, Message: "search failed"}
	ErrStoreFailed      = &CustomError{Type: ErrTypeStoreFailed, Message: "store operation failed"}
	ErrSnapshotFailed   = &CustomError{Type: ErrTypeSnapshotFailed, Message: "snapshot failed"}
	ErrWatcherFailed    = &CustomError{Type: ErrTypeWatcherFailed, Message: "watcher failed"}
	ErrInvalidConfig    = &CustomError{Type: ErrTypeInvalidConfig, Message: "invalid config"}
	ErrFileAccessDenied = &CustomError{Type: ErrTypeFileAccessDenied, Message: "file access denied"}
)
