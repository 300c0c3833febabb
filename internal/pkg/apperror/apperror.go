package apperror

// AppError pairs a user-facing message with the HTTP status it should be
// served with. Domain packages declare their sentinel errors as AppErrors so
// handlers can map them to responses without per-error switch statements.
type AppError struct {
	Code    int    // HTTP status reported to the client
	Message string // safe text for the response body
	Err     error  // underlying cause, never exposed to the client
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New builds an AppError from a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap attaches an underlying cause to a new AppError.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
