package service

import "errors"

// ValidationError marca entradas malformadas o campos prohibidos; el mensaje es
// apto para devolverse al cliente.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(message string) error {
	return &ValidationError{Message: message}
}

var (
	// ErrInvalidCredentials cubre tanto "usuario inexistente" como "password
	// incorrecto": el caller no debe poder distinguirlos.
	ErrInvalidCredentials = errors.New("invalid combination of username/password")
	ErrUserNotFound       = errors.New("user not found")
	ErrNothingToUpdate    = errors.New("nothing to update")
)
