package account

import "errors"

// Store error taxonomy. Repositories translate their backend's failure
// modes into these so handlers never inspect driver errors.
var (
	ErrNotFound        = errors.New("account not found")
	ErrEmailTaken      = errors.New("email already exists")
	ErrNoStudentDetail = errors.New("no student detail row")
)
