package response

import (
	"errors"
	"fmt"
)

// Error is the failure reported by a tagged NO or BAD response.
type Error struct {
	Status Status
	Code   string
	Text   string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%v [%v] %v", e.Status, e.Code, e.Text)
	}

	return fmt.Sprintf("%v %v", e.Status, e.Text)
}

// IsNo returns true if the error is a tagged NO response.
func IsNo(err error) bool {
	var resErr *Error
	return errors.As(err, &resErr) && resErr.Status == StatusNo
}

// IsBad returns true if the error is a tagged BAD response.
func IsBad(err error) bool {
	var resErr *Error
	return errors.As(err, &resErr) && resErr.Status == StatusBad
}
