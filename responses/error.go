package responses

import (
	"fmt"
)

// Error codes as they appear on the wire
const (
	CodeUnknownRoute = 1
	CodeBadRequest   = 2
	CodeDuplicateKey = 3
	CodeNotFound     = 4
	CodePersistence  = 5
	CodeInternal     = 6
)

// Error describes an error for humans and machines
type Error struct {
	Status  int    `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	return fmt.Sprintf("status:%d, code:%d, message:%q", e.Status, e.Code, e.Message)
}

// NewError - a brand new error
func NewError(status, code int, message string) *Error {
	return &Error{
		Status:  status,
		Code:    code,
		Message: message,
	}
}
