package dto

import (
	"time"

	"github.com/yigit/schooldesk/internal/pkg/result"
)

// APIResponse is the success envelope: {success, data?, message?}.
type APIResponse struct {
	Success   bool        `json:"success" example:"true"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// OK wraps data in a successful envelope.
func OK(data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// FromResult converts a successful lookup into the response envelope.
// Callers handle the failure branch themselves so the status code reflects the cause.
func FromResult[T any](r result.Result[T]) APIResponse {
	v, _ := r.Value()
	return APIResponse{
		Success:   r.IsOk(),
		Data:      v,
		Message:   r.Message(),
		Timestamp: time.Now(),
	}
}
