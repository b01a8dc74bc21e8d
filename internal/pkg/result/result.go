// Package result carries the {success, data?, message?} envelope returned by every
// collaborator lookup. Failures travel as values, never as panics.
package result

import "encoding/json"

// Result is either Ok(value) or Err(message).
type Result[T any] struct {
	ok      bool
	value   T
	message string
	cause   error
}

// Ok wraps a successful value.
func Ok[T any](value T) Result[T] {
	return Result[T]{ok: true, value: value}
}

// Err wraps a failure message.
func Err[T any](message string) Result[T] {
	return Result[T]{message: message}
}

// FromError builds Ok(value) when err is nil and Err(err.Error()) otherwise.
func FromError[T any](value T, err error) Result[T] {
	if err != nil {
		return Result[T]{message: err.Error(), cause: err}
	}
	return Ok(value)
}

func (r Result[T]) IsOk() bool { return r.ok }

// Value returns the value and whether the result succeeded.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.ok
}

// ValueOr returns the value on success and fallback otherwise.
func (r Result[T]) ValueOr(fallback T) T {
	if r.ok {
		return r.value
	}
	return fallback
}

func (r Result[T]) Message() string { return r.message }

// Cause is the error a failed result was built from, if any. It is not serialized.
func (r Result[T]) Cause() error { return r.cause }

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// MarshalJSON renders the wire envelope.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	env := envelope[T]{Success: r.ok, Message: r.message}
	if r.ok {
		v := r.value
		env.Data = &v
	}
	return json.Marshal(env)
}

// UnmarshalJSON accepts the wire envelope. A success without data yields the zero value.
func (r *Result[T]) UnmarshalJSON(b []byte) error {
	var env envelope[T]
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	*r = Result[T]{ok: env.Success, message: env.Message}
	if env.Success && env.Data != nil {
		r.value = *env.Data
	}
	return nil
}
