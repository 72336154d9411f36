package handler

import "github.com/fulluproar/backoffice/internal/interfaces/http/dto"

// APIResponse is the success envelope with a typed data field, used by the
// API docs and by tests decoding responses
// @Description Standard response envelope
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the failure envelope
// @Description Error response envelope
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}
