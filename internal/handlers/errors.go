package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/therealhieu/wee/internal/shortener"
	"go.uber.org/zap"
)

// errorClass names the class of err for metrics.
func errorClass(err error) string {
	switch {
	case errors.Is(err, shortener.ErrConflict), errors.Is(err, shortener.ErrAlreadyExists):
		return "conflict"
	case errors.Is(err, shortener.ErrNotFound):
		return "not_found"
	case errors.Is(err, shortener.ErrRangeExhausted):
		return "exhausted"
	case errors.Is(err, shortener.ErrTransient):
		return "transient"
	default:
		return "internal"
	}
}

// toHTTPError maps a domain error onto a huma status error.
func toHTTPError(logger *zap.Logger, operation string, err error) error {
	switch {
	case errors.Is(err, shortener.ErrConflict), errors.Is(err, shortener.ErrAlreadyExists):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, shortener.ErrNotFound):
		return huma.Error404NotFound("short url not found")
	}

	logger.Error("request failed",
		zap.String("operation", operation),
		zap.String("class", errorClass(err)),
		zap.Error(err),
	)

	return huma.Error500InternalServerError("internal error")
}
