package services

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"

	"aoe2-units/models"
	"aoe2-units/scraper"
)

// Code is a coarse error category used in the run summary.
type Code string

const (
	CodeUnknown  Code = "unknown"
	CodeNetwork  Code = "network"
	CodeParse    Code = "parse"
	CodeNotFound Code = "not_found"
	CodeIO       Code = "io"
	CodeCancel   Code = "cancel"
)

// Classify maps err to a Code using sentinel errors and error types only.
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	if errors.Is(err, models.ErrNotFound) {
		return CodeNotFound
	}
	if errors.Is(err, models.ErrParse) {
		return CodeParse
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return CodeParse
	}
	var statusErr *scraper.StatusError
	if errors.As(err, &statusErr) {
		return CodeNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return CodeNetwork
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return CodeIO
	}
	return CodeUnknown
}
