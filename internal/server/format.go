package server

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Format selects the response body encoding of the catch-all handler.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseFormat accepts the format names case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "text":
		return FormatText, nil
	default:
		return "", validation.NewError("validation_invalid_format", "format must be one of: json, text")
	}
}
