// Package apperrors holds the error taxonomy shared by the rendering pipeline
// and the services around it. Callers match with errors.Is / errors.As.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrTemplateFormat   = errors.New("template format invalid")
	ErrPayloadParse     = errors.New("payload parse failed")
	// ErrMissingAnchorValue is matched by every *MissingAnchorValueError.
	ErrMissingAnchorValue = errors.New("missing anchor value")
	// ErrAnchorNotFound signals an anchor that vanished between extraction and
	// substitution. It is an internal consistency fault, not a user error.
	ErrAnchorNotFound = errors.New("anchor not found")
	ErrRender         = errors.New("render failed")
	ErrPersistence    = errors.New("persistence failed")

	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUpload          = errors.New("upload failed")
)

// MissingAnchorValueError names the first anchor, in document order, that had
// no payload entry under strict resolution.
type MissingAnchorValueError struct {
	Anchor string
}

func (e *MissingAnchorValueError) Error() string {
	return fmt.Sprintf("%s: %q", ErrMissingAnchorValue, e.Anchor)
}

func (e *MissingAnchorValueError) Is(target error) bool {
	return target == ErrMissingAnchorValue
}

// Kind returns a stable machine-readable name for err, or "internal".
func Kind(err error) string {
	var missing *MissingAnchorValueError
	switch {
	case errors.As(err, &missing):
		return "missing_anchor_value"
	case errors.Is(err, ErrTemplateNotFound):
		return "template_not_found"
	case errors.Is(err, ErrTemplateFormat):
		return "template_format"
	case errors.Is(err, ErrPayloadParse):
		return "payload_parse"
	case errors.Is(err, ErrAnchorNotFound):
		return "anchor_not_found"
	case errors.Is(err, ErrRender):
		return "render"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUpload):
		return "upload"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	default:
		return "internal"
	}
}
