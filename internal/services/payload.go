package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"DF-DOCGEN/internal/apperrors"
)

type AnchorPolicy string

const (
	// PolicyStrict fails on the first anchor without a payload entry.
	PolicyStrict AnchorPolicy = "strict"
	// PolicyTolerant skips anchors without a payload entry and leaves their
	// template content as it is.
	PolicyTolerant AnchorPolicy = "tolerant"
)

func ParseAnchorPolicy(s string) (AnchorPolicy, error) {
	switch AnchorPolicy(s) {
	case "", PolicyStrict:
		return PolicyStrict, nil
	case PolicyTolerant:
		return PolicyTolerant, nil
	default:
		return "", fmt.Errorf("%w: unknown anchor policy %q", apperrors.ErrInvalidArgument, s)
	}
}

// Binding is one resolved anchor value.
type Binding struct {
	Anchor string
	Value  string
}

// ParsePayload decodes a JSON object into anchor values. Numbers keep their
// literal text, booleans become "true"/"false" and null becomes "". An empty
// body or a bare null is an empty payload.
func ParsePayload(raw []byte) (map[string]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return map[string]string{}, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var fields map[string]any
	if err := decoder.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPayloadParse, err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after payload object", apperrors.ErrPayloadParse)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: payload must be a JSON object", apperrors.ErrPayloadParse)
	}

	payload := make(map[string]string, len(fields))
	for key, value := range fields {
		switch v := value.(type) {
		case string:
			payload[key] = v
		case json.Number:
			payload[key] = v.String()
		case bool:
			if v {
				payload[key] = "true"
			} else {
				payload[key] = "false"
			}
		case nil:
			payload[key] = ""
		default:
			return nil, fmt.Errorf("%w: value of %q must be a string, number, boolean or null", apperrors.ErrPayloadParse, key)
		}
	}
	return payload, nil
}

type Resolver struct {
	Policy AnchorPolicy
}

// Resolve pairs every anchor with its payload value in document order.
// Payload keys that match no anchor are ignored.
func (r Resolver) Resolve(anchors []string, payload map[string]string) ([]Binding, error) {
	bindings := make([]Binding, 0, len(anchors))
	for _, anchor := range anchors {
		value, ok := payload[anchor]
		if !ok {
			if r.Policy == PolicyTolerant {
				continue
			}
			return nil, &apperrors.MissingAnchorValueError{Anchor: anchor}
		}
		bindings = append(bindings, Binding{Anchor: anchor, Value: value})
	}
	return bindings, nil
}
