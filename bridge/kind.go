package bridge

import (
	"fmt"
	"strings"

	"github.com/nicholasgasior/htmd"
)

// ParseKind maps a result discriminant to its variant. Matching is case
// insensitive and accepts both preservehtml spellings.
func ParseKind(s string) (htmd.ResultKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "continue":
		return htmd.ResultContinue, true
	case "custom":
		return htmd.ResultCustom, true
	case "skip":
		return htmd.ResultSkip, true
	case "preservehtml", "preserve_html":
		return htmd.ResultPreserveHTML, true
	case "error":
		return htmd.ResultError, true
	}
	return 0, false
}

// DecodeError describes a host value that is not a valid result.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string { return "invalid visit result: " + e.Reason }

// Decodef builds a DecodeError.
func Decodef(format string, args ...any) error {
	return &DecodeError{Reason: fmt.Sprintf(format, args...)}
}

// Build assembles a result from a decoded discriminant and payload. Custom
// and Error require a payload; other variants ignore it.
func Build(kind htmd.ResultKind, payload string, hasPayload bool) (htmd.VisitResult, error) {
	switch kind {
	case htmd.ResultContinue:
		return htmd.Continue(), nil
	case htmd.ResultSkip:
		return htmd.Skip(), nil
	case htmd.ResultPreserveHTML:
		return htmd.PreserveHTML(), nil
	case htmd.ResultCustom:
		if !hasPayload {
			return htmd.Continue(), Decodef("custom result without output")
		}
		return htmd.Custom(payload), nil
	case htmd.ResultError:
		if !hasPayload {
			return htmd.Continue(), Decodef("error result without message")
		}
		return htmd.Error(payload), nil
	}
	return htmd.Continue(), Decodef("unknown result type %d", uint32(kind))
}
