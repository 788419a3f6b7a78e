package stage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks startup or contract-resolution failures.
	// These abort the run; nothing batch-scoped recovers from them.
	ErrConfiguration = errors.New("configuration error")
	// ErrIO marks batch-scoped filesystem failures. The batch is skipped
	// and the run continues.
	ErrIO = errors.New("io error")
	// ErrParse marks unparsable input. Row-scoped occurrences are skipped
	// and counted; a batch-wide occurrence fails that batch only.
	ErrParse = errors.New("parse error")
	// ErrValidation marks records that fail their schema contract.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks missing lookups (provider without a contract,
	// unknown movie key).
	ErrNotFound = errors.New("not found")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error must abort the whole run rather than a
// single batch.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "stage failure"
	}
	return strings.Join(parts, ": ")
}
