package services

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/ewsctl/internal/core/domain"
)

// observe applies the error policy shared by every public mailbox operation.
// Lookup failures are logged with the operation and its arguments and
// returned as the absence result. Every other error is returned unchanged
// apart from the operation prefix.
func (m *Mailbox) observe(op string, args map[string]any, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrLookup) {
		fields := map[string]any{"op": op}
		for k, v := range args {
			fields[k] = v
		}
		m.log.With(fields).Warn("ews: %s: %v", op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsAbsent reports whether err is the absence result of a lookup.
func IsAbsent(err error) bool {
	return errors.Is(err, domain.ErrLookup)
}
