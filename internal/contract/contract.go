// Package contract reports breaches of upstream data contracts: states that
// mean a collaborator handed the pre-ranker inconsistent data rather than a
// runtime condition worth recovering from.
package contract

import (
	"fmt"
	"log/slog"

	apperrors "github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/errors"
)

// Checker panics on a breach when Strict is set, and logs it otherwise.
// The zero value logs through slog.Default.
type Checker struct {
	Strict bool
	Logger *slog.Logger
}

// Breach records a violated contract. args are slog key/value pairs.
func (c Checker) Breach(msg string, args ...any) {
	if c.Strict {
		panic(fmt.Errorf("%w: %s %v", apperrors.ErrContractViolation, msg, args))
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("contract violation: "+msg, args...)
}
