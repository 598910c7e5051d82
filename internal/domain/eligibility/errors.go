package eligibility

import (
	"fmt"

	"github.com/dropship/backend/internal/domain/shared"
)

// Engine errors. Each one belongs to a broader shared kind so callers can
// test with errors.Is(err, shared.ErrInvalidInput) or the specific value.
var (
	ErrUnknownBracket     = shared.NewDomainErrorOfKind(shared.ErrInvalidInput, "UNKNOWN_BRACKET", "no shipping bracket covers the weight")
	ErrNoRateDefined      = shared.NewDomainErrorOfKind(shared.ErrUnknownConfiguration, "NO_RATE_DEFINED", "no shipping rate defined")
	ErrUnknownMarketplace = shared.NewDomainErrorOfKind(shared.ErrUnknownConfiguration, "UNKNOWN_MARKETPLACE", "unknown marketplace")
	ErrInvalidSalePrice   = shared.NewDomainErrorOfKind(shared.ErrInvalidInput, "INVALID_SALE_PRICE", "sale price must be positive")
)

func invalidInput(code, message string) error {
	return shared.NewDomainErrorOfKind(shared.ErrInvalidInput, code, message)
}

func unknownConfiguration(code, message string) error {
	return shared.NewDomainErrorOfKind(shared.ErrUnknownConfiguration, code, message)
}

func unknownMarketplace(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownMarketplace, name)
}
