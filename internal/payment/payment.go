package payment

import (
	"context"
	"fmt"
)

// Intent describes the checkout the provider should host.
type Intent struct {
	OrderID     string
	AmountMinor int64 // total in minor units (pence)
	Currency    string
	Description string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// Provider hosts a payment page for a confirmed order. A failure here
// never invalidates the order; it stays saved as pending.
type Provider interface {
	CreateCheckout(ctx context.Context, intent Intent) (payURL string, err error)
}

// ProviderError wraps whatever the provider reported.
type ProviderError struct {
	Reason string
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment provider: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("payment provider: %s", e.Reason)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
