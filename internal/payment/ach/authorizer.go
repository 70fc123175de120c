package ach

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrEmptyNonce is returned when the processor accepts the request but issues no nonce
var ErrEmptyNonce = errors.New("tokenizer returned an empty nonce")

// Authorizer validates bank account forms and obtains a nonce for them
type Authorizer struct {
	tokenizer   Tokenizer
	mandateText string
	logger      *zap.Logger
}

// NewAuthorizer creates a new authorizer. The mandate names merchant.
func NewAuthorizer(tokenizer Tokenizer, merchant string, logger *zap.Logger) *Authorizer {
	return &Authorizer{
		tokenizer:   tokenizer,
		mandateText: MandateText(merchant),
		logger:      logger,
	}
}

// Authorize returns the nonce the server-side payment flow expects.
// A processor rejection is returned as *VendorError.
func (a *Authorizer) Authorize(ctx context.Context, form Form) (string, error) {
	if err := form.Validate(); err != nil {
		return "", err
	}

	result, err := a.tokenizer.Tokenize(ctx, TokenizeRequest{
		BankDetails: BuildBankDetails(form),
		MandateText: a.mandateText,
	})
	if err != nil {
		var vendorErr *VendorError
		if errors.As(err, &vendorErr) {
			a.logger.Warn("Bank account rejected by processor",
				zap.String("ownership_type", form.OwnershipType),
				zap.String("error", vendorErr.Error()))
			return "", err
		}
		a.logger.Error("Bank account tokenization failed", zap.Error(err))
		return "", fmt.Errorf("failed to tokenize bank account: %w", err)
	}

	if result == nil || result.Nonce == "" {
		return "", ErrEmptyNonce
	}

	a.logger.Info("Bank account tokenized", zap.String("ownership_type", form.OwnershipType))
	return result.Nonce, nil
}
