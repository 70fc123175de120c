package ach

import (
	"context"
	"fmt"
	"strings"
)

// DefaultMandateTemplate is the debit authorization shown to the account
// holder. %s is replaced by the merchant name.
const DefaultMandateTemplate = `By clicking ["Checkout"], I authorize Braintree, a service of PayPal, on behalf of %s (i) to verify my bank account information using bank information and consumer reports and (ii) to debit my bank account.`

// MandateText renders the mandate for merchant
func MandateText(merchant string) string {
	return fmt.Sprintf(DefaultMandateTemplate, merchant)
}

// TokenizeRequest is sent to the processor
type TokenizeRequest struct {
	BankDetails BankDetails `json:"bankDetails"`
	MandateText string      `json:"mandateText"`
}

// TokenizeResult carries the single-use nonce issued for the bank account
type TokenizeResult struct {
	Nonce string `json:"nonce"`
}

// Tokenizer exchanges bank details for a nonce. The processor protocol is opaque.
type Tokenizer interface {
	Tokenize(ctx context.Context, req TokenizeRequest) (*TokenizeResult, error)
}

// VendorError is a rejection reported by the processor
type VendorError struct {
	StatusCode int
	Message    string
	Detail     string
}

// Error joins the processor message and its first detail with a space
func (e *VendorError) Error() string {
	return strings.TrimSpace(e.Message + " " + e.Detail)
}
