package ach

import "strings"

// BankDetails is the payload the tokenizer receives. Personal accounts carry
// FirstName and LastName, business accounts carry BusinessName.
type BankDetails struct {
	AccountNumber  string         `json:"accountNumber"`
	RoutingNumber  string         `json:"routingNumber"`
	AccountType    string         `json:"accountType"`
	OwnershipType  string         `json:"ownershipType"`
	FirstName      string         `json:"firstName,omitempty"`
	LastName       string         `json:"lastName,omitempty"`
	BusinessName   string         `json:"businessName,omitempty"`
	BillingAddress BillingAddress `json:"billingAddress"`
}

// BuildBankDetails maps a form to the tokenizer payload. A personal holder
// name is split on its first space; the rest of the name is the last name.
func BuildBankDetails(form Form) BankDetails {
	details := BankDetails{
		AccountNumber:  form.AccountNumber,
		RoutingNumber:  form.RoutingNumber,
		AccountType:    form.AccountType,
		OwnershipType:  form.OwnershipType,
		BillingAddress: form.BillingAddress,
	}

	if form.OwnershipType == OwnershipPersonal {
		parts := strings.SplitN(form.AccountHolderName, " ", 2)
		details.FirstName = parts[0]
		if len(parts) > 1 {
			details.LastName = parts[1]
		}
		return details
	}

	details.BusinessName = form.AccountHolderName
	return details
}
