// Package ach turns a bank-account form into a payment-method nonce by
// handing the bank details to the processor's tokenizer.
package ach

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Account types
const (
	AccountTypeChecking = "checking"
	AccountTypeSavings  = "savings"
)

// Ownership types
const (
	OwnershipPersonal = "personal"
	OwnershipBusiness = "business"
)

// ErrInvalidForm is returned when a form fails validation
var ErrInvalidForm = errors.New("invalid bank account form")

// BillingAddress is the account holder's billing address
type BillingAddress struct {
	StreetAddress   string `json:"streetAddress" validate:"max=255"`
	ExtendedAddress string `json:"extendedAddress" validate:"max=255"`
	Locality        string `json:"locality" validate:"max=255"`
	Region          string `json:"region" validate:"max=255"`
	PostalCode      string `json:"postalCode" validate:"max=32"`
}

// Form is the bank account submitted by a client
type Form struct {
	AccountNumber     string         `json:"accountNumber" validate:"required,numeric,min=4,max=17"`
	RoutingNumber     string         `json:"routingNumber" validate:"required,numeric,len=9"`
	AccountType       string         `json:"accountType" validate:"required,oneof=checking savings"`
	OwnershipType     string         `json:"ownershipType" validate:"required,oneof=personal business"`
	AccountHolderName string         `json:"accountHolderName" validate:"required,max=255"`
	BillingAddress    BillingAddress `json:"billingAddress"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the form. Every failing field is listed in the error.
func (f *Form) Validate() error {
	f.AccountHolderName = strings.TrimSpace(f.AccountHolderName)

	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidForm, err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fieldProblem(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidForm, strings.Join(problems, "; "))
}

func fieldProblem(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "numeric":
		return fe.Field() + " must contain only digits"
	case "len":
		return fmt.Sprintf("%s must be %s digits", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
}
