package ach

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockTokenizer struct {
	TokenizeFunc func(ctx context.Context, req TokenizeRequest) (*TokenizeResult, error)
	requests     []TokenizeRequest
}

func (m *mockTokenizer) Tokenize(ctx context.Context, req TokenizeRequest) (*TokenizeResult, error) {
	m.requests = append(m.requests, req)
	if m.TokenizeFunc != nil {
		return m.TokenizeFunc(ctx, req)
	}
	return &TokenizeResult{Nonce: "nonce-123"}, nil
}

func validForm(ownership, holder string) Form {
	return Form{
		AccountNumber:     "1000000000",
		RoutingNumber:     "011000015",
		AccountType:       AccountTypeChecking,
		OwnershipType:     ownership,
		AccountHolderName: holder,
		BillingAddress: BillingAddress{
			StreetAddress: "1 Main St",
			Locality:      "Springfield",
			Region:        "IL",
			PostalCode:    "62701",
		},
	}
}

func TestBuildBankDetails_Personal(t *testing.T) {
	details := BuildBankDetails(validForm(OwnershipPersonal, "Jane Doe"))

	assert.Equal(t, "Jane", details.FirstName)
	assert.Equal(t, "Doe", details.LastName)
	assert.Empty(t, details.BusinessName)
	assert.Equal(t, "62701", details.BillingAddress.PostalCode)

	raw, err := json.Marshal(details)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "businessName")
	assert.Contains(t, string(raw), `"firstName":"Jane"`)
}

func TestBuildBankDetails_PersonalNameVariants(t *testing.T) {
	tests := []struct {
		holder string
		first  string
		last   string
	}{
		{"Cher", "Cher", ""},
		{"Mary Ann Smith", "Mary", "Ann Smith"},
	}

	for _, tt := range tests {
		t.Run(tt.holder, func(t *testing.T) {
			details := BuildBankDetails(validForm(OwnershipPersonal, tt.holder))
			assert.Equal(t, tt.first, details.FirstName)
			assert.Equal(t, tt.last, details.LastName)
		})
	}
}

func TestBuildBankDetails_Business(t *testing.T) {
	details := BuildBankDetails(validForm(OwnershipBusiness, "Acme Widgets LLC"))

	assert.Equal(t, "Acme Widgets LLC", details.BusinessName)
	assert.Empty(t, details.FirstName)
	assert.Empty(t, details.LastName)

	raw, err := json.Marshal(details)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "firstName")
	assert.NotContains(t, string(raw), "lastName")
}

func TestFormValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *Form)
		wantErr string
	}{
		{"valid", func(f *Form) {}, ""},
		{"missing account number", func(f *Form) { f.AccountNumber = "" }, "accountNumber is required"},
		{"non numeric account", func(f *Form) { f.AccountNumber = "12ab5678" }, "accountNumber must contain only digits"},
		{"short routing number", func(f *Form) { f.RoutingNumber = "12345" }, "routingNumber must be 9 digits"},
		{"unknown account type", func(f *Form) { f.AccountType = "brokerage" }, "accountType must be one of"},
		{"unknown ownership", func(f *Form) { f.OwnershipType = "trust" }, "ownershipType must be one of"},
		{"blank holder name", func(f *Form) { f.AccountHolderName = "   " }, "accountHolderName is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm(OwnershipPersonal, "Jane Doe")
			tt.mutate(&form)

			err := form.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidForm)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestVendorError_Message(t *testing.T) {
	err := &VendorError{Message: "Verification failed.", Detail: "Routing number is invalid."}
	assert.Equal(t, "Verification failed. Routing number is invalid.", err.Error())

	noDetail := &VendorError{Message: "Verification failed."}
	assert.Equal(t, "Verification failed.", noDetail.Error())
}

func TestAuthorizer_Authorize(t *testing.T) {
	tokenizer := &mockTokenizer{}
	authorizer := NewAuthorizer(tokenizer, "Acme Billing", zap.NewNop())

	nonce, err := authorizer.Authorize(context.Background(), validForm(OwnershipPersonal, "Jane Doe"))
	require.NoError(t, err)
	assert.Equal(t, "nonce-123", nonce)

	require.Len(t, tokenizer.requests, 1)
	req := tokenizer.requests[0]
	assert.Equal(t, "Jane", req.BankDetails.FirstName)
	assert.Contains(t, req.MandateText, "on behalf of Acme Billing")
}

func TestAuthorizer_InvalidFormSkipsTokenizer(t *testing.T) {
	tokenizer := &mockTokenizer{}
	authorizer := NewAuthorizer(tokenizer, "Acme Billing", zap.NewNop())

	form := validForm(OwnershipPersonal, "Jane Doe")
	form.RoutingNumber = ""

	_, err := authorizer.Authorize(context.Background(), form)
	assert.ErrorIs(t, err, ErrInvalidForm)
	assert.Empty(t, tokenizer.requests)
}

func TestAuthorizer_VendorErrorPassesThrough(t *testing.T) {
	tokenizer := &mockTokenizer{
		TokenizeFunc: func(ctx context.Context, req TokenizeRequest) (*TokenizeResult, error) {
			return nil, &VendorError{StatusCode: 422, Message: "Declined.", Detail: "Account closed."}
		},
	}
	authorizer := NewAuthorizer(tokenizer, "Acme Billing", zap.NewNop())

	_, err := authorizer.Authorize(context.Background(), validForm(OwnershipBusiness, "Acme LLC"))
	var vendorErr *VendorError
	require.True(t, errors.As(err, &vendorErr))
	assert.Equal(t, "Declined. Account closed.", vendorErr.Error())
}

func TestAuthorizer_EmptyNonce(t *testing.T) {
	tokenizer := &mockTokenizer{
		TokenizeFunc: func(ctx context.Context, req TokenizeRequest) (*TokenizeResult, error) {
			return &TokenizeResult{}, nil
		},
	}
	authorizer := NewAuthorizer(tokenizer, "Acme Billing", zap.NewNop())

	_, err := authorizer.Authorize(context.Background(), validForm(OwnershipBusiness, "Acme LLC"))
	assert.ErrorIs(t, err, ErrEmptyNonce)
}

func TestHTTPTokenizer_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer client-token", r.Header.Get("Authorization"))

		var req TokenizeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Acme LLC", req.BankDetails.BusinessName)
		assert.NotEmpty(t, req.MandateText)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"nonce":"tokencc_abc"}`))
	}))
	defer server.Close()

	tokenizer := NewHTTPTokenizer(HTTPTokenizerConfig{Endpoint: server.URL, AuthorizationToken: "client-token"})
	result, err := tokenizer.Tokenize(context.Background(), TokenizeRequest{
		BankDetails: BuildBankDetails(validForm(OwnershipBusiness, "Acme LLC")),
		MandateText: MandateText("Acme"),
	})
	require.NoError(t, err)
	assert.Equal(t, "tokencc_abc", result.Nonce)
}

func TestHTTPTokenizer_VendorError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"details":{"originalError":{"message":"Verification failed.","details":{"originalError":[{"message":"Routing number is invalid."},{"message":"ignored"}]}}}}`))
	}))
	defer server.Close()

	tokenizer := NewHTTPTokenizer(HTTPTokenizerConfig{Endpoint: server.URL})
	_, err := tokenizer.Tokenize(context.Background(), TokenizeRequest{})

	var vendorErr *VendorError
	require.True(t, errors.As(err, &vendorErr))
	assert.Equal(t, http.StatusUnprocessableEntity, vendorErr.StatusCode)
	assert.Equal(t, "Verification failed. Routing number is invalid.", vendorErr.Error())
}

func TestHTTPTokenizer_UnparseableError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	tokenizer := NewHTTPTokenizer(HTTPTokenizerConfig{Endpoint: server.URL})
	_, err := tokenizer.Tokenize(context.Background(), TokenizeRequest{})

	var vendorErr *VendorError
	require.True(t, errors.As(err, &vendorErr))
	assert.Equal(t, "tokenizer returned status 502", vendorErr.Error())
}
