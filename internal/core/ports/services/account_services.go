package services

import (
	"context"

	"github.com/SscSPs/transit_finance/internal/core/domain"
	"github.com/SscSPs/transit_finance/internal/dto"
)

// AccountReaderSvc defines read operations for the chart of accounts
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// LookupAccount resolves an active account by code. Inactive or unknown codes yield ErrNotFound.
	LookupAccount(ctx context.Context, code string) (*domain.Account, error)

	// LookupAccounts resolves several active accounts by code, keyed by code.
	// Any unknown or inactive code fails the whole lookup with ErrValidation.
	LookupAccounts(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a page of accounts.
	ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for the chart of accounts
type AccountWriterSvc interface {
	// CreateAccount persists a new account.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, accountID string, userID string) error
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
