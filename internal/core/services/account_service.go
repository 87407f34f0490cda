package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/SscSPs/transit_finance/internal/apperrors"
	"github.com/SscSPs/transit_finance/internal/core/domain"
	portsrepo "github.com/SscSPs/transit_finance/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/transit_finance/internal/core/ports/services"
	"github.com/SscSPs/transit_finance/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, options ...ServiceOption) portssvc.AccountSvcFacade {
	return &accountService{
		BaseService: newBaseService(options),
		accountRepo: repo,
	}
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: invalid account type %s", apperrors.ErrValidation, req.AccountType)
	}
	normal := req.NormalBalance
	if normal == "" {
		normal = req.AccountType.DefaultNormalBalance()
	}

	now := s.Now()
	account := domain.Account{
		AccountID:     uuid.NewString(),
		Code:          strings.TrimSpace(req.Code),
		Name:          req.Name,
		AccountType:   req.AccountType,
		NormalBalance: normal,
		Description:   req.Description,
		IsActive:      true,
		Balance:       decimal.Zero,
		AuditFields:   domain.NewAuditFields(userID, now),
	}

	err := s.InTx(ctx, func(ctx context.Context) error {
		if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
			return err
		}
		s.RecordAudit(ctx, domain.AuditCreate, "ACCOUNT", account.AccountID, nil, account, userID)
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save account", slog.String("code", account.Code))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Account created", slog.String("account_id", account.AccountID), slog.String("code", account.Code))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) LookupAccount(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to look up account", slog.String("code", code))
		}
		return nil, err
	}
	if !account.IsActive {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s", code))
	}
	return account, nil
}

func (s *accountService) LookupAccounts(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	unique := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		unique = append(unique, c)
	}

	found, err := s.accountRepo.FindAccountsByCodes(ctx, unique)
	if err != nil {
		s.LogError(ctx, err, "Failed to look up accounts", slog.Int("count", len(unique)))
		return nil, err
	}

	var missing []string
	for _, c := range unique {
		acc, ok := found[c]
		if !ok || !acc.IsActive {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: unknown or inactive account(s): %s", apperrors.ErrValidation, strings.Join(missing, ", "))
	}
	return found, nil
}

// ListAccounts retrieves a page of accounts.
func (s *accountService) ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, limit, params.Offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.Int("limit", limit), slog.Int("offset", params.Offset))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

// DeactivateAccount marks an account as inactive. Posted lines keep referencing it.
func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	err := s.InTx(ctx, func(ctx context.Context) error {
		before, err := s.accountRepo.FindAccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		if !before.IsActive {
			return fmt.Errorf("%w: account %s is already inactive", apperrors.ErrValidation, before.Code)
		}
		if err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, s.Now()); err != nil {
			return err
		}
		after := *before
		after.IsActive = false
		s.RecordAudit(ctx, domain.AuditUpdate, "ACCOUNT", accountID, before, after, userID)
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_id", accountID))
		}
		return err
	}

	s.LogInfo(ctx, "Account deactivated", slog.String("account_id", accountID))
	return nil
}
