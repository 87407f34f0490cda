package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/transit_finance/internal/apperrors"
	"github.com/SscSPs/transit_finance/internal/core/domain"
	portsrepo "github.com/SscSPs/transit_finance/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/transit_finance/internal/core/ports/services"
	"github.com/SscSPs/transit_finance/internal/dto"
	"github.com/SscSPs/transit_finance/internal/utils"
	"github.com/SscSPs/transit_finance/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const auditModuleRevenue = "REVENUE"

// LedgerAccountCodes names the chart-of-accounts codes the revenue bridge posts to.
type LedgerAccountCodes struct {
	Cash             string
	Bank             string
	DefaultRevenue   string
	CollectionSource string
}

// revenueService records cash received and bridges it into the general ledger.
type revenueService struct {
	BaseService
	revenueRepo portsrepo.RevenueRepositoryFacade
	journalSvc  portssvc.JournalSvcFacade
	accountSvc  portssvc.AccountReaderSvc
	codes       LedgerAccountCodes
}

// NewRevenueService creates a new RevenueService.
func NewRevenueService(
	revenueRepo portsrepo.RevenueRepositoryFacade,
	journalSvc portssvc.JournalSvcFacade,
	accountSvc portssvc.AccountReaderSvc,
	codes LedgerAccountCodes,
	options ...ServiceOption,
) portssvc.RevenueSvcFacade {
	return &revenueService{
		BaseService: newBaseService(options),
		revenueRepo: revenueRepo,
		journalSvc:  journalSvc,
		accountSvc:  accountSvc,
		codes:       codes,
	}
}

var _ portssvc.RevenueSvcFacade = (*revenueService)(nil)

// debitAccountFor picks the cash or bank account for a payment method.
func (s *revenueService) debitAccountFor(method domain.PaymentMethod) string {
	if method.SettlesThroughBank() {
		return s.codes.Bank
	}
	return s.codes.Cash
}

// creditAccountFor picks the revenue account pinned on the source, else the default.
func (s *revenueService) creditAccountFor(source *domain.RevenueSource) string {
	if source.AccountCode != "" {
		return source.AccountCode
	}
	return s.codes.DefaultRevenue
}

func (s *revenueService) CreateRevenueSource(ctx context.Context, req dto.CreateRevenueSourceRequest, userID string) (*domain.RevenueSource, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if req.AccountCode != "" {
		if _, err := s.accountSvc.LookupAccount(ctx, req.AccountCode); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: account %s does not exist or is inactive", apperrors.ErrValidation, req.AccountCode)
			}
			return nil, err
		}
	}

	source := domain.RevenueSource{
		SourceID:    uuid.NewString(),
		Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:        req.Name,
		AccountCode: req.AccountCode,
		IsActive:    true,
		AuditFields: domain.NewAuditFields(userID, s.Now()),
	}
	err := s.InTx(ctx, func(ctx context.Context) error {
		if err := s.revenueRepo.SaveSource(ctx, source); err != nil {
			return err
		}
		s.RecordAudit(ctx, domain.AuditCreate, "REVENUE_SOURCE", source.SourceID, nil, source, userID)
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save revenue source", slog.String("code", source.Code))
		}
		return nil, err
	}
	s.LogInfo(ctx, "Revenue source created", slog.String("source_id", source.SourceID), slog.String("code", source.Code))
	return &source, nil
}

func (s *revenueService) ListRevenueSources(ctx context.Context) ([]domain.RevenueSource, error) {
	sources, err := s.revenueRepo.ListSources(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list revenue sources")
		return nil, err
	}
	if sources == nil {
		sources = []domain.RevenueSource{}
	}
	return sources, nil
}

func (s *revenueService) GetRevenue(ctx context.Context, revenueID string) (*domain.Revenue, error) {
	revenue, err := s.revenueRepo.FindRevenueByID(ctx, revenueID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get revenue", slog.String("revenue_id", revenueID))
		}
		return nil, err
	}
	return revenue, nil
}

func (s *revenueService) ListRevenues(ctx context.Context, params dto.ListRevenuesParams) (*dto.ListRevenuesResponse, error) {
	if err := dto.Validate(params); err != nil {
		return nil, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	filter := portsrepo.RevenueFilter{
		SourceID:     params.SourceID,
		Status:       domain.RevenueStatus(params.Status),
		ReceivableID: params.ReceivableID,
		FromDate:     params.FromDate,
		ToDate:       params.ToDate,
	}
	revenues, nextToken, err := s.revenueRepo.ListRevenues(ctx, filter, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list revenues", slog.Int("limit", limit))
		return nil, err
	}
	if revenues == nil {
		revenues = []domain.Revenue{}
	}
	return &dto.ListRevenuesResponse{Revenues: revenues, NextToken: nextToken}, nil
}

// newRevenue builds an unsaved RECORDED revenue.
func (s *revenueService) newRevenue(sourceID string, amount decimal.Decimal, req dto.CreateRevenueRequest, userID string) (domain.Revenue, error) {
	date := dateOnly(req.RevenueDate)
	code, err := utils.GenerateDocumentCode("REV", date)
	if err != nil {
		return domain.Revenue{}, fmt.Errorf("generating revenue code: %w", err)
	}
	return domain.Revenue{
		RevenueID:       uuid.NewString(),
		Code:            code,
		SourceID:        sourceID,
		Amount:          amount,
		RevenueDate:     date,
		Description:     req.Description,
		PaymentMethod:   req.PaymentMethod,
		ReferenceNumber: req.ReferenceNumber,
		ReceivableID:    req.ReceivableID,
		Status:          domain.RevenueRecorded,
		AuditFields:     domain.NewAuditFields(userID, s.Now()),
	}, nil
}

// activeSource loads a source and rejects inactive ones.
func (s *revenueService) activeSource(ctx context.Context, sourceID string) (*domain.RevenueSource, error) {
	source, err := s.revenueRepo.FindSourceByID(ctx, sourceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: revenue source %s does not exist", apperrors.ErrValidation, sourceID)
		}
		return nil, err
	}
	if !source.IsActive {
		return nil, fmt.Errorf("%w: revenue source %s is inactive", apperrors.ErrValidation, source.Code)
	}
	return source, nil
}

// dropDeletedLink clears the journal link of revenue when its DRAFT entry has since been deleted.
func (s *revenueService) dropDeletedLink(ctx context.Context, revenue *domain.Revenue) error {
	if revenue.JournalEntryID == nil {
		return nil
	}
	entry, err := s.journalSvc.GetEntry(ctx, *revenue.JournalEntryID)
	if err != nil {
		return err
	}
	if entry.Status == domain.JournalDeleted {
		s.GetLogger(ctx).Warn("Linked journal entry was deleted, recognising revenue again",
			slog.String("revenue_id", revenue.RevenueID),
			slog.String("entry_id", entry.EntryID))
		revenue.JournalEntryID = nil
	}
	return nil
}

// recognize creates the DRAFT journal entry for revenue (debit cash/bank, credit revenue) and links it.
func (s *revenueService) recognize(ctx context.Context, revenue *domain.Revenue, source *domain.RevenueSource, userID string) error {
	if revenue.JournalEntryID != nil {
		return apperrors.NewConflictError(fmt.Sprintf("revenue %s is already recognised", revenue.Code))
	}

	module := domain.ModuleRevenue
	if revenue.ReceivableID != nil {
		module = domain.ModuleReceivable
	}
	description := revenue.Description
	if description == "" {
		description = fmt.Sprintf("%s %s", source.Name, revenue.Code)
	}

	entry, err := s.journalSvc.CreateAuto(ctx, dto.CreateJournalEntryRequest{
		SourceModule: module,
		ReferenceID:  revenue.RevenueID,
		Description:  description,
		EntryDate:    revenue.RevenueDate,
		Lines: []dto.JournalLineRequest{
			{AccountCode: s.debitAccountFor(revenue.PaymentMethod), Debit: revenue.Amount, Credit: decimal.Zero, Description: description},
			{AccountCode: s.creditAccountFor(source), Debit: decimal.Zero, Credit: revenue.Amount, Description: description},
		},
	}, userID)
	if err != nil {
		return err
	}

	revenue.JournalEntryID = &entry.EntryID
	revenue.Touch(userID, s.Now())
	if err := s.revenueRepo.UpdateRevenueLedgerLink(ctx, *revenue); err != nil {
		return err
	}
	revenue.Version++
	return nil
}

func (s *revenueService) CreateRevenue(ctx context.Context, req dto.CreateRevenueRequest, userID string) (_ *domain.Revenue, err error) {
	ctx, span := s.StartSpan(ctx, "revenue.CreateRevenue", attribute.String("revenue.source_id", req.SourceID))
	defer func() { EndSpan(span, err) }()

	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if err := accounting.ValidatePositiveMoney(req.Amount); err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	if !req.PaymentMethod.IsValid() {
		return nil, fmt.Errorf("%w: unknown payment method %s", apperrors.ErrValidation, req.PaymentMethod)
	}

	var revenue domain.Revenue
	err = s.InTx(ctx, func(ctx context.Context) error {
		source, err := s.activeSource(ctx, req.SourceID)
		if err != nil {
			return err
		}
		if revenue, err = s.newRevenue(source.SourceID, req.Amount, req, userID); err != nil {
			return err
		}
		if err := s.revenueRepo.SaveRevenue(ctx, revenue); err != nil {
			return err
		}
		if err := s.recognize(ctx, &revenue, source, userID); err != nil {
			return err
		}
		s.RecordAudit(ctx, domain.AuditCreate, auditModuleRevenue, revenue.RevenueID, nil, revenue, userID)
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to create revenue", slog.String("source_id", req.SourceID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Revenue recorded", slog.String("revenue_id", revenue.RevenueID), slog.String("code", revenue.Code))
	return &revenue, nil
}

func (s *revenueService) RecognizeRevenue(ctx context.Context, revenueID string, userID string) (*domain.Revenue, error) {
	var revenue *domain.Revenue
	err := s.InTx(ctx, func(ctx context.Context) error {
		var err error
		if revenue, err = s.revenueRepo.FindRevenueByIDForUpdate(ctx, revenueID); err != nil {
			return err
		}
		before := *revenue
		if err := s.dropDeletedLink(ctx, revenue); err != nil {
			return err
		}
		source, err := s.revenueRepo.FindSourceByID(ctx, revenue.SourceID)
		if err != nil {
			return err
		}
		if err := s.recognize(ctx, revenue, source, userID); err != nil {
			return err
		}
		s.RecordAudit(ctx, domain.AuditUpdate, auditModuleRevenue, revenueID, before, revenue, userID)
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrConflict) && !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to recognise revenue", slog.String("revenue_id", revenueID))
		}
		return nil, err
	}
	return revenue, nil
}

func (s *revenueService) PostRevenueToGL(ctx context.Context, revenueID string, userID string) (_ *domain.Revenue, err error) {
	ctx, span := s.StartSpan(ctx, "revenue.PostRevenueToGL", attribute.String("revenue.id", revenueID))
	defer func() { EndSpan(span, err) }()

	var revenue *domain.Revenue
	err = s.InTx(ctx, func(ctx context.Context) error {
		var err error
		if revenue, err = s.revenueRepo.FindRevenueByIDForUpdate(ctx, revenueID); err != nil {
			return err
		}
		if revenue.Status != domain.RevenueRecorded {
			return apperrors.NewConflictError(fmt.Sprintf("revenue %s is already %s", revenue.Code, revenue.Status))
		}
		before := *revenue
		if err := s.dropDeletedLink(ctx, revenue); err != nil {
			return err
		}

		if revenue.JournalEntryID == nil {
			source, err := s.revenueRepo.FindSourceByID(ctx, revenue.SourceID)
			if err != nil {
				return err
			}
			if err := s.recognize(ctx, revenue, source, userID); err != nil {
				return err
			}
		}
		if _, err := s.journalSvc.Post(ctx, *revenue.JournalEntryID, userID); err != nil {
			return err
		}

		revenue.Status = domain.RevenuePosted
		revenue.Touch(userID, s.Now())
		if err := s.revenueRepo.UpdateRevenueLedgerLink(ctx, *revenue); err != nil {
			return err
		}
		revenue.Version++

		s.RecordAudit(ctx, domain.AuditPost, auditModuleRevenue, revenueID, before, revenue, userID)
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrConflict) && !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to post revenue", slog.String("revenue_id", revenueID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Revenue posted to general ledger", slog.String("revenue_id", revenueID), slog.String("entry_id", *revenue.JournalEntryID))
	return revenue, nil
}

func (s *revenueService) ReverseRevenue(ctx context.Context, revenueID string, req dto.ReverseRevenueRequest, userID string) (_ *domain.Revenue, err error) {
	ctx, span := s.StartSpan(ctx, "revenue.ReverseRevenue", attribute.String("revenue.id", revenueID))
	defer func() { EndSpan(span, err) }()

	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	var revenue *domain.Revenue
	err = s.InTx(ctx, func(ctx context.Context) error {
		var err error
		if revenue, err = s.revenueRepo.FindRevenueByIDForUpdate(ctx, revenueID); err != nil {
			return err
		}
		if revenue.Status != domain.RevenuePosted || revenue.JournalEntryID == nil {
			return apperrors.NewConflictError(fmt.Sprintf("revenue %s is %s, only posted revenue can be reversed", revenue.Code, revenue.Status))
		}
		before := *revenue

		reversal, err := s.journalSvc.CreateReversal(ctx, *revenue.JournalEntryID, dto.ReverseJournalEntryRequest{Reason: req.Reason}, userID)
		if err != nil {
			return err
		}

		revenue.ReversalEntryID = &reversal.EntryID
		revenue.Status = domain.RevenueReversed
		revenue.Touch(userID, s.Now())
		if err := s.revenueRepo.UpdateRevenueLedgerLink(ctx, *revenue); err != nil {
			return err
		}
		revenue.Version++

		s.RecordAudit(ctx, domain.AuditReverse, auditModuleRevenue, revenueID, before, revenue, userID)
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrConflict) && !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to reverse revenue", slog.String("revenue_id", revenueID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Revenue reversed", slog.String("revenue_id", revenueID), slog.String("reversal_entry_id", *revenue.ReversalEntryID))
	return revenue, nil
}

func (s *revenueService) RecordReceivableCollection(ctx context.Context, collection dto.ReceivableCollection, userID string) (*domain.Revenue, error) {
	if err := accounting.ValidatePositiveMoney(collection.Amount); err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}

	var revenue domain.Revenue
	err := s.InTx(ctx, func(ctx context.Context) error {
		source, err := s.revenueRepo.FindSourceByCode(ctx, s.codes.CollectionSource)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: revenue source %s is not configured", apperrors.ErrInternal, s.codes.CollectionSource)
			}
			return err
		}

		receivableID := collection.ReceivableID
		revenue, err = s.newRevenue(source.SourceID, collection.Amount, dto.CreateRevenueRequest{
			RevenueDate:     collection.Date,
			Description:     fmt.Sprintf("Collection on %s from %s", collection.ReceivableCode, collection.DebtorName),
			PaymentMethod:   collection.PaymentMethod,
			ReferenceNumber: collection.ReferenceNumber,
			ReceivableID:    &receivableID,
		}, userID)
		if err != nil {
			return err
		}
		if err := s.revenueRepo.SaveRevenue(ctx, revenue); err != nil {
			return err
		}
		if err := s.recognize(ctx, &revenue, source, userID); err != nil {
			return err
		}
		s.RecordAudit(ctx, domain.AuditCreate, auditModuleRevenue, revenue.RevenueID, nil, revenue, userID)
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to record receivable collection", slog.String("receivable_id", collection.ReceivableID))
		return nil, err
	}
	return &revenue, nil
}
