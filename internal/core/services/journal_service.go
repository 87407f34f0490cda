package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/transit_finance/internal/apperrors"
	"github.com/SscSPs/transit_finance/internal/core/domain"
	portsrepo "github.com/SscSPs/transit_finance/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/transit_finance/internal/core/ports/services"
	"github.com/SscSPs/transit_finance/internal/dto"
	"github.com/SscSPs/transit_finance/internal/utils"
	"github.com/SscSPs/transit_finance/internal/utils/accounting"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const auditModuleJournal = "JOURNAL"

// journalService owns the journal entry lifecycle: DRAFT -> POSTED -> {ADJUSTED, REVERSED}, DRAFT -> DELETED.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	balanceRepo portsrepo.AccountBalanceWriter
	accountSvc  portssvc.AccountReaderSvc
}

// NewJournalService creates a new JournalService.
func NewJournalService(
	journalRepo portsrepo.JournalRepositoryFacade,
	balanceRepo portsrepo.AccountBalanceWriter,
	accountSvc portssvc.AccountReaderSvc,
	options ...ServiceOption,
) portssvc.JournalSvcFacade {
	return &journalService{
		BaseService: newBaseService(options),
		journalRepo: journalRepo,
		balanceRepo: balanceRepo,
		accountSvc:  accountSvc,
	}
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

func journalLockKey(entryID string) string {
	return "journal:" + entryID
}

// dateOnly strips the clock from t, keeping the calendar day in UTC.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// linesFromRequest converts request lines and checks them, without touching the chart of accounts.
func linesFromRequest(reqLines []dto.JournalLineRequest) ([]domain.JournalEntryLine, error) {
	lines := make([]domain.JournalEntryLine, len(reqLines))
	for i, l := range reqLines {
		lines[i] = domain.JournalEntryLine{
			AccountCode: l.AccountCode,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
			LineOrder:   i + 1,
		}
	}
	if err := accounting.ValidateLines(lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// resolveAccounts fills AccountID on every line; each code must be an active account.
func (s *journalService) resolveAccounts(ctx context.Context, lines []domain.JournalEntryLine) error {
	codes := make([]string, len(lines))
	for i, l := range lines {
		codes[i] = l.AccountCode
	}
	accounts, err := s.accountSvc.LookupAccounts(ctx, codes)
	if err != nil {
		return err
	}
	for i := range lines {
		lines[i].AccountID = accounts[lines[i].AccountCode].AccountID
	}
	return nil
}

// newDraft builds an unsaved DRAFT entry around lines.
func (s *journalService) newDraft(module, referenceID, description string, date time.Time, lines []domain.JournalEntryLine, userID string) (domain.JournalEntry, error) {
	entryDate := dateOnly(date)
	code, err := utils.GenerateDocumentCode("JE", entryDate)
	if err != nil {
		return domain.JournalEntry{}, fmt.Errorf("generating entry code: %w", err)
	}
	entryID := uuid.NewString()
	for i := range lines {
		lines[i].LineID = uuid.NewString()
		lines[i].EntryID = entryID
	}
	totalDebit, totalCredit := accounting.SumLines(lines)
	return domain.JournalEntry{
		EntryID:      entryID,
		Code:         code,
		EntryDate:    entryDate,
		Description:  description,
		SourceModule: module,
		ReferenceID:  referenceID,
		Status:       domain.JournalDraft,
		PreparedBy:   userID,
		TotalDebit:   totalDebit,
		TotalCredit:  totalCredit,
		Lines:        lines,
		AuditFields:  domain.NewAuditFields(userID, s.Now()),
	}, nil
}

// saveDraft persists a new DRAFT entry with its creation history row.
func (s *journalService) saveDraft(ctx context.Context, entry *domain.JournalEntry, related *string, reason string) error {
	if err := s.journalRepo.SaveEntry(ctx, *entry); err != nil {
		return err
	}
	change := domain.JournalStatusChange{
		ChangeID:       uuid.NewString(),
		EntryID:        entry.EntryID,
		ToStatus:       domain.JournalDraft,
		RelatedEntryID: related,
		Reason:         reason,
		ChangedBy:      entry.PreparedBy,
		ChangedAt:      entry.CreatedAt,
	}
	if err := s.journalRepo.SaveStatusChange(ctx, change); err != nil {
		return err
	}
	entry.History = append(entry.History, change)
	return nil
}

// transition moves entry to status `to`, checking the transition table and the stored status,
// and appends a history row.
func (s *journalService) transition(ctx context.Context, entry *domain.JournalEntry, to domain.JournalStatus, related *string, reason, userID string) error {
	from := entry.Status
	if !from.CanTransitionTo(to) {
		return apperrors.NewConflictError(fmt.Sprintf("journal entry %s is %s and cannot become %s", entry.Code, from, to))
	}
	now := s.Now()
	entry.Status = to
	entry.Touch(userID, now)
	if err := s.journalRepo.UpdateEntryStatus(ctx, *entry, from); err != nil {
		return err
	}
	entry.Version++

	change := domain.JournalStatusChange{
		ChangeID:       uuid.NewString(),
		EntryID:        entry.EntryID,
		FromStatus:     from,
		ToStatus:       to,
		RelatedEntryID: related,
		Reason:         reason,
		ChangedBy:      userID,
		ChangedAt:      now,
	}
	if err := s.journalRepo.SaveStatusChange(ctx, change); err != nil {
		return err
	}
	entry.History = append(entry.History, change)
	return nil
}

// requireStatus returns a ConflictError unless entry is in status want.
func requireStatus(entry *domain.JournalEntry, want domain.JournalStatus) error {
	if entry.Status != want {
		return apperrors.NewConflictError(fmt.Sprintf("journal entry %s is %s, expected %s", entry.Code, entry.Status, want))
	}
	return nil
}

func (s *journalService) CreateAuto(ctx context.Context, req dto.CreateJournalEntryRequest, userID string) (_ *domain.JournalEntry, err error) {
	ctx, span := s.StartSpan(ctx, "journal.CreateAuto",
		attribute.String("journal.source_module", req.SourceModule),
		attribute.String("journal.reference_id", req.ReferenceID))
	defer func() { EndSpan(span, err) }()

	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	lines, err := linesFromRequest(req.Lines)
	if err != nil {
		return nil, err
	}

	var entry domain.JournalEntry
	err = s.InTx(ctx, func(ctx context.Context) error {
		if err := s.resolveAccounts(ctx, lines); err != nil {
			return err
		}
		entry, err = s.newDraft(req.SourceModule, req.ReferenceID, req.Description, req.EntryDate, lines, userID)
		if err != nil {
			return err
		}
		if err := s.saveDraft(ctx, &entry, nil, ""); err != nil {
			return err
		}
		s.RecordAudit(ctx, domain.AuditCreate, auditModuleJournal, entry.EntryID, nil, entry, userID)
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to create journal entry", slog.String("source_module", req.SourceModule), slog.String("reference_id", req.ReferenceID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry created", slog.String("entry_id", entry.EntryID), slog.String("code", entry.Code))
	return &entry, nil
}

func (s *journalService) CreateAdjustment(ctx context.Context, originalID string, req dto.AdjustJournalEntryRequest, userID string) (_ *domain.JournalEntry, err error) {
	ctx, span := s.StartSpan(ctx, "journal.CreateAdjustment", attribute.String("journal.entry_id", originalID))
	defer func() { EndSpan(span, err) }()

	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	lines, err := linesFromRequest(req.Lines)
	if err != nil {
		return nil, err
	}
	date := s.Now()
	if req.EntryDate != nil {
		date = *req.EntryDate
	}

	var adjustment domain.JournalEntry
	err = s.WithLock(ctx, journalLockKey(originalID), func(ctx context.Context) error {
		return s.InTx(ctx, func(ctx context.Context) error {
			original, err := s.journalRepo.FindEntryByIDForUpdate(ctx, originalID)
			if err != nil {
				return err
			}
			if err := requireStatus(original, domain.JournalPosted); err != nil {
				return err
			}
			before := *original

			if err := s.resolveAccounts(ctx, lines); err != nil {
				return err
			}
			adjustment, err = s.newDraft(original.SourceModule, original.ReferenceID, req.Description, date, lines, userID)
			if err != nil {
				return err
			}
			adjustment.AdjustmentOf = &original.EntryID
			if err := s.saveDraft(ctx, &adjustment, &original.EntryID, req.Description); err != nil {
				return err
			}
			if err := s.transition(ctx, original, domain.JournalAdjusted, &adjustment.EntryID, req.Description, userID); err != nil {
				return err
			}

			s.RecordAudit(ctx, domain.AuditAdjust, auditModuleJournal, original.EntryID, before, original, userID)
			s.RecordAudit(ctx, domain.AuditCreate, auditModuleJournal, adjustment.EntryID, nil, adjustment, userID)
			return nil
		})
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) && !errors.Is(err, apperrors.ErrConflict) && !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to create adjustment", slog.String("original_id", originalID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Adjustment entry created", slog.String("entry_id", adjustment.EntryID), slog.String("original_id", originalID))
	return &adjustment, nil
}

func (s *journalService) CreateReversal(ctx context.Context, originalID string, req dto.ReverseJournalEntryRequest, userID string) (_ *domain.JournalEntry, err error) {
	ctx, span := s.StartSpan(ctx, "journal.CreateReversal", attribute.String("journal.entry_id", originalID))
	defer func() { EndSpan(span, err) }()

	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	date := s.Now()
	if req.EntryDate != nil {
		date = *req.EntryDate
	}

	var reversal domain.JournalEntry
	err = s.WithLock(ctx, journalLockKey(originalID), func(ctx context.Context) error {
		return s.InTx(ctx, func(ctx context.Context) error {
			original, err := s.journalRepo.FindEntryByIDForUpdate(ctx, originalID)
			if err != nil {
				return err
			}
			if original.Status == domain.JournalReversed {
				return apperrors.NewConflictError(fmt.Sprintf("journal entry %s has already been reversed", original.Code))
			}
			if err := requireStatus(original, domain.JournalPosted); err != nil {
				return err
			}
			before := *original

			originalLines, err := s.journalRepo.FindLinesByEntryID(ctx, original.EntryID)
			if err != nil {
				return err
			}
			description := fmt.Sprintf("Reversal of %s: %s", original.Code, req.Reason)
			reversal, err = s.newDraft(original.SourceModule, original.ReferenceID, description, date, accounting.MirrorLines(originalLines), userID)
			if err != nil {
				return err
			}
			reversal.ReversalOf = &original.EntryID
			if err := s.saveDraft(ctx, &reversal, &original.EntryID, req.Reason); err != nil {
				return err
			}
			if err := s.transition(ctx, original, domain.JournalReversed, &reversal.EntryID, req.Reason, userID); err != nil {
				return err
			}

			s.RecordAudit(ctx, domain.AuditReverse, auditModuleJournal, original.EntryID, before, original, userID)
			s.RecordAudit(ctx, domain.AuditCreate, auditModuleJournal, reversal.EntryID, nil, reversal, userID)
			return nil
		})
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrConflict) && !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to create reversal", slog.String("original_id", originalID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Reversal entry created", slog.String("entry_id", reversal.EntryID), slog.String("original_id", originalID))
	return &reversal, nil
}

func (s *journalService) UpdateDraft(ctx context.Context, entryID string, req dto.UpdateJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	var newLines []domain.JournalEntryLine
	if req.Lines != nil {
		var err error
		if newLines, err = linesFromRequest(req.Lines); err != nil {
			return nil, err
		}
	}
	if req.Description != nil && *req.Description == "" {
		return nil, fmt.Errorf("%w: description cannot be empty", apperrors.ErrValidation)
	}

	var entry *domain.JournalEntry
	err := s.WithLock(ctx, journalLockKey(entryID), func(ctx context.Context) error {
		return s.InTx(ctx, func(ctx context.Context) error {
			var err error
			entry, err = s.journalRepo.FindEntryByIDForUpdate(ctx, entryID)
			if err != nil {
				return err
			}
			if err := requireStatus(entry, domain.JournalDraft); err != nil {
				return err
			}
			before := *entry

			if req.Description != nil {
				entry.Description = *req.Description
			}
			if req.EntryDate != nil {
				entry.EntryDate = dateOnly(*req.EntryDate)
			}

			if newLines != nil {
				if err := s.resolveAccounts(ctx, newLines); err != nil {
					return err
				}
				for i := range newLines {
					newLines[i].LineID = uuid.NewString()
					newLines[i].EntryID = entry.EntryID
				}
				if err := s.journalRepo.ReplaceLines(ctx, entry.EntryID, newLines); err != nil {
					return err
				}
				entry.Lines = newLines
				entry.TotalDebit, entry.TotalCredit = accounting.SumLines(newLines)
			} else {
				if entry.Lines, err = s.journalRepo.FindLinesByEntryID(ctx, entry.EntryID); err != nil {
					return err
				}
			}

			entry.Touch(userID, s.Now())
			if err := s.journalRepo.UpdateEntryHeader(ctx, *entry); err != nil {
				return err
			}
			entry.Version++

			s.RecordAudit(ctx, domain.AuditUpdate, auditModuleJournal, entry.EntryID, before, entry, userID)
			return nil
		})
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) && !errors.Is(err, apperrors.ErrConflict) && !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to update draft entry", slog.String("entry_id", entryID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Draft entry updated", slog.String("entry_id", entryID))
	return entry, nil
}

func (s *journalService) DeleteDraft(ctx context.Context, entryID string, req dto.DeleteJournalEntryRequest, userID string) error {
	if err := dto.Validate(req); err != nil {
		return err
	}

	err := s.WithLock(ctx, journalLockKey(entryID), func(ctx context.Context) error {
		return s.InTx(ctx, func(ctx context.Context) error {
			entry, err := s.journalRepo.FindEntryByIDForUpdate(ctx, entryID)
			if err != nil {
				return err
			}
			if err := requireStatus(entry, domain.JournalDraft); err != nil {
				return err
			}
			before := *entry

			now := s.Now()
			entry.IsDeleted = true
			entry.DeletedAt = &now
			entry.DeletedBy = &userID
			entry.DeleteReason = req.Reason
			if err := s.transition(ctx, entry, domain.JournalDeleted, nil, req.Reason, userID); err != nil {
				return err
			}
			if err := s.journalRepo.SoftDeleteLines(ctx, entry.EntryID); err != nil {
				return err
			}

			s.RecordAudit(ctx, domain.AuditDelete, auditModuleJournal, entry.EntryID, before, entry, userID)
			return nil
		})
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrConflict) && !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to delete draft entry", slog.String("entry_id", entryID))
		}
		return err
	}

	s.LogInfo(ctx, "Draft entry deleted", slog.String("entry_id", entryID))
	return nil
}

func (s *journalService) Post(ctx context.Context, entryID string, userID string) (_ *domain.JournalEntry, err error) {
	ctx, span := s.StartSpan(ctx, "journal.Post", attribute.String("journal.entry_id", entryID))
	defer func() { EndSpan(span, err) }()

	var entry *domain.JournalEntry
	err = s.WithLock(ctx, journalLockKey(entryID), func(ctx context.Context) error {
		return s.InTx(ctx, func(ctx context.Context) error {
			var err error
			entry, err = s.journalRepo.FindEntryByIDForUpdate(ctx, entryID)
			if err != nil {
				return err
			}
			if err := requireStatus(entry, domain.JournalDraft); err != nil {
				return err
			}
			before := *entry

			entry.Lines, err = s.journalRepo.FindLinesByEntryID(ctx, entry.EntryID)
			if err != nil {
				return err
			}
			if err := accounting.ValidateLines(entry.Lines); err != nil {
				return err
			}

			accountIDs := make([]string, 0, len(entry.Lines))
			for _, l := range entry.Lines {
				accountIDs = append(accountIDs, l.AccountID)
			}
			accounts, err := s.balanceRepo.FindAccountsByIDsForUpdate(ctx, accountIDs)
			if err != nil {
				return err
			}
			normalBalances := make(map[string]domain.BalanceSide, len(accounts))
			for id, acc := range accounts {
				normalBalances[id] = acc.NormalBalance
			}
			changes, err := accounting.BalanceChanges(entry.Lines, normalBalances)
			if err != nil {
				return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
			}

			now := s.Now()
			if err := s.balanceRepo.UpdateAccountBalances(ctx, changes, userID, now); err != nil {
				return err
			}

			entry.PostedBy = &userID
			entry.PostedAt = &now
			if err := s.transition(ctx, entry, domain.JournalPosted, nil, "", userID); err != nil {
				return err
			}

			s.RecordAudit(ctx, domain.AuditPost, auditModuleJournal, entry.EntryID, before, entry, userID)
			return nil
		})
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) && !errors.Is(err, apperrors.ErrConflict) && !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to post journal entry", slog.String("entry_id", entryID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry posted", slog.String("entry_id", entryID), slog.String("code", entry.Code))
	return entry, nil
}

func (s *journalService) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get journal entry", slog.String("entry_id", entryID))
		}
		return nil, err
	}
	if entry.Lines, err = s.journalRepo.FindLinesByEntryID(ctx, entryID); err != nil {
		s.LogError(ctx, err, "Failed to get journal lines", slog.String("entry_id", entryID))
		return nil, err
	}
	if entry.History, err = s.journalRepo.FindStatusHistory(ctx, entryID); err != nil {
		s.LogError(ctx, err, "Failed to get journal history", slog.String("entry_id", entryID))
		return nil, err
	}
	return entry, nil
}

func (s *journalService) ListEntries(ctx context.Context, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error) {
	if err := dto.Validate(params); err != nil {
		return nil, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	filter := portsrepo.JournalEntryFilter{
		Status:       domain.JournalStatus(params.Status),
		SourceModule: params.SourceModule,
		ReferenceID:  params.ReferenceID,
		FromDate:     params.FromDate,
		ToDate:       params.ToDate,
	}

	entries, nextToken, err := s.journalRepo.ListEntries(ctx, filter, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries", slog.Int("limit", limit))
		return nil, err
	}
	return &dto.ListJournalEntriesResponse{
		Entries:   dto.ToJournalEntryResponses(entries),
		NextToken: nextToken,
	}, nil
}

func (s *journalService) GetEntryHistory(ctx context.Context, entryID string) ([]domain.JournalStatusChange, error) {
	if _, err := s.journalRepo.FindEntryByID(ctx, entryID); err != nil {
		return nil, err
	}
	history, err := s.journalRepo.FindStatusHistory(ctx, entryID)
	if err != nil {
		s.LogError(ctx, err, "Failed to get journal history", slog.String("entry_id", entryID))
		return nil, err
	}
	return history, nil
}
