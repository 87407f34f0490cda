package services

import (
	portsrepo "github.com/SscSPs/transit_finance/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/transit_finance/internal/core/ports/services"
	"github.com/SscSPs/transit_finance/internal/platform/config"
	"github.com/SscSPs/transit_finance/internal/utils"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, posthog *utils.PosthogClientWrapper) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Audit first since every other service records through it
	container.Audit = NewAuditService(repos.AuditRepo, posthog)

	options := []ServiceOption{
		WithTransactionManager(repos.TxManager),
		WithAuditor(container.Audit),
	}
	if repos.Locker != nil {
		options = append(options, WithLocker(repos.Locker))
	}

	container.Account = NewAccountService(repos.AccountRepo, options...)
	container.Journal = NewJournalService(repos.JournalRepo, repos.AccountRepo, container.Account, options...)
	container.Revenue = NewRevenueService(repos.RevenueRepo, container.Journal, container.Account, LedgerAccountCodes{
		Cash:             cfg.CashAccountCode,
		Bank:             cfg.BankAccountCode,
		DefaultRevenue:   cfg.DefaultRevenueAccountCode,
		CollectionSource: cfg.ReceivableCollectionSourceCode,
	}, options...)
	container.Receivable = NewReceivableService(repos.ReceivableRepo, repos.DebtorDirectory, options...)
	container.Payment = NewPaymentService(repos.ReceivableRepo, container.Revenue, options...)

	return container
}
