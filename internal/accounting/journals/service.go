package journals

import (
	"context"
	"time"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/sequences"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// Invalidator is notified after every committed write so cached reports are
// rebuilt.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// ServiceConfig tunes posting rules.
type ServiceConfig struct {
	// EnforceBalance rejects entries whose totals differ or whose line sums
	// differ from the totals.
	EnforceBalance bool
}

type Service struct {
	repo        Repository
	invalidator Invalidator
	cfg         ServiceConfig
	now         func() time.Time
}

func NewService(repo Repository, cfg ServiceConfig, invalidator Invalidator) *Service {
	return &Service{repo: repo, cfg: cfg, invalidator: invalidator, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Post allocates the next entry number for the transaction type and persists
// the entry with its line items in one transaction.
func (s *Service) Post(ctx context.Context, input CreateInput) (JournalEntry, error) {
	if err := input.Validate(); err != nil {
		return JournalEntry{}, err
	}
	items := toLineItems(input.LineItems)
	if s.cfg.EnforceBalance {
		if err := CheckBalance(input.TotalDebit, input.TotalCredit, items); err != nil {
			return JournalEntry{}, err
		}
	}
	issueDate := s.now()
	if input.IssueDate != nil {
		issueDate = *input.IssueDate
	}
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		number, err := sequences.Allocate(ctx, tx, input.CompanyID, input.TransactionTypeCode)
		if err != nil {
			return err
		}
		inserted, err := tx.InsertEntry(ctx, JournalEntry{
			CompanyID:           input.CompanyID,
			TransactionTypeCode: input.TransactionTypeCode,
			EntryNumber:         number,
			IssueDate:           issueDate,
			Status:              input.Status,
			Comment:             input.Comment,
			ReferenceNumber:     input.ReferenceNumber,
			CostCenterCode:      input.CostCenterCode,
			TotalDebit:          input.TotalDebit.Round(2),
			TotalCredit:         input.TotalCredit.Round(2),
		})
		if err != nil {
			return err
		}
		stored, err := tx.InsertLineItems(ctx, inserted, items)
		if err != nil {
			return err
		}
		inserted.LineItems = stored
		entry = inserted
		return nil
	})
	if err != nil {
		return JournalEntry{}, shared.Classify("post journal entry", err)
	}
	s.invalidate(ctx)
	return entry, nil
}

// FindAll returns the company's entries newest first.
func (s *Service) FindAll(ctx context.Context, companyID int64) ([]JournalEntry, error) {
	entries, err := s.repo.List(ctx, companyID)
	if err != nil {
		return nil, shared.Classify("list journal entries", err)
	}
	return entries, nil
}

// FindOne returns the entry only when it belongs to companyID.
func (s *Service) FindOne(ctx context.Context, id, companyID int64) (JournalEntry, error) {
	entry, err := s.repo.Get(ctx, id, companyID)
	if err != nil {
		return JournalEntry{}, shared.Classify("get journal entry", err)
	}
	return entry, nil
}

// Update patches entry-level fields and, when the patch carries line items,
// replaces the whole line item set.
func (s *Service) Update(ctx context.Context, id, companyID int64, patch UpdateInput) (JournalEntry, error) {
	if err := patch.Validate(); err != nil {
		return JournalEntry{}, err
	}
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetEntryForUpdate(ctx, id, companyID)
		if err != nil {
			return err
		}
		next := applyPatch(current, patch)
		if s.cfg.EnforceBalance && touchesAmounts(patch) {
			if err := CheckBalance(next.TotalDebit, next.TotalCredit, next.LineItems); err != nil {
				return err
			}
		}
		updated, err := tx.UpdateEntry(ctx, next)
		if err != nil {
			return err
		}
		if patch.LineItems != nil {
			if err := tx.DeleteLineItems(ctx, current); err != nil {
				return err
			}
			stored, err := tx.InsertLineItems(ctx, updated, next.LineItems)
			if err != nil {
				return err
			}
			updated.LineItems = stored
		}
		entry = updated
		return nil
	})
	if err != nil {
		return JournalEntry{}, shared.Classify("update journal entry", err)
	}
	s.invalidate(ctx)
	return entry, nil
}

// Delete removes the line items and then the entry.
func (s *Service) Delete(ctx context.Context, id, companyID int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetEntryForUpdate(ctx, id, companyID)
		if err != nil {
			return err
		}
		if err := tx.DeleteLineItems(ctx, current); err != nil {
			return err
		}
		return tx.DeleteEntry(ctx, current.ID, companyID)
	})
	if err != nil {
		return shared.Classify("delete journal entry", err)
	}
	s.invalidate(ctx)
	return nil
}

// invalidate runs after commit; a failed bump only delays cache refresh
// until the entry's TTL expires.
func (s *Service) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	_ = s.invalidator.Bump(ctx)
}

func applyPatch(current JournalEntry, patch UpdateInput) JournalEntry {
	next := current
	if patch.IssueDate != nil {
		next.IssueDate = *patch.IssueDate
	}
	if patch.Status != nil {
		next.Status = *patch.Status
	}
	if patch.Comment != nil {
		next.Comment = patch.Comment
	}
	if patch.ReferenceNumber != nil {
		next.ReferenceNumber = patch.ReferenceNumber
	}
	if patch.CostCenterCode != nil {
		next.CostCenterCode = *patch.CostCenterCode
	}
	if patch.TotalDebit != nil {
		next.TotalDebit = patch.TotalDebit.Round(2)
	}
	if patch.TotalCredit != nil {
		next.TotalCredit = patch.TotalCredit.Round(2)
	}
	if patch.LineItems != nil {
		next.LineItems = toLineItems(patch.LineItems)
	}
	return next
}

func touchesAmounts(patch UpdateInput) bool {
	return patch.TotalDebit != nil || patch.TotalCredit != nil || patch.LineItems != nil
}
