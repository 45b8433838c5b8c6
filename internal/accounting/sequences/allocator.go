// Package sequences issues per-company, per-transaction-type entry numbers.
package sequences

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// Width is the zero padded length of an issued number.
const Width = 9

// ErrExhausted indicates the counter cannot grow within Width digits.
var ErrExhausted = errors.New("sequences: counter exhausted")

const maxSequence = 999_999_999

// Store is the transactional view over transaction type rows. Implementations
// must hold a row lock from LockTransactionType until the enclosing
// transaction ends.
type Store interface {
	LockTransactionType(ctx context.Context, companyID int64, code string) (TransactionType, error)
	SetSequence(ctx context.Context, companyID int64, code, sequence string) error
}

// Format renders n zero padded to Width digits.
func Format(n int64) string {
	return fmt.Sprintf("%0*d", Width, n)
}

// Parse decodes a stored counter. An empty counter reads as zero.
func Parse(sequence string) (int64, error) {
	sequence = strings.TrimSpace(sequence)
	if sequence == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(sequence, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("sequences: parse %q: %w", sequence, err)
	}
	return n, nil
}

// Next returns the number following sequence.
func Next(sequence string) (string, error) {
	n, err := Parse(sequence)
	if err != nil {
		return "", err
	}
	if n >= maxSequence {
		return "", ErrExhausted
	}
	return Format(n + 1), nil
}

// Allocate locks the transaction type, increments its counter and writes it
// back through store. It must run inside the transaction that persists the
// entry using the number; a rollback returns the number to nobody, leaving a
// gap but never a duplicate.
func Allocate(ctx context.Context, store Store, companyID int64, code string) (string, error) {
	tt, err := store.LockTransactionType(ctx, companyID, code)
	if err != nil {
		return "", err
	}
	next, err := Next(tt.Sequence)
	if err != nil {
		return "", err
	}
	if err := store.SetSequence(ctx, companyID, code, next); err != nil {
		return "", err
	}
	return next, nil
}

// Repository opens transactions exposing a Store.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Store) error) error
}

// Service allocates numbers outside of journal posting.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AllocateNext issues the next number for (companyID, code) in its own
// transaction.
func (s *Service) AllocateNext(ctx context.Context, companyID int64, code string) (string, error) {
	var number string
	err := s.repo.WithTx(ctx, func(ctx context.Context, store Store) error {
		var err error
		number, err = Allocate(ctx, store, companyID, code)
		return err
	})
	if err != nil {
		return "", shared.Classify("allocate sequence", err)
	}
	return number, nil
}
