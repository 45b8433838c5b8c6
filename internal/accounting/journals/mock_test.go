package journals

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/sequences"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

type typeKey struct {
	company int64
	code    string
}

type lineKey struct {
	company int64
	entryKey
}

type state struct {
	types   map[typeKey]sequences.TransactionType
	entries map[int64]JournalEntry
	lines   map[lineKey][]LineItem
	nextID  int64
	lineID  int64
}

func (s state) clone() state {
	out := state{
		types:   make(map[typeKey]sequences.TransactionType, len(s.types)),
		entries: make(map[int64]JournalEntry, len(s.entries)),
		lines:   make(map[lineKey][]LineItem, len(s.lines)),
		nextID:  s.nextID,
		lineID:  s.lineID,
	}
	for k, v := range s.types {
		out.types[k] = v
	}
	for k, v := range s.entries {
		out.entries[k] = v
	}
	for k, v := range s.lines {
		out.lines[k] = append([]LineItem(nil), v...)
	}
	return out
}

// mockRepository serialises transactions and publishes a transaction's
// writes only when fn returns nil.
type mockRepository struct {
	mu    sync.Mutex
	state state

	failInsertLines error
	bumps           int
}

func newMockRepository(types ...sequences.TransactionType) *mockRepository {
	m := &mockRepository{state: state{
		types:   make(map[typeKey]sequences.TransactionType),
		entries: make(map[int64]JournalEntry),
		lines:   make(map[lineKey][]LineItem),
		nextID:  1,
	}}
	for _, tt := range types {
		m.state.types[typeKey{tt.CompanyID, tt.Code}] = tt
	}
	return m
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	work := m.state.clone()
	if err := fn(ctx, &mockTx{state: &work, failInsertLines: m.failInsertLines}); err != nil {
		return err
	}
	m.state = work
	return nil
}

func (m *mockRepository) List(ctx context.Context, companyID int64) ([]JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []JournalEntry
	for _, e := range m.state.entries {
		if e.CompanyID == companyID {
			e.LineItems = m.state.lines[keyOf(e)]
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, id, companyID int64) (JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.state.entries[id]
	if !ok || e.CompanyID != companyID {
		return JournalEntry{}, shared.ErrNotFound
	}
	e.LineItems = m.state.lines[keyOf(e)]
	return e, nil
}

func (m *mockRepository) Bump(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bumps++
	return nil
}

func (m *mockRepository) sequence(company int64, code string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.types[typeKey{company, code}].Sequence
}

func (m *mockRepository) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := 0
	for _, v := range m.state.lines {
		lines += len(v)
	}
	return len(m.state.entries), lines
}

func keyOf(e JournalEntry) lineKey {
	return lineKey{e.CompanyID, entryKey{e.TransactionTypeCode, e.EntryNumber}}
}

type mockTx struct {
	state           *state
	failInsertLines error
}

func (tx *mockTx) LockTransactionType(ctx context.Context, companyID int64, code string) (sequences.TransactionType, error) {
	tt, ok := tx.state.types[typeKey{companyID, code}]
	if !ok {
		return sequences.TransactionType{}, shared.ErrNotFound
	}
	return tt, nil
}

func (tx *mockTx) SetSequence(ctx context.Context, companyID int64, code, sequence string) error {
	k := typeKey{companyID, code}
	tt, ok := tx.state.types[k]
	if !ok {
		return shared.ErrNotFound
	}
	tt.Sequence = sequence
	tx.state.types[k] = tt
	return nil
}

func (tx *mockTx) InsertEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error) {
	for _, e := range tx.state.entries {
		if keyOf(e) == keyOf(entry) {
			return JournalEntry{}, shared.ErrConflict
		}
	}
	entry.ID = tx.state.nextID
	tx.state.nextID++
	entry.LineItems = nil
	tx.state.entries[entry.ID] = entry
	return entry, nil
}

func (tx *mockTx) InsertLineItems(ctx context.Context, entry JournalEntry, items []LineItem) ([]LineItem, error) {
	if tx.failInsertLines != nil {
		return nil, tx.failInsertLines
	}
	k := keyOf(entry)
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		tx.state.lineID++
		item.ID = tx.state.lineID
		out = append(out, item)
	}
	tx.state.lines[k] = append(tx.state.lines[k], out...)
	return out, nil
}

func (tx *mockTx) GetEntryForUpdate(ctx context.Context, id, companyID int64) (JournalEntry, error) {
	e, ok := tx.state.entries[id]
	if !ok || e.CompanyID != companyID {
		return JournalEntry{}, shared.ErrNotFound
	}
	e.LineItems = append([]LineItem(nil), tx.state.lines[keyOf(e)]...)
	return e, nil
}

func (tx *mockTx) UpdateEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error) {
	current, ok := tx.state.entries[entry.ID]
	if !ok || current.CompanyID != entry.CompanyID {
		return JournalEntry{}, shared.ErrNotFound
	}
	stored := entry
	stored.LineItems = nil
	tx.state.entries[entry.ID] = stored
	return entry, nil
}

func (tx *mockTx) DeleteLineItems(ctx context.Context, entry JournalEntry) error {
	delete(tx.state.lines, keyOf(entry))
	return nil
}

func (tx *mockTx) DeleteEntry(ctx context.Context, id, companyID int64) error {
	e, ok := tx.state.entries[id]
	if !ok || e.CompanyID != companyID {
		return shared.ErrNotFound
	}
	delete(tx.state.entries, id)
	return nil
}

var errDiskFull = errors.New("disk full")
