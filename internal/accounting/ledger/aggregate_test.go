package ledger

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	_ "github.com/odyssey-erp/odyssey-ledger/testing"
)

type fakeSource struct {
	accounts map[int64][]accounts.Account
	postings map[int64][]Posting
}

func (f *fakeSource) Accounts(ctx context.Context, companyID int64, roots []string) ([]accounts.Account, error) {
	var out []accounts.Account
	for _, a := range f.accounts[companyID] {
		if contains(roots, accounts.Root(a.Code)) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeSource) Postings(ctx context.Context, companyID int64, roots []string, from, to time.Time) ([]Posting, error) {
	var out []Posting
	for _, p := range f.postings[companyID] {
		if !contains(roots, accounts.Root(p.AccountCode)) {
			continue
		}
		if !from.IsZero() && day(p.IssueDate).Before(day(from)) {
			continue
		}
		if day(p.IssueDate).After(day(to)) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func credit(code string, on time.Time, amount string) Posting {
	return Posting{AccountCode: code, IssueDate: on, Credit: dec(amount)}
}

func debit(code string, on time.Time, amount string) Posting {
	return Posting{AccountCode: code, IssueDate: on, Debit: dec(amount)}
}

var profitAndLoss = []Root{
	{Prefix: "4", Normal: CreditNormal, Section: SectionIncome, Weight: 1},
	{Prefix: "5", Normal: DebitNormal, Section: SectionExpense, Weight: -1},
}

func chart(codes ...string) []accounts.Account {
	out := make([]accounts.Account, 0, len(codes))
	for _, c := range codes {
		out = append(out, accounts.Account{Code: c, Name: "acct " + c})
	}
	return out
}

func request(level Level) Request {
	return Request{
		CompanyID: 1,
		Roots:     profitAndLoss,
		NetLabel:  "Net income",
		From:      date(2026, 1, 1),
		To:        date(2026, 3, 31),
		Level:     level,
	}
}

func codes(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Code)
	}
	return out
}

func rowByCode(t *testing.T, rows []Row, code string) Row {
	t.Helper()
	for _, r := range rows {
		if r.Code == code && !r.Synthetic {
			return r
		}
	}
	t.Fatalf("row %q not found in %v", code, codes(rows))
	return Row{}
}

func incomeFixture() *fakeSource {
	return &fakeSource{
		accounts: map[int64][]accounts.Account{1: chart("4.", "4.1", "4.2")},
		postings: map[int64][]Posting{1: {
			credit("4.1", date(2026, 2, 10), "100"),
			credit("4.2", date(2026, 3, 5), "50"),
		}},
	}
}

func TestAggregateRollsUpHeaderBalances(t *testing.T) {
	agg := NewAggregator(incomeFixture())
	res, err := agg.Aggregate(context.Background(), request(LevelAll))
	require.NoError(t, err)

	assert.Equal(t, []string{"4.", "4.1", "4.2", ""}, codes(res.Rows))
	root := rowByCode(t, res.Rows, "4.")
	assert.True(t, root.Debit.IsZero())
	assert.True(t, root.Credit.Equal(dec("150")), root.Credit.String())
	assert.True(t, root.Total.Equal(dec("150")))
	assert.True(t, root.Monthly.Equal(dec("50")), "only March counts towards the monthly column")
	assert.True(t, root.IsHeader)
	assert.True(t, root.IsIncome)
	assert.False(t, rowByCode(t, res.Rows, "4.1").IsHeader)

	net := res.Rows[len(res.Rows)-1]
	assert.True(t, net.Synthetic)
	assert.Equal(t, "Net income", net.Name)
	assert.True(t, net.Total.Equal(dec("150")))
}

func TestAggregateLevelOneCollapsesDetail(t *testing.T) {
	agg := NewAggregator(incomeFixture())
	res, err := agg.Aggregate(context.Background(), request(LevelN(1)))
	require.NoError(t, err)

	assert.Equal(t, []string{"4.", ""}, codes(res.Rows))
	root := res.Rows[0]
	assert.True(t, root.Total.Equal(dec("150")))
	assert.False(t, root.IsHeader, "a header at the deepest shown level is not a subtotal")
}

func TestAggregateLevelFilteringOnDeeperTree(t *testing.T) {
	src := &fakeSource{
		accounts: map[int64][]accounts.Account{1: chart("5.", "5.1.", "5.1.1", "5.1.2", "5.2", "5.10")},
		postings: map[int64][]Posting{1: {
			debit("5.1.1", date(2026, 1, 3), "10"),
			debit("5.1.2", date(2026, 1, 4), "15"),
			debit("5.2", date(2026, 1, 5), "7.50"),
			debit("5.10", date(2026, 1, 6), "2.50"),
		}},
	}
	agg := NewAggregator(src)

	res, err := agg.Aggregate(context.Background(), request(LevelN(2)))
	require.NoError(t, err)
	assert.Equal(t, []string{"5.", "5.1.", "5.2", "5.10", ""}, codes(res.Rows))
	assert.True(t, rowByCode(t, res.Rows, "5.").IsHeader)
	sub := rowByCode(t, res.Rows, "5.1.")
	assert.False(t, sub.IsHeader)
	assert.True(t, sub.Total.Equal(dec("25")))
	assert.True(t, sub.IsExpense)
	assert.True(t, rowByCode(t, res.Rows, "5.").Total.Equal(dec("35")))

	res, err = agg.Aggregate(context.Background(), request(LevelAll))
	require.NoError(t, err)
	assert.Equal(t, []string{"5.", "5.1.", "5.1.1", "5.1.2", "5.2", "5.10", ""}, codes(res.Rows))
	assert.True(t, rowByCode(t, res.Rows, "5.1.").IsHeader)

	net := res.Rows[len(res.Rows)-1]
	assert.True(t, net.Total.Equal(dec("-35")))
}

func TestAggregateNetIsIncomeMinusExpense(t *testing.T) {
	src := incomeFixture()
	src.accounts[1] = append(src.accounts[1], chart("5.", "5.1")...)
	src.postings[1] = append(src.postings[1],
		debit("5.1", date(2026, 3, 20), "40"),
		credit("5.1", date(2026, 3, 21), "5"),
	)
	res, err := NewAggregator(src).Aggregate(context.Background(), request(LevelAll))
	require.NoError(t, err)

	net := res.Rows[len(res.Rows)-1]
	assert.True(t, net.Total.Equal(dec("115")), net.Total.String())
	assert.True(t, net.Monthly.Equal(dec("15")), net.Monthly.String())
	require.Len(t, res.Roots, 2)
	assert.True(t, res.Roots[1].Total.Equal(dec("35")))
}

func TestAggregateLeafNeverAbsorbsDeeperCodes(t *testing.T) {
	src := &fakeSource{
		accounts: map[int64][]accounts.Account{1: chart("4.", "4.1", "4.1.1")},
		postings: map[int64][]Posting{1: {
			credit("4.1", date(2026, 1, 2), "10"),
			credit("4.1.1", date(2026, 1, 2), "5"),
		}},
	}
	res, err := NewAggregator(src).Aggregate(context.Background(), request(LevelAll))
	require.NoError(t, err)

	assert.True(t, rowByCode(t, res.Rows, "4.1").Total.Equal(dec("10")))
	assert.True(t, rowByCode(t, res.Rows, "4.").Total.Equal(dec("10")))
	assert.True(t, rowByCode(t, res.Rows, "4.1.1").Total.Equal(dec("5")))
	assert.True(t, res.Rows[len(res.Rows)-1].Total.Equal(dec("15")), "orphans still count towards their root")
}

func TestAggregateRespectsDateRange(t *testing.T) {
	src := incomeFixture()
	src.postings[1] = append(src.postings[1],
		credit("4.1", date(2025, 12, 31), "1000"),
		credit("4.1", date(2026, 4, 1), "1000"),
	)
	res, err := NewAggregator(src).Aggregate(context.Background(), request(LevelAll))
	require.NoError(t, err)
	assert.True(t, rowByCode(t, res.Rows, "4.").Total.Equal(dec("150")))
}

func TestComputePointInTimeAndOpening(t *testing.T) {
	chartOf := chart("1.", "1.1")
	postings := []Posting{
		debit("1.1", date(2025, 6, 1), "200"),
		debit("1.1", date(2026, 2, 1), "30"),
		credit("1.1", date(2026, 3, 2), "10"),
	}
	assets := []Root{{Prefix: "1", Normal: DebitNormal, Section: SectionAssets}}

	res := Compute(Request{Roots: assets, To: date(2026, 3, 31), PointInTime: true, Level: LevelAll}, chartOf, postings)
	row := rowByCode(t, res.Rows, "1.")
	assert.True(t, row.Total.Equal(dec("220")))
	assert.True(t, row.Monthly.Equal(dec("-10")))

	res = Compute(Request{Roots: assets, From: date(2026, 1, 1), To: date(2026, 3, 31), Opening: true, Level: LevelAll}, chartOf, postings)
	row = rowByCode(t, res.Rows, "1.")
	assert.True(t, row.Opening.Equal(dec("200")))
	assert.True(t, row.Total.Equal(dec("20")))
	assert.True(t, row.Debit.Equal(dec("30")))
}

func TestAggregateTenantIsolation(t *testing.T) {
	src := incomeFixture()
	src.accounts[2] = chart("4.", "4.1", "4.2")
	src.postings[2] = []Posting{credit("4.1", date(2026, 2, 1), "9999")}

	res, err := NewAggregator(src).Aggregate(context.Background(), request(LevelAll))
	require.NoError(t, err)
	assert.True(t, rowByCode(t, res.Rows, "4.").Total.Equal(dec("150")))

	req := request(LevelAll)
	req.CompanyID = 2
	res, err = NewAggregator(src).Aggregate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, rowByCode(t, res.Rows, "4.").Total.Equal(dec("9999")))
}

func TestAggregateEmptyCompany(t *testing.T) {
	res, err := NewAggregator(&fakeSource{}).Aggregate(context.Background(), request(LevelAll))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.True(t, res.Rows[0].Synthetic)
	assert.True(t, res.Rows[0].Total.IsZero())
}

func TestAggregateIsIdempotent(t *testing.T) {
	agg := NewAggregator(incomeFixture())
	first, err := agg.Aggregate(context.Background(), request(LevelN(2)))
	require.NoError(t, err)
	second, err := agg.Aggregate(context.Background(), request(LevelN(2)))
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestParseLevel(t *testing.T) {
	for _, raw := range []string{"", "All", "all"} {
		lvl, err := ParseLevel(raw)
		require.NoError(t, err)
		assert.True(t, lvl.IsAll())
	}
	lvl, err := ParseLevel("3")
	require.NoError(t, err)
	assert.Equal(t, "3", lvl.String())
	for _, raw := range []string{"0", "-1", "x"} {
		_, err := ParseLevel(raw)
		assert.Error(t, err, raw)
	}

	raw, err := json.Marshal(struct{ L Level }{LevelAll})
	require.NoError(t, err)
	assert.JSONEq(t, `{"L":"All"}`, string(raw))
	var back struct{ L Level }
	require.NoError(t, json.Unmarshal([]byte(`{"L":2}`), &back))
	assert.Equal(t, LevelN(2), back.L)
}
