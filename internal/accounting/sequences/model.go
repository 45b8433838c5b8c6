package sequences

import "time"

// TransactionType is a class of journal entries scoped to a company. Sequence
// is the last number issued for it.
type TransactionType struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"companyId"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Sequence  string    `json:"sequence"`
	Active    bool      `json:"active"`
	ReadOnly  bool      `json:"readOnly"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
