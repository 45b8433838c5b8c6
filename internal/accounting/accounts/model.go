package accounts

import "time"

// Account models a chart of accounts node. Its position in the tree is implied
// by Code; see Level, IsHeader and ParentOf.
type Account struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"companyId"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Level returns the depth of the account in the chart.
func (a Account) Level() int {
	return Level(a.Code)
}

// IsHeader reports whether the account may carry children.
func (a Account) IsHeader() bool {
	return IsHeader(a.Code)
}
