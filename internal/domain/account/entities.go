package account

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("account not found")

// Account interns an externally-supplied address into a small integer id.
// The table is append-only; operations store the id instead of the address.
type Account struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Address   string    `gorm:"column:address;size:128;uniqueIndex:ux_accounts_address"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Account) TableName() string { return "accounts" }
