package program

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("program not found")
	ErrNotActive     = errors.New("program is not active")
	ErrAlreadyClosed = errors.New("program already closed")
)

type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// LendingProgram binds a credit line and a liquidity pool under one program
// id. Closing is irreversible.
type LendingProgram struct {
	ID            uint64    `gorm:"column:id;primaryKey" json:"id"`
	Status        Status    `gorm:"column:status;size:16" json:"status"`
	CreditLine    string    `gorm:"column:credit_line;size:128" json:"credit_line"`
	LiquidityPool string    `gorm:"column:liquidity_pool;size:128" json:"liquidity_pool"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (LendingProgram) TableName() string { return "programs" }
