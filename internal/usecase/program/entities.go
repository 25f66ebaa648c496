package program

import "time"

type OpenInput struct {
	CreditLine    string `json:"credit_line"`
	LiquidityPool string `json:"liquidity_pool"`
}

type ProgramDTO struct {
	ID            uint64    `json:"id"`
	Status        string    `json:"status"`
	CreditLine    string    `json:"credit_line"`
	LiquidityPool string    `json:"liquidity_pool"`
	CreatedAt     time.Time `json:"created_at"`
}
