package event

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"lending-ledger/internal/domain/subloan"
)

// Event types. One record per sub-loan-level fact, plus one aggregate record
// per loan-level action.
const (
	TypeProgramOpened  = "program.opened"
	TypeProgramClosed  = "program.closed"
	TypeLoanTaken      = "loan.taken"
	TypeSubLoanTaken   = "loan.sub_loan_taken"
	TypeLoanRevoked    = "loan.revoked"
	TypeSubLoanRevoked = "loan.sub_loan_revoked"
	TypeOpPending      = "operation.pending"
	TypeOpApplied      = "operation.applied"
	TypeOpDismissed    = "operation.dismissed"
	TypeOpVoided       = "operation.voided"
)

// LedgerEvent is an append-only structured record written in the same
// transaction as the state it describes. It replaces the packed event words
// of the on-chain ancestor with plain JSON.
type LedgerEvent struct {
	ID           uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	EventID      string `gorm:"column:event_id;size:36;uniqueIndex:ux_ledger_events_event_id" json:"event_id"`
	Type         string `gorm:"column:type;size:48;index" json:"type"`
	SubLoanID    uint64 `gorm:"column:sub_loan_id;index" json:"sub_loan_id"`
	OperationSeq uint64 `gorm:"column:operation_seq" json:"operation_seq,omitempty"`
	// BatchID correlates every record of one submit/void batch; empty for
	// lifecycle events.
	BatchID   string         `gorm:"column:batch_id;size:32;index" json:"batch_id,omitempty"`
	Payload   datatypes.JSON `gorm:"column:payload" json:"payload"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (LedgerEvent) TableName() string { return "ledger_events" }

// StateSnapshot is the post-state every applied/voided operation event
// carries: the same information the packed parameter and parts words held,
// as plain fields.
type StateSnapshot struct {
	Status            subloan.Status      `json:"status"`
	GracePeriodStatus subloan.GraceStatus `json:"grace_period_status"`
	Duration          uint64              `json:"duration"`
	RemuneratoryRate  uint64              `json:"remuneratory_rate"`
	MoratoryRate      uint64              `json:"moratory_rate"`
	LateFeeRate       uint64              `json:"late_fee_rate"`
	GraceDiscountRate uint64              `json:"grace_discount_rate"`
	TrackedTimestamp  int64               `json:"tracked_timestamp"`
	FreezeTimestamp   int64               `json:"freeze_timestamp"`
	PendingTimestamp  int64               `json:"pending_timestamp"`
	Repaid            subloan.Parts       `json:"repaid"`
	Discount          subloan.Parts       `json:"discount"`
	TrackedBefore     subloan.Parts       `json:"tracked_before"`
	Tracked           subloan.Parts       `json:"tracked"`
}

// OperationPayload is the payload of operation.* events.
type OperationPayload struct {
	Kind      string         `json:"kind"`
	Status    string         `json:"status"`
	Timestamp int64          `json:"timestamp"`
	Value     uint64         `json:"value"`
	Account   string         `json:"account,omitempty"`
	State     *StateSnapshot `json:"state,omitempty"`
}

// LoanPayload is the payload of loan.* events.
type LoanPayload struct {
	FirstSubLoanID uint64 `json:"first_sub_loan_id"`
	SubLoanCount   uint64 `json:"sub_loan_count"`
	ProgramID      uint64 `json:"program_id"`
	Borrower       string `json:"borrower"`
	TotalBorrowed  uint64 `json:"total_borrowed"`
	TotalAddon     uint64 `json:"total_addon"`
}

// SubLoanPayload is the payload of per-member loan.sub_loan_* events.
type SubLoanPayload struct {
	SubLoanID      uint64         `json:"sub_loan_id"`
	BorrowedAmount uint64         `json:"borrowed_amount"`
	AddonAmount    uint64         `json:"addon_amount"`
	StartTimestamp int64          `json:"start_timestamp"`
	State          *StateSnapshot `json:"state"`
}

// ProgramPayload is the payload of program.* events.
type ProgramPayload struct {
	ProgramID     uint64 `json:"program_id"`
	CreditLine    string `json:"credit_line,omitempty"`
	LiquidityPool string `json:"liquidity_pool,omitempty"`
}

// MarshalPayload is a small helper so call sites stay one line.
func MarshalPayload(v any) datatypes.JSON {
	b, _ := json.Marshal(v)
	return datatypes.JSON(b)
}

// SnapshotOf captures the event-facing view of a sub-loan's state.
func SnapshotOf(sl *subloan.SubLoan, trackedBefore subloan.Parts) *StateSnapshot {
	return &StateSnapshot{
		Status:            sl.Status,
		GracePeriodStatus: sl.GracePeriodStatus,
		Duration:          sl.Duration,
		RemuneratoryRate:  sl.RemuneratoryRate,
		MoratoryRate:      sl.MoratoryRate,
		LateFeeRate:       sl.LateFeeRate,
		GraceDiscountRate: sl.GraceDiscountRate,
		TrackedTimestamp:  sl.TrackedTimestamp,
		FreezeTimestamp:   sl.FreezeTimestamp,
		PendingTimestamp:  sl.PendingTimestamp,
		Repaid:            sl.RepaidParts(),
		Discount:          sl.DiscountParts(),
		TrackedBefore:     trackedBefore,
		Tracked:           sl.TrackedParts(),
	}
}
