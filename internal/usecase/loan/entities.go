package loan

import "lending-ledger/internal/domain/subloan"

// SubLoanRequest is one tranche of a takeLoan call.
type SubLoanRequest struct {
	BorrowedAmount    uint64 `json:"borrowed_amount"`
	AddonAmount       uint64 `json:"addon_amount"`
	RemuneratoryRate  uint64 `json:"remuneratory_rate"`
	MoratoryRate      uint64 `json:"moratory_rate"`
	LateFeeRate       uint64 `json:"late_fee_rate"`
	GraceDiscountRate uint64 `json:"grace_discount_rate"`
	Duration          uint64 `json:"duration"`
}

type TakeLoanInput struct {
	Borrower  string `json:"borrower"`
	ProgramID uint64 `json:"program_id"`
	// StartTimestamp 0 means "now"; 1 is reserved; otherwise must be in the past.
	StartTimestamp int64            `json:"start_timestamp"`
	SubLoans       []SubLoanRequest `json:"sub_loans"`
}

type TakeLoanResult struct {
	FirstSubLoanID uint64   `json:"first_sub_loan_id"`
	SubLoanIDs     []uint64 `json:"sub_loan_ids"`
	TotalBorrowed  uint64   `json:"total_borrowed"`
	TotalAddon     uint64   `json:"total_addon"`
}

type RevokeLoanResult struct {
	FirstSubLoanID uint64   `json:"first_sub_loan_id"`
	SubLoanIDs     []uint64 `json:"sub_loan_ids"`
	TotalBorrowed  uint64   `json:"total_borrowed"`
	TotalAddon     uint64   `json:"total_addon"`
}

// SubLoanPreviewDTO is the read-only projection of one sub-loan as of a
// timestamp: pending operations dated at or before asOf are replayed, then
// interest accrues to asOf, all without touching storage.
type SubLoanPreviewDTO struct {
	SubLoanID          uint64        `json:"sub_loan_id"`
	AsOf               int64         `json:"as_of"`
	Status             string        `json:"status"`
	GracePeriodStatus  string        `json:"grace_period_status"`
	Duration           uint64        `json:"duration"`
	RemuneratoryRate   uint64        `json:"remuneratory_rate"`
	MoratoryRate       uint64        `json:"moratory_rate"`
	LateFeeRate        uint64        `json:"late_fee_rate"`
	GraceDiscountRate  uint64        `json:"grace_discount_rate"`
	TrackedTimestamp   int64         `json:"tracked_timestamp"`
	FreezeTimestamp    int64         `json:"freeze_timestamp"`
	PendingTimestamp   int64         `json:"pending_timestamp"`
	Tracked            subloan.Parts `json:"tracked"`
	Repaid             subloan.Parts `json:"repaid"`
	Discount           subloan.Parts `json:"discount"`
	OutstandingBalance uint64        `json:"outstanding_balance"`
}

type LoanPreviewDTO struct {
	FirstSubLoanID     uint64               `json:"first_sub_loan_id"`
	SubLoanCount       uint64               `json:"sub_loan_count"`
	OutstandingBalance uint64               `json:"outstanding_balance"`
	Tracked            subloan.Parts        `json:"tracked"`
	Repaid             subloan.Parts        `json:"repaid"`
	Discount           subloan.Parts        `json:"discount"`
	SubLoans           []*SubLoanPreviewDTO `json:"sub_loans"`
}

// ViewFlagRounded makes the preview report tracked components already
// floored to the accuracy factor.
const ViewFlagRounded uint32 = 0x1

// InceptionDTO mirrors the immutable section of a sub-loan.
type InceptionDTO struct {
	SubLoanID uint64 `json:"sub_loan_id"`
	subloan.Inception
}

// MetadataDTO mirrors the bookkeeping section.
type MetadataDTO struct {
	SubLoanID uint64 `json:"sub_loan_id"`
	subloan.Metadata
}

// StateDTO mirrors the mutable section.
type StateDTO struct {
	SubLoanID uint64 `json:"sub_loan_id"`
	subloan.State
}
