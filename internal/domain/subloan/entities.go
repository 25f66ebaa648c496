package subloan

import (
	"errors"
	"time"
)

var (
	ErrNotFound                = errors.New("sub-loan not found")
	ErrRevoked                 = errors.New("sub-loan is revoked")
	ErrTimestampTooEarly       = errors.New("timestamp is earlier than sub-loan start")
	ErrInsufficientOutstanding = errors.New("insufficient outstanding balance")
	ErrAmountOverflow          = errors.New("tracked amount exceeds 64-bit bound")
	ErrFrozen                  = errors.New("sub-loan is frozen")
	ErrNotFrozen               = errors.New("sub-loan is not frozen")
	ErrNotOngoing              = errors.New("sub-loan is not ongoing")
)

type Status string

const (
	StatusOngoing Status = "ongoing"
	StatusRepaid  Status = "repaid"
	StatusRevoked Status = "revoked"
)

type GraceStatus string

const (
	GraceNone   GraceStatus = "none"
	GraceActive GraceStatus = "active"
)

// RateFactor is the denominator of every rate: a stored rate r means the
// fraction r/RateFactor per accrual day.
const RateFactor uint64 = 1_000_000_000

// MaxDuration is the largest representable duration in whole days.
const MaxDuration uint64 = 65_535

// Inception holds the immutable terms fixed when the loan is taken.
type Inception struct {
	BorrowedAmount           uint64 `gorm:"column:borrowed_amount" json:"borrowed_amount"`
	AddonAmount              uint64 `gorm:"column:addon_amount" json:"addon_amount"`
	InitialRemuneratoryRate  uint64 `gorm:"column:initial_remuneratory_rate" json:"initial_remuneratory_rate"`
	InitialMoratoryRate      uint64 `gorm:"column:initial_moratory_rate" json:"initial_moratory_rate"`
	InitialLateFeeRate       uint64 `gorm:"column:initial_late_fee_rate" json:"initial_late_fee_rate"`
	InitialGraceDiscountRate uint64 `gorm:"column:initial_grace_discount_rate" json:"initial_grace_discount_rate"`
	InitialDuration          uint64 `gorm:"column:initial_duration" json:"initial_duration"`
	StartTimestamp           int64  `gorm:"column:start_timestamp" json:"start_timestamp"`
	ProgramID                uint64 `gorm:"column:program_id;index" json:"program_id"`
	Borrower                 string `gorm:"column:borrower;size:128;index" json:"borrower"`
	FirstSubLoanID           uint64 `gorm:"column:first_sub_loan_id;index" json:"first_sub_loan_id"`
	IndexInLoan              uint64 `gorm:"column:index_in_loan" json:"index_in_loan"`
	SiblingCount             uint64 `gorm:"column:sibling_count" json:"sibling_count"`
}

// Metadata is the operation bookkeeping section.
type Metadata struct {
	UpdateIndex          uint64 `gorm:"column:update_index" json:"update_index"`
	PendingTimestamp     int64  `gorm:"column:pending_timestamp" json:"pending_timestamp"`
	OperationCount       uint64 `gorm:"column:operation_count" json:"operation_count"`
	EarliestOperationSeq uint64 `gorm:"column:earliest_operation_seq" json:"earliest_operation_seq"`
	RecentOperationSeq   uint64 `gorm:"column:recent_operation_seq" json:"recent_operation_seq"`
	LatestOperationSeq   uint64 `gorm:"column:latest_operation_seq" json:"latest_operation_seq"`
}

// Parts groups one amount per debt component, in the packing order the
// original event words used (principal, remuneratory, moratory, late fee).
type Parts struct {
	Principal    uint64 `json:"principal"`
	Remuneratory uint64 `json:"remuneratory"`
	Moratory     uint64 `json:"moratory"`
	LateFee      uint64 `json:"late_fee"`
}

func (p Parts) Total() uint64 {
	return p.Principal + p.Remuneratory + p.Moratory + p.LateFee
}

// State is the mutable accounting section. Every applied operation snapshots
// it before mutating, which is what makes void-as-restore possible.
type State struct {
	Status            Status      `gorm:"column:status;size:16;index" json:"status"`
	GracePeriodStatus GraceStatus `gorm:"column:grace_period_status;size:16" json:"grace_period_status"`
	Duration          uint64      `gorm:"column:duration" json:"duration"`
	FreezeTimestamp   int64       `gorm:"column:freeze_timestamp" json:"freeze_timestamp"`
	TrackedTimestamp  int64       `gorm:"column:tracked_timestamp" json:"tracked_timestamp"`

	RemuneratoryRate  uint64 `gorm:"column:remuneratory_rate" json:"remuneratory_rate"`
	MoratoryRate      uint64 `gorm:"column:moratory_rate" json:"moratory_rate"`
	LateFeeRate       uint64 `gorm:"column:late_fee_rate" json:"late_fee_rate"`
	GraceDiscountRate uint64 `gorm:"column:grace_discount_rate" json:"grace_discount_rate"`

	TrackedPrincipal            uint64 `gorm:"column:tracked_principal" json:"tracked_principal"`
	TrackedRemuneratoryInterest uint64 `gorm:"column:tracked_remuneratory_interest" json:"tracked_remuneratory_interest"`
	TrackedMoratoryInterest     uint64 `gorm:"column:tracked_moratory_interest" json:"tracked_moratory_interest"`
	TrackedLateFee              uint64 `gorm:"column:tracked_late_fee" json:"tracked_late_fee"`

	RepaidPrincipal            uint64 `gorm:"column:repaid_principal" json:"repaid_principal"`
	RepaidRemuneratoryInterest uint64 `gorm:"column:repaid_remuneratory_interest" json:"repaid_remuneratory_interest"`
	RepaidMoratoryInterest     uint64 `gorm:"column:repaid_moratory_interest" json:"repaid_moratory_interest"`
	RepaidLateFee              uint64 `gorm:"column:repaid_late_fee" json:"repaid_late_fee"`

	DiscountPrincipal            uint64 `gorm:"column:discount_principal" json:"discount_principal"`
	DiscountRemuneratoryInterest uint64 `gorm:"column:discount_remuneratory_interest" json:"discount_remuneratory_interest"`
	DiscountMoratoryInterest     uint64 `gorm:"column:discount_moratory_interest" json:"discount_moratory_interest"`
	DiscountLateFee              uint64 `gorm:"column:discount_late_fee" json:"discount_late_fee"`
}

func (s *State) TrackedParts() Parts {
	return Parts{s.TrackedPrincipal, s.TrackedRemuneratoryInterest, s.TrackedMoratoryInterest, s.TrackedLateFee}
}

func (s *State) RepaidParts() Parts {
	return Parts{s.RepaidPrincipal, s.RepaidRemuneratoryInterest, s.RepaidMoratoryInterest, s.RepaidLateFee}
}

func (s *State) DiscountParts() Parts {
	return Parts{s.DiscountPrincipal, s.DiscountRemuneratoryInterest, s.DiscountMoratoryInterest, s.DiscountLateFee}
}

// SubLoan is one independently amortizing tranche of a loan. Its ID comes
// from the global counter at loan-taking and is never reused.
type SubLoan struct {
	ID        uint64 `gorm:"column:id;primaryKey" json:"id"`
	Inception `gorm:"embedded"`
	Metadata  `gorm:"embedded"`
	State     `gorm:"embedded"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (SubLoan) TableName() string { return "sub_loans" }
