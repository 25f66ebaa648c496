package operation

import (
	"errors"
	"time"

	"gorm.io/datatypes"
)

var (
	ErrNotFound             = errors.New("operation not found")
	ErrUnknownKind          = errors.New("unknown operation kind")
	ErrRevocationNotAllowed = errors.New("revocation cannot be submitted as a batch operation")
	ErrTimestampOutOfRange  = errors.New("operation timestamp out of range")
	ErrZeroValue            = errors.New("operation value must be positive")
	ErrRateOutOfRange       = errors.New("rate exceeds the rate factor")
	ErrDurationOutOfRange   = errors.New("duration out of range")
	ErrNotVoidable          = errors.New("operation cannot be voided in its current status")
	ErrNotRecentApplied     = errors.New("only the most recent applied operation can be voided")
)

// MaxTimestamp is the 32-bit ceiling every operation timestamp must fit.
const MaxTimestamp int64 = 1<<32 - 1

type Kind string

const (
	KindRepayment         Kind = "repayment"
	KindDiscount          Kind = "discount"
	KindRevocation        Kind = "revocation"
	KindFreezing          Kind = "freezing"
	KindUnfreezing        Kind = "unfreezing"
	KindRemuneratoryRate  Kind = "remuneratory_rate_setting"
	KindMoratoryRate      Kind = "moratory_rate_setting"
	KindLateFeeRate       Kind = "late_fee_rate_setting"
	KindGraceDiscountRate Kind = "grace_discount_rate_setting"
	KindDurationSetting   Kind = "duration_setting"
)

// Known reports whether k is a kind clients may submit through the batch
// path. Revocation is deliberately excluded: it is only reachable via the
// loan-level revoke.
func (k Kind) Known() bool {
	switch k {
	case KindRepayment, KindDiscount, KindFreezing, KindUnfreezing,
		KindRemuneratoryRate, KindMoratoryRate, KindLateFeeRate,
		KindGraceDiscountRate, KindDurationSetting:
		return true
	}
	return false
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusApplied   Status = "applied"
	StatusSkipped   Status = "skipped"
	StatusDismissed Status = "dismissed"
	StatusRevoked   Status = "revoked"
)

// Operation is one timestamped ledger event of a sub-loan. Ordering among a
// sub-loan's operations is always (timestamp, seq); neighbour ids in the
// read model are computed from that ordering rather than stored.
type Operation struct {
	ID        uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	SubLoanID uint64 `gorm:"column:sub_loan_id;uniqueIndex:ux_operations_subloan_seq,priority:1;index:idx_operations_order,priority:1" json:"sub_loan_id"`
	// Seq is the 1-based per-sub-loan sequence id, assigned at submission.
	Seq       uint64 `gorm:"column:seq;uniqueIndex:ux_operations_subloan_seq,priority:2;index:idx_operations_order,priority:3" json:"seq"`
	Kind      Kind   `gorm:"column:kind;size:32" json:"kind"`
	Status    Status `gorm:"column:status;size:16" json:"status"`
	Timestamp int64  `gorm:"column:timestamp;index:idx_operations_order,priority:2" json:"timestamp"`
	Value     uint64 `gorm:"column:value" json:"value"`
	// AccountID is the interned id of the external account tied to the
	// operation (payer, counterparty); 0 means none.
	AccountID uint64 `gorm:"column:account_id" json:"-"`
	// BeforeState snapshots the sub-loan State section at the moment the
	// operation is applied; voiding restores from it.
	BeforeState datatypes.JSON `gorm:"column:before_state" json:"-"`
	AppliedAt   *time.Time     `gorm:"column:applied_at" json:"applied_at,omitempty"`
	VoidedAt    *time.Time     `gorm:"column:voided_at" json:"voided_at,omitempty"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (Operation) TableName() string { return "operations" }

// Before reports whether o precedes other in (timestamp, seq) order.
func (o *Operation) Before(other *Operation) bool {
	if o.Timestamp != other.Timestamp {
		return o.Timestamp < other.Timestamp
	}
	return o.Seq < other.Seq
}

// OrderBounds returns the seq of the first and last operation of an already
// (timestamp, seq)-ordered list, 0 when empty.
func OrderBounds(ops []*Operation) (earliest, latest uint64) {
	if len(ops) == 0 {
		return 0, 0
	}
	return ops[0].Seq, ops[len(ops)-1].Seq
}
