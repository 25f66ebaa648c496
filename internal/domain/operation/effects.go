package operation

import (
	"lending-ledger/internal/domain/subloan"
)

// ApplyEffect runs op's kind-specific effect on the sub-loan, after accruing
// interest to the operation's own timestamp. It returns the parts a
// repayment or discount consumed (zero for the other kinds) so the caller
// can move tokens accordingly. The caller is responsible for snapshotting
// the state beforehand and for the status bookkeeping.
func ApplyEffect(sl *subloan.SubLoan, op *Operation, t subloan.Terms) (subloan.Parts, error) {
	if err := sl.AccrueTo(t, op.Timestamp); err != nil {
		return subloan.Parts{}, err
	}
	switch op.Kind {
	case KindRepayment:
		return sl.Repay(t, op.Value)
	case KindDiscount:
		return sl.Discount(t, op.Value)
	case KindRemuneratoryRate:
		sl.RemuneratoryRate = op.Value
	case KindMoratoryRate:
		sl.MoratoryRate = op.Value
	case KindLateFeeRate:
		sl.LateFeeRate = op.Value
	case KindGraceDiscountRate:
		sl.GraceDiscountRate = op.Value
	case KindDurationSetting:
		sl.Duration = op.Value
	case KindFreezing:
		if sl.FreezeTimestamp != 0 {
			return subloan.Parts{}, subloan.ErrFrozen
		}
		sl.FreezeTimestamp = op.Timestamp
	case KindUnfreezing:
		if sl.FreezeTimestamp == 0 {
			return subloan.Parts{}, subloan.ErrNotFrozen
		}
		// the frozen days are given back: the due day shifts by the frozen
		// span and accrual resumes from the unfreeze timestamp
		sl.Duration += uint64(t.Day(op.Timestamp) - t.Day(sl.FreezeTimestamp))
		sl.TrackedTimestamp = op.Timestamp
		sl.FreezeTimestamp = 0
	default:
		return subloan.Parts{}, ErrUnknownKind
	}
	return subloan.Parts{}, nil
}
