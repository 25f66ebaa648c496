package loan

import (
	"context"

	domainOperation "lending-ledger/internal/domain/operation"
	"lending-ledger/internal/domain/subloan"
)

func (u *Usecase) GetInception(ctx context.Context, id uint64) (*InceptionDTO, error) {
	sl, err := u.repos.SubLoans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &InceptionDTO{SubLoanID: sl.ID, Inception: sl.Inception}, nil
}

func (u *Usecase) GetMetadata(ctx context.Context, id uint64) (*MetadataDTO, error) {
	sl, err := u.repos.SubLoans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &MetadataDTO{SubLoanID: sl.ID, Metadata: sl.Metadata}, nil
}

func (u *Usecase) GetState(ctx context.Context, id uint64) (*StateDTO, error) {
	sl, err := u.repos.SubLoans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &StateDTO{SubLoanID: sl.ID, State: sl.State}, nil
}

// SubLoanPreview projects the sub-loan to asOf. asOf 0 is the "tracked"
// sentinel: report the stored state without projecting. Otherwise pending
// operations dated at or before asOf replay in (timestamp, seq) order on a
// copy, interest accrues to asOf, and nothing is written back.
func (u *Usecase) SubLoanPreview(ctx context.Context, id uint64, asOf int64, flags uint32) (*SubLoanPreviewDTO, error) {
	sl, err := u.repos.SubLoans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.previewOne(ctx, sl, asOf, flags)
}

func (u *Usecase) previewOne(ctx context.Context, sl *subloan.SubLoan, asOf int64, flags uint32) (*SubLoanPreviewDTO, error) {
	clone := *sl
	if asOf != 0 {
		if asOf < sl.StartTimestamp {
			return nil, subloan.ErrTimestampTooEarly
		}
		pending, err := u.repos.Operations.ListPending(ctx, sl.ID)
		if err != nil {
			return nil, err
		}
		for _, op := range pending {
			if op.Timestamp > asOf {
				break
			}
			if _, err := domainOperation.ApplyEffect(&clone, op, u.terms); err != nil {
				return nil, err
			}
		}
		if err := clone.AccrueTo(u.terms, asOf); err != nil {
			return nil, err
		}
	}

	tracked := clone.TrackedParts()
	if flags&ViewFlagRounded != 0 {
		tracked = subloan.Parts{
			Principal:    u.terms.RoundDown(tracked.Principal),
			Remuneratory: u.terms.RoundDown(tracked.Remuneratory),
			Moratory:     u.terms.RoundDown(tracked.Moratory),
			LateFee:      u.terms.RoundDown(tracked.LateFee),
		}
	}
	return &SubLoanPreviewDTO{
		SubLoanID:          sl.ID,
		AsOf:               asOf,
		Status:             string(clone.Status),
		GracePeriodStatus:  string(clone.GracePeriodStatus),
		Duration:           clone.Duration,
		RemuneratoryRate:   clone.RemuneratoryRate,
		MoratoryRate:       clone.MoratoryRate,
		LateFeeRate:        clone.LateFeeRate,
		GraceDiscountRate:  clone.GraceDiscountRate,
		TrackedTimestamp:   clone.TrackedTimestamp,
		FreezeTimestamp:    clone.FreezeTimestamp,
		PendingTimestamp:   clone.PendingTimestamp,
		Tracked:            tracked,
		Repaid:             clone.RepaidParts(),
		Discount:           clone.DiscountParts(),
		OutstandingBalance: clone.OutstandingBalance(u.terms),
	}, nil
}

// LoanPreview aggregates the previews of every sibling sub-loan.
func (u *Usecase) LoanPreview(ctx context.Context, anySubLoanID uint64, asOf int64, flags uint32) (*LoanPreviewDTO, error) {
	anchor, err := u.repos.SubLoans.GetByID(ctx, anySubLoanID)
	if err != nil {
		return nil, err
	}
	out := &LoanPreviewDTO{
		FirstSubLoanID: anchor.FirstSubLoanID,
		SubLoanCount:   anchor.SiblingCount,
	}
	for i := uint64(0); i < anchor.SiblingCount; i++ {
		sl, err := u.repos.SubLoans.GetByID(ctx, anchor.FirstSubLoanID+i)
		if err != nil {
			return nil, err
		}
		p, err := u.previewOne(ctx, sl, asOf, flags)
		if err != nil {
			return nil, err
		}
		out.SubLoans = append(out.SubLoans, p)
		out.OutstandingBalance += p.OutstandingBalance
		out.Tracked = addParts(out.Tracked, p.Tracked)
		out.Repaid = addParts(out.Repaid, p.Repaid)
		out.Discount = addParts(out.Discount, p.Discount)
	}
	return out, nil
}

func addParts(a, b subloan.Parts) subloan.Parts {
	return subloan.Parts{
		Principal:    a.Principal + b.Principal,
		Remuneratory: a.Remuneratory + b.Remuneratory,
		Moratory:     a.Moratory + b.Moratory,
		LateFee:      a.LateFee + b.LateFee,
	}
}
