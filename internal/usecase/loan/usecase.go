package loan

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"lending-ledger/internal/domain/counter"
	domainEvent "lending-ledger/internal/domain/event"
	domainOperation "lending-ledger/internal/domain/operation"
	"lending-ledger/internal/domain/port"
	domainProgram "lending-ledger/internal/domain/program"
	"lending-ledger/internal/domain/subloan"
	"lending-ledger/internal/domain/uow"
)

var (
	ErrNoSubLoans             = errors.New("at least one sub-loan request is required")
	ErrTooManySubLoans        = errors.New("sub-loan count exceeds the per-loan cap")
	ErrDurationsNotAscending  = errors.New("durations must be strictly ascending")
	ErrZeroBorrowed           = errors.New("borrowed amount must be positive")
	ErrRateOutOfRange         = errors.New("rate exceeds the rate factor")
	ErrDurationTooLarge       = errors.New("duration out of range")
	ErrStartTimestampFuture   = errors.New("start timestamp must not be in the future")
	ErrStartTimestampReserved = errors.New("start timestamp 1 is reserved")
	ErrMissingBorrower        = errors.New("borrower is required")
	ErrAlreadyRevoked         = errors.New("loan already revoked")
)

// Deps bundles everything the loan lifecycle needs. Token transfers and
// collaborator hooks run inside the same unit of work as the state they
// accompany; any failure reverts all of it.
type Deps struct {
	Repos         uow.Repos
	UoW           uow.UnitOfWork
	Registry      port.Registry
	Token         port.Token
	Terms         subloan.Terms
	MaxSubLoans   uint64
	AddonTreasury string
	Now           func() time.Time
}

type Usecase struct {
	repos         uow.Repos
	uow           uow.UnitOfWork
	registry      port.Registry
	token         port.Token
	terms         subloan.Terms
	maxSubLoans   uint64
	addonTreasury string
	now           func() time.Time
}

func NewUsecase(d Deps) *Usecase {
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	if d.MaxSubLoans == 0 {
		d.MaxSubLoans = 32
	}
	return &Usecase{
		repos:         d.Repos,
		uow:           d.UoW,
		registry:      d.Registry,
		token:         d.Token,
		terms:         d.Terms,
		maxSubLoans:   d.MaxSubLoans,
		addonTreasury: d.AddonTreasury,
		now:           d.Now,
	}
}

// TakeLoan creates one sub-loan per request under a contiguous id block,
// notifies both collaborators and moves principal to the borrower and addon
// to the addon treasury.
func (u *Usecase) TakeLoan(ctx context.Context, in TakeLoanInput) (*TakeLoanResult, error) {
	now := u.now().Unix()
	startTs, err := u.validateTake(in, now)
	if err != nil {
		return nil, err
	}

	var totalBorrowed, totalAddon uint64
	for _, req := range in.SubLoans {
		totalBorrowed += req.BorrowedAmount
		totalAddon += req.AddonAmount
	}

	var out *TakeLoanResult
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		prog, err := r.Programs.GetByID(ctx, in.ProgramID)
		if err != nil {
			return err
		}
		if prog.Status != domainProgram.StatusActive {
			return domainProgram.ErrNotActive
		}
		cl, err := u.registry.CreditLine(ctx, prog.CreditLine)
		if err != nil {
			return err
		}
		lp, err := u.registry.LiquidityPool(ctx, prog.LiquidityPool)
		if err != nil {
			return err
		}

		n := uint64(len(in.SubLoans))
		firstID, err := r.Counters.AllocateBlock(ctx, counter.NameSubLoanID, n)
		if err != nil {
			return err
		}

		sls := make([]*subloan.SubLoan, 0, n)
		ids := make([]uint64, 0, n)
		for i, req := range in.SubLoans {
			id := firstID + uint64(i)
			ids = append(ids, id)
			if err := cl.OnBeforeLoanOpened(ctx, id, in.Borrower, req.BorrowedAmount+req.AddonAmount); err != nil {
				return err
			}
			sls = append(sls, newSubLoan(id, firstID, uint64(i), n, in, req, startTs))
		}
		if err := lp.OnBeforeLiquidityOut(ctx, totalBorrowed); err != nil {
			return err
		}
		if totalAddon > 0 {
			if err := lp.OnBeforeLiquidityOut(ctx, totalAddon); err != nil {
				return err
			}
		}
		if err := u.token.Transfer(ctx, prog.LiquidityPool, in.Borrower, totalBorrowed); err != nil {
			return err
		}
		if totalAddon > 0 {
			if err := u.token.Transfer(ctx, prog.LiquidityPool, u.addonTreasury, totalAddon); err != nil {
				return err
			}
		}

		if err := r.SubLoans.CreateBatch(ctx, sls); err != nil {
			return err
		}
		for _, sl := range sls {
			if err := r.Events.Append(ctx, &domainEvent.LedgerEvent{
				EventID:   uuid.NewString(),
				Type:      domainEvent.TypeSubLoanTaken,
				SubLoanID: sl.ID,
				Payload: domainEvent.MarshalPayload(domainEvent.SubLoanPayload{
					SubLoanID:      sl.ID,
					BorrowedAmount: sl.BorrowedAmount,
					AddonAmount:    sl.AddonAmount,
					StartTimestamp: sl.StartTimestamp,
					State:          domainEvent.SnapshotOf(sl, sl.TrackedParts()),
				}),
			}); err != nil {
				return err
			}
		}
		if err := r.Events.Append(ctx, &domainEvent.LedgerEvent{
			EventID:   uuid.NewString(),
			Type:      domainEvent.TypeLoanTaken,
			SubLoanID: firstID,
			Payload: domainEvent.MarshalPayload(domainEvent.LoanPayload{
				FirstSubLoanID: firstID,
				SubLoanCount:   n,
				ProgramID:      in.ProgramID,
				Borrower:       in.Borrower,
				TotalBorrowed:  totalBorrowed,
				TotalAddon:     totalAddon,
			}),
		}); err != nil {
			return err
		}

		out = &TakeLoanResult{
			FirstSubLoanID: firstID,
			SubLoanIDs:     ids,
			TotalBorrowed:  totalBorrowed,
			TotalAddon:     totalAddon,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *Usecase) validateTake(in TakeLoanInput, now int64) (int64, error) {
	if in.Borrower == "" {
		return 0, ErrMissingBorrower
	}
	if len(in.SubLoans) == 0 {
		return 0, ErrNoSubLoans
	}
	if uint64(len(in.SubLoans)) > u.maxSubLoans {
		return 0, ErrTooManySubLoans
	}
	var prevDuration uint64
	var totalBorrowed, totalAddon uint64
	for i, req := range in.SubLoans {
		if req.BorrowedAmount == 0 {
			return 0, ErrZeroBorrowed
		}
		// tracked principal and loan totals must stay within 64 bits
		if req.AddonAmount > math.MaxUint64-req.BorrowedAmount {
			return 0, subloan.ErrAmountOverflow
		}
		if req.BorrowedAmount > math.MaxUint64-totalBorrowed {
			return 0, subloan.ErrAmountOverflow
		}
		totalBorrowed += req.BorrowedAmount
		if req.AddonAmount > math.MaxUint64-totalAddon {
			return 0, subloan.ErrAmountOverflow
		}
		totalAddon += req.AddonAmount
		if req.RemuneratoryRate > subloan.RateFactor || req.MoratoryRate > subloan.RateFactor ||
			req.LateFeeRate > subloan.RateFactor || req.GraceDiscountRate > subloan.RateFactor {
			return 0, ErrRateOutOfRange
		}
		if req.Duration > subloan.MaxDuration {
			return 0, ErrDurationTooLarge
		}
		if i > 0 && req.Duration <= prevDuration {
			return 0, ErrDurationsNotAscending
		}
		prevDuration = req.Duration
	}
	switch {
	case in.StartTimestamp == 0:
		return now, nil
	case in.StartTimestamp == 1:
		return 0, ErrStartTimestampReserved
	case in.StartTimestamp > now:
		return 0, ErrStartTimestampFuture
	}
	return in.StartTimestamp, nil
}

func newSubLoan(id, firstID, index, count uint64, in TakeLoanInput, req SubLoanRequest, startTs int64) *subloan.SubLoan {
	grace := subloan.GraceNone
	if req.GraceDiscountRate > 0 {
		grace = subloan.GraceActive
	}
	return &subloan.SubLoan{
		ID: id,
		Inception: subloan.Inception{
			BorrowedAmount:           req.BorrowedAmount,
			AddonAmount:              req.AddonAmount,
			InitialRemuneratoryRate:  req.RemuneratoryRate,
			InitialMoratoryRate:      req.MoratoryRate,
			InitialLateFeeRate:       req.LateFeeRate,
			InitialGraceDiscountRate: req.GraceDiscountRate,
			InitialDuration:          req.Duration,
			StartTimestamp:           startTs,
			ProgramID:                in.ProgramID,
			Borrower:                 in.Borrower,
			FirstSubLoanID:           firstID,
			IndexInLoan:              index,
			SiblingCount:             count,
		},
		State: subloan.State{
			Status:            subloan.StatusOngoing,
			GracePeriodStatus: grace,
			Duration:          req.Duration,
			TrackedTimestamp:  startTs,
			RemuneratoryRate:  req.RemuneratoryRate,
			MoratoryRate:      req.MoratoryRate,
			LateFeeRate:       req.LateFeeRate,
			GraceDiscountRate: req.GraceDiscountRate,
			TrackedPrincipal:  req.BorrowedAmount + req.AddonAmount,
		},
	}
}

// RevokeLoan voids a whole loan: every member sub-loan gets a Revocation
// operation, its tracked amounts jump straight to zero (no accrual first)
// and the funds flow back to the liquidity pool.
func (u *Usecase) RevokeLoan(ctx context.Context, anySubLoanID uint64) (*RevokeLoanResult, error) {
	now := u.now()
	nowTs := now.Unix()

	var out *RevokeLoanResult
	err := u.uow.WithinSubLoanTx(ctx, anySubLoanID, func(r uow.Repos, anchor *subloan.SubLoan) error {
		members, err := r.SubLoans.GetLoanMembersForUpdate(ctx, anchor.FirstSubLoanID, anchor.SiblingCount)
		if err != nil {
			return err
		}
		if members[0].Status == subloan.StatusRevoked {
			return ErrAlreadyRevoked
		}
		prog, err := r.Programs.GetByID(ctx, members[0].ProgramID)
		if err != nil {
			return err
		}
		cl, err := u.registry.CreditLine(ctx, prog.CreditLine)
		if err != nil {
			return err
		}
		lp, err := u.registry.LiquidityPool(ctx, prog.LiquidityPool)
		if err != nil {
			return err
		}

		var totalBorrowed, totalAddon uint64
		ids := make([]uint64, 0, len(members))
		for _, sl := range members {
			totalBorrowed += sl.BorrowedAmount
			totalAddon += sl.AddonAmount
			ids = append(ids, sl.ID)

			before := sl.State
			seq := sl.OperationCount + 1
			op := &domainOperation.Operation{
				SubLoanID:   sl.ID,
				Seq:         seq,
				Kind:        domainOperation.KindRevocation,
				Status:      domainOperation.StatusApplied,
				Timestamp:   nowTs,
				BeforeState: domainEvent.MarshalPayload(before),
				AppliedAt:   &now,
			}
			if err := r.Operations.Create(ctx, op); err != nil {
				return err
			}
			if err := r.Operations.MarkPendingSkipped(ctx, sl.ID); err != nil {
				return err
			}

			trackedBefore := sl.TrackedParts()
			sl.Status = subloan.StatusRevoked
			sl.TrackedPrincipal = 0
			sl.TrackedRemuneratoryInterest = 0
			sl.TrackedMoratoryInterest = 0
			sl.TrackedLateFee = 0
			sl.TrackedTimestamp = nowTs
			sl.FreezeTimestamp = 0
			sl.PendingTimestamp = 0
			sl.UpdateIndex++
			sl.OperationCount = seq
			sl.RecentOperationSeq = seq
			ops, err := r.Operations.ListBySubLoan(ctx, sl.ID)
			if err != nil {
				return err
			}
			sl.EarliestOperationSeq, sl.LatestOperationSeq = domainOperation.OrderBounds(ops)
			if err := r.SubLoans.Save(ctx, sl); err != nil {
				return err
			}
			if err := r.Events.Append(ctx, &domainEvent.LedgerEvent{
				EventID:      uuid.NewString(),
				Type:         domainEvent.TypeSubLoanRevoked,
				SubLoanID:    sl.ID,
				OperationSeq: seq,
				Payload: domainEvent.MarshalPayload(domainEvent.OperationPayload{
					Kind:      string(domainOperation.KindRevocation),
					Status:    string(domainOperation.StatusApplied),
					Timestamp: nowTs,
					State:     domainEvent.SnapshotOf(sl, trackedBefore),
				}),
			}); err != nil {
				return err
			}
		}

		for _, sl := range members {
			if err := cl.OnAfterLoanClosed(ctx, sl.ID, sl.Borrower, sl.BorrowedAmount+sl.AddonAmount); err != nil {
				return err
			}
		}
		if err := lp.OnBeforeLiquidityIn(ctx, totalBorrowed); err != nil {
			return err
		}
		if totalAddon > 0 {
			if err := lp.OnBeforeLiquidityIn(ctx, totalAddon); err != nil {
				return err
			}
		}
		if err := u.token.Transfer(ctx, members[0].Borrower, prog.LiquidityPool, totalBorrowed); err != nil {
			return err
		}
		if totalAddon > 0 {
			if err := u.token.Transfer(ctx, u.addonTreasury, prog.LiquidityPool, totalAddon); err != nil {
				return err
			}
		}

		if err := r.Events.Append(ctx, &domainEvent.LedgerEvent{
			EventID:   uuid.NewString(),
			Type:      domainEvent.TypeLoanRevoked,
			SubLoanID: anchor.FirstSubLoanID,
			Payload: domainEvent.MarshalPayload(domainEvent.LoanPayload{
				FirstSubLoanID: anchor.FirstSubLoanID,
				SubLoanCount:   anchor.SiblingCount,
				ProgramID:      members[0].ProgramID,
				Borrower:       members[0].Borrower,
				TotalBorrowed:  totalBorrowed,
				TotalAddon:     totalAddon,
			}),
		}); err != nil {
			return err
		}

		out = &RevokeLoanResult{
			FirstSubLoanID: anchor.FirstSubLoanID,
			SubLoanIDs:     ids,
			TotalBorrowed:  totalBorrowed,
			TotalAddon:     totalAddon,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
