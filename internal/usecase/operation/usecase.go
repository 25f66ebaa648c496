package operation

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	domainEvent "lending-ledger/internal/domain/event"
	domainOperation "lending-ledger/internal/domain/operation"
	"lending-ledger/internal/domain/port"
	"lending-ledger/internal/domain/subloan"
	"lending-ledger/internal/domain/uow"
	"lending-ledger/pkg/id"
)

var (
	ErrEmptyBatch         = errors.New("batch must not be empty")
	ErrAccountRequired    = errors.New("repayment requires a payer account")
	ErrCounterpartyNeeded = errors.New("voiding an applied repayment requires a counterparty")
)

type Deps struct {
	Repos uow.Repos
	UoW   uow.UnitOfWork
	Token port.Token
	Terms subloan.Terms
	Now   func() time.Time
}

type Usecase struct {
	repos uow.Repos
	uow   uow.UnitOfWork
	token port.Token
	terms subloan.Terms
	now   func() time.Time
}

func NewUsecase(d Deps) *Usecase {
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Usecase{repos: d.Repos, uow: d.UoW, token: d.Token, terms: d.Terms, now: d.Now}
}

// SubmitBatch validates and records every request, then applies all of the
// sub-loan's operations dated at or before now, previously pending ones
// included, strictly in (timestamp, seq) order regardless of array order.
// Future-dated operations are queued without touching the ledger.
// One invalid item aborts the whole batch.
func (u *Usecase) SubmitBatch(ctx context.Context, in SubmitBatchInput) (*SubmitBatchResult, error) {
	if len(in.Requests) == 0 {
		return nil, ErrEmptyBatch
	}
	now := u.now()
	nowTs := now.Unix()
	batchID := id.NewID32()

	var out *SubmitBatchResult
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		// lock each touched sub-loan once, in id order, so concurrent
		// batches naming the same sub-loans cannot deadlock
		subLoans := make(map[uint64]*subloan.SubLoan)
		order := make([]uint64, 0, len(in.Requests))
		for _, req := range in.Requests {
			if _, ok := subLoans[req.SubLoanID]; ok {
				continue
			}
			subLoans[req.SubLoanID] = nil
			order = append(order, req.SubLoanID)
		}
		sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
		for _, slID := range order {
			sl, err := r.SubLoans.GetByIDForUpdate(ctx, slID)
			if err != nil {
				return err
			}
			if sl.Status == subloan.StatusRevoked {
				return subloan.ErrRevoked
			}
			subLoans[slID] = sl
		}

		// record every request before anything applies
		newOps := make([]*domainOperation.Operation, 0, len(in.Requests))
		for _, req := range in.Requests {
			sl := subLoans[req.SubLoanID]
			op, err := buildOperation(ctx, r, sl, req, nowTs)
			if err != nil {
				return err
			}
			sl.OperationCount = op.Seq
			if err := r.Operations.Create(ctx, op); err != nil {
				return err
			}
			newOps = append(newOps, op)
		}

		for _, slID := range order {
			if err := u.applyMatured(ctx, r, subLoans[slID], now, batchID); err != nil {
				return err
			}
		}

		// re-read the batch rows: maturation flipped some of them to Applied
		for i, op := range newOps {
			fresh, err := r.Operations.GetBySeq(ctx, op.SubLoanID, op.Seq)
			if err != nil {
				return err
			}
			newOps[i] = fresh
		}

		// pending events for the requests that stayed queued
		for _, op := range newOps {
			if op.Status != domainOperation.StatusPending {
				continue
			}
			if err := u.appendOpEvent(ctx, r, domainEvent.TypeOpPending, op, batchID, nil); err != nil {
				return err
			}
		}

		dtos := make([]*OperationDTO, 0, len(newOps))
		for _, op := range newOps {
			dto, err := u.toDTO(ctx, r, op)
			if err != nil {
				return err
			}
			dtos = append(dtos, dto)
		}
		out = &SubmitBatchResult{BatchID: batchID, Operations: dtos}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func buildOperation(ctx context.Context, r uow.Repos, sl *subloan.SubLoan, req OperationRequest, nowTs int64) (*domainOperation.Operation, error) {
	kind := domainOperation.Kind(req.Kind)
	if kind == domainOperation.KindRevocation {
		return nil, domainOperation.ErrRevocationNotAllowed
	}
	if !kind.Known() {
		return nil, domainOperation.ErrUnknownKind
	}
	ts := req.Timestamp
	if ts == 0 {
		ts = nowTs
	}
	if ts < sl.StartTimestamp {
		return nil, subloan.ErrTimestampTooEarly
	}
	if ts > domainOperation.MaxTimestamp {
		return nil, domainOperation.ErrTimestampOutOfRange
	}
	switch kind {
	case domainOperation.KindRepayment:
		if req.Value == 0 {
			return nil, domainOperation.ErrZeroValue
		}
		if req.Account == "" {
			return nil, ErrAccountRequired
		}
	case domainOperation.KindDiscount:
		if req.Value == 0 {
			return nil, domainOperation.ErrZeroValue
		}
	case domainOperation.KindRemuneratoryRate, domainOperation.KindMoratoryRate,
		domainOperation.KindLateFeeRate, domainOperation.KindGraceDiscountRate:
		if req.Value > subloan.RateFactor {
			return nil, domainOperation.ErrRateOutOfRange
		}
	case domainOperation.KindDurationSetting:
		if req.Value > subloan.MaxDuration {
			return nil, domainOperation.ErrDurationOutOfRange
		}
	case domainOperation.KindFreezing:
		if sl.Status != subloan.StatusOngoing {
			return nil, subloan.ErrNotOngoing
		}
		if sl.FreezeTimestamp != 0 {
			return nil, subloan.ErrFrozen
		}
	case domainOperation.KindUnfreezing:
		if sl.FreezeTimestamp == 0 {
			return nil, subloan.ErrNotFrozen
		}
	}

	var accountID uint64
	if req.Account != "" {
		var err error
		accountID, err = r.Accounts.Intern(ctx, req.Account)
		if err != nil {
			return nil, err
		}
	}
	return &domainOperation.Operation{
		SubLoanID: sl.ID,
		Seq:       sl.OperationCount + 1,
		Kind:      kind,
		Status:    domainOperation.StatusPending,
		Timestamp: ts,
		Value:     req.Value,
		AccountID: accountID,
	}, nil
}

// applyMatured flushes every Pending operation of the sub-loan dated at or
// before now, in (timestamp, seq) order, then refreshes the metadata.
func (u *Usecase) applyMatured(ctx context.Context, r uow.Repos, sl *subloan.SubLoan, now time.Time, batchID string) error {
	nowTs := now.Unix()
	pending, err := r.Operations.ListPending(ctx, sl.ID)
	if err != nil {
		return err
	}
	pool, err := u.poolAddress(ctx, r, sl)
	if err != nil {
		return err
	}

	var latestPending int64
	for _, op := range pending {
		if op.Timestamp > nowTs {
			if op.Timestamp > latestPending {
				latestPending = op.Timestamp
			}
			continue
		}

		before := sl.State
		raw, err := json.Marshal(before)
		if err != nil {
			return err
		}
		op.BeforeState = raw
		if _, err := domainOperation.ApplyEffect(sl, op, u.terms); err != nil {
			return err
		}
		if op.Kind == domainOperation.KindRepayment {
			payer, err := r.Accounts.GetByID(ctx, op.AccountID)
			if err != nil {
				return err
			}
			if err := u.token.Transfer(ctx, payer.Address, pool, op.Value); err != nil {
				return err
			}
		}

		op.Status = domainOperation.StatusApplied
		op.AppliedAt = &now
		if err := r.Operations.Save(ctx, op); err != nil {
			return err
		}
		sl.UpdateIndex++
		sl.RecentOperationSeq = op.Seq
		trackedBefore := subloan.Parts{
			Principal:    before.TrackedPrincipal,
			Remuneratory: before.TrackedRemuneratoryInterest,
			Moratory:     before.TrackedMoratoryInterest,
			LateFee:      before.TrackedLateFee,
		}
		snap := domainEvent.SnapshotOf(sl, trackedBefore)
		if err := u.appendOpEvent(ctx, r, domainEvent.TypeOpApplied, op, batchID, snap); err != nil {
			return err
		}
	}

	sl.PendingTimestamp = latestPending
	ops, err := r.Operations.ListBySubLoan(ctx, sl.ID)
	if err != nil {
		return err
	}
	sl.EarliestOperationSeq, sl.LatestOperationSeq = domainOperation.OrderBounds(ops)
	return r.SubLoans.Save(ctx, sl)
}

func (u *Usecase) poolAddress(ctx context.Context, r uow.Repos, sl *subloan.SubLoan) (string, error) {
	prog, err := r.Programs.GetByID(ctx, sl.ProgramID)
	if err != nil {
		return "", err
	}
	return prog.LiquidityPool, nil
}

// VoidBatch dismisses pending operations and revokes applied ones. A
// dismissal changes nothing but the operation status; a revocation restores
// the sub-loan to its pre-operation state and refunds the counterparty.
// Only the most recent applied operation of a sub-loan can be revoked.
func (u *Usecase) VoidBatch(ctx context.Context, in VoidBatchInput) (*VoidBatchResult, error) {
	if len(in.Requests) == 0 {
		return nil, ErrEmptyBatch
	}
	now := u.now()
	batchID := id.NewID32()

	var out *VoidBatchResult
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		dtos := make([]*OperationDTO, 0, len(in.Requests))
		for _, req := range in.Requests {
			op, err := u.voidOne(ctx, r, req, now, batchID)
			if err != nil {
				return err
			}
			dto, err := u.toDTO(ctx, r, op)
			if err != nil {
				return err
			}
			dtos = append(dtos, dto)
		}
		out = &VoidBatchResult{BatchID: batchID, Operations: dtos}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *Usecase) voidOne(ctx context.Context, r uow.Repos, req VoidRequest, now time.Time, batchID string) (*domainOperation.Operation, error) {
	sl, err := r.SubLoans.GetByIDForUpdate(ctx, req.SubLoanID)
	if err != nil {
		return nil, err
	}
	op, err := r.Operations.GetBySeq(ctx, req.SubLoanID, req.Seq)
	if err != nil {
		return nil, err
	}

	switch op.Status {
	case domainOperation.StatusPending:
		op.Status = domainOperation.StatusDismissed
		op.VoidedAt = &now
		if err := r.Operations.Save(ctx, op); err != nil {
			return nil, err
		}
		// recompute the latest still-pending timestamp
		pending, err := r.Operations.ListPending(ctx, sl.ID)
		if err != nil {
			return nil, err
		}
		sl.PendingTimestamp = 0
		for _, p := range pending {
			if p.Timestamp > sl.PendingTimestamp {
				sl.PendingTimestamp = p.Timestamp
			}
		}
		if err := r.SubLoans.Save(ctx, sl); err != nil {
			return nil, err
		}
		if err := u.appendOpEvent(ctx, r, domainEvent.TypeOpDismissed, op, batchID, nil); err != nil {
			return nil, err
		}
		return op, nil

	case domainOperation.StatusApplied:
		if sl.RecentOperationSeq != op.Seq {
			return nil, domainOperation.ErrNotRecentApplied
		}
		trackedBefore := sl.TrackedParts()
		var restored subloan.State
		if err := json.Unmarshal(op.BeforeState, &restored); err != nil {
			return nil, err
		}
		sl.State = restored
		sl.UpdateIndex++
		prev, err := r.Operations.LastApplied(ctx, sl.ID, op.Seq)
		switch {
		case err == nil:
			sl.RecentOperationSeq = prev.Seq
		case errors.Is(err, domainOperation.ErrNotFound):
			sl.RecentOperationSeq = 0
		default:
			return nil, err
		}
		if err := r.SubLoans.Save(ctx, sl); err != nil {
			return nil, err
		}

		op.Status = domainOperation.StatusRevoked
		op.VoidedAt = &now
		if err := r.Operations.Save(ctx, op); err != nil {
			return nil, err
		}

		if op.Kind == domainOperation.KindRepayment {
			if req.Counterparty == "" {
				return nil, ErrCounterpartyNeeded
			}
			pool, err := u.poolAddress(ctx, r, sl)
			if err != nil {
				return nil, err
			}
			if err := u.token.Transfer(ctx, pool, req.Counterparty, op.Value); err != nil {
				return nil, err
			}
		}

		snap := domainEvent.SnapshotOf(sl, trackedBefore)
		if err := u.appendOpEvent(ctx, r, domainEvent.TypeOpVoided, op, batchID, snap); err != nil {
			return nil, err
		}
		return op, nil
	}
	return nil, domainOperation.ErrNotVoidable
}

func (u *Usecase) appendOpEvent(ctx context.Context, r uow.Repos, typ string, op *domainOperation.Operation, batchID string, snap *domainEvent.StateSnapshot) error {
	var account string
	if op.AccountID != 0 {
		a, err := r.Accounts.GetByID(ctx, op.AccountID)
		if err != nil {
			return err
		}
		account = a.Address
	}
	return r.Events.Append(ctx, &domainEvent.LedgerEvent{
		EventID:      uuid.NewString(),
		Type:         typ,
		SubLoanID:    op.SubLoanID,
		OperationSeq: op.Seq,
		BatchID:      batchID,
		Payload: domainEvent.MarshalPayload(domainEvent.OperationPayload{
			Kind:      string(op.Kind),
			Status:    string(op.Status),
			Timestamp: op.Timestamp,
			Value:     op.Value,
			Account:   account,
			State:     snap,
		}),
	})
}
