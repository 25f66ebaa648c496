package operation

import (
	"context"

	domainOperation "lending-ledger/internal/domain/operation"
	"lending-ledger/internal/domain/uow"
)

// ListSeqs returns the sub-loan's operation seq ids in (timestamp, seq)
// order.
func (u *Usecase) ListSeqs(ctx context.Context, subLoanID uint64) ([]uint64, error) {
	if _, err := u.repos.SubLoans.GetByID(ctx, subLoanID); err != nil {
		return nil, err
	}
	ops, err := u.repos.Operations.ListBySubLoan(ctx, subLoanID)
	if err != nil {
		return nil, err
	}
	out := make([]uint64, 0, len(ops))
	for _, op := range ops {
		out = append(out, op.Seq)
	}
	return out, nil
}

// Get returns one operation with its (timestamp, seq)-order neighbours.
func (u *Usecase) Get(ctx context.Context, subLoanID, seq uint64) (*OperationDTO, error) {
	op, err := u.repos.Operations.GetBySeq(ctx, subLoanID, seq)
	if err != nil {
		return nil, err
	}
	return u.toDTO(ctx, u.repos, op)
}

func (u *Usecase) toDTO(ctx context.Context, r uow.Repos, op *domainOperation.Operation) (*OperationDTO, error) {
	dto := &OperationDTO{
		SubLoanID: op.SubLoanID,
		Seq:       op.Seq,
		Kind:      string(op.Kind),
		Status:    string(op.Status),
		Timestamp: op.Timestamp,
		Value:     op.Value,
	}
	if op.AccountID != 0 {
		a, err := r.Accounts.GetByID(ctx, op.AccountID)
		if err != nil {
			return nil, err
		}
		dto.Account = a.Address
	}
	ops, err := r.Operations.ListBySubLoan(ctx, op.SubLoanID)
	if err != nil {
		return nil, err
	}
	for i, cur := range ops {
		if cur.Seq != op.Seq {
			continue
		}
		if i > 0 {
			dto.PrevSeq = ops[i-1].Seq
		}
		if i+1 < len(ops) {
			dto.NextSeq = ops[i+1].Seq
		}
		break
	}
	return dto, nil
}
