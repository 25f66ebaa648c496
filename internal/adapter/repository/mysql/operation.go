package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	operationDomain "lending-ledger/internal/domain/operation"
)

type OperationRepository struct{ db *gorm.DB }

func NewOperationRepository(db *gorm.DB) *OperationRepository { return &OperationRepository{db: db} }

func (r *OperationRepository) Create(ctx context.Context, op *operationDomain.Operation) error {
	return r.db.WithContext(ctx).Create(op).Error
}

func (r *OperationRepository) Save(ctx context.Context, op *operationDomain.Operation) error {
	return r.db.WithContext(ctx).Save(op).Error
}

func (r *OperationRepository) GetBySeq(ctx context.Context, subLoanID, seq uint64) (*operationDomain.Operation, error) {
	var out operationDomain.Operation
	res := r.db.WithContext(ctx).
		Where("sub_loan_id = ? AND seq = ?", subLoanID, seq).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, operationDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *OperationRepository) ListBySubLoan(ctx context.Context, subLoanID uint64) ([]*operationDomain.Operation, error) {
	var out []*operationDomain.Operation
	res := r.db.WithContext(ctx).
		Where("sub_loan_id = ?", subLoanID).
		Order("timestamp ASC, seq ASC").
		Find(&out)
	return out, res.Error
}

func (r *OperationRepository) ListPending(ctx context.Context, subLoanID uint64) ([]*operationDomain.Operation, error) {
	var out []*operationDomain.Operation
	res := r.db.WithContext(ctx).
		Where("sub_loan_id = ? AND status = ?", subLoanID, operationDomain.StatusPending).
		Order("timestamp ASC, seq ASC").
		Find(&out)
	return out, res.Error
}

func (r *OperationRepository) LastApplied(ctx context.Context, subLoanID, excludeSeq uint64) (*operationDomain.Operation, error) {
	var out operationDomain.Operation
	q := r.db.WithContext(ctx).
		Where("sub_loan_id = ? AND status = ?", subLoanID, operationDomain.StatusApplied)
	if excludeSeq != 0 {
		q = q.Where("seq <> ?", excludeSeq)
	}
	res := q.Order("timestamp DESC, seq DESC").First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, operationDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *OperationRepository) MarkPendingSkipped(ctx context.Context, subLoanID uint64) error {
	return r.db.WithContext(ctx).
		Model(&operationDomain.Operation{}).
		Where("sub_loan_id = ? AND status = ?", subLoanID, operationDomain.StatusPending).
		Update("status", operationDomain.StatusSkipped).Error
}
