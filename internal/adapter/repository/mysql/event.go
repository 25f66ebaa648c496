package mysql

import (
	"context"

	"gorm.io/gorm"

	eventDomain "lending-ledger/internal/domain/event"
)

type EventRepository struct{ db *gorm.DB }

func NewEventRepository(db *gorm.DB) *EventRepository { return &EventRepository{db: db} }

func (r *EventRepository) Append(ctx context.Context, e *eventDomain.LedgerEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EventRepository) ListBySubLoan(ctx context.Context, subLoanID uint64) ([]*eventDomain.LedgerEvent, error) {
	var out []*eventDomain.LedgerEvent
	res := r.db.WithContext(ctx).
		Where("sub_loan_id = ?", subLoanID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}
