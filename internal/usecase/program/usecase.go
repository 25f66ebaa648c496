package program

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"lending-ledger/internal/domain/counter"
	domainEvent "lending-ledger/internal/domain/event"
	"lending-ledger/internal/domain/port"
	domainProgram "lending-ledger/internal/domain/program"
	"lending-ledger/internal/domain/uow"
)

var ErrMissingCollaborator = errors.New("credit line and liquidity pool are required")

type Usecase struct {
	repos    uow.Repos
	uow      uow.UnitOfWork
	registry port.Registry
}

func NewUsecase(repos uow.Repos, tx uow.UnitOfWork, registry port.Registry) *Usecase {
	return &Usecase{repos: repos, uow: tx, registry: registry}
}

// Open verifies both collaborators expose their markers, allocates a program
// id and records the program as Active.
func (u *Usecase) Open(ctx context.Context, in OpenInput) (*ProgramDTO, error) {
	if in.CreditLine == "" || in.LiquidityPool == "" {
		return nil, ErrMissingCollaborator
	}
	if _, err := u.registry.CreditLine(ctx, in.CreditLine); err != nil {
		return nil, err
	}
	if _, err := u.registry.LiquidityPool(ctx, in.LiquidityPool); err != nil {
		return nil, err
	}

	var dto *ProgramDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		id, err := r.Counters.AllocateBlock(ctx, counter.NameProgramID, 1)
		if err != nil {
			return err
		}
		p := &domainProgram.LendingProgram{
			ID:            id,
			Status:        domainProgram.StatusActive,
			CreditLine:    in.CreditLine,
			LiquidityPool: in.LiquidityPool,
		}
		if err := r.Programs.Create(ctx, p); err != nil {
			return err
		}
		if err := r.Events.Append(ctx, &domainEvent.LedgerEvent{
			EventID: uuid.NewString(),
			Type:    domainEvent.TypeProgramOpened,
			Payload: domainEvent.MarshalPayload(domainEvent.ProgramPayload{
				ProgramID:     p.ID,
				CreditLine:    p.CreditLine,
				LiquidityPool: p.LiquidityPool,
			}),
		}); err != nil {
			return err
		}
		dto = toDTO(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Close is irreversible.
func (u *Usecase) Close(ctx context.Context, id uint64) (*ProgramDTO, error) {
	var dto *ProgramDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		p, err := r.Programs.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p.Status == domainProgram.StatusClosed {
			return domainProgram.ErrAlreadyClosed
		}
		p.Status = domainProgram.StatusClosed
		if err := r.Programs.Save(ctx, p); err != nil {
			return err
		}
		if err := r.Events.Append(ctx, &domainEvent.LedgerEvent{
			EventID: uuid.NewString(),
			Type:    domainEvent.TypeProgramClosed,
			Payload: domainEvent.MarshalPayload(domainEvent.ProgramPayload{ProgramID: p.ID}),
		}); err != nil {
			return err
		}
		dto = toDTO(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) Get(ctx context.Context, id uint64) (*ProgramDTO, error) {
	p, err := u.repos.Programs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDTO(p), nil
}

func toDTO(p *domainProgram.LendingProgram) *ProgramDTO {
	return &ProgramDTO{
		ID:            p.ID,
		Status:        string(p.Status),
		CreditLine:    p.CreditLine,
		LiquidityPool: p.LiquidityPool,
		CreatedAt:     p.CreatedAt,
	}
}
