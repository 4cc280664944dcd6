package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/revisit/internal/infra/postgres"
	"github.com/aliskhannn/revisit/internal/service"
)

// UnitOfWork hands transaction-bound repositories to service code.
type UnitOfWork struct {
	transactor *postgres.Transactor
}

func NewUnitOfWork(transactor *postgres.Transactor) *UnitOfWork {
	return &UnitOfWork{transactor: transactor}
}

func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, repos service.TxRepositories) error) error {
	return u.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, service.TxRepositories{
			Problems:  NewProblemRepository(tx),
			Reminders: NewReminderRepository(tx),
		})
	})
}
