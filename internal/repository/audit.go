package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRunner выполняет операции записи от имени конкретного пользователя.
// Имя пользователя передаётся в PostgreSQL через транзакционно-локальную
// настройку app.current_user, которую читает триггер set_audit_fields().
// Каждая операция — одна явная транзакция на одном соединении: настройка
// действует ровно до коммита или отката и не протекает в другие сессии пула.
type AuditRunner struct {
	pool *pgxpool.Pool
}

// NewAuditRunner создаёт AuditRunner поверх пула соединений.
func NewAuditRunner(pool *pgxpool.Pool) *AuditRunner {
	return &AuditRunner{pool: pool}
}

// SetTxUser привязывает имя пользователя к текущей транзакции.
// Пустое имя заменяется на "system" — записи фоновых процессов
// атрибутируются явно, а не остаются без автора.
func SetTxUser(ctx context.Context, tx pgx.Tx, actingUser string) error {
	if actingUser == "" {
		actingUser = "system"
	}
	if _, err := tx.Exec(ctx, `SELECT set_config('app.current_user', $1, true)`, actingUser); err != nil {
		return fmt.Errorf("ошибка установки app.current_user: %w", err)
	}
	return nil
}

// RunAsUser выполняет fn внутри транзакции с установленным пользователем аудита.
// При ошибке fn транзакция откатывается, при успехе — коммитится.
func (r *AuditRunner) RunAsUser(ctx context.Context, actingUser string, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // откат после коммита — no-op

	if err := SetTxUser(ctx, tx, actingUser); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ExecAsUser выполняет одиночный SQL-запрос от имени пользователя аудита.
func (r *AuditRunner) ExecAsUser(ctx context.Context, actingUser, sql string, args ...any) error {
	return r.RunAsUser(ctx, actingUser, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, sql, args...)
		return err
	})
}
