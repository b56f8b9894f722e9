package sqlite

import (
	"context"
	"database/sql"

	"github.com/q8244654-ui/lifeclock/internal/lifeclock/domain"
	"github.com/q8244654-ui/lifeclock/pkg/idx"
)

type purchasesRepo struct {
	db *sql.DB
}

func (r *purchasesRepo) Record(ctx context.Context, p domain.Purchase) error {
	// Confirmations are idempotent per session: a replayed session id must
	// not create a second row or bump the social-proof count.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO purchases (id, session_id, email, referral_code, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO NOTHING;`,
		p.ID.String(), p.SessionID, p.Email, p.ReferralCode, p.CreatedAt,
	)
	return err
}

func (r *purchasesRepo) GetBySessionID(ctx context.Context, sessionID string) (domain.Purchase, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, session_id, email, referral_code, created_at
		FROM purchases WHERE session_id = ?;`, sessionID)

	p, err := scanPurchase(row)
	if err != nil {
		return domain.Purchase{}, mapNotFound(err)
	}
	return p, nil
}

func (r *purchasesRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM purchases;`).Scan(&n)
	return n, err
}

func (r *purchasesRepo) Recent(ctx context.Context, limit int) ([]domain.Purchase, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, email, referral_code, created_at
		FROM purchases ORDER BY created_at DESC, id DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPurchase(s scanner) (domain.Purchase, error) {
	var (
		p  domain.Purchase
		id string
	)
	if err := s.Scan(&id, &p.SessionID, &p.Email, &p.ReferralCode, &p.CreatedAt); err != nil {
		return domain.Purchase{}, err
	}
	p.ID = idx.ID(id)
	return p, nil
}
