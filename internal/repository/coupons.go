package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/azizikri/coupon-distributor/internal/domain"
	"github.com/jackc/pgx/v5"
)

const couponColumns = "id, code, type, creator, claimed, claimed_by, claimed_at, created_at"

func scanCoupon(row pgx.Row) (domain.Coupon, error) {
	var c domain.Coupon
	err := row.Scan(&c.ID, &c.Code, &c.Type, &c.Creator, &c.Claimed, &c.ClaimedBy, &c.ClaimedAt, &c.CreatedAt)
	return c, err
}

// TryClaimOne selects and marks one unclaimed coupon in a single statement.
// SKIP LOCKED keeps concurrent claimants off the same row, so the claim is a
// conditional update that either commits a distinct coupon or finds none.
func (s *store) TryClaimOne(ctx context.Context, typeID int, userID int64) (domain.Coupon, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE coupons
		SET claimed = TRUE, claimed_by = $2, claimed_at = now()
		WHERE id = (
			SELECT id FROM coupons
			WHERE type = $1 AND NOT claimed
			ORDER BY id
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING `+couponColumns,
		typeID, userID)

	coupon, err := scanCoupon(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Coupon{}, domain.ErrStockExhausted
	}
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("claim coupon: %w", err)
	}
	return coupon, nil
}

// CountUnclaimed is advisory; the value may be stale by the time the caller
// acts on it and must never gate a claim.
func (s *store) CountUnclaimed(ctx context.Context, typeID int) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM coupons WHERE type = $1 AND NOT claimed`, typeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unclaimed: %w", err)
	}
	return count, nil
}

// InsertCouponIfAbsent inserts a new unclaimed coupon unless the code already
// exists anywhere in the inventory, in any type.
func (s *store) InsertCouponIfAbsent(ctx context.Context, code string, typeID int, creator int64) (domain.Coupon, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO coupons (code, type, creator)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO NOTHING
		RETURNING `+couponColumns,
		code, typeID, creator)

	coupon, err := scanCoupon(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Coupon{}, domain.ErrDuplicateCoupon
	}
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("insert coupon: %w", err)
	}
	return coupon, nil
}

func (s *store) GetCouponByID(ctx context.Context, id int64) (domain.Coupon, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id)
	coupon, err := scanCoupon(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Coupon{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("get coupon: %w", err)
	}
	return coupon, nil
}

func filterClause(filter domain.CouponFilter, args []any) (string, []any) {
	var conds []string
	if filter.Type != nil {
		args = append(args, *filter.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Claimed != nil {
		if *filter.Claimed {
			conds = append(conds, "claimed")
		} else {
			conds = append(conds, "NOT claimed")
		}
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *store) ListCoupons(ctx context.Context, filter domain.CouponFilter, offset, limit int) ([]domain.Coupon, error) {
	where, args := filterClause(filter, nil)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM coupons%s ORDER BY id DESC LIMIT $%d OFFSET $%d`,
		couponColumns, where, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	return collectCoupons(rows)
}

func (s *store) CountCoupons(ctx context.Context, filter domain.CouponFilter) (int64, error) {
	where, args := filterClause(filter, nil)
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM coupons`+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count coupons: %w", err)
	}
	return count, nil
}

// UpdateUnclaimedCoupon edits code and/or type, refusing if the coupon was
// claimed in the meantime. The claimed guard rides in the SQL predicate so
// the check and the write are one step.
func (s *store) UpdateUnclaimedCoupon(ctx context.Context, id int64, upd CouponUpdate) error {
	var sets []string
	var args []any
	if upd.Code != nil {
		args = append(args, *upd.Code)
		sets = append(sets, fmt.Sprintf("code = $%d", len(args)))
	}
	if upd.Type != nil {
		args = append(args, *upd.Type)
		sets = append(sets, fmt.Sprintf("type = $%d", len(args)))
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE coupons SET %s WHERE id = $%d AND NOT claimed`,
		strings.Join(sets, ", "), len(args))

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique constraint") {
			return domain.ErrDuplicateCoupon
		}
		return fmt.Errorf("update coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.classifyMiss(ctx, id)
	}
	return nil
}

// DeleteUnclaimedCoupon removes a coupon only while it is still unclaimed.
// A coupon claimed between listing and deletion surfaces as ErrAlreadyClaimed,
// never a silent no-op.
func (s *store) DeleteUnclaimedCoupon(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1 AND NOT claimed`, id)
	if err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.classifyMiss(ctx, id)
	}
	return nil
}

// classifyMiss distinguishes "row is claimed" from "row is gone" after a
// conditional write matched nothing.
func (s *store) classifyMiss(ctx context.Context, id int64) error {
	var claimed bool
	err := s.pool.QueryRow(ctx, `SELECT claimed FROM coupons WHERE id = $1`, id).Scan(&claimed)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("inspect coupon: %w", err)
	}
	if claimed {
		return domain.ErrAlreadyClaimed
	}
	return domain.ErrNotFound
}

func (s *store) ListCouponsByTaker(ctx context.Context, taker int64, typeID *int, offset, limit int) ([]domain.Coupon, error) {
	args := []any{taker}
	where := "claimed_by = $1 AND claimed"
	if typeID != nil {
		args = append(args, *typeID)
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM coupons WHERE %s ORDER BY claimed_at DESC LIMIT $%d OFFSET $%d`,
		couponColumns, where, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list coupons by taker: %w", err)
	}
	defer rows.Close()

	return collectCoupons(rows)
}

func (s *store) CountCouponsByTaker(ctx context.Context, taker int64, typeID *int) (int64, error) {
	args := []any{taker}
	where := "claimed_by = $1 AND claimed"
	if typeID != nil {
		args = append(args, *typeID)
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}

	var count int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM coupons WHERE `+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count coupons by taker: %w", err)
	}
	return count, nil
}

func collectCoupons(rows pgx.Rows) ([]domain.Coupon, error) {
	var coupons []domain.Coupon
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, coupon)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coupons: %w", err)
	}
	return coupons, nil
}
