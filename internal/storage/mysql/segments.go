package mysql

import (
	"context"
	"database/sql"

	"hotel_bff/internal/domain"
)

func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func ptrF64(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// SegmentStore reads pricing segments from the `segments` table.
type SegmentStore struct{ db *sql.DB }

func New(db *sql.DB) *SegmentStore { return &SegmentStore{db: db} }

type scanner interface {
	Scan(dest ...any) error
}

func scanSegment(s scanner) (domain.SegmentRow, error) {
	var row domain.SegmentRow
	var margin, markup, discount sql.NullFloat64
	if err := s.Scan(&row.ID, &row.Name, &margin, &markup, &discount, &row.IsCug); err != nil {
		return domain.SegmentRow{}, err
	}
	row.EffectiveMargin = ptrF64(margin)
	row.AdditionalMarkup = ptrF64(markup)
	row.DisplayDiscountPercent = ptrF64(discount)
	return row, nil
}

func (s *SegmentStore) Segment(ctx context.Context, id string) (domain.SegmentRow, error) {
	row, err := scanSegment(s.db.QueryRowContext(ctx, getSegmentSQL, id))
	if err == sql.ErrNoRows {
		return domain.SegmentRow{}, domain.ErrNotFound
	}
	return row, err
}

func (s *SegmentStore) List(ctx context.Context) ([]domain.SegmentRow, error) {
	rows, err := s.db.QueryContext(ctx, listSegmentsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SegmentRow
	for rows.Next() {
		row, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *SegmentStore) Upsert(ctx context.Context, row domain.SegmentRow) error {
	_, err := s.db.ExecContext(ctx, upsertSegmentSQL,
		row.ID,
		row.Name,
		valF64(row.EffectiveMargin),
		valF64(row.AdditionalMarkup),
		valF64(row.DisplayDiscountPercent),
		row.IsCug,
	)
	return err
}

// Seed inserts rows that are missing and leaves operator edits alone.
func (s *SegmentStore) Seed(ctx context.Context, rows []domain.SegmentRow) error {
	for _, r := range rows {
		if _, err := s.db.ExecContext(ctx, seedSegmentSQL,
			r.ID, r.Name, valF64(r.EffectiveMargin), valF64(r.AdditionalMarkup), valF64(r.DisplayDiscountPercent), r.IsCug,
		); err != nil {
			return err
		}
	}
	return nil
}
