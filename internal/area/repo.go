package area

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/tauhid97k/voters-info-api/internal/db"
	"github.com/tauhid97k/voters-info-api/internal/telemetry/tracing"
)

var ErrUnionsNotSeeded = errors.New("unions are not created yet")

type Repo struct {
	db        db.Conn
	txTimeout time.Duration
}

func NewRepo(conn db.Conn, txTimeout time.Duration) *Repo {
	return &Repo{
		db:        conn,
		txTimeout: txTimeout,
	}
}

func (r *Repo) Upozillas(ctx context.Context) (_ []Upozilla, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.area.upozillas")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	rows, err := r.db.Query(ctx, `SELECT id, name FROM upozillas ORDER BY id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	upozillas := make([]Upozilla, 0, 8)
	for rows.Next() {
		var up Upozilla
		if err := rows.Scan(&up.ID, &up.Name); err != nil {
			return nil, err
		}
		upozillas = append(upozillas, up)
	}

	return upozillas, rows.Err()
}

// UnionsWithVillages returns the unions of an upozilla, each with its villages.
func (r *Repo) UnionsWithVillages(ctx context.Context, upozillaID int) (_ []Union, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.area.unions")
	span.SetAttributes(attribute.Int("upozilla.id", upozillaID))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT u.id, u.name, u.upozilla_id, COALESCE(v.id, 0), COALESCE(v.name, '')
		FROM unions u
		LEFT JOIN villages v ON v.union_id = u.id
		WHERE u.upozilla_id = $1
		ORDER BY u.id, v.id;`,
		upozillaID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	unions := make([]Union, 0)
	for rows.Next() {
		var (
			u           Union
			villageID   int
			villageName string
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.UpozillaID, &villageID, &villageName); err != nil {
			return nil, err
		}

		if len(unions) == 0 || unions[len(unions)-1].ID != u.ID {
			u.Villages = make([]Village, 0)
			unions = append(unions, u)
		}
		// a union without villages comes back as a single row with village id 0
		if villageID != 0 {
			last := &unions[len(unions)-1]
			last.Villages = append(last.Villages, Village{
				ID:      villageID,
				Name:    villageName,
				UnionID: u.ID,
			})
		}
	}

	return unions, rows.Err()
}

// SeedUnions inserts the unions of data, skipping ones that already exist.
// It returns the number of unions actually created.
func (r *Repo) SeedUnions(ctx context.Context, data SeedData) (created int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.area.seed.unions")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	err = db.WithTx(ctx, r.db, r.txTimeout, func(ctx context.Context, tx pgx.Tx) error {
		for _, up := range data {
			for _, u := range up.Unions {
				tag, err := tx.Exec(
					ctx,
					`INSERT INTO unions (name, upozilla_id)
					SELECT $1, id FROM upozillas WHERE name = $2
					ON CONFLICT (upozilla_id, name) DO NOTHING;`,
					u.Name, up.Upozilla,
				)
				if err != nil {
					return fmt.Errorf("insert union %s/%s: %w", up.Upozilla, u.Name, err)
				}
				created += tag.RowsAffected()
			}
		}
		return nil
	})

	return created, err
}

// SeedVillages inserts the villages of data under their already seeded
// unions, skipping ones that already exist.
func (r *Repo) SeedVillages(ctx context.Context, data SeedData) (created int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.area.seed.villages")
	defer func() {
		if err != nil && !errors.Is(err, ErrUnionsNotSeeded) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	err = db.WithTx(ctx, r.db, r.txTimeout, func(ctx context.Context, tx pgx.Tx) error {
		var unionsCount int
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM unions;`).Scan(&unionsCount); err != nil {
			return err
		}
		if unionsCount == 0 {
			return ErrUnionsNotSeeded
		}

		for _, up := range data {
			for _, u := range up.Unions {
				for _, village := range u.Villages {
					tag, err := tx.Exec(
						ctx,
						`INSERT INTO villages (name, union_id)
						SELECT $1, u.id FROM unions u
						JOIN upozillas p ON p.id = u.upozilla_id
						WHERE u.name = $2 AND p.name = $3
						ON CONFLICT (union_id, name) DO NOTHING;`,
						village, u.Name, up.Upozilla,
					)
					if err != nil {
						return fmt.Errorf("insert village %s/%s/%s: %w", up.Upozilla, u.Name, village, err)
					}
					created += tag.RowsAffected()
				}
			}
		}
		return nil
	})

	return created, err
}
