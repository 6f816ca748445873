package citizen

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

var ErrCitizenNotFound = errors.New("citizen not found")

const citizenColumns = `id, name, father_name, mother_name, nid, date_of_birth, gender, phone, address,
	status, upozilla_id, union_id, village_id, created_at, updated_at`

var insertColumns = []string{
	"name", "father_name", "mother_name", "nid", "date_of_birth", "gender", "phone", "address",
	"status", "upozilla_id", "union_id", "village_id",
}

// Page is one page of a filtered listing plus the status counts of the
// whole filtered set.
type Page struct {
	Citizens []Citizen
	Counts   map[Status]int
	Total    int
}

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

func scanCitizen(row pgx.Row) (*Citizen, error) {
	var c Citizen
	var status string
	if err := row.Scan(
		&c.ID, &c.Name, &c.FatherName, &c.MotherName, &c.NID, &c.DateOfBirth, &c.Gender, &c.Phone, &c.Address,
		&status, &c.UpozillaID, &c.UnionID, &c.VillageID, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Status = Status(status)
	return &c, nil
}

// Search returns the requested page and the status counts. Both reads run in
// one transaction so the page and the counts agree.
func (r *Repo) Search(ctx context.Context, params ListParams) (_ *Page, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.citizen.search")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	where, args := params.where()
	page := &Page{
		Citizens: make([]Citizen, 0, params.Limit),
		Counts:   make(map[Status]int, len(Statuses)),
	}

	err = db.WithTx(ctx, r.db, r.txTimeout, func(ctx context.Context, tx pgx.Tx) error {
		countRows, err := tx.Query(ctx, `SELECT status, count(*) FROM users`+where+` GROUP BY status;`, args...)
		if err != nil {
			return fmt.Errorf("count citizens: %w", err)
		}
		for countRows.Next() {
			var (
				status string
				count  int
			)
			if err := countRows.Scan(&status, &count); err != nil {
				countRows.Close()
				return err
			}
			page.Counts[Status(status)] = count
			page.Total += count
		}
		countRows.Close()
		if err := countRows.Err(); err != nil {
			return err
		}

		if page.Total == 0 {
			return nil
		}

		pageArgs := append(args, params.Limit, params.Offset())
		query := fmt.Sprintf(
			`SELECT %s FROM users%s%s LIMIT $%d OFFSET $%d;`,
			citizenColumns, where, params.orderBy(), len(args)+1, len(args)+2,
		)
		rows, err := tx.Query(ctx, query, pageArgs...)
		if err != nil {
			return fmt.Errorf("list citizens: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanCitizen(rows)
			if err != nil {
				return err
			}
			page.Citizens = append(page.Citizens, *c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("citizens.total", page.Total))
	return page, nil
}

func (r *Repo) Get(ctx context.Context, id int64) (_ *Citizen, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.citizen.get")
	defer func() {
		if err != nil && !errors.Is(err, ErrCitizenNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	c, err := scanCitizen(r.db.QueryRow(
		ctx,
		`SELECT `+citizenColumns+` FROM users WHERE id = $1;`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCitizenNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *Repo) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE users SET status = $1, updated_at = now() WHERE id = $2;`,
		string(status), id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCitizenNotFound
	}
	return nil
}

func (r *Repo) VillageRefs(ctx context.Context) ([]VillageRef, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT v.id, v.union_id, u.upozilla_id
		FROM villages v
		JOIN unions u ON u.id = v.union_id
		ORDER BY v.id;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []VillageRef
	for rows.Next() {
		var ref VillageRef
		if err := rows.Scan(&ref.VillageID, &ref.UnionID, &ref.UpozillaID); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// InsertMany bulk loads citizens with COPY.
func (r *Repo) InsertMany(ctx context.Context, citizens []Citizen) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.citizen.insertmany")
	span.SetAttributes(attribute.Int("citizens.count", len(citizens)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	return r.db.CopyFrom(
		ctx,
		pgx.Identifier{"users"},
		insertColumns,
		pgx.CopyFromSlice(len(citizens), func(i int) ([]any, error) {
			c := citizens[i]
			return []any{
				c.Name, c.FatherName, c.MotherName, c.NID, c.DateOfBirth, c.Gender, c.Phone, c.Address,
				string(c.Status), c.UpozillaID, c.UnionID, c.VillageID,
			}, nil
		}),
	)
}
