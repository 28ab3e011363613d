package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	godrv "github.com/go-sql-driver/mysql"

	"tutelo/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// isDuplicate reports whether err is the MySQL duplicate-entry error (1062),
// i.e. the unique index on hotels.name fired.
func isDuplicate(err error) bool {
	var me *godrv.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

func (r *Repo) Create(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	res, err := r.db.ExecContext(ctx, insertHotelSQL,
		h.Name, h.City, h.Address, valStr(h.Description))
	if err != nil {
		if isDuplicate(err) {
			return domain.Hotel{}, fmt.Errorf("%w: hotel name %q already exists", domain.ErrConflict, h.Name)
		}
		return domain.Hotel{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Hotel{}, err
	}
	h.ID = id
	if h.ImageURLs == nil {
		h.ImageURLs = []string{}
	}
	return h, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (domain.Hotel, error) {
	row := r.db.QueryRowContext(ctx, getHotelSQL, id)

	var h domain.Hotel
	var desc sql.NullString
	if err := row.Scan(&h.ID, &h.Name, &h.City, &h.Address, &desc); err != nil {
		if err == sql.ErrNoRows {
			return domain.Hotel{}, fmt.Errorf("%w: hotel %d", domain.ErrNotFound, id)
		}
		return domain.Hotel{}, err
	}
	if desc.Valid {
		d := desc.String
		h.Description = &d
	}

	urls, err := r.imagesFor(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	h.ImageURLs = urls
	return h, nil
}

func (r *Repo) imagesFor(ctx context.Context, id int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, getImagesSQL, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	urls := []string{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

func (r *Repo) List(ctx context.Context) ([]domain.Hotel, error) {
	rows, err := r.db.QueryContext(ctx, listHotelsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Hotel
	byID := map[int64]int{}
	for rows.Next() {
		var h domain.Hotel
		var desc sql.NullString
		if err := rows.Scan(&h.ID, &h.Name, &h.City, &h.Address, &desc); err != nil {
			return nil, err
		}
		if desc.Valid {
			d := desc.String
			h.Description = &d
		}
		h.ImageURLs = []string{}
		byID[h.ID] = len(out)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// One pass over the side table instead of a query per hotel.
	imgRows, err := r.db.QueryContext(ctx, listImagesSQL)
	if err != nil {
		return nil, err
	}
	defer imgRows.Close()
	for imgRows.Next() {
		var hotelID int64
		var u string
		if err := imgRows.Scan(&hotelID, &u); err != nil {
			return nil, err
		}
		if i, ok := byID[hotelID]; ok {
			out[i].ImageURLs = append(out[i].ImageURLs, u)
		}
	}
	return out, imgRows.Err()
}

func (r *Repo) Update(ctx context.Context, h domain.Hotel) error {
	// RowsAffected cannot distinguish "absent" from a no-op write, so
	// existence is the service's job (it loads the row first).
	_, err := r.db.ExecContext(ctx, updateHotelSQL,
		h.Name, h.City, h.Address, valStr(h.Description), h.ID)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%w: hotel name %q already exists", domain.ErrConflict, h.Name)
		}
		return err
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteHotelSQL, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: hotel %d", domain.ErrNotFound, id)
	}
	// hotel_images rows go with the FK ON DELETE CASCADE.
	return nil
}

func (r *Repo) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, existsByNameSQL, name, excludeID).Scan(&exists)
	return exists, err
}

func (r *Repo) ReplaceImages(ctx context.Context, hotelID int64, urls []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, deleteImagesSQL, hotelID); err != nil {
		return err
	}
	if len(urls) > 0 {
		values := make([]string, 0, len(urls))
		args := make([]any, 0, len(urls)*3)
		for i, u := range urls {
			values = append(values, "(?,?,?)")
			args = append(args, hotelID, i, u)
		}
		sqlStr := insertImagesPrefix + strings.Join(values, ",")
		if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}
