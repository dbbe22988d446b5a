package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgtype"
	kpool "github.com/opst/dmcatalog/pkg/conn/db/postgres/pool"
	"github.com/opst/dmcatalog/pkg/domain"
	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
	kpgerr "github.com/opst/dmcatalog/pkg/domain/errors/dberrors/postgres"
	kformat "github.com/opst/dmcatalog/pkg/domain/format/db"
)

type formatPG struct {
	pool kpool.Pool
}

var _ kformat.FormatInterface = &formatPG{}

func New(pool kpool.Pool) *formatPG {
	return &formatPG{pool: pool}
}

const selectFormat = `
select
	"format_id",
	"namespace", "definition", "usage", "file_type", "version",
	"partition_key", "sub_partition_keys", "partition_key_group", "description"
from "format"
`

func scanFormat(row interface{ Scan(...any) error }) (int64, domain.Format, error) {
	var id int64
	var f domain.Format
	var group pgtype.Text
	if err := row.Scan(
		&id,
		&f.Namespace, &f.Definition, &f.Usage, &f.FileType, &f.Version,
		&f.PartitionKey, &f.SubPartitionKeys, &group, &f.Description,
	); err != nil {
		return 0, domain.Format{}, err
	}
	if group.Status == pgtype.Present {
		f.PartitionKeyGroup = group.String
	}
	if f.SubPartitionKeys == nil {
		f.SubPartitionKeys = []string{}
	}
	return id, f, nil
}

func (m *formatPG) Register(ctx context.Context, f domain.Format) (domain.Format, error) {
	group := pgtype.Text{Status: pgtype.Null}
	if f.PartitionKeyGroup != "" {
		group = pgtype.Text{String: f.PartitionKeyGroup, Status: pgtype.Present}
	}
	subKeys := f.SubPartitionKeys
	if subKeys == nil {
		subKeys = []string{}
	}

	_, err := m.pool.Exec(
		ctx,
		`
		insert into "format" (
			"namespace", "definition", "usage", "file_type", "version",
			"partition_key", "sub_partition_keys", "partition_key_group", "description"
		)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
		f.Namespace, f.Definition, f.Usage, f.FileType, f.Version,
		f.PartitionKey, subKeys, group, f.Description,
	)
	if err != nil {
		if kpgerr.IsUniqueViolation(err) {
			return domain.Format{}, domerr.Conflict{Table: "format", Identity: f.FormatKey.String()}
		}
		if kpgerr.IsForeignKeyViolation(err) {
			return domain.Format{}, domerr.UnknownGroup{Name: f.PartitionKeyGroup}
		}
		return domain.Format{}, err
	}
	return m.Get(ctx, f.FormatKey)
}

func (m *formatPG) Get(ctx context.Context, key domain.FormatKey) (domain.Format, error) {
	_, f, err := GetFormat(ctx, m.pool, key)
	return f, err
}

// GetFormat queries a format and its id.
func GetFormat(ctx context.Context, conn kpool.Queryer, key domain.FormatKey) (int64, domain.Format, error) {
	id, f, err := scanFormat(conn.QueryRow(
		ctx,
		selectFormat+`
		where "namespace" = $1 and "definition" = $2 and "usage" = $3
			and "file_type" = $4 and "version" = $5
		`,
		key.Namespace, key.Definition, key.Usage, key.FileType, key.Version,
	))
	if err != nil {
		if kpool.ErrNoRows(err) {
			return 0, domain.Format{}, domerr.Missing{Table: "format", Identity: key.String()}
		}
		return 0, domain.Format{}, err
	}
	return id, f, nil
}

func (m *formatPG) Find(ctx context.Context, q kformat.FindQuery) ([]domain.Format, error) {
	conds := []string{}
	args := []any{}
	for _, c := range []struct{ column, value string }{
		{`"namespace"`, q.Namespace},
		{`"definition"`, q.Definition},
		{`"usage"`, q.Usage},
		{`"file_type"`, q.FileType},
	} {
		if c.value == "" {
			continue
		}
		args = append(args, c.value)
		conds = append(conds, c.column+" = $"+strconv.Itoa(len(args)))
	}

	sql := selectFormat
	if len(conds) != 0 {
		sql += " where " + strings.Join(conds, " and ")
	}
	sql += ` order by "namespace", "definition", "usage", "file_type", "version"`

	rows, err := m.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := []domain.Format{}
	for rows.Next() {
		_, f, err := scanFormat(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, f)
	}
	return ret, rows.Err()
}
