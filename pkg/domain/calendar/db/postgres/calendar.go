package postgres

import (
	"context"

	kpool "github.com/opst/dmcatalog/pkg/conn/db/postgres/pool"
	"github.com/opst/dmcatalog/pkg/domain"
	kcalendar "github.com/opst/dmcatalog/pkg/domain/calendar/db"
	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
	kpgerr "github.com/opst/dmcatalog/pkg/domain/errors/dberrors/postgres"
)

type calendarPG struct {
	pool kpool.Pool
}

var _ kcalendar.CalendarInterface = &calendarPG{}

func New(pool kpool.Pool) *calendarPG {
	return &calendarPG{pool: pool}
}

// lockGroup takes a row lock of the group.
func lockGroup(ctx context.Context, tx kpool.Tx, name string) error {
	var found string
	if err := tx.QueryRow(
		ctx,
		`select "name" from "partition_key_group" where "name" = $1 for update`,
		name,
	).Scan(&found); err != nil {
		if kpool.ErrNoRows(err) {
			return domerr.UnknownGroup{Name: name}
		}
		return err
	}
	return nil
}

func getGroup(ctx context.Context, conn kpool.Queryer, name string) (domain.PartitionKeyGroup, error) {
	var found string
	if err := conn.QueryRow(
		ctx, `select "name" from "partition_key_group" where "name" = $1`, name,
	).Scan(&found); err != nil {
		if kpool.ErrNoRows(err) {
			return domain.PartitionKeyGroup{}, domerr.UnknownGroup{Name: name}
		}
		return domain.PartitionKeyGroup{}, err
	}

	values, err := queryValues(
		ctx, conn,
		`select "value" from "expected_partition_value" where "group_name" = $1 order by "value"`,
		name,
	)
	if err != nil {
		return domain.PartitionKeyGroup{}, err
	}
	return domain.PartitionKeyGroup{Name: name, ExpectedValues: values}, nil
}

func queryValues(ctx context.Context, conn kpool.Queryer, sql string, args ...any) ([]string, error) {
	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func insertValues(ctx context.Context, tx kpool.Tx, name string, values []string) error {
	if len(values) == 0 {
		return nil
	}
	_, err := tx.Exec(
		ctx,
		`
		insert into "expected_partition_value" ("group_name", "value")
		select $1, v from unnest($2::varchar[]) as v
		`,
		name, values,
	)
	if kpgerr.IsUniqueViolation(err) {
		return domerr.Conflict{Table: "expected_partition_value", Identity: name}
	}
	return err
}

func (c *calendarPG) CreateGroup(ctx context.Context, name string, values []string) (domain.PartitionKeyGroup, error) {
	return kpool.InTx(ctx, c.pool, func(tx kpool.Tx) (domain.PartitionKeyGroup, error) {
		ctag, err := tx.Exec(
			ctx,
			`insert into "partition_key_group" ("name") values ($1) on conflict do nothing`,
			name,
		)
		if err != nil {
			return domain.PartitionKeyGroup{}, err
		}
		if ctag.RowsAffected() == 0 {
			return domain.PartitionKeyGroup{}, domerr.Conflict{Table: "partition_key_group", Identity: name}
		}
		if err := insertValues(ctx, tx, name, values); err != nil {
			return domain.PartitionKeyGroup{}, err
		}
		return getGroup(ctx, tx, name)
	})
}

func (c *calendarPG) GetGroup(ctx context.Context, name string) (domain.PartitionKeyGroup, error) {
	return getGroup(ctx, c.pool, name)
}

func (c *calendarPG) DeleteGroup(ctx context.Context, name string) error {
	_, err := kpool.InTx(ctx, c.pool, func(tx kpool.Tx) (struct{}, error) {
		if err := lockGroup(ctx, tx, name); err != nil {
			return struct{}{}, err
		}
		if _, err := tx.Exec(
			ctx, `delete from "partition_key_group" where "name" = $1`, name,
		); err != nil {
			if kpgerr.IsForeignKeyViolation(err) {
				return struct{}{}, domerr.Conflict{Table: "format", Identity: "partition key group " + name}
			}
			return struct{}{}, err
		}
		return struct{}{}, nil
	})
	return err
}

func (c *calendarPG) AddExpectedValues(ctx context.Context, name string, values []string) (domain.PartitionKeyGroup, error) {
	return kpool.InTx(ctx, c.pool, func(tx kpool.Tx) (domain.PartitionKeyGroup, error) {
		if err := lockGroup(ctx, tx, name); err != nil {
			return domain.PartitionKeyGroup{}, err
		}
		if err := insertValues(ctx, tx, name, values); err != nil {
			return domain.PartitionKeyGroup{}, err
		}
		return getGroup(ctx, tx, name)
	})
}

func (c *calendarPG) RemoveExpectedValues(ctx context.Context, name string, values []string) (domain.PartitionKeyGroup, error) {
	return kpool.InTx(ctx, c.pool, func(tx kpool.Tx) (domain.PartitionKeyGroup, error) {
		if err := lockGroup(ctx, tx, name); err != nil {
			return domain.PartitionKeyGroup{}, err
		}
		ctag, err := tx.Exec(
			ctx,
			`
			delete from "expected_partition_value"
			where "group_name" = $1 and "value" = any($2::varchar[])
			`,
			name, values,
		)
		if err != nil {
			return domain.PartitionKeyGroup{}, err
		}
		if int(ctag.RowsAffected()) != len(values) {
			return domain.PartitionKeyGroup{}, domerr.Missing{Table: "expected_partition_value", Identity: name}
		}
		return getGroup(ctx, tx, name)
	})
}

func (c *calendarPG) ExpectedValuesInRange(ctx context.Context, name string, r domain.PartitionRange) ([]string, error) {
	return kpool.InTx(ctx, c.pool, func(tx kpool.Tx) ([]string, error) {
		var found string
		if err := tx.QueryRow(
			ctx, `select "name" from "partition_key_group" where "name" = $1`, name,
		).Scan(&found); err != nil {
			if kpool.ErrNoRows(err) {
				return nil, domerr.UnknownGroup{Name: name}
			}
			return nil, err
		}
		if r.Empty() {
			return []string{}, nil
		}
		return queryValues(
			ctx, tx,
			`
			select "value" from "expected_partition_value"
			where "group_name" = $1 and $2 <= "value" and "value" <= $3
			order by "value"
			`,
			name, r.Start, r.End,
		)
	})
}
