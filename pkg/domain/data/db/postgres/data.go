package postgres

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	kpool "github.com/opst/dmcatalog/pkg/conn/db/postgres/pool"
	"github.com/opst/dmcatalog/pkg/domain"
	kdata "github.com/opst/dmcatalog/pkg/domain/data/db"
	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
	kpgerr "github.com/opst/dmcatalog/pkg/domain/errors/dberrors/postgres"
	kpgformat "github.com/opst/dmcatalog/pkg/domain/format/db/postgres"
)

type dataPG struct { // implements kdata.DataInterface

	// connection pool for PostgreSQL
	pool kpool.Pool
}

var _ kdata.DataInterface = &dataPG{}

func New(pool kpool.Pool) *dataPG {
	return &dataPG{pool: pool}
}

// key of the advisory lock serializing changes of lineage.
const lineageLockKey = "data_parent"

// lockFamily takes an advisory lock of the family until the end of tx.
func lockFamily(ctx context.Context, tx kpool.Tx, family domain.Family) error {
	_, err := tx.Exec(
		ctx, `select pg_advisory_xact_lock(hashtextextended($1, 0))`, family.LockKey(),
	)
	return err
}

func lockLineage(ctx context.Context, tx kpool.Tx) error {
	_, err := tx.Exec(
		ctx, `select pg_advisory_xact_lock(hashtextextended($1, 0))`, lineageLockKey,
	)
	return err
}

// where-clause selecting a family from "data" as "d" joined with "format" as "f".
//
// It takes 10 parameters from $1. See familyArgs.
const familyCond = `
	"f"."namespace" = $1 and "f"."definition" = $2 and "f"."usage" = $3
	and "f"."file_type" = $4 and "f"."version" = $5
	and "d"."partition_value" = $6
	and "d"."sub_partition_value_1" = $7 and "d"."sub_partition_value_2" = $8
	and "d"."sub_partition_value_3" = $9 and "d"."sub_partition_value_4" = $10
`

func familyArgs(f domain.Family) []any {
	return []any{
		f.Format.Namespace, f.Format.Definition, f.Format.Usage, f.Format.FileType, f.Format.Version,
		f.PartitionValue,
		f.SubPartitionValues[0], f.SubPartitionValues[1], f.SubPartitionValues[2], f.SubPartitionValues[3],
	}
}

// columns of DataKey. See keyDest.
const keyColumns = `
	"f"."namespace", "f"."definition", "f"."usage", "f"."file_type", "f"."version",
	"d"."partition_value",
	"d"."sub_partition_value_1", "d"."sub_partition_value_2",
	"d"."sub_partition_value_3", "d"."sub_partition_value_4",
	"d"."version"
`

func keyDest(k *domain.DataKey) []any {
	return []any{
		&k.Format.Namespace, &k.Format.Definition, &k.Format.Usage, &k.Format.FileType, &k.Format.Version,
		&k.PartitionValue,
		&k.SubPartitionValues[0], &k.SubPartitionValues[1], &k.SubPartitionValues[2], &k.SubPartitionValues[3],
		&k.Version,
	}
}

const orderByKey = `
order by
	"d"."sub_partition_value_1", "d"."sub_partition_value_2",
	"d"."sub_partition_value_3", "d"."sub_partition_value_4",
	"d"."version"
`

func missing(key domain.DataKey) error {
	return domerr.Missing{Table: "data", Identity: key.String()}
}

// dataId resolves a DataKey to its surrogate id.
func dataId(ctx context.Context, conn kpool.Queryer, key domain.DataKey) (string, error) {
	var id string
	args := append(familyArgs(key.Family), key.Version)
	if err := conn.QueryRow(
		ctx,
		`
		select "d"."data_id"
		from "data" as "d" inner join "format" as "f" using ("format_id")
		where `+familyCond+` and "d"."version" = $11
		`,
		args...,
	).Scan(&id); err != nil {
		if kpool.ErrNoRows(err) {
			return "", missing(key)
		}
		return "", err
	}
	return id, nil
}

func dataIds(ctx context.Context, conn kpool.Queryer, keys []domain.DataKey) ([]string, error) {
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		id, err := dataId(ctx, conn, k)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// queryData queries Data with their details.
//
// where is appended to the where-clause, and can refer "d" (data) and "f" (format).
func queryData(ctx context.Context, conn kpool.Queryer, where string, args ...any) ([]domain.Data, error) {
	rows, err := conn.Query(
		ctx,
		`
		select
			"d"."data_id", `+keyColumns+`,
			"d"."latest", "d"."status"::text, "d"."created_at"
		from "data" as "d" inner join "format" as "f" using ("format_id")
		where `+where+orderByKey,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := []domain.Data{}
	for rows.Next() {
		d := domain.Data{}
		var status string
		dest := append([]any{&d.Id}, keyDest(&d.DataKey)...)
		dest = append(dest, &d.Latest, &status, &d.CreatedAt)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		d.Status = domain.Status(status)
		ret = append(ret, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := fillDetails(ctx, conn, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

func fillDetails(ctx context.Context, conn kpool.Queryer, data []domain.Data) error {
	if len(data) == 0 {
		return nil
	}

	index := map[string]*domain.Data{}
	ids := make([]string, 0, len(data))
	for i := range data {
		d := &data[i]
		d.History = []domain.StatusHistory{}
		d.Attributes = []domain.Attribute{}
		d.StorageUnits = []domain.StorageUnit{}
		d.Parents = []domain.DataKey{}
		d.Children = []domain.DataKey{}
		index[d.Id] = d
		ids = append(ids, d.Id)
	}

	if err := scanEach(
		ctx, conn,
		`
		select "data_id", "status"::text, "created_at"
		from "data_status_history"
		where "data_id" = any($1::varchar[])
		order by "history_id"
		`,
		[]any{ids},
		func(scan func(...any) error) error {
			var id, status string
			var createdAt time.Time
			if err := scan(&id, &status, &createdAt); err != nil {
				return err
			}
			d := index[id]
			d.History = append(d.History, domain.StatusHistory{Status: domain.Status(status), CreatedAt: createdAt})
			return nil
		},
	); err != nil {
		return err
	}

	if err := scanEach(
		ctx, conn,
		`
		select "data_id", "name", "value"
		from "data_attribute"
		where "data_id" = any($1::varchar[])
		order by "name_key"
		`,
		[]any{ids},
		func(scan func(...any) error) error {
			var id string
			var a domain.Attribute
			if err := scan(&id, &a.Name, &a.Value); err != nil {
				return err
			}
			d := index[id]
			d.Attributes = append(d.Attributes, a)
			return nil
		},
	); err != nil {
		return err
	}

	if err := scanEach(
		ctx, conn,
		`
		select "data_id", "storage_name", coalesce("directory_path", '')
		from "storage_unit"
		where "data_id" = any($1::varchar[])
		order by "storage_key"
		`,
		[]any{ids},
		func(scan func(...any) error) error {
			var id string
			var su domain.StorageUnit
			if err := scan(&id, &su.StorageName, &su.DirectoryPath); err != nil {
				return err
			}
			d := index[id]
			d.StorageUnits = append(d.StorageUnits, su)
			return nil
		},
	); err != nil {
		return err
	}

	for _, edge := range []struct {
		from, to string
		put      func(*domain.Data, domain.DataKey)
	}{
		{
			from: "data_id", to: "parent_data_id",
			put: func(d *domain.Data, k domain.DataKey) { d.Parents = append(d.Parents, k) },
		},
		{
			from: "parent_data_id", to: "data_id",
			put: func(d *domain.Data, k domain.DataKey) { d.Children = append(d.Children, k) },
		},
	} {
		if err := scanEach(
			ctx, conn,
			`
			select "e"."`+edge.from+`", `+keyColumns+`
			from "data_parent" as "e"
				inner join "data" as "d" on "d"."data_id" = "e"."`+edge.to+`"
				inner join "format" as "f" on "f"."format_id" = "d"."format_id"
			where "e"."`+edge.from+`" = any($1::varchar[])
			`+orderByKey,
			[]any{ids},
			func(scan func(...any) error) error {
				var id string
				var k domain.DataKey
				if err := scan(append([]any{&id}, keyDest(&k)...)...); err != nil {
					return err
				}
				edge.put(index[id], k)
				return nil
			},
		); err != nil {
			return err
		}
	}

	return nil
}

func scanEach(ctx context.Context, conn kpool.Queryer, sql string, args []any, f func(scan func(...any) error) error) error {
	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := f(rows.Scan); err != nil {
			return err
		}
	}
	return rows.Err()
}

func getById(ctx context.Context, conn kpool.Queryer, id string) (domain.Data, error) {
	data, err := queryData(ctx, conn, `"d"."data_id" = $1`, id)
	if err != nil {
		return domain.Data{}, err
	}
	if len(data) == 0 {
		return domain.Data{}, domerr.Missing{Table: "data", Identity: id}
	}
	return data[0], nil
}

// elect sets the latest flag in the family of the data.
func elect(ctx context.Context, tx kpool.Tx, id string) error {
	_, err := tx.Exec(
		ctx,
		`
		with "family" as (
			select
				"format_id", "partition_value",
				"sub_partition_value_1", "sub_partition_value_2",
				"sub_partition_value_3", "sub_partition_value_4"
			from "data" where "data_id" = $1
		),
		"members" as (
			select "d"."data_id", "d"."version", "d"."status"
			from "data" as "d" inner join "family" using (
				"format_id", "partition_value",
				"sub_partition_value_1", "sub_partition_value_2",
				"sub_partition_value_3", "sub_partition_value_4"
			)
		)
		update "data" set "latest" = true
		where "data_id" = (
			select "data_id" from "members"
			where "status" <> 'DELETED'
			order by "version" desc
			limit 1
		)
		`,
		id,
	)
	return err
}

func (d *dataPG) Register(ctx context.Context, reg domain.DataRegistration) (domain.Data, error) {
	return kpool.InTx(ctx, d.pool, func(tx kpool.Tx) (domain.Data, error) {
		formatId, _, err := kpgformat.GetFormat(ctx, tx, reg.Family.Format)
		if err != nil {
			return domain.Data{}, err
		}
		if err := lockFamily(ctx, tx, reg.Family); err != nil {
			return domain.Data{}, err
		}
		parentIds, err := dataIds(ctx, tx, reg.Parents)
		if err != nil {
			return domain.Data{}, err
		}

		members := []domain.FamilyMember{}
		if err := scanEach(
			ctx, tx,
			`
			select "d"."version", "d"."latest", "d"."status"::text
			from "data" as "d" inner join "format" as "f" using ("format_id")
			where `+familyCond,
			familyArgs(reg.Family),
			func(scan func(...any) error) error {
				var m domain.FamilyMember
				var status string
				if err := scan(&m.Version, &m.Latest, &status); err != nil {
					return err
				}
				m.Status = domain.Status(status)
				members = append(members, m)
				return nil
			},
		); err != nil {
			return domain.Data{}, err
		}
		res := domain.ResolveVersion(members)

		if res.Demote != nil {
			args := append(familyArgs(reg.Family), *res.Demote)
			if _, err := tx.Exec(
				ctx,
				`
				update "data" as "d" set "latest" = false
				from "format" as "f"
				where "d"."format_id" = "f"."format_id" and `+familyCond+` and "d"."version" = $11
				`,
				args...,
			); err != nil {
				return domain.Data{}, err
			}
		}

		id := uuid.NewString()
		status := reg.InitialStatus()
		spv := reg.Family.SubPartitionValues
		if _, err := tx.Exec(
			ctx,
			`
			insert into "data" (
				"data_id", "format_id", "partition_value",
				"sub_partition_value_1", "sub_partition_value_2",
				"sub_partition_value_3", "sub_partition_value_4",
				"version", "latest", "status"
			)
			values ($1, $2, $3, $4, $5, $6, $7, $8, true, $9::data_status)
			`,
			id, formatId, reg.Family.PartitionValue,
			spv[0], spv[1], spv[2], spv[3],
			res.Version, string(status),
		); err != nil {
			if kpgerr.IsUniqueViolation(err) {
				return domain.Data{}, domerr.DuplicateVersion{Family: reg.Family.String(), Version: res.Version}
			}
			return domain.Data{}, err
		}

		if err := insertHistory(ctx, tx, id, status); err != nil {
			return domain.Data{}, err
		}
		if err := putAttributes(ctx, tx, id, reg.Attributes); err != nil {
			return domain.Data{}, err
		}
		for _, su := range reg.StorageUnits {
			if err := insertStorageUnit(ctx, tx, id, su); err != nil {
				return domain.Data{}, err
			}
		}
		if len(parentIds) != 0 {
			if _, err := tx.Exec(
				ctx,
				`
				insert into "data_parent" ("data_id", "parent_data_id")
				select $1, "p" from unnest($2::varchar[]) as "p"
				on conflict do nothing
				`,
				id, parentIds,
			); err != nil {
				if kpgerr.IsForeignKeyViolation(err) {
					return domain.Data{}, domerr.Missing{Table: "data", Identity: "parents of " + id}
				}
				return domain.Data{}, err
			}
		}

		return getById(ctx, tx, id)
	})
}

func insertHistory(ctx context.Context, tx kpool.Tx, id string, status domain.Status) error {
	_, err := tx.Exec(
		ctx,
		`insert into "data_status_history" ("data_id", "status") values ($1, $2::data_status)`,
		id, string(status),
	)
	return err
}

func putAttributes(ctx context.Context, tx kpool.Tx, id string, attrs []domain.Attribute) error {
	if len(attrs) == 0 {
		return nil
	}
	names := make([]string, 0, len(attrs))
	values := make([]string, 0, len(attrs))
	for _, a := range attrs {
		names = append(names, a.Name)
		values = append(values, a.Value)
	}
	_, err := tx.Exec(
		ctx,
		`
		insert into "data_attribute" ("data_id", "name", "name_key", "value")
		select $1, "n", upper("n"), "v" from unnest($2::varchar[], $3::varchar[]) as "t"("n", "v")
		on conflict ("data_id", "name_key") do update
		set "name" = excluded."name", "value" = excluded."value"
		`,
		id, names, values,
	)
	return err
}

func insertStorageUnit(ctx context.Context, tx kpool.Tx, id string, su domain.StorageUnit) error {
	_, err := tx.Exec(
		ctx,
		`
		insert into "storage_unit" ("data_id", "storage_name", "storage_key", "directory_path")
		values ($1, $2, upper($2), nullif($3, ''))
		`,
		id, su.StorageName, su.DirectoryPath,
	)
	return err
}

func (d *dataPG) Get(ctx context.Context, q domain.DataQuery) (domain.Data, error) {
	where := familyCond
	args := familyArgs(q.Family)
	if q.Version == nil {
		where += ` and "d"."latest"`
	} else {
		where += ` and "d"."version" = $11`
		args = append(args, *q.Version)
	}

	data, err := queryData(ctx, d.pool, where, args...)
	if err != nil {
		return domain.Data{}, err
	}
	if len(data) == 0 {
		return domain.Data{}, domerr.Missing{Table: "data", Identity: q.String()}
	}
	return data[0], nil
}

// partitionCond builds where-clause selecting Data by format, partition values and sub-partition prefix.
func partitionCond(format domain.FormatKey, pvCond string, pv any, prefix domain.SubPartitionValues) (string, []any) {
	args := []any{format.Namespace, format.Definition, format.Usage, format.FileType, format.Version, pv}
	conds := []string{
		`"f"."namespace" = $1`, `"f"."definition" = $2`, `"f"."usage" = $3`,
		`"f"."file_type" = $4`, `"f"."version" = $5`,
		pvCond,
	}
	for i, v := range prefix.Values() {
		args = append(args, v)
		conds = append(conds, `"d"."sub_partition_value_`+strconv.Itoa(i+1)+`" = $`+strconv.Itoa(len(args)))
	}
	return strings.Join(conds, " and "), args
}

func (d *dataPG) Versions(ctx context.Context, q kdata.VersionsQuery) ([]domain.Data, error) {
	where, args := partitionCond(
		q.Format, `"d"."partition_value" = $6`, q.PartitionValue, q.SubPartitionValues,
	)
	if q.Version != nil {
		args = append(args, *q.Version)
		where += ` and "d"."version" = $` + strconv.Itoa(len(args))
	}
	return queryData(ctx, d.pool, where, args...)
}

func (d *dataPG) NextVersion(ctx context.Context, family domain.Family) (int, error) {
	var next int
	if err := d.pool.QueryRow(
		ctx,
		`
		select coalesce(max("d"."version") + 1, 0)
		from "data" as "d" inner join "format" as "f" using ("format_id")
		where `+familyCond,
		familyArgs(family)...,
	).Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

func (d *dataPG) SetStatus(ctx context.Context, key domain.DataKey, to domain.Status) (domain.Data, error) {
	return kpool.InTx(ctx, d.pool, func(tx kpool.Tx) (domain.Data, error) {
		if err := lockFamily(ctx, tx, key.Family); err != nil {
			return domain.Data{}, err
		}
		id, err := dataId(ctx, tx, key)
		if err != nil {
			return domain.Data{}, err
		}

		var from string
		var latest bool
		if err := tx.QueryRow(
			ctx,
			`select "status"::text, "latest" from "data" where "data_id" = $1 for update`,
			id,
		).Scan(&from, &latest); err != nil {
			return domain.Data{}, err
		}
		status, err := domain.Transit(key.String(), domain.Status(from), to)
		if err != nil {
			return domain.Data{}, err
		}

		if _, err := tx.Exec(
			ctx,
			`
			update "data"
			set "status" = $2::data_status, "latest" = "latest" and $2::data_status <> 'DELETED'
			where "data_id" = $1
			`,
			id, string(status),
		); err != nil {
			return domain.Data{}, err
		}
		if err := insertHistory(ctx, tx, id, status); err != nil {
			return domain.Data{}, err
		}
		if status == domain.Deleted && latest {
			if err := elect(ctx, tx, id); err != nil {
				return domain.Data{}, err
			}
		}
		return getById(ctx, tx, id)
	})
}

func (d *dataPG) AddParents(ctx context.Context, child domain.DataKey, parents []domain.DataKey) (domain.Data, error) {
	return kpool.InTx(ctx, d.pool, func(tx kpool.Tx) (domain.Data, error) {
		if err := lockLineage(ctx, tx); err != nil {
			return domain.Data{}, err
		}
		childId, err := dataId(ctx, tx, child)
		if err != nil {
			return domain.Data{}, err
		}
		parentIds, err := dataIds(ctx, tx, parents)
		if err != nil {
			return domain.Data{}, err
		}

		for i, parentId := range parentIds {
			if parentId == childId {
				return domain.Data{}, domerr.CyclicLineage{Child: child.String(), Parent: parents[i].String()}
			}
			var cyclic bool
			if err := tx.QueryRow(
				ctx,
				`
				with recursive "ancestor"("data_id") as (
					select "parent_data_id" from "data_parent" where "data_id" = $1
					union
					select "p"."parent_data_id"
					from "data_parent" as "p" inner join "ancestor" as "a" on "p"."data_id" = "a"."data_id"
				)
				select exists (select 1 from "ancestor" where "data_id" = $2)
				`,
				parentId, childId,
			).Scan(&cyclic); err != nil {
				return domain.Data{}, err
			}
			if cyclic {
				return domain.Data{}, domerr.CyclicLineage{Child: child.String(), Parent: parents[i].String()}
			}
		}

		if len(parentIds) != 0 {
			if _, err := tx.Exec(
				ctx,
				`
				insert into "data_parent" ("data_id", "parent_data_id")
				select $1, "p" from unnest($2::varchar[]) as "p"
				on conflict do nothing
				`,
				childId, parentIds,
			); err != nil {
				return domain.Data{}, err
			}
		}
		return getById(ctx, tx, childId)
	})
}

func (d *dataPG) PutAttributes(ctx context.Context, key domain.DataKey, attrs []domain.Attribute) (domain.Data, error) {
	return kpool.InTx(ctx, d.pool, func(tx kpool.Tx) (domain.Data, error) {
		id, err := dataId(ctx, tx, key)
		if err != nil {
			return domain.Data{}, err
		}
		if err := putAttributes(ctx, tx, id, attrs); err != nil {
			return domain.Data{}, err
		}
		return getById(ctx, tx, id)
	})
}

func (d *dataPG) RemoveAttributes(ctx context.Context, key domain.DataKey, names []string) (domain.Data, error) {
	return kpool.InTx(ctx, d.pool, func(tx kpool.Tx) (domain.Data, error) {
		id, err := dataId(ctx, tx, key)
		if err != nil {
			return domain.Data{}, err
		}
		if len(names) != 0 {
			if _, err := tx.Exec(
				ctx,
				`
				delete from "data_attribute"
				where "data_id" = $1 and "name_key" in (select upper("n") from unnest($2::varchar[]) as "n")
				`,
				id, names,
			); err != nil {
				return domain.Data{}, err
			}
		}
		return getById(ctx, tx, id)
	})
}

func (d *dataPG) AddStorageUnit(ctx context.Context, key domain.DataKey, su domain.StorageUnit) (domain.Data, error) {
	return kpool.InTx(ctx, d.pool, func(tx kpool.Tx) (domain.Data, error) {
		id, err := dataId(ctx, tx, key)
		if err != nil {
			return domain.Data{}, err
		}
		if err := insertStorageUnit(ctx, tx, id, su); err != nil {
			if kpgerr.IsUniqueViolation(err) {
				return domain.Data{}, domerr.Conflict{
					Table: "storage_unit", Identity: key.String() + " in " + su.StorageName,
				}
			}
			return domain.Data{}, err
		}
		return getById(ctx, tx, id)
	})
}

func (d *dataPG) Delete(ctx context.Context, key domain.DataKey) (domain.Data, error) {
	return kpool.InTx(ctx, d.pool, func(tx kpool.Tx) (domain.Data, error) {
		if err := lockFamily(ctx, tx, key.Family); err != nil {
			return domain.Data{}, err
		}
		if err := lockLineage(ctx, tx); err != nil {
			return domain.Data{}, err
		}
		id, err := dataId(ctx, tx, key)
		if err != nil {
			return domain.Data{}, err
		}
		before, err := getById(ctx, tx, id)
		if err != nil {
			return domain.Data{}, err
		}

		// a sibling is needed to find the family after the deletion.
		var sibling string
		hasSibling := true
		if err := tx.QueryRow(
			ctx,
			`
			select "s"."data_id"
			from "data" as "d" inner join "data" as "s" using (
				"format_id", "partition_value",
				"sub_partition_value_1", "sub_partition_value_2",
				"sub_partition_value_3", "sub_partition_value_4"
			)
			where "d"."data_id" = $1 and "s"."data_id" <> $1
			limit 1
			`,
			id,
		).Scan(&sibling); err != nil {
			if !kpool.ErrNoRows(err) {
				return domain.Data{}, err
			}
			hasSibling = false
		}

		if _, err := tx.Exec(ctx, `delete from "data" where "data_id" = $1`, id); err != nil {
			return domain.Data{}, err
		}
		if before.Latest && hasSibling {
			if err := elect(ctx, tx, sibling); err != nil {
				return domain.Data{}, err
			}
		}
		return before, nil
	})
}

func (d *dataPG) Lookup(ctx context.Context, q domain.LookupQuery) ([]domain.Candidate, error) {
	if len(q.PartitionValues) == 0 {
		return []domain.Candidate{}, nil
	}
	where, args := partitionCond(
		q.Format, `"d"."partition_value" = any($6::varchar[])`, q.PartitionValues, q.SubPartitionValues,
	)
	if q.Version == nil {
		where += ` and "d"."latest"`
	} else {
		args = append(args, *q.Version)
		where += ` and "d"."version" = $` + strconv.Itoa(len(args))
	}

	ret := []domain.Candidate{}
	if err := scanEach(
		ctx, d.pool,
		`
		select `+keyColumns+`, "d"."latest", "d"."status"::text
		from "data" as "d" inner join "format" as "f" using ("format_id")
		where `+where+orderByKey,
		args,
		func(scan func(...any) error) error {
			var c domain.Candidate
			var status string
			dest := append(keyDest(&c.DataKey), &c.Latest, &status)
			if err := scan(dest...); err != nil {
				return err
			}
			c.Status = domain.Status(status)
			ret = append(ret, c)
			return nil
		},
	); err != nil {
		return nil, err
	}
	return ret, nil
}
