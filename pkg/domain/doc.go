package domain

// domain package contains the Domain Models and the pure algorithms of the catalog.
//
// `domain/dmcatalog` package exposes root object for the catalog.
// Entrypoints of applications should instantiate it and use it to reach the stores.
//
// `domain/ENTITY.go` has high-level entities (Domain Model types) and functions.
// For example, `domain/data.go` contains the `Data` entity.
//
// `domain/ENTITY/db` directory contains the interface to store the entity,
// and its implementations: `postgres` (for production), `inmemory` (for a single process)
// and `mock` (for tests of callers).
//
// # Entities
//
// - `data`: one partitioned, versioned registration of a dataset for a Format ("business object data").
// Data is identified by its coordinate (Format, partition value, up to 4 sub-partition values) and version.
// In each coordinate family, only one Data is marked as "latest".
// Data has a status (see `status.go`) and the history of it, attributes, storage units
// and lineage (parents/children).
//
// - `format`: schema/usage/file-type/version combination which groups Data.
// Format declares its partition key, sub-partition keys, and optionally a partition key group.
//
// - `calendar`: partition key groups and their expected partition values.
// Availability checks over a range of partition values are reconciled with them.
//
// And algorithms:
//
// - `version.go`: version resolution for a coordinate family.
//
// - `lineage.go`: cycle detection in lineage graph.
//
// - `availability.go`: per-partition availability verdict.
//
// - `keyprefix.go`: deterministic storage location of Data.
//
