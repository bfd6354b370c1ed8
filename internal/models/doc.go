// Package models defines domain entities and persistence interfaces for the ytid resolution service.
//
// The package contains two categories of types:
//
// 1. Catalog documents: the JSON shape read from and written to disk
//   - [Catalog] : top-level document holding the ordered song list
//   - [Song] : one catalog entry, the unit of work for the resolution engine
//
// Both preserve JSON keys they do not know about, so a catalog written back to disk keeps its original shape.
//
// 2. Persistent Entities: Database-backed models
//   - [Resolution] : cached query → video ID mapping reused across runs
//   - [RunRecord] : outcome counters of one finished batch run
//
// All persistent entities implement the [Model] interface.
// The [Repository] interface defines standard CRUD operations for database access.
package models
