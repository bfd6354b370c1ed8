// Package repositories implements SQLite persistence for the resolution cache and run history.
//
// Key Implementations:
//   - [ResolutionRepository] : query → video ID mappings keyed by normalized query, with hit counts
//   - [RunRepository] : one row per batch run with its configuration and outcome counters
//   - [ResolutionCacheAdapter] : adapts ResolutionRepository to the engine's resolution cache
//
// Missing rows wrap [shared.ErrRecordNotFound]. Schemas live in the shared migrations.
package repositories
