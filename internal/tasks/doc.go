// Package tasks resolves a video ID for every song in a catalog with real-time progress reporting.
//
// # Run lifecycle
//
// [ResolveEngine.Run] moves through [StateInit] → [StateResolving] → [StateFinalizing] → [StateDone]:
//
//  1. Init: load and validate the catalog, open a [Pool] of sessions
//  2. Resolving: each slot works through tasks i where i mod P equals its index
//     - Pre-resolved songs are skipped without calling the resolver
//     - [RetryController] makes up to MaxRetries attempts with a [Jitter] delay after each one
//     - The coordinator applies results, updates [RunStats] and writes checkpoints
//  3. Finalizing: close the pool, write the output file, remove the checkpoint
//
// Fatal errors move the run to [StateFailed]. Cancelling the context keeps the last checkpoint.
//
// # Checkpoints
//
// The coordinator tracks how many leading tasks have settled. Each time that count crosses a multiple
// of the checkpoint interval the whole catalog is written to the checkpoint path, so checkpoint N holds
// every task below index N in its terminal state.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Sessions
//
// A [Session] is opened per slot by a [SessionFactory] and receives a fresh [Identity] before every attempt.
// [CachedFactory] decorates sessions with a [ResolutionCache]; cache errors are logged and ignored.
package tasks
