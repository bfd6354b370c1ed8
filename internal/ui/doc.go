// Package ui implements an interactive terminal view of a batch resolution run using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [RunView] : live progress bar and the most recent per-song updates
//  2. [ResultView] : run summary and a filterable list of songs left without a video ID
//
// The [Model] starts the run in Init and receives [tasks.ProgressUpdate] values through a channel, re-arming a
// blocking read after each one. Pressing q during a run cancels its context; the engine keeps its checkpoint
// and the result view explains how to resume.
package ui
