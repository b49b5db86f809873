// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for setlist conversion:
//  1. [SongListView] : Preview the fetched setlist before converting
//  2. [ConfirmView] : Confirm the conversion
//  3. [ConvertView] : Monitor real-time progress updates
//  4. [ResultView] : Display per-song match outcomes and the playlist URL
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the ConvertEngine, providing non-blocking status reporting.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
