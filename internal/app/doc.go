// Package app provides the orchestration layer for pawdesk.
//
// # Overview
//
// This package wires together configuration, the API client, the state
// stores, the sync coordinator, and the UI. It is the composition root
// where all dependencies are initialized and connected.
//
// # Startup Sequence
//
//  1. Load configuration from ~/.config/pawdesk/config.toml
//  2. Open the JSON log file (the terminal belongs to the TUI)
//  3. Load user preferences (theme)
//  4. Initialize the HTTP client for the clinic server
//  5. Build the stores and the sync coordinator, sharing a view tracker
//     so the coordinator knows which view is on screen
//  6. Run the initial fetch-all; a partial load still starts the UI
//  7. Launch the coordinator goroutine (announce, long-poll, dispatch)
//  8. Start the TUI and block until the user exits or the context cancels
//
// On shutdown the server session is logged out best-effort.
package app
