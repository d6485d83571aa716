// Package cli provides the interactive labscribe terminal client.
//
// It runs a REPL on top of the session manager. Signing in and signing up
// are open to anyone. Every other page is opened through the access gate,
// which shows a loading line while the session is being restored and sends
// signed-out users to the entry flow.
//
// Pages:
//   - dashboard: list, search and delete lab records
//   - new: the six step create wizard, optionally prefilled from a template
//   - templates: the built-in subject templates
//   - analytics: totals and the per-subject breakdown
//   - profile: view and edit the user profile
//   - reset: wipe local data and sign out
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
