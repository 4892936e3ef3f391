// Package cli provides the interactive rxkeeper command-line client.
//
// It wires configuration, storage, the task and compliance stores, the
// reminder scheduler and the report pipeline, then runs a REPL until the
// user exits. On start it onboards the user if no profile exists and
// rebuilds reminders from the stored tasks.
//
// Commands:
//   - onboard, profile
//   - add, list, today, show <id>, edit <id>, flag <id>, delete <id>
//   - done <id>, miss <id>
//   - stats, history [days], report
//   - help, exit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
