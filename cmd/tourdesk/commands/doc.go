// Package commands defines the tourdesk CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - init    Create the .tourdesk directory with a sample catalog
//   - new     Compose a new tour package in the terminal editor
//   - edit    Open a stored tour in the editor with free step navigation
//   - list    Print the stored tours
//   - check   Validate a tour JSON file and print the payloads it would send
//   - serve   Run the reference JSON backend over the local database
//
// # Implementation
//
// The root command loads the project configuration before any subcommand
// runs. When no backend URL is configured the editor talks to an in-process
// backend over the SQLite database and the YAML catalog, so the same code
// path serves both online and offline sessions.
package commands
