// Package cmd implements the command-line interface of the phonebook. It
// provides the server command and the client commands that talk to it.
//
// The package is organized into several subpackages:
//
//   - serve: Command for starting and configuring the phonebook server
//   - book: Client commands (search, add, delete, check) and the interactive shell
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Every flag can also be set through an environment variable PHONEBOOK_<flag>
// or a .env / .env.local file in the working directory.
//
// See phonebook -help for a list of all commands.
package cmd
