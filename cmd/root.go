package cmd

import (
	"fmt"
	"os"

	"github.com/3esharf1k/phone-book/cmd/book"
	"github.com/3esharf1k/phone-book/cmd/serve"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "phonebook",
		Short: "phonebook server and client",
		Long: fmt.Sprintf(`phonebook (v%s)

A phonebook served over TCP. The server keeps the records in a single
file and answers search, add, delete and check requests from any number
of clients over one event loop.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of phonebook",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("phonebook v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(book.Commands...)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
