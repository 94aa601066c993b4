package book

import (
	"fmt"
	"os"
	"strings"

	"github.com/3esharf1k/phone-book/lib/store"
	"github.com/3esharf1k/phone-book/rpc/client"
	"github.com/3esharf1k/phone-book/rpc/common"
	"github.com/spf13/cobra"
)

var (
	searchCmd = &cobra.Command{
		Use:   "search [field] [value]",
		Short: "Lists all records whose field contains the value",
		Long:  fmt.Sprintf("Lists all records whose field contains the value (case sensitive). The field is one of: %s", strings.Join(store.FieldNames(), ", ")),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, ok := store.ParseField(args[0])
			if !ok {
				return fmt.Errorf("unknown field %q, use one of: %s", args[0], strings.Join(store.FieldNames(), ", "))
			}
			return runRequest(common.SearchRequest{Field: field, Value: args[1]})
		},
	}
	addCmd = &cobra.Command{
		Use:   "add [surname] [name] [patronymic] [phone] [note]",
		Short: "Appends a record to the phonebook",
		Args:  cobra.ExactArgs(len(store.Schema)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(common.AddRequest{Record: store.Record{
				Surname:    args[0],
				Name:       args[1],
				Patronymic: args[2],
				Phone:      args[3],
				Note:       args[4],
			}})
		},
	}
	deleteCmd = &cobra.Command{
		Use:   "delete [value]",
		Short: "Deletes the first record that has a field equal to the value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(common.DeleteRequest{Value: args[0]})
		},
	}
	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Lists all records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(common.CheckRequest{})
		},
	}
	shellCmd = &cobra.Command{
		Use:   "shell",
		Short: "Asks for requests interactively until exit is entered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(*clientConfig, NewPromptIntents(os.Stdin, os.Stdout), os.Stdout, os.Stderr)
		},
	}
)

// runRequest sends req followed by exit
func runRequest(req common.Request) error {
	return runSession(*clientConfig, client.NewSliceIntents(req, common.ExitRequest{}), os.Stdout, os.Stderr)
}
