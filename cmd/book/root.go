package book

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/3esharf1k/phone-book/cmd/util"
	"github.com/3esharf1k/phone-book/rpc/client"
	"github.com/3esharf1k/phone-book/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	clientConfig *common.ClientConfig

	// Commands holds the client commands, they are added to the root command
	Commands = []*cobra.Command{searchCmd, addCmd, deleteCmd, checkCmd, shellCmd}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	for _, cmd := range Commands {
		util.SetupClientFlags(cmd)
		cmd.PreRunE = setupClient
	}
}

// setupClient reads the client configuration and initializes the loggers
func setupClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	config, err := util.GetClientConfig()
	if err != nil {
		return err
	}
	clientConfig = config

	return common.InitLoggers(viper.GetString("log-level"))
}

// runSession sends the requests of intents and prints every result to out.
// Error responses are printed to errOut. The first error response is returned
// once the session has ended.
func runSession(config common.ClientConfig, intents client.IntentProvider, out, errOut io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var failed error
	sink := func(req common.Request, resp common.Response) {
		if resp.Error != "" {
			fmt.Fprintf(errOut, "Error: %s\n", resp.Error)
			if failed == nil {
				failed = fmt.Errorf("%s failed: %s", req.Action(), resp.Error)
			}
			return
		}
		fmt.Fprintln(out, resp.Result)
	}

	s, err := client.NewSession(config, intents, sink)
	if err != nil {
		return err
	}
	if err := s.Run(ctx); err != nil {
		return err
	}
	return failed
}
