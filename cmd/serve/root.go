package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	cmdUtil "github.com/3esharf1k/phone-book/cmd/util"
	"github.com/3esharf1k/phone-book/lib/store/fstore"
	"github.com/3esharf1k/phone-book/rpc/common"
	"github.com/3esharf1k/phone-book/rpc/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the phonebook server",
		Long:    `Start the phonebook server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is PHONEBOOK_<flag> (e.g. PHONEBOOK_STORE_PATH=/var/lib/phonebook/database.txt)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	// add flags
	key := "endpoint"
	ServeCmd.Flags().String(key, cmdUtil.DefaultEndpoint, cmdUtil.WrapString("The TCP address on which the server will listen"))

	key = "store-path"
	ServeCmd.Flags().String(key, "database.txt", cmdUtil.WrapString("The file that holds the phonebook, one JSON record per line. It is created on the first add"))

	key = "poll-timeout"
	ServeCmd.Flags().Duration(key, server.DefaultPollTimeout, cmdUtil.WrapString("Maximum time a single wait for socket readiness blocks. Bounds how long a shutdown takes"))

	key = "metrics-endpoint"
	ServeCmd.Flags().String(key, "", cmdUtil.WrapString("The address on which /metrics is served in prometheus format (e.g. localhost:9100). Empty disables the endpoint"))

	key = "log-level"
	ServeCmd.Flags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	cmdUtil.SetupTCPFlags(ServeCmd)
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.StorePath = viper.GetString("store-path")
	serveCmdConfig.PollTimeout = viper.GetDuration("poll-timeout")
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.TCP = cmdUtil.GetTCPConfig()

	if serveCmdConfig.PollTimeout <= 0 {
		serveCmdConfig.PollTimeout = server.DefaultPollTimeout
	}

	return common.InitLoggers(serveCmdConfig.LogLevel)
}

// run starts the phonebook server and stops it on SIGINT or SIGTERM
func run(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serv := server.NewRPCServer(
		*serveCmdConfig,
		fstore.NewFileStore(serveCmdConfig.StorePath),
		server.NewRecordStoreServerAdapter(),
	)

	start := time.Now()
	err := serv.Serve(ctx)
	server.Logger.Infof("server stopped after %s", time.Since(start).Round(time.Second))
	return err
}
