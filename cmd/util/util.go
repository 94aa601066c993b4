package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/3esharf1k/phone-book/rpc/codec"
	"github.com/3esharf1k/phone-book/rpc/common"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50

	// EnvPrefix is the prefix of all environment variables (e.g. PHONEBOOK_ENDPOINT)
	EnvPrefix = "phonebook"

	// DefaultEndpoint is the address the server listens on and the client connects to
	DefaultEndpoint = "localhost:65432"
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// InitConfig loads .env files and makes viper read PHONEBOOK_* environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// SetupTCPFlags adds the socket option flags to a command
func SetupTCPFlags(cmd *cobra.Command) {
	key := "tcp-nodelay"
	cmd.Flags().Bool(key, true, WrapString("Whether to enable TCP_NODELAY on every connection"))

	key = "tcp-keepalive"
	cmd.Flags().Int(key, 0, WrapString("The keepalive interval (in seconds, 0 disables keepalive)"))

	key = "tcp-linger"
	cmd.Flags().Int(key, -1, WrapString("The linger time (in seconds, a negative value keeps the OS default)"))
}

// GetTCPConfig reads the socket options from viper
func GetTCPConfig() common.TCPConf {
	return common.TCPConf{
		TCPNoDelay:      viper.GetBool("tcp-nodelay"),
		TCPKeepAliveSec: viper.GetInt("tcp-keepalive"),
		TCPLingerSec:    viper.GetInt("tcp-linger"),
	}
}

// SetupClientFlags adds the connection flags of the client commands to a command
func SetupClientFlags(cmd *cobra.Command) {
	defaults := common.DefaultReconnectConf()

	key := "endpoint"
	cmd.Flags().String(key, DefaultEndpoint, WrapString("The address of the phonebook server"))

	key = "serializer"
	cmd.Flags().String(key, "json", WrapString("Payload format of the requests (json, msgpack)"))

	key = "content-encoding"
	cmd.Flags().String(key, codec.EncodingUTF8, WrapString("Text encoding of json requests (e.g. utf-8, utf-16le, windows-1251, koi8-r)"))

	key = "poll-timeout"
	cmd.Flags().Duration(key, 100*time.Millisecond, WrapString("Maximum time a single wait for socket readiness blocks"))

	key = "reconnect-initial-delay"
	cmd.Flags().Duration(key, defaults.InitialDelay, WrapString("Delay after the first failed connection attempt"))

	key = "reconnect-multiplier"
	cmd.Flags().Float64(key, defaults.Multiplier, WrapString("Factor the delay grows by after every failed connection attempt"))

	key = "reconnect-max-delay"
	cmd.Flags().Duration(key, defaults.MaxDelay, WrapString("Upper bound of a single delay between connection attempts"))

	key = "reconnect-jitter"
	cmd.Flags().Bool(key, defaults.Jitter, WrapString("Randomize every delay to 50-150% of its value"))

	key = "connect-timeout"
	cmd.Flags().Duration(key, defaults.ConnectTimeout, WrapString("Give up connecting to the server after this time"))

	key = "max-resends"
	cmd.Flags().Int(key, defaults.MaxResends, WrapString("How many times a request is sent again after the server reset the connection"))

	key = "log-level"
	cmd.Flags().String(key, "warn", WrapString("LogLevel is the level at which logs will be written to stderr (debug, info, warn, error)"))

	SetupTCPFlags(cmd)
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() (*common.ClientConfig, error) {
	var contentType string
	switch viper.GetString("serializer") {
	case "json":
		contentType = codec.ContentTypeJSON
	case "msgpack":
		contentType = codec.ContentTypeMsgpack
	default:
		return nil, fmt.Errorf("invalid serializer %s", viper.GetString("serializer"))
	}

	conf := &common.ClientConfig{
		Endpoint:        viper.GetString("endpoint"),
		ContentType:     contentType,
		ContentEncoding: viper.GetString("content-encoding"),
		PollTimeout:     viper.GetDuration("poll-timeout"),
		TCP:             GetTCPConfig(),
		Reconnect: common.ReconnectConf{
			InitialDelay:   viper.GetDuration("reconnect-initial-delay"),
			Multiplier:     viper.GetFloat64("reconnect-multiplier"),
			MaxDelay:       viper.GetDuration("reconnect-max-delay"),
			Jitter:         viper.GetBool("reconnect-jitter"),
			ConnectTimeout: viper.GetDuration("connect-timeout"),
			MaxResends:     viper.GetInt("max-resends"),
		},
	}

	return conf, nil
}
