// rpfctl - консоль оператора диспетчерской: список обращений, карточка, смена статуса и живые обновления.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shenikar/railguard/internal/client"
	"github.com/shenikar/railguard/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	jsonOutput bool

	log *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:           "rpfctl",
	Short:         "rpfctl - control room console for railway incidents",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default $HOME/.rpfctl.yaml)")
	flags.String("api-url", "http://localhost:8080", "incident API base URL (RPF_API_URL)")
	flags.String("api-key", "", "operator API key (RPF_API_KEY)")
	flags.Duration("timeout", 10*time.Second, "request timeout")
	flags.BoolVar(&jsonOutput, "json", false, "print JSON instead of text")
	flags.Bool("verbose", false, "debug logging to stderr")

	_ = viper.BindPFlag("api_url", flags.Lookup("api-url"))
	_ = viper.BindPFlag("api_key", flags.Lookup("api-key"))
	_ = viper.BindPFlag("timeout", flags.Lookup("timeout"))
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".rpfctl")
		viper.SetConfigType("yaml")
	}

	// RPF_API_URL, RPF_API_KEY, RPF_TIMEOUT
	viper.SetEnvPrefix("RPF")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	level := "info"
	if viper.GetBool("verbose") {
		level = "debug"
	}
	log = logger.New(level, logger.WithOutput(os.Stderr), logger.WithTextFormat())
	return nil
}

func newClient() *client.Client {
	return client.New(
		viper.GetString("api_url"),
		client.WithAPIKey(viper.GetString("api_key")),
		client.WithTimeout(viper.GetDuration("timeout")),
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
