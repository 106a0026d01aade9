// Command cookbook is the terminal client for the recipe API.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cookbook/internal/apiclient"
	"cookbook/internal/config"
	"cookbook/internal/observability"
	"cookbook/internal/session"
	"cookbook/internal/ui"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app is what every command runs against once the root pre-run has loaded
// configuration and the saved session.
type app struct {
	cfg      *config.Config
	client   *apiclient.Client
	store    *session.Store
	session  session.Session
	metrics  *observability.ClientMetrics
	shutdown func(context.Context) error
}

var (
	cli         = &app{}
	metricsFile string
)

var rootCmd = &cobra.Command{
	Use:           "cookbook",
	Short:         "Browse, write and discuss recipes",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return cli.init(cmd.ErrOrStderr())
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("api-url", "", "base URL of the recipe API (env API_URL)")
	flags.String("session-file", "", "where the signed-in session is kept (env SESSION_FILE)")
	flags.String("log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	flags.StringVar(&metricsFile, "metrics-file", "", "write the API calls made by this command to a Prometheus text file")

	_ = viper.BindPFlag("API_URL", flags.Lookup("api-url"))
	_ = viper.BindPFlag("SESSION_FILE", flags.Lookup("session-file"))
	_ = viper.BindPFlag("LOG_LEVEL", flags.Lookup("log-level"))

	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd, recipesCmd, commentsCmd, imageCmd)
}

func (a *app) init(stderr io.Writer) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	observability.SetLogger(observability.NewLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: stderr,
	}))

	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  "cookbook-cli",
		Environment:  cfg.Env,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplerRatio: cfg.TracingSampleRatio,
	})
	if err != nil {
		return err
	}
	a.shutdown = shutdown

	a.metrics = observability.NewClientMetrics()
	a.client = apiclient.New(cfg.APIURL,
		apiclient.WithTimeout(time.Duration(cfg.HTTPTimeoutSeconds)*time.Second),
		apiclient.WithMetrics(a.metrics),
	)

	a.store = session.NewStore(cfg.SessionFile)
	s, err := a.store.Load()
	if err != nil {
		return err
	}
	if s.Expired(time.Now()) {
		fmt.Fprintln(stderr, ui.RenderWarn(ui.IconWarn+" your session has expired; run `cookbook login`"))
		s = session.Session{}
	}
	a.session = s
	return nil
}

func (a *app) close(ctx context.Context) error {
	if metricsFile != "" && a.metrics != nil {
		if err := a.metrics.WriteTextfile(metricsFile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	if a.shutdown != nil {
		return a.shutdown(ctx)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	// metrics are written for failed commands too
	if cerr := cli.close(context.Background()); err == nil {
		err = cerr
	}
	if err != nil {
		ui.Error(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
