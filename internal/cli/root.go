// Package cli implements the wasatext command line client
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/wasatext/internal/apiclient"
	"github.com/wasatext/internal/config"
	"github.com/wasatext/internal/credential"
	"github.com/wasatext/internal/logger"
	"github.com/wasatext/internal/webui"
)

// app holds what the subcommands share once flags are parsed
type app struct {
	store  credential.Store
	client *apiclient.Client
	router *webui.Router
	logger *slog.Logger
}

type rootFlags struct {
	apiURL      string
	storagePath string
	debug       bool
}

// NewRootCommand builds the wasatext command tree. Results go to out,
// errors and debug logs to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	var (
		flags rootFlags
		a     app
	)

	rootCmd := &cobra.Command{
		Use:          "wasatext",
		Short:        "WASAText command line client",
		Long:         "Log in, browse conversations and send messages through the WASAText API.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd, flags)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", fmt.Sprintf("API base URL (default $WASATEXT_API_URL or %q)", apiclient.DefaultBaseURL))
	rootCmd.PersistentFlags().StringVar(&flags.storagePath, "storage", "", "credential storage file (default $WASATEXT_STORAGE or the user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "log requests and navigation to stderr")

	rootCmd.AddCommand(
		newLoginCmd(&a),
		newLogoutCmd(&a),
		newWhoamiCmd(&a),
		newOpenCmd(&a),
		newRoutesCmd(&a),
		newSendCmd(&a),
		newDMCmd(&a),
	)
	return rootCmd
}

// Execute runs the root command against os.Args
func Execute(out, errOut io.Writer) error {
	return NewRootCommand(out, errOut).Execute()
}

// init wires the credential store, API client and router. Flags override
// the environment.
func (a *app) init(cmd *cobra.Command, flags rootFlags) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	if flags.apiURL != "" {
		cfg.APIURL = flags.apiURL
	}
	if flags.storagePath != "" {
		cfg.StoragePath = flags.storagePath
	}
	if cfg.StoragePath == "" {
		if cfg.StoragePath, err = credential.DefaultPath(); err != nil {
			return err
		}
	}

	a.logger = logger.NewCLILogger(cmd.ErrOrStderr(), flags.debug || cfg.Debug)
	a.store = credential.NewFileStore(cfg.StoragePath)

	a.client, err = apiclient.New(apiclient.Config{BaseURL: cfg.APIURL}, a.store, a.logger)
	if err != nil {
		return err
	}
	a.router, err = webui.New(webui.DefaultRoutes(), a.store, a.logger)
	if err != nil {
		return err
	}
	return nil
}
