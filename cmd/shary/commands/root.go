package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"shary/internal/app"
	"shary/internal/logging"
)

var (
	home     string
	relayURL string
	verbose  bool

	wire *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:   "shary",
		Short: "Share key/value fields with other users through an untrusted relay",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.FromEnv()
			if home != "" {
				cfg.Home = home
			}
			if relayURL != "" {
				cfg.RelayURL = relayURL
			}
			if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
				return err
			}

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			wire = app.NewWire(cfg, logging.NewText(os.Stderr, level))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if wire != nil {
				wire.Close()
			}
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "data dir (default ~/.shary)")
	root.PersistentFlags().StringVar(&relayURL, "relay", "", "relay base URL (e.g. http://127.0.0.1:8080)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		registerCmd(),
		loginCmd(),
		pingCmd(),
		sendCmd(),
		requestCmd(),
		whoamiCmd(),
		deleteAccountCmd(),
	)
	return root.Execute()
}
