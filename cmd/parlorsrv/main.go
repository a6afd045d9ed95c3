// parlorsrv is the game hosting server. It also runs as its own
// headless simulator via the simulate subcommand, which the serving
// process shells out to when estimating game durations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/parlorgames/parlor/pkg/logging"
	"github.com/parlorgames/parlor/pkg/server"
	"github.com/parlorgames/parlor/pkg/sim"

	// Game registrations.
	_ "github.com/parlorgames/parlor/pkg/games/farkle"
	_ "github.com/parlorgames/parlor/pkg/games/holdem"
	_ "github.com/parlorgames/parlor/pkg/games/pig"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "parlorsrv",
		Short:         "Accessible multiplayer game server",
		Version:       server.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	bindServeFlags(root.Flags())

	viper.SetEnvPrefix("PARLOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlags(root.Flags())

	root.AddCommand(simulateCommand())
	return root
}

// bindServeFlags declares the serving flags; viper overlays PARLOR_*
// environment variables on top of them.
func bindServeFlags(flags *pflag.FlagSet) {
	flags.String("host", "0.0.0.0", "address to listen on")
	flags.Int("port", 8000, "port to listen on")
	flags.String("ssl-cert", "", "TLS certificate file (requires --ssl-key)")
	flags.String("ssl-key", "", "TLS key file (requires --ssl-cert)")
	flags.String("db", "parlor.sqlite", "path to the SQLite database")
	flags.String("status-file", "", "periodically write a JSON status snapshot here")
	flags.String("debuglevel", "info", "logging level: trace, debug, info, warn, error")
}

func runServe(cmd *cobra.Command, args []string) error {
	cert := viper.GetString("ssl-cert")
	key := viper.GetString("ssl-key")
	if (cert == "") != (key == "") {
		return fmt.Errorf("--ssl-cert and --ssl-key must be given together")
	}

	backend, err := logging.NewBackend(nil, viper.GetString("debuglevel"))
	if err != nil {
		return err
	}
	log := backend.Logger("SRVR")

	srv, err := server.New(server.Config{
		Host:       viper.GetString("host"),
		Port:       viper.GetInt("port"),
		CertFile:   cert,
		KeyFile:    key,
		DBPath:     viper.GetString("db"),
		StatusFile: viper.GetString("status-file"),
	}, log)
	if err != nil {
		return err
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

func simulateCommand() *cobra.Command {
	var (
		gameType    string
		optionsJSON string
		bots        int
		seed        int64
	)
	cmd := &cobra.Command{
		Use:    "simulate",
		Short:  "Play one bot-only game and print its tick count as JSON",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Simulations stay quiet; only the JSON line goes to stdout.
			backend, err := logging.NewBackend(os.Stderr, "critical")
			if err != nil {
				return err
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			ticks, err := sim.Run(gameType, optionsJSON, bots, seed, backend.Logger("SIM"))
			if err != nil {
				return err
			}
			fmt.Printf("{\"ticks\": %d}\n", ticks)
			return nil
		},
	}
	cmd.Flags().StringVar(&gameType, "game", "", "game type to simulate")
	cmd.Flags().StringVar(&optionsJSON, "options", "", "options JSON from the hosting table")
	cmd.Flags().IntVar(&bots, "bots", 0, "number of bot players")
	cmd.Flags().Int64Var(&seed, "seed", 0, "RNG seed (0 = time-based)")
	_ = cmd.MarkFlagRequired("game")
	return cmd
}
