package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/keyflow/keyflow/pkg/config"
	"github.com/keyflow/keyflow/pkg/db"
	"github.com/keyflow/keyflow/pkg/lifecycle"
	"github.com/keyflow/keyflow/pkg/reconcile"
	"github.com/keyflow/keyflow/pkg/server"
	"github.com/keyflow/keyflow/pkg/server/endpoints"
	gormstore "github.com/keyflow/keyflow/pkg/server/store/gorm"
	"github.com/keyflow/keyflow/pkg/snapshot"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the keyflow server",
	Long: `Run the keyflow server.

Configuration comes from keyflow.yml (KEYFLOW_CONFIG_PATH, default
/etc/keyflow) with environment variable overrides. A database URL is
required: a postgres:// URL or a sqlite file path.

Schema migrations run on startup. Use --no-migrate to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		log.SetLevel(parseLogLevel(cfg.LogLevel))

		gdb, err := db.Connect(db.Config{URL: cfg.DatabaseURL})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			log.Info("running schema migration")
			if err := db.Migrate(gdb); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		}

		keysStore := gormstore.NewKeysStore(gdb)
		healthStore := gormstore.NewHealthStore(gdb)

		snap := snapshot.New()
		if err := snap.Reload(keysStore); err != nil {
			fmt.Fprintf(os.Stderr, "failed to build initial snapshot: %v\n", err)
			os.Exit(1)
		}

		engine := reconcile.NewEngine(keysStore, snap, cfg)
		manager := lifecycle.NewManager(keysStore, snap, cfg)

		host, _ := cmd.Flags().GetString("bind-address")
		if host == "" {
			host = cfg.BindAddress
		}
		port, _ := cmd.Flags().GetString("port")
		if port == "" {
			port = cfg.Port
		}

		s := server.NewServer(cfg, engine, manager, snap, healthStore, host, port)
		endpoints.RegisterAll(s)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			err := cfg.Watch(ctx, func(flows []string) {
				log.Info("flow allow-list reloaded", "flows", flows)
			})
			if err != nil && ctx.Err() == nil {
				log.Warn("config watcher stopped", "error", err)
			}
		}()

		log.Info("running server", "addr", fmt.Sprintf("http://%s:%s", host, port), "flows", cfg.Flows())
		if err := s.Run(); err != nil {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	},
}

func parseLogLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", "", "server listen port (overrides config)")
	serverCmd.Flags().StringP("bind-address", "b", "", "server bind address (overrides config)")
	serverCmd.Flags().Bool("no-migrate", false, "skip running schema migrations on start")
}
