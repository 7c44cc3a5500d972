package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sidegig/internal/action"
	"sidegig/internal/catalog"
	"sidegig/internal/config"
	"sidegig/internal/entropy"
	"sidegig/internal/game"
	"sidegig/internal/ops"
	"sidegig/internal/persistence"
	"sidegig/internal/scheduler"
	"sidegig/internal/server"
	"sidegig/internal/state"
)

var rootCmd = &cobra.Command{
	Use:   "sidegig",
	Short: "Side-hustle economy simulator",
	Long: `sidegig runs an incremental economy: accept gigs, launch ventures,
buy upgrades, and settle each in-game day. The serve command exposes the
sim over a JSON API with a websocket change feed; sim runs a headless
fast-forward for balance checks.`,
}

func main() {
	cobra.OnInitialize(initViper)
	rootCmd.PersistentFlags().String("config", "", "path to YAML config file")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(simCmd())
	rootCmd.AddCommand(opsCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initViper() {
	viper.SetEnvPrefix("SIDEGIG")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// loadConfig layers file, environment, and flag values, flags winning.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if path := viper.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.FromEnv()
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
	}
	if cmd.Flags().Changed("catalog") {
		cfg.Sim.CatalogPath, _ = cmd.Flags().GetString("catalog")
	}
	if cmd.Flags().Changed("seed") {
		seed, _ := cmd.Flags().GetUint64("seed")
		cfg.Sim.Seed = seed
	}
	if cmd.Flags().Changed("save") {
		cfg.Save.Path, _ = cmd.Flags().GetString("save")
	}
	if cmd.Flags().Changed("slot") {
		cfg.Save.Slot, _ = cmd.Flags().GetString("slot")
	}
	return cfg, nil
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Sim.CatalogPath == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(cfg.Sim.CatalogPath)
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg)
			if err != nil {
				return err
			}

			store, err := persistence.Open(cfg.Save.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, found, err := store.Load(ctx, cfg.Save.Slot)
			if err != nil {
				return err
			}

			eng := game.NewEngine(game.Options{
				Catalog:  cat,
				BaseTime: cfg.Sim.BaseTimeHours,
				Seed:     cfg.Sim.Seed,
				State:    st,
			})
			if found {
				if earned := eng.CatchUp(); earned > 0 {
					eng.Logger.Printf("offline catch-up credited $%d", earned)
				}
			}

			handler, err := server.NewHandler(server.Options{
				Engine: eng,
				Store:  store,
				Slot:   cfg.Save.Slot,
				Logger: eng.Logger,
			})
			if err != nil {
				return err
			}

			tick := scheduler.NewTicker(eng)
			tick.Interval = time.Duration(cfg.Sim.PassiveTickSeconds) * time.Second
			go tick.Run(ctx)

			// Ticker mutations mark sections but never flush; push them to
			// websocket clients once a second.
			go func() {
				flush := time.NewTicker(time.Second)
				defer flush.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-flush.C:
						eng.Dirty.Flush()
					}
				}
			}()

			if cfg.Save.AutosaveSeconds > 0 {
				go func() {
					auto := time.NewTicker(time.Duration(cfg.Save.AutosaveSeconds) * time.Second)
					defer auto.Stop()
					for {
						select {
						case <-ctx.Done():
							return
						case <-auto.C:
							saveSnapshot(ctx, eng, store, cfg.Save.Slot)
						}
					}
				}()
			}

			srv := &http.Server{Addr: cfg.Server.Addr, Handler: handler}
			go func() {
				<-ctx.Done()
				shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutCtx)
			}()

			eng.Logger.Printf("listening on http://localhost%s (slot %q)", cfg.Server.Addr, cfg.Save.Slot)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}

			// Final save so the next start resumes where this one stopped.
			saveSnapshot(context.Background(), eng, store, cfg.Save.Slot)
			return nil
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("catalog", "", "content catalog YAML (empty uses the built-in set)")
	cmd.Flags().Uint64("seed", 0, "random seed (0 seeds from the clock)")
	cmd.Flags().String("save", "sidegig.db", "save database path")
	cmd.Flags().String("slot", "main", "save slot name")
	return cmd
}

func saveSnapshot(ctx context.Context, eng *game.Engine, store *persistence.Store, slot string) {
	var err error
	eng.View(func(st *state.State) {
		err = store.Save(ctx, slot, st, eng.Clock.Now().Unix())
	})
	if err != nil {
		eng.Logger.Printf("save slot %q failed: %v", slot, err)
	}
}

func simCmd() *cobra.Command {
	var days int
	var seed uint64
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Run a headless fast-forward and print a day-by-day summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			eng := game.NewEngine(game.Options{
				Catalog:  cat,
				BaseTime: cfg.Sim.BaseTimeHours,
				Rand:     entropy.NewSeeded(seed),
			})

			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Day", "Money", "Time Left", "Worked", "Expired", "Spawned"})
			for i := 0; i < days; i++ {
				worked := autoplayDay(eng, cat)
				report := eng.EndDay()
				tw.AppendRow(table.Row{
					report.Day - 1,
					fmt.Sprintf("$%d", report.Money),
					fmt.Sprintf("%.1fh", report.TimeLeft),
					worked,
					report.EventsExpired,
					report.EventsSpawned,
				})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "number of days to simulate")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	return cmd
}

func opsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ops",
		Short: "Operator tooling",
	}
	cmd.AddCommand(opsBackupCmd())
	cmd.AddCommand(opsRestoreCmd())
	return cmd
}

func opsBackupCmd() *cobra.Command {
	var out string
	var extra []string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Pack the save database (and extra files) into a tar.gz",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			paths := append([]string{cfg.Save.Path}, extra...)
			if err := ops.ArchiveSaves(paths, out); err != nil {
				return err
			}
			fmt.Printf("wrote %s (%d files)\n", out, len(paths))
			return nil
		},
	}
	cmd.Flags().String("save", "sidegig.db", "save database path")
	cmd.Flags().StringVar(&out, "out", "sidegig-backup.tar.gz", "archive output path")
	cmd.Flags().StringArrayVar(&extra, "include", nil, "extra file to include (repeatable)")
	return cmd
}

func opsRestoreCmd() *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "restore <archive>",
		Short: "Unpack a backup archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ops.ExtractSaves(args[0], target); err != nil {
				return err
			}
			fmt.Printf("restored %s into %s\n", args[0], target)
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "into", ".", "directory to restore into")
	return cmd
}

// autoplayDay greedily accepts and works whatever fits in the remaining
// budget. Crude, but enough to see money move under a catalog.
func autoplayDay(eng *game.Engine, cat *catalog.Catalog) int {
	worked := 0
	for _, def := range cat.Actions {
		avail, ok := eng.ActionAvailability(def.ID)
		if !ok || !avail.Available {
			continue
		}
		inst, accepted, err := eng.AcceptAction(def.ID, action.AcceptOverrides{})
		if err != nil || !accepted.Available || inst == nil {
			continue
		}
		res, err := eng.WorkAction(def.ID, inst.ID, 0)
		if err == nil && res.OK {
			worked++
		}
	}
	return worked
}
