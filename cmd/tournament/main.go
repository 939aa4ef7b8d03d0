// Command tournament is the Swiss tournament management CLI.
//
// Usage:
//
//	tournament migrate
//	tournament players register "Ada Lovelace"
//	tournament tournaments register "Spring Open"
//	tournament matches report --tournament 1 --winner 3 --loser 4
//	tournament matches report --tournament 1 --winner 5 --bye
//	tournament standings --output json
//	tournament pairings
//	tournament export --prefix weekly
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/swiss-tournament/internal/archive"
	"github.com/albapepper/swiss-tournament/internal/config"
	"github.com/albapepper/swiss-tournament/internal/db"
	"github.com/albapepper/swiss-tournament/internal/store"
	"github.com/albapepper/swiss-tournament/internal/swiss"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var format string
	root := &cobra.Command{
		Use:          "tournament",
		Short:        "Swiss-system tournament manager",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validFormat(format)
		},
	}
	root.PersistentFlags().StringVarP(&format, "output", "o", formatTable, "Output format (table, json)")

	out := func(cmd *cobra.Command) *printer {
		return &printer{w: cmd.OutOrStdout(), format: format}
	}

	root.AddCommand(migrateCmd())
	root.AddCommand(playersCmd(out))
	root.AddCommand(tournamentsCmd(out))
	root.AddCommand(matchesCmd(out))
	root.AddCommand(standingsCmd(out))
	root.AddCommand(pairingsCmd(out))
	root.AddCommand(resetCmd())
	root.AddCommand(exportCmd(out))
	return root
}

type printerFunc func(cmd *cobra.Command) *printer

// --------------------------------------------------------------------------
// migrate command
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			start := time.Now()
			if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("Schema applied", "duration", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// players command
// --------------------------------------------------------------------------

func playersCmd(out printerFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "players",
		Short: "Register, count and clear players",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "register NAME",
		Short: "Register a player (markup is stripped from the name)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStore(func(ctx context.Context, _ *config.Config, s *store.Store) error {
				p, err := s.RegisterPlayer(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				return out(cmd).entities([]entity{{p.ID, p.Name}}, p)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "count",
		Short: "Print the number of registered players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStore(func(ctx context.Context, _ *config.Config, s *store.Store) error {
				n, err := s.CountPlayers(ctx)
				if err != nil {
					return err
				}
				return out(cmd).count("count", int64(n))
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every player (clear matches first)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStore(func(ctx context.Context, _ *config.Config, s *store.Store) error {
				n, err := s.ClearPlayers(ctx)
				if err != nil {
					return err
				}
				return out(cmd).count("deleted", n)
			})
		},
	})
	return cmd
}

// --------------------------------------------------------------------------
// tournaments command
// --------------------------------------------------------------------------

func tournamentsCmd(out printerFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tournaments",
		Short: "Register, list and clear tournaments",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "register NAME",
		Short: "Register a tournament",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStore(func(ctx context.Context, _ *config.Config, s *store.Store) error {
				t, err := s.RegisterTournament(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				return out(cmd).entities([]entity{{t.ID, t.Name}}, t)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tournaments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStore(func(ctx context.Context, _ *config.Config, s *store.Store) error {
				ts, err := s.Tournaments(ctx)
				if err != nil {
					return err
				}
				rows := make([]entity, len(ts))
				for i, t := range ts {
					rows[i] = entity{t.ID, t.Name}
				}
				return out(cmd).entities(rows, ts)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every tournament",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStore(func(ctx context.Context, _ *config.Config, s *store.Store) error {
				n, err := s.ClearTournaments(ctx)
				if err != nil {
					return err
				}
				return out(cmd).count("deleted", n)
			})
		},
	})
	return cmd
}

// --------------------------------------------------------------------------
// matches command
// --------------------------------------------------------------------------

func matchesCmd(out printerFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matches",
		Short: "Report and clear matches",
	}
	cmd.AddCommand(matchesReportCmd(out))
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every match",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStore(func(ctx context.Context, _ *config.Config, s *store.Store) error {
				n, err := s.ClearMatches(ctx)
				if err != nil {
					return err
				}
				return out(cmd).count("deleted", n)
			})
		},
	})
	return cmd
}

func matchesReportCmd(out printerFunc) *cobra.Command {
	var (
		tournamentID int64
		winner       int64
		loser        int64
		bye          bool
		draw         bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Record the outcome of a match",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report := store.MatchReport{
				TournamentID: tournamentID,
				Winner:       winner,
				Loser:        swiss.Bye,
				Draw:         draw,
			}
			if !bye {
				if loser == winner {
					return fmt.Errorf("--winner and --loser must differ")
				}
				report.Loser = swiss.Against(swiss.Entrant{ID: loser})
			}
			results, err := report.Results()
			if err != nil {
				return err
			}
			return runStore(func(ctx context.Context, _ *config.Config, s *store.Store) error {
				if err := s.ReportMatch(ctx, report); err != nil {
					return err
				}
				return out(cmd).results(results)
			})
		},
	}
	cmd.Flags().Int64Var(&tournamentID, "tournament", 0, "Tournament ID")
	cmd.Flags().Int64Var(&winner, "winner", 0, "Winning player ID (either player for a draw)")
	cmd.Flags().Int64Var(&loser, "loser", 0, "Losing player ID")
	cmd.Flags().BoolVar(&bye, "bye", false, "Winner had a bye this round")
	cmd.Flags().BoolVar(&draw, "draw", false, "Record a draw for both players")
	_ = cmd.MarkFlagRequired("tournament")
	_ = cmd.MarkFlagRequired("winner")
	cmd.MarkFlagsOneRequired("loser", "bye")
	cmd.MarkFlagsMutuallyExclusive("loser", "bye")
	return cmd
}

// --------------------------------------------------------------------------
// standings / pairings commands
// --------------------------------------------------------------------------

func standingsCmd(out printerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "standings",
		Short: "Show players ordered by wins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStore(func(ctx context.Context, _ *config.Config, s *store.Store) error {
				st, err := s.Standings(ctx)
				if err != nil {
					return err
				}
				return out(cmd).standings(st)
			})
		},
	}
}

func pairingsCmd(out printerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "pairings",
		Short: "Show next-round Swiss pairings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStore(func(ctx context.Context, _ *config.Config, s *store.Store) error {
				m, err := s.Pairings(ctx)
				if err != nil {
					return err
				}
				return out(cmd).pairings(m)
			})
		},
	}
}

// --------------------------------------------------------------------------
// reset / export commands
// --------------------------------------------------------------------------

func resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all matches, players and tournaments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset deletes all data; pass --yes to confirm")
			}
			return runStore(func(ctx context.Context, _ *config.Config, s *store.Store) error {
				if err := s.Reset(ctx); err != nil {
					return err
				}
				logger.Info("All tournament data cleared")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}

func exportCmd(out printerFunc) *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Upload a standings and pairings snapshot to the archive bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStore(func(ctx context.Context, cfg *config.Config, s *store.Store) error {
				if !cfg.ArchiveEnabled() {
					return fmt.Errorf("ARCHIVE_BUCKET is required")
				}
				client, err := archive.NewS3Client(ctx, cfg)
				if err != nil {
					return err
				}
				exporter := archive.NewExporter(client, s, cfg.ArchiveBucket, cfg.ArchiveGzip, logger)
				result, err := exporter.Export(ctx, prefix)
				if err != nil {
					return err
				}
				return out(cmd).export(result)
			})
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "manual", "Key prefix for the snapshot")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runStore handles config loading, DB connection, and context cancellation.
func runStore(fn func(ctx context.Context, cfg *config.Config, s *store.Store) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, store.New(pool))
}
