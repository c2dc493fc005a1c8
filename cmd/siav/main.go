package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"siav/internal/bootstrap"
	protocoldto "siav/internal/modules/protocol/dto"
	"siav/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "siav",
		Short:         "CPR protocol guidance engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default $SIAV_DATA_DIR or .)")

	root.AddCommand(newRunCmd(&dataDir))
	root.AddCommand(newServeCmd(&dataDir))
	root.AddCommand(newLogsCmd(&dataDir))
	root.AddCommand(newSessionCmd(&dataDir))
	root.AddCommand(newAdviseCmd(&dataDir))
	root.AddCommand(newCausesCmd(&dataDir))
	root.AddCommand(newShockEnergyCmd(&dataDir))
	root.AddCommand(newDoseCmd(&dataDir))
	return root
}

func loadApp(ctx context.Context, dataDir string, mode bootstrap.Mode) (*bootstrap.App, error) {
	cfg, err := config.Load(dataDir)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(ctx, cfg, mode)
}

func newRunCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the live guidance terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()
			app, err := loadApp(ctx, *dataDir, bootstrap.ModeTUI)
			if err != nil {
				return err
			}
			defer app.Close()
			return bootstrap.RunTUI(ctx, app)
		},
	}
}

func newServeCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the session HTTP API, websocket stream and metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			app, err := loadApp(ctx, *dataDir, bootstrap.ModeServe)
			if err != nil {
				return err
			}
			defer app.Close()
			return bootstrap.Serve(ctx, app)
		},
	}
}

func newLogsCmd(dataDir *string) *cobra.Command {
	logs := &cobra.Command{Use: "logs", Short: "Saved session logs"}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved session logs, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), *dataDir, bootstrap.ModeCLI)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.SessionCLI.Logs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(out) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
				return nil
			}
			for _, l := range out {
				outcome := "no rosc"
				if l.Summary.ROSC {
					outcome = "rosc"
				}
				synced := "pending"
				if l.Synced {
					synced = "synced"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%ds\tshocks=%d\t%s\t%s\n",
					l.SessionID, l.StartedAt.Local().Format("2006-01-02 15:04"), displayName(l.PatientName),
					l.Summary.DurationSeconds, l.Summary.ShockCount, outcome, synced)
			}
			return nil
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "maximum number of logs")

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Deliver queued logs to the remote sink",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), *dataDir, bootstrap.ModeCLI)
			if err != nil {
				return err
			}
			defer app.Close()
			n, err := app.SessionCLI.Sync(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "synced %d log(s)\n", n)
			return nil
		},
	}

	logs.AddCommand(listCmd, syncCmd)
	return logs
}

func newSessionCmd(dataDir *string) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Active session maintenance"}
	session.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Clear a stale active-session marker without saving a log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), *dataDir, bootstrap.ModeCLI)
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.SessionCLI.Reset(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "active session cleared")
			return nil
		},
	})
	return session
}

func newAdviseCmd(dataDir *string) *cobra.Command {
	var in protocoldto.AdviseInput
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Evaluate the protocol advisor for one moment of a resuscitation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), *dataDir, bootstrap.ModeCLI)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.ProtocolCLI.Advise(cmd.Context(), in)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd, out)
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "[%s] %s\n", out.Urgency, out.Message)
			if out.CriticalAction != "" {
				_, _ = fmt.Fprintf(w, "action: %s\n", out.CriticalAction)
			}
			if out.Dose != "" {
				_, _ = fmt.Fprintf(w, "dose: %s\n", out.Dose)
			}
			if out.Detail != "" {
				_, _ = fmt.Fprintf(w, "detail: %s\n", out.Detail)
			}
			for _, item := range out.Checklist {
				_, _ = fmt.Fprintf(w, "  - %s\n", item)
			}
			if out.Secondary != "" {
				_, _ = fmt.Fprintln(w, out.Secondary)
			}
			_, _ = fmt.Fprintf(w, "reason: %s\n", out.Reason)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Phase, "phase", "compressions", "phase: preparation|compressions|rhythm_check|shock_advised")
	cmd.Flags().StringVar(&in.Rhythm, "rhythm", "", "last rhythm: FV|TVSP|AESP|Assistolia (empty when unknown)")
	cmd.Flags().IntVar(&in.Shocks, "shocks", 0, "shocks delivered")
	cmd.Flags().IntVar(&in.Cycle, "cycle", 1, "compression cycle number")
	cmd.Flags().IntVar(&in.AdrenalineAgo, "adrenaline-ago", -1, "seconds since last adrenaline, -1 when none given")
	cmd.Flags().IntVar(&in.Antiarrhythmics, "antiarrhythmics", 0, "antiarrhythmic doses given")
	cmd.Flags().IntVar(&in.UntilCheck, "until-check", 120, "seconds left in the current cycle")
	cmd.Flags().IntVar(&in.AgeYears, "age", 0, "patient age in years (0 when unknown)")
	cmd.Flags().Float64Var(&in.WeightKg, "weight", 0, "patient weight in kg")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newCausesCmd(dataDir *string) *cobra.Command {
	var age int
	var weight float64

	cmd := &cobra.Command{
		Use:   "causes",
		Short: "List the reversible causes (5H/5T) with treatments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), *dataDir, bootstrap.ModeCLI)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.ProtocolCLI.Causes(cmd.Context(), age, weight)
			if err != nil {
				return err
			}
			for _, c := range out {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-18s %s\n", c.Label, c.Treatment)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&age, "age", 0, "patient age in years")
	cmd.Flags().Float64Var(&weight, "weight", 0, "patient weight in kg")
	return cmd
}

func newShockEnergyCmd(dataDir *string) *cobra.Command {
	var age, shocks int
	var weight float64
	var device string

	cmd := &cobra.Command{
		Use:   "shock-energy",
		Short: "Recommend the defibrillation energy for the next shock",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), *dataDir, bootstrap.ModeCLI)
			if err != nil {
				return err
			}
			defer app.Close()
			if device == "" {
				device = app.Config.Defibrillator
			}
			out, err := app.ProtocolCLI.ShockEnergy(cmd.Context(), age, weight, shocks, device)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d J (%s)\n", out.Joules, out.Basis)
			if len(out.Options) > 0 {
				opts := make([]string, len(out.Options))
				for i, j := range out.Options {
					opts[i] = fmt.Sprintf("%d J", j)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "options: %s\n", strings.Join(opts, ", "))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&age, "age", 0, "patient age in years")
	cmd.Flags().Float64Var(&weight, "weight", 0, "patient weight in kg")
	cmd.Flags().IntVar(&shocks, "shocks", 0, "shocks already delivered")
	cmd.Flags().StringVar(&device, "device", "", "biphasic|monophasic (default $SIAV_DEFIBRILLATOR)")
	return cmd
}

func newDoseCmd(dataDir *string) *cobra.Command {
	var age, ordinal int
	var weight float64

	cmd := &cobra.Command{
		Use:   "dose <drug>",
		Short: "Show the dose of a drug for the patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context(), *dataDir, bootstrap.ModeCLI)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.ProtocolCLI.Dose(cmd.Context(), args[0], ordinal, age, weight)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", out.Drug, out.Dose)
			return nil
		},
	}
	cmd.Flags().IntVar(&ordinal, "ordinal", 1, "which dose (1 for the first)")
	cmd.Flags().IntVar(&age, "age", 0, "patient age in years")
	cmd.Flags().Float64Var(&weight, "weight", 0, "patient weight in kg")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "(unnamed)"
	}
	return name
}
