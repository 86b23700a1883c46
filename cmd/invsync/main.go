package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"invsync/internal/bootstrap"
	inventorydto "invsync/internal/modules/inventory/dto"
	"invsync/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	userID     int64
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "invsync",
		Short:         "Real-time inventory session client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default $HOME/.config/invsync/config.yaml)")
	root.PersistentFlags().Int64Var(&flags.userID, "user", 0, "user id (overrides user_id)")

	root.AddCommand(newZonesCmd(flags))
	root.AddCommand(newVerificationsCmd(flags))
	root.AddCommand(newMonitorCmd(flags))
	root.AddCommand(newInventoryCmd(flags))
	root.AddCommand(newExitCmd(flags))
	return root
}

func loadApp(cmd *cobra.Command, flags *rootFlags, dispositionsFile string) (*bootstrap.App, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.userID != 0 {
		cfg.UserID = flags.userID
	}
	return bootstrap.New(cfg, bootstrap.Options{
		In:               cmd.InOrStdin(),
		Out:              cmd.OutOrStdout(),
		LogOut:           cmd.ErrOrStderr(),
		DispositionsFile: dispositionsFile,
	})
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newZonesCmd(flags *rootFlags) *cobra.Command {
	var search string
	var filterID int

	zones := &cobra.Command{
		Use:   "zones",
		Short: "List the zones assigned to the user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd, flags, "")
			if err != nil {
				return err
			}
			defer app.Close()
			list, notice, err := app.ZoneCLI.List(context.Background(), app.Config.UserID, search, filterID)
			if err != nil {
				return err
			}
			if notice != "" {
				app.Prompter.Muted(notice)
			}
			for _, z := range list {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\tbranch=%d\t%s\tavailable=%t\n", z.ID, z.Name, z.BranchID, z.StateLabel, z.IsAvailable)
			}
			return nil
		},
	}
	zones.Flags().StringVar(&search, "search", "", "case-insensitive name filter")
	zones.Flags().IntVar(&filterID, "filter", 0, "state filter id (see zones filters)")

	zones.AddCommand(&cobra.Command{
		Use:   "filters",
		Short: "List the zone state filters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd, flags, "")
			if err != nil {
				return err
			}
			defer app.Close()
			for _, f := range app.ZoneCLI.Filters() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\tactive=%t\n", f.ID, f.Name, f.Active)
			}
			return nil
		},
	})
	return zones
}

func newVerificationsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "verifications",
		Short: "List inventories pending verification in the user's branch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd, flags, "")
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.VerificationCLI.List(context.Background(), app.Config.UserID)
			if err != nil {
				return err
			}
			if !out.Bound {
				app.Prompter.Muted("no branch assigned")
				return nil
			}
			if len(out.Entries) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no pending verifications")
				return nil
			}
			for _, e := range out.Entries {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\tzone=%d %s\n", e.InventaryID, e.Date, e.ZoneID, e.ZoneName)
			}
			return nil
		},
	}
}

func newMonitorCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Stay connected, reconcile zones and verifications, serve status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd, flags, "")
			if err != nil {
				return err
			}
			defer app.Close()
			ctx, cancel := signalContext()
			defer cancel()
			return app.Monitor(ctx)
		},
	}
}

func newInventoryCmd(flags *rootFlags) *cobra.Command {
	inventory := &cobra.Command{Use: "inventory", Short: "Inventory session lifecycle"}

	var zoneID, groupID int64
	start := &cobra.Command{
		Use:   "start --zone <id>",
		Short: "Start an inventory of a zone",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if zoneID <= 0 {
				return fmt.Errorf("--zone is required")
			}
			app, err := loadApp(cmd, flags, "")
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.InventoryCLI.Start(context.Background(), app.Config.UserID, zoneID, groupID)
			if err != nil {
				return err
			}
			if !out.Success {
				return fmt.Errorf("%s", out.Error)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "inventory started: %d code=%s\n", out.SessionID, out.InvitationCode)
			if out.JoinError != "" {
				app.Prompter.Muted("live updates unavailable: " + out.JoinError)
			}
			return nil
		},
	}
	start.Flags().Int64Var(&zoneID, "zone", 0, "zone id")
	start.Flags().Int64Var(&groupID, "group", 0, "operating group id (defaults to the user's group)")

	var observations, dispositions string
	finish := &cobra.Command{
		Use:   "finish",
		Short: "Finish the active inventory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd, flags, dispositions)
			if err != nil {
				return err
			}
			defer app.Close()
			input := inventorydto.FinishInput{}
			if cmd.Flags().Changed("observations") {
				input.Observations = &observations
			}
			out := app.InventoryCLI.Finish(context.Background(), input)
			if !out.Success {
				return fmt.Errorf("%s", out.Error)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "inventory finished")
			return nil
		},
	}
	finish.Flags().StringVar(&observations, "observations", "", "closing observations (defaults to the recorded observation)")
	finish.Flags().StringVar(&dispositions, "dispositions", "", "YAML file of item_id: status for missing items")

	cancel := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel the active inventory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd, flags, "")
			if err != nil {
				return err
			}
			defer app.Close()
			out := app.InventoryCLI.Cancel(context.Background())
			if !out.Success {
				return fmt.Errorf("%s", out.Error)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "inventory cancelled")
			return nil
		},
	}

	var expected map[string]int
	status := &cobra.Command{
		Use:   "status",
		Short: "Show the active inventory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd, flags, "")
			if err != nil {
				return err
			}
			defer app.Close()
			ctx := context.Background()
			out, err := app.InventoryCLI.Status(ctx)
			if err != nil {
				return err
			}
			if !out.Active {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no active inventory")
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session=%d state=%s scanned=%d\n", out.SessionID, out.State, out.ScannedCount)
			if out.Observation != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "observation: %s\n", out.Observation)
			}
			if len(expected) == 0 {
				return nil
			}
			completion, err := app.InventoryCLI.Completion(ctx, categories(expected))
			if err != nil {
				return err
			}
			if !completion.IsComplete {
				app.Prompter.Muted(fmt.Sprintf("Has escaneado %d de %d ítems. Faltan %d.", completion.Scanned, completion.Expected, completion.Missing))
			}
			return nil
		},
	}
	status.Flags().StringToIntVar(&expected, "expect", nil, "expected count per category, e.g. sillas=10,mesas=5")

	observe := &cobra.Command{
		Use:   "observe <text>",
		Short: "Store observations for the active inventory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd, flags, "")
			if err != nil {
				return err
			}
			defer app.Close()
			return app.SessionCLI.SetObservation(context.Background(), strings.Join(args, " "))
		},
	}

	watch := &cobra.Command{
		Use:   "watch",
		Short: "Follow scans of the active inventory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd, flags, "")
			if err != nil {
				return err
			}
			defer app.Close()
			ctx, stop := signalContext()
			defer stop()
			return app.Watch(ctx, func(count int) {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d\n", count)
			})
		},
	}

	inventory.AddCommand(start, finish, cancel, status, observe, watch)
	return inventory
}

func newExitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "exit",
		Short: "Leave, cancelling the active inventory after confirmation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd, flags, "")
			if err != nil {
				return err
			}
			defer app.Close()
			if !app.Exit.HandleExitAttempt(context.Background()) {
				return fmt.Errorf("exit refused")
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "bye")
			return nil
		},
	}
}

func categories(expected map[string]int) []inventorydto.Category {
	names := make([]string, 0, len(expected))
	for name := range expected {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]inventorydto.Category, 0, len(names))
	for _, name := range names {
		out = append(out, inventorydto.Category{Name: name, Count: expected[name]})
	}
	return out
}
