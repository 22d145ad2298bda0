package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/leapstack-labs/pdmwatch/internal/cli/output"
	"github.com/leapstack-labs/pdmwatch/internal/ui/features/common"
	"github.com/leapstack-labs/pdmwatch/pkg/core"
	"github.com/spf13/cobra"
)

// NewMaintenanceCommand creates the maintenance command group.
func NewMaintenanceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maintenance",
		Short: "Log and review maintenance",
		Long: `Log maintenance interventions, browse the history and see when each
machine is next due.`,
	}

	cmd.AddCommand(newMaintenanceListCommand())
	cmd.AddCommand(newMaintenanceLogCommand())
	cmd.AddCommand(newMaintenanceScheduleCommand())
	cmd.AddCommand(newMaintenanceDeleteCommand())

	return cmd
}

func newMaintenanceListCommand() *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "list [machine-id]",
		Short: "List maintenance records, newest first",
		Example: `  # Every record
  pdmwatch maintenance list

  # One machine's history
  pdmwatch maintenance list 3 --limit 10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMaintenanceList(cmd, args, opts)
		},
	}
	opts.bind(cmd)

	return cmd
}

func runMaintenanceList(cmd *cobra.Command, args []string, opts *ListOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}

	var machineID int64
	if len(args) == 1 {
		id, err := parseID(args[0], "machine id")
		if err != nil {
			return err
		}
		machineID = id
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	var records []*core.MaintenanceRecord
	if machineID > 0 {
		if _, err := cmdCtx.Store.GetMachine(ctx, machineID); err != nil {
			return err
		}
		records, err = cmdCtx.Store.ListMachineMaintenance(ctx, machineID, core.ClampLimit(opts.Limit))
	} else {
		records, err = cmdCtx.Store.ListMaintenance(ctx, opts.Skip, core.ClampLimit(opts.Limit))
	}
	if err != nil {
		return err
	}

	return printMaintenance(cmdCtx.Renderer, records)
}

func printMaintenance(r *output.Renderer, records []*core.MaintenanceRecord) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(records)
	}

	if len(records) == 0 {
		r.Muted("No maintenance recorded.")
		return nil
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			strconv.FormatInt(rec.ID, 10),
			strconv.FormatInt(rec.MachineID, 10),
			rec.Date.String(),
			rec.Type,
			rec.Description,
			optional(rec.Technician),
			optionalFloat(rec.Cost),
		})
	}
	r.Table([]string{"ID", "Machine", "Date", "Type", "Description", "Technician", "Cost"}, rows)
	return nil
}

// MaintenanceLogOptions holds options for maintenance log.
type MaintenanceLogOptions struct {
	Date          string
	Type          string
	Description   string
	Technician    string
	PartsReplaced string
	Cost          float64
	DurationHours float64
}

func newMaintenanceLogCommand() *cobra.Command {
	opts := &MaintenanceLogOptions{}

	cmd := &cobra.Command{
		Use:   "log <machine-id>",
		Short: "Record a maintenance intervention",
		Long: `Record a maintenance intervention.

The machine's last maintenance time is moved forward when the new record
is more recent.`,
		Example: `  pdmwatch maintenance log 3 --type preventive --description "Replaced filters" \
    --technician "R. Okafor" --cost 120.50 --duration 1.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMaintenanceLog(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Date, "date", "", "Maintenance date (YYYY-MM-DD, default: today)")
	cmd.Flags().StringVar(&opts.Type, "type", "", "Maintenance type, e.g. preventive, corrective, predictive")
	cmd.Flags().StringVar(&opts.Description, "description", "", "What was done")
	cmd.Flags().StringVar(&opts.Technician, "technician", "", "Who did it")
	cmd.Flags().StringVar(&opts.PartsReplaced, "parts", "", "Parts replaced")
	cmd.Flags().Float64Var(&opts.Cost, "cost", 0, "Cost of the intervention")
	cmd.Flags().Float64Var(&opts.DurationHours, "duration", 0, "Duration in hours")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.RegisterFlagCompletionFunc("type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"preventive", "corrective", "predictive"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runMaintenanceLog(cmd *cobra.Command, arg string, opts *MaintenanceLogOptions) error {
	machineID, err := parseID(arg, "machine id")
	if err != nil {
		return err
	}

	in := core.MaintenanceCreate{
		MachineID:   machineID,
		Type:        opts.Type,
		Description: opts.Description,
	}
	if opts.Date != "" {
		d, err := core.ParseDate(opts.Date)
		if err != nil {
			return err
		}
		in.Date = &d
	}
	flags := cmd.Flags()
	if flags.Changed("technician") {
		in.Technician = &opts.Technician
	}
	if flags.Changed("parts") {
		in.PartsReplaced = &opts.PartsReplaced
	}
	if flags.Changed("cost") {
		in.Cost = &opts.Cost
	}
	if flags.Changed("duration") {
		in.DurationHours = &opts.DurationHours
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := cmdCtx.Store.GetMachine(cmd.Context(), machineID); err != nil {
		return err
	}
	rec, err := cmdCtx.Store.RecordMaintenance(cmd.Context(), in)
	if err != nil {
		return err
	}
	cmdCtx.Logger.Info("maintenance recorded", "id", rec.ID, "machine_id", rec.MachineID, "date", rec.Date.String())

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(rec)
	}
	r.Success(fmt.Sprintf("Recorded %s maintenance %d for machine %d on %s", rec.Type, rec.ID, rec.MachineID, rec.Date))
	return nil
}

func newMaintenanceScheduleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <machine-id>",
		Short: "Show when a machine is next due for maintenance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMaintenanceSchedule(cmd, args[0])
		},
	}
}

func runMaintenanceSchedule(cmd *cobra.Command, arg string) error {
	machineID, err := parseID(arg, "machine id")
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	schedule, err := loadSchedule(cmd, cmdCtx, machineID)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(schedule)
	}
	printSchedule(r, schedule)
	return nil
}

func loadSchedule(cmd *cobra.Command, cmdCtx *CommandContext, machineID int64) (*core.Schedule, error) {
	return common.LoadSchedule(cmd.Context(), cmdCtx.Store, machineID, scheduleOptions(cmdCtx.Cfg), time.Now())
}

func printSchedule(r *output.Renderer, s *core.Schedule) {
	r.Header(2, "Maintenance schedule")
	if s.LastMaintenance == nil {
		r.KeyValue("Last maintenance", "Never")
		r.KeyValue("Next scheduled", "Not scheduled")
	} else {
		r.KeyValue("Last maintenance", s.LastMaintenance.String())
		r.KeyValue("Next scheduled", s.NextScheduled.String())
		r.KeyValue("Days until next", formatDays(*s.DaysUntilNext))
	}
	r.KeyValue("Interval", fmt.Sprintf("%d days", s.MaintenanceInterval))
	r.KeyValue("Recommendation", s.Recommendation)

	if len(s.MaintenanceHistory) == 0 {
		r.Muted("No maintenance recorded.")
		return
	}

	rows := make([][]string, 0, len(s.MaintenanceHistory))
	for _, h := range s.MaintenanceHistory {
		rows = append(rows, []string{h.Date.String(), h.Type, h.Description})
	}
	r.Table([]string{"Date", "Type", "Description"}, rows)
}

func formatDays(days int) string {
	if days < 0 {
		return fmt.Sprintf("%d (overdue by %d days)", days, -days)
	}
	return strconv.Itoa(days)
}

func newMaintenanceDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <record-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a maintenance record",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMaintenanceDelete(cmd, args[0])
		},
	}
}

func runMaintenanceDelete(cmd *cobra.Command, arg string) error {
	id, err := parseID(arg, "record id")
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := cmdCtx.Store.DeleteMaintenance(cmd.Context(), id); err != nil {
		return err
	}

	cmdCtx.Renderer.Success(fmt.Sprintf("Deleted maintenance record %d", id))
	return nil
}

func optional(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func optionalFloat(f *float64) string {
	if f == nil {
		return "-"
	}
	return strconv.FormatFloat(*f, 'f', 2, 64)
}
