package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/leapstack-labs/pdmwatch/internal/cli/output"
	"github.com/leapstack-labs/pdmwatch/pkg/core"
	"github.com/spf13/cobra"
)

// NewMachinesCommand creates the machines command group.
func NewMachinesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "machines",
		Aliases: []string{"machine"},
		Short:   "Manage the machine registry",
		Long:    `Register machines, inspect them and change their operating status.`,
	}

	cmd.AddCommand(newMachinesListCommand())
	cmd.AddCommand(newMachinesAddCommand())
	cmd.AddCommand(newMachinesShowCommand())
	cmd.AddCommand(newMachinesUpdateCommand())
	cmd.AddCommand(newMachinesStatusCommand())
	cmd.AddCommand(newMachinesDeleteCommand())

	return cmd
}

// ListOptions holds pagination flags shared by list commands.
type ListOptions struct {
	Skip  int
	Limit int
}

func (o *ListOptions) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&o.Skip, "skip", 0, "Number of records to skip")
	cmd.Flags().IntVar(&o.Limit, "limit", core.DefaultListLimit, "Maximum number of records to return")
}

func (o *ListOptions) validate() error {
	if o.Skip < 0 {
		return fmt.Errorf("%w: --skip must not be negative", core.ErrInvalidInput)
	}
	return nil
}

func newMachinesListCommand() *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered machines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMachinesList(cmd, opts)
		},
	}
	opts.bind(cmd)

	return cmd
}

func runMachinesList(cmd *cobra.Command, opts *ListOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	machines, err := cmdCtx.Store.ListMachines(cmd.Context(), opts.Skip, core.ClampLimit(opts.Limit))
	if err != nil {
		return err
	}

	return printMachines(cmdCtx.Renderer, machines)
}

// printMachines writes machines as JSON or as a table.
func printMachines(r *output.Renderer, machines []*core.Machine) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(machines)
	}

	if len(machines) == 0 {
		r.Muted("No machines registered yet.")
		return nil
	}

	rows := make([][]string, 0, len(machines))
	for _, m := range machines {
		rows = append(rows, []string{
			strconv.FormatInt(m.ID, 10),
			m.Name,
			m.Type,
			m.Location,
			r.Status(m.Status.String()),
			formatTimestamp(m.LastMaintenance),
		})
	}
	r.Table([]string{"ID", "Name", "Type", "Location", "Status", "Last Maintenance"}, rows)
	return nil
}

// MachineAddOptions holds options for machines add.
type MachineAddOptions struct {
	Name      string
	Type      string
	Location  string
	Status    string
	Installed string
}

func newMachinesAddCommand() *cobra.Command {
	opts := &MachineAddOptions{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a machine",
		Example: `  pdmwatch machines add --name "Press 4" --type hydraulic-press --location "Hall B"
  pdmwatch machines add --name Lathe --type cnc --location "Hall A" --installed 2024-06-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMachinesAdd(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "Machine name")
	cmd.Flags().StringVar(&opts.Type, "type", "", "Machine type")
	cmd.Flags().StringVar(&opts.Location, "location", "", "Where the machine is installed")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Initial status (default: operational)")
	cmd.Flags().StringVar(&opts.Installed, "installed", "", "Installation date (YYYY-MM-DD, default: today)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("location")
	_ = cmd.RegisterFlagCompletionFunc("status", completeStatus)

	return cmd
}

func runMachinesAdd(cmd *cobra.Command, opts *MachineAddOptions) error {
	in := core.MachineCreate{
		Name:     opts.Name,
		Type:     opts.Type,
		Location: opts.Location,
		Status:   core.MachineStatus(opts.Status),
	}
	if opts.Installed != "" {
		d, err := core.ParseDate(opts.Installed)
		if err != nil {
			return err
		}
		in.InstallationDate = &core.Timestamp{Time: d.Time}
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	m, err := cmdCtx.Store.CreateMachine(cmd.Context(), in)
	if err != nil {
		return err
	}
	cmdCtx.Logger.Info("machine registered", "id", m.ID, "name", m.Name)

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(m)
	}
	r.Success(fmt.Sprintf("Registered machine %d (%s)", m.ID, m.Name))
	return nil
}

func newMachinesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a machine and its maintenance schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMachinesShow(cmd, args[0])
		},
	}
}

// machineDetail is the JSON shape of machines show.
type machineDetail struct {
	*core.Machine
	Schedule *core.Schedule `json:"schedule"`
}

func runMachinesShow(cmd *cobra.Command, arg string) error {
	id, err := parseID(arg, "machine id")
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	m, err := cmdCtx.Store.GetMachine(cmd.Context(), id)
	if err != nil {
		return err
	}
	schedule, err := loadSchedule(cmd, cmdCtx, id)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(machineDetail{Machine: m, Schedule: schedule})
	}

	r.Header(1, m.Name)
	r.KeyValue("ID", strconv.FormatInt(m.ID, 10))
	r.KeyValue("Type", m.Type)
	r.KeyValue("Location", m.Location)
	r.KeyValue("Status", r.Status(m.Status.String()))
	r.KeyValue("Installed", m.InstallationDate.UTC().Format(core.DateLayout))
	r.KeyValue("Last Maintenance", formatTimestamp(m.LastMaintenance))
	r.Println()
	printSchedule(r, schedule)
	return nil
}

// MachineUpdateOptions holds options for machines update.
type MachineUpdateOptions struct {
	Name     string
	Type     string
	Location string
}

func newMachinesUpdateCommand() *cobra.Command {
	opts := &MachineUpdateOptions{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a machine's name, type or location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMachinesUpdate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "New machine name")
	cmd.Flags().StringVar(&opts.Type, "type", "", "New machine type")
	cmd.Flags().StringVar(&opts.Location, "location", "", "New location")

	return cmd
}

func runMachinesUpdate(cmd *cobra.Command, arg string, opts *MachineUpdateOptions) error {
	id, err := parseID(arg, "machine id")
	if err != nil {
		return err
	}

	var in core.MachineUpdate
	if cmd.Flags().Changed("name") {
		in.Name = &opts.Name
	}
	if cmd.Flags().Changed("type") {
		in.Type = &opts.Type
	}
	if cmd.Flags().Changed("location") {
		in.Location = &opts.Location
	}
	if in.Empty() {
		return fmt.Errorf("%w: nothing to update, pass --name, --type or --location", core.ErrInvalidInput)
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	m, err := cmdCtx.Store.UpdateMachine(cmd.Context(), id, in)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(m)
	}
	r.Success(fmt.Sprintf("Updated machine %d", m.ID))
	return nil
}

func newMachinesStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Set a machine's operating status",
		Long: `Set a machine's operating status.

Valid statuses: operational, maintenance, warning, critical.`,
		Example: `  pdmwatch machines status 3 maintenance`,
		Args:    cobra.ExactArgs(2),
		ValidArgsFunction: func(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 1 {
				return completeStatus(nil, nil, toComplete)
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMachinesStatus(cmd, args[0], args[1])
		},
	}
}

func runMachinesStatus(cmd *cobra.Command, idArg, statusArg string) error {
	id, err := parseID(idArg, "machine id")
	if err != nil {
		return err
	}
	status, err := core.ParseMachineStatus(statusArg)
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	m, err := cmdCtx.Store.UpdateMachineStatus(cmd.Context(), id, status)
	if err != nil {
		return err
	}
	cmdCtx.Logger.Info("machine status changed", "id", m.ID, "status", m.Status)

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(m)
	}
	r.Success(fmt.Sprintf("%s is now %s", m.Name, r.Status(m.Status.String())))
	return nil
}

func newMachinesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a machine and its maintenance history",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMachinesDelete(cmd, args[0])
		},
	}
}

func runMachinesDelete(cmd *cobra.Command, arg string) error {
	id, err := parseID(arg, "machine id")
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := cmdCtx.Store.DeleteMachine(cmd.Context(), id); err != nil {
		return err
	}

	cmdCtx.Renderer.Success(fmt.Sprintf("Deleted machine %d", id))
	return nil
}

func completeStatus(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	names := make([]string, len(core.MachineStatuses))
	for i, s := range core.MachineStatuses {
		names[i] = s.String()
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func formatTimestamp(t *time.Time) string {
	if t == nil {
		return "Never"
	}
	return t.UTC().Format("2006-01-02 15:04")
}
