package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"maintenance-scheduler/core/model"
	"maintenance-scheduler/core/registry"
)

var shiftsCmd = &cobra.Command{
	Use:   "shifts",
	Short: "Manage the crew registry",
}

var shiftsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List registered crews",
	RunE:  runShiftsLs,
}

var (
	shiftTrade string
	shiftHours int
	shiftTechs int
	shiftDays  string
)

var shiftsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a crew",
	RunE:  runShiftsAdd,
}

var shiftsRmCmd = &cobra.Command{
	Use:   "rm <trade>",
	Short: "Remove a crew",
	Args:  cobra.ExactArgs(1),
	RunE:  runShiftsRm,
}

func init() {
	shiftsAddCmd.Flags().StringVar(&shiftTrade, "trade", "", "trade name")
	shiftsAddCmd.Flags().IntVar(&shiftHours, "hours", 8, "shift duration in hours")
	shiftsAddCmd.Flags().IntVar(&shiftTechs, "techs", 1, "technicians per crew")
	shiftsAddCmd.Flags().StringVar(&shiftDays, "days", "mon,tue,wed,thu,fri", "active days, comma separated")
	_ = shiftsAddCmd.MarkFlagRequired("trade")

	shiftsCmd.AddCommand(shiftsLsCmd, shiftsAddCmd, shiftsRmCmd)
	rootCmd.AddCommand(shiftsCmd)
}

func openRegistry(cmd *cobra.Command) (registry.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	store, err := registry.NewSQLStore(cfg.Registry)
	if err != nil {
		return nil, fmt.Errorf("crew registry: %w", err)
	}
	return store, nil
}

func runShiftsLs(cmd *cobra.Command, args []string) error {
	store, err := openRegistry(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	crews, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	for _, c := range crews {
		days := make([]string, 0, 7)
		for _, d := range c.ActiveDays() {
			days = append(days, strings.ToLower(d.String()[:3]))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%dh x %d techs\t%s\n",
			c.Trade, c.ShiftDurationHours, c.TechniciansPerCrew, strings.Join(days, ","))
	}
	return nil
}

func runShiftsAdd(cmd *cobra.Command, args []string) error {
	c := model.Crew{
		Trade:              shiftTrade,
		ShiftDurationHours: shiftHours,
		TechniciansPerCrew: shiftTechs,
	}
	if err := applyDays(&c, shiftDays); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}

	store, err := openRegistry(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return store.Add(cmd.Context(), c)
}

func runShiftsRm(cmd *cobra.Command, args []string) error {
	store, err := openRegistry(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return store.Delete(cmd.Context(), args[0])
}

func applyDays(c *model.Crew, spec string) error {
	for _, tok := range strings.Split(spec, ",") {
		switch strings.ToLower(strings.TrimSpace(tok)) {
		case "mon":
			c.Monday = true
		case "tue":
			c.Tuesday = true
		case "wed":
			c.Wednesday = true
		case "thu":
			c.Thursday = true
		case "fri":
			c.Friday = true
		case "sat":
			c.Saturday = true
		case "sun":
			c.Sunday = true
		case "":
		default:
			return fmt.Errorf("unknown day %q", tok)
		}
	}
	return nil
}
