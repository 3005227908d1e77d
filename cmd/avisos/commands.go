package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/proneo/platform/internal/alerts"
	"github.com/proneo/platform/internal/dismissal"
	"github.com/proneo/platform/internal/domain"
	"github.com/proneo/platform/internal/feed"
	"github.com/proneo/platform/internal/localstate"
	"github.com/proneo/platform/internal/roster"
	"github.com/proneo/platform/internal/settings"
	"github.com/spf13/cobra"
)

type cli struct {
	out         io.Writer
	profilePath string
	statePath   string
	prof        profile
	loc         *time.Location
	now         func() time.Time
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out, now: time.Now}

	root := &cobra.Command{
		Use:           "avisos",
		Short:         "Roster alerts from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd)
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&c.profilePath, "profile", defaultProfilePath, "YAML profile (role, category, state_file, settings)")
	root.PersistentFlags().StringVar(&c.statePath, "state", "", "state file, overrides the profile's state_file")

	root.AddCommand(c.feedCmd(), c.completeCmd(), c.snoozeCmd(), c.resetCmd(), c.settingsCmd())
	return root
}

func (c *cli) init(cmd *cobra.Command) error {
	prof, err := loadProfile(c.profilePath, cmd.Flags().Changed("profile"))
	if err != nil {
		return err
	}
	if c.statePath != "" {
		prof.StateFile = c.statePath
	}
	loc, err := time.LoadLocation(prof.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}
	c.prof = prof
	c.loc = loc
	return nil
}

func (c *cli) store() localstate.Store {
	return localstate.NewFileStore(c.prof.StateFile)
}

func (c *cli) feedCmd() *cobra.Command {
	var (
		snapshot string
		role     string
		category string
		nowFlag  string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Print the ordered alert feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if !cmd.Flags().Changed("snapshot") {
				snapshot = c.prof.Snapshot
			}
			if snapshot == "" {
				return fmt.Errorf("--snapshot is required")
			}
			r := c.prof.Role
			if cmd.Flags().Changed("role") {
				r = domain.Role(role)
			}
			if !r.Valid() {
				return fmt.Errorf("unknown role: %s", r)
			}
			cat := c.prof.Category
			if cmd.Flags().Changed("category") {
				cat = domain.Category(category)
			}
			if err := domain.ValidateCategoryFilter(cat); err != nil {
				return err
			}
			now, err := c.parseNow(nowFlag)
			if err != nil {
				return err
			}

			src, err := roster.LoadStaticSource(snapshot)
			if err != nil {
				return err
			}
			dis := dismissal.New(c.store())
			if err := dis.Load(ctx); err != nil {
				return err
			}
			set := settings.NewAlertSettings(c.store())
			if err := set.Load(ctx); err != nil {
				return err
			}

			candidates := alerts.Derive(src.Players, src.Pending, r, now)
			visible := feed.Build(candidates, dis, c.prof.overlay(set.Toggles()), domain.CategoryAll, now)
			shown := feed.FilterCategory(visible, cat)

			if asJSON {
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"alerts":     shown,
					"total":      len(shown),
					"categories": feed.CountByCategory(visible),
				})
			}
			return printFeed(c.out, shown, feed.CountByCategory(visible), len(visible))
		},
	}
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "roster snapshot JSON {\"players\": [...], \"pending\": [...]}")
	cmd.Flags().StringVar(&role, "role", "", "role of the viewer")
	cmd.Flags().StringVar(&category, "category", "", "Todos, a sport, or Seguridad")
	cmd.Flags().StringVar(&nowFlag, "now", "", "evaluate as of this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (c *cli) parseNow(s string) (time.Time, error) {
	if s == "" {
		return c.now().In(c.loc), nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("--now must be YYYY-MM-DD: %w", err)
	}
	return t, nil
}

func printFeed(out io.Writer, shown []domain.Alert, counts map[domain.Category]int, total int) error {
	if len(shown) == 0 {
		fmt.Fprintln(out, "Sin avisos pendientes.")
	} else {
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PRIORITY\tCATEGORY\tID\tTITLE\tMESSAGE")
		for _, a := range shown {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.Priority, a.Category, a.ID, a.Title, a.Message)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	cats := make([]string, 0, len(counts))
	for cat, n := range counts {
		cats = append(cats, fmt.Sprintf("%s %d", cat, n))
	}
	sort.Strings(cats)
	cats = append([]string{fmt.Sprintf("%s %d", domain.CategoryAll, total)}, cats...)
	fmt.Fprintln(out, strings.Join(cats, " | "))
	return nil
}

func (c *cli) completeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <alert-id>",
		Short: "Mark an alert as done on this installation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dis := dismissal.New(c.store())
			if err := dis.Load(cmd.Context()); err != nil {
				return err
			}
			if err := dis.Complete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "completed %s\n", args[0])
			return nil
		},
	}
}

func (c *cli) snoozeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snooze <alert-id>",
		Short: "Hide an alert for 24 hours",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dis := dismissal.New(c.store())
			if err := dis.Load(cmd.Context()); err != nil {
				return err
			}
			now := c.now()
			if err := dis.Snooze(cmd.Context(), args[0], now); err != nil {
				return err
			}
			until := now.Add(dismissal.SnoozeDuration).In(c.loc)
			fmt.Fprintf(c.out, "snoozed %s until %s\n", args[0], until.Format("2006-01-02 15:04"))
			return nil
		},
	}
}

func (c *cli) resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget every completed and snoozed alert",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dis := dismissal.New(c.store())
			if err := dis.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "dismissals cleared")
			return nil
		},
	}
}

func (c *cli) settingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings [kind on|off]",
		Short: "Show or change which alert kinds are shown",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no arguments or <kind> on|off")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			set := settings.NewAlertSettings(c.store())
			if err := set.Load(cmd.Context()); err != nil {
				return err
			}
			if len(args) == 2 {
				var enabled bool
				switch args[1] {
				case "on":
					enabled = true
				case "off":
				default:
					return fmt.Errorf("expected on or off, got %q", args[1])
				}
				if err := set.Set(cmd.Context(), domain.AlertKind(args[0]), enabled); err != nil {
					return err
				}
			}

			toggles := c.prof.overlay(set.Toggles())
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			for _, k := range domain.AlertKinds() {
				state := "off"
				if toggles.Enabled(k) {
					state = "on"
				}
				if k.Mandatory() {
					state += " (obligatorio)"
				}
				fmt.Fprintf(tw, "%s\t%s\n", k, state)
			}
			return tw.Flush()
		},
	}
}
