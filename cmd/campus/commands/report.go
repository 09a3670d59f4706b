package commands

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/mmcdole/campus/internal/api"
	"github.com/mmcdole/campus/internal/attendance"
	"github.com/mmcdole/campus/internal/domain"
	"github.com/mmcdole/campus/internal/listcache"
	"github.com/mmcdole/campus/internal/subject"
	"github.com/mmcdole/campus/internal/tui/styles"
)

func reportCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print subject and attendance counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cfg.IsConfigured() {
				return errNotConfigured
			}

			gw := api.NewClient(cfg.Server.URL, cfg.Server.Token, logger)
			cache := listcache.NewClient(cfg.ListCache(), nil, logger)
			defer cache.Reset()

			subjects := subject.NewList(cache, gw.Subjects())
			records := attendance.NewList(cache, gw.Attendance(), status)
			for _, open := range []func() error{subjects.Open, records.Open} {
				if err := open(); err != nil {
					return err
				}
			}
			subjects.Wait()
			records.Wait()

			if err := subjects.Err(); err != nil {
				return fmt.Errorf("failed to load subjects: %w", err)
			}
			if err := records.Err(); err != nil {
				return fmt.Errorf("failed to load attendance: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, counterTable("Subjects", subjects.Statistics(), domain.SubjectCategories))
			attendanceTable := counterTable("Attendance", records.Statistics(), domain.AttendanceStatuses).
				Row("rate", fmt.Sprintf("%.1f%%", records.Rate()*100))
			fmt.Fprintln(out, attendanceTable)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only count attendance with this status")
	return cmd
}

// counterTable lays out the total and per-category counters of a list
func counterTable(title string, stats domain.Statistics, categories []string) *table.Table {
	header := styles.TitleStyle.Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	total := cell.Bold(true)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.DimStyle).
		Headers(title, "count").
		Row("total", strconv.Itoa(stats.Total)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch row {
			case table.HeaderRow:
				return header
			case 0:
				return total
			}
			return cell
		})
	for _, c := range categories {
		t.Row(c, strconv.Itoa(stats.Count(c)))
	}
	return t
}
