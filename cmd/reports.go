package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mateai/mate/internal/export"
	"github.com/mateai/mate/internal/gateway"
	"github.com/mateai/mate/internal/logger"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List or export performance reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List performance reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		reports, err := fetchReports(cmd)
		if err != nil {
			return err
		}
		if len(reports) == 0 {
			fmt.Println("No hay reportes.")
			return nil
		}

		fmt.Printf("%-16s  %-24s  %-11s  %5s  %8s  %6s\n",
			"Fecha", "Tema", "Tipo", "Grado", "Aciertos", "Punt.")
		fmt.Println(strings.Repeat("─", 80))
		for _, r := range reports {
			fmt.Printf("%-16s  %-24s  %-11s  %5s  %4d/%-3d  %5d%%\n",
				r.Date.Local().Format("2006-01-02 15:04"),
				truncate(r.Topic, 24),
				r.PracticeType,
				r.Grade,
				r.CorrectAnswers, r.TotalQuestions,
				r.Score,
			)
		}
		return nil
	},
}

var reportsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export performance reports to an .xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			return fmt.Errorf("--out is required")
		}

		reports, err := fetchReports(cmd)
		if err != nil {
			return err
		}

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		if err := export.WriteReports(f, reports); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", out, err)
		}
		fmt.Printf("%d reportes exportados a %s\n", len(reports), out)
		return nil
	},
}

// fetchReports lists the reports matching the command's filter flags.
// Students only see their own reports unless --student is given.
func fetchReports(cmd *cobra.Command) ([]gateway.PerformanceReport, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	gw, err := newGateway(cfg, logger.NewNop())
	if err != nil {
		return nil, err
	}
	u, err := requireLogin(gw)
	if err != nil {
		return nil, err
	}

	filter := gateway.ReportFilter{}
	filter.StudentID, _ = cmd.Flags().GetString("student")
	filter.Topic, _ = cmd.Flags().GetString("topic")
	filter.Limit, _ = cmd.Flags().GetInt("limit")
	if filter.StudentID == "" && u.Role == gateway.RoleStudent {
		filter.StudentID = u.ID
	}
	return gw.ListPerformanceReports(cmd.Context(), filter)
}

func init() {
	for _, c := range []*cobra.Command{reportsListCmd, reportsExportCmd} {
		c.Flags().String("student", "", "Filter by student ID")
		c.Flags().String("topic", "", "Filter by topic")
		c.Flags().IntP("limit", "n", 0, "Maximum number of reports (0 = all)")
	}
	reportsExportCmd.Flags().StringP("out", "o", "", "Output .xlsx file")

	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsExportCmd)
}
