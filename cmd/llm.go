package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mateai/mate/internal/llm"
	"github.com/mateai/mate/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect and prune recorded LLM calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		session, _ := cmd.Flags().GetString("session")

		return withEvents(cmd, func(repo store.EventRepo) error {
			events, err := repo.QueryLLMEvents(cmd.Context(), store.QueryOpts{
				Limit: limit, Purpose: purpose, SessionID: session,
			})
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			writeLLMEvents(cmd.OutOrStdout(), events)
			return nil
		})
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full request and response of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q", args[0])
		}
		return withEvents(cmd, func(repo store.EventRepo) error {
			e, err := repo.GetLLMEvent(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get event: %w", err)
			}
			if e == nil {
				return fmt.Errorf("event %d not found", id)
			}
			writeLLMEvent(cmd.OutOrStdout(), e)
			return nil
		})
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEvents(cmd, func(repo store.EventRepo) error {
			byPurpose, err := repo.LLMUsageByPurpose(cmd.Context())
			if err != nil {
				return fmt.Errorf("query usage: %w", err)
			}
			byModel, err := repo.LLMUsageByModel(cmd.Context())
			if err != nil {
				return fmt.Errorf("query model usage: %w", err)
			}
			writeLLMUsage(cmd.OutOrStdout(), byPurpose, byModel)
			return nil
		})
	},
}

var llmPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete LLM calls older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		retention := cfg.Server.EventRetention
		if cmd.Flags().Changed("older-than") {
			retention, _ = cmd.Flags().GetDuration("older-than")
		}
		if retention <= 0 {
			return fmt.Errorf("retention must be positive")
		}

		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		n, err := s.EventRepo().PruneLLMEvents(cmd.Context(), time.Now().Add(-retention))
		if err != nil {
			return fmt.Errorf("prune events: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d LLM events older than %s.\n", n, retention)
		return nil
	},
}

// withEvents opens the configured store for the duration of fn.
func withEvents(cmd *cobra.Command, fn func(store.EventRepo) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s.EventRepo())
}

func writeLLMEvents(w io.Writer, events []store.LLMEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No LLM events found.")
		return
	}
	fmt.Fprintf(w, "%-5s  %-19s  %-12s  %-28s  %6s  %6s  %7s  %s\n",
		"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
	fmt.Fprintln(w, strings.Repeat("─", 98))
	for _, e := range events {
		ok := "✓"
		if !e.Success {
			ok = "✗"
		}
		fmt.Fprintf(w, "%-5d  %-19s  %-12s  %-28s  %6d  %6d  %7d  %s\n",
			e.ID,
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			truncate(e.Purpose, 12),
			truncate(e.Model, 28),
			e.InputTokens, e.OutputTokens, e.LatencyMs,
			ok,
		)
	}
}

func writeLLMEvent(w io.Writer, e *store.LLMEvent) {
	fields := [][2]string{
		{"ID", strconv.Itoa(e.ID)},
		{"Time", e.Timestamp.Local().Format("2006-01-02 15:04:05")},
		{"Provider", e.Provider},
		{"Model", e.Model},
		{"Purpose", e.Purpose},
		{"Session", e.SessionID},
		{"Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens)},
		{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
		{"Success", strconv.FormatBool(e.Success)},
		{"Error", e.ErrorMessage},
	}
	for _, f := range fields {
		if f[1] != "" {
			fmt.Fprintf(w, "%-10s %s\n", f[0]+":", f[1])
		}
	}

	sep := strings.Repeat("─", 60)
	for _, body := range [][2]string{{"REQUEST", e.RequestBody}, {"RESPONSE", e.ResponseBody}} {
		fmt.Fprintf(w, "\n%s\n%s\n%s\n", sep, body[0], sep)
		if body[1] == "" {
			fmt.Fprintln(w, "(not captured)")
		} else {
			fmt.Fprintln(w, body[1])
		}
	}
}

func writeLLMUsage(w io.Writer, byPurpose []store.PurposeUsage, byModel []store.ModelUsage) {
	if len(byPurpose) == 0 {
		fmt.Fprintln(w, "No LLM usage recorded yet.")
		return
	}
	rule := strings.Repeat("─", 72)

	fmt.Fprintf(w, "Usage by Purpose\n%s\n", rule)
	fmt.Fprintf(w, "%-16s  %6s  %10s  %10s  %10s  %8s\n", "Purpose", "Calls", "Input", "Output", "Total", "Avg Ms")
	fmt.Fprintln(w, rule)
	var calls, in, out int
	for _, u := range byPurpose {
		fmt.Fprintf(w, "%-16s  %6d  %10d  %10d  %10d  %8d\n",
			u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.InputTokens+u.OutputTokens, u.AvgLatencyMs)
		calls += u.Calls
		in += u.InputTokens
		out += u.OutputTokens
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-16s  %6d  %10d  %10d  %10d\n", "TOTAL", calls, in, out, in+out)

	if len(byModel) == 0 {
		return
	}
	fmt.Fprintf(w, "\nEstimated Cost (USD)\n%s\n", rule)
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %10s\n", "Model", "Calls", "Input", "Output", "Cost")
	fmt.Fprintln(w, rule)

	var total float64
	var unknown []string
	for _, u := range byModel {
		cost := "?"
		if price := llm.LookupCost(u.Model); price != nil {
			c := price.Cost(u.InputTokens, u.OutputTokens)
			total += c
			cost = formatCost(c)
		} else {
			unknown = append(unknown, u.Model)
		}
		fmt.Fprintf(w, "%-32s  %6d  %10d  %10d  %10s\n",
			truncate(u.Model, 32), u.Calls, u.InputTokens, u.OutputTokens, cost)
	}
	fmt.Fprintln(w, rule)

	label := "TOTAL"
	if len(unknown) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %10s\n", label, "", "", "", formatCost(total))
	if len(unknown) > 0 {
		fmt.Fprintf(w, "\nPricing unavailable for: %s\n", strings.Join(unknown, ", "))
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (exercise-gen, hint, validate, report, explanation)")
	llmListCmd.Flags().String("session", "", "Filter by practice session ID")
	llmPruneCmd.Flags().Duration("older-than", 0, "Retention window (default: MATE_LLM_EVENT_RETENTION)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
	llmCmd.AddCommand(llmPruneCmd)
}
