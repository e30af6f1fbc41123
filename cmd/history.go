package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "List local practice sessions, or the attempts of one session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		repo := s.EventRepo()

		if len(args) == 1 {
			attempts, err := repo.SessionAttempts(ctx, args[0])
			if err != nil {
				return fmt.Errorf("query attempts: %w", err)
			}
			if len(attempts) == 0 {
				fmt.Println("No attempts recorded for this session.")
				return nil
			}
			for _, a := range attempts {
				mark := "✓"
				switch {
				case a.Unvalidated:
					mark = "?"
				case !a.Correct:
					mark = "✗"
				}
				answer := a.Answer
				if answer == "" {
					answer = "(sin respuesta)"
				}
				fmt.Printf("%s  %s  %s\n", a.Timestamp.Local().Format("15:04:05"), mark, a.Statement)
				fmt.Printf("     respuesta: %s   correcta: %s   pistas: %d\n", answer, a.CorrectAnswer, a.HintsUsed)
			}
			return nil
		}

		limit, _ := cmd.Flags().GetInt("limit")
		sessions, err := repo.ListSessions(ctx, limit)
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions recorded yet.")
			return nil
		}

		fmt.Printf("%-36s  %-16s  %-11s  %-20s  %7s  %5s  %s\n",
			"Session", "Started", "Kind", "Topic", "Correct", "Score", "Status")
		fmt.Println(strings.Repeat("─", 116))
		for _, ss := range sessions {
			fmt.Printf("%-36s  %-16s  %-11s  %-20s  %3d/%-3d  %4d%%  %s\n",
				ss.SessionID,
				ss.StartedAt.Local().Format("2006-01-02 15:04"),
				ss.Kind,
				truncate(ss.Topic, 20),
				ss.CorrectAnswers, ss.QuestionsTotal,
				ss.Score,
				ss.Status,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
}
