package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/qacker/backend/scoreledger"
	"github.com/qacker/backend/scoresrvc"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3498db"))
	gainStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ecc71"))
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e74c3c"))
)

func newMissedCmd() *cobra.Command {
	var missedCmd = &cobra.Command{
		Use:   "missed",
		Short: "Missed task handling",
	}
	missedCmd.AddCommand(&cobra.Command{
		Use:   "sweep",
		Short: "Mark overdue tasks missed and charge penalties",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := application.ScoreSrvc.CheckAndApplyMissedPenalties(cmd.Context())
			log.Info().
				Int("scanned", res.Scanned).
				Int("penalized", res.Penalized).
				Int("skipped", res.Skipped).
				Msg("sweep finished")
			return err
		},
	})
	return missedCmd
}

func newScoresCmd() *cobra.Command {
	var scoresCmd = &cobra.Command{
		Use:   "scores",
		Short: "Score reconciliation",
	}

	var rule string
	var rebuildCmd = &cobra.Command{
		Use:   "rebuild",
		Short: "Recompute stored scores from submission history",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := application.RebuildRule()
			if rule != "" {
				parsed, err := scoresrvc.ParseRebuildRule(rule)
				if err != nil {
					return err
				}
				r = parsed
			}
			res, err := application.ScoreSrvc.Rebuild(cmd.Context(), r)
			if err != nil {
				return err
			}
			log.Info().Str("rule", string(res.Rule)).Int("users", len(res.Scores)).Msg("scores rebuilt")
			return nil
		},
	}
	rebuildCmd.Flags().StringVar(&rule, "rule", "", "Rebuild rule [all, latest]; defaults to SCORE_REBUILD_RULE")

	scoresCmd.AddCommand(rebuildCmd)
	return scoresCmd
}

func newLeaderboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the contributor leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := application.ScoreSrvc.Leaderboard(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(renderLeaderboard(rows))
			return nil
		},
	}
}

func renderLeaderboard(rows []scoresrvc.LeaderboardRow) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headerStyle.Render("#"), headerStyle.Render("Name"), headerStyle.Render("Score"))
	for _, r := range rows {
		t.Row(strconv.Itoa(r.Rank), r.Name, signed(r.TotalScore))
	}
	return t.Render()
}

func newHistoryCmd() *cobra.Command {
	var userID string
	var historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Print a user's score audit trail",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := application.Ledger.History(cmd.Context(), userID)
			if err != nil {
				return err
			}
			fmt.Println(renderHistory(entries))
			return nil
		},
	}
	historyCmd.Flags().StringVar(&userID, "user", "", "User id (required)")
	historyCmd.MarkFlagRequired("user")
	return historyCmd
}

func renderHistory(entries []scoreledger.Entry) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headerStyle.Render("At"), headerStyle.Render("Kind"), headerStyle.Render("Change"), headerStyle.Render("Score"), headerStyle.Render("Task"))
	for _, e := range entries {
		change := signed(e.Delta)
		if e.Kind == scoreledger.KindRebuild {
			change = "= (" + e.Rule + ")"
		}
		t.Row(e.At.Format("2006-01-02 15:04"), string(e.Kind), change, strconv.Itoa(e.NewScore), e.TaskID)
	}
	return t.Render()
}

func signed(n int) string {
	switch {
	case n > 0:
		return gainStyle.Render("+" + strconv.Itoa(n))
	case n < 0:
		return lossStyle.Render(strconv.Itoa(n))
	}
	return "0"
}
