package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"serotonyl.ru/socialcredit/internal/common"
	"serotonyl.ru/socialcredit/internal/features/socialcredit"
)

func newLeaderboardCmd(f *rootFlags) *cobra.Command {
	var (
		guildID string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Таблица лидеров сервера или глобальная",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			var entries []*socialcredit.ScoreEntry
			if guildID == "" {
				entries, err = s.scores.GlobalLeaderboard(cmd.Context(), limit)
			} else {
				entries, err = s.scores.ServerLeaderboard(cmd.Context(), guildID, limit)
			}
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), f.format, entries, func(w io.Writer) error {
				return writeLeaderboard(w, entries, guildID == "")
			})
		},
	}
	cmd.Flags().StringVar(&guildID, "guild", "", "ID сервера; пусто — глобальная таблица")
	cmd.Flags().IntVar(&limit, "limit", common.DefaultLimit, "Сколько записей показать")
	return cmd
}

func newHistoryCmd(f *rootFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <guild> <user>",
		Short: "История изменений рейтинга, новые сверху",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			history, err := s.scores.UserHistory(cmd.Context(), args[1], args[0], limit)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), f.format, history, func(w io.Writer) error {
				return writeHistory(w, history, s.loc)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", common.DefaultLimit, "Сколько записей показать")
	return cmd
}

func newStatsCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <guild>",
		Short: "Статистика рейтинга сервера",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			stats, err := s.scores.ServerStats(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), f.format, stats, func(w io.Writer) error {
				return writeStats(w, stats)
			})
		},
	}
}

// rank не трогает хранилище: звание зависит только от числа.
func newRankCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rank <score>",
		Short: "Звание, наказание и привилегии для рейтинга",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("рейтинг должен быть целым числом: %w", err)
			}
			standing := socialcredit.StandingFor(score)
			return render(cmd.OutOrStdout(), f.format, standing, func(w io.Writer) error {
				return writeStanding(w, standing)
			})
		},
	}
}
