package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"serotonyl.ru/socialcredit/internal/common"
	"serotonyl.ru/socialcredit/internal/features/socialcredit"
)

func newScoreCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Просмотр и изменение рейтинга пользователя",
	}
	cmd.AddCommand(newScoreGetCmd(f), newScoreAddCmd(f))
	return cmd
}

func newScoreGetCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <guild> <user>",
		Short: "Показать рейтинг и звание пользователя",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			guildID, userID := args[0], args[1]

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			entry, err := s.scores.GetUserEntry(cmd.Context(), userID, guildID)
			if err != nil {
				return err
			}
			resp := socialcredit.ScoreResponse{Entry: entry, Standing: socialcredit.StandingFor(entry.Score)}
			return render(cmd.OutOrStdout(), f.format, resp, func(w io.Writer) error {
				if entry.TotalChanges > 0 {
					if _, err := fmt.Fprintf(w, "Обновлён: %s, %s %s\n",
						common.FormatDateTime(entry.LastUpdated, s.loc),
						common.FormatNumber(entry.TotalChanges), common.PluralizeChanges(entry.TotalChanges)); err != nil {
						return err
					}
				}
				return writeStanding(w, resp.Standing)
			})
		},
	}
}

type scoreAddFlags struct {
	reason   string
	username string
	message  string
}

func newScoreAddCmd(f *rootFlags) *cobra.Command {
	af := &scoreAddFlags{}

	cmd := &cobra.Command{
		Use:   "add <guild> <user> <change>",
		Short: "Изменить рейтинг пользователя на change баллов",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			guildID, userID := args[0], args[1]
			change, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("change должно быть целым числом: %w", err)
			}

			if strings.TrimSpace(af.reason) == "" {
				return common.ErrEmptyReason
			}

			opts := []socialcredit.UpdateOption{}
			if af.username != "" {
				opts = append(opts, socialcredit.WithUsername(af.username))
			}
			if cmd.Flags().Changed("message") {
				opts = append(opts, socialcredit.WithMessageContent(af.message))
			}

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			newScore, err := s.scores.UpdateScore(cmd.Context(), userID, guildID, change, af.reason, opts...)
			if err != nil {
				return err
			}
			resp := socialcredit.UpdateResponse{
				UserID:   userID,
				GuildID:  guildID,
				Change:   change,
				NewScore: newScore,
				Standing: socialcredit.StandingFor(newScore),
			}
			return render(cmd.OutOrStdout(), f.format, resp, func(w io.Writer) error {
				if _, err := fmt.Fprintf(w, "%s → %s\n", common.FormatSignedPoints(change), common.FormatPoints(newScore)); err != nil {
					return err
				}
				return writeStanding(w, resp.Standing)
			})
		},
	}
	cmd.Flags().StringVar(&af.reason, "reason", "Изменение через CLI", "Причина изменения")
	cmd.Flags().StringVar(&af.username, "username", "", "Отображаемое имя пользователя")
	cmd.Flags().StringVar(&af.message, "message", "", "Текст сообщения, вызвавшего изменение")
	return cmd
}
