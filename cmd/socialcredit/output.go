package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"serotonyl.ru/socialcredit/internal/common"
	"serotonyl.ru/socialcredit/internal/features/monitoring"
	"serotonyl.ru/socialcredit/internal/features/socialcredit"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("неизвестный формат %q: ожидается text, json или yaml", format)
	}
}

// render пишет v в выбранном формате. text отдаётся функции text.
func render(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(w)
	}
}

func writeStanding(w io.Writer, s socialcredit.Standing) error {
	_, err := fmt.Fprintf(w, "%s %s\n%s\nРейтинг: %s\n",
		s.Rank.Emoji, s.Rank.Name, s.Rank.Description, common.FormatPoints(s.Score))
	if err != nil {
		return err
	}
	if s.Penalty != socialcredit.PenaltyNone {
		if _, err := fmt.Fprintf(w, "Наказание: %s\n", s.Penalty); err != nil {
			return err
		}
	}
	if s.Privilege != socialcredit.PrivilegeNone {
		if _, err := fmt.Fprintf(w, "Привилегии: %s\n", s.Privilege); err != nil {
			return err
		}
	}
	return nil
}

func writeLeaderboard(w io.Writer, entries []*socialcredit.ScoreEntry, global bool) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "Рейтинг пуст")
		return err
	}
	for i, e := range entries {
		name := e.Username
		if name == "" {
			name = e.UserID
		}
		rank := socialcredit.Classify(e.Score)
		line := fmt.Sprintf("%2d. %s %s: %s", i+1, rank.Emoji, name, common.FormatPoints(e.Score))
		if global {
			line += fmt.Sprintf(" (сервер %s)", e.GuildID)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeHistory(w io.Writer, history []*socialcredit.ScoreHistory, loc *time.Location) error {
	if len(history) == 0 {
		_, err := fmt.Fprintln(w, "Истории изменений нет")
		return err
	}
	for _, h := range history {
		_, err := fmt.Fprintf(w, "%s  %s  (%s → %s)  %s\n",
			common.FormatDateTime(h.Timestamp, loc),
			common.FormatSignedPoints(h.ScoreChange),
			common.FormatNumber(h.PreviousScore),
			common.FormatNumber(h.NewScore),
			h.Reason,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeStats(w io.Writer, s *socialcredit.ServerStats) error {
	_, err := fmt.Fprintf(w,
		"Сервер %s\n%s %s\nСредний рейтинг: %.2f\nМаксимум: %s\nМинимум: %s\nВсего: %s %s\n",
		s.GuildID,
		common.FormatNumber(s.TotalUsers), common.PluralizeUsers(s.TotalUsers),
		s.AverageScore,
		common.FormatPoints(s.HighestScore),
		common.FormatPoints(s.LowestScore),
		common.FormatNumber(s.TotalScoreChanges), common.PluralizeChanges(s.TotalScoreChanges),
	)
	return err
}

func writeChannels(w io.Writer, channels []*monitoring.Channel, loc *time.Location) error {
	if len(channels) == 0 {
		_, err := fmt.Fprintln(w, "Отслеживаемых каналов нет")
		return err
	}
	for _, c := range channels {
		_, err := fmt.Fprintf(w, "%s  %s  добавил %s %s\n",
			c.ChannelID, c.DisplayName(), c.AddedBy, common.FormatDateTime(c.AddedAt, loc))
		if err != nil {
			return err
		}
	}
	return nil
}
