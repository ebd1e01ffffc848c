package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newChannelsCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channels",
		Short: "Управление отслеживаемыми каналами",
	}
	cmd.AddCommand(newChannelsListCmd(f), newChannelsAddCmd(f), newChannelsRemoveCmd())
	return cmd
}

func newChannelsListCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list <guild>",
		Short: "Список отслеживаемых каналов сервера",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			channels, err := s.channels.ListChannels(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), f.format, channels, func(w io.Writer) error {
				return writeChannels(w, channels, s.loc)
			})
		},
	}
}

func newChannelsAddCmd(f *rootFlags) *cobra.Command {
	var name, addedBy string

	cmd := &cobra.Command{
		Use:   "add <guild> <channel>",
		Short: "Начать отслеживать канал",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			ch, err := s.channels.AddChannel(cmd.Context(), args[0], args[1], name, addedBy)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), f.format, ch, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Канал %s отслеживается\n", ch.DisplayName())
				return err
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Название канала")
	cmd.Flags().StringVar(&addedBy, "added-by", "cli", "Кто добавил канал")
	return cmd
}

func newChannelsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <guild> <channel>",
		Short: "Перестать отслеживать канал",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			removed, err := s.channels.RemoveChannel(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("канал %s не отслеживался", args[1])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Канал %s больше не отслеживается\n", args[1])
			return nil
		},
	}
}
