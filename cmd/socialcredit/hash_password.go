package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"serotonyl.ru/socialcredit/internal/features/admin"
)

// newHashPasswordCmd печатает Argon2id-хеш для ADMIN_PASSWORD_HASH.
// Без аргумента пароль читается из первой строки stdin.
func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Сгенерировать Argon2id-хеш пароля администратора",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				sc := bufio.NewScanner(cmd.InOrStdin())
				if sc.Scan() {
					password = strings.TrimRight(sc.Text(), "\r\n")
				}
				if err := sc.Err(); err != nil {
					return err
				}
			}
			if password == "" {
				return errors.New("пароль не может быть пустым")
			}

			hash, err := admin.HashPassword(password)
			if err != nil {
				return fmt.Errorf("ошибка генерации хеша: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
