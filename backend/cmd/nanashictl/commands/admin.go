package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/itchan-dev/nanashi/backend/internal/service"
	"github.com/itchan-dev/nanashi/shared/jwt"
	"github.com/spf13/cobra"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print the bcrypt hash for admin_password_hash",
	Long:  "Hashes the password given as an argument, or the first line of stdin when there is none.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var password string
		if len(args) == 1 {
			password = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}
		hash, err := service.HashPassword(password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an admin token signed with the configured jwt_key",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		token, err := jwt.New(cfg.JwtKey(), cfg.JwtTTL()).NewAdminToken()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd, tokenCmd)
}
