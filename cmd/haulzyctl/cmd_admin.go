package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/haulzy/haulzy-backend/internal/bootstrap"
	"github.com/haulzy/haulzy-backend/internal/users/domain"
)

var revoke bool

var makeAdminCmd = &cobra.Command{
	Use:   "make-admin <uid>",
	Short: "Grant (or with --revoke, remove) admin access for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(ctx context.Context, s *bootstrap.Services) error {
			return makeAdmin(ctx, s.Users, args[0], !revoke, cmd.OutOrStdout())
		})
	},
}

var checkAdminCmd = &cobra.Command{
	Use:   "check-admin <uid>",
	Short: "Print whether a user has admin access",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(ctx context.Context, s *bootstrap.Services) error {
			return checkAdmin(ctx, s.Users, args[0], cmd.OutOrStdout())
		})
	},
}

func init() {
	makeAdminCmd.Flags().BoolVar(&revoke, "revoke", false, "Remove admin access instead of granting it")
}

type adminSetter interface {
	SetAdmin(ctx context.Context, actor, uid string, admin bool) (domain.User, error)
}

type adminChecker interface {
	Get(ctx context.Context, uid string) (domain.User, error)
}

func makeAdmin(ctx context.Context, users adminSetter, uid string, admin bool, out io.Writer) error {
	u, err := users.SetAdmin(ctx, actor, uid, admin)
	if err != nil {
		return fmt.Errorf("update %s: %w", uid, err)
	}
	fmt.Fprintf(out, "%s (%s) role=%s isAdmin=%t\n", u.UID, u.Email, u.Role, u.IsAdmin)
	return nil
}

func checkAdmin(ctx context.Context, users adminChecker, uid string, out io.Writer) error {
	u, err := users.Get(ctx, uid)
	if err != nil {
		return fmt.Errorf("load %s: %w", uid, err)
	}
	if u.IsAdmin {
		fmt.Fprintf(out, "%s (%s) is an admin\n", u.UID, u.Email)
	} else {
		fmt.Fprintf(out, "%s (%s) is not an admin\n", u.UID, u.Email)
	}
	return nil
}
