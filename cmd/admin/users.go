package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qacker/backend/user"
	"github.com/qacker/backend/user/auth"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	var userCmd = &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var id, name, role string
	var addCmd = &cobra.Command{
		Use:   "add",
		Short: "Register a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := newUser(id, name, role, time.Now())
			if err != nil {
				return err
			}
			if err := application.Users.StoreUser(cmd.Context(), u); err != nil {
				return err
			}
			log.Info().Str("id", u.ID).Str("role", string(u.Role)).Msg("user added")
			fmt.Println(u.ID)
			return nil
		},
	}
	addCmd.Flags().StringVar(&id, "id", "", "User id token (generated when empty)")
	addCmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	addCmd.Flags().StringVar(&role, "role", string(user.RoleContributor), "Role [admin, contributor]")
	addCmd.MarkFlagRequired("name")

	userCmd.AddCommand(addCmd)
	return userCmd
}

func newUser(id, name, role string, now time.Time) (user.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return user.User{}, user.ErrNameEmpty()
	}
	r := user.Role(role)
	if !r.Valid() {
		return user.User{}, user.ErrInvalidRole()
	}
	if id == "" {
		id = uuid.NewString()
	}
	return user.User{ID: id, Name: name, Role: r, CreatedAt: now}, nil
}

func newTokenCmd() *cobra.Command {
	var userID string
	var ttl time.Duration
	var tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := application.Users.GetUser(cmd.Context(), userID)
			if err != nil {
				return err
			}
			key, err := application.JwtKey(cmd.Context())
			if err != nil {
				return err
			}
			token, err := auth.GenerateJWT(u.ID, u.Name, string(u.Role), ttl, key)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&userID, "user", "", "User id (required)")
	tokenCmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTokenTTL, "Token lifetime")
	tokenCmd.MarkFlagRequired("user")
	return tokenCmd
}
