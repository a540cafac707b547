package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/moviebox/internal/identity"
	"github.com/desertthunder/moviebox/internal/player"
	"github.com/desertthunder/moviebox/internal/shared"
	"github.com/urfave/cli/v3"
)

// passwordEnv supplies --password when the flag is omitted.
const passwordEnv = "MOVIEBOX_PASSWORD"

type accountView struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	MemberSince string `json:"memberSince"`
	SessionFrom string `json:"sessionFrom,omitempty"`
}

func (r *Runner) requireAccounts() error {
	if r.users == nil {
		return fmt.Errorf("%w: accounts database not initialized, run 'moviebox setup'", shared.ErrServiceUnavailable)
	}
	return nil
}

// AuthRegister creates a local account and signs it in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAccounts(); err != nil {
		return err
	}

	password := cmd.String("password")
	confirm := cmd.String("confirm")
	if confirm == "" {
		confirm = password
	}

	user, err := r.auth.Register(ctx, identity.Credentials{
		Name:            cmd.String("name"),
		Email:           strings.TrimSpace(cmd.String("email")),
		Password:        password,
		ConfirmPassword: confirm,
	})
	if err != nil {
		return err
	}

	return r.writePlain("✓ Welcome, %s! You are signed in as %s\n", user.Name(), user.Email())
}

// AuthLogin signs in with email and password and persists the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAccounts(); err != nil {
		return err
	}

	user, err := r.auth.Login(ctx, strings.TrimSpace(cmd.String("email")), cmd.String("password"))
	if err != nil {
		return err
	}

	return r.writePlain("✓ Signed in as %s (%s)\n", user.Name(), user.Email())
}

// AuthLogout clears the saved session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if !r.auth.IsAuthenticated() {
		return r.writePlain("Not signed in\n")
	}

	email := r.auth.CurrentUser().Email()
	if err := r.auth.Logout(ctx); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}

	return r.writePlain("✓ Signed out %s\n", email)
}

// AuthWhoami prints the signed-in account.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}

	user := r.auth.CurrentUser()
	view := accountView{
		ID:          user.ID(),
		Email:       user.Email(),
		Name:        user.Name(),
		MemberSince: user.CreatedAt().Format("January 2006"),
	}
	if s := r.auth.Session(); s != nil {
		view.SessionFrom = s.CreatedAt.Format("2006-01-02 15:04")
	}

	if cmd.Bool("json") {
		return r.writeJSON(view, cmd.Bool("pretty"))
	}

	r.writePlain("%s <%s>\n", view.Name, view.Email)
	r.writePlain("Member since %s\n", view.MemberSince)
	if view.SessionFrom != "" {
		r.writePlain("Signed in %s\n", view.SessionFrom)
	}
	return nil
}

// AuthProfile renames the signed-in account.
func (r *Runner) AuthProfile(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}

	name := strings.TrimSpace(cmd.String("name"))
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", shared.ErrInvalidArgument)
	}
	if err := r.auth.UpdateProfile(name); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return r.writePlain("✓ Display name set to %s\n", name)
}

// AuthPreferences prints the signed-in user's preferences, applying any flags that were set first.
func (r *Runner) AuthPreferences(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}

	prefs := r.auth.CurrentUser().Preferences()
	changed := false

	if cmd.IsSet("quality") {
		q, err := player.ParseQuality(cmd.String("quality"))
		if err != nil {
			return err
		}
		prefs.WatchQuality = string(q)
		changed = true
	}
	if cmd.IsSet("language") {
		prefs.Language = cmd.String("language")
		changed = true
	}
	if cmd.IsSet("autoplay") {
		prefs.AutoPlay = cmd.Bool("autoplay")
		changed = true
	}
	if cmd.IsSet("adult") {
		prefs.ShowAdultContent = cmd.Bool("adult")
		changed = true
	}
	if cmd.IsSet("notifications") {
		prefs.Notifications = cmd.Bool("notifications")
		changed = true
	}
	if cmd.IsSet("genre") {
		prefs.FavoriteGenres = cmd.IntSlice("genre")
		changed = true
	}

	if changed {
		if err := r.auth.UpdatePreferences(prefs); err != nil {
			return fmt.Errorf("failed to update preferences: %w", err)
		}
		r.logger.Info("preferences updated", "user", r.auth.CurrentUser().Email())
	}

	if cmd.Bool("json") {
		return r.writeJSON(prefs, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Preferences")
	r.writePlain("Quality:        %s\n", prefs.WatchQuality)
	r.writePlain("Language:       %s\n", prefs.Language)
	r.writePlain("Autoplay:       %t\n", prefs.AutoPlay)
	r.writePlain("Adult content:  %t\n", prefs.ShowAdultContent)
	r.writePlain("Notifications:  %t\n", prefs.Notifications)
	r.writePlain("Genres:         %v\n", prefs.FavoriteGenres)
	return nil
}
