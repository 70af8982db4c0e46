package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/2beens/gymtracker/internal/fitness"
	"github.com/2beens/gymtracker/internal/identity"
	"github.com/2beens/gymtracker/internal/ui"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// IdentityListener follows the signed in user: a new identity gets its own
// subscriptions and the dashboard, a sign out drops them and shows the
// sign in view again.
func (c *Commander) IdentityListener(ctx context.Context) func(*identity.Identity) {
	return func(id *identity.Identity) {
		c.renderer.Reset()
		if id == nil {
			c.subscriptions.SignOut()
			c.display.ShowStatic(ui.AuthView())
			return
		}

		if err := c.subscriptions.SignIn(ctx, id.UserID); err != nil {
			log.Errorf("commander: subscribe for [%s]: %s", id.UserID, err)
			c.notifier.Notify("Could not load all of your data. Try signing in again.", false)
		}
		c.router.Navigate(ui.PageDashboard)
	}
}

func (c *Commander) credentials(ctx context.Context, args []string) (email, password string, err error) {
	switch len(args) {
	case 1:
		password, err = c.prompter.Ask(ctx, "Password")
		if err != nil {
			return "", "", err
		}
	case 2:
		password = args[1]
	default:
		return "", "", errUsage
	}
	return strings.TrimSpace(args[0]), password, nil
}

func (c *Commander) signUp(ctx context.Context, args []string) error {
	email, password, err := c.credentials(ctx, args)
	if err != nil {
		return err
	}
	if len(password) < identity.MinPasswordLength {
		c.notifier.Notify(identity.Message(identity.ErrWeakPassword), false)
		return nil
	}

	id, err := c.identity.SignUp(ctx, email, password)
	if err != nil {
		log.Warnf("commander: sign up: %s", err)
		c.notifier.Notify(identity.Message(err), false)
		return nil
	}

	if err := c.seedRoutines(ctx, id.UserID); err != nil {
		return c.storeFailure("seed_routines", "Your account is ready, but the default routines could not be created.", err)
	}
	c.notifier.Notify("Welcome! Your account is ready.", true)
	return nil
}

// seedRoutines gives a new account the default routines.
func (c *Commander) seedRoutines(ctx context.Context, userID string) error {
	routines, err := fitness.DefaultRoutines()
	if err != nil {
		return fmt.Errorf("load default routines: %w", err)
	}

	var seedErr error
	for _, r := range routines {
		if _, err := c.docStore.Create(ctx, fitness.CollectionRoutines.Path(userID), r.Fields()); err != nil {
			seedErr = multierr.Append(seedErr, fmt.Errorf("create routine %s: %w", r.Name, err))
		}
	}
	return seedErr
}

func (c *Commander) signIn(ctx context.Context, args []string) error {
	email, password, err := c.credentials(ctx, args)
	if err != nil {
		return err
	}
	if err := c.identity.SignIn(ctx, email, password); err != nil {
		log.Warnf("commander: sign in: %s", err)
		c.notifier.Notify(identity.Message(err), false)
	}
	return nil
}

func (c *Commander) signOut(ctx context.Context, _ []string) error {
	if err := c.identity.SignOut(ctx); err != nil {
		return &failure{message: "Could not sign out. Try again.", err: err}
	}
	c.notifier.Notify("Signed out.", true)
	return nil
}
