package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/briefly/internal/client/client"
	"github.com/dmitrijs2005/briefly/internal/client/models"
	"github.com/dmitrijs2005/briefly/internal/client/services"
	"github.com/dmitrijs2005/briefly/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a new account and creates it. It does not log in.
func (a *App) Register(ctx context.Context) error {
	var reg models.Registration
	var err error

	if reg.FirstName, err = getSimpleText(a.reader, "First name", a.out); err != nil {
		return err
	}
	if reg.LastName, err = getSimpleText(a.reader, "Last name", a.out); err != nil {
		return err
	}
	if reg.PhoneNumber, err = getSimpleText(a.reader, "Phone number (optional)", a.out); err != nil {
		return err
	}
	if reg.Email, err = getSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(a.reader, a.out, "Confirm password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(password) != string(confirm) {
		return &services.ValidationError{Field: "confirmPassword", Message: "passwords do not match"}
	}
	reg.Password = string(password)

	err = a.withLoading("Creating account", func() error {
		return a.session.Register(ctx, reg)
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Account created. Type 'login' to sign in.")
	return nil
}

// Login prompts for credentials, opens a session and loads the summaries.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	err = a.withLoading("Signing in", func() error {
		return a.session.Login(ctx, email, string(password))
	})
	if err != nil {
		return err
	}

	user, _ := a.session.User()
	fmt.Fprintf(a.out, "Welcome, %s!\n", user.DisplayName())
	return a.List(ctx)
}

// Logout ends the session. The route guard prints the notice.
func (a *App) Logout(ctx context.Context) error {
	return a.session.Logout(ctx)
}

// Whoami prints the signed-in user and token expiry.
func (a *App) Whoami(ctx context.Context) error {
	sess, ok := a.session.Session()
	if !ok {
		return a.check(ctx, client.ErrUnauthenticated)
	}

	u := sess.User
	fmt.Fprintf(a.out, "Name:    %s\n", u.DisplayName())
	fmt.Fprintf(a.out, "Email:   %s\n", u.Email)
	fmt.Fprintf(a.out, "User ID: %s\n", u.ID)
	if sess.Expiry.IsZero() {
		fmt.Fprintln(a.out, "Session: expiry unknown")
	} else {
		fmt.Fprintf(a.out, "Session: valid until %s\n", sess.Expiry.Local().Format(time.RFC1123))
	}
	return nil
}

// Status verifies the persisted session and prints the result without
// starting the REPL.
func (a *App) Status(ctx context.Context) error {
	state := a.session.Verify(ctx)
	fmt.Fprintf(a.out, "Server:  %s\n", a.config.ServerURL)
	fmt.Fprintf(a.out, "Session: %s\n", state)
	if user, ok := a.session.User(); ok {
		fmt.Fprintf(a.out, "User:    %s <%s>\n", user.DisplayName(), user.Email)
	}
	return nil
}
