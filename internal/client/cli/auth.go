package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/labscribe/internal/client/identity"
	"github.com/dmitrijs2005/labscribe/internal/client/session"
	"github.com/dmitrijs2005/labscribe/internal/client/validate"
	"github.com/dmitrijs2005/labscribe/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

func authMessage(err error) string {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, identity.ErrEmailTaken):
		return "An account with this email already exists"
	case errors.Is(err, identity.ErrWeakCredential):
		return "Password is too weak"
	case errors.Is(err, session.ErrSuperseded):
		return "Sign-in was cancelled by a sign-out"
	default:
		return "Could not reach the server, please try again"
	}
}

// entry is where the gate sends signed-out users.
func (a *App) entry(ctx context.Context) error {
	a.println("You need to sign in to open this page.")
	choice, err := getSimpleText(a.reader, "Sign (i)n, sign (u)p, or press Enter to go back", a.out)
	if err != nil {
		return nil
	}
	switch strings.ToLower(choice) {
	case "i", "in", "signin":
		return a.SignIn(ctx)
	case "u", "up", "signup":
		return a.SignUp(ctx)
	default:
		return nil
	}
}

// SignIn prompts for credentials, validates them and signs in. Any failure
// is reported through the notifier and leaves the session as it was. The
// password is wiped before returning.
func (a *App) SignIn(ctx context.Context) error {
	if a.isSignedIn() {
		a.printf("Already signed in as %s\n", a.status())
		return nil
	}

	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	form := validate.SignIn{Email: email, Password: string(password)}
	if err := form.Validate(); err != nil {
		a.notifier.Error(validate.First(err, validate.SignInOrder...))
		return err
	}

	if err := a.session.SignIn(ctx, form.Email, form.Password); err != nil {
		a.log.Info(ctx, "sign in failed", "error", err)
		a.notifier.Error(authMessage(err))
		return err
	}
	a.notifier.Success("Signed in successfully!")
	return nil
}

// SignUp prompts for the sign-up form, validates it and creates the account.
func (a *App) SignUp(ctx context.Context) error {
	if a.isSignedIn() {
		a.printf("Already signed in as %s\n", a.status())
		return nil
	}

	fullName, err := getSimpleText(a.reader, "Full name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirm, err := getPassword(a.reader, "Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	form := validate.SignUp{
		FullName:        fullName,
		Email:           email,
		Password:        string(password),
		ConfirmPassword: string(confirm),
	}
	if err := form.Validate(); err != nil {
		a.notifier.Error(validate.First(err, validate.SignUpOrder...))
		return err
	}

	if err := a.session.SignUp(ctx, form.Email, form.Password, form.FullName); err != nil {
		a.log.Info(ctx, "sign up failed", "error", err)
		a.notifier.Error(authMessage(err))
		return err
	}
	a.notifier.Success("Account created successfully!")
	return nil
}

// SignOut ends the session locally even when the server cannot be told.
func (a *App) SignOut(ctx context.Context) error {
	if !a.isSignedIn() {
		a.println("Not signed in")
		return nil
	}
	if err := a.session.SignOut(ctx); err != nil {
		a.log.Warn(ctx, "sign out incomplete", "error", err)
	}
	a.notifier.Success("Signed out successfully")
	return nil
}
