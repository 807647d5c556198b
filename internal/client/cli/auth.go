package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/mealkeeper/internal/client/models"
	"github.com/dmitrijs2005/mealkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the account fields and creates the account. The user
// still has to log in afterwards.
func (a *App) Register(ctx context.Context) error {
	var req models.RegisterRequest
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Enter username", &req.Username},
		{"Enter email", &req.Email},
		{"Enter first name", &req.FirstName},
		{"Enter last name", &req.LastName},
		{"Enter date of birth (YYYY-MM-DD)", &req.DateOfBirth},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.in, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	req.Password = string(password)

	ack, err := a.session.Register(ctx, req)
	if err != nil {
		return err
	}

	if ack.Message != "" {
		fmt.Fprintln(a.out, ack.Message)
	} else {
		fmt.Fprintln(a.out, "Success! You can log in now.")
	}
	return nil
}

// Login prompts for credentials and signs in. The password byte slice is
// wiped before returning.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.in, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Login(ctx, models.Credentials{Username: username, Password: string(password)}); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", a.session.Snapshot().Profile.DisplayName())
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	return a.session.Logout(ctx)
}

// Status prints the current session state.
func (a *App) Status(_ context.Context) error {
	snap := a.session.Snapshot()
	fmt.Fprintf(a.out, "status: %s\n", snap.Status)
	if snap.Profile != nil {
		p := snap.Profile
		fmt.Fprintf(a.out, "user:   %s (%s)\n", p.DisplayName(), p.Username)
		fmt.Fprintf(a.out, "email:  %s\n", p.Email)
		fmt.Fprintf(a.out, "meals:  %d\n", p.MealCount)
	}
	if snap.IsRefreshing {
		fmt.Fprintln(a.out, "refresh in progress")
	}
	return nil
}
