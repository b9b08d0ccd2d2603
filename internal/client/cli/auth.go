package cli

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/dmitrijs2005/accountd/internal/client/api"
	"github.com/dmitrijs2005/accountd/internal/common"
)

// getSimpleText, getPassword and getInt are swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getInt        = GetInt
)

var errNotLoggedIn = errors.New("not logged in")

// Register prompts for every account field and creates the account.
// The password buffer is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	var (
		req api.RegisterRequest
		err error
	)

	if req.Name, err = getSimpleText(a.reader, "Enter name", os.Stdout); err != nil {
		return a.report(err)
	}
	if req.Email, err = getSimpleText(a.reader, "Enter email", os.Stdout); err != nil {
		return a.report(err)
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return a.report(err)
	}
	defer common.WipeByteArray(password)
	req.Password = string(password)

	if req.Age, err = getInt(a.reader, "Enter age", os.Stdout); err != nil {
		return a.report(err)
	}
	if req.DOB, err = getSimpleText(a.reader, "Enter date of birth (YYYY-MM-DD)", os.Stdout); err != nil {
		return a.report(err)
	}
	if req.Contact, err = getSimpleText(a.reader, "Enter contact number (10 digits)", os.Stdout); err != nil {
		return a.report(err)
	}

	msg, err := a.api.Register(ctx, req)
	if err != nil {
		return a.report(err)
	}

	printlnFn(msg)
	return nil
}

// Login authenticates and keeps the token in memory.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return a.report(err)
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return a.report(err)
	}
	defer common.WipeByteArray(password)

	token, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		return a.report(err)
	}

	a.token = token
	a.email = email
	a.setMode(ModeOnline)
	printlnFn("Login successful")
	return nil
}

// Logout forgets the token. The server keeps no session to revoke.
func (a *App) Logout(ctx context.Context) error {
	a.token = ""
	a.email = ""
	printlnFn("Logged out")
	return nil
}

// report prints err for the user and returns it unchanged.
func (a *App) report(err error) error {
	var apiErr *api.Error
	switch {
	case errors.As(err, &apiErr):
		if apiErr.Status == http.StatusUnauthorized && a.isLoggedIn() {
			a.token = ""
			a.email = ""
			printlnFn("Session expired, please log in again")
			return err
		}
		printlnFn("Error:", apiErr.Error())
	case errors.Is(err, api.ErrUnavailable):
		a.setMode(ModeOffline)
		printlnFn("Server unavailable, try again later")
	default:
		printlnFn("Error:", err.Error())
	}
	return err
}
