package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/accountd/internal/client/api"
)

// Profile prints the logged-in user's profile.
func (a *App) Profile(ctx context.Context) error {
	if !a.isLoggedIn() {
		return a.report(errNotLoggedIn)
	}

	p, err := a.api.Profile(ctx, a.token)
	if err != nil {
		return a.report(err)
	}

	printlnFn(fmt.Sprintf("ID:            %s", p.ID))
	printlnFn(fmt.Sprintf("Name:          %s", p.Name))
	printlnFn(fmt.Sprintf("Email:         %s", p.Email))
	printlnFn(fmt.Sprintf("Age:           %d", p.Age))
	printlnFn(fmt.Sprintf("Date of birth: %s", p.DOB))
	printlnFn(fmt.Sprintf("Contact:       %s", p.Contact))
	return nil
}

// UpdateProfile prompts for the editable fields and sends them all.
func (a *App) UpdateProfile(ctx context.Context) error {
	if !a.isLoggedIn() {
		return a.report(errNotLoggedIn)
	}

	var (
		req api.UpdateProfileRequest
		err error
	)
	if req.Name, err = getSimpleText(a.reader, "Enter name", os.Stdout); err != nil {
		return a.report(err)
	}
	if req.Age, err = getInt(a.reader, "Enter age", os.Stdout); err != nil {
		return a.report(err)
	}
	if req.DOB, err = getSimpleText(a.reader, "Enter date of birth (YYYY-MM-DD)", os.Stdout); err != nil {
		return a.report(err)
	}
	if req.Contact, err = getSimpleText(a.reader, "Enter contact number (10 digits)", os.Stdout); err != nil {
		return a.report(err)
	}

	msg, err := a.api.UpdateProfile(ctx, a.token, req)
	if err != nil {
		return a.report(err)
	}

	printlnFn(msg)
	return nil
}
