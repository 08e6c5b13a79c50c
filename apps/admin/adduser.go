package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/campushq/backoffice/core"
	"github.com/campushq/backoffice/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: uname})
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		if usr, err = cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: email}); err != nil {
			if errors.Cause(err) != user.ErrNotFound {
				return err
			}
			now := time.Now().UTC()
			usr = user.User{
				ID:        uuid.New().String(),
				Username:  uname,
				Email:     email,
				CreatedAt: now,
				UpdatedAt: now,
			}
			return cli.saveUser(ctx, usr, pwd, isAdmin, true /* create */)
		}
	}
	return cli.saveUser(ctx, usr, pwd, isAdmin, false)
}

func (cli *commandLine) saveUser(ctx context.Context, usr user.User, pwd string, isAdmin, create bool) error {
	if isAdmin {
		usr.Roles = user.AllRoles
	}
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if create {
		_, err := cli.usrRepo.CreateUser(ctx, usr)
		return err
	}
	_, err := cli.usrRepo.UpdateUser(ctx, usr, usr.IsActive)
	return err
}
