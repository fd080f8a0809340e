package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

// addUser creates a user, or re-activates and resets the password of an
// existing one. Role is set on creation only.
func (cli *commandLine) addUser(email, name, pwd string, isAdmin bool) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	name = core.CleanString(name)

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		now := time.Now().UTC()
		usr = user.User{
			Email:     email,
			FullName:  name,
			Role:      user.RoleStudent,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if isAdmin {
			usr.Role = user.RoleAdmin
			usr.IsStaff = true
		}
	}
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	if usr.ID == 0 {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		usr.UpdatedAt = time.Now().UTC()
		_, err = cli.usrRepo.UpdateUser(ctx, usr, usr.IsActive)
	}
	return err
}
