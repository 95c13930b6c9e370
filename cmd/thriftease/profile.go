package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/thriftease/thriftease/internal/validate"
	"github.com/thriftease/thriftease/pkg/domain"
)

func userDetails(u domain.User) [][2]string {
	return [][2]string{
		{"id", u.ID},
		{"email", u.Email},
		{"name", u.DisplayName()},
	}
}

func profileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "show or change the signed-in user",
		Action: func(c *cli.Context) error {
			res := depsFrom(c).stores.Users.Get(c.Context)
			if err := check(c, res); err != nil {
				return err
			}
			if res.Data == nil {
				printGreeting(c.App.Writer)
				return nil
			}
			printDetails(c.App.Writer, userDetails(*res.Data))
			return nil
		},
		Subcommands: []*cli.Command{
			{
				Name:  "update",
				Usage: "change profile fields; only the given flags are sent",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "given-name"},
					&cli.StringFlag{Name: "middle-name"},
					&cli.StringFlag{Name: "family-name"},
					&cli.StringFlag{Name: "suffix"},
					&cli.BoolFlag{Name: "password", Usage: "prompt for a new password"},
				},
				Action: func(c *cli.Context) error {
					in := domain.UpdateUserInput{
						GivenName:  flagValue(c, "given-name"),
						MiddleName: flagValue(c, "middle-name"),
						FamilyName: flagValue(c, "family-name"),
						Suffix:     flagValue(c, "suffix"),
					}
					if c.Bool("password") {
						pw, err := newPassword(c)
						if err != nil {
							return err
						}
						in.Password = &pw
					}
					if in.GivenName == nil && in.MiddleName == nil && in.FamilyName == nil &&
						in.Suffix == nil && in.Password == nil {
						return cli.Exit("nothing to update: pass at least one field flag", 1)
					}
					if errs := validate.Struct(in); errs != nil {
						printErrors(c.App.ErrWriter, errs)
						return cli.Exit("", 1)
					}
					res := depsFrom(c).stores.Users.Update(c.Context, in)
					if err := check(c, res); err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, "Profile updated.")
					if res.Data != nil {
						printDetails(c.App.Writer, userDetails(*res.Data))
					}
					return nil
				},
			},
			{
				Name:  "delete",
				Usage: "delete the signed-in user and sign out",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Usage: "confirm the deletion"},
				},
				Action: func(c *cli.Context) error {
					if !c.Bool("yes") {
						return cli.Exit("refusing to delete without --yes", 1)
					}
					d := depsFrom(c)
					if err := check(c, d.stores.Users.Delete(c.Context)); err != nil {
						return err
					}
					d.session.SignOut()
					fmt.Fprintln(c.App.Writer, "Account deleted. Signed out.")
					return nil
				},
			},
		},
	}
}
