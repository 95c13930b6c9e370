package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/thriftease/thriftease/internal/session"
	"github.com/thriftease/thriftease/internal/validate"
	"github.com/thriftease/thriftease/pkg/domain"
)

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "sign in and store the token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}},
			&cli.BoolFlag{Name: "remember", Aliases: []string{"r"}, Usage: "keep the token after this session ends"},
		},
		Action: func(c *cli.Context) error {
			email, err := flagOrPrompt(c, "email", "email")
			if err != nil {
				return err
			}
			password, err := promptPassword(c, "password")
			if err != nil {
				return err
			}
			errs := append(validate.Var("email", email, "required,email"), validate.Var("password", password, "required")...)
			if len(errs) > 0 {
				printErrors(c.App.ErrWriter, errs)
				return cli.Exit("", 1)
			}

			res := depsFrom(c).session.SignIn(c.Context, email, password, c.Bool("remember"))
			if err := check(c, res); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Signed in as %s\n", res.Data.User.DisplayName())
			if !c.Bool("remember") && !depsFrom(c).tokens.stored.SessionPersistent() {
				fmt.Fprintln(c.App.ErrWriter, "note: no session directory here, so the token ends with this command. Use --remember to keep it.")
			}
			return nil
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "forget the stored token",
		Action: func(c *cli.Context) error {
			d := depsFrom(c)
			if _, ok := d.tokens.stored.GetToken(); !ok {
				fmt.Fprintln(c.App.Writer, "Already signed out.")
				return nil
			}
			d.session.SignOut()
			fmt.Fprintln(c.App.Writer, "Signed out.")
			return nil
		},
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the signed-in user",
		Action: func(c *cli.Context) error {
			u, err := depsFrom(c).session.Verify(c.Context, "")
			switch {
			case errors.Is(err, session.ErrNoToken), errors.Is(err, session.ErrTokenExpired):
				printGreeting(c.App.Writer)
				return nil
			case err != nil:
				return fail(err)
			}
			fmt.Fprintf(c.App.Writer, "%s <%s>\n", u.DisplayName(), u.Email)
			return nil
		},
	}
}

func signupCommand() *cli.Command {
	return &cli.Command{
		Name:  "signup",
		Usage: "create an account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email"},
			&cli.StringFlag{Name: "given-name"},
			&cli.StringFlag{Name: "middle-name"},
			&cli.StringFlag{Name: "family-name"},
			&cli.StringFlag{Name: "suffix"},
		},
		Action: func(c *cli.Context) error {
			var in domain.CreateUserInput
			var err error
			if in.Email, err = flagOrPrompt(c, "email", "email"); err != nil {
				return err
			}
			if in.GivenName, err = flagOrPrompt(c, "given-name", "given name"); err != nil {
				return err
			}
			if in.FamilyName, err = flagOrPrompt(c, "family-name", "family name"); err != nil {
				return err
			}
			in.MiddleName = optional(c.String("middle-name"))
			in.Suffix = optional(c.String("suffix"))
			if in.Password, err = newPassword(c); err != nil {
				return err
			}
			if errs := validate.Struct(in); errs != nil {
				printErrors(c.App.ErrWriter, errs)
				return cli.Exit("", 1)
			}

			res := depsFrom(c).session.SignUp(c.Context, in)
			if err := check(c, res); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, "Account created. Sign in with `thriftease login`.")
			return nil
		},
	}
}

func resetCommand() *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "reset a forgotten password",
		Subcommands: []*cli.Command{
			{
				Name:      "send",
				Usage:     "email a reset token",
				ArgsUsage: "<email>",
				Action: func(c *cli.Context) error {
					email := c.Args().First()
					if errs := validate.Var("email", email, "required,email"); errs != nil {
						printErrors(c.App.ErrWriter, errs)
						return cli.Exit("", 1)
					}
					if err := check(c, depsFrom(c).session.SendReset(c.Context, email)); err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, "If the address is registered, a reset token is on its way.")
					return nil
				},
			},
			{
				Name:      "verify",
				Usage:     "check a reset token",
				ArgsUsage: "<token>",
				Action: func(c *cli.Context) error {
					res := depsFrom(c).session.VerifyReset(c.Context, c.Args().First())
					if err := check(c, res); err != nil {
						return err
					}
					if res.Data == nil {
						return cli.Exit("This reset token is invalid or has expired.", 1)
					}
					fmt.Fprintf(c.App.Writer, "Token is valid for %s\n", res.Data.Email)
					return nil
				},
			},
			{
				Name:      "apply",
				Usage:     "set a new password with a reset token",
				ArgsUsage: "<token>",
				Action: func(c *cli.Context) error {
					in := domain.ApplyResetInput{Token: c.Args().First()}
					var err error
					if in.Password, err = newPassword(c); err != nil {
						return err
					}
					if errs := validate.Struct(in); errs != nil {
						printErrors(c.App.ErrWriter, errs)
						return cli.Exit("", 1)
					}
					if err := check(c, depsFrom(c).session.ApplyReset(c.Context, in.Token, in.Password)); err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, "Password updated. Sign in with the new one.")
					return nil
				},
			},
		},
	}
}
