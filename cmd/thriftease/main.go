package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/thriftease/thriftease/internal/browser"
	"github.com/thriftease/thriftease/internal/config"
	"github.com/thriftease/thriftease/internal/logging"
	"github.com/thriftease/thriftease/internal/router"
	"github.com/thriftease/thriftease/internal/session"
	"github.com/thriftease/thriftease/internal/store"
	"github.com/thriftease/thriftease/internal/token"
	"github.com/thriftease/thriftease/internal/tui"
	"github.com/thriftease/thriftease/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newApp(config.Load(), nil).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// credentials puts an explicit token (THRIFTEASE_TOKEN) ahead of the stored
// tiers. An explicit token is never reported as stored, so an expired one does
// not wipe the tiers.
type credentials struct {
	explicit string
	stored   *token.Store
}

func (c credentials) GetToken() (string, bool) {
	if c.explicit != "" {
		return c.explicit, false
	}
	return c.stored.GetToken()
}

func (c credentials) SetToken(tok string, remember bool) error {
	return c.stored.SetToken(tok, remember)
}

func (c credentials) Token() string {
	tok, _ := c.GetToken()
	return tok
}

// deps is everything a command needs, built once before the command runs.
type deps struct {
	cfg     *config.Config
	log     *logrus.Logger
	closer  io.Closer
	tokens  credentials
	client  *client.Client
	stores  *store.Stores
	session *session.Session
	in      *bufio.Reader
}

const depsKey = "deps"

func depsFrom(c *cli.Context) *deps {
	return c.App.Metadata[depsKey].(*deps)
}

// setup wires the pipeline: config, logger, token store, client, stores and
// session. tokens may be nil to use the on-disk tiers.
func setup(cfg *config.Config, tokens *token.Store, in io.Reader) (*deps, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, closer, err := logging.New(logging.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, err
	}
	if tokens == nil {
		if tokens, err = token.NewDefaultStore(); err != nil {
			closer.Close() //nolint:errcheck
			return nil, fmt.Errorf("open token store: %w", err)
		}
	}
	creds := credentials{explicit: cfg.Token, stored: tokens}

	opts := []client.Option{
		client.WithTimeout(cfg.HTTPTimeout),
		client.WithLogger(logging.For(log, logging.ComponentClient)),
		client.WithLinks(
			client.LocaleLink(func() string { return cfg.Locale }),
			client.AuthLink(creds.Token),
		),
	}
	if cfg.CacheEnabled() {
		opts = append(opts, client.WithCache(cfg.CacheSize, cfg.CacheTTL))
	}
	c := client.New(cfg.APIURL, opts...)
	rates := store.NewRates(cfg.RatesURL, cfg.HTTPTimeout, log)

	log.WithFields(logrus.Fields{
		"api_url": cfg.APIURL,
		"locale":  client.CanonicalLocale(cfg.Locale),
		"cache":   cfg.CacheEnabled(),
	}).Debug("pipeline ready")

	return &deps{
		cfg:     cfg,
		log:     log,
		closer:  closer,
		tokens:  creds,
		client:  c,
		stores:  store.New(c, rates, log),
		session: session.New(c, creds, log),
		in:      bufio.NewReader(in),
	}, nil
}

func newApp(cfg *config.Config, tokens *token.Store) *cli.App {
	return &cli.App{
		Name:     "thriftease",
		Usage:    "personal finance from the terminal",
		Version:  version,
		Metadata: map[string]interface{}{},
		Before: func(c *cli.Context) error {
			d, err := setup(cfg, tokens, c.App.Reader)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			c.App.Metadata[depsKey] = d
			return nil
		},
		After: func(c *cli.Context) error {
			if d, ok := c.App.Metadata[depsKey].(*deps); ok {
				return d.closer.Close()
			}
			return nil
		},
		Action: runTUI,
		Commands: []*cli.Command{
			loginCommand(),
			logoutCommand(),
			whoamiCommand(),
			profileCommand(),
			signupCommand(),
			resetCommand(),
			currenciesCommand(),
			convertCommand(),
			accountsCommand(),
			tagsCommand(),
			transactionsCommand(),
			{
				Name:      "open",
				Usage:     "open the web front end in a browser",
				ArgsUsage: "[path]",
				Action:    runOpen,
			},
			{
				Name:  "version",
				Usage: "print the version",
				Action: func(c *cli.Context) error {
					printVersion(c.App.Writer)
					return nil
				},
			},
		},
	}
}

func runTUI(c *cli.Context) error {
	d := depsFrom(c)
	r, err := router.Default(d.session, d.log)
	if err != nil {
		return err
	}
	app := tui.NewApp(tui.Deps{
		Session: d.session,
		Router:  r,
		Stores:  d.stores,
		WebURL:  d.cfg.WebURL,
		Log:     d.log,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func runOpen(c *cli.Context) error {
	d := depsFrom(c)
	url := d.cfg.WebURL
	if p := c.Args().First(); p != "" {
		url = browser.Join(url, p)
	}
	if err := browser.Open(url); err != nil {
		d.log.WithError(err).Info("open browser")
		fmt.Fprintln(c.App.Writer, url)
	}
	return nil
}

// fail reports a failed request. GraphQL messages are written for people;
// anything else gets a generic line.
func fail(err error) error {
	if gql := client.GraphQLErrors(err); len(gql) > 0 {
		return cli.Exit("error: "+gql[0].Message, 1)
	}
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		return cli.Exit(fmt.Sprintf("error: server error (%d)", httpErr.StatusCode), 1)
	}
	return cli.Exit("error: could not reach the server", 1)
}

// check turns a store result into a command error: transport failures via
// fail, field errors as "field: message" lines on stderr.
func check[T any](c *cli.Context, res store.Result[T]) error {
	if res.Err != nil {
		return fail(res.Err)
	}
	if !res.Errors.Empty() {
		printErrors(c.App.ErrWriter, res.Errors)
		return cli.Exit("", 1)
	}
	return nil
}
