// Command helpdesk-cli is a command-line client for the helpdesk API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/and161185/helpdesk/internal/client"
)

// ---- config/token store ----

type tokenFile struct {
	Token   string    `json:"token"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"is_admin"`
	SavedAt time.Time `json:"saved_at"`
}

var errNotLoggedIn = errors.New("not logged in (run login first)")

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "helpdesk")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "helpdesk")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(s client.Session) error {
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(tokenPath(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{Token: s.Token, Email: s.Email, IsAdmin: s.IsAdmin, SavedAt: time.Now().UTC()})
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return "", errNotLoggedIn
	}
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.Token == "" {
		return "", errNotLoggedIn
	}
	return tf.Token, nil
}

func clearToken() error {
	err := os.Remove(tokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ---- utils ----

// readPassword is a test seam for the terminal prompt.
var readPassword = func(w io.Writer) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("password required (-p) when stdin is not a terminal")
	}
	fmt.Fprint(w, "Password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	return string(pw), err
}

func readAll(stdin io.Reader, p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(p)
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `helpdesk-cli
Usage:
  helpdesk-cli [-addr URL] <cmd> [args]

Commands:
  version
  register   -e <email> [-p <password>]      (saves token)
  login      -e <email> [-p <password>]      (saves token)
  logout
  me
  send       -s <subject> (-b <body> | -file <path|->)
  my
  admin-list
  reply      -id <message id> (-r <text> | -file <path|->)
`)
}

var errUsage = errors.New("usage")

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout)
	if errors.Is(err, errUsage) {
		usage(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run dispatches subcommands against the server at -addr.
func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	global := flag.NewFlagSet("helpdesk-cli", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	addr := global.String("addr", envOr("HELPDESK_ADDR", "http://localhost:8080"), "server base URL")
	if err := global.Parse(args); err != nil || global.NArg() < 1 {
		return errUsage
	}
	cmd, rest := global.Arg(0), global.Args()[1:]

	authed := func() (*client.Client, error) {
		tok, err := loadToken()
		if err != nil {
			return nil, err
		}
		return client.New(*addr, client.WithToken(tok)), nil
	}

	switch cmd {

	case "version":
		fmt.Fprintf(stdout, "helpdesk-cli %s (%s)\n", version, buildDate)
		return nil

	case "register", "login":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		e := fs.String("e", "", "email")
		p := fs.String("p", "", "password")
		if err := fs.Parse(rest); err != nil || *e == "" {
			return errUsage
		}
		pw := *p
		if pw == "" {
			var err error
			if pw, err = readPassword(os.Stderr); err != nil {
				return err
			}
		}

		c := client.New(*addr)
		var (
			s   client.Session
			err error
		)
		if cmd == "register" {
			s, err = c.Register(ctx, *e, pw)
		} else {
			s, err = c.Login(ctx, *e, pw)
		}
		if err != nil {
			return err
		}
		if err := saveToken(s); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "ok (%s, admin=%v)\n", s.Email, s.IsAdmin)
		return nil

	case "logout":
		if tok, err := loadToken(); err == nil {
			if err := client.New(*addr, client.WithToken(tok)).Logout(ctx); err != nil {
				return err
			}
		}
		if err := clearToken(); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "ok")
		return nil

	case "me":
		c, err := authed()
		if err != nil {
			return err
		}
		me, err := c.Me(ctx)
		if err != nil {
			return err
		}
		printJSON(stdout, me)
		return nil

	case "send":
		fs := flag.NewFlagSet("send", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		subj := fs.String("s", "", "subject")
		body := fs.String("b", "", "body")
		file := fs.String("file", "", "read body from file or - for stdin")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		text, err := textArg(stdin, *body, *file)
		if err != nil {
			return err
		}
		c, err := authed()
		if err != nil {
			return err
		}
		id, err := c.Send(ctx, *subj, text)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, id)
		return nil

	case "my", "admin-list":
		c, err := authed()
		if err != nil {
			return err
		}
		var ms []client.Message
		if cmd == "my" {
			ms, err = c.MyMessages(ctx)
		} else {
			ms, err = c.AdminMessages(ctx)
		}
		if err != nil {
			return err
		}
		printJSON(stdout, ms)
		return nil

	case "reply":
		fs := flag.NewFlagSet("reply", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		id := fs.Int64("id", 0, "message id")
		r := fs.String("r", "", "reply text")
		file := fs.String("file", "", "read reply from file or - for stdin")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		text, err := textArg(stdin, *r, *file)
		if err != nil {
			return err
		}
		c, err := authed()
		if err != nil {
			return err
		}
		if err := c.AdminReply(ctx, *id, text); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "ok")
		return nil

	default:
		return errUsage
	}
}

// textArg prefers inline text and falls back to a file or stdin.
func textArg(stdin io.Reader, inline, file string) (string, error) {
	if inline != "" || file == "" {
		return inline, nil
	}
	b, err := readAll(stdin, file)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
