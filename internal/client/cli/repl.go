package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests provide a lightweight stub.
type execIface interface {
	isSignedIn() bool
	SignIn(ctx context.Context) error
	SignUp(ctx context.Context) error
	SignOut(ctx context.Context) error
	Dashboard(ctx context.Context, query string) error
	Delete(ctx context.Context, ref string) error
	Create(ctx context.Context, template string) error
	Templates(ctx context.Context) error
	Analytics(ctx context.Context) error
	Profile(ctx context.Context) error
	Reset(ctx context.Context) error
}

const (
	helpSignedOut = "Available commands: signin, signup, templates, help [topic], exit"
	helpSignedIn  = "Available commands: (l)ist [query], search <query>, delete <id|#>, new [template], templates, analytics, profile, reset, signout, help [topic], exit"
)

// runREPL reads one command per line from reader and dispatches it to a.
// The loop exits on EOF, on "exit" or "quit", or when ctx is done.
//
// Handler errors are logged by the handlers themselves and do not end the
// loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w, "labscribe (%s)> ", statusFn())

		line, err := readLine(reader)
		if err != nil {
			fmt.Fprintln(w)
			return
		}
		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		if cmd == "" {
			continue
		}

		switch cmd {
		case "help":
			if rest != "" {
				printHelpTopic(w, rest)
				continue
			}
			if a.isSignedIn() {
				fmt.Fprintln(w, helpSignedIn)
			} else {
				fmt.Fprintln(w, helpSignedOut)
			}

		case "signin", "login":
			_ = a.SignIn(ctx)

		case "signup", "register":
			_ = a.SignUp(ctx)

		case "signout", "logout":
			_ = a.SignOut(ctx)

		case "l", "list", "dashboard":
			_ = a.Dashboard(ctx, rest)

		case "search":
			if rest == "" {
				fmt.Fprintln(w, "Usage: search <query>")
				continue
			}
			_ = a.Dashboard(ctx, rest)

		case "delete", "rm":
			if rest == "" {
				fmt.Fprintln(w, "Usage: delete <id|#>")
				continue
			}
			_ = a.Delete(ctx, rest)

		case "new", "create":
			_ = a.Create(ctx, rest)

		case "templates":
			_ = a.Templates(ctx)

		case "analytics", "stats":
			_ = a.Analytics(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "reset":
			_ = a.Reset(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}
