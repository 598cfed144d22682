package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/briefly/internal/client/services"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests provide a stub.
type execIface interface {
	decision() Decision
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	List(ctx context.Context) error
	Shared(ctx context.Context) error
	Show(ctx context.Context, id string) error
	New(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	Regenerate(ctx context.Context, id string) error
	Share(ctx context.Context, id string) error
	Download(ctx context.Context, id, path string) error
	Refresh(ctx context.Context) error
	Stats(ctx context.Context) error
}

const (
	guestHelp = "Available commands: register, login, exit"
	userHelp  = "Available commands: (l)ist, shared, show <id>, new, delete <id>, regenerate <id>, " +
		"share <id>, download <id> [path], refresh, stats, whoami, logout, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a
// until EOF or "exit"/"quit". The command set follows the route guard:
// account commands before login, summary commands after it. Every error a
// handler returns is printed.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("briefly%s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "help":
			if a.decision() == DecisionRender {
				printlnFn(userHelp)
			} else {
				printlnFn(guestHelp)
			}
			continue
		}

		if err := ctx.Err(); err != nil {
			return
		}

		switch a.decision() {
		case DecisionRender:
			report(dispatchUser(ctx, a, cmd, args))
		case DecisionLogin:
			report(dispatchGuest(ctx, a, cmd))
		default:
			printlnFn("Still checking your session, please wait.")
		}
	}
}

func dispatchGuest(ctx context.Context, a execIface, cmd string) error {
	switch cmd {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "l", "list", "shared", "show", "new", "delete", "regenerate", "share",
		"download", "refresh", "stats", "whoami", "logout":
		printlnFn("Please log in first (type 'login').")
	default:
		printlnFn("Unknown command:", cmd)
	}
	return nil
}

func dispatchUser(ctx context.Context, a execIface, cmd string, args []string) error {
	withID := func(fn func(ctx context.Context, id string) error) error {
		if len(args) == 0 {
			printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
			return nil
		}
		return fn(ctx, args[0])
	}

	switch cmd {
	case "l", "list":
		return a.List(ctx)
	case "shared":
		return a.Shared(ctx)
	case "show":
		return withID(a.Show)
	case "new":
		return a.New(ctx)
	case "delete":
		return withID(a.Delete)
	case "regenerate":
		return withID(a.Regenerate)
	case "share":
		return withID(a.Share)
	case "download":
		if len(args) == 0 {
			printlnFn("Usage: download <id> [path]")
			return nil
		}
		path := ""
		if len(args) > 1 {
			path = args[1]
		}
		return a.Download(ctx, args[0], path)
	case "refresh":
		return a.Refresh(ctx)
	case "stats":
		return a.Stats(ctx)
	case "whoami":
		return a.Whoami(ctx)
	case "logout":
		return a.Logout(ctx)
	case "register", "login":
		printlnFn("You are already logged in (type 'logout' first).")
	default:
		printlnFn("Unknown command:", cmd)
	}
	return nil
}

func report(err error) {
	if err != nil {
		printlnFn("Error:", services.HumanMessage(err))
	}
}
