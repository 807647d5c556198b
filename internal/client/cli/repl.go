package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	report(err error)

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) error

	ListMeals(ctx context.Context, args []string) error
	ShowMeal(ctx context.Context, args []string) error
	DeleteMeal(ctx context.Context, args []string) error
	UploadMeal(ctx context.Context, args []string) error

	Metrics(ctx context.Context) error
}

// runREPL reads commands line by line from in and dispatches them to a.
// Every handler result goes through a.report. The loop exits on EOF or when
// the user types "exit" or "quit".
//
//	Not logged in:
//	  - help, register, login, status, metrics, exit | quit
//
//	Logged in:
//	  - help, status, logout, metrics, exit | quit
//	  - meals [page]   list meals, page 1 by default
//	  - meal <id>      show one meal with ingredients
//	  - delete <id>    delete a meal
//	  - upload <path>  analyse a meal photo
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		fmt.Printf("mk %s> ", statusFn())
		line, err := readLine(in)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: meals [page], meal <id>, delete <id>, upload <path>, status, metrics, logout, exit")
			} else {
				printlnFn("Available commands: register, login, status, metrics, exit")
			}

		case "register":
			a.report(a.Register(ctx))

		case "login":
			a.report(a.Login(ctx))

		case "logout":
			a.report(a.Logout(ctx))

		case "status":
			a.report(a.Status(ctx))

		case "meals":
			a.report(a.ListMeals(ctx, args))

		case "meal", "show":
			a.report(a.ShowMeal(ctx, args))

		case "delete":
			a.report(a.DeleteMeal(ctx, args))

		case "upload":
			a.report(a.UploadMeal(ctx, args))

		case "metrics":
			a.report(a.Metrics(ctx))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
