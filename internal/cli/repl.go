package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// execIface defines the command surface the REPL dispatches to. The real
// App satisfies it; tests provide a lightweight stub.
type execIface interface {
	Onboard(ctx context.Context) error
	Profile(ctx context.Context) error
	Add(ctx context.Context) error
	List(ctx context.Context) error
	Today(ctx context.Context) error
	Show(ctx context.Context, id string) error
	Edit(ctx context.Context, id string) error
	Flag(ctx context.Context, id string) error
	Done(ctx context.Context, id string) error
	Miss(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) error
	History(ctx context.Context, days int) error
	Report(ctx context.Context) error
}

const helpText = `Available commands:
  onboard          create the user profile
  profile          show and edit the user profile
  add              add a task
  list             list all tasks
  today            list tasks scheduled today
  show <id>        show a task
  edit <id>        edit a task
  flag <id>        toggle the caregiver flag
  done <id>        mark a task completed
  miss <id>        mark a task missed
  delete <id>      delete a task
  stats            today's compliance
  history [days]   compliance history
  report           generate the caregiver report
  exit             leave the program`

// runREPL reads commands from reader until EOF or exit and dispatches them
// to a. Handler errors are printed and the loop continues. When prompt is
// true an "rx> " prompt is printed before each command.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader, w io.Writer, prompt bool) {
	for {
		if ctx.Err() != nil {
			return
		}
		if prompt {
			fmt.Fprint(w, "rx> ")
		}
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		withID := func(fn func(context.Context, string) error) error {
			if len(args) == 0 {
				return fmt.Errorf("usage: %s <id>", cmd)
			}
			return fn(ctx, args[0])
		}

		switch cmd {
		case "help":
			fmt.Fprintln(w, helpText)
			continue
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		}

		switch cmd {
		case "onboard":
			err = a.Onboard(ctx)
		case "profile":
			err = a.Profile(ctx)
		case "add":
			err = a.Add(ctx)
		case "l", "list":
			err = a.List(ctx)
		case "today":
			err = a.Today(ctx)
		case "show":
			err = withID(a.Show)
		case "edit":
			err = withID(a.Edit)
		case "flag":
			err = withID(a.Flag)
		case "done":
			err = withID(a.Done)
		case "miss":
			err = withID(a.Miss)
		case "delete":
			err = withID(a.Delete)
		case "stats":
			err = a.Stats(ctx)
		case "history":
			days := 0
			if len(args) > 0 {
				days, err = strconv.Atoi(args[0])
				if err != nil {
					err = fmt.Errorf("usage: history [days]")
					break
				}
			}
			err = a.History(ctx, days)
		case "report":
			err = a.Report(ctx)
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
			continue
		}

		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
		}
	}
}
