package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/bisegni/invscan/pkg/database"
	"github.com/bisegni/invscan/pkg/engine"
	"github.com/bisegni/invscan/pkg/plan"
	"github.com/bisegni/invscan/pkg/planner"
	"github.com/bisegni/invscan/pkg/query"
)

const interactiveHelp = `Commands:
  <expression>          run a criteria expression, e.g. ram in (16GB, 32GB) and hdisk = SSD
  next                  fetch the next page of the last expression
  explain <expression>  print the scan plan
  help                  show this help
  exit, quit            leave`

var errQuit = errors.New("quit")

func RunInteractive(cmd *cobra.Command, filename string) error {
	if filename == "-" {
		return fmt.Errorf("interactive mode requires a file argument, stdin is used for commands")
	}

	table, err := database.OpenSheetTable(filename, nil)
	if err != nil {
		return err
	}
	defer table.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Interactive mode enabled. Type 'help' for commands, 'exit' or 'quit' to leave.")
	fmt.Fprintf(out, "Reading from file: %s\n", filename)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     "", // In-memory history for this session
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("next"),
			readline.PcItem("explain"),
			readline.PcItem("help"),
			readline.PcItem("exit"),
			readline.PcItem("storage"),
			readline.PcItem("ram"),
			readline.PcItem("hdisk"),
			readline.PcItem("location"),
			readline.PcItem("limit"),
			readline.PcItem("offset"),
		),
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	s := newSession(table, newScanner(filterChunkSize), out)
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		if err := s.eval(line); err != nil {
			if errors.Is(err, errQuit) {
				break
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	}
	return nil
}

// session is the state of one REPL: the table and the last page, so that
// "next" can follow its cursor.
type session struct {
	table    database.Table
	scanner  *engine.Scanner
	out      io.Writer
	criteria query.Criteria
	page     *engine.Page
}

func newSession(table database.Table, scanner *engine.Scanner, out io.Writer) *session {
	return &session{table: table, scanner: scanner, out: out}
}

func (s *session) eval(line string) error {
	trimmed := strings.TrimSpace(line)
	lower := strings.ToLower(trimmed)

	switch {
	case trimmed == "":
		return nil
	case lower == "exit" || lower == "quit":
		return errQuit
	case lower == "help":
		fmt.Fprintln(s.out, interactiveHelp)
		return nil
	case lower == "next":
		if s.page == nil {
			return fmt.Errorf("no previous expression")
		}
		if s.page.Done() {
			fmt.Fprintln(s.out, "No more results.")
			return nil
		}
		s.criteria.Offset = s.page.Cursor.StartRow
		return s.run()
	case strings.HasPrefix(lower, "explain "):
		c, err := query.ParseCriteria(trimmed[len("explain "):])
		if err != nil {
			return err
		}
		c = withConfiguredLimit(c)
		fmt.Fprint(s.out, plan.FormatPlan(planner.CreatePlan(c, s.table, s.scanner.ChunkSize())))
		return nil
	}

	c, err := query.ParseCriteria(trimmed)
	if err != nil {
		return err
	}
	s.criteria = withConfiguredLimit(c)
	return s.run()
}

func (s *session) run() error {
	page, err := s.scanner.Scan(s.table, s.criteria)
	if err != nil {
		return err
	}
	s.page = page
	return writePage(s.out, page, "json", true)
}
