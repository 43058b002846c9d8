package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/attend-io/attend/internal/dates"
	"github.com/attend-io/attend/internal/logging"
	"github.com/attend-io/attend/internal/models"
	"github.com/attend-io/attend/internal/norm"
	"github.com/attend-io/attend/internal/store"
	"github.com/attend-io/attend/internal/tracker"
	"github.com/attend-io/attend/internal/usage"
)

// verb is one interpreter command: a one-line summary for the help
// listing, a longer usage text, and the handler.
type verb struct {
	summary string
	usage   string
	run     func(args []string, kwargs map[string][]string) error
}

// Interpreter is the interactive read-eval-print loop. One command is
// processed to completion before the next line is read; there is no
// concurrent access to the manager.
type Interpreter struct {
	manager *tracker.Manager
	log     *logging.Logger
	dataDir string
	watcher *store.Watcher
	in      io.Reader
	out     io.Writer
	verbs   map[string]*verb
	aliases map[string]string
	done    bool
}

// NewInterpreter wires an interpreter around a manager. dataDir is the
// default location for load and save.
func NewInterpreter(manager *tracker.Manager, log *logging.Logger, dataDir string, in io.Reader, out io.Writer) *Interpreter {
	i := &Interpreter{
		manager: manager,
		log:     log,
		dataDir: dataDir,
		in:      in,
		out:     out,
		aliases: map[string]string{
			"q":  "quit",
			"h":  "help",
			"?":  "help",
			"ls": "list",
		},
	}
	i.registerVerbs()
	return i
}

// Close releases the external-change watcher, if any.
func (i *Interpreter) Close() error {
	if i.watcher == nil {
		return nil
	}
	w := i.watcher
	i.watcher = nil
	return w.Close()
}

// Run reads lines until quit or end of input. Usage, validation, and
// date-parse failures are printed and the loop continues; anything
// else propagates.
func (i *Interpreter) Run() error {
	fmt.Fprintf(i.out, "%s %s\n", styleBrand.Render("attend"), styleHint.Render("(type help for commands, quit to exit)"))

	scanner := bufio.NewScanner(i.in)
	for !i.done {
		fmt.Fprint(i.out, "> ")
		if !scanner.Scan() {
			break
		}
		if err := i.Dispatch(scanner.Text()); err != nil {
			if !recoverable(err) {
				return err
			}
			fmt.Fprintln(i.out, styleError.Render(err.Error()))
		}
	}
	return scanner.Err()
}

// Dispatch parses and executes a single command line.
func (i *Interpreter) Dispatch(line string) error {
	cleaned := norm.Text(line)
	if cleaned == "" {
		return nil
	}

	tokens, err := tokenize(cleaned)
	if err != nil {
		return err
	}

	name := strings.ToLower(tokens[0])
	if canonical, ok := i.aliases[name]; ok {
		name = canonical
	}
	v, ok := i.verbs[name]
	if !ok {
		return usage.Errorf("unrecognized verb %q (try help)", name)
	}

	args, kwargs := objectify(tokens[1:])
	if err := v.run(args, kwargs); err != nil {
		var uerr *usage.Error
		if errors.As(err, &uerr) {
			fmt.Fprintln(i.out, styleError.Render(err.Error()))
			fmt.Fprintln(i.out, styleHint.Render(v.usage))
			return nil
		}
		return err
	}
	return nil
}

// recoverable reports whether an error should be printed at the prompt
// instead of terminating the loop.
func recoverable(err error) bool {
	var uerr *usage.Error
	var verr *models.ValidationError
	var perr *dates.ParseError
	return errors.As(err, &uerr) || errors.As(err, &verr) || errors.As(err, &perr)
}

func (i *Interpreter) printHelp(args []string) error {
	if len(args) > 0 {
		name := strings.ToLower(args[0])
		if canonical, ok := i.aliases[name]; ok {
			name = canonical
		}
		v, ok := i.verbs[name]
		if !ok {
			return usage.Errorf("unrecognized verb %q", name)
		}
		fmt.Fprintln(i.out, v.usage)
		return nil
	}

	names := make([]string, 0, len(i.verbs))
	longest := 0
	for name := range i.verbs {
		names = append(names, name)
		if len(name) > longest {
			longest = len(name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		pad := strings.Repeat(" ", longest-len(name))
		fmt.Fprintf(i.out, "%s%s  %s\n", pad, styleLabel.Render(name+":"), i.verbs[name].summary)
	}
	return nil
}
