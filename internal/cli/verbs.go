package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/attend-io/attend/internal/logging"
	"github.com/attend-io/attend/internal/store"
	"github.com/attend-io/attend/internal/usage"
)

func (i *Interpreter) registerVerbs() {
	i.verbs = map[string]*verb{
		"new": {
			summary: "Create a new activity",
			usage: `new {title words} [field:value ...]
    > new Take a nap
    > new Take a nap due:today tags:personal,home
    > new water plants due:"next saturday" interval:week`,
			run: i.verbNew,
		},
		"list": {
			summary: "List activities matching the given filters",
			usage: `list [field:value ...] [or:field,field] [sort:key,key|none]
    > list
    > list tags:work due:"this week"
    > list overdue:today tags:urgent or:overdue,tags`,
			run: i.verbList,
		},
		"due": {
			summary: "List activities due in the named period",
			usage: `due [date phrase] [field:value ...]
    > due (same as due today)
    > due next week`,
			run: i.verbDue,
		},
		"overdue": {
			summary: "List activities due on or before the named period",
			usage: `overdue [date phrase]
    > overdue (same as overdue today)
    > overdue last month`,
			run: i.verbOverdue,
		},
		"today": {
			summary: "List everything needing attention today",
			usage: `today
    Shorthand for overdue today: anything due today or earlier.`,
			run: i.verbToday,
		},
		"tomorrow": {
			summary: "List activities due tomorrow",
			usage:   `tomorrow`,
			run:     i.verbTomorrow,
		},
		"projects": {
			summary: "List project activities",
			usage:   `projects [field:value ...]`,
			run:     i.verbProjects,
		},
		"stalled": {
			summary: "List projects with no subordinate tasks",
			usage:   `stalled`,
			run:     i.verbStalled,
		},
		"current": {
			summary: "Redisplay the current context",
			usage:   `current`,
			run:     i.verbCurrent,
		},
		"complete": {
			summary: "Mark activities complete",
			usage: `complete {selector}
    > complete 0
    > complete 2-5`,
			run: i.verbComplete,
		},
		"delete": {
			summary: "Delete activities",
			usage: `delete {selector}
    > delete 3`,
			run: i.verbDelete,
		},
		"modify": {
			summary: "Change fields on activities",
			usage: `modify {selector} [done] [field:value ...]
    > modify 0 due:tomorrow
    > modify 1-3 tags:errand,-home
    > modify 2 done`,
			run: i.verbModify,
		},
		"reschedule": {
			summary: "Move due dates forward",
			usage: `reschedule {selector} [date phrase | unit:count]
    > reschedule 0 (slips one day)
    > reschedule 0 next monday
    > reschedule 1-3 weeks:2`,
			run: i.verbReschedule,
		},
		"later": {
			summary: "Snooze activities until a date",
			usage: `later {selector} [date phrase]
    > later 0 (hidden until tomorrow)
    > later 2 next month`,
			run: i.verbLater,
		},
		"notes": {
			summary: "Show or add notes",
			usage: `notes {selector} [note text]
    > notes 0 (shows notes)
    > notes 0 call them back first`,
			run: i.verbNotes,
		},
		"incorporate": {
			summary: "Make activities tasks of a project",
			usage: `incorporate {task selector} {project selector}
    > incorporate 1-3 0`,
			run: i.verbIncorporate,
		},
		"tasks": {
			summary: "List the tasks of a project",
			usage: `tasks {selector}
    > tasks 0`,
			run: i.verbTasks,
		},
		"full": {
			summary: "Show every stored field of activities",
			usage: `full [selector | first | last | all]
    > full (last activity in context)
    > full 0-2
    > full all`,
			run: i.verbFull,
		},
		"import": {
			summary: "Create activities from a text file, one title per line",
			usage: `import {path}
    Blank lines and lines starting with # are skipped.`,
			run: i.verbImport,
		},
		"load": {
			summary: "Load activities from storage",
			usage: `load [directory]
    > load (loads from the configured data directory)
    > load ~/somewhere/else`,
			run: i.verbLoad,
		},
		"save": {
			summary: "Save activities to storage",
			usage: `save [directory]
    > save (saves to the configured data directory)
    WARNING: replaces existing content; the previous contents move to .bak`,
			run: i.verbSave,
		},
		"purge": {
			summary: "Discard all activities and indexes",
			usage:   `purge`,
			run:     i.verbPurge,
		},
		"loglevel": {
			summary: "Show or set the log level",
			usage: `loglevel [debug|info|warning|error]
    > loglevel (shows the current level)
    > loglevel debug`,
			run: i.verbLogLevel,
		},
		"help": {
			summary: "Get help with available commands",
			usage: `help [verb]
    > help (lists all available command verbs)
    > help due`,
			run: i.verbHelp,
		},
		"quit": {
			summary: "Quit the interactive interface",
			usage: `quit
    WARNING: unsaved data will be lost (use save first)`,
			run: i.verbQuit,
		},
	}
}

func (i *Interpreter) verbNew(args []string, kwargs map[string][]string) error {
	a, err := i.manager.New(args, kwargs)
	if err != nil {
		return err
	}
	fmt.Fprintf(i.out, "%s %s\n", styleSuccess.Render("created:"), i.renderActivity(a))
	return nil
}

func (i *Interpreter) verbList(args []string, kwargs map[string][]string) error {
	if len(args) > 0 {
		return usage.Errorf("list takes only field:value arguments, got %q", strings.Join(args, " "))
	}
	orGroup := kwargs["or"]
	delete(kwargs, "or")
	return i.runQuery(kwargs, orGroup)
}

func (i *Interpreter) verbDue(args []string, kwargs map[string][]string) error {
	phrase := strings.Join(args, " ")
	if phrase == "" {
		phrase = "today"
	}
	kwargs["due"] = []string{phrase}
	return i.runQuery(kwargs, nil)
}

func (i *Interpreter) verbOverdue(args []string, kwargs map[string][]string) error {
	phrase := strings.Join(args, " ")
	if phrase == "" {
		phrase = "today"
	}
	kwargs["overdue"] = []string{phrase}
	return i.runQuery(kwargs, nil)
}

func (i *Interpreter) verbToday(args []string, kwargs map[string][]string) error {
	return i.runQuery(map[string][]string{"overdue": {"today"}}, nil)
}

func (i *Interpreter) verbTomorrow(args []string, kwargs map[string][]string) error {
	return i.runQuery(map[string][]string{"due": {"tomorrow"}}, nil)
}

func (i *Interpreter) verbProjects(args []string, kwargs map[string][]string) error {
	kwargs["project"] = []string{"true"}
	return i.runQuery(kwargs, nil)
}

func (i *Interpreter) verbStalled(args []string, kwargs map[string][]string) error {
	return i.runQuery(map[string][]string{"project": {"true"}, "stalled": {"true"}}, nil)
}

func (i *Interpreter) verbCurrent(args []string, kwargs map[string][]string) error {
	i.renderList(i.manager.Current())
	return nil
}

func (i *Interpreter) runQuery(kwargs map[string][]string, orGroup []string) error {
	got, err := i.manager.Query(kwargs, orGroup)
	if err != nil {
		return err
	}
	i.renderList(got)
	return nil
}

func (i *Interpreter) verbComplete(args []string, kwargs map[string][]string) error {
	selector, _, err := splitSelector(args)
	if err != nil {
		return err
	}
	result, err := i.manager.Complete(selector)
	if err != nil {
		return err
	}
	i.reportBatch("completed", result.Succeeded, result.Total)
	return nil
}

func (i *Interpreter) verbDelete(args []string, kwargs map[string][]string) error {
	selector, _, err := splitSelector(args)
	if err != nil {
		return err
	}
	n, err := i.manager.Delete(selector)
	if err != nil {
		return err
	}
	fmt.Fprintln(i.out, styleSuccess.Render(fmt.Sprintf("deleted %d", n)))
	return nil
}

func (i *Interpreter) verbModify(args []string, kwargs map[string][]string) error {
	selector, rest, err := splitSelector(args)
	if err != nil {
		return err
	}
	modified, result, err := i.manager.Modify(selector, rest, kwargs)
	if err != nil {
		return err
	}
	i.reportBatch("modified", result.Succeeded, result.Total)
	i.renderList(modified)
	return nil
}

func (i *Interpreter) verbReschedule(args []string, kwargs map[string][]string) error {
	selector, rest, err := splitSelector(args)
	if err != nil {
		return err
	}
	result, err := i.manager.Reschedule(selector, rest, kwargs)
	if err != nil {
		return err
	}
	i.reportBatch("rescheduled", result.Succeeded, result.Total)
	return nil
}

func (i *Interpreter) verbLater(args []string, kwargs map[string][]string) error {
	selector, rest, err := splitSelector(args)
	if err != nil {
		return err
	}
	result, err := i.manager.Later(selector, strings.Join(rest, " "))
	if err != nil {
		return err
	}
	i.reportBatch("snoozed", result.Succeeded, result.Total)
	return nil
}

func (i *Interpreter) verbNotes(args []string, kwargs map[string][]string) error {
	selector, rest, err := splitSelector(args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		n, err := i.manager.AddNote(selector, strings.Join(rest, " "))
		if err != nil {
			return err
		}
		i.reportBatch("annotated", n, n)
		return nil
	}

	selected, err := i.manager.Notes(selector)
	if err != nil {
		return err
	}
	for _, a := range selected {
		fmt.Fprintln(i.out, styleTitle.Render(a.Title()))
		notes := a.Notes()
		if len(notes) == 0 {
			fmt.Fprintln(i.out, styleHint.Render("  (no notes)"))
			continue
		}
		for _, note := range notes {
			fmt.Fprintf(i.out, "  %s %s\n", styleLabel.Render(note.When), styleValue.Render(note.Text))
		}
	}
	return nil
}

func (i *Interpreter) verbIncorporate(args []string, kwargs map[string][]string) error {
	if len(args) != 2 {
		return usage.Errorf("expected a task selector and a project selector")
	}
	project, added, err := i.manager.Incorporate(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(i.out, styleSuccess.Render(
		fmt.Sprintf("added %d task(s) to %q", added, project.Title())))
	return nil
}

func (i *Interpreter) verbTasks(args []string, kwargs map[string][]string) error {
	selector, _, err := splitSelector(args)
	if err != nil {
		return err
	}
	project, tasks, err := i.manager.TasksOf(selector)
	if err != nil {
		return err
	}
	fmt.Fprintln(i.out, styleTitle.Render(project.Title()))
	i.renderList(tasks)
	return nil
}

func (i *Interpreter) verbFull(args []string, kwargs map[string][]string) error {
	recs, err := i.manager.Full(strings.Join(args, " "))
	if err != nil {
		return err
	}
	for _, rec := range recs {
		data, err := json.MarshalIndent(rec, "", "    ")
		if err != nil {
			return fmt.Errorf("failed to render activity %s: %w", rec.ID, err)
		}
		fmt.Fprintln(i.out, string(data))
	}
	return nil
}

func (i *Interpreter) verbImport(args []string, kwargs map[string][]string) error {
	if len(args) != 1 {
		return usage.Errorf("expected a single file path")
	}
	n, err := i.manager.Import(expand(args[0]))
	if err != nil {
		return err
	}
	fmt.Fprintln(i.out, styleSuccess.Render(fmt.Sprintf("imported %d", n)))
	return nil
}

func (i *Interpreter) verbLoad(args []string, kwargs map[string][]string) error {
	dir, err := i.resolveDir(args)
	if err != nil {
		return err
	}
	n, err := i.manager.Load(dir)
	if err != nil {
		return err
	}
	i.watchDir(dir)
	fmt.Fprintln(i.out, styleSuccess.Render(fmt.Sprintf("loaded %d from %s", n, dir)))
	return nil
}

func (i *Interpreter) verbSave(args []string, kwargs map[string][]string) error {
	dir, err := i.resolveDir(args)
	if err != nil {
		return err
	}
	if i.watcher != nil && i.watcher.Dirty() {
		fmt.Fprintln(i.out, styleWarning.Render(
			"warning: files in the data directory changed outside this session and will be overwritten"))
	}
	// Stop watching while we write so our own files do not flag the
	// directory as externally modified.
	_ = i.Close()
	n, err := i.manager.Save(dir)
	if err != nil {
		return err
	}
	i.watchDir(dir)
	fmt.Fprintln(i.out, styleSuccess.Render(fmt.Sprintf("saved %d to %s", n, dir)))
	return nil
}

func (i *Interpreter) verbPurge(args []string, kwargs map[string][]string) error {
	n := i.manager.Purge()
	fmt.Fprintln(i.out, styleSuccess.Render(fmt.Sprintf("purged %d", n)))
	return nil
}

func (i *Interpreter) verbLogLevel(args []string, kwargs map[string][]string) error {
	if len(args) == 0 {
		fmt.Fprintf(i.out, "%s %s\n", styleLabel.Render("log level:"), styleValue.Render(i.log.Level().String()))
		return nil
	}
	level, err := logging.ParseLevel(args[0])
	if err != nil {
		return usage.Errorf("unknown log level %q; expected debug, info, warning, or error", args[0])
	}
	i.log.SetLevel(level)
	fmt.Fprintf(i.out, "%s %s\n", styleLabel.Render("log level:"), styleValue.Render(level.String()))
	return nil
}

func (i *Interpreter) verbHelp(args []string, kwargs map[string][]string) error {
	return i.printHelp(args)
}

func (i *Interpreter) verbQuit(args []string, kwargs map[string][]string) error {
	i.done = true
	return nil
}

// splitSelector peels the positional selector off the front of the
// argument list.
func splitSelector(args []string) (string, []string, error) {
	if len(args) == 0 {
		return "", nil, usage.Errorf("missing selector (a number or range like 2 or 3-5)")
	}
	return args[0], args[1:], nil
}

func (i *Interpreter) reportBatch(did string, succeeded, total int) {
	line := fmt.Sprintf("%s %d of %d", did, succeeded, total)
	if succeeded < total {
		fmt.Fprintln(i.out, styleWarning.Render(line))
		return
	}
	fmt.Fprintln(i.out, styleSuccess.Render(line))
}

// resolveDir picks the storage directory for load and save: an
// explicit positional argument, else the configured default.
func (i *Interpreter) resolveDir(args []string) (string, error) {
	switch len(args) {
	case 0:
		return i.dataDir, nil
	case 1:
		return expand(args[0]), nil
	default:
		return "", usage.Errorf("expected at most one directory argument")
	}
}

// watchDir points the external-change watcher at dir, replacing any
// previous watch. Failure to watch is not fatal; save just loses its
// external-change warning.
func (i *Interpreter) watchDir(dir string) {
	_ = i.Close()
	w, err := store.NewWatcher(dir, i.log)
	if err != nil {
		i.log.Warningf("cannot watch %s for external changes: %v", dir, err)
		return
	}
	i.watcher = w
}

// expand resolves a leading ~ against the home directory.
func expand(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}
