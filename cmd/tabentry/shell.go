package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/statentry/internal/core"
	"github.com/JonMunkholm/statentry/internal/schemafile"
)

// errQuit ends the read loop.
var errQuit = errors.New("quit")

// promptFunc reads one line of input after showing prompt.
type promptFunc func(prompt string) (string, error)

// shell executes tabentry commands against a single session.
type shell struct {
	sess   *core.Session
	out    io.Writer
	prompt promptFunc
}

type command struct {
	usage string
	help  string
	run   func(sh *shell, args []string) error
}

// commands is filled in init since help refers back to it.
var commands map[string]command

func init() {
	commands = map[string]command{
		"fields": {"fields N", "start a new draft with N variables", (*shell).fields},
		"field":  {"field I NAME TYPE", "set variable I (1-based); TYPE is short text, long text, number or date", (*shell).field},
		"commit": {"commit", "save the draft as the schema (clears all rows)", (*shell).commit},
		"reset":  {"reset", "drop schema, draft and rows", (*shell).reset},
		"add":    {"add", "enter one row, prompting for each variable", (*shell).add},
		"clear":  {"clear", "drop all rows, keep the schema", (*shell).clear},
		"show":   {"show", "print the data table", (*shell).show},
		"schema": {"schema", "print the schema or draft", (*shell).schema},
		"import": {"import PATH", "append rows from a CSV file", (*shell).importCSV},
		"export": {"export [PATH]", "write rows as CSV to PATH or the terminal", (*shell).exportCSV},
		"load":   {"load PATH", "load and commit a YAML schema file", (*shell).load},
		"save":   {"save PATH", "write the schema to a YAML file", (*shell).save},
		"help":   {"help", "list commands", (*shell).help},
		"quit":   {"quit", "leave tabentry", func(*shell, []string) error { return errQuit }},
	}
}

// commandNames returns the command names in sorted order.
func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// exec runs one input line. It returns errQuit when the user asks to leave.
func (sh *shell) exec(line string) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}
	name := strings.ToLower(args[0])
	if name == "exit" {
		name = "quit"
	}
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q, try help", args[0])
	}
	return cmd.run(sh, args[1:])
}

func (sh *shell) printf(format string, args ...any) {
	fmt.Fprintf(sh.out, format, args...)
}

func usageError(name string) error {
	return fmt.Errorf("usage: %s", commands[name].usage)
}

func (sh *shell) fields(args []string) error {
	if len(args) != 1 {
		return usageError("fields")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return usageError("fields")
	}
	if err := sh.sess.DefineFieldCount(n); err != nil {
		return err
	}
	sh.printf("draft has %d variables\n", n)
	return nil
}

func (sh *shell) field(args []string) error {
	if len(args) < 3 {
		return usageError("field")
	}
	i, err := strconv.Atoi(args[0])
	if err != nil {
		return usageError("field")
	}
	t, err := core.ParseFieldType(strings.Join(args[2:], " "))
	if err != nil {
		return err
	}
	return sh.sess.UpdateDraftField(i-1, args[1], t)
}

func (sh *shell) commit([]string) error {
	schema, err := sh.sess.CommitSchema()
	if err != nil {
		return err
	}
	sh.printf("schema saved: %s\n", strings.Join(schema.Names(), ", "))
	return nil
}

func (sh *shell) reset([]string) error {
	sh.sess.ResetSchema()
	sh.printf("schema and data cleared\n")
	return nil
}

func (sh *shell) add([]string) error {
	schema := sh.sess.CurrentSchema()
	if schema.IsZero() {
		return core.ErrNoSchema
	}

	raw := make(map[string]any, schema.Len())
	for _, f := range schema.Fields() {
		v, err := sh.prompt(fmt.Sprintf("%s (%s): ", f.Name, f.Type))
		if err != nil {
			return err
		}
		raw[f.Name] = v
	}
	if _, err := sh.sess.SubmitRow(raw); err != nil {
		return err
	}
	sh.printf("row %d added\n", sh.sess.RowCount())
	return nil
}

func (sh *shell) clear([]string) error {
	n := sh.sess.RowCount()
	sh.sess.ClearRows()
	sh.printf("%d rows cleared\n", n)
	return nil
}

func (sh *shell) show([]string) error {
	schema := sh.sess.CurrentSchema()
	if schema.IsZero() {
		return core.ErrNoSchema
	}
	rows := sh.sess.CurrentRows()
	if len(rows) == 0 {
		sh.printf("No data yet. Add a row or import a CSV file.\n")
		return nil
	}

	tw := tabwriter.NewWriter(sh.out, 0, 4, 2, ' ', 0)
	names := schema.Names()
	fmt.Fprintln(tw, strings.Join(names, "\t"))
	cells := make([]string, len(names))
	for _, row := range rows {
		for i, n := range names {
			cells[i] = row[n].String()
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	sh.printf("(%d rows)\n", len(rows))
	return nil
}

func (sh *shell) schema([]string) error {
	if schema := sh.sess.CurrentSchema(); !schema.IsZero() {
		data, err := schemafile.Marshal(schema)
		if err != nil {
			return err
		}
		_, err = sh.out.Write(data)
		return err
	}
	draft := sh.sess.Draft()
	if len(draft) == 0 {
		sh.printf("no schema; start with: fields N\n")
		return nil
	}
	sh.printf("draft (not saved):\n")
	for i, f := range draft {
		name := f.Name
		if name == "" {
			name = "<unnamed>"
		}
		sh.printf("  %d. %s (%s)\n", i+1, name, f.Type)
	}
	return nil
}

func (sh *shell) importCSV(args []string) error {
	if len(args) != 1 {
		return usageError("import")
	}
	f, err := os.Open(args[0]) //nolint:gosec // User-specified input path
	if err != nil {
		return err
	}
	defer f.Close()

	report, err := sh.sess.ImportCSV(f)
	if err != nil {
		return err
	}
	sh.printf("%d rows added, %d skipped\n", report.Added, report.Skipped)
	for _, msg := range report.FirstErrors {
		sh.printf("  %s\n", msg)
	}
	if len(report.ExtraColumns) > 0 {
		sh.printf("ignored columns: %s\n", strings.Join(report.ExtraColumns, ", "))
	}
	return nil
}

func (sh *shell) exportCSV(args []string) error {
	switch len(args) {
	case 0:
		return sh.sess.ExportCSV(sh.out)
	case 1:
	default:
		return usageError("export")
	}

	f, err := os.Create(args[0]) //nolint:gosec // User-specified output path
	if err != nil {
		return err
	}
	if err := sh.sess.ExportCSV(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	sh.printf("%d rows written to %s\n", sh.sess.RowCount(), args[0])
	return nil
}

func (sh *shell) load(args []string) error {
	if len(args) != 1 {
		return usageError("load")
	}
	schema, err := schemafile.Load(args[0])
	if err != nil {
		return err
	}
	if err := schemafile.Apply(sh.sess, schema); err != nil {
		return err
	}
	sh.printf("schema loaded: %s\n", strings.Join(schema.Names(), ", "))
	return nil
}

func (sh *shell) save(args []string) error {
	if len(args) != 1 {
		return usageError("save")
	}
	schema := sh.sess.CurrentSchema()
	if schema.IsZero() {
		return core.ErrNoSchema
	}
	return schemafile.Save(args[0], schema)
}

func (sh *shell) help([]string) error {
	tw := tabwriter.NewWriter(sh.out, 0, 4, 2, ' ', 0)
	for _, name := range commandNames() {
		c := commands[name]
		fmt.Fprintf(tw, "  %s\t%s\n", c.usage, c.help)
	}
	return tw.Flush()
}

// describe renders err for the terminal, with guidance when available.
func describe(err error) string {
	if core.IsUserFacing(err) {
		return core.FormatUserError(err)
	}
	return err.Error()
}
