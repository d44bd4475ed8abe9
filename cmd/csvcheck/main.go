// Command csvcheck validates a CSV file against a YAML schema file.
//
// It imports the file the same way the server does, logs the import report
// and optionally writes the accepted rows back out in normalized form
// (numbers as plain decimals, dates as YYYY-MM-DD).
//
// Exit status is 0 on success, 1 when the file cannot be imported at all
// and 2 when -strict is set and any row was skipped.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JonMunkholm/statentry/internal/core"
	"github.com/JonMunkholm/statentry/internal/logging"
	"github.com/JonMunkholm/statentry/internal/schemafile"
)

const (
	exitOK      = 0
	exitFailed  = 1
	exitSkipped = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("csvcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	schemaPath := fs.String("schema", "", "YAML schema file (required)")
	inPath := fs.String("in", "-", "CSV file to check, - for stdin")
	outPath := fs.String("out", "", "write normalized CSV here, - for stdout")
	strict := fs.Bool("strict", false, "exit 2 when any row is skipped")
	logLevel := fs.String("log-level", "info", "debug, info, warn or error")
	logFormat := fs.String("log-format", "text", "text, json or tint")
	if err := fs.Parse(args); err != nil {
		return exitFailed
	}

	logger := slog.New(logging.NewHandler(stderr, *logLevel, *logFormat))

	if *schemaPath == "" {
		fmt.Fprintln(stderr, "csvcheck: -schema is required")
		fs.Usage()
		return exitFailed
	}

	report, err := check(*schemaPath, *inPath, *outPath, stdin, stdout)
	if err != nil {
		logger.Error("check failed", "error", err, "hint", core.MapError(err).Action)
		return exitFailed
	}

	logger.Info("import report",
		"added", report.Added,
		"skipped", report.Skipped,
		"bytes", report.BytesRead,
	)
	if len(report.ExtraColumns) > 0 {
		logger.Warn("ignored extra columns", "columns", report.ExtraColumns)
	}
	for _, msg := range report.FirstErrors {
		logger.Warn("skipped row", "error", msg)
	}
	if report.Skipped > len(report.FirstErrors) {
		logger.Warn("more rows skipped", "count", report.Skipped-len(report.FirstErrors))
	}

	if *strict && report.Skipped > 0 {
		return exitSkipped
	}
	return exitOK
}

// check loads the schema, imports the input and writes the export.
func check(schemaPath, inPath, outPath string, stdin io.Reader, stdout io.Writer) (core.ImportReport, error) {
	var report core.ImportReport

	schema, err := schemafile.Load(schemaPath)
	if err != nil {
		return report, err
	}
	sess := core.NewSession()
	if err := schemafile.Apply(sess, schema); err != nil {
		return report, err
	}

	in := stdin
	if inPath != "-" {
		f, err := os.Open(inPath) //nolint:gosec // User-specified input path
		if err != nil {
			return report, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	report, err = sess.ImportCSV(in)
	if err != nil {
		return report, err
	}

	switch outPath {
	case "":
		return report, nil
	case "-":
		return report, sess.ExportCSV(stdout)
	}

	out, err := os.Create(outPath) //nolint:gosec // User-specified output path
	if err != nil {
		return report, fmt.Errorf("create output: %w", err)
	}
	if err := sess.ExportCSV(out); err != nil {
		out.Close()
		return report, err
	}
	if err := out.Close(); err != nil {
		return report, fmt.Errorf("close output: %w", err)
	}
	return report, nil
}
