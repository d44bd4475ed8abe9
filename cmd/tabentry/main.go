// Command tabentry is an interactive shell for defining a schema and
// entering rows into it from the terminal.
//
// Usage:
//
//	tabentry [-schema schema.yaml]
//
// Type help at the prompt for the command list.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/JonMunkholm/statentry/internal/core"
)

func main() {
	schemaPath := flag.String("schema", "", "YAML schema file to load at start")
	flag.Parse()

	if err := repl(*schemaPath); err != nil {
		fmt.Fprintf(os.Stderr, "tabentry: %v\n", err)
		os.Exit(1)
	}
}

func repl(schemaPath string) error {
	lin := liner.NewLiner()
	defer lin.Close()
	lin.SetCtrlCAborts(true)
	lin.SetCompleter(func(line string) []string {
		var out []string
		for _, name := range commandNames() {
			if strings.HasPrefix(name, strings.ToLower(line)) {
				out = append(out, name)
			}
		}
		return out
	})

	sh := &shell{
		sess:   core.NewSession(),
		out:    os.Stdout,
		prompt: lin.Prompt,
	}
	if err := sh.sess.DefineFieldCount(core.DefaultFieldCount); err != nil {
		return err
	}
	if schemaPath != "" {
		if err := sh.load([]string{schemaPath}); err != nil {
			return err
		}
	}

	for {
		got, err := lin.Prompt("> ")
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println()
				return nil
			}
			log.Printf("unexpected error reading prompt: %v", err)
			continue
		}
		if strings.TrimSpace(got) == "" {
			continue
		}
		lin.AppendHistory(got)

		err = sh.exec(got)
		if errors.Is(err, errQuit) {
			return nil
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println("row discarded")
			continue
		}
		if err != nil {
			fmt.Printf("error: %s\n", describe(err))
		}
	}
}
