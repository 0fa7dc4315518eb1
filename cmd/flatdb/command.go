package main

import (
	"fmt"
	"os"

	"flatdb/database"
	"flatdb/internal/dump"
)

type MetaCommandResult int

const (
	MetaCommandSuccess MetaCommandResult = iota
	MetaCommandUnrecognizedCommand
)

// handleMetaCommand dispatches a "." line: .exit flushes and terminates
// the process, .constants and .btree print diagnostics. Anything else is
// unrecognized and the caller prints the standard message.
func handleMetaCommand(line string, db *database.DB) MetaCommandResult {
	switch line {
	case ".exit":
		if err := db.Close(); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		os.Exit(0)
	case ".constants":
		dump.Constants(os.Stdout)
		return MetaCommandSuccess
	case ".btree":
		if err := dump.Tree(os.Stdout, db.Pager(), 0); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		return MetaCommandSuccess
	}
	return MetaCommandUnrecognizedCommand
}
