// Command flatdb is the interactive front-end over the database façade:
// a line-oriented prompt, a tiny statement parser, and a meta-command
// handler. It exists only so the storage engine is runnable end to end.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"flatdb/database"
)

func main() {
	path := "data.db"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	db, err := database.Open(path)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		printPrompt()
		line, err := readInput(reader)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if line == "" {
			continue
		}

		if line[0] == '.' {
			if handleMetaCommand(line, db) == MetaCommandUnrecognizedCommand {
				fmt.Printf("Unrecognized command '%s'.\n", line)
			}
			continue
		}

		var stmt Statement
		switch prepareStatement(line, &stmt) {
		case PrepareSuccess:
			executeStatement(stmt, db)
		case PrepareSyntaxError:
			fmt.Printf("Syntax error in statement '%s'.\n", line)
		case PrepareUnrecognizedStatement:
			fmt.Printf("Unrecognized keyword at start of '%s'.\n", line)
		}
	}
}

func executeStatement(stmt Statement, db *database.DB) {
	switch stmt.Type {
	case StatementInsert:
		err := db.Insert(stmt.RowToInsert)
		switch {
		case err == nil:
			fmt.Println("Executed.")
		case errors.Is(err, database.ErrDuplicateKey):
			fmt.Println("Failed to insert, key already exists.")
		default:
			fmt.Println(err)
			os.Exit(1)
		}
	case StatementSelect:
		rows, err := db.SelectAll()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		for _, r := range rows {
			fmt.Printf("%d %s %s\n", r.ID, r.Username, r.Email)
		}
		fmt.Println("Executed.")
	}
}
