package main

import (
	"fmt"
	"strconv"
	"strings"

	"flatdb/row"
)

type StatementType int

const (
	StatementInsert StatementType = iota
	StatementSelect
)

type PrepareResult int

const (
	PrepareSuccess PrepareResult = iota
	PrepareSyntaxError
	PrepareUnrecognizedStatement
)

type Statement struct {
	Type        StatementType
	RowToInsert row.Row
}

// prepareStatement recognises "INSERT <id> <username> <email>" (case
// insensitive keyword) and "SELECT", validating the insert's id sign
// and the username/email lengths before a row is ever constructed.
func prepareStatement(line string, stmt *Statement) PrepareResult {
	upper := strings.ToUpper(line)
	switch {
	case strings.HasPrefix(upper, "INSERT"):
		stmt.Type = StatementInsert
		return prepareInsert(line, stmt)
	case upper == "SELECT":
		stmt.Type = StatementSelect
		return PrepareSuccess
	default:
		return PrepareUnrecognizedStatement
	}
}

func prepareInsert(line string, stmt *Statement) PrepareResult {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return PrepareSyntaxError
	}
	idField, username, email := fields[1], fields[2], fields[3]

	if strings.HasPrefix(idField, "-") {
		fmt.Println("ID must be positive.")
		return PrepareSyntaxError
	}
	id, err := strconv.ParseUint(idField, 10, 32)
	if err != nil {
		return PrepareSyntaxError
	}
	if len(username) > row.UsernameMaxLen || len(email) > row.EmailMaxLen {
		fmt.Println("String is too long.")
		return PrepareSyntaxError
	}

	stmt.RowToInsert = row.Row{ID: uint32(id), Username: username, Email: email}
	return PrepareSuccess
}
