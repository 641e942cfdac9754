package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/stemsi/class-subjects/internal/form"
	"github.com/stemsi/class-subjects/internal/model"
)

const helpText = `Commands:
  classes             list the classes
  class <name>        select a class
  open                open the subjects dialog for the selected class
  add                 add an empty subject entry
  remove <n>          remove entry n
  set <n> <subject>   set the text of entry n
  show                print the dialog
  submit              validate and save the subjects
  list                print every stored record
  close               close the dialog and discard entries
  help                show this help
  quit                exit`

// recordLister reads stored records back from the API.
type recordLister interface {
	ListSubjects(ctx context.Context) ([]model.SubjectsRecord, error)
}

// console maps typed commands onto the subjects form.
type console struct {
	form *form.Form
	api  recordLister
	out  io.Writer
}

// exec runs one command line. It reports false when the console should exit.
func (c *console) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit":
		return false

	case "help", "?":
		fmt.Fprintln(c.out, helpText)

	case "classes":
		fmt.Fprintln(c.out, strings.Join(model.Classes, "  "))

	case "class":
		if len(args) != 1 {
			fmt.Fprintln(c.out, "usage: class <name>")
			return true
		}
		if err := c.form.SelectClass(args[0]); err != nil {
			fmt.Fprintf(c.out, "error: %v (try \"classes\")\n", err)
			return true
		}
		fmt.Fprintf(c.out, "Selected %s\n", args[0])

	case "open":
		if err := c.form.Open(); err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
			return true
		}
		c.render()

	case "add":
		if !c.requireOpen() {
			return true
		}
		c.form.AddEntry()
		c.render()

	case "remove":
		if !c.requireOpen() {
			return true
		}
		idx, ok := entryIndex(args)
		if !ok {
			fmt.Fprintln(c.out, "usage: remove <n>")
			return true
		}
		c.form.RemoveEntry(idx)
		c.render()

	case "set":
		if !c.requireOpen() {
			return true
		}
		idx, ok := entryIndex(args)
		if !ok {
			fmt.Fprintln(c.out, "usage: set <n> <subject>")
			return true
		}
		c.form.UpdateEntry(idx, strings.Join(args[1:], " "))
		c.render()

	case "show":
		c.render()

	case "submit":
		if !c.requireOpen() {
			return true
		}
		// Validation and transport failures are part of the rendered dialog.
		err := c.form.Submit(ctx)
		var (
			verr *form.ValidationError
			serr *form.SubmitError
		)
		if err != nil && !errors.As(err, &verr) && !errors.As(err, &serr) {
			fmt.Fprintf(c.out, "error: %v\n", err)
			return true
		}
		c.render()

	case "list":
		records, err := c.api.ListSubjects(ctx)
		if err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
			return true
		}
		if len(records) == 0 {
			fmt.Fprintln(c.out, "No subjects stored yet.")
			return true
		}
		for i, rec := range records {
			fmt.Fprintf(c.out, "%3d  %-10s %s\n", i+1, rec.ClassName, strings.Join(rec.Subjects, ", "))
		}

	case "close":
		if err := c.form.Close(); err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
			return true
		}
		fmt.Fprintln(c.out, "Dialog closed.")

	default:
		fmt.Fprintf(c.out, "unknown command %q (type \"help\")\n", cmd)
	}
	return true
}

// entryIndex parses the 1-based entry number in args[0].
func entryIndex(args []string) (int, bool) {
	if len(args) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}

func (c *console) requireOpen() bool {
	if !c.form.Snapshot().Open {
		fmt.Fprintln(c.out, "The dialog is closed. Use \"class <name>\" and \"open\" first.")
		return false
	}
	return true
}

func (c *console) render() {
	snap := c.form.Snapshot()
	if !snap.Open {
		fmt.Fprintf(c.out, "[%s] dialog closed\n", snap.State)
		return
	}

	fmt.Fprintf(c.out, "Add Subjects for %s [%s]\n", snap.Class, snap.State)
	for i, entry := range snap.Entries {
		line := fmt.Sprintf("  %d. %s", i+1, entry)
		if i < len(snap.Errors) && snap.Errors[i] != "" {
			line += "   ! " + snap.Errors[i]
		}
		fmt.Fprintln(c.out, line)
	}
	if snap.Failure != "" {
		fmt.Fprintln(c.out, "Error: "+snap.Failure)
	}
	if snap.Notice != "" {
		fmt.Fprintln(c.out, snap.Notice)
	}
}
