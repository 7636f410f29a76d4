package client

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/atinyakov/JobTracker/internal/models"
)

// clearValue, entered for an optional field while editing, empties it.
const clearValue = "-"

// Prompter reads answers line by line.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewPrompter returns a Prompter reading from in and printing labels to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{scanner: bufio.NewScanner(in), out: out}
}

// Line prints label and returns the trimmed answer. ok is false at end of input.
func (p *Prompter) Line(label string) (string, bool) {
	fmt.Fprint(p.out, label)
	if !p.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.scanner.Text()), true
}

// JobInput asks for the fields of a new job.
func (p *Prompter) JobInput() models.JobInput {
	var in models.JobInput
	in.Title, _ = p.Line("Title: ")
	in.Company, _ = p.Line("Company: ")
	if link, _ := p.Line("Link (optional): "); link != "" {
		in.Link = &link
	}
	in.Status, _ = p.Line(fmt.Sprintf("Status [%s]: ", strings.Join(models.KnownStatuses, "/")))
	if notes, _ := p.Line("Notes (optional): "); notes != "" {
		in.Notes = &notes
	}
	return in
}

// JobUpdate asks for new values of job. An empty answer keeps the current
// value and "-" clears an optional field.
func (p *Prompter) JobUpdate(job *models.Job) models.JobUpdate {
	var upd models.JobUpdate
	upd.Title = p.changed("Title", job.Title, false)
	upd.Company = p.changed("Company", job.Company, false)
	upd.Link = p.changed("Link", deref(job.Link), true)
	upd.Status = p.changed("Status", job.Status, false)
	upd.Notes = p.changed("Notes", deref(job.Notes), true)
	return upd
}

func (p *Prompter) changed(name, current string, clearable bool) *string {
	label := fmt.Sprintf("%s [%s]: ", name, current)
	if clearable {
		label = fmt.Sprintf("%s [%s] ('%s' clears): ", name, current, clearValue)
	}
	answer, _ := p.Line(label)
	switch {
	case answer == "":
		return nil
	case clearable && answer == clearValue:
		empty := ""
		return &empty
	case answer == current:
		return nil
	}
	return &answer
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// PrintJob writes a human-readable job record.
func PrintJob(w io.Writer, job *models.Job) {
	fmt.Fprintf(w, "ID: %d\nTitle: %s\nCompany: %s\nStatus: %s\n", job.ID, job.Title, job.Company, job.Status)
	if job.Link != nil && *job.Link != "" {
		fmt.Fprintf(w, "Link: %s\n", *job.Link)
	}
	if job.Notes != nil && *job.Notes != "" {
		fmt.Fprintf(w, "Notes: %s\n", *job.Notes)
	}
	fmt.Fprintln(w, "---")
}
