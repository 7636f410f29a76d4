package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atinyakov/JobTracker/internal/models"
)

const helpText = "Available commands: help, list [skip] [limit], get <id>, add, edit <id>, status <id> <status>, delete <id>, logout, exit"

// Shell is the interactive job tracker prompt. API.Token must be set.
type Shell struct {
	API    *API
	Store  *SessionStore
	Prompt *Prompter
	Out    io.Writer
}

// Run reads commands until exit, end of input, or an expired session.
func (s *Shell) Run(ctx context.Context) error {
	for {
		line, ok := s.Prompt.Line("jobtracker> ")
		if !ok {
			return nil
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		done, err := s.exec(ctx, args)
		if errors.Is(err, ErrSessionExpired) {
			fmt.Fprintln(s.Out, "Session expired. Please log in again.")
			return s.Store.Clear()
		}
		if err != nil {
			fmt.Fprintln(s.Out, "Error:", err)
		}
		if done {
			return nil
		}
	}
}

func (s *Shell) exec(ctx context.Context, args []string) (bool, error) {
	switch args[0] {
	case "help":
		fmt.Fprintln(s.Out, helpText)
	case "list":
		return false, s.list(ctx, args[1:])
	case "get":
		id, err := idArg(args, "get <id>")
		if err != nil {
			return false, err
		}
		job, err := s.API.GetJob(ctx, id)
		if err != nil {
			return false, err
		}
		PrintJob(s.Out, job)
	case "add":
		job, err := s.API.CreateJob(ctx, s.Prompt.JobInput())
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.Out, "Job %d added\n", job.ID)
	case "edit":
		id, err := idArg(args, "edit <id>")
		if err != nil {
			return false, err
		}
		job, err := s.API.GetJob(ctx, id)
		if err != nil {
			return false, err
		}
		upd := s.Prompt.JobUpdate(job)
		if upd.Empty() {
			fmt.Fprintln(s.Out, "Nothing changed")
			return false, nil
		}
		if _, err := s.API.UpdateJob(ctx, id, upd); err != nil {
			return false, err
		}
		fmt.Fprintln(s.Out, "Job updated")
	case "status":
		if len(args) < 3 {
			return false, errors.New("usage: status <id> <status>")
		}
		id, err := idArg(args, "status <id> <status>")
		if err != nil {
			return false, err
		}
		status := strings.Join(args[2:], " ")
		job, err := s.API.UpdateJob(ctx, id, jobStatus(status))
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.Out, "Job %d is now %s\n", job.ID, job.Status)
	case "delete":
		id, err := idArg(args, "delete <id>")
		if err != nil {
			return false, err
		}
		if _, err := s.API.DeleteJob(ctx, id); err != nil {
			return false, err
		}
		fmt.Fprintln(s.Out, "Job deleted")
	case "logout":
		if err := s.Store.Clear(); err != nil {
			return false, err
		}
		fmt.Fprintln(s.Out, "Logged out")
		return true, nil
	case "exit":
		fmt.Fprintln(s.Out, "Bye")
		return true, nil
	default:
		fmt.Fprintln(s.Out, "Unknown command. Type 'help' for a list of commands.")
	}
	return false, nil
}

func (s *Shell) list(ctx context.Context, args []string) error {
	skip, limit := 0, 100
	var err error
	if len(args) > 0 {
		if skip, err = strconv.Atoi(args[0]); err != nil {
			return errors.New("usage: list [skip] [limit]")
		}
	}
	if len(args) > 1 {
		if limit, err = strconv.Atoi(args[1]); err != nil {
			return errors.New("usage: list [skip] [limit]")
		}
	}

	jobs, err := s.API.ListJobs(ctx, skip, limit)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		fmt.Fprintln(s.Out, "No jobs")
		return nil
	}
	for i := range jobs {
		PrintJob(s.Out, &jobs[i])
	}
	return nil
}

func idArg(args []string, usage string) (int64, error) {
	if len(args) < 2 {
		return 0, errors.New("usage: " + usage)
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", args[1])
	}
	return id, nil
}

func jobStatus(status string) models.JobUpdate {
	return models.JobUpdate{Status: &status}
}
