package qchem

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ntBre/go-adcref/internal/queue"
)

// Runner runs Q-Chem on infile, leaving the output in outfile
type Runner interface {
	Run(ctx context.Context, infile, outfile string) error
}

// Local runs Q-Chem as a child process
type Local struct {
	// Command is the Q-Chem executable, "qchem" if empty
	Command string
	Threads int
}

func (l Local) Run(ctx context.Context, infile, outfile string) error {
	command := l.Command
	if command == "" {
		command = "qchem"
	}
	threads := max(l.Threads, 1)
	cmd := exec.CommandContext(ctx, command, "-nt", strconv.Itoa(threads),
		infile, outfile)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	slog.Debug("running qchem", "cmd", cmd.String())
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("qchem: %s: %w: %s", cmd.String(), err,
			strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Queued submits Q-Chem runs to a batch queue and waits for the output
type Queued struct {
	Submitter queue.Submitter
	Job       queue.Job
	// Interval between checks of the output file
	Interval time.Duration
	// Retries bounds the number of checks
	Retries int
	Logger  *slog.Logger
}

func (q *Queued) logger() *slog.Logger {
	if q.Logger == nil {
		return slog.Default()
	}
	return q.Logger
}

func (q *Queued) Run(ctx context.Context, infile, outfile string) error {
	job := q.Job
	job.Name = strings.TrimSuffix(filepath.Base(infile), filepath.Ext(infile))
	threads := max(job.Threads, 1)
	job.Command = fmt.Sprintf("qchem -nt %d %s %s", threads, infile, outfile)
	script := strings.TrimSuffix(infile, filepath.Ext(infile)) +
		"." + q.Submitter.Extension()
	if err := queue.WriteScript(script, q.Submitter.Script(job)); err != nil {
		return fmt.Errorf("qchem: writing job script: %w", err)
	}
	id, err := q.Submitter.Submit(ctx, script)
	if err != nil {
		return err
	}
	q.logger().Info("submitted qchem job", "id", id, "input", infile)
	return q.wait(ctx, outfile)
}

func (q *Queued) wait(ctx context.Context, outfile string) error {
	var err error
	for try := 0; try <= q.Retries; try++ {
		_, err = ParseOutput(outfile)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrFileNotFound),
			errors.Is(err, ErrBlankOutput),
			errors.Is(err, ErrUnfinished):
		default:
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(q.Interval):
		}
	}
	return fmt.Errorf("qchem: gave up waiting for %s: %w", outfile, err)
}
