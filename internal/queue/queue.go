// Package queue writes batch job scripts and submits them to PBS or Slurm
package queue

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path"
	"strconv"
	"strings"
)

// Job describes one batch job
type Job struct {
	Name     string
	Command  string
	Threads  int
	Memory   string
	Walltime string
}

// Submitter is a batch queueing system
type Submitter interface {
	Script(job Job) []string
	Submit(ctx context.Context, filename string) (int, error)
	// Extension is the file extension for job scripts
	Extension() string
}

// New returns the Submitter for a queue type name
func New(kind string) (Submitter, error) {
	switch strings.ToLower(kind) {
	case "pbs":
		return PBS{}, nil
	case "slurm":
		return Slurm{}, nil
	}
	return nil, fmt.Errorf("queue: unknown queue type %q", kind)
}

// MakeInput joins the head, body and foot of a file
func MakeInput(head, foot, body []string) []string {
	file := make([]string, 0, len(head)+len(body)+len(foot))
	file = append(file, head...)
	file = append(file, body...)
	file = append(file, foot...)
	return file
}

// WriteScript writes lines to filename as an executable script
func WriteScript(filename string, lines []string) error {
	return os.WriteFile(filename, []byte(strings.Join(lines, "\n")+"\n"), 0755)
}

func defaults(job Job) Job {
	if job.Name == "" {
		job.Name = "adcref"
	}
	if job.Threads < 1 {
		job.Threads = 1
	}
	if job.Memory == "" {
		job.Memory = "8gb"
	}
	if job.Walltime == "" {
		job.Walltime = "01:00:00"
	}
	return job
}

func submit(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("queue: %s %s: %w", name,
			strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Basename strips the directory and extension from filename
func Basename(filename string) string {
	file := path.Base(filename)
	return strings.TrimSuffix(file, path.Ext(file))
}

// PBS implements Submitter for PBS Pro
type PBS struct{}

func (p PBS) Extension() string { return "pbs" }

func (p PBS) Script(job Job) []string {
	job = defaults(job)
	head := []string{
		"#!/bin/sh",
		"#PBS -N " + job.Name,
		"#PBS -S /bin/bash",
		"#PBS -j oe",
		"#PBS -o /dev/null",
		"#PBS -W umask=022",
		"#PBS -l walltime=" + job.Walltime,
		"#PBS -l ncpus=" + strconv.Itoa(job.Threads),
		"#PBS -l mem=" + job.Memory,
		"export WORKDIR=$PBS_O_WORKDIR",
		"export QCSCRATCH=/tmp/$USER/$PBS_JOBID",
		"cd $WORKDIR",
		"mkdir -p $QCSCRATCH",
	}
	foot := []string{"rm -rf $QCSCRATCH"}
	return MakeInput(head, foot, []string{job.Command})
}

// Submit runs qsub on filename and returns the job number
func (p PBS) Submit(ctx context.Context, filename string) (int, error) {
	out, err := submit(ctx, "qsub", filename)
	if err != nil {
		return 0, err
	}
	// qsub prints the job id as number.server
	id, err := strconv.Atoi(Basename(out))
	if err != nil {
		return 0, fmt.Errorf("queue: unexpected qsub output %q", out)
	}
	return id, nil
}

// Slurm implements Submitter for Slurm
type Slurm struct{}

func (s Slurm) Extension() string { return "slurm" }

func (s Slurm) Script(job Job) []string {
	job = defaults(job)
	head := []string{
		"#!/bin/bash",
		"#SBATCH --job-name=" + job.Name,
		"#SBATCH --ntasks=1",
		"#SBATCH --cpus-per-task=" + strconv.Itoa(job.Threads),
		"#SBATCH -o /dev/null",
		"#SBATCH --no-requeue",
		"#SBATCH --mem=" + job.Memory,
		"#SBATCH --time=" + job.Walltime,
	}
	return MakeInput(head, nil, []string{job.Command})
}

// Submit runs sbatch on filename and returns the job number
func (s Slurm) Submit(ctx context.Context, filename string) (int, error) {
	// srun would grab a whole node and run interactively
	out, err := submit(ctx, "sbatch", filename)
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return 0, fmt.Errorf("queue: empty sbatch output")
	}
	id, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, fmt.Errorf("queue: unexpected sbatch output %q", out)
	}
	return id, nil
}
