// Command adcref generates Q-Chem ADC reference data and inspects the
// orbital-space layout used by the integral import checks.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	verbose   bool
	threads   int
	queueType string

	rootCmd = &cobra.Command{
		Use:   "adcref",
		Short: "Generate and inspect ADC reference data",
		Long: `adcref writes and runs Q-Chem ADC inputs, collects the excited-state
data into YAML reference dumps and prints the orbital slice layout
of a reference state.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
				&slog.HandlerOptions{Level: level})))
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log debug messages")
	rootCmd.AddCommand(inputCmd, runCmd, dumpCmd, dumpReferenceCmd,
		casesCmd, slicesCmd)
	for _, cmd := range []*cobra.Command{dumpCmd, dumpReferenceCmd} {
		cmd.Flags().IntVarP(&threads, "threads", "n", 4,
			"threads per Q-Chem run")
		cmd.Flags().StringVarP(&queueType, "queue", "q", "",
			"submit through pbs or slurm instead of running locally")
	}
	for _, cmd := range []*cobra.Command{runCmd, dumpCmd, dumpReferenceCmd} {
		cmd.Flags().StringVar(&scratch, "scratch", "",
			"parent directory of the Q-Chem scratch directories")
	}
	dumpCmd.Flags().StringVar(&potential, "potential", "fa_6w",
		"name of the embedding potential")
	dumpCmd.Flags().StringVar(&potDir, "potdir", ".",
		"directory searched for the potential file")
	dumpCmd.Flags().StringVarP(&output, "output", "o", "",
		"output file, qchem_dump.yml if empty")
	dumpReferenceCmd.Flags().StringVarP(&outDir, "dir", "d", ".",
		"directory for the reference dumps")
	inputCmd.Flags().StringVarP(&output, "output", "o", "",
		"write the input here instead of standard output")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("adcref failed", "err", err)
		stop()
		os.Exit(1)
	}
}
