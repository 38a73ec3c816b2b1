package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"dupetree/internal/config"
	"dupetree/internal/hash"
	"dupetree/internal/progress"
	"dupetree/internal/report"
	"dupetree/internal/scan"
)

const (
	configFlagName     = "config"
	excludeFlagName    = "exclude"
	algorithmFlagName  = "algorithm"
	formatFlagName     = "format"
	outputFlagName     = "output"
	onErrorFlagName    = "on-error"
	noProgressFlagName = "no-progress"
	logFileFlagName    = "log-file"
	verboseFlagName    = "verbose"
)

const rootLongDescription = `Find duplicate files beneath a directory (default: the current one).

Files are compared by size first; content digests are only computed for
files that share a size with another file.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dupetree [flags] [directory]",
		Short:         "Find duplicate files by size and content hash",
		Long:          rootLongDescription,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			directory := "."
			if len(args) == 1 {
				directory = args[0]
			}
			return runScan(cmd, directory)
		},
	}

	configureRootFlags(cmd.PersistentFlags())

	cmd.AddCommand(newAlgorithmsCmd())
	cmd.AddCommand(newCompareCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func configureRootFlags(fs *pflag.FlagSet) {
	fs.StringP(configFlagName, "c", config.DefaultPath, "config file path")
	fs.StringArrayP(excludeFlagName, "x", nil, "exclude files matching glob; trailing / for directories (can be repeated)")
	fs.StringP(algorithmFlagName, "a", "", "content digest algorithm (see 'dupetree algorithms')")
	fs.StringP(formatFlagName, "f", "", "report format: text or json")
	fs.StringP(outputFlagName, "o", "", "write the report to this file instead of stdout")
	fs.String(onErrorFlagName, "", "unreadable files: skip or abort")
	fs.Bool(noProgressFlagName, false, "disable the progress line")
	fs.String(logFileFlagName, "", "write logs to this file (rotated)")
	fs.BoolP(verboseFlagName, "v", false, "log at debug level")
}

// loadConfig reads the config file and lets explicitly set flags override it.
func loadConfig(fs *pflag.FlagSet) (*config.Config, error) {
	path, _ := fs.GetString(configFlagName)
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if fs.Changed(excludeFlagName) {
		extra, _ := fs.GetStringArray(excludeFlagName)
		cfg.Exclude = append(cfg.Exclude, extra...)
	}

	overrides := map[string]*string{
		algorithmFlagName: &cfg.Algorithm,
		formatFlagName:    &cfg.Format,
		outputFlagName:    &cfg.Output,
		onErrorFlagName:   &cfg.OnError,
		logFileFlagName:   &cfg.Log.Filename,
	}
	for name, target := range overrides {
		if fs.Changed(name) {
			*target, _ = fs.GetString(name)
		}
	}

	if verbose, _ := fs.GetBool(verboseFlagName); verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runScan(cmd *cobra.Command, directory string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	noProgress, _ := cmd.Flags().GetBool(noProgressFlagName)
	bar := progress.New(cmd.ErrOrStderr(), !noProgress && progress.IsTerminal(os.Stderr))

	closeLog := configureLogger(cfg.Log, bar.LogWriter(cmd.ErrOrStderr()))
	defer closeLog()

	algo, err := hash.Lookup(cfg.Algorithm)
	if err != nil {
		return err
	}

	result, err := scan.Run(cmd.Context(), directory, scan.Options{
		Exclude:      cfg.Exclude,
		Hasher:       hash.Func(algo),
		AbortOnError: cfg.OnError == config.OnErrorAbort,
		Progress:     bar,
	})
	bar.Finish()
	if err != nil {
		return err
	}

	r, err := report.Build(result, algo.Name)
	if err != nil {
		return err
	}

	if cfg.Output != "" {
		if err := report.Save(r, cfg.Output, cfg.Format); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Found %d files.\n", result.Visited)
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", cfg.Output)
		return nil
	}

	// JSON on stdout must stay parseable
	if cfg.Format == config.FormatText {
		fmt.Fprintf(cmd.OutOrStdout(), "Found %d files.\n", result.Visited)
	}

	return report.Write(cmd.OutOrStdout(), r, cfg.Format)
}
