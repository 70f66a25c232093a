package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newRootCmd(env *Environment) *cobra.Command {
	common := &commonFlags{}

	root := &cobra.Command{
		Use:   "mdexport",
		Short: "Export Markdown notes to HTML, PDF and every format pandoc writes",
		Long: `mdexport renders notes the way the note application shows them, then
hands the result to pandoc (or a headless browser for PDF).

Configuration is read from --config, MDEXPORT_CONFIG, or defaults.
Flags override environment variables, which override the config file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch common.color {
			case "auto", "always", "never":
			default:
				return fmt.Errorf("%w: --color must be auto, always or never, got %q", errUsage, common.color)
			}
			if common.quiet && common.verbose {
				return fmt.Errorf("%w: --quiet and --verbose are mutually exclusive", errUsage)
			}
			return nil
		},
	}
	addCommonFlags(root.PersistentFlags(), common)

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})

	root.AddCommand(
		newExportCmd(env, common),
		newFormatsCmd(env),
		newDoctorCmd(env),
		newVersionCmd(env),
	)
	return root
}

// execute runs the command line and returns the process exit code.
func execute(args []string, env *Environment) int {
	ctx, stop := notifyContext(context.Background())
	defer stop()

	root := newRootCmd(env)
	root.SetArgs(args)
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	if isUnknownCommand(err) {
		err = fmt.Errorf("%w: %v", errUsage, err)
	}

	printError(env, root, err)
	return exitCodeFor(err)
}

// printError reports a command failure with its hint. Batch failures were
// already reported note by note.
func printError(env *Environment, root *cobra.Command, err error) {
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(env.Stderr, "interrupted")
		return
	}
	if errors.Is(err, errReported) {
		return
	}

	label := color.New(color.FgRed, color.Bold)
	if mode, ferr := root.PersistentFlags().GetString("color"); ferr == nil {
		applyColorMode(mode, label)
	}
	fmt.Fprintf(env.Stderr, "%s %v%s\n", label.Sprint("error:"), err, errorHint(err, ""))
	if errors.Is(err, errUsage) {
		fmt.Fprintln(env.Stderr, "Run 'mdexport --help' for usage.")
	}
}

func isUnknownCommand(err error) bool {
	return strings.HasPrefix(err.Error(), "unknown command") ||
		strings.HasPrefix(err.Error(), "unknown shorthand flag") ||
		strings.HasPrefix(err.Error(), "unknown flag")
}
