// Package cli implements the cobra-based command line of cargo-dockerize.
//
// The tool has a single command. This file defines it together with the
// global flags and the error/exit-code handling; output.go renders results.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rachlenko/cargo-dockerize/internal/model"
	"github.com/rachlenko/cargo-dockerize/internal/pipeline"
	"github.com/rachlenko/cargo-dockerize/internal/runner"
)

// Global flag variables bound to persistent flags on the root command.
var (
	// jsonOutput switches the final result to JSON on stdout. Progress lines
	// then go to stderr so stdout stays machine readable.
	jsonOutput bool

	// verbose enables [verbose] diagnostics on stderr.
	verbose bool
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// cargoSubcommand is the first argument cargo passes when the binary is
// invoked as "cargo dockerize".
const cargoSubcommand = "dockerize"

// dockerizeFlags holds the flag values of the root command.
type dockerizeFlags struct {
	export     bool     // --export: also write <name>-<tag>.tgz
	name       string   // --name: image name (default: package name)
	tag        string   // --tag: primary tag (default: package version)
	dockerfile string   // --dockerfile: image build file
	tags       []string // --tags: extra tags

	applicationName string
	title           string
	description     string
	authors         string
	url             string
	source          string
	vendor          string
	licenses        string
}

// NewRootCommand creates and configures the root cobra command.
func NewRootCommand() *cobra.Command {
	flags := &dockerizeFlags{}

	rootCmd := &cobra.Command{
		// Use is the binary name; cargo finds it on PATH as "cargo-<sub>".
		Use:   "cargo-dockerize",
		Short: "Build a Rust project into a labelled Docker image",
		Long: `cargo-dockerize compiles the Cargo project containing the current directory
in release mode, builds a Docker image from it and optionally exports the
image as a gzip-compressed archive.

The image name and tag default to the package name and version from
Cargo.toml. The image is stamped with OCI provenance labels (creation time,
version, git revision, title and any of the optional label flags).

Defaults for every flag can be committed to .dockerize.yaml (or .yml, or
.json with comments) next to Cargo.toml; explicit flags always win.

Examples:
  cargo dockerize
  cargo dockerize --tag 1.2.3 --tags beta,edge
  cargo dockerize --export --licenses MIT --vendor "Acme Inc."
  cargo-dockerize --name ghcr.io/acme/svc --dockerfile docker/Dockerfile`,

		// Accept the "dockerize" argument cargo inserts for subcommands.
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || (len(args) == 1 && args[0] == cargoSubcommand) {
				return nil
			}
			return model.NewCLIError(model.ExitGeneralError,
				fmt.Sprintf("unexpected arguments: %v", args))
		},

		// SilenceUsage prevents cobra from printing usage on every error.
		SilenceUsage: true,

		// SilenceErrors leaves error output to Execute (text or JSON).
		SilenceErrors: true,

		// Version is displayed when --version flag is used.
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runDockerize(cmd, flags)
		},
	}

	// Persistent flags stay global so printError and VerboseLog can read
	// them after cobra has returned.
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output the result in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	// Build and naming flags. --dockerfile and --tags are checked with
	// Changed() later, so their defaults never mask the defaults file.
	f := rootCmd.Flags()
	f.BoolVarP(&flags.export, "export", "e", false, "Export the Docker image as a TGZ archive")
	f.StringVarP(&flags.name, "name", "n", "", "Name of the Docker image (default: package name)")
	f.StringVarP(&flags.tag, "tag", "t", "", "Version tag of the Docker image (default: package version)")
	f.StringVar(&flags.dockerfile, "dockerfile", pipeline.DefaultDockerfile, "Path to the Dockerfile, relative to the project root")
	f.StringSliceVar(&flags.tags, "tags", nil, "Additional tags, comma-separated (each becomes <name>:<tag>)")

	// Provenance label values; empty ones are left out of the image.
	f.StringVar(&flags.applicationName, "application-name", "", "Application name label (org.opencontainers.image.ref.name)")
	f.StringVar(&flags.title, "title", "", "Image title label (default: image name)")
	f.StringVar(&flags.description, "description", "", "Image description label")
	f.StringVar(&flags.authors, "authors", "", "Image authors label")
	f.StringVar(&flags.url, "url", "", "Image URL label")
	f.StringVar(&flags.source, "source", "", "Source repository URL label")
	f.StringVar(&flags.vendor, "vendor", "", "Image vendor label")
	f.StringVar(&flags.licenses, "licenses", "", "SPDX license expression label")

	return rootCmd
}

// runDockerize converts the flags into pipeline options and runs the pipeline.
func runDockerize(cmd *cobra.Command, flags *dockerizeFlags) error {
	opts := optionsFromFlags(cmd, flags)
	p := newPipeline(cmd)

	res, err := p.Run(cmd.Context(), opts)
	if err != nil {
		VerboseLog("Pipeline aborted after stage %q", lastStage(res))
		return err
	}

	// The result goes to stdout in both modes; under --json it is the only
	// thing written there.
	printResult(cmd.OutOrStdout(), res)
	return nil
}

// newPipeline wires a production pipeline to the command's output streams.
//
// Under --json, stdout carries only the result document: the pipeline's
// progress lines and everything cargo and docker print go to stderr.
func newPipeline(cmd *cobra.Command) *pipeline.Pipeline {
	var progress io.Writer = cmd.OutOrStdout()
	if IsJSONOutput() {
		progress = cmd.ErrOrStderr()
	}

	p := pipeline.New(progress)
	p.Runner = &runner.ExecRunner{Stdout: progress, Stderr: cmd.ErrOrStderr()}
	p.Logf = VerboseLog
	return p
}

// optionsFromFlags builds pipeline options. Flags the user did not set stay
// empty (or nil) so the project defaults file can supply them.
func optionsFromFlags(cmd *cobra.Command, flags *dockerizeFlags) pipeline.Options {
	changed := cmd.Flags().Changed

	opts := pipeline.Options{
		Name: flags.name,
		Tag:  flags.tag,
		Labels: pipeline.LabelValues{
			Title:           flags.title,
			Description:     flags.description,
			Authors:         flags.authors,
			URL:             flags.url,
			Source:          flags.source,
			Vendor:          flags.vendor,
			Licenses:        flags.licenses,
			ApplicationName: flags.applicationName,
		},
	}

	// Only flags given on the command line override the defaults file;
	// a nil slice or pointer means "not given".
	if changed("dockerfile") {
		opts.Dockerfile = flags.dockerfile
	}
	if changed("tags") {
		opts.ExtraTags = append([]string{}, flags.tags...)
	}
	if changed("export") {
		export := flags.export
		opts.Export = &export
	}
	return opts
}

func lastStage(res *pipeline.Result) model.Stage {
	if res == nil {
		return ""
	}
	return res.Stage
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// CLIError values carry their own exit codes; other errors exit with 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		// Pipeline and argument errors are *model.CLIError; cobra's own
		// flag parsing errors are plain errors and fall through to exit 1.
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(message string, underlying error) {
	if jsonOutput {
		// {"error": {"message": ..., "detail": ...}}; detail only when an
		// underlying cause exists.
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// stderr even in JSON mode: stdout is reserved for successful output.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
func IsJSONOutput() bool {
	return jsonOutput
}
