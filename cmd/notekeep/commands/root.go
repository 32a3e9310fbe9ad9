// Package commands implements the CLI commands for notekeep.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/notekeep/internal/adapters/config" //nolint:depguard // Flag names map onto configuration keys
	"go.trai.ch/notekeep/internal/adapters/tools"
	"go.trai.ch/notekeep/internal/app"
	"go.trai.ch/notekeep/internal/build"
	"go.trai.ch/notekeep/internal/core/domain"
)

// skipConfig marks commands that run without loading the configuration.
const skipConfig = "notekeep/skip-config"

// CLI represents the command line interface for notekeep.
type CLI struct {
	app     Application
	rootCmd *cobra.Command

	configPath string
	output     string
}

// Application represents the application logic interface.
type Application interface {
	Configure(path string, overrides map[string]any) (*domain.Config, error)
	Backup(ctx context.Context) (*domain.CycleResult, error)
	Status(ctx context.Context) (*domain.BackupStatus, error)
	Watch(ctx context.Context) error
	Serve(ctx context.Context, in io.Reader, out io.Writer, opts app.ServeOptions) error
	Snapshots(ctx context.Context) ([]domain.Snapshot, error)
	DiffSnapshot(ctx context.Context, name string) ([]byte, error)
	RestoreSnapshot(ctx context.Context, name string) (*domain.RestoreResult, error)
	Query(ctx context.Context, from, tool string, args map[string]any) (tools.Result, error)
}

// configFlags maps persistent flags onto configuration keys.
var configFlags = []struct {
	flag, key string
}{
	{"source", config.KeyCachePath},
	{"backup-dir", config.KeyBackupDir},
	{"max-snapshots", config.KeyMaxSnapshots},
	{"log-level", config.KeyLogLevel},
	{"log-format", config.KeyLogFormat},
	{"timezone", config.KeyTimezone},
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "notekeep",
		Short:         "Non-destructive backups and queries for the Granola meeting cache",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "Path to the configuration file")
	flags.StringVarP(&c.output, "output", "o", formatText, "Output format: text, json or yaml")
	flags.String("source", "", "Path to the Granola cache file")
	flags.String("backup-dir", "", "Directory holding the backup file and its snapshots")
	flags.Int("max-snapshots", domain.DefaultMaxSnapshots, "Number of snapshots to keep")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-format", "", "Log format: pretty or json")
	flags.String("timezone", "", "IANA time zone used to display and filter meeting dates")

	rootCmd.PersistentPreRunE = c.configure

	rootCmd.AddCommand(c.newBackupCmd())
	rootCmd.AddCommand(c.newStatusCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newServeCmd())
	rootCmd.AddCommand(c.newSnapshotsCmd())
	rootCmd.AddCommand(c.newMeetingsCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// configure loads the configuration before a command runs. Only flags set on
// the command line override the file and the environment.
func (c *CLI) configure(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipConfig] != "" || cmd.Name() == "help" {
		return nil
	}

	if err := validateFormat(c.output); err != nil {
		return err
	}

	overrides := make(map[string]any)
	for _, f := range configFlags {
		flag := cmd.Flags().Lookup(f.flag)
		if flag == nil || !flag.Changed {
			continue
		}
		if f.flag == "max-snapshots" {
			n, err := cmd.Flags().GetInt(f.flag)
			if err != nil {
				return err
			}
			overrides[f.key] = n
			continue
		}
		overrides[f.key] = flag.Value.String()
	}

	_, err := c.app.Configure(c.configPath, overrides)
	return err
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// SetInput sets the input stream read by the serve command. Used for testing.
func (c *CLI) SetInput(in io.Reader) {
	c.rootCmd.SetIn(in)
}
