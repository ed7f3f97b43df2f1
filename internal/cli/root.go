package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/brettbedarf/areafs"
	"github.com/brettbedarf/areafs/areas"
	"github.com/brettbedarf/areafs/config"
	"github.com/brettbedarf/areafs/internal/util"
	"github.com/spf13/cobra"
)

// App carries what every command needs once the root command has run
type App struct {
	Area areafs.Area
	In   io.Reader
	Out  io.Writer
	Cfg  *config.Config
}

// forge builds a handle for p in the selected area
func (a *App) forge(p string) (*areafs.File, error) {
	return areafs.ForgeMap(p, nil, a.Area)
}

// NewRootCmd creates the areafs command tree reading from in and writing
// file contents and results to out. Logs always go to stderr.
func NewRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var (
		configPath string
		verbose    int
		areaName   string
	)
	app := &App{In: in, Out: out}

	cmd := &cobra.Command{
		Use:           "areafs",
		Short:         "Operate on files in configured storage areas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.NewDefaultConfig()
			if configPath != "" {
				override, err := config.LoadConfigOverrideFile(configPath)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				cfg.Merge(override)
			}
			if cmd.Flags().Changed("verbose") {
				cfg.Merge(&config.ConfigOverride{LogLvl: &verbose})
			}
			if areaName != "" {
				cfg.DefaultArea = areaName
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			util.InitializeLogger(cfg.LogLvl, os.Stderr)
			logger := util.GetLogger("cli")

			areas.RegisterBuiltins()
			if err := areas.LoadConfig(cfg); err != nil {
				return err
			}
			app.Area = areafs.DefaultArea()
			app.Cfg = cfg
			logger.Debug().Str("area", cfg.DefaultArea).Strs("areas", areas.Names()).Msg("Areas loaded")
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML or JSON config file")
	cmd.PersistentFlags().IntVarP(&verbose, "verbose", "v", config.InfoVerbose,
		"Log verbosity level between 1 (error) and 5 (trace)")
	cmd.PersistentFlags().StringVarP(&areaName, "area", "a", "", "Area to operate in (defaults to the config's default_area)")

	cmd.AddCommand(
		newCatCmd(app),
		newStatCmd(app),
		newRenameCmd(app),
		newMoveCmd(app),
		newCopyCmd(app),
		newPutCmd(app),
		newRemoveCmd(app),
	)
	return cmd
}

// Execute runs the CLI against the process's stdio
func Execute() error {
	return NewRootCmd(os.Stdin, os.Stdout).Execute()
}
