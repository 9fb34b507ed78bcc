package main

import (
	"github.com/Nivl/minigit/internal/pathutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/xerrors"
)

// envPrefix is the prefix of all the env variables read by the CLI
const envPrefix = "MINIGIT"

// viper keys
const (
	keyVerbose     = "verbose"
	keyWorkTree    = "work_tree"
	keyAuthorName  = "author_name"
	keyAuthorEmail = "author_email"
)

type config struct {
	C pflag.Value // simpler version of git's -C: https://git-scm.com/docs/git#Documentation/git.txt--Cltpathgt

	// v contains the flags and env variables (MINIGIT_VERBOSE,
	// MINIGIT_WORK_TREE, MINIGIT_AUTHOR_NAME, MINIGIT_AUTHOR_EMAIL)
	v      *viper.Viper
	logger *zap.Logger
}

// path returns the directory the command should run in.
// -C takes precedence over $MINIGIT_WORK_TREE
func (cfg *config) path(cmd *cobra.Command) string {
	if !cmd.Flags().Changed("C") {
		if wt := cfg.v.GetString(keyWorkTree); wt != "" {
			return wt
		}
	}
	return cfg.C.String()
}

func newRootCmd(cwd string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "minigit",
		Short:         "minimal git-compatible object store",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cfg := &config{
		v:      viper.New(),
		logger: zap.NewNop(),
	}
	cfg.v.SetEnvPrefix(envPrefix)
	cfg.v.AutomaticEnv()
	cfg.v.SetDefault(keyAuthorName, "minigit")
	cfg.v.SetDefault(keyAuthorEmail, "minigit@localhost")

	cfg.C = pathutil.NewDirPathFlagWithDefault(cwd)
	cmd.PersistentFlags().VarP(cfg.C, "C", "C", "Run as if git was started in the provided path instead of the current working directory.")
	cmd.PersistentFlags().BoolP(keyVerbose, "v", false, "Print debug logs to stderr.")
	// can only fail if the flag doesn't exist
	_ = cfg.v.BindPFlag(keyVerbose, cmd.PersistentFlags().Lookup(keyVerbose))

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if !cfg.v.GetBool(keyVerbose) {
			return nil
		}
		logger, err := zap.NewDevelopment()
		if err != nil {
			return xerrors.Errorf("could not create the logger: %w", err)
		}
		cfg.logger = logger
		return nil
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		_ = cfg.logger.Sync() //nolint:errcheck // fails on stderr on some platforms
	}

	// porcelain
	cmd.AddCommand(newInitCmd(cfg))
	cmd.AddCommand(newStatusCmd(cfg))
	cmd.AddCommand(newCheckoutCmd(cfg))
	cmd.AddCommand(newTagCmd(cfg))

	// plumbing
	cmd.AddCommand(newCatFileCmd(cfg))
	cmd.AddCommand(newHashObjectCmd(cfg))
	cmd.AddCommand(newRevParseCmd(cfg))
	cmd.AddCommand(newLsTreeCmd(cfg))
	cmd.AddCommand(newLsFilesCmd(cfg))
	cmd.AddCommand(newUpdateRefCmd(cfg))

	return cmd
}
