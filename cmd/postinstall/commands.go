package postinstall

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/arthur-debert/postinstall/internal/version"
	"github.com/arthur-debert/postinstall/pkg/cobrax/topics"
	"github.com/arthur-debert/postinstall/pkg/config"
	"github.com/arthur-debert/postinstall/pkg/errors"
	"github.com/arthur-debert/postinstall/pkg/executor"
	"github.com/arthur-debert/postinstall/pkg/filesystem"
	"github.com/arthur-debert/postinstall/pkg/hook"
	"github.com/arthur-debert/postinstall/pkg/logging"
	"github.com/arthur-debert/postinstall/pkg/paths"
	"github.com/arthur-debert/postinstall/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// globalFlags holds the values of the persistent flags
type globalFlags struct {
	verbosity       int
	dryRun          bool
	strict          bool
	configFile      string
	launcher        string
	noIconCache     bool
	noSchemas       bool
	validateDesktop bool
	manifest        string
	format          string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "postinstall [flags] <datadir> <bindir> <appid>",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Example: MsgRootExample,
		Version: version.Version,
		Args:    cobra.ExactArgs(3),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLoggerWithWriter(flags.verbosity, cmd.ErrOrStderr())
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, flags, args)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&flags.verbosity, "verbose", "v", MsgFlagVerbose)
	pf.BoolVar(&flags.dryRun, "dry-run", false, MsgFlagDryRun)
	pf.BoolVar(&flags.strict, "strict", false, MsgFlagStrict)
	pf.StringVar(&flags.configFile, "config", "", MsgFlagConfig)
	pf.StringVar(&flags.launcher, "launcher", "", MsgFlagLauncher)
	pf.BoolVar(&flags.noIconCache, "no-icon-cache", false, MsgFlagNoIconCache)
	pf.BoolVar(&flags.noSchemas, "no-schemas", false, MsgFlagNoSchemas)
	pf.BoolVar(&flags.validateDesktop, "validate-desktop", false, MsgFlagValidateDesktop)
	pf.StringVar(&flags.manifest, "manifest", "", MsgFlagManifest)
	pf.StringVar(&flags.format, "format", "", MsgFlagFormat)

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "term", "text", "json", "yaml", "toml"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newPlanCmd(flags))
	rootCmd.AddCommand(newConfigCmd(flags))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	initTopics(rootCmd)

	return rootCmd
}

// initTopics installs the topic help command backed by the embedded topics
func initTopics(rootCmd *cobra.Command) {
	source, err := fs.Sub(topicFiles, "topics")
	if err != nil {
		return
	}

	opts := topics.Options{Extensions: []string{".md"}}
	if isTerminal() && os.Getenv("NO_COLOR") == "" {
		opts.Renderer = topics.NewGlamourRenderer()
	}
	_ = topics.InitializeWithOptions(rootCmd, source, opts)
}

// overrides turns explicitly set flags into configuration keys
func (f *globalFlags) overrides(cmd *cobra.Command) map[string]interface{} {
	changed := cmd.Flags().Changed
	out := make(map[string]interface{})

	if changed("dry-run") {
		out["run.dryrun"] = f.dryRun
	}
	if changed("strict") {
		out["run.strict"] = f.strict
	}
	if changed("launcher") {
		out["launcher.name"] = f.launcher
	}
	if changed("no-icon-cache") && f.noIconCache {
		out["icons.enabled"] = false
	}
	if changed("no-schemas") && f.noSchemas {
		out["schemas.enabled"] = false
	}
	if changed("validate-desktop") {
		out["desktop.enabled"] = f.validateDesktop
	}
	if changed("manifest") {
		out["manifest.path"] = f.manifest
	}
	if changed("format") {
		out["output.format"] = f.format
	}
	return out
}

func (f *globalFlags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.Options{
		File:      f.configFile,
		Overrides: f.overrides(cmd),
	})
	if err != nil {
		return nil, err
	}
	log.Debug().Strs("sources", cfg.Sources).Str("config", cfg.String()).Msg("Configuration loaded")
	return cfg, nil
}

func invocationFromArgs(args []string) paths.Invocation {
	return paths.Invocation{
		DataDir: args[0],
		BinDir:  args[1],
		AppID:   args[2],
		DestDir: paths.StagingRoot(os.Getenv),
	}
}

// session bundles what the install and plan commands share
type session struct {
	cfg      *config.Config
	format   ui.Format
	renderer ui.Renderer
	hook     *hook.Hook
}

func newSession(cmd *cobra.Command, flags *globalFlags) (*session, error) {
	cfg, err := flags.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	out := cmd.OutOrStdout()
	format, err := ui.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	format = ui.Resolve(format, out)

	renderer, err := ui.NewRenderer(format, out)
	if err != nil {
		return nil, err
	}

	// Keep structured output parseable
	progressOut := out
	if format.Structured() {
		progressOut = cmd.ErrOrStderr()
	}

	runner := executor.NewExecRunner(
		executor.WithDryRun(cfg.Run.DryRun),
		executor.WithTimeout(cfg.Commands.Timeout),
		executor.WithOutput(progressOut, cmd.ErrOrStderr()),
	)

	h := hook.New(filesystem.NewOS(), runner, cfg,
		hook.WithProgress(ui.NewProgress(format, progressOut)),
	)

	return &session{cfg: cfg, format: format, renderer: renderer, hook: h}, nil
}

func runInstall(cmd *cobra.Command, flags *globalFlags, args []string) error {
	s, err := newSession(cmd, flags)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, runErr := s.hook.Run(ctx, invocationFromArgs(args))
	if report == nil {
		return runErr
	}

	switch {
	case s.format.Structured() || s.cfg.Run.DryRun || flags.verbosity > 0:
		if err := s.renderer.RenderReport(report); err != nil {
			return err
		}
	default:
		printFailures(cmd.ErrOrStderr(), report)
	}

	if s.cfg.Run.DryRun && !s.format.Structured() {
		_ = s.renderer.RenderMessage(MsgDryRunNotice)
	}
	return runErr
}

// printFailures writes one warning line per failed step
func printFailures(w io.Writer, report *hook.Report) {
	for _, res := range report.Failed() {
		fmt.Fprintf(w, MsgStepFailed, res.Kind, res.Error)
	}
}

func newPlanCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "plan [flags] <datadir> <bindir> <appid>",
		Short: MsgPlanShort,
		Long:  MsgPlanLong,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, flags)
			if err != nil {
				return err
			}
			plan, err := s.hook.Plan(invocationFromArgs(args))
			if err != nil {
				return err
			}
			return s.renderer.RenderPlan(plan)
		},
	}
}

func newConfigCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
		Long:  MsgConfigLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}
			out, err := cfg.Dump()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(cfg.Sources) > 0 {
				fmt.Fprintf(w, MsgSourcesHeader, strings.Join(cfg.Sources, ", "))
			}
			_, err = w.Write(out)
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Long:  `Print detailed version information including commit hash and build date`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, MsgVersionFormat, version.Version)
			fmt.Fprintf(w, MsgCommitFormat, version.Commit)
			fmt.Fprintf(w, MsgBuiltFormat, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return GenCompletion(cmd.Root(), args[0], cmd.OutOrStdout())
		},
	}
}

// GenCompletion writes the completion script for shell
func GenCompletion(root *cobra.Command, shell string, w io.Writer) error {
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(w, true)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	default:
		return errors.Newf(errors.ErrInvalidInput, "unsupported shell: %s", shell)
	}
}
