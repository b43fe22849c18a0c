package postinstall

import (
	"embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Finish installing an application: link the launcher and refresh caches"
	MsgPlanShort       = "Show the steps a run would take"
	MsgConfigShort     = "Print the effective configuration"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Flag descriptions
	MsgFlagVerbose         = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun          = "Preview changes without executing them"
	MsgFlagStrict          = "Exit with an error when any step fails"
	MsgFlagConfig          = "Configuration file (.toml, .yaml or .yml)"
	MsgFlagLauncher        = "Name of the launcher link in the binary directory"
	MsgFlagNoIconCache     = "Do not refresh the icon theme cache"
	MsgFlagNoSchemas       = "Do not compile gsettings schemas"
	MsgFlagValidateDesktop = "Validate installed desktop entries"
	MsgFlagManifest        = "Write an install manifest to this path"
	MsgFlagFormat          = "Output format: auto, term, text, json, yaml or toml"

	// Status messages
	MsgVersionFormat = "postinstall version %s\n"
	MsgCommitFormat  = "  commit: %s\n"
	MsgBuiltFormat   = "  built:  %s\n"
	MsgStepFailed    = "warning: %s: %s\n"
	MsgSourcesHeader = "# loaded from: %s\n"
	MsgDryRunNotice  = "DRY RUN MODE - No changes were made"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/root-example.txt
	msgRootExampleRaw string
	MsgRootExample    = strings.TrimRight(msgRootExampleRaw, "\n")

	//go:embed msgs/plan-long.txt
	msgPlanLongRaw string
	MsgPlanLong    = strings.TrimSpace(msgPlanLongRaw)

	//go:embed msgs/config-long.txt
	msgConfigLongRaw string
	MsgConfigLong    = strings.TrimSpace(msgConfigLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)

// Help topics
//
//go:embed topics/*.md
var topicFiles embed.FS
