package types

// StepKind identifies one step of a post-install run
type StepKind string

const (
	// StepEnsureDir creates the binary directory when it is missing
	StepEnsureDir StepKind = "ensure-dir"

	// StepLink creates or replaces the launcher symlink
	StepLink StepKind = "link"

	// StepIconCache rebuilds the hicolor icon theme cache
	StepIconCache StepKind = "icon-cache"

	// StepSchemas compiles the gsettings schemas
	StepSchemas StepKind = "schemas"

	// StepDesktopValidate validates installed desktop entries
	StepDesktopValidate StepKind = "desktop-validate"

	// StepManifest writes the install manifest
	StepManifest StepKind = "manifest"
)

// StepStatus is the outcome of a step
type StepStatus string

const (
	StepStatusPending StepStatus = "pending"
	StepStatusOK      StepStatus = "ok"
	StepStatusFailed  StepStatus = "failed"
	StepStatusSkipped StepStatus = "skipped"
	StepStatusDryRun  StepStatus = "dry-run"
)

// SkipReason explains why a step did not run
type SkipReason string

const (
	// SkipNone means the step is scheduled to run
	SkipNone SkipReason = ""

	// SkipStaged is used for cache refresh steps while DESTDIR is set
	SkipStaged SkipReason = "staged"

	// SkipDisabled is used when configuration or flags turned a step off
	SkipDisabled SkipReason = "disabled"

	// SkipUpToDate is used when there is nothing to do
	SkipUpToDate SkipReason = "up-to-date"
)
