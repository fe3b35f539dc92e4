// SPDX-License-Identifier: MPL-2.0

package strategy

import (
	"strings"

	"github.com/nupush/nupush/pkg/platform"
)

// Tool constants.
const (
	// LegacyTool is the general-purpose package push CLI (nuget).
	LegacyTool Tool = iota
	// ManagedTool is the hosted-service push tool with conflict skipping.
	ManagedTool
)

// Override constants.
const (
	Unset TriState = iota
	ForceOn
	ForceOff
)

// Warnings emitted alongside a decision.
const (
	WarnConflictsUnsupportedPlatform = "Skipping package conflicts is only supported on Windows agents; NuGet will be used and conflicts will fail the push."
	WarnConflictsOnlyHosted          = "Skipping package conflicts is only available on the hosted service; NuGet will be used and conflicts will fail the push."
	WarnForcedLegacyCannotSkip       = "NuGet is forced for push; package conflicts cannot be skipped."
	WarnManagedToolMissing           = "The managed push tool was not found; falling back to NuGet."
)

type (
	// Tool identifies a push tool.
	Tool int

	// TriState is an override flag that may be unset.
	TriState int

	// Input holds the facts the decision is made from.
	Input struct {
		Platform         platform.OS
		InternalFeed     bool
		ConflictsAllowed bool
		OnPremises       bool
		ForceLegacy      TriState
		ForceManaged     TriState
	}

	// Decision is the outcome of Select.
	Decision struct {
		Tool Tool
		// Reason describes the rule that fired, for debug output.
		Reason string
		// Warning is set when the user should be told about the choice.
		Warning string
	}

	rule struct {
		reason string
		when   func(Input) bool
		tool   Tool
		// warnOnConflicts is reported when conflicts were requested but this rule wins.
		warnOnConflicts string
	}
)

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{
		reason:          "running on a non-Windows platform, NuGet will be used",
		when:            func(in Input) bool { return !in.Platform.IsReference() },
		tool:            LegacyTool,
		warnOnConflicts: WarnConflictsUnsupportedPlatform,
	},
	{
		reason: "pushing to an external feed, NuGet will be used",
		when:   func(in Input) bool { return !in.InternalFeed },
		tool:   LegacyTool,
	},
	{
		reason:          "pushing to an on-premises server, only NuGet is supported",
		when:            func(in Input) bool { return in.OnPremises },
		tool:            LegacyTool,
		warnOnConflicts: WarnConflictsOnlyHosted,
	},
	{
		reason:          "NuGet is force-enabled for push",
		when:            func(in Input) bool { return in.ForceLegacy == ForceOn },
		tool:            LegacyTool,
		warnOnConflicts: WarnForcedLegacyCannotSkip,
	},
	{
		reason: "NuGet is force-disabled for push",
		when:   func(in Input) bool { return in.ForceLegacy == ForceOff },
		tool:   ManagedTool,
	},
	{
		reason: "the managed push tool is force-enabled for push",
		when:   func(in Input) bool { return in.ForceManaged == ForceOn },
		tool:   ManagedTool,
	},
	{
		reason:          "the managed push tool is force-disabled for push",
		when:            func(in Input) bool { return in.ForceManaged == ForceOff },
		tool:            LegacyTool,
		warnOnConflicts: WarnForcedLegacyCannotSkip,
	},
	{
		reason: "using the managed push tool",
		when:   func(Input) bool { return true },
		tool:   ManagedTool,
	},
}

// Select returns the push tool for a run.
func Select(in Input) Decision {
	for _, r := range rules {
		if !r.when(in) {
			continue
		}
		d := Decision{Tool: r.tool, Reason: r.reason}
		if in.ConflictsAllowed {
			d.Warning = r.warnOnConflicts
		}
		return d
	}
	// Unreachable: the last rule always matches.
	return Decision{Tool: ManagedTool}
}

// EnsureAvailable downgrades a managed-tool decision to the legacy tool when
// managedPath is empty.
func EnsureAvailable(d Decision, managedPath string) Decision {
	if d.Tool != ManagedTool || managedPath != "" {
		return d
	}
	return Decision{
		Tool:    LegacyTool,
		Reason:  "the managed push tool was not found, NuGet will be used",
		Warning: WarnManagedToolMissing,
	}
}

// ParseTriState maps "true"/"false" (any case) to ForceOn/ForceOff and
// anything else to Unset.
func ParseTriState(s string) TriState {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return ForceOn
	case "false":
		return ForceOff
	default:
		return Unset
	}
}

// String returns the tool's display name.
func (t Tool) String() string {
	switch t {
	case LegacyTool:
		return "NuGet"
	case ManagedTool:
		return "VstsNuGetPush"
	default:
		return "unknown"
	}
}

// String returns "true", "false" or "unset".
func (s TriState) String() string {
	switch s {
	case ForceOn:
		return "true"
	case ForceOff:
		return "false"
	default:
		return "unset"
	}
}
