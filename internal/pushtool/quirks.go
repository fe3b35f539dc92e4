// SPDX-License-Identifier: MPL-2.0

package pushtool

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nupush/nupush/internal/auth"
	"github.com/nupush/nupush/internal/strategy"
)

// Quirk constants.
const (
	// NoCredentialProvider: the tool cannot load credential provider plugins.
	NoCredentialProvider Quirk = 1 << iota
	// CredentialProviderRace: concurrent provider invocations may corrupt state.
	CredentialProviderRace
	// NoTfsOnPremAuthCredentialProvider: providers cannot authenticate against on-premises servers.
	NoTfsOnPremAuthCredentialProvider
	// NoTfsOnPremAuthConfig: config credentials are not sent to on-premises servers.
	NoTfsOnPremAuthConfig
	// V2CredentialProvider: the tool supports the plugin-based v2 credential provider.
	V2CredentialProvider
)

var _ auth.CapabilityProbe = (*Probe)(nil)

type (
	// Quirk is one version-dependent behavior of the legacy tool.
	Quirk uint8

	// Quirks is a set of Quirk values.
	Quirks uint8

	// ProbeOverrides force individual capability checks on or off.
	ProbeOverrides struct {
		CredentialProvider   strategy.TriState
		CredentialProviderV2 strategy.TriState
		CredentialConfig     strategy.TriState
	}

	// Probe answers the credential capability questions for one tool version.
	Probe struct {
		Quirks     Quirks
		OnPremises bool
		Overrides  ProbeOverrides
		// V1Folder is the directory holding v1 credential provider plugins.
		V1Folder string
		// V2Path is the path of the v2 credential provider plugin.
		V2Path string
		Logger *log.Logger
	}
)

// QuirksFor returns the quirks of the given legacy tool version.
func QuirksFor(v Version) Quirks {
	var q Quirks
	if v.Before("3.2.0") {
		q |= Quirks(NoCredentialProvider)
	}
	if v.AtLeast("3.3.0") && v.Before("3.5.0") {
		q |= Quirks(CredentialProviderRace)
	}
	if v.Before("3.5.0") {
		q |= Quirks(NoTfsOnPremAuthCredentialProvider | NoTfsOnPremAuthConfig)
	}
	if v.AtLeast("4.8.0") {
		q |= Quirks(V2CredentialProvider)
	}
	return q
}

// Has reports whether q contains quirk.
func (q Quirks) Has(quirk Quirk) bool {
	return q&Quirks(quirk) != 0
}

// String lists the quirk names, separated by commas.
func (q Quirks) String() string {
	names := []struct {
		quirk Quirk
		name  string
	}{
		{NoCredentialProvider, "NoCredentialProvider"},
		{CredentialProviderRace, "CredentialProviderRace"},
		{NoTfsOnPremAuthCredentialProvider, "NoTfsOnPremAuthCredentialProvider"},
		{NoTfsOnPremAuthConfig, "NoTfsOnPremAuthConfig"},
		{V2CredentialProvider, "V2CredentialProvider"},
	}
	var out []string
	for _, n := range names {
		if q.Has(n.quirk) {
			out = append(out, n.name)
		}
	}
	return strings.Join(out, ",")
}

// CredentialProviderEnabled reports whether the v1 credential provider is used.
func (p *Probe) CredentialProviderEnabled() bool {
	logger := p.logger()

	switch p.Overrides.CredentialProvider {
	case strategy.ForceOn:
		logger.Debug("Credential provider is force-enabled")
		return true
	case strategy.ForceOff:
		logger.Debug("Credential provider is force-disabled")
		return false
	}

	if p.Quirks.Has(NoCredentialProvider) || p.Quirks.Has(CredentialProviderRace) {
		logger.Debug("Credential provider is disabled due to quirks", "quirks", p.Quirks)
		return false
	}
	if p.OnPremises && p.Quirks.Has(NoTfsOnPremAuthCredentialProvider) {
		logger.Debug("Credential provider is disabled due to on-premises quirks")
		return false
	}
	if p.V1Folder == "" {
		logger.Debug("Credential provider is disabled because no provider folder is configured")
		return false
	}

	logger.Debug("Credential provider is enabled", "folder", p.V1Folder)
	return true
}

// CredentialProviderV2Enabled reports whether the v2 credential provider is used.
func (p *Probe) CredentialProviderV2Enabled() bool {
	logger := p.logger()

	if !p.Quirks.Has(V2CredentialProvider) {
		logger.Debug("V2 credential provider is not supported by this tool version")
		return false
	}

	switch p.Overrides.CredentialProviderV2 {
	case strategy.ForceOn:
		logger.Debug("V2 credential provider is force-enabled")
		return true
	case strategy.ForceOff:
		logger.Debug("V2 credential provider is force-disabled")
		return false
	}

	if p.V2Path == "" {
		logger.Debug("V2 credential provider is disabled because no provider is installed")
		return false
	}

	logger.Debug("V2 credential provider is enabled", "path", p.V2Path)
	return true
}

// CredentialConfigEnabled reports whether credentials may be written into the
// temporary config file.
func (p *Probe) CredentialConfigEnabled() bool {
	logger := p.logger()

	switch p.Overrides.CredentialConfig {
	case strategy.ForceOn:
		logger.Debug("Credential config is force-enabled")
		return true
	case strategy.ForceOff:
		logger.Debug("Credential config is force-disabled")
		return false
	}

	if p.OnPremises && p.Quirks.Has(NoTfsOnPremAuthConfig) {
		logger.Debug("Credential config is disabled due to on-premises quirks")
		return false
	}

	logger.Debug("Credential config is enabled")
	return true
}

// CredentialProviderPath returns the v2 plugin path or the v1 plugin folder.
func (p *Probe) CredentialProviderPath(v2 bool) string {
	if v2 {
		return p.V2Path
	}
	return p.V1Folder
}

func (p *Probe) logger() *log.Logger {
	if p.Logger == nil {
		return log.New(io.Discard)
	}
	return p.Logger
}
