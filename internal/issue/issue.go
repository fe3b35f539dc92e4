// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

// Issue IDs for the failure classes a push run can end in.
const (
	UnknownFeedTypeId Id = iota + 1
	NoPackagesMatchedId
	NotARegularFileId
	NoPushSourceId
	PushToolNotFoundId
	ManagedToolNotFoundId
	PushFailedId
	ConfigLoadFailedId
	TempConfigFailedId
	BuildIdentityPermissionsId
)

type (
	// Id identifies a catalog entry.
	//
	//nolint:revive // Id matches the catalog naming used by callers
	Id int

	// MarkdownMsg is Markdown text that will be rendered.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	//
	//nolint:revive // HttpLink matches the catalog naming used by callers
	HttpLink string

	// Issue is one catalog entry.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

// Id returns the catalog ID.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the raw Markdown help text.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// DocLinks returns a copy of the documentation links.
func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the help text with the given glamour style ("dark", "light", "notty").
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 {
		var extra strings.Builder
		extra.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			extra.WriteString("- " + string(link) + "\n")
		}
		md += extra.String()
	}
	return render(md, stylePath)
}

// WithArgs returns a copy of the issue whose Markdown has fmt verbs replaced by args.
func (i *Issue) WithArgs(args ...any) *Issue {
	return &Issue{
		id:       i.id,
		mdMsg:    MarkdownMsg(fmt.Sprintf(string(i.mdMsg), args...)),
		docLinks: slices.Clone(i.docLinks),
	}
}

var (
	render = glamour.Render

	unknownFeedTypeIssue = &Issue{
		id: UnknownFeedTypeId,
		mdMsg: `
# Unknown feed type!

The feed type must be either ` + "`internal`" + ` or ` + "`external`" + `.

## Things you can try:
- Pass ` + "`--feed-type internal`" + ` to push to a feed hosted by this service
- Pass ` + "`--feed-type external`" + ` together with ` + "`--external-endpoint <name>`" + `
- Check ` + "`push.feed_type`" + ` in your configuration file`,
	}

	noPackagesMatchedIssue = &Issue{
		id: NoPackagesMatchedId,
		mdMsg: `
# No packages matched the search pattern

Nothing was pushed.

## Things you can try:
- Check the working directory the push ran from
- Run ` + "`nupush config show`" + ` and review ` + "`push.search_patterns`",
	}

	notARegularFileIssue = &Issue{
		id: NotARegularFileId,
		mdMsg: `
# A matched path is not a file!

Every path matched by the search patterns must be a package file.

## Things you can try:
- Narrow the search pattern so it only matches ` + "`*.nupkg`" + ` files
- Exclude directories with a ` + "`!`" + ` pattern`,
	}

	noPushSourceIssue = &Issue{
		id: NoPushSourceId,
		mdMsg: `
# No source specified for push!

External feeds need an endpoint with the feed URL and credentials.

## Things you can try:
- Pass ` + "`--external-endpoint <name>`" + `
- Define the endpoint under ` + "`endpoints.<name>`" + ` in your configuration file`,
	}

	pushToolNotFoundIssue = &Issue{
		id: PushToolNotFoundId,
		mdMsg: `
# NuGet was not found!

The legacy push tool is required on every platform.

## Things you can try:
- Install NuGet and make sure it is on your PATH
- Set ` + "`tools.nuget_path`" + ` or pass ` + "`--nuget-path`",
	}

	managedToolNotFoundIssue = &Issue{
		id: ManagedToolNotFoundId,
		mdMsg: `
# The managed push tool was not found

Packages were pushed with NuGet instead, so conflicts cannot be skipped.

## Things you can try:
- Set ` + "`tools.managed_push_path`" + ` or pass ` + "`--managed-push-path`",
	}

	pushFailedIssue = &Issue{
		id: PushFailedId,
		mdMsg: `
# Packages failed to publish!

The push tool exited with an error. Its output is shown above.

## Things you can try:
- Re-run with ` + "`--verbosity detailed`" + ` for more output
- Enable ` + "`--allow-package-conflicts`" + ` if the version already exists`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Check the CUE syntax of your configuration file
- Run ` + "`nupush config path`" + ` to see which file was read`,
	}

	tempConfigFailedIssue = &Issue{
		id: TempConfigFailedId,
		mdMsg: `
# Failed to write the temporary NuGet configuration!

## Things you can try:
- Check that ` + "`service.temp_dir`" + ` exists and is writable
- Check free disk space`,
	}

	buildIdentityPermissionsIssue = &Issue{
		id: BuildIdentityPermissionsId,
		mdMsg: `
# Check the build identity's permissions

The identity %q (%s) may not be allowed to push to this feed.

## Things you can try:
- Grant the identity the Contributor role on the feed`,
	}

	issues = map[Id]*Issue{
		unknownFeedTypeIssue.Id():          unknownFeedTypeIssue,
		noPackagesMatchedIssue.Id():        noPackagesMatchedIssue,
		notARegularFileIssue.Id():          notARegularFileIssue,
		noPushSourceIssue.Id():             noPushSourceIssue,
		pushToolNotFoundIssue.Id():         pushToolNotFoundIssue,
		managedToolNotFoundIssue.Id():      managedToolNotFoundIssue,
		pushFailedIssue.Id():               pushFailedIssue,
		configLoadFailedIssue.Id():         configLoadFailedIssue,
		tempConfigFailedIssue.Id():         tempConfigFailedIssue,
		buildIdentityPermissionsIssue.Id(): buildIdentityPermissionsIssue,
	}
)

// Values returns all catalog entries ordered by ID.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].id < out[b].id })
	return out
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
