// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	// ExecutableNotFoundId is raised when a configured installation home does not exist.
	ExecutableNotFoundId Id = iota + 1
	// ConfigLoadFailedId is raised when the configuration file cannot be read or validated.
	ConfigLoadFailedId
	// InstallerFailedId is raised when an auto-installer cannot provide the tool.
	InstallerFailedId
	// LaunchFailedId is raised when the process could not be started.
	LaunchFailedId
	// JobFileInvalidId is raised when a TOML job file cannot be parsed.
	JobFileInvalidId
)

type (
	// Id identifies an issue catalog entry.
	Id int

	// MarkdownMsg is Markdown help text.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string

	// Issue is a catalog entry with Markdown help and optional links.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

var (
	render = glamour.Render

	executableNotFoundIssue = &Issue{
		id: ExecutableNotFoundId,
		mdMsg: `
# NuGet executable not found!

The installation you selected points at a file that does not exist on the
node running the step.

## Things you can try:
- Check the installation home:
~~~
$ nugetstep installation list
~~~
- Fix the path (placeholders like ` + "`$TOOLS_DIR`" + ` are expanded from the environment):
~~~
$ nugetstep installation add nuget-6 --home '$TOOLS_DIR/nuget.exe'
~~~
- Omit ` + "`--installation`" + ` to use nuget.exe from PATH`,
		docLinks: []HttpLink{"https://learn.microsoft.com/nuget/reference/nuget-exe-cli-reference"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the schema.

## Things you can try:
- Show where nugetstep looks for its configuration:
~~~
$ nugetstep config path
~~~
- Regenerate a default file:
~~~
$ nugetstep config init
~~~
- Each installation needs a unique ` + "`name`" + `; ` + "`home`" + ` and ` + "`default_args`" + ` are optional`,
	}

	installerFailedIssue = &Issue{
		id: InstallerFailedId,
		mdMsg: `
# Tool installation failed!

The installation has no usable home on this node and its auto-installer could
not download the executable.

## Things you can try:
- Check network access to the installer URL
- Verify the ` + "`sha256`" + ` checksum configured for the installer
- Set an explicit home for this node via ` + "`tool_locations`" + ` in the node configuration`,
	}

	launchFailedIssue = &Issue{
		id: LaunchFailedId,
		mdMsg: `
# Failed to start NuGet!

The process could not be launched.

## Things you can try:
- Make sure nuget.exe is on your PATH, or configure an installation
- On Unix nodes, nuget.exe usually needs a ` + "`mono`" + ` wrapper script as the installation home
- Check that the working directory is accessible`,
	}

	jobFileInvalidIssue = &Issue{
		id: JobFileInvalidId,
		mdMsg: `
# Invalid job file!

The TOML job file could not be parsed.

## Example job file:
~~~toml
installation = "nuget-6"
command = "restore"
file = "src/App.sln"
args = "-NonInteractive"
module_root = "src"

[variables]
CONFIGURATION = "Release"
~~~`,
	}

	issues = map[Id]*Issue{
		executableNotFoundIssue.Id(): executableNotFoundIssue,
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		installerFailedIssue.Id():    installerFailedIssue,
		launchFailedIssue.Id():       launchFailedIssue,
		jobFileInvalidIssue.Id():     jobFileInvalidIssue,
	}
)

// Id returns the catalog ID.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the raw Markdown help.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// DocLinks returns a copy of the documentation links.
func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the issue as terminal Markdown using the given glamour style
// ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		md.WriteString("\n\n## See also:\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

// Values returns all catalog entries ordered by ID.
func Values() []*Issue {
	ids := slices.Sorted(maps.Keys(issues))
	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
