// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestCatalogIsComplete(t *testing.T) {
	t.Parallel()

	ids := []Id{
		UnknownFeedTypeId,
		NoPackagesMatchedId,
		NotARegularFileId,
		NoPushSourceId,
		PushToolNotFoundId,
		ManagedToolNotFoundId,
		PushFailedId,
		ConfigLoadFailedId,
		TempConfigFailedId,
		BuildIdentityPermissionsId,
	}

	if UnknownFeedTypeId != 1 {
		t.Errorf("UnknownFeedTypeId = %d, want 1", UnknownFeedTypeId)
	}

	for _, id := range ids {
		entry := Get(id)
		if entry == nil {
			t.Errorf("Get(%d) returned nil", id)
			continue
		}
		if entry.Id() != id {
			t.Errorf("Get(%d).Id() = %d", id, entry.Id())
		}
		if strings.TrimSpace(string(entry.MarkdownMsg())) == "" {
			t.Errorf("issue %d has an empty message", id)
		}
	}

	values := Values()
	if len(values) != len(ids) {
		t.Fatalf("Values() returned %d entries, want %d", len(values), len(ids))
	}
	for i := 1; i < len(values); i++ {
		if values[i-1].Id() >= values[i].Id() {
			t.Errorf("Values() not ordered at %d", i)
		}
	}
}

func TestGetUnknown(t *testing.T) {
	t.Parallel()

	if Get(Id(9999)) != nil {
		t.Error("Get(9999) should return nil")
	}
}

func TestIssueWithArgs(t *testing.T) {
	t.Parallel()

	hint := Get(BuildIdentityPermissionsId).WithArgs("Project Build Service", "build@example")
	msg := string(hint.MarkdownMsg())
	if !strings.Contains(msg, `"Project Build Service" (build@example)`) {
		t.Errorf("WithArgs() message = %q", msg)
	}
	if strings.Contains(string(Get(BuildIdentityPermissionsId).MarkdownMsg()), "Project Build Service") {
		t.Error("WithArgs() mutated the catalog entry")
	}
}

func TestIssueRender(t *testing.T) {
	// Not parallel: swaps the package-level renderer.
	orig := render
	t.Cleanup(func() { render = orig })

	var gotStyle, gotMarkdown string
	render = func(in, stylePath string) (string, error) {
		gotMarkdown, gotStyle = in, stylePath
		return "rendered", nil
	}

	entry := &Issue{id: PushFailedId, mdMsg: "# Title", docLinks: []HttpLink{"https://example.com/docs"}}
	out, err := entry.Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out != "rendered" || gotStyle != "notty" {
		t.Errorf("Render() = %q with style %q", out, gotStyle)
	}
	if !strings.Contains(gotMarkdown, "## See also") || !strings.Contains(gotMarkdown, "https://example.com/docs") {
		t.Errorf("rendered markdown missing links: %q", gotMarkdown)
	}

	links := entry.DocLinks()
	links[0] = "mutated"
	if entry.DocLinks()[0] == "mutated" {
		t.Error("DocLinks() returned the internal slice")
	}
}
