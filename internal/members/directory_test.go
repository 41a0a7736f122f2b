package members

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"hisab/internal/core"
)

func member(name, email, group string) core.Member {
	return core.Member{Name: name, Email: email, Group: group}
}

func TestRegisterAndLookup(t *testing.T) {
	d, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	saved, err := d.Register(member("Abu Talha", "abu@example.org", core.GroupBrother))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("expected assigned identifier")
	}

	got := d.Lookup("Abu Talha")
	if got.Email != "abu@example.org" || got.ID != saved.ID {
		t.Fatalf("lookup mismatch: %+v", got)
	}
	if d.Lookup("nobody").Name != "" {
		t.Fatalf("unknown name must yield a zero member")
	}
}

func TestRegisterRejectsEmptyEmail(t *testing.T) {
	d, _ := Open(t.TempDir())
	if _, err := d.Register(member("Abu Talha", "", core.GroupBrother)); !errors.Is(err, core.ErrEmptyEmail) {
		t.Fatalf("expected ErrEmptyEmail, got %v", err)
	}
	if _, err := d.Register(member("", "a@b.c", core.GroupBrother)); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if len(d.All()) != 0 {
		t.Fatalf("rejected registrations must leave the directory unchanged")
	}
}

func TestReRegisterOverwrites(t *testing.T) {
	d, _ := Open(t.TempDir())
	first := member("Abu Talha", "abu@example.org", core.GroupBrother)
	first.Phone = "111"
	d.Register(first)

	second := first
	second.Phone = "222"
	d.Register(second)

	if got := d.Lookup("Abu Talha").Phone; got != "222" {
		t.Fatalf("expected last-write-wins phone 222, got %s", got)
	}
	if len(d.All()) != 1 {
		t.Fatalf("overwrite must not create a second entry")
	}
}

func TestListByGroupSorted(t *testing.T) {
	d, _ := Open(t.TempDir())
	d.Register(member("Zaid", "z@x.y", core.GroupBrother))
	d.Register(member("Aisha", "a@x.y", core.GroupSister))
	d.Register(member("Bilal", "b@x.y", core.GroupBrother))

	got := d.ListByGroup(core.GroupBrother)
	if !reflect.DeepEqual(got, []string{"Bilal", "Zaid"}) {
		t.Fatalf("brothers = %v", got)
	}
	all := d.ListByGroup(GroupAll)
	if !reflect.DeepEqual(all, []string{"Aisha", "Bilal", "Zaid"}) {
		t.Fatalf("all = %v", all)
	}
	if d.ListByGroup("Unknown") != nil {
		t.Fatalf("empty cohort must yield no names")
	}
}

func TestPersistenceAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	d, _ := Open(dir)
	d.Register(member("Abu Talha", "abu@example.org", core.GroupBrother))

	d2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if d2.Lookup("Abu Talha").Email != "abu@example.org" {
		t.Fatalf("registration did not survive reopen")
	}
}

func TestImportJSONMerges(t *testing.T) {
	d, _ := Open(t.TempDir())
	d.Register(member("Abu Talha", "abu@example.org", core.GroupBrother))

	if _, err := d.ImportJSON(strings.NewReader("{not json")); err == nil {
		t.Fatalf("expected parse error")
	}
	if len(d.All()) != 1 {
		t.Fatalf("failed import must leave directory unchanged")
	}

	doc := `{"Bilal": {"name": "Bilal", "email": "b@x.y", "group": "Brother"}}`
	n, err := d.ImportJSON(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 1 || len(d.All()) != 2 {
		t.Fatalf("import must merge, got n=%d total=%d", n, len(d.All()))
	}
	if d.Lookup("Bilal").ID == "" {
		t.Fatalf("imported members must get identifiers")
	}
}
