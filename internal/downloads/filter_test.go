package downloads

import (
	"reflect"
	"testing"

	"github.com/debrideck/debrideck/internal/debrid"
)

func named(kind debrid.Kind, id int64, name string) debrid.TaggedDownload {
	return debrid.TaggedDownload{
		Kind:     kind,
		Download: debrid.Download{ID: id, Name: name},
	}
}

func TestFilterByName_EmptyQueryIsIdentity(t *testing.T) {
	items := []debrid.TaggedDownload{
		named(debrid.KindTorrent, 1, "Ubuntu ISO"),
		named(debrid.KindWeb, 2, "holiday.zip"),
	}

	got := FilterByName(items, "")
	if !reflect.DeepEqual(got, items) {
		t.Errorf("FilterByName(items, \"\") = %v, want input unchanged", got)
	}
}

func TestFilterByName_CaseInsensitive(t *testing.T) {
	items := []debrid.TaggedDownload{
		named(debrid.KindTorrent, 1, "Ubuntu ISO"),
		named(debrid.KindWeb, 2, "holiday.zip"),
		named(debrid.KindUsenet, 3, "ubuntu-docs"),
	}

	got := FilterByName(items, "UBUNTU")
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 3 {
		t.Errorf("expected input order preserved, got ids %d, %d", got[0].ID, got[1].ID)
	}
}

func TestFilterByName_NoMatch(t *testing.T) {
	items := []debrid.TaggedDownload{
		named(debrid.KindTorrent, 1, "Ubuntu ISO"),
	}

	if got := FilterByName(items, "fedora"); len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
}

func TestFilterByName_Idempotent(t *testing.T) {
	items := []debrid.TaggedDownload{
		named(debrid.KindTorrent, 1, "Ubuntu ISO"),
		named(debrid.KindWeb, 2, "holiday.zip"),
		named(debrid.KindUsenet, 3, "ubuntu-docs"),
	}

	once := FilterByName(items, "ubuntu")
	twice := FilterByName(once, "ubuntu")
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("filter is not idempotent: %v != %v", once, twice)
	}
}
