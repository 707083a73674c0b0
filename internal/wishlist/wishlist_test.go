package wishlist

import (
	"testing"

	"github.com/vera-byte/bookmandu/pkg/model"
)

func TestAddDeduplicatesByBook(t *testing.T) {
	l := New()
	if !l.AddBook(model.Book{BookID: 1, BookTitle: "Muna Madan"}) {
		t.Fatal("first add should succeed")
	}
	if l.Add(model.WishlistItem{BookID: 1, BookTitle: "again"}) {
		t.Fatal("duplicate add should be rejected")
	}
	l.Add(model.WishlistItem{BookID: 2})
	if l.Len() != 2 {
		t.Fatalf("len = %d, want 2", l.Len())
	}
	if got := l.Items()[0].BookTitle; got != "Muna Madan" {
		t.Fatalf("first item = %q, the first entry must be kept", got)
	}
}

func TestRemoveAndContains(t *testing.T) {
	l := New()
	for _, id := range []int{1, 2, 3} {
		l.Add(model.WishlistItem{BookID: id})
	}

	tests := []struct {
		id   int
		want bool
	}{
		{2, true},
		{2, false},
		{9, false},
	}
	for _, tt := range tests {
		if got := l.Remove(tt.id); got != tt.want {
			t.Errorf("Remove(%d) = %v, want %v", tt.id, got, tt.want)
		}
	}
	if l.Contains(2) || !l.Contains(1) || !l.Contains(3) {
		t.Fatalf("unexpected contents %+v", l.Items())
	}
}

func TestItemsIsACopy(t *testing.T) {
	l := New()
	l.Add(model.WishlistItem{BookID: 1})
	items := l.Items()
	items[0].BookID = 99
	if !l.Contains(1) {
		t.Fatal("mutating the copy changed the list")
	}
}

func TestClear(t *testing.T) {
	l := New()
	l.Add(model.WishlistItem{BookID: 1})
	l.Clear()
	if l.Len() != 0 || l.Contains(1) {
		t.Fatal("list should be empty")
	}
}
