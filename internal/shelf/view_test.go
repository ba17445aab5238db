package shelf

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dmitrijs2005/plantshelf/internal/timex"
)

func ids(ps []Plant) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestView_Order(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	d := func(day int) timex.Date { return timex.NewDate(2025, 6, day) }

	plants := []Plant{
		{ID: "undated-old", CreatedAt: base},
		{ID: "late", NextWaterAt: d(20), CreatedAt: base},
		{ID: "fav-undated", Favorite: true, CreatedAt: base},
		{ID: "early", NextWaterAt: d(3), CreatedAt: base},
		{ID: "undated-new", CreatedAt: base.Add(time.Hour)},
		{ID: "fav-dated", Favorite: true, NextWaterAt: d(10), CreatedAt: base},
		{ID: "early-newer", NextWaterAt: d(3), CreatedAt: base.Add(time.Minute)},
	}

	got := ids(View(plants, false))
	want := []string{"fav-dated", "fav-undated", "early-newer", "early", "late", "undated-new", "undated-old"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestView_FavoritesOnly(t *testing.T) {
	plants := []Plant{
		{ID: "a"},
		{ID: "b", Favorite: true, NextWaterAt: timex.NewDate(2025, 1, 2)},
		{ID: "c", Favorite: true, NextWaterAt: timex.NewDate(2025, 1, 1)},
	}
	got := ids(View(plants, true))
	if diff := cmp.Diff([]string{"c", "b"}, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if plants[0].ID != "a" || plants[1].ID != "b" {
		t.Fatal("input slice must not be reordered")
	}
}

func TestView_Properties(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var plants []Plant
	for i := 0; i < 30; i++ {
		p := Plant{ID: string(rune('a' + i)), Favorite: i%3 == 0, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if i%4 != 0 {
			p.NextWaterAt = timex.NewDate(2025, 2, 1+(i*7)%20)
		}
		plants = append(plants, p)
	}

	got := View(plants, false)
	if len(got) != len(plants) {
		t.Fatalf("len = %d, want %d", len(got), len(plants))
	}

	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if !prev.Favorite && cur.Favorite {
			t.Fatalf("favorite after non-favorite at %d", i)
		}
		if prev.Favorite != cur.Favorite {
			continue
		}
		if prev.NextWaterAt.IsZero() && !cur.NextWaterAt.IsZero() {
			t.Fatalf("dated plant after undated at %d", i)
		}
		if !prev.NextWaterAt.IsZero() && !cur.NextWaterAt.IsZero() && cur.NextWaterAt.Before(prev.NextWaterAt) {
			t.Fatalf("nextWaterAt decreases at %d", i)
		}
	}
}
