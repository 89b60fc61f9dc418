package classifier

import "testing"

func TestLabelsMatchModelOutputOrder(t *testing.T) {
	want := []string{
		"garbage",
		"open_manhole",
		"potholes",
		"road_normal",
		"streetlight_bad",
		"streetlight_good",
	}

	got := Labels()
	if len(got) != len(want) {
		t.Fatalf("expected %d labels, got %d", len(want), len(got))
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("label %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	if NumClasses() != len(want) {
		t.Errorf("NumClasses() = %d, want %d", NumClasses(), len(want))
	}
}

func TestCatalogCoversEveryClass(t *testing.T) {
	valid := map[Priority]bool{
		PriorityCritical: true,
		PriorityHigh:     true,
		PriorityMedium:   true,
		PriorityLow:      true,
	}

	for i, info := range Catalog() {
		if info.Name == "" {
			t.Errorf("entry %d has no name", i)
		}
		if info.Description == "" {
			t.Errorf("entry %d (%s) has no description", i, info.Name)
		}
		if !valid[info.Priority] {
			t.Errorf("entry %d (%s) has invalid priority %q", i, info.Name, info.Priority)
		}
	}
}

func TestCatalogReturnsCopy(t *testing.T) {
	first := Catalog()
	first[0].Name = "mutated"

	if Catalog()[0].Name != "garbage" {
		t.Error("mutating the returned catalog changed the shared table")
	}
}
