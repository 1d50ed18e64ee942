package transit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sentiero-app/sentiero/pkg/datastructure"
	"github.com/sentiero-app/sentiero/pkg/geo"
)

func testStops() []datastructure.TransitStop {
	return []datastructure.TransitStop{
		datastructure.NewTransitStop("s1", "Piazza Moro", geo.NewCoordinate(41.1170, 16.8718), []string{"L12", "L3"}),
		datastructure.NewTransitStop("s2", "Via Crisanzio", geo.NewCoordinate(41.1190, 16.8680), []string{"L3"}),
		datastructure.NewTransitStop("s3", "Poggiofranco Sud", geo.NewCoordinate(41.0890, 16.8710), []string{"L12"}),
		datastructure.NewTransitStop("s4", "San Pasquale", geo.NewCoordinate(41.1020, 16.8800), []string{"L7"}),
	}
}

func TestStopsNear(t *testing.T) {
	directory := NewDirectory(testStops())

	t.Run("orders by distance", func(t *testing.T) {
		got := directory.StopsNear(geo.NewCoordinate(41.1175, 16.8715), 1.0)
		if len(got) != 2 {
			t.Fatalf("got %d stops, want 2", len(got))
		}
		if got[0].GetID() != "s1" || got[1].GetID() != "s2" {
			t.Fatalf("order: got %s, %s, want s1, s2", got[0].GetID(), got[1].GetID())
		}
	})

	t.Run("respects radius", func(t *testing.T) {
		got := directory.StopsNear(geo.NewCoordinate(41.1175, 16.8715), 0.2)
		if len(got) != 1 || got[0].GetID() != "s1" {
			t.Fatalf("got %+v, want only s1", got)
		}
	})

	t.Run("empty when nothing in range", func(t *testing.T) {
		got := directory.StopsNear(geo.NewCoordinate(41.3000, 17.2000), 1.0)
		if len(got) != 0 {
			t.Fatalf("got %d stops, want 0", len(got))
		}
	})
}

func TestFirstCommonLine(t *testing.T) {
	directory := NewDirectory(testStops())

	t.Run("finds shared line", func(t *testing.T) {
		origins := directory.StopsNear(geo.NewCoordinate(41.1175, 16.8715), 1.0)
		destinations := directory.StopsNear(geo.NewCoordinate(41.0890, 16.8710), 0.5)

		line, from, to, ok := directory.FirstCommonLine(origins, destinations)
		if !ok {
			t.Fatal("expected a shared line")
		}
		if line != "L12" {
			t.Fatalf("line: got %s, want L12", line)
		}
		if from.GetID() != "s1" || to.GetID() != "s3" {
			t.Fatalf("stops: got %s -> %s, want s1 -> s3", from.GetID(), to.GetID())
		}
	})

	t.Run("first origin with a shared line wins", func(t *testing.T) {
		// s2 comes first but only serves L3, so the scan moves on to s1
		origins := []datastructure.TransitStop{testStops()[1], testStops()[0]}
		destinations := []datastructure.TransitStop{testStops()[2]}

		line, from, _, ok := directory.FirstCommonLine(origins, destinations)
		if !ok || line != "L12" || from.GetID() != "s1" {
			t.Fatalf("got line %s from %s, want L12 from s1", line, from.GetID())
		}
	})

	t.Run("no shared line", func(t *testing.T) {
		origins := []datastructure.TransitStop{testStops()[0]}
		destinations := []datastructure.TransitStop{testStops()[3]}

		if _, _, _, ok := directory.FirstCommonLine(origins, destinations); ok {
			t.Fatal("expected no shared line")
		}
	})

	t.Run("same stop on both ends is skipped", func(t *testing.T) {
		stop := testStops()[0]
		origins := []datastructure.TransitStop{stop}
		destinations := []datastructure.TransitStop{stop}

		if _, _, _, ok := directory.FirstCommonLine(origins, destinations); ok {
			t.Fatal("a single stop is not a transit leg")
		}
	})
}

func TestLoadStops(t *testing.T) {
	fixture := `[
  {"id": "s1", "name": "Piazza Moro", "lat": 41.1170, "lon": 16.8718, "lines": ["L12", "L3"]},
  {"id": "s2", "name": "Via Crisanzio", "lat": 41.1190, "lon": 16.8680, "lines": ["L3"]}
]`
	path := filepath.Join(t.TempDir(), "stops.json")
	if err := os.WriteFile(path, []byte(fixture), 0644); err != nil {
		t.Fatal(err)
	}

	directory, err := LoadStops(path)
	if err != nil {
		t.Fatalf("load stops: %v", err)
	}
	if len(directory.GetStops()) != 2 {
		t.Fatalf("got %d stops, want 2", len(directory.GetStops()))
	}

	near := directory.StopsNear(geo.NewCoordinate(41.1170, 16.8718), 0.1)
	if len(near) != 1 || near[0].GetName() != "Piazza Moro" {
		t.Fatalf("got %+v, want Piazza Moro", near)
	}
	if !near[0].ServesLine("L12") {
		t.Fatal("s1 must serve L12")
	}
}
