package safety

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dsnet/compress/bzip2"
)

const datasetFixture = `{
  "neighborhoodScores": {
    "Murat": {"lat": 41.1250, "lon": 16.8650, "riskScore": 0.35, "influenceRadius": 0.01},
    "Carrassi": {"lat": 41.1010, "lon": 16.8780, "riskScore": 0.6, "influenceRadius": 0.012}
  },
  "incidentGrid": {"41.1270,16.8680": 12},
  "gridConfig": {"latStep": 0.003, "lonStep": 0.004},
  "dangerousStreets": [{"street": "via Sparano", "incidents": 9}],
  "incidentPoints": [{"lat": 41.1281, "lon": 16.8693}],
  "unsafePois": [{"name": "station underpass", "lat": 41.1170, "lon": 16.8700, "radius": 0.002, "weight": 0.9}]
}`

func TestGridKey(t *testing.T) {
	tests := []struct {
		name             string
		lat, lon         float64
		latStep, lonStep float64
		want             string
	}{
		{"mid cell", 41.1280, 16.8690, 0.003, 0.004, "41.1270,16.8680"},
		{"negative coordinate floors down", -0.0005, 0.0005, 0.003, 0.004, "-0.0030,0.0000"},
		{"coarse grid", 41.5, 16.5, 1.0, 1.0, "41.0000,16.0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GridKey(tt.lat, tt.lon, tt.latStep, tt.lonStep)
			if got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGridCountOffsets(t *testing.T) {
	grid := map[string]int{
		"41.1270,16.8680": 7,
	}
	dataset := NewSafetyDataset(nil, grid, NewGridConfig(0.003, 0.004), nil, nil, nil)

	if got := dataset.GridCount(41.1280, 16.8690); got != 7 {
		t.Fatalf("containing cell: got %d, want 7", got)
	}
	if got := dataset.GridCountAt(41.1280, 16.8690, 0, 0); got != 7 {
		t.Fatalf("zero offset: got %d, want 7", got)
	}
	// one cell north of the stored cell, offset back down
	if got := dataset.GridCountAt(41.1310, 16.8690, -1, 0); got != 7 {
		t.Fatalf("offset cell: got %d, want 7", got)
	}
	if got := dataset.GridCount(40.0, 16.0); got != 0 {
		t.Fatalf("missing cell: got %d, want 0", got)
	}

	unconfigured := NewSafetyDataset(nil, grid, GridConfig{}, nil, nil, nil)
	if got := unconfigured.GridCount(41.1280, 16.8690); got != 0 {
		t.Fatalf("zero step config: got %d, want 0", got)
	}
}

func TestLoadDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "safety.json")
	if err := os.WriteFile(path, []byte(datasetFixture), 0644); err != nil {
		t.Fatal(err)
	}

	dataset, err := LoadDataset(path)
	if err != nil {
		t.Fatalf("load dataset: %v", err)
	}

	neighborhoods := dataset.GetNeighborhoods()
	if len(neighborhoods) != 2 {
		t.Fatalf("neighborhoods: got %d, want 2", len(neighborhoods))
	}
	// map entries are materialized in name order
	if neighborhoods[0].GetName() != "Carrassi" || neighborhoods[1].GetName() != "Murat" {
		t.Fatalf("neighborhood order: got %s, %s", neighborhoods[0].GetName(), neighborhoods[1].GetName())
	}
	if neighborhoods[0].GetRiskScore() != 0.6 {
		t.Fatalf("risk score: got %f, want 0.6", neighborhoods[0].GetRiskScore())
	}

	if got := dataset.GridCount(41.1280, 16.8690); got != 12 {
		t.Fatalf("grid count: got %d, want 12", got)
	}
	if dataset.GetGridConfig().GetLatStep() != 0.003 {
		t.Fatalf("lat step: got %f", dataset.GetGridConfig().GetLatStep())
	}

	streets := dataset.GetDangerousStreets()
	if len(streets) != 1 || streets[0].GetStreet() != "via Sparano" || streets[0].GetIncidents() != 9 {
		t.Fatalf("dangerous streets: got %+v", streets)
	}
	if len(dataset.GetIncidentPoints()) != 1 {
		t.Fatalf("incident points: got %d, want 1", len(dataset.GetIncidentPoints()))
	}

	pois := dataset.GetUnsafePois()
	if len(pois) != 1 || pois[0].GetName() != "station underpass" || pois[0].GetWeight() != 0.9 {
		t.Fatalf("unsafe pois: got %+v", pois)
	}
}

func TestLoadDatasetBzip2(t *testing.T) {
	path := filepath.Join(t.TempDir(), "safety.json.bz2")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w, err := bzip2.NewWriter(f, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(datasetFixture)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	dataset, err := LoadDataset(path)
	if err != nil {
		t.Fatalf("load compressed dataset: %v", err)
	}
	if len(dataset.GetNeighborhoods()) != 2 {
		t.Fatalf("neighborhoods: got %d, want 2", len(dataset.GetNeighborhoods()))
	}
	if got := dataset.GridCount(41.1280, 16.8690); got != 12 {
		t.Fatalf("grid count: got %d, want 12", got)
	}
}

func TestLoadDatasetMissingFile(t *testing.T) {
	if _, err := LoadDataset(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("missing file must return an error")
	}
}
