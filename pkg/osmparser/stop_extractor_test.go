package osmparser

import (
	"testing"

	"github.com/paulmach/osm"
)

func busRouteRelation(ref string, name string, nodeRefs ...int64) *osm.Relation {
	tags := osm.Tags{
		{Key: "type", Value: "route"},
		{Key: "route", Value: "bus"},
	}
	if ref != "" {
		tags = append(tags, osm.Tag{Key: "ref", Value: ref})
	}
	if name != "" {
		tags = append(tags, osm.Tag{Key: "name", Value: name})
	}
	members := make(osm.Members, 0, len(nodeRefs))
	for _, r := range nodeRefs {
		members = append(members, osm.Member{Type: osm.TypeNode, Ref: r, Role: "stop"})
	}
	return &osm.Relation{Tags: tags, Members: members}
}

func TestAcceptBusStopNode(t *testing.T) {
	testCases := []struct {
		name string
		node *osm.Node
		want bool
	}{
		{
			name: "highway bus_stop",
			node: &osm.Node{Tags: osm.Tags{{Key: "highway", Value: "bus_stop"}}},
			want: true,
		},
		{
			name: "stop_position served by bus",
			node: &osm.Node{Tags: osm.Tags{
				{Key: "public_transport", Value: "stop_position"},
				{Key: "bus", Value: "yes"},
			}},
			want: true,
		},
		{
			name: "stop_position without bus tag",
			node: &osm.Node{Tags: osm.Tags{{Key: "public_transport", Value: "stop_position"}}},
			want: false,
		},
		{
			name: "plain highway node",
			node: &osm.Node{Tags: osm.Tags{{Key: "highway", Value: "traffic_signals"}}},
			want: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := acceptBusStopNode(tc.node); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBusLineName(t *testing.T) {
	withRef := busRouteRelation("12", "Bus 12: Stazione => San Paolo")
	if got := busLineName(withRef); got != "12" {
		t.Errorf("got %s, want the ref tag", got)
	}

	nameOnly := busRouteRelation("", "Navetta A")
	if got := busLineName(nameOnly); got != "Navetta A" {
		t.Errorf("got %s, want the relation name", got)
	}
}

func TestAcceptBusRoute(t *testing.T) {
	if !acceptBusRoute(busRouteRelation("12", "")) {
		t.Errorf("bus route relation rejected")
	}

	tram := &osm.Relation{Tags: osm.Tags{
		{Key: "type", Value: "route"},
		{Key: "route", Value: "tram"},
	}}
	if acceptBusRoute(tram) {
		t.Errorf("tram route accepted")
	}
}

func TestStopExtractorAssemble(t *testing.T) {
	p := NewStopExtractor()
	// line 12 outbound and return pass stop 20, line 3 only stop 10
	p.recordRelation(busRouteRelation("12", "", 20, 30))
	p.recordRelation(busRouteRelation("12", "", 20))
	p.recordRelation(busRouteRelation("3", "", 10, 20))

	nodes := []busStopNode{
		{id: 30, name: "Piazza Moro", lat: 41.1171, lon: 16.8719},
		{id: 10, name: "Corso Cavour", lat: 41.1205, lon: 16.8731},
		{id: 20, name: "Via Sparano", lat: 41.1253, lon: 16.8685},
		{id: 40, name: "Lungomare", lat: 41.1300, lon: 16.8800},
	}

	stops := p.assemble(nodes)
	if len(stops) != 4 {
		t.Fatalf("got %d stops, want 4", len(stops))
	}

	wantIDs := []string{"10", "20", "30", "40"}
	for i, want := range wantIDs {
		if stops[i].ID != want {
			t.Fatalf("stop %d: got id %s, want %s", i, stops[i].ID, want)
		}
	}

	// lines are deduplicated and sorted per stop
	got := stops[1].Lines
	if len(got) != 2 || got[0] != "12" || got[1] != "3" {
		t.Errorf("stop 20 lines: got %v, want [12 3]", got)
	}
	if len(stops[0].Lines) != 1 || stops[0].Lines[0] != "3" {
		t.Errorf("stop 10 lines: got %v, want [3]", stops[0].Lines)
	}
	// a stop no relation references keeps an empty line list
	if len(stops[3].Lines) != 0 {
		t.Errorf("stop 40 lines: got %v, want none", stops[3].Lines)
	}
}

func TestStopNameFallback(t *testing.T) {
	named := &osm.Node{ID: 7, Tags: osm.Tags{
		{Key: "highway", Value: "bus_stop"},
		{Key: "name", Value: "Teatro Petruzzelli"},
	}}
	if got := stopName(named); got != "Teatro Petruzzelli" {
		t.Errorf("got %s, want the name tag", got)
	}

	refOnly := &osm.Node{ID: 7, Tags: osm.Tags{
		{Key: "highway", Value: "bus_stop"},
		{Key: "ref", Value: "AM-114"},
	}}
	if got := stopName(refOnly); got != "AM-114" {
		t.Errorf("got %s, want the ref tag", got)
	}

	bare := &osm.Node{ID: 7, Tags: osm.Tags{{Key: "highway", Value: "bus_stop"}}}
	if got := stopName(bare); got != "stop 7" {
		t.Errorf("got %s, want the synthetic name", got)
	}
}
