package osmparser

import (
	"context"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/sentiero-app/sentiero/pkg/util"
	"go.uber.org/zap"
)

// BusStop. one public transport stop extracted from openstreetmap, annotated
// with the bus lines whose route relations reference it.
type BusStop struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Lat   float64  `json:"lat"`
	Lon   float64  `json:"lon"`
	Lines []string `json:"lines"`
}

type busStopNode struct {
	id   int64
	name string
	lat  float64
	lon  float64
}

type StopExtractor struct {
	stopLines map[int64]map[string]struct{}
}

func NewStopExtractor() *StopExtractor {
	return &StopExtractor{
		stopLines: make(map[int64]map[string]struct{}),
	}
}

// Parse. scan an openstreetmap pbf extract twice: first the bus route
// relations, so every member node knows which lines serve it, then the stop
// nodes themselves. relations appear after nodes in a sorted extract, the
// rewind keeps the result independent of block order.
func (p *StopExtractor) Parse(mapFile string, logger *zap.Logger) ([]BusStop, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "open osm extract %s", mapFile)
	}
	defer f.Close()

	scanner := osmpbf.New(context.Background(), f, 0)
	// must not be parallel
	countRelations := 0
	for scanner.Scan() {
		o := scanner.Object()

		if o.ObjectID().Type() != osm.TypeRelation {
			continue
		}
		relation := o.(*osm.Relation)
		if !acceptBusRoute(relation) {
			continue
		}
		if (countRelations+1)%500 == 0 {
			logger.Sugar().Infof("scanning bus route relations: %d...", countRelations+1)
		}
		countRelations++
		p.recordRelation(relation)
	}
	scanner.Close()

	_, err = f.Seek(0, io.SeekStart)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "rewind osm extract %s", mapFile)
	}

	scanner = osmpbf.New(context.Background(), f, 0)
	// must not be parallel
	defer scanner.Close()

	nodes := make([]busStopNode, 0)
	countNodes := 0
	for scanner.Scan() {
		o := scanner.Object()

		if o.ObjectID().Type() != osm.TypeNode {
			continue
		}
		if (countNodes+1)%500000 == 0 {
			logger.Sugar().Infof("processing openstreetmap nodes: %d...", countNodes+1)
		}
		countNodes++

		node := o.(*osm.Node)
		if !acceptBusStopNode(node) {
			continue
		}
		nodes = append(nodes, busStopNode{
			id:   int64(node.ID),
			name: stopName(node),
			lat:  node.Lat,
			lon:  node.Lon,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "scan osm extract %s", mapFile)
	}

	stops := p.assemble(nodes)

	logger.Sugar().Infof("number of bus route relations: %v", countRelations)
	logger.Sugar().Infof("number of bus stops: %v", len(stops))

	return stops, nil
}

func (p *StopExtractor) recordRelation(relation *osm.Relation) {
	line := busLineName(relation)
	if line == "" {
		return
	}
	for _, member := range relation.Members {
		if member.Type != osm.TypeNode {
			continue
		}
		if _, ok := p.stopLines[member.Ref]; !ok {
			p.stopLines[member.Ref] = make(map[string]struct{})
		}
		p.stopLines[member.Ref][line] = struct{}{}
	}
}

// assemble. stops ordered by osm node id, each with its line set sorted.
func (p *StopExtractor) assemble(nodes []busStopNode) []BusStop {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].id < nodes[j].id
	})

	stops := make([]BusStop, 0, len(nodes))
	for _, n := range nodes {
		stops = append(stops, BusStop{
			ID:    strconv.FormatInt(n.id, 10),
			Name:  n.name,
			Lat:   n.lat,
			Lon:   n.lon,
			Lines: p.linesFor(n.id),
		})
	}
	return stops
}

func (p *StopExtractor) linesFor(nodeID int64) []string {
	lines := make([]string, 0, len(p.stopLines[nodeID]))
	for line := range p.stopLines[nodeID] {
		lines = append(lines, line)
	}
	sort.Strings(lines)
	return lines
}

func acceptBusRoute(relation *osm.Relation) bool {
	return relation.Tags.Find("type") == "route" && relation.Tags.Find("route") == "bus"
}

// busLineName. the label riders know the line by, the ref tag when present,
// the relation name otherwise.
func busLineName(relation *osm.Relation) string {
	if ref := relation.Tags.Find("ref"); ref != "" {
		return ref
	}
	return relation.Tags.Find("name")
}

func acceptBusStopNode(node *osm.Node) bool {
	if node.Tags.Find("highway") == "bus_stop" {
		return true
	}
	return node.Tags.Find("public_transport") == "stop_position" && node.Tags.Find("bus") == "yes"
}

func stopName(node *osm.Node) string {
	if name := node.Tags.Find("name"); name != "" {
		return name
	}
	if ref := node.Tags.Find("ref"); ref != "" {
		return ref
	}
	return "stop " + strconv.FormatInt(int64(node.ID), 10)
}
