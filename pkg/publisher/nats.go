package publisher

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sentiero-app/sentiero/pkg/datastructure"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const SUBJECT_PREFIX = "sentiero.positions"

type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	NATSSetConnected(connected bool)
}

// NATSPublisher mirrors every simulator frame onto a NATS subject per trip so
// external consumers (parent dashboard, alerting) can follow along without a
// websocket session.
type NATSPublisher struct {
	nc      *nats.Conn
	log     *zap.Logger
	metrics PublisherMetrics
}

func NewNATSPublisher(url string, m PublisherMetrics, log *zap.Logger) (*NATSPublisher, error) {
	if log == nil {
		log = zap.NewNop()
	}

	nc, err := nats.Connect(url,
		nats.Name("sentiero"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Warn("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			log.Info("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Info("nats connection closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.NATSSetConnected(true)
	}

	return &NATSPublisher{nc: nc, log: log, metrics: m}, nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		p.nc.Close()
	}
}

// PositionMessage is the wire form of one simulator frame. Tracking false
// means the simulation stopped; lat/lon are absent in that case.
type PositionMessage struct {
	TripID          string    `json:"tripId"`
	Timestamp       time.Time `json:"timestamp"`
	Status          string    `json:"status"`
	Tracking        bool      `json:"tracking"`
	Lat             *float64  `json:"lat,omitempty"`
	Lon             *float64  `json:"lon,omitempty"`
	Bearing         float64   `json:"bearing"`
	Progress        float64   `json:"progress"`
	SpeedMultiplier float64   `json:"speedMultiplier"`
	OffRouteMeters  float64   `json:"offRouteMeters"`
}

func NewPositionMessage(tripID string, snapshot datastructure.SimulationSnapshot) PositionMessage {
	msg := PositionMessage{
		TripID:          tripID,
		Timestamp:       time.Now().UTC(),
		Status:          snapshot.GetStatus().String(),
		Tracking:        snapshot.GetPosition() != nil,
		Bearing:         snapshot.GetBearing(),
		Progress:        snapshot.GetProgress(),
		SpeedMultiplier: snapshot.GetSpeedMultiplier(),
		OffRouteMeters:  snapshot.GetOffRouteMeters(),
	}
	if pos := snapshot.GetPosition(); pos != nil {
		lat, lon := pos.GetLat(), pos.GetLon()
		msg.Lat = &lat
		msg.Lon = &lon
	}
	return msg
}

func (p *NATSPublisher) PublishPosition(tripID string, snapshot datastructure.SimulationSnapshot) error {
	subject := fmt.Sprintf("%s.%s", SUBJECT_PREFIX, subjectToken(tripID))

	body, err := json.Marshal(NewPositionMessage(tripID, snapshot))
	if err != nil {
		return err
	}

	err = p.nc.Publish(subject, body)
	if p.metrics != nil {
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	return err
}

// subjectToken strips characters NATS forbids in a subject token.
func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
