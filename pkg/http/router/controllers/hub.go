package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/sentiero-app/sentiero/pkg/datastructure"
	"go.uber.org/zap"
)

// HubMetrics is the slice of the metrics collector the hub reports to.
type HubMetrics interface {
	WSClientInc()
	WSClientDec()
}

type User struct {
	io   sync.Mutex
	conn io.ReadWriteCloser

	id  uint
	hub *Hub
}

func (u *User) readRequest() (*subscribeRequest, error) {
	u.io.Lock()
	defer u.io.Unlock()

	h, r, err := wsutil.NextReader(u.conn, ws.StateServerSide)
	if err != nil {
		return nil, err
	}
	if h.OpCode.IsControl() {
		return nil, wsutil.ControlFrameHandler(u.conn, ws.StateServerSide)(h, r)
	}

	req := &subscribeRequest{}
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(req); err != nil {
		return nil, err
	}
	return req, nil
}

// HandleCommand reads one subscribe command from the connection and binds the
// user to that trip's position stream.
func (u *User) HandleCommand() error {
	req, err := u.readRequest()
	if err != nil {
		u.conn.Close()
		return err
	}

	if req == nil {
		return nil
	}

	validate := validator.New()

	if err := validate.Struct(req); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		errResp := envelope{"error": map[string]string{
			"code":    http.StatusText(http.StatusBadRequest),
			"message": fmt.Sprintf("validation error: %v", vvString),
		}}
		return u.write(errResp)
	}

	if _, err := u.hub.tripService.GetTrip(req.TripID); err != nil {
		errResp := envelope{"error": map[string]string{
			"code":    http.StatusText(http.StatusNotFound),
			"message": fmt.Sprintf("unknown trip %s", req.TripID),
		}}
		return u.write(errResp)
	}

	u.hub.Subscribe(u, req.TripID)

	resp := envelope{"data": subscribeAck{TripID: req.TripID, Subscribed: true}}
	return u.write(resp)
}

func (u *User) write(x interface{}) error {
	w := wsutil.NewWriter(u.conn, ws.StateServerSide, ws.OpText)
	encoder := json.NewEncoder(w)

	u.io.Lock()
	defer u.io.Unlock()

	if err := encoder.Encode(x); err != nil {
		return err
	}

	return w.Flush()
}

// Hub fans simulator position frames out to the websocket users subscribed to
// each trip.
type Hub struct {
	mu          sync.RWMutex
	seq         uint
	ns          map[uint]*User
	subs        map[string]map[uint]*User
	tripService TripService

	metrics HubMetrics
	log     *zap.Logger
}

func NewHub(tripService TripService, metrics HubMetrics, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	hub := &Hub{
		ns:          make(map[uint]*User),
		subs:        make(map[string]map[uint]*User),
		tripService: tripService,
		metrics:     metrics,
		log:         log,
	}

	return hub
}

func (h *Hub) Register(conn net.Conn) *User {
	user := &User{
		hub:  h,
		conn: conn,
	}

	h.mu.Lock()
	user.id = h.seq
	h.ns[user.id] = user

	h.seq++
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.WSClientInc()
	}

	return user
}

func (h *Hub) Remove(user *User) {
	h.mu.Lock()
	if _, oki := h.ns[user.id]; !oki {
		h.mu.Unlock()
		return
	}
	delete(h.ns, user.id)

	for tripID, users := range h.subs {
		delete(users, user.id)
		if len(users) == 0 {
			delete(h.subs, tripID)
		}
	}
	h.mu.Unlock()

	user.conn.Close()

	if h.metrics != nil {
		h.metrics.WSClientDec()
	}
}

// Subscribe binds user to tripID's stream. A user may follow several trips at
// once.
func (h *Hub) Subscribe(user *User, tripID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	users, ok := h.subs[tripID]
	if !ok {
		users = make(map[uint]*User)
		h.subs[tripID] = users
	}
	users[user.id] = user
}

func (h *Hub) subscribers(tripID string) []*User {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]*User, 0, len(h.subs[tripID]))
	for _, user := range h.subs[tripID] {
		users = append(users, user)
	}
	return users
}

// BroadcastPosition pushes one position frame to every subscriber of tripID.
// Users whose connection fails are dropped from the hub.
func (h *Hub) BroadcastPosition(tripID string, snapshot datastructure.SimulationSnapshot) {
	frame := envelope{"data": NewPositionFrame(tripID, snapshot)}
	h.broadcast(tripID, frame)
}

// BroadcastArrival pushes the final arrived frame to every subscriber.
func (h *Hub) BroadcastArrival(tripID string) {
	frame := envelope{"data": arrivalFrame{TripID: tripID, Arrived: true}}
	h.broadcast(tripID, frame)
}

func (h *Hub) broadcast(tripID string, frame envelope) {
	for _, user := range h.subscribers(tripID) {
		if err := user.write(frame); err != nil {
			h.log.Info("dropping websocket user after failed write",
				zap.Uint("user", user.id), zap.String("tripId", tripID), zap.Error(err))
			h.Remove(user)
		}
	}
}

func (h *Hub) RemoveAllUser() {
	h.mu.RLock()
	users := make([]*User, 0, len(h.ns))
	for _, user := range h.ns {
		users = append(users, user)
	}
	h.mu.RUnlock()

	for _, user := range users {
		h.Remove(user)
	}
}

// ClientCount reports how many websocket users are connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.ns)
}
