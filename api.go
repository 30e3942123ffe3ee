package igmpsnoop

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// GroupStatus is one pooled group's portmap, as surfaced by SnapshotHandler.
type GroupStatus struct {
	MAC     string `json:"mac"`
	Portmap []bool `json:"portmap"`
}

// Snapshot is a read only view of the cache's state for introspection.
type Snapshot struct {
	Groups        []GroupStatus `json:"groups"`
	GroupCount    int           `json:"group_count"`
	MemberCount   int           `json:"member_count"`
	HostCount     int           `json:"host_count"`
	RouterPortmap []bool        `json:"router_portmap"`
}

// StatusServer is the read only debug HTTP server answering queries about
// an Agent's in-memory cache state. It is introspection, not a statistics
// exporter: no time series, no persistence, nothing that reintroduces the
// dropped statistics-export Non-goal.
type StatusServer struct {
	agent   *Agent
	server  *http.Server
	handler *http.ServeMux
	labels  PortLabels
}

// NewStatusServer returns an initialized StatusServer bound to addr.
func NewStatusServer(agent *Agent, addr string) *StatusServer {
	handler := http.NewServeMux()
	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return &StatusServer{agent: agent, handler: handler, server: server}
}

// SnapshotHandler returns the current cache snapshot as JSON.
func (s *StatusServer) SnapshotHandler(rw http.ResponseWriter, request *http.Request) {
	var snap Snapshot
	s.agent.Do(func() {
		c := s.agent.cache
		snap.GroupCount = c.GroupCount()
		snap.MemberCount = c.MemberCount()
		snap.HostCount = c.HostCount()
		snap.RouterPortmap = c.RouterPortmap()
		for i := range c.groups {
			g := &c.groups[i]
			snap.Groups = append(snap.Groups, GroupStatus{
				MAC:     g.mac.String(),
				Portmap: bitsetSnapshot(g.portmap, c.cfg.PortMax),
			})
		}
	})

	asJSON, err := json.Marshal(snap)
	if err != nil {
		log.Println(err)
		rw.WriteHeader(500)
		return
	}
	rw.Write(asJSON)
}

// StatusHandler acts as a bare healthcheck and simply returns 200 OK.
func (s *StatusServer) StatusHandler(rw http.ResponseWriter, request *http.Request) {
	fmt.Fprintf(rw, "ok")
}

// Run starts RunForever in a separate goroutine for non-blocking behavior.
func (s *StatusServer) Run() {
	go s.RunForever()
}

// RunForever sets up the handlers above and then listens for requests
// until stopped or a fatal error occurs. Calling this blocks.
func (s *StatusServer) RunForever() {
	s.setupHandlers()
	log.Fatal(s.server.ListenAndServe())
}

func (s *StatusServer) setupHandlers() {
	s.handler.HandleFunc("/status", s.StatusHandler)
	s.handler.HandleFunc("/snapshot", s.SnapshotHandler)
}

// Stop closes down the server.
func (s *StatusServer) Stop() {
	if err := s.server.Close(); err != nil {
		log.Println("Error stopping status server:", err)
	}
	log.Println("Status server stopped")
}
