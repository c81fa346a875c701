package service

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/caspernetworks/casper/src/common"
	"github.com/caspernetworks/casper/src/node"
	"github.com/caspernetworks/casper/src/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Service exposes the node state over HTTP: stats, stored blocks, the
// approved block, and the prometheus metrics.
type Service struct {
	sync.Mutex

	bindAddress string
	node        *node.Node
	logger      *logrus.Entry
}

// NewService ...
func NewService(bindAddress string, n *node.Node, logger *logrus.Entry) *Service {
	service := Service{
		bindAddress: bindAddress,
		node:        n,
		logger:      logger,
	}

	service.registerHandlers()

	return &service
}

// registerHandlers registers the API handlers with the DefaultServerMux of
// the http package. It is possible that another server in the same process
// is simultaneously using the DefaultServerMux. In which case, the handlers
// will be accessible from both servers.
func (s *Service) registerHandlers() {
	s.logger.Debug("Registering Casper API handlers")
	http.HandleFunc("/stats", s.makeHandler(s.GetStats))
	http.HandleFunc("/block/", s.makeHandler(s.GetBlock))
	http.HandleFunc("/approved", s.makeHandler(s.GetApprovedBlock))
	http.Handle("/metrics", promhttp.HandlerFor(s.node.Registry(), promhttp.HandlerOpts{}))
}

func (s *Service) makeHandler(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		defer s.Unlock()

		// enable CORS
		w.Header().Set("Access-Control-Allow-Origin", "*")

		fn(w, r)
	}
}

// Serve calls ListenAndServe. This is a blocking call. It is not necessary
// to call Serve when another server has already been started with the
// DefaultServerMux and the same address:port combination.
func (s *Service) Serve() {
	s.logger.WithField("bind_address", s.bindAddress).Debug("Serving Casper API")

	err := http.ListenAndServe(s.bindAddress, nil)
	if err != nil {
		s.logger.Error(err)
	}
}

// GetStats returns the node stats map.
func (s *Service) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := s.node.GetStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// GetBlock returns a stored block by hex hash: /block/0XABCD...
func (s *Service) GetBlock(w http.ResponseWriter, r *http.Request) {
	param := strings.TrimPrefix(r.URL.Path, "/block/")

	hash, err := common.DecodeFromString(param)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	block, err := s.node.BlockStore().GetBlockMessage(hash)
	if err != nil {
		if store.IsKeyNotFound(err) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(block.Body)
}

// GetApprovedBlock returns the approved block, 404 before the node
// transitions.
func (s *Service) GetApprovedBlock(w http.ResponseWriter, r *http.Request) {
	ab := s.node.LastApprovedBlock()
	if ab == nil {
		http.Error(w, "no approved block available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ab)
}
