package management

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// handleHealth reports 200 iff at least one fixed task (a listener, a
// subscriber registration, or an RPC server) is currently running, and
// 503 otherwise — a node with zero fixed tasks running has nothing
// left doing its job.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	if s.Fixed.Len() == 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}
