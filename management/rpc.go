package management

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// fixedTaskView is the JSON shape ListFixedTasks returns for each
// running task.
type fixedTaskView struct {
	ChainID uint64 `json:"chain_id"`
	Kind    string `json:"kind"`
	Variant string `json:"variant"`
}

// requireAuth rejects requests whose Authorization header does not
// carry "Bearer <AuthToken>" with 401, unless AuthToken is empty.
func (s *Server) requireAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if s.AuthToken == "" {
			next(w, r, ps)
			return
		}
		const prefix = "Bearer "
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, prefix) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		token := strings.TrimPrefix(header, prefix)
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.AuthToken)) != 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next(w, r, ps)
	}
}

// handleListFixedTasks reports every task key currently registered in
// the fixed scheduler, for operator inspection.
func (s *Server) handleListFixedTasks(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	keys := s.Fixed.Keys()
	views := make([]fixedTaskView, 0, len(keys))
	for _, k := range keys {
		views = append(views, fixedTaskView{ChainID: k.ChainID, Kind: k.Kind.String(), Variant: string(k.Variant)})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(views); err != nil {
		logger.Error("failed to encode fixed task list", "err", err)
	}
}
