package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/saeidalz13/warzones/models/campaign"
)

const maxSnapshotBytes = 1 << 20

type ReqMissionResult struct {
	Won      *bool   `json:"won"`
	Accuracy float64 `json:"accuracy"`
}

type RespMissionResult struct {
	Stars    int                `json:"stars"`
	Progress *campaign.Progress `json:"progress"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{
		"sessions": s.SessionManager.Count(),
		"matches":  s.GameManager.Count(),
	})
}

func (s *Server) handleMissions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalogue)
}

func (s *Server) handleMission(w http.ResponseWriter, r *http.Request) {
	// the route only matches digits
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	m, err := s.catalogue.Mission(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.LoadProgress(r.Context(), mux.Vars(r)["player"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleRecordMission stores one finished attempt. Locked missions
// cannot be recorded. Attempts of one player are applied one at a time.
func (s *Server) handleRecordMission(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	player := vars["player"]
	id, _ := strconv.Atoi(vars["id"])

	var req ReqMissionResult
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		s.writeError(w, r, errInvalidResult)
		return
	}
	if req.Won == nil || req.Accuracy < 0 || req.Accuracy > 100 {
		s.writeError(w, r, errInvalidResult)
		return
	}

	unlock := s.progress.Lock(player)
	defer unlock()

	p, err := s.store.LoadProgress(r.Context(), player)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.catalogue.Launch(p, id); err != nil {
		s.writeError(w, r, err)
		return
	}

	stars, err := s.catalogue.Record(p, id, *req.Won, req.Accuracy)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.SaveProgress(r.Context(), player, p); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("mission recorded",
		zap.String("player", player),
		zap.Int("mission", id),
		zap.Bool("won", *req.Won),
		zap.Int("stars", stars),
	)
	writeJSON(w, http.StatusOK, RespMissionResult{Stars: stars, Progress: p})
}

func (s *Server) handlePutSnapshot(w http.ResponseWriter, r *http.Request) {
	blob, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSnapshotBytes))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !json.Valid(blob) {
		s.writeError(w, r, errInvalidSnapshot)
		return
	}

	if err := s.store.SaveSnapshot(r.Context(), mux.Vars(r)["id"], blob); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	blob, err := s.store.LoadSnapshot(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(blob)
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSnapshot(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
