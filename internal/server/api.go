package server

import (
	"net/http"
	"strconv"

	"sidegig/internal/action"
	"sidegig/internal/state"
	"sidegig/internal/telemetry"
)

// stateView is the read model handed to clients.
type stateView struct {
	Day      int     `json:"day"`
	Money    int64   `json:"money"`
	TimeLeft float64 `json:"timeLeft"`
	TimeCap  float64 `json:"timeCap"`
	State    any     `json:"state"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var view stateView
	s.engine.View(func(st *state.State) {
		view = stateView{
			Day:      st.Day,
			Money:    st.Money,
			TimeLeft: st.TimeLeft,
			TimeCap:  st.TimeCap(),
			State:    st,
		}
		writeJSON(w, http.StatusOK, view)
	})
	s.publishDirty()
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	n := 50
	if raw := r.URL.Query().Get("n"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			n = v
		}
	}
	s.engine.View(func(st *state.State) {
		writeJSON(w, http.StatusOK, map[string]any{"log": st.RecentLog(n)})
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var stats telemetry.Stats
	s.engine.View(func(st *state.State) {
		stats = telemetry.Snapshot(st)
	})
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleEndDay(w http.ResponseWriter, r *http.Request) {
	report := s.engine.EndDay()
	s.publishDirty()
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleAcceptAction(w http.ResponseWriter, r *http.Request) {
	var body struct {
		HoursRequired float64 `json:"hoursRequired,omitempty"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	inst, avail, err := s.engine.AcceptAction(r.PathValue("id"), action.AcceptOverrides{
		HoursRequired: body.HoursRequired,
	})
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.publishDirty()
	resp := map[string]any{"ok": avail.Available}
	if avail.Reason != "" {
		resp["reason"] = avail.Reason
	}
	if inst != nil {
		resp["instance"] = inst
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleActionAvailability(w http.ResponseWriter, r *http.Request) {
	avail, ok := s.engine.ActionAvailability(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "unknown action"})
		return
	}
	writeJSON(w, http.StatusOK, avail)
}

func (s *Server) handleWorkAction(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Hours float64 `json:"hours,omitempty"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := s.engine.WorkAction(r.PathValue("id"), r.PathValue("iid"), body.Hours)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.publishDirty()
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCompleteAction(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.CompleteAction(r.PathValue("id"), r.PathValue("iid"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.publishDirty()
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleLaunchAsset(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.LaunchAsset(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.publishDirty()
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleFundAsset(w http.ResponseWriter, r *http.Request) {
	funded, err := s.engine.FundAsset(r.PathValue("id"), r.PathValue("iid"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.publishDirty()
	writeJSON(w, http.StatusOK, map[string]any{"ok": funded})
}

func (s *Server) handleQualityAction(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.RunQualityAction(r.PathValue("id"), r.PathValue("iid"), r.PathValue("action"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.publishDirty()
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAssignNiche(w http.ResponseWriter, r *http.Request) {
	var body struct {
		NicheID string `json:"nicheId"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.NicheID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "nicheId is required"})
		return
	}
	if err := s.engine.AssignNiche(r.PathValue("id"), r.PathValue("iid"), body.NicheID); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"ok": false, "reason": err.Error()})
		return
	}
	s.publishDirty()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleSellAsset(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.SellAsset(r.PathValue("id"), r.PathValue("iid"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.publishDirty()
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePurchaseUpgrade(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.PurchaseUpgrade(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.publishDirty()
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var saveErr error
	s.engine.View(func(st *state.State) {
		saveErr = s.store.Save(r.Context(), s.slot, st, s.engine.Clock.Now().Unix())
	})
	if saveErr != nil {
		writeError(w, http.StatusInternalServerError, saveErr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "slot": s.slot})
}

func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := s.store.Slots(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": slots})
}

// publishDirty drains the engine's dirty set; the flush fans out to
// every websocket subscriber.
func (s *Server) publishDirty() {
	s.engine.Dirty.Flush()
}
