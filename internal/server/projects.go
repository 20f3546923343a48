package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/iwvelando/construction-forecast/internal/metrics"
	"github.com/iwvelando/construction-forecast/internal/store"
	"github.com/iwvelando/construction-forecast/pkg/validation"
	"go.uber.org/zap"
)

func (h *handler) requireStore(w http.ResponseWriter, op string) bool {
	if h.store != nil {
		return true
	}
	h.respondErrorWithOp(w, http.StatusServiceUnavailable, "project store is not configured", op)
	return false
}

func (h *handler) respondStoreError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, store.ErrNotFound) {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return
	}
	h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
}

func (h *handler) handleProjects(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listProjects(w, r)
	case http.MethodPost:
		h.saveProject(w, r)
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *handler) listProjects(w http.ResponseWriter, r *http.Request) {
	const op = "server.listProjects"
	if !h.requireStore(w, op) {
		return
	}

	projects, err := h.store.List(r.Context())
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}
	if projects == nil {
		projects = []*store.SavedProject{}
	}
	if h.metrics != nil {
		h.metrics.SavedProjects.Set(float64(len(projects)))
	}
	h.writeJSON(w, http.StatusOK, map[string][]*store.SavedProject{"projects": projects})
}

type saveResponse struct {
	Project  *store.SavedProject `json:"project"`
	Warnings []string            `json:"warnings,omitempty"`
}

func (h *handler) saveProject(w http.ResponseWriter, r *http.Request) {
	const op = "server.saveProject"
	if !h.requireStore(w, op) {
		return
	}

	req, err := h.decodeCalculateRequest(w, r)
	if err != nil {
		h.respondRequestError(w, err, op)
		return
	}
	in, overrides, warnings, err := prepare(req.configuration())
	if err != nil {
		h.respondRequestError(w, err, op)
		return
	}

	saved, err := h.store.Save(r.Context(), firstNonEmpty(req.Name, req.Project.Name), in, overrides)
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}

	warnings = append(warnings, validation.ValidateLocation(h.calc.Tables(), in.Location)...)
	h.writeJSON(w, http.StatusCreated, saveResponse{Project: saved, Warnings: warnings})
}

func (h *handler) handleProject(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleProject"
	if r.Method != http.MethodGet && r.Method != http.MethodPut && r.Method != http.MethodDelete {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if !h.requireStore(w, op) {
		return
	}

	id := r.PathValue("id")
	if r.Method == http.MethodPut {
		h.updateProject(w, r, id)
		return
	}
	if r.Method == http.MethodDelete {
		if err := h.store.Delete(r.Context(), id); err != nil {
			h.respondStoreError(w, err, op)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	saved, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, saved)
}

// updateProject replaces the inputs and overrides of a saved project. The
// name is kept unless the request carries one.
func (h *handler) updateProject(w http.ResponseWriter, r *http.Request, id string) {
	const op = "server.updateProject"

	req, err := h.decodeCalculateRequest(w, r)
	if err != nil {
		h.respondRequestError(w, err, op)
		return
	}
	in, overrides, warnings, err := prepare(req.configuration())
	if err != nil {
		h.respondRequestError(w, err, op)
		return
	}

	saved, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}
	if name := firstNonEmpty(req.Name, req.Project.Name); name != "" {
		saved.Name = name
	}
	saved.Inputs = in
	saved.Overrides = overrides
	if err := h.store.Update(r.Context(), saved); err != nil {
		h.respondStoreError(w, err, op)
		return
	}

	h.logger.Info("updated project",
		zap.String("op", op),
		zap.String("id", saved.ID),
	)
	warnings = append(warnings, validation.ValidateLocation(h.calc.Tables(), in.Location)...)
	h.writeJSON(w, http.StatusOK, saveResponse{Project: saved, Warnings: warnings})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (h *handler) handleProjectCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleProjectCalculate"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if !h.requireStore(w, op) {
		return
	}

	start := time.Now()
	saved, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}

	report := validation.ValidateInputs(saved.Inputs)
	if !report.Valid() {
		h.metrics.ObserveCalculation(sourceProject, metrics.StatusInvalid, 0)
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, report.Err().Error(), op)
		return
	}

	h.logger.Debug("recalculating saved project",
		zap.String("op", op),
		zap.String("id", saved.ID),
	)
	h.runCalculation(r.Context(), w, saved.Inputs, saved.Overrides, report.Warnings, start, sourceProject, op)
}
