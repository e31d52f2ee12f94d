package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/retail-presence/internal/compare"
	"github.com/sells-group/retail-presence/internal/export"
	"github.com/sells-group/retail-presence/internal/filter"
	"github.com/sells-group/retail-presence/internal/metrics"
	"github.com/sells-group/retail-presence/internal/presence"
	"github.com/sells-group/retail-presence/internal/store"
)

// Reloader rebuilds and publishes the snapshot.
type Reloader interface {
	Load(ctx context.Context) (*store.Snapshot, error)
}

// HealthResponse reports liveness and the published snapshot, if any.
type HealthResponse struct {
	Status     string     `json:"status"`
	Ready      bool       `json:"ready"`
	SnapshotID string     `json:"snapshotId,omitempty"`
	LoadedAt   *time.Time `json:"loadedAt,omitempty"`
}

// ReloadResponse describes a freshly published snapshot.
type ReloadResponse struct {
	SnapshotID string    `json:"snapshotId"`
	LoadedAt   time.Time `json:"loadedAt"`
	BoardRows  int       `json:"boardRows"`
	PosmRows   int       `json:"posmRows"`
}

// Health is always 200 while the process runs; Ready says whether data is
// being served.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if snap, err := h.snaps.Current(); err == nil {
		resp.Ready = true
		resp.SnapshotID = snap.ID
		loaded := snap.LoadedAt
		resp.LoadedAt = &loaded
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Boards(w http.ResponseWriter, r *http.Request) {
	spec, err := parseSpec(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.svc.Boards(spec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) PosmGeneral(w http.ResponseWriter, r *http.Request) {
	spec, err := parseSpec(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.svc.PosmGeneral(spec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Comparison contrasts two posm batches. Missing batch ids fall back to
// the retailer's latest batches.
func (h *Handler) Comparison(w http.ResponseWriter, r *http.Request) {
	id, err := required(r, "profileId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.svc.Comparison(id, first(r, "batch1Id"), first(r, "batch2Id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) RetailersByChange(w http.ResponseWriter, r *http.Request) {
	p, err := required(r, "provider")
	if err != nil {
		writeError(w, r, err)
		return
	}
	raw, err := required(r, "changeStatus")
	if err != nil {
		writeError(w, r, err)
		return
	}
	dir, err := compare.ParseDirection(raw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.svc.ChangedRetailers(p, dir)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) AvailableBatches(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Batches(chi.URLParam(r, "profileId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) Retailers(w http.ResponseWriter, r *http.Request) {
	spec, err := parseSpec(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, err := parseContext(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.svc.Retailers(spec, ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) ProvinceOptions(w http.ResponseWriter, r *http.Request) {
	h.options(w, r, filter.ProvinceLevel)
}

func (h *Handler) DistrictOptions(w http.ResponseWriter, r *http.Request) {
	h.options(w, r, filter.DistrictLevel)
}

func (h *Handler) DivisionOptions(w http.ResponseWriter, r *http.Request) {
	h.options(w, r, filter.DivisionLevel)
}

func (h *Handler) options(w http.ResponseWriter, r *http.Request, level filter.Level) {
	spec, err := parseSpec(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, err := parseContext(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.svc.Options(level, spec, ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GeoDistricts(w http.ResponseWriter, r *http.Request) {
	spec, err := parseSpec(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, err := parseContext(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	fc, err := h.svc.DistrictShares(spec, ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fc)
}

func (h *Handler) ImageInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.images.Resolve(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) ImageS3URL(w http.ResponseWriter, r *http.Request) {
	arn, err := required(r, "s3_arn")
	if err != nil {
		writeError(w, r, err)
		return
	}
	info, err := h.images.Resolve(arn)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Export returns the filtered boards and posm captures as an xlsx
// workbook. context restricts it to one dataset.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	spec, err := parseSpec(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	both := first(r, "context") == ""
	only, err := parseContext(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var report export.Report
	if both || only == filter.Board {
		boards, err := h.svc.Boards(spec)
		if err != nil {
			writeError(w, r, err)
			return
		}
		report.Boards = &boards
	}
	if both || only == filter.Posm {
		posm, err := h.svc.PosmGeneral(spec)
		if err != nil {
			writeError(w, r, err)
			return
		}
		report.Posm = &posm
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="retail-presence.xlsx"`)
	if err := export.Write(w, report); err != nil {
		zap.L().Error("api: write export", zap.Error(err))
	}
}

// Reload rebuilds the snapshot from the configured sources. Calls beyond
// the configured rate get 429 without touching the sources.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if h.reloader == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "reload is not enabled"})
		return
	}
	if !h.reloads.Allow() {
		metrics.RecordSnapshotLoad(metrics.LoadThrottled, time.Now())
		w.Header().Set("Retry-After", "60")
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "reload rate exceeded"})
		return
	}
	snap, err := h.reloader.Load(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ReloadResponse{
		SnapshotID: snap.ID,
		LoadedAt:   snap.LoadedAt,
		BoardRows:  snap.Board.Len(),
		PosmRows:   snap.Posm.Len(),
	})
}

var _ presence.Snapshots = (*store.Store)(nil)
