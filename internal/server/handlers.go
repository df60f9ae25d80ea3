package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/boardplot/boardplot/pkg/board"
	"github.com/boardplot/boardplot/pkg/buildinfo"
	"github.com/boardplot/boardplot/pkg/cache"
	"github.com/boardplot/boardplot/pkg/errors"
	"github.com/boardplot/boardplot/pkg/observability"
	"github.com/boardplot/boardplot/pkg/plot"
	"github.com/boardplot/boardplot/pkg/plot/drivers"
	"github.com/boardplot/boardplot/pkg/stackup"
)

// stackupCacheTTL bounds how long rendered stackup diagrams are reused.
// Renders are deterministic, so the TTL only caps cache growth.
const stackupCacheTTL = 24 * time.Hour

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

type formatInfo struct {
	Name       string `json:"name"`
	Extension  string `json:"extension"`
	LayerExts  bool   `json:"layer_extensions"`
	JobFile    bool   `json:"job_file"`
	Attributes bool   `json:"attributes"`
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	var out []formatInfo
	for _, f := range plot.Formats() {
		d := drivers.Find(f)
		out = append(out, formatInfo{
			Name:       f.String(),
			Extension:  f.DefaultExt(),
			LayerExts:  d != nil && d.LayerExt != nil,
			JobFile:    f == plot.FormatGerber,
			Attributes: d != nil && d.Header != nil,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"formats": out})
}

type layerInfo struct {
	Name   string `json:"name"`
	Suffix string `json:"suffix"`
	Copper bool   `json:"copper"`
}

func (s *Server) handleLayers(w http.ResponseWriter, r *http.Request) {
	copper := 2
	if v := r.URL.Query().Get("copper"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid copper count: %q", v))
			return
		}
		if err := errors.ValidateCopperCount(n); err != nil {
			writeError(w, err)
			return
		}
		copper = n
	}

	var out []layerInfo
	for _, l := range board.Layers(copper) {
		out = append(out, layerInfo{
			Name:   l.String(),
			Suffix: l.Suffix(),
			Copper: l.IsCopper(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"copper_layers": copper,
		"layers":        out,
	})
}

func (s *Server) handleStackup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	copper := 2
	if v := q.Get("copper"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid copper count: %q", v))
			return
		}
		if err := errors.ValidateCopperCount(n); err != nil {
			writeError(w, err)
			return
		}
		copper = n
	}

	format := q.Get("format")
	if format == "" {
		format = "svg"
	}
	if format != "svg" && format != "png" {
		writeError(w, errors.New(errors.ErrCodeInvalidFormat, "stackup format must be svg or png, got %q", format))
		return
	}
	detailed := q.Get("detailed") == "true"

	img, err := s.renderStackup(r.Context(), copper, format, detailed)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render stackup"))
		return
	}

	if format == "png" {
		w.Header().Set("Content-Type", "image/png")
	} else {
		w.Header().Set("Content-Type", "image/svg+xml")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(img)
}

// renderStackup renders a stackup diagram, consulting the cache first.
func (s *Server) renderStackup(ctx context.Context, copper int, format string, detailed bool) ([]byte, error) {
	key := s.keyer.StackupKey(cache.StackupKeyOpts{
		CopperCount: copper,
		Format:      format,
		Detailed:    detailed,
	})

	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, "stackup")
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, "stackup")

	b := &board.Board{CopperLayerCount: copper}
	dot := stackup.ToDOT(b, stackup.Options{Detailed: detailed})

	var img []byte
	var err error
	if format == "png" {
		img, err = stackup.RenderPNG(dot)
	} else {
		img, err = stackup.RenderSVG(dot)
	}
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, img, stackupCacheTTL); err != nil {
		s.logger.Warn("stackup cache write failed", "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "stackup", len(img))
	}
	return img, nil
}

func (s *Server) handlePlotSubmit(w http.ResponseWriter, r *http.Request) {
	var req PlotRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	job, err := s.submitJob(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

// submitJob validates a plot request, registers a pending job, and starts
// the worker goroutine.
func (s *Server) submitJob(req PlotRequest) (*Job, error) {
	if err := errors.ValidateProjectName(req.Board.Name); err != nil {
		return nil, err
	}
	if req.Board.CopperLayers == 0 {
		req.Board.CopperLayers = 2
	}
	if err := errors.ValidateCopperCount(req.Board.CopperLayers); err != nil {
		return nil, err
	}

	opts := &plot.Options{
		UseAuxOrigin:  false,
		X1Compat:      req.X1Compatibility,
		ProtelExt:     req.ProtelExtensions,
		CreateJobFile: req.CreateJobFile,
	}
	if req.Format != "" {
		f, err := plot.ParseFormat(req.Format)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "plot request")
		}
		opts.Format = f
	}

	layers := board.Layers(req.Board.CopperLayers)
	if len(req.Layers) > 0 {
		layers = layers[:0]
		for _, name := range req.Layers {
			l, err := board.ParseLayer(name)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidLayer, err, "plot request")
			}
			layers = append(layers, l)
		}
	}

	now := time.Now()
	job := &Job{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		Request:   req,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.JobTTL),
	}
	s.store.Set(job)

	go s.runJob(job.ID, req, opts, layers)
	return job, nil
}

// runJob executes one plot run and records the outcome. It runs detached
// from the submitting request, so it carries its own context.
func (s *Server) runJob(id string, req PlotRequest, opts *plot.Options, layers []board.Layer) {
	ctx := context.Background()

	job := s.store.Get(id)
	if job == nil {
		return
	}
	job.Status = StatusRunning
	s.store.Set(job)

	dir := s.jobDir(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.failJob(job, err)
		return
	}

	b := &board.Board{
		FileName:         filepath.Join(dir, req.Board.Name+".kicad_pcb"),
		CopperLayerCount: req.Board.CopperLayers,
		Title: board.TitleBlock{
			Title:    req.Board.Title,
			Revision: req.Board.Revision,
			Company:  req.Board.Company,
		},
	}

	runner := drivers.NewRunner(b, opts, s.logger.With("job", id))
	result, err := runner.Run(ctx, layers)
	if err != nil {
		s.failJob(job, err)
		return
	}

	job.Status = StatusDone
	for _, f := range result.Files {
		job.Files = append(job.Files, PlotFile{
			Layer: f.Layer.String(),
			Path:  filepath.Base(f.Path),
		})
	}
	if result.JobFilePath != "" {
		job.JobFile = filepath.Base(result.JobFilePath)
	}
	s.store.Set(job)
	s.logger.Info("job finished", "job", id, "files", len(job.Files))
}

func (s *Server) failJob(job *Job, err error) {
	job.Status = StatusFailed
	job.Error = errors.UserMessage(err)
	s.store.Set(job)
	s.logger.Error("job failed", "job", job.ID, "error", err)
}

func (s *Server) handleJobGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job := s.store.Get(id)
	if job == nil {
		writeError(w, errors.New(errors.ErrCodeJobNotFound, "no such job: %s", id))
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	counts := s.store.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"jobs": map[string]int{
			"pending": counts[StatusPending],
			"running": counts[StatusRunning],
			"done":    counts[StatusDone],
			"failed":  counts[StatusFailed],
		},
		"uptime_seconds": int(time.Since(s.start).Seconds()),
		"version":        buildinfo.Version,
	})
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a structured error to an HTTP status and writes the
// code and user message as JSON.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidLayer,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidProject,
		errors.ErrCodeInvalidPath:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeJobNotFound,
		errors.ErrCodeFileNotFound, errors.ErrCodeDriverNotFound:
		status = http.StatusNotFound
	}

	writeJSON(w, status, map[string]string{
		"code":  string(errors.GetCode(err)),
		"error": errors.UserMessage(err),
	})
}
