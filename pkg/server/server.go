// Package server exposes the processing pipeline over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/ChrisMcGann/rosetta/pkg/config"
	"github.com/ChrisMcGann/rosetta/pkg/core"
	"github.com/ChrisMcGann/rosetta/pkg/filter"
	"github.com/ChrisMcGann/rosetta/pkg/logging"
	"github.com/ChrisMcGann/rosetta/pkg/pipeline"
	"github.com/ChrisMcGann/rosetta/pkg/summary"
)

const (
	serviceName   = "Rosetta Spectrum Analyzer API"
	multipartMem  = 32 << 20
	shutdownGrace = 10 * time.Second
)

// Concluder produces a natural-language conclusion for a binned spectrum.
type Concluder interface {
	Configured() bool
	Conclude(ctx context.Context, det core.Detector, bins []core.SpectrumBin) (string, error)
}

// Server handles spectrum uploads.
type Server struct {
	cfg       config.ServerConfig
	defaults  config.FilterConfig
	presets   *filter.PresetDatabase
	concluder Concluder
	log       *logging.Logger
}

// New creates a server. presets and log may be nil.
func New(cfg *config.Config, presets *filter.PresetDatabase, concluder Concluder, log *logging.Logger) *Server {
	if presets == nil {
		presets = filter.DefaultPresets()
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Server{
		cfg:       cfg.Server,
		defaults:  cfg.Filter,
		presets:   presets,
		concluder: concluder,
		log:       log,
	}
}

// Handler returns the routes wrapped in the CORS policy.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/presets", s.handlePresets)
	mux.HandleFunc("/process", s.handleProcess)
	mux.HandleFunc("/", s.handleRoot)
	return s.cors(mux)
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowedOrigin(r.Header.Get("Origin")); origin != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if origin != "*" {
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowedOrigin(origin string) string {
	for _, o := range s.cfg.AllowedOrigins {
		if o == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(o, origin) {
			return origin
		}
	}
	return ""
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":               serviceName,
		"status":                "running",
		"conclusion_configured": s.concluder != nil && s.concluder.Configured(),
	})
}

type presetView struct {
	Name              string  `json:"name"`
	HeadDrop          int     `json:"head_drop"`
	MADMultiplierRTOF float64 `json:"mad_multiplier_rtof"`
	CPSThresholdRTOF  float64 `json:"cps_threshold_rtof"`
	MADMultiplierDFMS float64 `json:"mad_multiplier_dfms"`
	CPSThresholdDFMS  float64 `json:"cps_threshold_dfms"`
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	names := s.presets.Names()
	out := make([]presetView, 0, len(names))
	for _, name := range names {
		p, _ := s.presets.Get(name)
		out = append(out, presetView(p))
	}
	writeJSON(w, http.StatusOK, out)
}

type processResponse struct {
	Spectrum    []core.SpectrumBin `json:"spectrum"`
	Conclusion  string             `json:"conclusion"`
	Detector    core.Detector      `json:"detector"`
	FilterLevel string             `json:"filter_level"`
	TotalPoints int                `json:"total_points"`
	XRange      core.Range         `json:"x_range"`
	CPSRange    core.Range         `json:"cps_range"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, int64(s.cfg.MaxUploadMB)<<20)
	if err := r.ParseMultipartForm(multipartMem); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d MB", s.cfg.MaxUploadMB))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, fh, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(fh.Filename), ".tab") {
		writeError(w, http.StatusBadRequest, "only .tab files are accepted")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}
	in := bytes.NewReader(data)

	_, det, err := pipeline.ReadHeader(in)
	if err != nil {
		s.fail(w, err)
		return
	}

	opts := s.options(r, fh.Filename)
	s.log.Info("processing upload",
		"file", fh.Filename, "bytes", len(data), "detector", det, "filter_level", opts.FilterLevel)

	spec, err := pipeline.Process(in, opts)
	if err != nil {
		s.fail(w, err)
		return
	}

	sum, err := summary.Build(spec)
	if err != nil {
		s.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, processResponse{
		Spectrum:    sum.Bins,
		Conclusion:  s.conclude(r.Context(), spec.Detector, sum.Bins),
		Detector:    spec.Detector,
		FilterLevel: spec.FilterLevel,
		TotalPoints: sum.TotalPoints,
		XRange:      sum.XRange,
		CPSRange:    sum.CPSRange,
	})
}

// options reads the filter level, preset and overrides from the form.
// Unparseable values are logged and replaced by defaults.
func (s *Server) options(r *http.Request, name string) pipeline.Options {
	level := strings.TrimSpace(r.FormValue("filter_level"))
	if level == "" {
		level = s.defaults.Level
	}

	values := map[string]string{}
	for _, key := range []string{
		filter.KeyHeadDrop,
		filter.KeyMADMultiplierRTOF,
		filter.KeyCPSThresholdRTOF,
		filter.KeyMADMultiplierDFMS,
		filter.KeyCPSThresholdDFMS,
	} {
		values[key] = r.FormValue(key)
	}
	overrides, warnings := filter.ParseOverrides(values)
	for _, msg := range warnings {
		s.log.Warn(msg)
	}

	presetName := strings.TrimSpace(r.FormValue("preset"))
	if presetName == "" || presetName == "None" {
		presetName = s.defaults.Preset
	}
	if presetName != "" {
		if p, ok := s.presets.Get(presetName); ok {
			overrides = overrides.Merge(p.Overrides())
		} else {
			s.log.Warn("unknown preset, using profile defaults", "preset", presetName)
		}
	}

	return pipeline.Options{
		FilterLevel: level,
		Overrides:   overrides,
		SourceFile:  name,
	}
}

func (s *Server) conclude(ctx context.Context, det core.Detector, bins []core.SpectrumBin) string {
	if s.concluder == nil {
		return ""
	}
	text, err := s.concluder.Conclude(ctx, det, bins)
	if err != nil {
		s.log.Error("conclusion failed", "err", err)
		return "Error generating conclusion: " + err.Error()
	}
	return text
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrInvalidData) {
		s.log.Warn("rejected upload", "err", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.log.Error("processing failed", "err", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
