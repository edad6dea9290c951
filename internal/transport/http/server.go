package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	ouidb "github.com/pre-history/mac-oui"
	"github.com/pre-history/mac-oui/internal/refresh"
)

type recordResponse struct {
	OUI            string `json:"oui"`
	Prefix         string `json:"prefix"`
	PrefixBits     int    `json:"prefix_bits"`
	RangeLow       string `json:"range_low"`
	RangeHigh      string `json:"range_high"`
	IsPrivate      bool   `json:"is_private"`
	CompanyName    string `json:"company_name"`
	CompanyAddress string `json:"company_address,omitempty"`
	CountryCode    string `json:"country_code,omitempty"`
	BlockSize      string `json:"block_size,omitempty"`
	DateCreated    string `json:"date_created,omitempty"`
	DateUpdated    string `json:"date_updated,omitempty"`
}

type statsResponse struct {
	Records       int       `json:"records"`
	Manufacturers int       `json:"manufacturers"`
	OUIs          int       `json:"ouis"`
	Warnings      int       `json:"warnings"`
	Source        string    `json:"source"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toResponse(r ouidb.Record) recordResponse {
	row := ouidb.RowFromRecord(r)
	rng := r.Range()
	return recordResponse{
		OUI:            r.OUI,
		Prefix:         row.Prefix,
		PrefixBits:     r.PrefixBits,
		RangeLow:       ouidb.FormatMAC(rng.Low),
		RangeHigh:      ouidb.FormatMAC(rng.High),
		IsPrivate:      r.IsPrivate,
		CompanyName:    r.CompanyName,
		CompanyAddress: r.CompanyAddress,
		CountryCode:    r.CountryCode,
		BlockSize:      row.BlockSize,
		DateCreated:    row.DateCreated,
		DateUpdated:    row.DateUpdated,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type handler struct {
	holder *refresh.Holder
	logger *log.Logger
}

// NewHandler serves lookups against the database currently in holder.
func NewHandler(holder *refresh.Holder, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	h := &handler{holder: holder, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/lookup", h.lookup)
	mux.HandleFunc("GET /api/v1/manufacturer", h.manufacturer)
	mux.HandleFunc("GET /api/v1/stats", h.stats)

	// /healthz: liveness
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// /readyz: a database has been installed
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if holder.DB() == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("loading"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	return mux
}

func (h *handler) db(w http.ResponseWriter) *ouidb.DB {
	db := h.holder.DB()
	if db == nil {
		writeError(w, http.StatusServiceUnavailable, "database not loaded")
	}
	return db
}

func (h *handler) lookup(w http.ResponseWriter, r *http.Request) {
	db := h.db(w)
	if db == nil {
		return
	}
	mac := r.URL.Query().Get("mac")
	rec, ok, err := db.Lookup(mac)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no assignment covers "+mac)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(rec))
}

func (h *handler) manufacturer(w http.ResponseWriter, r *http.Request) {
	db := h.db(w)
	if db == nil {
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	recs := db.LookupByManufacturer(name)
	if len(recs) == 0 {
		writeError(w, http.StatusNotFound, "no assignments for "+name)
		return
	}
	out := make([]recordResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	snap := h.holder.Get()
	if snap.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "database not loaded")
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Records:       snap.DB.Len(),
		Manufacturers: len(snap.DB.Manufacturers()),
		OUIs:          len(snap.DB.OUIs()),
		Warnings:      len(snap.DB.Warnings()),
		Source:        snap.Source,
		UpdatedAt:     snap.UpdatedAt,
	})
}

// Run serves h on addr until ctx is done, then shuts down within shutdownTimeout.
func Run(ctx context.Context, addr string, h http.Handler, shutdownTimeout time.Duration, logger *log.Logger) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server graceful shutdown failed", "error", err)
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("http server stopped")
	return nil
}
