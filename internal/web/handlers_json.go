package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// maxUploadBytes caps accepted export size. Inputs are bounded documents, not
// streams, so capping size replaces mid-parse cancellation.
const maxUploadBytes = 10 << 20 // 10 MiB

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// handleAnalyze accepts a trade-history export either as a multipart "file"
// field or as the raw request body, and returns the full analysis payload.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	filename := "upload"
	var raw []byte

	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		filename = header.Filename
		raw, err = io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	} else {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				writeError(w, http.StatusRequestEntityTooLarge, errors.New("export exceeds the 10 MiB limit"))
				return
			}
			writeError(w, http.StatusBadRequest, err)
			return
		}
		raw = body
	}

	result, err := s.analysis.Analyze(r.Context(), filename, string(raw))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	imports, err := s.imports.ListImports(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list imports", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, imports)
}

func (s *Server) handleImportGroups(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	groups, err := s.imports.ListGroups(r.Context(), id)
	if err != nil {
		s.logger.Error("Failed to list groups", zap.String("import_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleGetCandles(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, errors.New("symbol is required"))
		return
	}
	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = "60"
	}
	limit := 200
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	candles, err := s.market.GetCandles(r.Context(), symbol, interval, limit)
	if err != nil {
		s.logger.Error("Failed to get candles", zap.String("symbol", symbol), zap.Error(err))
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, candles)
}

func (s *Server) handleListSignals(w http.ResponseWriter, r *http.Request) {
	signals, err := s.signals.Signals(r.Context())
	if err != nil {
		s.logger.Error("Failed to list signals", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, signals)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
