package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bldg-intel/odcv-cli/internal/profile"
	"github.com/bldg-intel/odcv-cli/internal/query"
	"github.com/bldg-intel/odcv-cli/internal/resolve"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: buildRouter(app),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func buildRouter(app *appEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"buildings": app.published.Current().Len(),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/resolve", app.handleResolve)
		r.Get("/building/{bbl}", app.handleBuilding)
		r.Post("/score", app.handleScore)
		r.Post("/score/bulk", app.handleScoreBulk)
		r.Get("/search", app.handleSearch)
		r.Get("/opportunities", app.handleOpportunities)
		r.Get("/stats", app.handleStats)
	})

	return r
}

func (a *appEnv) handleResolve(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	res, err := a.resolver.Resolve(r.Context(), address)
	if err != nil {
		writeResolveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *appEnv) handleBuilding(w http.ResponseWriter, r *http.Request) {
	bbl, err := profile.ParseBBL(chi.URLParam(r, "bbl"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_identifier", err.Error())
		return
	}
	p, err := a.engine.Get(bbl)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "no building with identifier "+string(bbl))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *appEnv) handleScore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
		BBL     string `json:"bbl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "body must be JSON with address or bbl")
		return
	}

	var bbl profile.BBL
	switch {
	case req.BBL != "":
		var err error
		bbl, err = profile.ParseBBL(req.BBL)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_identifier", err.Error())
			return
		}
	case req.Address != "":
		res, err := a.resolver.Resolve(r.Context(), req.Address)
		if err != nil {
			writeResolveError(w, err)
			return
		}
		bbl = res.BBL
	default:
		writeError(w, http.StatusBadRequest, "invalid_request", "address or bbl is required")
		return
	}

	b, err := a.engine.ScoreBBL(bbl)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "no building with identifier "+string(bbl))
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *appEnv) handleScoreBulk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Addresses []string `json:"addresses"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "body must be JSON with an addresses array")
		return
	}

	results, err := a.bulk.Score(r.Context(), req.Addresses)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if a.store != nil {
		if _, err := a.store.SaveBulkRun(r.Context(), req.Addresses, results); err != nil {
			zap.L().Warn("persisting bulk run failed", zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (a *appEnv) handleSearch(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	matches := a.engine.Search(f)
	writeJSON(w, http.StatusOK, map[string]any{
		"count":     len(matches),
		"buildings": matches,
	})
}

func (a *appEnv) handleOpportunities(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	top := 0
	if v := r.URL.Query().Get("top"); v != "" {
		top, err = strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "top must be an integer")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"opportunities": a.engine.Opportunities(f, top),
	})
}

func (a *appEnv) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.engine.Stats())
}

func filterFromQuery(r *http.Request) (query.Filter, error) {
	var f query.Filter
	q := r.URL.Query()

	if v := q.Get("min_area"); v != "" {
		area, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, eris.New("min_area must be a number")
		}
		f.MinArea = &area
	}
	if v := q.Get("max_occupancy"); v != "" {
		occ, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, eris.New("max_occupancy must be a number")
		}
		f.MaxOccupancy = &occ
	}
	if v := q.Get("vav"); v != "" {
		vav, err := strconv.ParseBool(v)
		if err != nil {
			return f, eris.New("vav must be a boolean")
		}
		f.HasVAV = &vav
	}
	f.EnergyGrade = q.Get("grade")
	if v := q.Get("min_year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return f, eris.New("min_year must be an integer")
		}
		f.MinYearBuilt = &y
	}
	if v := q.Get("max_year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return f, eris.New("max_year must be an integer")
		}
		f.MaxYearBuilt = &y
	}
	if v := q.Get("office"); v != "" {
		office, err := strconv.ParseBool(v)
		if err != nil {
			return f, eris.New("office must be a boolean")
		}
		f.OfficeOnly = office
	}
	return f, nil
}

func writeResolveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, resolve.ErrInvalidAddress):
		writeError(w, http.StatusBadRequest, "invalid_address", "address is blank or unusable")
	case errors.Is(err, resolve.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "address did not resolve to a tax lot")
	default:
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, map[string]string{"error": code, "detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("writing response", zap.Error(err))
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
