package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/tablebook/internal/auth"
	"github.com/example/tablebook/internal/booking"
	"github.com/example/tablebook/internal/domain/reservation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	Auth    *auth.Store
	Booking *booking.Service
	Log     *slog.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		r.Route("/restaurants/{slug}", func(r chi.Router) {
			r.Get("/slots", s.handleSlots)
			r.Get("/tables", s.handleTables)
			r.Post("/reservations", s.handleCreateReservation)

			r.Group(func(r chi.Router) {
				r.Use(s.Auth.RequireAuth(http.HandlerFunc(unauthorized)))
				r.Get("/reservations", s.handleListReservations)
				r.Patch("/reservations/{id}", s.handleUpdateReservation)
				r.Get("/parameters", s.handleGetParameters)
				r.Put("/parameters", s.handlePutParameters)
			})
		})
	})
	return r
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.Log.Info("web:request:done",
			"component", "web",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// decodeValid decodes and validates a request body, writing the error response itself.
func (s *Server) decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(r, dst); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		s.writeError(w, r, err)
		return false
	}
	return true
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	id, err := s.Auth.Authenticate(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		writeErrorBody(w, http.StatusUnauthorized, CodeUnauthorized, "invalid username/password", nil)
		return
	}
	if err := s.Auth.SetSession(w, r, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"userId": id})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Auth.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request) {
	q := booking.SlotQuery{Exclude: r.URL.Query().Get("exclude")}
	var err error
	if q.Date, q.Guests, err = partyParams(r); err != nil {
		s.writeError(w, r, err)
		return
	}
	if prefer := r.URL.Query().Get("prefer"); prefer != "" {
		for _, p := range strings.Split(prefer, ",") {
			t, err := reservation.ParseTimeOfDay(p)
			if err != nil {
				s.writeError(w, r, &booking.ValidationError{Field: "prefer", Message: err.Error()})
				return
			}
			q.Prefer = append(q.Prefer, t)
		}
	}
	if near := r.URL.Query().Get("near"); near != "" {
		t, err := reservation.ParseTimeOfDay(near)
		if err != nil {
			s.writeError(w, r, &booking.ValidationError{Field: "near", Message: err.Error()})
			return
		}
		q.Near = &t
	}

	res, err := s.Booking.AvailableSlots(r.Context(), chi.URLParam(r, "slug"), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	q := booking.TableQuery{Exclude: r.URL.Query().Get("exclude")}
	var err error
	if q.Date, q.Guests, err = partyParams(r); err != nil {
		s.writeError(w, r, err)
		return
	}
	if q.Time, err = reservation.ParseTimeOfDay(r.URL.Query().Get("time")); err != nil {
		s.writeError(w, r, &booking.ValidationError{Field: "time", Message: err.Error()})
		return
	}
	tables, err := s.Booking.AvailableTables(r.Context(), chi.URLParam(r, "slug"), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

func (s *Server) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.Booking.CreateReservation(r.Context(), chi.URLParam(r, "slug"), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleListReservations(w http.ResponseWriter, r *http.Request) {
	d, err := reservation.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		s.writeError(w, r, &booking.ValidationError{Field: "date", Message: err.Error()})
		return
	}
	rs, err := s.Booking.ListDay(r.Context(), chi.URLParam(r, "slug"), d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": rs})
}

func (s *Server) handleUpdateReservation(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.Booking.UpdateReservation(r.Context(), chi.URLParam(r, "slug"), chi.URLParam(r, "id"), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetParameters(w http.ResponseWriter, r *http.Request) {
	p, err := s.Booking.Parameters(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutParameters(w http.ResponseWriter, r *http.Request) {
	var p reservation.Parameters
	if err := decodeJSON(r, &p); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	out, err := s.Booking.PutParameters(r.Context(), chi.URLParam(r, "slug"), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func partyParams(r *http.Request) (reservation.Date, int, error) {
	q := r.URL.Query()
	d, err := reservation.ParseDate(q.Get("date"))
	if err != nil {
		return reservation.Date{}, 0, &booking.ValidationError{Field: "date", Message: err.Error()}
	}
	guests, err := strconv.Atoi(q.Get("guests"))
	if err != nil || guests < 1 {
		return reservation.Date{}, 0, &booking.ValidationError{Field: "guests", Message: "must be a positive integer"}
	}
	return d, guests, nil
}

func Start(ctx context.Context, addr string, h http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info("web:listen:start", "component", "web", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return nil
}
