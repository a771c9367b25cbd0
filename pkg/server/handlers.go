package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/derivgraph/pkg/cache"
	"github.com/matzehuels/derivgraph/pkg/derivation"
	"github.com/matzehuels/derivgraph/pkg/render/nodelink"
)

// LoadIDHeader carries the load ID of the served state.
const LoadIDHeader = "X-Load-ID"

// graphResponse mirrors the two slots. Exactly one field is non-null.
type graphResponse struct {
	Data  *derivation.Graph `json:"data"`
	Error *string           `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

func (s *Server) handleGraph(w http.ResponseWriter, _ *http.Request) {
	if msg, failed := s.state.Err(); failed {
		writeJSON(w, http.StatusUnprocessableEntity, graphResponse{Error: &msg})
		return
	}
	g, _ := s.state.Graph()
	writeJSON(w, http.StatusOK, graphResponse{Data: g})
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/schema+json")
	w.Write(derivation.Schema())
}

func (s *Server) handleRender(format string) http.HandlerFunc {
	contentType := "text/vnd.graphviz; charset=utf-8"
	if format == nodelink.FormatSVG {
		contentType = "image/svg+xml"
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if msg, failed := s.state.Err(); failed {
			http.Error(w, msg, http.StatusUnprocessableEntity)
			return
		}
		g, _ := s.state.Graph()

		opts := s.render
		q := r.URL.Query()
		opts.Detailed = opts.Detailed || queryBool(q.Get("detailed"))
		opts.Children = opts.Children || queryBool(q.Get("children"))

		render := func() ([]byte, error) { return nodelink.Render(r.Context(), g, format, opts) }
		var (
			out []byte
			err error
		)
		if format == nodelink.FormatSVG {
			key := s.keyer.RenderKey(s.cacheID, cache.RenderKeyOpts{
				Format:   format,
				Detailed: opts.Detailed,
				Children: opts.Children,
			})
			out, _, err = cache.GetOrCompute(r.Context(), s.cache, key, "render", s.ttl, render)
			if err != nil && out != nil {
				s.logger.Warn("Could not cache render", "format", format, "err", err)
				err = nil
			}
		} else {
			out, err = render()
		}
		if err != nil {
			s.logger.Error("Render failed", "format", format, "err", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Write(out)
	}
}

func (s *Server) loadID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(LoadIDHeader, s.state.ID)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func queryBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}
