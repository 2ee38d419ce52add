package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/picplan/pkg/buildinfo"
	"github.com/matzehuels/picplan/pkg/cache"
	pperrors "github.com/matzehuels/picplan/pkg/errors"
	"github.com/matzehuels/picplan/pkg/pipeline"
	"github.com/matzehuels/picplan/pkg/preset"
)

func newServeCmd() *cobra.Command {
	var (
		addr       string
		cacheURL   string
		presetFile string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP layout-planning service",
		Long: `Serve layout planning over HTTP.

Endpoints:
  GET /plan?src=WxH&<query>        JSON plan (ideal + decoder request + plan)
  GET /diagram.svg?src=WxH&<query> SVG step diagram
  GET /healthz                     liveness probe

Every layout parameter of the query grammar is accepted, plus:
  src     source dimensions, WxH (required)
  exif    EXIF orientation tag 1-8
  preset  preset name from the preset file

Responses are cached in memory, or in Redis when --cache-url is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			var store cache.Cache = cache.NewMemoryCache()
			if cacheURL != "" {
				rc, err := cache.NewRedisCache(cmd.Context(), cacheURL, "picplan")
				if err != nil {
					return pperrors.Wrap(pperrors.ErrCodeCache, err, "connecting to %s", cacheURL)
				}
				store = rc
				logger.Info("using redis cache", "url", cacheURL)
			}
			defer store.Close()

			presets, err := loadPresets(presetFile)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           newRouter(pipeline.NewRunner(store, logger), presets, logger),
				ReadHeaderTimeout: 5 * time.Second,
			}

			go func() {
				<-cmd.Context().Done()
				_ = srv.Close()
			}()

			logger.Info("listening", "addr", addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8475", "listen address")
	cmd.Flags().StringVar(&cacheURL, "cache-url", "", "redis URL for a shared response cache")
	cmd.Flags().StringVar(&presetFile, "presets-file", "", "preset file path (default picplan.toml)")

	return cmd
}

// newRouter builds the chi router for the planning service.
func newRouter(runner *pipeline.Runner, presets *preset.Set, logger *charmlog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"version": buildinfo.Version,
		})
	})

	r.Get("/plan", planHandler(runner, presets, pipeline.FormatJSON, "application/json"))
	r.Get("/diagram.svg", planHandler(runner, presets, pipeline.FormatSVG, "image/svg+xml"))

	return r
}

// requestID attaches a UUID to every request for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type serveCtxKey int

const requestIDKey serveCtxKey = 0

// requestLogger logs one line per request with the request ID and duration.
func requestLogger(logger *charmlog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			id, _ := r.Context().Value(requestIDKey).(string)
			logger.Info("request",
				"id", id,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"dur", time.Since(start).Round(time.Microsecond),
			)
		})
	}
}

// planHandler plans the query and writes one artifact format.
func planHandler(runner *pipeline.Runner, presets *preset.Set, format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		srcW, srcH, err := parseSize(q.Get("src"))
		if err != nil {
			writeError(w, err)
			return
		}
		exif, _ := strconv.Atoi(q.Get("exif"))

		sub, err := parseSubsampling(q.Get("subsampling"))
		if err != nil {
			writeError(w, err)
			return
		}

		// Strip service-level keys; the rest is the layout query.
		q.Del("src")
		q.Del("exif")
		q.Del("subsampling")
		presetName := q.Get("preset")
		q.Del("preset")

		result, err := runner.Execute(r.Context(), pipeline.Options{
			SourceW: srcW, SourceH: srcH,
			EXIF:        exif,
			Query:       q.Encode(),
			Preset:      presetName,
			Presets:     presets,
			Subsampling: sub,
			Formats:     []string{format},
		})
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", contentType)
		if len(result.CacheHits) > 0 {
			w.Header().Set("X-Cache", "hit")
		} else {
			w.Header().Set("X-Cache", "miss")
		}
		_, _ = w.Write(result.Artifacts[format])
	}
}

// writeError answers with the status the error's code maps to.
func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(pperrors.HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":  string(pperrors.GetCode(err)),
		"error": pperrors.UserMessage(err),
	})
}
