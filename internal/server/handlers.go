// Package server handles HTTP requests and middleware.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/woozymasta/geodna"
	"github.com/woozymasta/geodna/internal/geo"
	"github.com/woozymasta/geodna/internal/processor"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const etagCap = 64

var errBadRequest = errors.New("bad request")

type encodeResponse struct {
	Code string `json:"code"`
}

type decodeResponse struct {
	Code string  `json:"code"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type bboxResponse struct {
	Code string `json:"code"`
	geodna.Box
}

type neighboursResponse struct {
	Code       string          `json:"code"`
	Neighbours []geo.Neighbour `json:"neighbours"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler registers every route and wraps them with request logging.
func (s *ServerContext) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/encode", s.HandleEncode)
	mux.HandleFunc("GET /api/decode/{code}", s.HandleDecode)
	mux.HandleFunc("GET /api/bbox/{code}", s.HandleBoundingBox)
	mux.HandleFunc("GET /api/neighbours/{code}", s.HandleNeighbours)
	mux.HandleFunc("GET /api/cell/{code}", s.HandleCell)
	mux.HandleFunc("GET /api/cell/{code}/geojson", s.HandleCellGeoJSON)
	mux.HandleFunc("GET /tiles/{z}/{x}/{y}", s.HandleTile)
	mux.HandleFunc("GET /healthz", s.HandleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /{$}", s.HandleIndex)

	return RequestLogger(mux)
}

// HandleEncode encodes the lat/lon query parameters.
func (s *ServerContext) HandleEncode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, err := floatParam(q, "lat")
	if err != nil {
		writeError(w, err)
		return
	}
	lon, err := floatParam(q, "lon")
	if err != nil {
		writeError(w, err)
		return
	}

	opts := geodna.EncodeOptions{
		Precision: s.Config.Precision,
		Radians:   boolParam(q, "radians"),
		Strict:    s.Config.Strict || boolParam(q, "strict"),
	}
	if q.Has("precision") {
		opts.Precision, err = strconv.Atoi(q.Get("precision"))
		if err != nil {
			writeError(w, fmt.Errorf("%w: precision %q is not an integer", errBadRequest, q.Get("precision")))
			return
		}
	}
	if opts.Precision > s.Config.PrecisionLimit {
		observeCodec("encode", geodna.ErrInvalidPrecision)
		writeError(w, fmt.Errorf("%w: %d above the limit of %d", geodna.ErrInvalidPrecision, opts.Precision, s.Config.PrecisionLimit))
		return
	}

	code, err := geodna.EncodeWith(lat, lon, opts)
	observeCodec("encode", err)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, encodeResponse{Code: code})
}

// HandleDecode returns the centre of a code.
func (s *ServerContext) HandleDecode(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	lat, lon, err := geodna.DecodeWith(code, geodna.DecodeOptions{Radians: boolParam(r.URL.Query(), "radians")})
	observeCodec("decode", err)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, decodeResponse{Code: code, Lat: lat, Lon: lon})
}

// HandleBoundingBox returns the latitude and longitude intervals of a code.
func (s *ServerContext) HandleBoundingBox(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	box, err := geodna.BoundingBox(code)
	observeCodec("bbox", err)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bboxResponse{Code: code, Box: box})
}

// HandleNeighbours returns the eight codes around a code.
func (s *ServerContext) HandleNeighbours(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	codes, err := geodna.Neighbours(code)
	observeCodec("neighbours", err)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, neighboursResponse{Code: code, Neighbours: geo.PairNeighbours(codes)})
}

// HandleCell returns the full description of a code.
func (s *ServerContext) HandleCell(w http.ResponseWriter, r *http.Request) {
	cell, err := geo.Describe(r.PathValue("code"))
	observeCodec("cell", err)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cell)
}

// HandleCellGeoJSON returns the outline of a code as a GeoJSON feature.
func (s *ServerContext) HandleCellGeoJSON(w http.ResponseWriter, r *http.Request) {
	cell, err := geo.Describe(r.PathValue("code"))
	observeCodec("cell", err)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(cell.Feature())
}

// HandleTile serves a grid overlay tile, rendering and caching it on first use.
func (s *ServerContext) HandleTile(w http.ResponseWriter, r *http.Request) {
	t, ok := parseTile(r.PathValue("z"), r.PathValue("x"), r.PathValue("y"))
	if !ok || t.Z > s.Config.Tiles.ZoomLimit {
		http.NotFound(w, r)
		return
	}

	cacheDir := s.Config.Tiles.CacheDir
	useCache := !s.Config.Tiles.NoCache
	path := processor.TilePath(cacheDir, t)

	if useCache && s.serveFile(w, r, path, "image/webp") {
		tilesServed.WithLabelValues("cache").Inc()
		return
	}

	var buf bytes.Buffer
	if err := processor.EncodeOverlay(&buf, t, s.Overlay); err != nil {
		log.Error().Err(err).Stringer("tile", t).Msg("Failed to render tile")
		writeError(w, err)
		return
	}
	tilesServed.WithLabelValues("render").Inc()

	if useCache {
		if err := processor.WriteFileAtomic(path, buf.Bytes()); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to cache tile")
		}
	}

	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(buf.Bytes())
}

// HandleHealth reports liveness.
func (s *ServerContext) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleIndex serves the main HTML application.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	etag := fmt.Sprintf(`"%x"`, len(s.IndexHTML))

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}

// serveFile tries to serve a file from disk with ETag generation.
// It returns true if the file was found and served (or 304).
func (s *ServerContext) serveFile(w http.ResponseWriter, r *http.Request, path string, contentType string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return false
	}

	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendInt(buf, info.Size(), 16)
	buf = append(buf, '-')
	buf = strconv.AppendInt(buf, info.ModTime().UnixNano(), 16)
	buf = append(buf, '"')
	etag := string(buf)

	// check If-None-Match (client sent ETag)
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	http.ServeFile(w, r, path)
	return true
}

// parseTile reads z/x/y path segments where y carries the .webp extension.
func parseTile(zs, xs, ys string) (processor.TileCoordinate, bool) {
	ys, found := strings.CutSuffix(ys, ".webp")
	if !found {
		return processor.TileCoordinate{}, false
	}

	z, errZ := strconv.Atoi(zs)
	x, errX := strconv.Atoi(xs)
	y, errY := strconv.Atoi(ys)
	if errZ != nil || errX != nil || errY != nil {
		return processor.TileCoordinate{}, false
	}

	if geo.ValidateTile(z, x, y) != nil {
		return processor.TileCoordinate{}, false
	}

	return processor.TileCoordinate{Z: z, X: x, Y: y}, true
}

func floatParam(q url.Values, name string) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: missing %s", errBadRequest, name)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", errBadRequest, name, raw)
	}
	return v, nil
}

func boolParam(q url.Values, name string) bool {
	v, _ := strconv.ParseBool(q.Get(name))
	return v
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, geodna.ErrMalformedCode),
		errors.Is(err, geodna.ErrInvalidPrecision),
		errors.Is(err, geodna.ErrInvalidCoordinate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}
