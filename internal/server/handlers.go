package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/deepscout/matchup/internal/ftcscout"
	"github.com/deepscout/matchup/internal/model"
	"github.com/deepscout/matchup/internal/predictor"
	"github.com/deepscout/matchup/internal/stats"
	"github.com/deepscout/matchup/internal/storage"
)

// handler carries the dependencies shared by all routes.
type handler struct {
	source  predictor.RecordSource
	store   *storage.DB
	season  int
	log     *slog.Logger
	metrics *metrics
}

// ---- request bodies ----

type scoringBody struct {
	Auto         string  `json:"auto"`
	Tele         string  `json:"tele"`
	EndgameBonus float64 `json:"endgameBonus"`
}

// toConfig parses the body into a config. Empty categories keep the
// specimen default.
func (b scoringBody) toConfig() (model.ScoringConfig, error) {
	var cfg model.ScoringConfig
	if b.EndgameBonus < 0 {
		return cfg, fmt.Errorf("endgameBonus must not be negative, got %v", b.EndgameBonus)
	}
	cfg.EndgameBonus = b.EndgameBonus
	if b.Auto != "" {
		c, err := model.ParseScoreCategory(b.Auto)
		if err != nil {
			return cfg, err
		}
		cfg.Auto = c
	}
	if b.Tele != "" {
		c, err := model.ParseScoreCategory(b.Tele)
		if err != nil {
			return cfg, err
		}
		cfg.Tele = c
	}
	return cfg, nil
}

type allianceBody struct {
	Teams   [2]int        `json:"teams"`
	Configs []scoringBody `json:"configs"`
}

// toAlliance validates the body. One config entry applies to both teams,
// two apply index-aligned, none keeps the defaults.
func (b allianceBody) toAlliance(side string) (predictor.Alliance, error) {
	if b.Teams[0] <= 0 || b.Teams[1] <= 0 {
		return predictor.Alliance{}, fmt.Errorf("%s alliance needs two positive team numbers", side)
	}
	a := predictor.Alliance{Teams: b.Teams}
	switch len(b.Configs) {
	case 0:
	case 1:
		cfg, err := b.Configs[0].toConfig()
		if err != nil {
			return a, fmt.Errorf("%s alliance: %w", side, err)
		}
		a.Configs[0], a.Configs[1] = cfg, cfg
	case 2:
		for i := range b.Configs {
			cfg, err := b.Configs[i].toConfig()
			if err != nil {
				return a, fmt.Errorf("%s alliance: %w", side, err)
			}
			a.Configs[i] = cfg
		}
	default:
		return a, fmt.Errorf("%s alliance: configs accepts at most two entries", side)
	}
	return a, nil
}

type predictionRequest struct {
	Season int          `json:"season"`
	Red    allianceBody `json:"red"`
	Blue   allianceBody `json:"blue"`
}

// ---- response bodies ----

type teamBody struct {
	Team    int     `json:"team"`
	Matches int     `json:"matches"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"stdDev"`
}

type allianceResponse struct {
	Teams  [2]teamBody `json:"teams"`
	Mean   float64     `json:"mean"`
	StdDev float64     `json:"stdDev"`
}

type predictionResponse struct {
	ID             string             `json:"id"`
	Season         int                `json:"season"`
	Red            allianceResponse   `json:"red"`
	Blue           allianceResponse   `json:"blue"`
	WinProbability float64            `json:"winProbability"`
	Curve          []model.CurvePoint `json:"curve"`
	CreatedAt      time.Time          `json:"createdAt"`
}

type storedPredictionResponse struct {
	ID             string             `json:"id"`
	Season         int                `json:"season"`
	Red            [2]int             `json:"red"`
	Blue           [2]int             `json:"blue"`
	RedMean        float64            `json:"redMean"`
	RedStdDev      float64            `json:"redStdDev"`
	BlueMean       float64            `json:"blueMean"`
	BlueStdDev     float64            `json:"blueStdDev"`
	WinProbability float64            `json:"winProbability"`
	Curve          []model.CurvePoint `json:"curve"`
	CreatedAt      time.Time          `json:"createdAt"`
}

func toResponse(res *predictor.Result) predictionResponse {
	curve := make([]model.CurvePoint, 0, len(res.RedCurve)+len(res.BlueCurve))
	curve = append(curve, res.RedCurve...)
	curve = append(curve, res.BlueCurve...)
	return predictionResponse{
		ID:             res.ID,
		Season:         res.Season,
		Red:            toAllianceResponse(res.Red),
		Blue:           toAllianceResponse(res.Blue),
		WinProbability: res.WinProbability,
		Curve:          curve,
		CreatedAt:      res.CreatedAt,
	}
}

func toAllianceResponse(a predictor.AllianceResult) allianceResponse {
	out := allianceResponse{Mean: a.Combined.Mean, StdDev: a.Combined.StdDev()}
	for i, tr := range a.Teams {
		out.Teams[i] = teamBody{
			Team:    tr.Team,
			Matches: tr.Distribution.Samples,
			Mean:    tr.Distribution.Mean,
			StdDev:  tr.Distribution.StdDev,
		}
	}
	return out
}

// ---- handlers ----

// health returns service liveness.
func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "matchup",
	})
}

// createPrediction runs the full pipeline for a posted matchup and stores
// the result.
func (h *handler) createPrediction(w http.ResponseWriter, r *http.Request) {
	var req predictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.predictions.WithLabelValues("bad_request").Inc()
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	season := req.Season
	if season == 0 {
		season = h.season
	}
	red, err := req.Red.toAlliance("red")
	if err != nil {
		h.metrics.predictions.WithLabelValues("bad_request").Inc()
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	blue, err := req.Blue.toAlliance("blue")
	if err != nil {
		h.metrics.predictions.WithLabelValues("bad_request").Inc()
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := predictor.Predict(r.Context(), h.source, predictor.Request{
		Season: season,
		Red:    red,
		Blue:   blue,
	})
	if err != nil {
		status, outcome := classify(err)
		h.metrics.predictions.WithLabelValues(outcome).Inc()
		h.log.Error("prediction failed", "error", err)
		respondError(w, status, err.Error())
		return
	}

	if err := h.store.InsertPrediction(res.Record()); err != nil {
		h.metrics.predictions.WithLabelValues("storage_error").Inc()
		h.log.Error("store prediction", "id", res.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to store prediction")
		return
	}

	h.metrics.predictions.WithLabelValues("ok").Inc()
	h.log.Info("prediction served", "id", res.ID,
		"season", res.Season, "red_win", res.WinProbability)
	respondJSON(w, http.StatusCreated, toResponse(res))
}

// getPrediction returns a stored prediction. Curves are not persisted, so
// they are rebuilt from the stored moments.
func (h *handler) getPrediction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.store.GetPrediction(id)
	if err != nil {
		h.log.Error("load prediction", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load prediction")
		return
	}
	if p == nil {
		respondError(w, http.StatusNotFound, "prediction not found")
		return
	}

	redCurve, err := stats.DensityCurve(p.RedMean, p.RedStdDev, predictor.LabelRed)
	if err != nil {
		h.log.Error("rebuild curve", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to rebuild curves")
		return
	}
	blueCurve, err := stats.DensityCurve(p.BlueMean, p.BlueStdDev, predictor.LabelBlue)
	if err != nil {
		h.log.Error("rebuild curve", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to rebuild curves")
		return
	}

	curve := make([]model.CurvePoint, 0, len(redCurve)+len(blueCurve))
	curve = append(curve, redCurve...)
	curve = append(curve, blueCurve...)
	respondJSON(w, http.StatusOK, storedPredictionResponse{
		ID:             p.ID,
		Season:         p.Season,
		Red:            [2]int{p.Red1, p.Red2},
		Blue:           [2]int{p.Blue1, p.Blue2},
		RedMean:        p.RedMean,
		RedStdDev:      p.RedStdDev,
		BlueMean:       p.BlueMean,
		BlueStdDev:     p.BlueStdDev,
		WinProbability: p.WinProbability,
		Curve:          curve,
		CreatedAt:      p.CreatedAt,
	})
}

// classify maps pipeline errors to an HTTP status and a metrics outcome.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, stats.ErrInsufficientData):
		return http.StatusUnprocessableEntity, "insufficient_data"
	case errors.Is(err, stats.ErrDegenerateDistribution):
		return http.StatusUnprocessableEntity, "degenerate_distribution"
	case errors.Is(err, ftcscout.ErrUpstream):
		return http.StatusBadGateway, "upstream_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
