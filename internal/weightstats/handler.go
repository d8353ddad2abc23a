package weightstats

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/trendweight/internal/telemetry/tracing"
	"github.com/2beens/trendweight/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=weightstats_test

type statsService interface {
	Ingest(ctx context.Context, raw RawInput) int
	Submit(raw RawInput)
	Records() []DailyRecord
	Query(ctx context.Context, params QueryParams) (*DisplayStats, error)
}

type Handler struct {
	service statsService
}

func NewHandler(service statsService) *Handler {
	return &Handler{
		service: service,
	}
}

// HandleIngest receives a full raw data snapshot. By default the snapshot is
// queued for recomputation (bursts collapse to the latest one); with
// ?sync=true the recomputation runs before responding.
func (handler *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weightstats.ingest")
	defer span.End()

	var raw RawInput
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		log.Errorf("ingest weightstats data, unmarshal json params: %s", err)
		http.Error(w, "failed to decode raw data", http.StatusBadRequest)
		return
	}

	if sync, _ := strconv.ParseBool(r.URL.Query().Get("sync")); sync {
		count := handler.service.Ingest(ctx, raw)
		pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"records":%d}`, count))
		return
	}

	handler.service.Submit(raw)
	pkg.WriteResponse(w, pkg.ContentType.JSON, `{"queued":true}`, http.StatusAccepted)
}

// HandleRecords returns the full processed daily record sequence.
func (handler *Handler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.weightstats.records")
	defer span.End()

	records := handler.service.Records()
	if records == nil {
		records = []DailyRecord{}
	}

	recordsJson, err := json.Marshal(records)
	if err != nil {
		log.Errorf("marshal weightstats records: %s", err)
		http.Error(w, "failed to marshal records", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, recordsJson)
}

// HandleStats returns the consolidated display statistics bundle for the
// given analysis range (and optional regression sub-range and goal params).
func (handler *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weightstats.stats")
	defer span.End()

	params, err := handler.queryParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stats, err := handler.service.Query(ctx, *params)
	if err != nil {
		log.Errorf("get weightstats display stats: %s", err)
		http.Error(w, "failed to get display stats", http.StatusInternalServerError)
		return
	}

	statsJson, err := json.Marshal(stats)
	if err != nil {
		log.Errorf("marshal weightstats display stats: %s", err)
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, statsJson)
}

// HandleWeekly returns only the weekly aggregates of the stats bundle.
func (handler *Handler) HandleWeekly(w http.ResponseWriter, r *http.Request) {
	handler.handleStatsSection(w, r, "handler.weightstats.weekly", func(stats *DisplayStats) interface{} {
		return stats.Weekly
	})
}

// HandlePhases returns only the detected phases of the stats bundle.
func (handler *Handler) HandlePhases(w http.ResponseWriter, r *http.Request) {
	handler.handleStatsSection(w, r, "handler.weightstats.phases", func(stats *DisplayStats) interface{} {
		return stats.Phases
	})
}

// HandleCorrelations returns only the correlation matrix of the stats bundle.
func (handler *Handler) HandleCorrelations(w http.ResponseWriter, r *http.Request) {
	handler.handleStatsSection(w, r, "handler.weightstats.correlations", func(stats *DisplayStats) interface{} {
		return stats.Correlations
	})
}

func (handler *Handler) handleStatsSection(
	w http.ResponseWriter,
	r *http.Request,
	spanName string,
	section func(*DisplayStats) interface{},
) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), spanName)
	defer span.End()

	params, err := handler.queryParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stats, err := handler.service.Query(ctx, *params)
	if err != nil {
		log.Errorf("get weightstats display stats: %s", err)
		http.Error(w, "failed to get display stats", http.StatusInternalServerError)
		return
	}

	sectionJson, err := json.Marshal(section(stats))
	if err != nil {
		log.Errorf("marshal weightstats stats section: %s", err)
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, sectionJson)
}

// queryParams parses range, regression sub-range and goal query parameters.
// Missing range bounds default to the first/last day of the current sequence;
// a reversed range is rejected here so it surfaces as a client error.
func (handler *Handler) queryParams(r *http.Request) (*QueryParams, error) {
	query := r.URL.Query()

	params := &QueryParams{}

	records := handler.service.Records()
	if len(records) > 0 {
		params.From = records[0].Date
		params.To = records[len(records)-1].Date
	}

	if fromStr := query.Get("from"); fromStr != "" {
		from, err := time.Parse(dateKeyLayout, fromStr)
		if err != nil {
			return nil, fmt.Errorf("invalid from parameter: %s", fromStr)
		}
		params.From = from
	}
	if toStr := query.Get("to"); toStr != "" {
		to, err := time.Parse(dateKeyLayout, toStr)
		if err != nil {
			return nil, fmt.Errorf("invalid to parameter: %s", toStr)
		}
		params.To = to
	}
	if !params.To.IsZero() && params.To.Before(params.From) {
		return nil, fmt.Errorf(
			"invalid range: from %s is after to %s",
			params.From.Format(dateKeyLayout), params.To.Format(dateKeyLayout),
		)
	}
	if regFromStr := query.Get("regression_from"); regFromStr != "" {
		regFrom, err := time.Parse(dateKeyLayout, regFromStr)
		if err != nil {
			return nil, fmt.Errorf("invalid regression_from parameter: %s", regFromStr)
		}
		params.RegressionFrom = &regFrom
	}
	if regToStr := query.Get("regression_to"); regToStr != "" {
		regTo, err := time.Parse(dateKeyLayout, regToStr)
		if err != nil {
			return nil, fmt.Errorf("invalid regression_to parameter: %s", regToStr)
		}
		params.RegressionTo = &regTo
	}
	if goalWeightStr := query.Get("goal_weight"); goalWeightStr != "" {
		goalWeight, err := strconv.ParseFloat(goalWeightStr, 64)
		if err != nil || goalWeight <= 0 {
			return nil, fmt.Errorf("invalid goal_weight parameter: %s", goalWeightStr)
		}
		params.GoalWeight = &goalWeight
	}
	if goalDateStr := query.Get("goal_date"); goalDateStr != "" {
		goalDate, err := time.Parse(dateKeyLayout, goalDateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid goal_date parameter: %s", goalDateStr)
		}
		params.GoalDate = &goalDate
	}

	return params, nil
}
