package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/config"
	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/repository"
	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/stats"
	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/validity"
)

// ValidityHandler serves the analytics battery over the two record stores.
type ValidityHandler struct {
	log    *zap.Logger
	engine *validity.Engine
	cache  validity.Cache
}

// NewValidityHandler wires the handler with its engine and result cache.
func NewValidityHandler(log *zap.Logger, engine *validity.Engine, cache validity.Cache) *ValidityHandler {
	return &ValidityHandler{log: log, engine: engine, cache: cache}
}

// Analyze handles GET /api/validity.
func (h *ValidityHandler) Analyze(c *gin.Context) {
	opts := ParseOptions(c)

	key := opts.CacheKey()
	if report, ok := h.cache.Get(key); ok {
		c.JSON(http.StatusOK, report)
		return
	}

	report, ok := h.runAnalysis(c, opts)
	if !ok {
		return
	}

	ttl := time.Duration(config.Conf.Engine.CacheTTLSeconds) * time.Second
	if ttl > 0 {
		h.cache.Put(key, report, ttl)
	}
	c.JSON(http.StatusOK, report)
}

// runAnalysis fetches both stores and runs the engine. A store failure is a
// single top-level error; no partial statistics are returned.
func (h *ValidityHandler) runAnalysis(c *gin.Context, opts validity.Options) (*validity.Report, bool) {
	entries, err := repository.GetQuestionnaireEntries(c.Request.Context(), opts.Limit)
	if err != nil {
		h.log.Error("Failed to load questionnaire entries", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "questionnaire store unavailable"})
		return nil, false
	}
	sessions, err := repository.GetScanSessions(c.Request.Context(), opts.Limit)
	if err != nil {
		h.log.Error("Failed to load scan sessions", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "scan session store unavailable"})
		return nil, false
	}

	return h.engine.Analyze(entries, sessions, opts), true
}

// ParseOptions maps the documented query parameters onto engine options.
// Everything is optional; precedence conflicts resolve as documented
// (a single modality beats the modalities set).
func ParseOptions(c *gin.Context) validity.Options {
	opts := validity.Options{
		Limit:               config.Conf.Engine.LimitDefault,
		Lambda:              config.Conf.Engine.RidgeLambda,
		BootstrapReplicates: config.Conf.Engine.BootstrapReplicates,
	}

	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		if max := config.Conf.Engine.LimitMax; max > 0 && v > max {
			v = max
		}
		opts.Limit = v
	}
	if c.Query("method") == string(stats.MethodSpearman) {
		opts.Method = stats.MethodSpearman
	}

	opts.Device = c.Query("device")
	opts.Modality = c.Query("modality")
	if raw := c.Query("modalities"); raw != "" {
		for _, m := range strings.Split(raw, ",") {
			if m = strings.TrimSpace(m); m != "" {
				opts.Modalities = append(opts.Modalities, m)
			}
		}
	}
	opts.Exclusive = queryBool(c, "exclusive")
	if v, err := strconv.ParseFloat(c.Query("threshold"), 64); err == nil && v >= 0 && v <= 100 {
		opts.Threshold = v
	}

	opts.ExcludeTimeouts = queryBool(c, "excludeTimeouts")
	if v, err := strconv.Atoi(c.Query("timeoutsMax")); err == nil && v >= 0 {
		opts.TimeoutsMax = validity.Int(v)
	}
	if v, err := strconv.ParseFloat(c.Query("timeoutsFracMax"), 64); err == nil && v >= 0 && v <= 1 {
		opts.TimeoutsFracMax = validity.Float(v)
	}
	opts.IAT = queryBool(c, "iat")
	opts.SensitivityAllMax = queryBool(c, "sensitivityAllMax")

	opts.TrimIHS = queryTrim(c, "trimIhs")
	opts.TrimScales = queryTrim(c, "trimScales")

	opts.Sex = c.Query("sex")
	opts.Country = c.Query("country")
	opts.Countries = querySet(c, "countries")
	opts.ExcludeCountries = querySet(c, "excludeCountries")
	if v, err := strconv.Atoi(c.Query("ageMin")); err == nil {
		opts.AgeMin = validity.Int(v)
	}
	if v, err := strconv.Atoi(c.Query("ageMax")); err == nil {
		opts.AgeMax = validity.Int(v)
	}

	opts.Score = validity.ScoreMode(c.Query("score"))
	opts.RTDenoise = queryBool(c, "rtDenoise")
	opts.RTLearn = queryBool(c, "rtLearn")
	if v, err := strconv.ParseInt(c.Query("seed"), 10, 64); err == nil {
		opts.Seed = v
	}

	// Per-subject rows are privacy-sensitive and must be asked for.
	opts.IncludePerSession = queryBool(c, "includePerSession")

	return opts
}

func queryBool(c *gin.Context, key string) bool {
	v := strings.ToLower(c.Query(key))
	return v == "true" || v == "1" || v == "yes"
}

// queryTrim accepts a float fraction or a bare boolean meaning the default
// 10% two-tailed trim.
func queryTrim(c *gin.Context, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 && v < 0.5 {
		return validity.Float(v)
	}
	if queryBool(c, key) {
		return validity.Float(0.10)
	}
	return nil
}

func querySet(c *gin.Context, key string) []string {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
