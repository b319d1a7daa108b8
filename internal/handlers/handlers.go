package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"almanac/internal/engine"
	"almanac/internal/metrics"
	"almanac/internal/refresher"
	"almanac/internal/store"
	"almanac/pkg/api/almanac"
	"almanac/pkg/logging"
	"almanac/pkg/models"
)

var (
	plannerStore   *store.Store
	logger         logging.Logger
	serviceMetrics *metrics.Metrics
	cache          *refresher.Refresher

	// defaults are independently configurable: the net-count exclusion
	// list and the growth-sum exclusion list share the same two channel
	// names out of the box but are separate settings
	netCountExcluded []string
	growthExcluded   []string
)

// Init initializes the handlers package with its collaborators
func Init(s *store.Store, log logging.Logger, m *metrics.Metrics, r *refresher.Refresher, netExcluded, sumExcluded []string) {
	plannerStore = s
	logger = log
	serviceMetrics = m
	cache = r
	netCountExcluded = netExcluded
	growthExcluded = sumExcluded
	if netCountExcluded == nil {
		netCountExcluded = models.DefaultExcludedCategories
	}
	if growthExcluded == nil {
		growthExcluded = models.DefaultExcludedCategories
	}
}

// windowFromQuery resolves the window parameters shared by every endpoint
func windowFromQuery(c *gin.Context) models.Window {
	year, _ := strconv.Atoi(c.Query("year"))
	return engine.ResolveWindow(
		c.Query("preset"),
		c.Query("start"),
		c.Query("end"),
		time.Now(),
		year,
	)
}

// csvQuery splits a comma-separated query parameter, dropping empty entries
func csvQuery(c *gin.Context, key string) []string {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func observe(computation string, start time.Time) {
	if serviceMetrics != nil {
		serviceMetrics.ComputationDuration.WithLabelValues(computation).Observe(time.Since(start).Seconds())
	}
}

func countComputation(computation, status string) {
	if serviceMetrics != nil {
		serviceMetrics.EngineComputations.WithLabelValues(computation, status).Inc()
	}
}

// BuildOverview computes the full dashboard payload for a window and
// filter set. It is also the refresher's compute function for the cached
// all-time overview.
func BuildOverview(ctx context.Context, w models.Window, activeCategories []string, excluded engine.ExclusionSet) (almanac.OverviewResponse, error) {
	items, err := plannerStore.ListContentItems(ctx, w)
	if err != nil {
		return almanac.OverviewResponse{}, err
	}
	roster, err := plannerStore.ListRosterCategories(ctx)
	if err != nil {
		return almanac.OverviewResponse{}, err
	}
	assignees, err := plannerStore.ListRosterAssignees(ctx)
	if err != nil {
		return almanac.OverviewResponse{}, err
	}

	restricted := engine.FilterByCategories(engine.FilterByWindow(items, w), activeCategories)

	return almanac.OverviewResponse{
		Window:        w,
		TotalItems:    len(restricted),
		NetPublished:  engine.NetPublishedCount(restricted, excluded),
		ByCategory:    engine.AggregateBy(restricted, engine.DimensionCategory, roster, false),
		ByContentType: engine.AggregateBy(restricted, engine.DimensionContentType, nil, false),
		ByStatus:      engine.AggregateByStatus(restricted),
		ByAssignee:    engine.AggregateByAssignee(restricted, assignees),
		Patterns:      engine.DetectPatterns(restricted),
		GeneratedAt:   time.Now(),
	}, nil
}

// BuildOverviewAllTime returns the refresher's compute function: the
// unbounded, unfiltered overview under the given net-count exclusions
func BuildOverviewAllTime(excluded []string) refresher.ComputeFunc {
	return func(ctx context.Context) (almanac.OverviewResponse, error) {
		return BuildOverview(ctx, models.Window{}, nil, engine.NewExclusionSet(excluded...))
	}
}

// GetOverview returns the combined dashboard payload. Without query
// parameters it serves the refresher's cached all-time overview when one
// is available; any parameter forces a fresh recompute.
func GetOverview(c *gin.Context) {
	start := time.Now()
	defer observe("overview", start)
	countComputation("overview", "requested")

	hasParams := len(c.Request.URL.Query()) > 0
	if !hasParams && cache != nil {
		if cached, ok := cache.Latest(); ok {
			countComputation("overview", "cached")
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	excluded := engine.NewExclusionSet(netCountExcluded...)
	if override := csvQuery(c, "exclude"); override != nil {
		excluded = engine.NewExclusionSet(override...)
	}

	overview, err := BuildOverview(c.Request.Context(), windowFromQuery(c), csvQuery(c, "categories"), excluded)
	if err != nil {
		countComputation("overview", "error")
		logger.WithError(err).Error("Failed to build analytics overview")
		c.JSON(http.StatusInternalServerError, almanac.ErrorResponse{Error: "Failed to build overview"})
		return
	}

	countComputation("overview", "success")
	c.JSON(http.StatusOK, overview)
}

// GetDistribution returns a single-dimension aggregation over the
// window/filter-restricted item set
func GetDistribution(c *gin.Context) {
	start := time.Now()
	defer observe("distribution", start)
	countComputation("distribution", "requested")

	dim, ok := engine.ParseDimension(c.Query("dimension"))
	if !ok {
		countComputation("distribution", "error")
		c.JSON(http.StatusBadRequest, almanac.ErrorResponse{Error: "Invalid dimension. Use category, content_type, status, or assignee."})
		return
	}

	w := windowFromQuery(c)
	items, err := plannerStore.ListContentItems(c.Request.Context(), w)
	if err != nil {
		countComputation("distribution", "error")
		logger.WithError(err).Error("Failed to fetch content items")
		c.JSON(http.StatusInternalServerError, almanac.ErrorResponse{Error: "Failed to fetch content items"})
		return
	}

	restricted := engine.FilterByCategories(engine.FilterByWindow(items, w), csvQuery(c, "categories"))

	var buckets []engine.Bucket
	switch dim {
	case engine.DimensionStatus:
		buckets = engine.AggregateByStatus(restricted)
	case engine.DimensionCategory:
		roster, err := plannerStore.ListRosterCategories(c.Request.Context())
		if err != nil {
			logger.WithError(err).Warn("Failed to fetch roster categories; aggregating without seed order")
		}
		buckets = engine.AggregateBy(restricted, dim, roster, false)
	case engine.DimensionAssignee:
		assignees, err := plannerStore.ListRosterAssignees(c.Request.Context())
		if err != nil {
			logger.WithError(err).Warn("Failed to fetch roster members; dangling references keep their IDs")
		}
		buckets = engine.AggregateByAssignee(restricted, assignees)
	default:
		buckets = engine.AggregateBy(restricted, dim, nil, false)
	}

	countComputation("distribution", "success")
	c.JSON(http.StatusOK, almanac.DistributionResponse{
		Dimension: string(dim),
		Window:    w,
		Buckets:   buckets,
	})
}

// GetGrowth returns the reconstructed follower series for a window with
// its first-to-last growth. The inclusion set is either exactly the
// include= categories or everything except the configured sum exclusions.
func GetGrowth(c *gin.Context) {
	start := time.Now()
	defer observe("growth", start)
	countComputation("growth", "requested")

	records, err := plannerStore.ListSnapshotRecords(c.Request.Context())
	if err != nil {
		countComputation("growth", "error")
		logger.WithError(err).Error("Failed to fetch follower snapshots")
		c.JSON(http.StatusInternalServerError, almanac.ErrorResponse{Error: "Failed to fetch follower snapshots"})
		return
	}

	inclusion := engine.IncludeAllExcept(growthExcluded...)
	if only := csvQuery(c, "include"); only != nil {
		inclusion = engine.IncludeOnly(only...)
	}

	w := windowFromQuery(c)
	series := engine.ReconstructSeries(records, inclusion)
	windowed := engine.FilterSeries(series, w)

	countComputation("growth", "success")
	c.JSON(http.StatusOK, almanac.GrowthResponse{
		Window:           w,
		Series:           windowed,
		Growth:           engine.WindowGrowth(series, w),
		InsufficientData: len(windowed) < 2,
	})
}

// GetStepGrowth returns point-over-point deltas across the full snapshot
// history
func GetStepGrowth(c *gin.Context) {
	start := time.Now()
	defer observe("step_growth", start)
	countComputation("step_growth", "requested")

	records, err := plannerStore.ListSnapshotRecords(c.Request.Context())
	if err != nil {
		countComputation("step_growth", "error")
		logger.WithError(err).Error("Failed to fetch follower snapshots")
		c.JSON(http.StatusInternalServerError, almanac.ErrorResponse{Error: "Failed to fetch follower snapshots"})
		return
	}

	inclusion := engine.IncludeAllExcept(growthExcluded...)
	if only := csvQuery(c, "include"); only != nil {
		inclusion = engine.IncludeOnly(only...)
	}

	countComputation("step_growth", "success")
	c.JSON(http.StatusOK, almanac.StepGrowthResponse{
		Steps: engine.StepGrowth(engine.ReconstructSeries(records, inclusion)),
	})
}

// GetPatterns returns publishing-behavior statistics for the
// window/filter-restricted item set
func GetPatterns(c *gin.Context) {
	start := time.Now()
	defer observe("patterns", start)
	countComputation("patterns", "requested")

	w := windowFromQuery(c)
	items, err := plannerStore.ListContentItems(c.Request.Context(), w)
	if err != nil {
		countComputation("patterns", "error")
		logger.WithError(err).Error("Failed to fetch content items")
		c.JSON(http.StatusInternalServerError, almanac.ErrorResponse{Error: "Failed to fetch content items"})
		return
	}

	restricted := engine.FilterByCategories(engine.FilterByWindow(items, w), csvQuery(c, "categories"))

	countComputation("patterns", "success")
	c.JSON(http.StatusOK, almanac.PatternsResponse{
		Window:   w,
		Patterns: engine.DetectPatterns(restricted),
	})
}

// GetCategories enumerates every category ever seen (configured or
// retired) as candidates for the exclusion set
func GetCategories(c *gin.Context) {
	start := time.Now()
	defer observe("categories", start)
	countComputation("categories", "requested")

	items, err := plannerStore.ListContentItems(c.Request.Context(), models.Window{})
	if err != nil {
		countComputation("categories", "error")
		logger.WithError(err).Error("Failed to fetch content items")
		c.JSON(http.StatusInternalServerError, almanac.ErrorResponse{Error: "Failed to fetch content items"})
		return
	}
	roster, err := plannerStore.ListRosterCategories(c.Request.Context())
	if err != nil {
		countComputation("categories", "error")
		logger.WithError(err).Error("Failed to fetch roster categories")
		c.JSON(http.StatusInternalServerError, almanac.ErrorResponse{Error: "Failed to fetch roster categories"})
		return
	}

	countComputation("categories", "success")
	c.JSON(http.StatusOK, almanac.CategoriesResponse{
		Candidates:      engine.CategoryCandidates(items, roster),
		DefaultExcluded: netCountExcluded,
	})
}

// RegisterRoutes attaches all analytics endpoints to the router group
func RegisterRoutes(rg *gin.RouterGroup) {
	analytics := rg.Group("/analytics")
	analytics.GET("/overview", GetOverview)
	analytics.GET("/distribution", GetDistribution)
	analytics.GET("/growth", GetGrowth)
	analytics.GET("/growth/steps", GetStepGrowth)
	analytics.GET("/patterns", GetPatterns)
	analytics.GET("/categories", GetCategories)
}
