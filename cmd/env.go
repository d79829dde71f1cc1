package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/exec-enrich/internal/aggregate"
	"github.com/sells-group/exec-enrich/internal/attribution"
	"github.com/sells-group/exec-enrich/internal/budget"
	"github.com/sells-group/exec-enrich/internal/config"
	"github.com/sells-group/exec-enrich/internal/cost"
	"github.com/sells-group/exec-enrich/internal/crossval"
	"github.com/sells-group/exec-enrich/internal/model"
	"github.com/sells-group/exec-enrich/internal/monitoring"
	"github.com/sells-group/exec-enrich/internal/pipeline"
	"github.com/sells-group/exec-enrich/internal/resilience"
	"github.com/sells-group/exec-enrich/internal/source"
	"github.com/sells-group/exec-enrich/internal/store"
	"github.com/sells-group/exec-enrich/internal/tiering"
	"github.com/sells-group/exec-enrich/internal/validate"
	"github.com/sells-group/exec-enrich/pkg/companieshouse"
	"github.com/sells-group/exec-enrich/pkg/google"
	"github.com/sells-group/exec-enrich/pkg/hunter"
	"github.com/sells-group/exec-enrich/pkg/webpage"
)

// enrichEnv holds the store, ledger and orchestrator shared by the run,
// batch and serve commands.
type enrichEnv struct {
	Store        store.Store
	Tracker      *budget.Tracker
	Orchestrator *pipeline.Orchestrator
	Metrics      *monitoring.Metrics
	Registry     *source.Registry
}

// Close releases resources held by the environment.
func (e *enrichEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv opens the store and builds the orchestrator from cfg. Callers
// should defer env.Close().
func initEnv(ctx context.Context, mode string) (*enrichEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, store.Config{
		Driver:      cfg.Store.Driver,
		DatabaseURL: cfg.Store.DatabaseURL,
	})
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}

	env, err := buildEnv(cfg, st)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return env, nil
}

// buildEnv wires the pipeline over an open store.
func buildEnv(c *config.Config, st store.Store) (*enrichEnv, error) {
	metrics := monitoring.NewMetrics(nil)
	tracker := budget.NewTracker(st, c.Budget.MonthlyLimit)
	calc := cost.NewCalculator(pricing(c))
	registry := buildRegistry(c)

	weights, err := crossvalWeights(c)
	if err != nil {
		return nil, err
	}

	decider := tiering.New(tracker, calc,
		tiering.WithTiers(map[model.Tier]tiering.TierSpec{
			model.TierA: tierSpec(c.Tiers.A),
			model.TierB: tierSpec(c.Tiers.B),
			model.TierC: tierSpec(c.Tiers.C),
		}),
		tiering.WithFloor(c.Tiers.MinBudgetFloor),
		tiering.WithQualifyScore(c.Tiers.QualifyCScore),
	)

	orch := pipeline.New(decider, tracker, registry,
		pipeline.WithCalculator(calc),
		pipeline.WithNameValidator(validate.New(validate.WithThreshold(c.Pipeline.NameThreshold))),
		pipeline.WithAttribution(attribution.New(attribution.WithMinConfidence(c.Pipeline.MinAttribution))),
		pipeline.WithAggregator(aggregate.New(aggregate.WithThreshold(c.Pipeline.DedupThreshold))),
		pipeline.WithCrossValidator(crossval.New(
			crossval.WithWeights(weights),
			crossval.WithAgreementThreshold(c.CrossVal.AgreementThreshold),
		)),
		pipeline.WithCrossValidation(c.Pipeline.CrossValidate),
		pipeline.WithBusinessNameHeuristics(c.Pipeline.BusinessNameHeuristics),
		pipeline.WithPrimaryFloor(c.Pipeline.PrimaryFloor),
		pipeline.WithHighConfidence(c.Pipeline.HighConfidence),
		pipeline.WithRunOptions(source.RunOptions{
			DefaultTimeout: seconds(c.Sources.DefaultTimeoutSecs),
			Breakers:       resilience.NewBreakers(resilience.BreakerFromConfig(c.Sources.Breaker), metrics.BreakerChanged),
			Observe:        metrics.ObserveSource,
		}),
		pipeline.WithStore(st),
		pipeline.WithMetrics(metrics),
	)

	zap.L().Info("pipeline ready",
		zap.Strings("sources", registry.IDs()),
		zap.Float64("monthly_limit", c.Budget.MonthlyLimit),
		zap.String("store", c.Store.Driver),
	)

	return &enrichEnv{
		Store:        st,
		Tracker:      tracker,
		Orchestrator: orch,
		Metrics:      metrics,
		Registry:     registry,
	}, nil
}

// buildRegistry creates the source adapters that have credentials. The
// website adapter needs none and is always registered.
func buildRegistry(c *config.Config) *source.Registry {
	sc := c.Sources
	retry := source.WithRetry(resilience.RetryFromConfig(sc.Retry))
	ttl := time.Duration(sc.CacheTTLMins) * time.Minute
	wrap := func(a source.Adapter) source.Adapter {
		if ttl <= 0 {
			return a
		}
		return source.Cached(a, ttl)
	}

	reg := source.NewRegistry()

	if sc.CompaniesHouse.Key != "" {
		client := companieshouse.NewClient(sc.CompaniesHouse.Key,
			companieshouse.WithBaseURL(sc.CompaniesHouse.BaseURL),
			companieshouse.WithRateLimit(sc.CompaniesHouse.RateLimit),
			companieshouse.WithHTTPClient(&http.Client{Timeout: seconds(sc.CompaniesHouse.TimeoutSecs)}),
		)
		reg.Register(wrap(source.NewCompaniesHouse(client, retry, source.WithTimeout(seconds(sc.CompaniesHouse.TimeoutSecs)))))
	} else {
		zap.L().Warn("ENRICH_SOURCES_COMPANIES_HOUSE_KEY not set, companies_house source disabled")
	}

	fetcher := webpage.New(
		webpage.WithUserAgent(sc.Website.UserAgent),
		webpage.WithRateLimit(sc.Website.RateLimit),
		webpage.WithRobots(sc.Website.RespectRobots),
		webpage.WithHTTPClient(&http.Client{Timeout: seconds(sc.Website.TimeoutSecs)}),
	)
	reg.Register(wrap(source.NewWebsite(fetcher,
		[]source.WebsiteOption{source.WithPaths(sc.Website.Paths), source.WithMaxPages(sc.Website.MaxPages)},
		source.WithTimeout(seconds(sc.Website.TimeoutSecs)),
	)))

	if sc.Google.Key != "" && sc.Google.CX != "" {
		client := google.NewClient(sc.Google.Key, sc.Google.CX,
			google.WithBaseURL(sc.Google.BaseURL),
			google.WithRateLimit(sc.Google.RateLimit),
			google.WithHTTPClient(&http.Client{Timeout: seconds(sc.Google.TimeoutSecs)}),
		)
		timeout := source.WithTimeout(seconds(sc.Google.TimeoutSecs))
		reg.Register(wrap(source.NewSearchEngine(client, sc.Google.MaxResults, retry, timeout)))
		reg.Register(wrap(source.NewLinkedInSearch(client, sc.Google.MaxResults, retry, timeout)))
	} else {
		zap.L().Warn("google custom search not configured, search_engine and linkedin_search disabled")
	}

	if sc.Hunter.Key != "" {
		client := hunter.NewClient(sc.Hunter.Key,
			hunter.WithBaseURL(sc.Hunter.BaseURL),
			hunter.WithHTTPClient(&http.Client{Timeout: seconds(sc.Hunter.TimeoutSecs)}),
		)
		reg.Register(wrap(source.NewEmailFinder(client, retry, source.WithTimeout(seconds(sc.Hunter.TimeoutSecs)))))
	} else {
		zap.L().Warn("ENRICH_SOURCES_HUNTER_KEY not set, email_finder source disabled")
	}

	return reg
}

func pricing(c *config.Config) cost.Rates {
	if len(c.Pricing.Sources) == 0 {
		return cost.DefaultRates()
	}
	rates := make(cost.Rates, len(c.Pricing.Sources))
	for id, p := range c.Pricing.Sources {
		rates[id] = cost.SourceRate{PerCall: p.PerCall, Floor: p.Floor}
	}
	return rates
}

func crossvalWeights(c *config.Config) (crossval.Weights, error) {
	if c.CrossVal.WeightsFile != "" {
		w, err := crossval.LoadWeights(c.CrossVal.WeightsFile)
		if err != nil {
			return crossval.Weights{}, eris.Wrap(err, "load crossval weights")
		}
		return w, nil
	}
	return crossval.FromMaps(c.CrossVal.Weights, c.CrossVal.SourceTypes), nil
}

func tierSpec(t config.TierConfig) tiering.TierSpec {
	return tiering.TierSpec{Budget: t.Budget, MaxProcessingTime: seconds(t.MaxProcessingSecs)}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
