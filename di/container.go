package di

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"linkscout/ai"
	"linkscout/browser"
	"linkscout/config"
	"linkscout/logging"
	"linkscout/vetting"
	"linkscout/vetting/providers"
)

// BuildContainer creates and configures a dependency injection container.
// configPath may be empty to search the default locations.
func BuildContainer(configPath string) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		return config.New(configPath)
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.New); err != nil {
		return nil, err
	}

	// Register headless browser
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *browser.Chrome {
		return browser.New(cfg.GetBrowser(), logger)
	}); err != nil {
		return nil, err
	}

	// Register enrichment providers. Missing credentials leave the provider
	// nil so the enricher reports it as not configured.
	if err := container.Provide(func(cfg *config.Config) (vetting.WhoisLookup, error) {
		p := cfg.GetProviders()
		return providers.NewWhois(p.WhoisSource, p.WhoisAPIKey, p.Timeout)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config) vetting.PageRankLookup {
		p := cfg.GetProviders()
		if p.PageRankAPIKey == "" {
			return nil
		}
		return providers.NewPageRank(p.PageRankAPIKey, p.Timeout)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config) vetting.SafeBrowsingLookup {
		p := cfg.GetProviders()
		if p.SafeBrowsingAPIKey == "" {
			return nil
		}
		return providers.NewSafeBrowsing(p.SafeBrowsingAPIKey, p.Timeout)
	}); err != nil {
		return nil, err
	}

	// Register LLM client
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (vetting.Completer, error) {
		return ai.NewCompleter(context.Background(), cfg, logger)
	}); err != nil {
		return nil, err
	}

	// Register pipeline stages
	if err := container.Provide(func(cfg *config.Config, chrome *browser.Chrome, logger *zap.Logger) *vetting.PrivacyResolver {
		p := cfg.GetPrivacy()
		return vetting.NewPrivacyResolver(chrome, p.FetchTimeout, p.SnippetLength, p.MaxTextLength, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(
		cfg *config.Config,
		whois vetting.WhoisLookup,
		pageRank vetting.PageRankLookup,
		safeBrowsing vetting.SafeBrowsingLookup,
		logger *zap.Logger,
	) *vetting.Enricher {
		return vetting.NewEnricher(whois, pageRank, safeBrowsing, cfg.GetProviders().Timeout, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config, completer vetting.Completer, logger *zap.Logger) *vetting.Assessor {
		return vetting.NewAssessor(completer, cfg.GetLLM().Timeout, logger)
	}); err != nil {
		return nil, err
	}

	// Register analyzer
	if err := container.Provide(func(
		chrome *browser.Chrome,
		resolver *vetting.PrivacyResolver,
		enricher *vetting.Enricher,
		assessor *vetting.Assessor,
		logger *zap.Logger,
	) *vetting.Analyzer {
		return vetting.NewAnalyzer(chrome, resolver, enricher, assessor, logger)
	}); err != nil {
		return nil, err
	}

	// Register HTTP router
	if err := container.Provide(func(cfg *config.Config, analyzer *vetting.Analyzer, logger *zap.Logger) *gin.Engine {
		s := cfg.GetServer()
		return vetting.NewRouter(analyzer.Analyze, vetting.HandlerOptions{
			AllowedOrigins: s.AllowedOrigins,
			RateLimit:      s.RateLimit,
			RateBurst:      s.RateBurst,
		}, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
