package ai

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"linkscout/config"
	"linkscout/vetting"
)

// NewCompleter builds the configured provider. It returns nil, without an
// error, when assessment is disabled or the provider has no credentials.
func NewCompleter(ctx context.Context, cfg *config.Config, logger *zap.Logger) (vetting.Completer, error) {
	llm := cfg.GetLLM()

	switch strings.ToLower(llm.Provider) {
	case "", "none":
		logger.Info("model assessment disabled")
		return nil, nil

	case "gemini":
		g := cfg.GetGemini()
		if g.APIKey == "" {
			logger.Warn("gemini api key not set, model assessment disabled")
			return nil, nil
		}
		gem, err := NewGemini(ctx, g.APIKey, g.ModelName, llm.Temperature, llm.MaxTokens, logger)
		if err != nil {
			return nil, err
		}
		return gem, nil

	case "openai":
		o := cfg.GetOpenAI()
		if o.APIKey == "" {
			logger.Warn("openai api key not set, model assessment disabled")
			return nil, nil
		}
		return NewOpenAI(o.APIKey, "", o.ModelName, llm.Temperature, llm.MaxTokens, logger), nil

	case "bedrock":
		b := cfg.GetBedrock()
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(b.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
		}
		return NewBedrock(bedrockruntime.NewFromConfig(awsCfg), b.ModelID, llm.Temperature, llm.MaxTokens, logger), nil
	}

	return nil, fmt.Errorf("unsupported llm provider: %s", llm.Provider)
}
