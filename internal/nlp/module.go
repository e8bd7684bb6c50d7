package nlp

import (
	"github.com/mcp-scout/mcp-scout/pkg/config"
	"go.uber.org/fx"
)

func NewEntityExtractor(cfg config.MatchingConfig) EntityExtractor {
	if !cfg.NLPEnabled {
		return NoopExtractor{}
	}
	return NewRegexExtractor()
}

var Module = fx.Module("nlp",
	fx.Provide(NewEntityExtractor),
)
