package matcher

import (
	"log/slog"

	"github.com/mcp-scout/mcp-scout/internal/index"
	"github.com/mcp-scout/mcp-scout/internal/nlp"
	"github.com/mcp-scout/mcp-scout/internal/prefs"
	"github.com/mcp-scout/mcp-scout/pkg/config"
	"go.uber.org/fx"
)

func NewMatcher(ix *index.Index, prefStore *prefs.Store, extractor nlp.EntityExtractor, cfg config.MatchingConfig, logger *slog.Logger) *Matcher {
	return New(ix, prefStore, extractor, cfg, logger)
}

var Module = fx.Module("matcher",
	fx.Provide(NewMatcher),
)
