package bureau

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/creditx/creditx-server/internal/config"
	domain "github.com/creditx/creditx-server/internal/domain/bureau"
)

// NewProvider builds the configured bureau source behind an LRU cache.
func NewProvider(cfg *config.Config, log zerolog.Logger) (domain.Provider, error) {
	var source domain.Provider
	switch cfg.BureauSource {
	case "file":
		fp, err := LoadFile(cfg.BureauFile, cfg.BureauName)
		if err != nil {
			return nil, err
		}
		log.Info().Str("bureau", cfg.BureauName).Int("records", fp.Len()).Msg("bureau dataset loaded")
		source = fp
	case "http":
		source = NewHTTPProvider(cfg.BureauURL, cfg.BureauAPIKey, cfg.BureauName, cfg.BureauTimeout)
		log.Info().Str("bureau", cfg.BureauName).Str("url", cfg.BureauURL).Msg("bureau client configured")
	default:
		return nil, fmt.Errorf("unsupported BUREAU_SOURCE %q", cfg.BureauSource)
	}

	if cfg.BureauCacheSize <= 0 {
		return source, nil
	}
	return NewCachedProvider(source, cfg.BureauCacheSize, cfg.BureauCacheTTL)
}
