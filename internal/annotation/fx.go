package annotation

import (
	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/directdebit/internal/annotation/cache"
	"github.com/railzwaylabs/directdebit/internal/annotation/domain"
	"github.com/railzwaylabs/directdebit/internal/annotation/repository"
	"github.com/railzwaylabs/directdebit/internal/clock"
	"github.com/railzwaylabs/directdebit/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("annotation",
	fx.Provide(NewStore),
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Node  *snowflake.Node
	Clock clock.Clock
	Redis *redis.Client `optional:"true"`
	Cfg   config.Config
	Log   *zap.Logger
}

func NewStore(p Params) domain.Store {
	store := repository.New(p.DB, p.Node, p.Clock)
	if p.Redis == nil {
		return store
	}
	return cache.New(store, p.Redis, p.Cfg.Annotation.CacheTTL, p.Log)
}
