package observability

import (
	"github.com/railzwaylabs/directdebit/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger: JSON on stdout in production, a
// development console encoder otherwise.
func NewLogger(cfg config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.TimeKey = "ts"
		zcfg.EncoderConfig.MessageKey = "msg"
		zcfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
		zcfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.OutputPaths = []string{"stdout"}
	zcfg.ErrorOutputPaths = []string{"stdout"}
	zcfg.InitialFields = map[string]any{
		"service": ServiceName,
		"env":     cfg.AppEnv,
	}
	return zcfg.Build()
}
