package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterDBTracing attaches the otelgorm plugin so repository calls emit
// child spans under the active request trace. Query variables are excluded
// from the recorded statements.
func RegisterDBTracing(db *gorm.DB, dbName string, log *zap.Logger) error {
	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName(dbName),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return err
	}
	log.Info("database tracing enabled", zap.String("db_name", dbName))
	return nil
}
