package listing

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"query-sync/core/coordinator"
	"query-sync/core/snapshot"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	db        *gorm.DB
	policy    coordinator.Policy
	snapshots *snapshot.Store
	logger    *zap.Logger

	service *Service
}

// NewFeature creates a new Listing feature. snapshots may be nil to run
// without durable snapshot sharing.
func NewFeature(db *gorm.DB, policy coordinator.Policy, snapshots *snapshot.Store, logger *zap.Logger) *Feature {
	return &Feature{db: db, policy: policy, snapshots: snapshots, logger: logger}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "listing"
}

// IsEnabled checks if the feature is enabled. Listings need a database.
func (f *Feature) IsEnabled() bool {
	return f.db != nil
}

// Load builds the engine stack and registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	svc, err := NewService(f.db, f.policy, f.snapshots, f.logger)
	if err != nil {
		return err
	}
	f.service = svc
	NewHandler(svc).RegisterRoutes(app)
	return nil
}

// Service returns the feature's service once loaded.
func (f *Feature) Service() *Service {
	return f.service
}
