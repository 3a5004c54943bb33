package listing

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"query-sync/core/orchestrator"
	"query-sync/feature/listing/models"
)

// overlayColumns whitelists the columns an overlay key may segment by.
var overlayColumns = map[string]string{
	"manufacturer": "manufacturer",
	"model":        "model",
	"body_style":   "body_style",
	"year":         "year",
}

// Adapter is the gorm-backed fetch adapter: it loads one page of listings,
// the total count, and overlay-segmented statistics for a filter state.
type Adapter struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewAdapter creates an adapter on the given connection.
func NewAdapter(db *gorm.DB, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{db: db, logger: logger}
}

// Fetch resolves the page, count and statistics queries concurrently and
// assembles the result. Errors surface as a rejected fetch; the coordinator
// decides whether to retry.
func (a *Adapter) Fetch(ctx context.Context, f Filters, overlay orchestrator.Overlay) (orchestrator.Result[models.Listing], error) {
	var (
		items []models.Listing
		total int64
		stats = orchestrator.Statistics{}
		mu    sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		q := a.filtered(gctx, f).
			Order(fmt.Sprintf("%s %s", f.Sort, f.Order)).
			Limit(f.PageSize).
			Offset((f.Page - 1) * f.PageSize)
		if err := q.Find(&items).Error; err != nil {
			return fmt.Errorf("failed to load listings page: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := a.filtered(gctx, f).Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count listings: %w", err)
		}
		return nil
	})

	for key, value := range overlay {
		column, ok := overlayColumns[key]
		if !ok {
			a.logger.Debug("ignoring unknown overlay key", zap.String("key", key))
			continue
		}
		key, value := key, value
		g.Go(func() error {
			segment, err := a.segment(gctx, f, column, value)
			if err != nil {
				return err
			}
			mu.Lock()
			stats[key] = segment
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return orchestrator.Result[models.Listing]{}, err
	}

	if items == nil {
		items = []models.Listing{}
	}
	return orchestrator.Result[models.Listing]{
		Items:      items,
		TotalCount: total,
		Statistics: stats,
	}, nil
}

// segment counts how many rows of the filtered set match one overlay
// constraint, alongside the filtered total.
func (a *Adapter) segment(ctx context.Context, f Filters, column, value string) (orchestrator.Segment, error) {
	var matching, total int64

	values := strings.Split(value, ",")
	q := a.filtered(ctx, f).Where(column+" IN ?", values)
	if err := q.Count(&matching).Error; err != nil {
		return orchestrator.Segment{}, fmt.Errorf("failed to count overlay segment %q: %w", column, err)
	}
	if err := a.filtered(ctx, f).Count(&total).Error; err != nil {
		return orchestrator.Segment{}, fmt.Errorf("failed to count overlay total %q: %w", column, err)
	}
	return orchestrator.Segment{Matching: matching, Total: total}, nil
}

// filtered builds a fresh query for the filter state. A new builder per
// call keeps the concurrent goroutines from sharing gorm statements.
func (a *Adapter) filtered(ctx context.Context, f Filters) *gorm.DB {
	q := a.db.WithContext(ctx).Model(&models.Listing{})

	if len(f.Manufacturer) > 0 {
		q = q.Where("manufacturer IN ?", f.Manufacturer)
	}
	if f.Model != "" {
		q = q.Where("model = ?", f.Model)
	}
	if f.BodyStyle != "" {
		q = q.Where("body_style = ?", f.BodyStyle)
	}
	if f.YearFrom > 0 {
		q = q.Where("year >= ?", f.YearFrom)
	}
	if f.YearTo > 0 {
		q = q.Where("year <= ?", f.YearTo)
	}
	if f.PriceMax > 0 {
		q = q.Where("price <= ?", f.PriceMax)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("manufacturer LIKE ? OR model LIKE ?", like, like)
	}
	return q
}
