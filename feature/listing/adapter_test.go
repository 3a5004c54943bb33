package listing

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"query-sync/core/database"
	"query-sync/core/orchestrator"
	"query-sync/feature/listing/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Listing{}))
	return db
}

func seedListings(t *testing.T, db *gorm.DB) {
	t.Helper()
	rows := []models.Listing{
		{ID: 1, Manufacturer: "audi", Model: "a4", BodyStyle: "sedan", Year: 2018, Price: 21000, Mileage: 60000},
		{ID: 2, Manufacturer: "audi", Model: "q5", BodyStyle: "suv", Year: 2021, Price: 38000, Mileage: 20000},
		{ID: 3, Manufacturer: "bmw", Model: "320i", BodyStyle: "sedan", Year: 2019, Price: 27000, Mileage: 45000},
		{ID: 4, Manufacturer: "bmw", Model: "x3", BodyStyle: "suv", Year: 2022, Price: 45000, Mileage: 8000},
		{ID: 5, Manufacturer: "toyota", Model: "corolla", BodyStyle: "sedan", Year: 2020, Price: 19000, Mileage: 30000},
	}
	require.NoError(t, db.Create(&rows).Error)
}

func TestFetchReturnsPageAndTotal(t *testing.T) {
	db := testDB(t)
	seedListings(t, db)
	adapter := NewAdapter(db, nil)

	f, overlay := DeriveFilters(nil)
	f.PageSize = 2

	result, err := adapter.Fetch(context.Background(), f, overlay)
	assert.NoError(t, err)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, int64(5), result.TotalCount)
	assert.Equal(t, uint64(1), result.Items[0].ID)
	assert.Equal(t, uint64(2), result.Items[1].ID)
}

func TestFetchSecondPage(t *testing.T) {
	db := testDB(t)
	seedListings(t, db)
	adapter := NewAdapter(db, nil)

	f, _ := DeriveFilters(nil)
	f.Page = 3
	f.PageSize = 2

	result, err := adapter.Fetch(context.Background(), f, nil)
	assert.NoError(t, err)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, uint64(5), result.Items[0].ID)
	assert.Equal(t, int64(5), result.TotalCount)
}

func TestFetchAppliesFilters(t *testing.T) {
	db := testDB(t)
	seedListings(t, db)
	adapter := NewAdapter(db, nil)

	f, _ := DeriveFilters(nil)
	f.Manufacturer = []string{"audi", "bmw"}
	f.BodyStyle = "suv"
	f.PriceMax = 40000

	result, err := adapter.Fetch(context.Background(), f, nil)
	assert.NoError(t, err)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, "q5", result.Items[0].Model)
	assert.Equal(t, int64(1), result.TotalCount)
}

func TestFetchSortsDescending(t *testing.T) {
	db := testDB(t)
	seedListings(t, db)
	adapter := NewAdapter(db, nil)

	f, _ := DeriveFilters(nil)
	f.Sort = "price"
	f.Order = "desc"

	result, err := adapter.Fetch(context.Background(), f, nil)
	assert.NoError(t, err)
	require.Len(t, result.Items, 5)
	assert.Equal(t, "x3", result.Items[0].Model)
	assert.Equal(t, "corolla", result.Items[4].Model)
}

func TestFetchSearchMatchesManufacturerAndModel(t *testing.T) {
	db := testDB(t)
	seedListings(t, db)
	adapter := NewAdapter(db, nil)

	f, _ := DeriveFilters(nil)
	f.Search = "corolla"

	result, err := adapter.Fetch(context.Background(), f, nil)
	assert.NoError(t, err)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, "toyota", result.Items[0].Manufacturer)
}

func TestFetchOverlaySegments(t *testing.T) {
	db := testDB(t)
	seedListings(t, db)
	adapter := NewAdapter(db, nil)

	f, _ := DeriveFilters(nil)
	overlay := orchestrator.Overlay{
		"manufacturer": "audi,bmw",
		"body_style":   "suv",
	}

	result, err := adapter.Fetch(context.Background(), f, overlay)
	assert.NoError(t, err)
	assert.Equal(t, orchestrator.Segment{Matching: 4, Total: 5}, result.Statistics["manufacturer"])
	assert.Equal(t, orchestrator.Segment{Matching: 2, Total: 5}, result.Statistics["body_style"])
}

func TestFetchOverlaySegmentsUnderFilter(t *testing.T) {
	db := testDB(t)
	seedListings(t, db)
	adapter := NewAdapter(db, nil)

	// Segments count within the filtered set, not the whole table.
	f, _ := DeriveFilters(nil)
	f.BodyStyle = "sedan"

	result, err := adapter.Fetch(context.Background(), f, orchestrator.Overlay{"manufacturer": "bmw"})
	assert.NoError(t, err)
	assert.Equal(t, orchestrator.Segment{Matching: 1, Total: 3}, result.Statistics["manufacturer"])
}

func TestFetchIgnoresUnknownOverlayColumns(t *testing.T) {
	db := testDB(t)
	seedListings(t, db)
	adapter := NewAdapter(db, nil)

	f, _ := DeriveFilters(nil)

	result, err := adapter.Fetch(context.Background(), f, orchestrator.Overlay{"password": "x"})
	assert.NoError(t, err)
	assert.Empty(t, result.Statistics)
}

func TestFetchEmptyResultKeepsItemsNonNil(t *testing.T) {
	db := testDB(t)
	adapter := NewAdapter(db, nil)

	f, _ := DeriveFilters(nil)

	result, err := adapter.Fetch(context.Background(), f, nil)
	assert.NoError(t, err)
	assert.NotNil(t, result.Items)
	assert.Empty(t, result.Items)
	assert.Zero(t, result.TotalCount)
}

func TestFetchPropagatesQueryErrors(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(".*").WillReturnError(assert.AnError)
	mock.ExpectQuery(".*").WillReturnError(assert.AnError)

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	adapter := NewAdapter(db, nil)
	f, _ := DeriveFilters(nil)

	_, fetchErr := adapter.Fetch(context.Background(), f, nil)
	assert.Error(t, fetchErr)
}
