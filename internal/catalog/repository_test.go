package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vittoria-dev/menu-engine/pkg/db/models"
	"github.com/vittoria-dev/menu-engine/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Category{},
		&models.Size{},
		&models.Ingredient{},
		&models.IngredientSizePrice{},
		&models.MenuItem{},
		&models.MenuItemSize{},
		&models.MenuItemIncludedIngredient{},
		&models.MenuItemExtraIngredient{},
		&models.MenuItemRecommendedIngredient{},
	))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type fixture struct {
	category   models.Category
	item       models.MenuItem
	sizeSmall  models.Size
	sizeLarge  models.Size
	mozzarella models.Ingredient
	mushroom   models.Ingredient
}

func seedPizza(t *testing.T, db *gorm.DB) fixture {
	t.Helper()

	f := fixture{
		category:   models.Category{ID: uuid.New(), Name: "Pizze", AllowsSplit: true, IsActive: true},
		sizeSmall:  models.Size{ID: uuid.New(), Name: "Normale", SortOrder: 1},
		sizeLarge:  models.Size{ID: uuid.New(), Name: "Maxi", SortOrder: 2},
		mozzarella: models.Ingredient{ID: uuid.New(), Name: "Mozzarella", IsActive: true},
		mushroom:   models.Ingredient{ID: uuid.New(), Name: "Funghi", IsActive: true},
	}
	require.NoError(t, db.Create(&f.category).Error)
	require.NoError(t, db.Create(&f.sizeSmall).Error)
	require.NoError(t, db.Create(&f.sizeLarge).Error)
	require.NoError(t, db.Create(&f.mozzarella).Error)
	require.NoError(t, db.Create(&f.mushroom).Error)

	f.item = models.MenuItem{
		ID:                 uuid.New(),
		CategoryID:         f.category.ID,
		Name:               "Margherita",
		BasePrice:          decimal.RequireFromString("6.50"),
		AllowSizeSelection: true,
		AllowIngredients:   true,
		IsActive:           true,
	}
	require.NoError(t, db.Create(&f.item).Error)

	override := decimal.RequireFromString("11.00")
	require.NoError(t, db.Create(&models.MenuItemSize{
		ID: uuid.New(), MenuItemID: f.item.ID, SizeID: f.sizeSmall.ID,
		PriceMultiplier: 1.0, IsDefault: true, AllowsSplit: true, Position: 1,
	}).Error)
	require.NoError(t, db.Create(&models.MenuItemSize{
		ID: uuid.New(), MenuItemID: f.item.ID, SizeID: f.sizeLarge.ID,
		PriceMultiplier: 1.5, PriceOverride: &override, AllowsSplit: false, Position: 2,
	}).Error)

	require.NoError(t, db.Create(&models.MenuItemIncludedIngredient{
		ID: uuid.New(), MenuItemID: f.item.ID, IngredientID: f.mozzarella.ID, Position: 1,
	}).Error)
	require.NoError(t, db.Create(&models.MenuItemExtraIngredient{
		ID: uuid.New(), MenuItemID: f.item.ID, IngredientID: f.mushroom.ID,
		DefaultPrice: decimal.RequireFromString("1.50"), Position: 1,
	}).Error)
	require.NoError(t, db.Create(&models.IngredientSizePrice{
		ID: uuid.New(), IngredientID: f.mushroom.ID, SizeID: f.sizeLarge.ID,
		Price: decimal.RequireFromString("2.00"),
	}).Error)
	require.NoError(t, db.Create(&models.MenuItemRecommendedIngredient{
		ID: uuid.New(), MenuItemID: f.item.ID, IngredientID: f.mushroom.ID, Position: 1,
	}).Error)

	return f
}

func TestRepositoryGetProduct(t *testing.T) {
	db := newTestDB(t)
	f := seedPizza(t, db)
	repo := NewRepository(db)

	product, err := repo.GetProduct(context.Background(), f.item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Margherita", product.Name)
	assert.True(t, product.AllowSizeSelection)
	assert.True(t, product.CategoryAllowsSplit)
	assert.True(t, product.BasePrice.Equal(decimal.RequireFromString("6.50")))
}

func TestRepositoryGetProductNotFound(t *testing.T) {
	db := newTestDB(t)
	seedPizza(t, db)
	repo := NewRepository(db)

	_, err := repo.GetProduct(context.Background(), uuid.New())
	require.Error(t, err)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeNotFound, appErr.Code())
}

func TestRepositoryGetProductInactive(t *testing.T) {
	db := newTestDB(t)
	f := seedPizza(t, db)
	require.NoError(t, db.Model(&models.MenuItem{}).Where("id = ?", f.item.ID).Update("is_active", false).Error)
	repo := NewRepository(db)

	_, err := repo.GetProduct(context.Background(), f.item.ID)
	require.Error(t, err)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeNotFound, appErr.Code())
}

func TestRepositoryGetSizesOrderedWithNames(t *testing.T) {
	db := newTestDB(t)
	f := seedPizza(t, db)
	repo := NewRepository(db)

	sizes, err := repo.GetSizes(context.Background(), f.item.ID)
	require.NoError(t, err)
	require.Len(t, sizes, 2)
	assert.Equal(t, "Normale", sizes[0].Name)
	assert.True(t, sizes[0].IsDefault)
	assert.True(t, sizes[0].AllowsSplit)
	assert.Nil(t, sizes[0].PriceOverride)
	assert.Equal(t, "Maxi", sizes[1].Name)
	require.NotNil(t, sizes[1].PriceOverride)
	assert.True(t, sizes[1].PriceOverride.Equal(decimal.RequireFromString("11.00")))
}

func TestRepositoryGetExtraIngredientsFoldsSizePrices(t *testing.T) {
	db := newTestDB(t)
	f := seedPizza(t, db)
	repo := NewRepository(db)

	extras, err := repo.GetExtraIngredients(context.Background(), f.item.ID)
	require.NoError(t, err)
	require.Len(t, extras, 1)
	assert.Equal(t, "Funghi", extras[0].Name)
	assert.True(t, extras[0].DefaultPrice.Equal(decimal.RequireFromString("1.50")))
	require.Contains(t, extras[0].SizePrices, f.sizeLarge.ID)
	assert.True(t, extras[0].SizePrices[f.sizeLarge.ID].Equal(decimal.RequireFromString("2.00")))
	assert.NotContains(t, extras[0].SizePrices, f.sizeSmall.ID)
}

func TestRepositoryGetIncludedIngredients(t *testing.T) {
	db := newTestDB(t)
	f := seedPizza(t, db)
	repo := NewRepository(db)

	included, err := repo.GetIncludedIngredients(context.Background(), f.item.ID)
	require.NoError(t, err)
	require.Len(t, included, 1)
	assert.Equal(t, "Mozzarella", included[0].Name)
}

func TestRepositoryGetRecommendedIngredients(t *testing.T) {
	db := newTestDB(t)
	f := seedPizza(t, db)
	repo := NewRepository(db)

	recommended, err := repo.GetRecommendedIngredients(context.Background(), f.item.ID)
	require.NoError(t, err)
	require.Len(t, recommended, 1)
	assert.Equal(t, "Funghi", recommended[0].Name)

	empty, err := repo.GetRecommendedIngredients(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}
