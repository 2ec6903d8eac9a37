package cars

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/davidcalleja/garagebook-backend/pkg/db/models"
	"github.com/davidcalleja/garagebook-backend/pkg/enums"
	"github.com/davidcalleja/garagebook-backend/pkg/money"
	"github.com/davidcalleja/garagebook-backend/pkg/pagination"
)

func setupCarsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	garages := `
CREATE TABLE IF NOT EXISTS garages (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  has_partner INTEGER NOT NULL DEFAULT 0,
  partner_name TEXT,
  partner_split_ratio INTEGER,
  partner_email TEXT,
  partner_phone TEXT,
  partner_notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	cars := `
CREATE TABLE IF NOT EXISTS cars (
  id TEXT PRIMARY KEY,
  garage_id TEXT NOT NULL,
  name TEXT NOT NULL,
  year INTEGER NOT NULL DEFAULT 0,
  plate_number TEXT,
  mileage INTEGER,
  purchase_date DATETIME,
  notes TEXT,
  status TEXT NOT NULL DEFAULT 'available',
  sale_price_cents INTEGER,
  sale_total_profit_cents INTEGER,
  sale_you_receive_cents INTEGER,
  sale_partner_receives_cents INTEGER,
  sold_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	expenses := `
CREATE TABLE IF NOT EXISTS expenses (
  id TEXT PRIMARY KEY,
  car_id TEXT NOT NULL,
  description TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  category TEXT NOT NULL DEFAULT '',
  date DATETIME NOT NULL,
  paid_by TEXT NOT NULL DEFAULT 'you',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(garages).Error)
	require.NoError(t, db.Exec(cars).Error)
	require.NoError(t, db.Exec(expenses).Error)
	return db
}

func newGarageRow(t *testing.T, db *gorm.DB) *models.Garage {
	t.Helper()

	garage := &models.Garage{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Name:    "Test Garage",
	}
	require.NoError(t, db.Create(garage).Error)
	return garage
}

func newCarRow(t *testing.T, db *gorm.DB, garageID uuid.UUID, name string, createdAt time.Time) *models.Car {
	t.Helper()

	car := &models.Car{
		ID:        uuid.New(),
		GarageID:  garageID,
		Name:      name,
		Status:    enums.CarStatusAvailable,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(car).Error)
	return car
}

func newExpenseRow(t *testing.T, db *gorm.DB, carID uuid.UUID, amount money.Cents, paidBy enums.ExpensePayer, date time.Time) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		ID:          uuid.New(),
		CarID:       carID,
		Description: "work",
		AmountCents: amount,
		Date:        date,
		PaidBy:      paidBy,
	}
	require.NoError(t, db.Create(expense).Error)
	return expense
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupCarsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	garage := newGarageRow(t, db)

	plate := "ABC-123"
	car := &models.Car{
		ID:          uuid.New(),
		GarageID:    garage.ID,
		Name:        "Golf GTI",
		Year:        2015,
		PlateNumber: &plate,
		Status:      enums.CarStatusAvailable,
	}
	require.NoError(t, repo.Create(ctx, car))

	got, err := repo.FindByID(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, "Golf GTI", got.Name)
	assert.Equal(t, 2015, got.Year)
	require.NotNil(t, got.PlateNumber)
	assert.Equal(t, plate, *got.PlateNumber)
	assert.Equal(t, enums.CarStatusAvailable, got.Status)
}

func TestRepositoryListByGarageNewestFirst(t *testing.T) {
	db := setupCarsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	garage := newGarageRow(t, db)
	other := newGarageRow(t, db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	older := newCarRow(t, db, garage.ID, "Older", base)
	newer := newCarRow(t, db, garage.ID, "Newer", base.Add(time.Hour))
	newCarRow(t, db, other.ID, "Elsewhere", base)

	cars, next, err := repo.ListByGarage(ctx, garage.ID, nil, 0)
	require.NoError(t, err)
	require.Len(t, cars, 2)
	require.Nil(t, next)
	assert.Equal(t, newer.ID, cars[0].ID)
	assert.Equal(t, older.ID, cars[1].ID)
}

func TestRepositoryListByGaragePaginates(t *testing.T) {
	db := setupCarsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	garage := newGarageRow(t, db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := newCarRow(t, db, garage.ID, "First", base.Add(2*time.Hour))
	second := newCarRow(t, db, garage.ID, "Second", base.Add(time.Hour))
	third := newCarRow(t, db, garage.ID, "Third", base)

	page, next, err := repo.ListByGarage(ctx, garage.ID, nil, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotNil(t, next)
	assert.Equal(t, first.ID, page[0].ID)
	assert.Equal(t, second.ID, page[1].ID)

	rest, last, err := repo.ListByGarage(ctx, garage.ID, next, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	require.Nil(t, last)
	assert.Equal(t, third.ID, rest[0].ID)
}

func TestRepositoryListByGarageWalksEveryRow(t *testing.T) {
	db := setupCarsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	garage := newGarageRow(t, db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	want := make([]uuid.UUID, 0, 5)
	for i := 0; i < 5; i++ {
		car := newCarRow(t, db, garage.ID, fmt.Sprintf("Car %d", i), base.Add(-time.Duration(i)*time.Hour))
		want = append(want, car.ID)
	}

	// Every row must come back exactly once across page boundaries.
	var got []uuid.UUID
	var cursor *pagination.Cursor
	for pages := 0; ; pages++ {
		require.Less(t, pages, 10, "pagination did not terminate")
		page, next, err := repo.ListByGarage(ctx, garage.ID, cursor, 2)
		require.NoError(t, err)
		for _, car := range page {
			got = append(got, car.ID)
		}
		if next == nil {
			break
		}
		cursor = next
	}
	assert.Equal(t, want, got)
}

func TestRepositoryDeleteCascadeRemovesLedger(t *testing.T) {
	db := setupCarsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	garage := newGarageRow(t, db)

	now := time.Now().UTC()
	car := newCarRow(t, db, garage.ID, "Doomed", now)
	newExpenseRow(t, db, car.ID, 5000, enums.ExpensePayerYou, now)
	newExpenseRow(t, db, car.ID, 2500, enums.ExpensePayerYou, now)
	survivor := newCarRow(t, db, garage.ID, "Survivor", now)
	keptExpense := newExpenseRow(t, db, survivor.ID, 900, enums.ExpensePayerYou, now)

	require.NoError(t, repo.DeleteCascade(ctx, car.ID))

	_, err := repo.FindByID(ctx, car.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var orphaned int64
	require.NoError(t, db.Model(&models.Expense{}).Where("car_id = ?", car.ID).Count(&orphaned).Error)
	assert.Zero(t, orphaned)

	kept, err := repo.FindExpenseByID(ctx, keptExpense.ID)
	require.NoError(t, err)
	assert.Equal(t, survivor.ID, kept.CarID)
}

func TestRepositoryCountByGarage(t *testing.T) {
	db := setupCarsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	garage := newGarageRow(t, db)

	now := time.Now().UTC()
	newCarRow(t, db, garage.ID, "One", now)
	newCarRow(t, db, garage.ID, "Two", now)

	count, err := repo.CountByGarage(ctx, garage.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	empty, err := repo.CountByGarage(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, empty)
}

func TestRepositorySumExpenses(t *testing.T) {
	db := setupCarsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	garage := newGarageRow(t, db)

	now := time.Now().UTC()
	car := newCarRow(t, db, garage.ID, "Summed", now)
	newExpenseRow(t, db, car.ID, 10000, enums.ExpensePayerYou, now)
	newExpenseRow(t, db, car.ID, 2500, enums.ExpensePayerPartner, now)

	total, err := repo.SumExpenses(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(12500), total)

	zero, err := repo.SumExpenses(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, zero)
}

func TestRepositorySumExpensesByPayer(t *testing.T) {
	db := setupCarsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	garage := newGarageRow(t, db)

	now := time.Now().UTC()
	car := newCarRow(t, db, garage.ID, "Split", now)
	newExpenseRow(t, db, car.ID, 30000, enums.ExpensePayerYou, now)
	newExpenseRow(t, db, car.ID, 15000, enums.ExpensePayerYou, now)
	newExpenseRow(t, db, car.ID, 20000, enums.ExpensePayerPartner, now)

	owner, partner, err := repo.SumExpensesByPayer(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(45000), owner)
	assert.Equal(t, money.Cents(20000), partner)
}

func TestRepositorySumExpensesByCar(t *testing.T) {
	db := setupCarsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	garage := newGarageRow(t, db)

	now := time.Now().UTC()
	first := newCarRow(t, db, garage.ID, "First", now)
	second := newCarRow(t, db, garage.ID, "Second", now)
	bare := newCarRow(t, db, garage.ID, "Bare", now)
	newExpenseRow(t, db, first.ID, 1000, enums.ExpensePayerYou, now)
	newExpenseRow(t, db, first.ID, 500, enums.ExpensePayerYou, now)
	newExpenseRow(t, db, second.ID, 700, enums.ExpensePayerPartner, now)

	totals, err := repo.SumExpensesByCar(ctx, garage.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(1500), totals[first.ID])
	assert.Equal(t, money.Cents(700), totals[second.ID])
	_, ok := totals[bare.ID]
	assert.False(t, ok)
}

func TestRepositoryListExpensesByDate(t *testing.T) {
	db := setupCarsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	garage := newGarageRow(t, db)

	now := time.Now().UTC()
	car := newCarRow(t, db, garage.ID, "Ordered", now)
	later := newExpenseRow(t, db, car.ID, 100, enums.ExpensePayerYou, now)
	earlier := newExpenseRow(t, db, car.ID, 200, enums.ExpensePayerYou, now.Add(-48*time.Hour))

	got, err := repo.ListExpenses(ctx, car.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, earlier.ID, got[0].ID)
	assert.Equal(t, later.ID, got[1].ID)
}
