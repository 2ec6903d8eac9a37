package cars

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidcalleja/garagebook-backend/internal/sales"
	"github.com/davidcalleja/garagebook-backend/pkg/db/models"
	"github.com/davidcalleja/garagebook-backend/pkg/enums"
	pkgerrors "github.com/davidcalleja/garagebook-backend/pkg/errors"
	"github.com/davidcalleja/garagebook-backend/pkg/money"
	"github.com/davidcalleja/garagebook-backend/pkg/pagination"
)

type carRepository interface {
	Create(ctx context.Context, car *models.Car) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Car, error)
	ListByGarage(ctx context.Context, garageID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Car, *pagination.Cursor, error)
	Update(ctx context.Context, car *models.Car) error
	DeleteCascade(ctx context.Context, carID uuid.UUID) error
	CreateExpense(ctx context.Context, expense *models.Expense) error
	FindExpenseByID(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, id uuid.UUID) error
	ListExpenses(ctx context.Context, carID uuid.UUID) ([]models.Expense, error)
	SumExpenses(ctx context.Context, carID uuid.UUID) (money.Cents, error)
	SumExpensesByPayer(ctx context.Context, carID uuid.UUID) (owner, partner money.Cents, err error)
	SumExpensesByCar(ctx context.Context, garageID uuid.UUID) (map[uuid.UUID]money.Cents, error)
}

type garagesRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Garage, error)
}

type membershipsRepository interface {
	GetMember(ctx context.Context, garageID, userID uuid.UUID) (*models.GarageMember, error)
}

type entitlementChecker interface {
	CheckCreate(ctx context.Context, userID uuid.UUID, kind enums.LimitedResource) error
}

// CreateCarInput captures creation-time car data.
type CreateCarInput struct {
	Name         string
	Year         int
	PlateNumber  *string
	Mileage      *int64
	PurchaseDate *time.Time
	Notes        *string
}

// UpdateCarInput is the car detail patch. Status moves through SetStatus,
// Sell and CancelSale, never through here.
type UpdateCarInput struct {
	Name         *string
	Year         *int
	PlateNumber  *string
	Mileage      *int64
	PurchaseDate *time.Time
	Notes        *string
}

// ListCarsParams carries cursor pagination for the inventory listing.
type ListCarsParams struct {
	Limit  int
	Cursor string
}

// CarList is one page of cars plus the cursor for the next page.
type CarList struct {
	Cars       []CarDTO `json:"cars"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

// ExpenseInput is one ledger entry as submitted.
type ExpenseInput struct {
	Description string
	AmountCents money.Cents
	Category    string
	Date        time.Time
	PaidBy      enums.ExpensePayer
}

// Service exposes the car lifecycle and its expense ledger.
type Service interface {
	Create(ctx context.Context, userID, garageID uuid.UUID, input CreateCarInput) (*CarDTO, error)
	Get(ctx context.Context, userID, garageID, carID uuid.UUID) (*CarDTO, error)
	List(ctx context.Context, userID, garageID uuid.UUID, page ListCarsParams) (*CarList, error)
	Update(ctx context.Context, userID, garageID, carID uuid.UUID, input UpdateCarInput) (*CarDTO, error)
	Delete(ctx context.Context, userID, garageID, carID uuid.UUID) error
	SetStatus(ctx context.Context, userID, garageID, carID uuid.UUID, status enums.CarStatus) (*CarDTO, error)
	Sell(ctx context.Context, userID, garageID, carID uuid.UUID, salePrice money.Cents) (*CarDTO, error)
	CancelSale(ctx context.Context, userID, garageID, carID uuid.UUID) (*CarDTO, error)
	ListExpenses(ctx context.Context, userID, garageID, carID uuid.UUID) ([]ExpenseDTO, error)
	AddExpense(ctx context.Context, userID, garageID, carID uuid.UUID, input ExpenseInput) (*ExpenseDTO, error)
	UpdateExpense(ctx context.Context, userID, garageID, carID, expenseID uuid.UUID, input ExpenseInput) (*ExpenseDTO, error)
	DeleteExpense(ctx context.Context, userID, garageID, carID, expenseID uuid.UUID) error
}

type service struct {
	repo         carRepository
	garages      garagesRepository
	members      membershipsRepository
	entitlements entitlementChecker
}

// ServiceParams bundles the dependencies required to build the car service.
type ServiceParams struct {
	Repo         carRepository
	Garages      garagesRepository
	Members      membershipsRepository
	Entitlements entitlementChecker
}

// NewService constructs a car service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("car repository is required")
	}
	if params.Garages == nil {
		return nil, fmt.Errorf("garages repository is required")
	}
	if params.Members == nil {
		return nil, fmt.Errorf("memberships repository is required")
	}
	if params.Entitlements == nil {
		return nil, fmt.Errorf("entitlement checker is required")
	}
	return &service{
		repo:         params.Repo,
		garages:      params.Garages,
		members:      params.Members,
		entitlements: params.Entitlements,
	}, nil
}

func (s *service) Create(ctx context.Context, userID, garageID uuid.UUID, input CreateCarInput) (*CarDTO, error) {
	garage, _, err := s.authorize(ctx, garageID, userID, permission("add cars", func(p models.PermissionSet) bool { return p.CanAddCars }))
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid car input").
			WithDetails([]string{"name must not be empty"})
	}

	if err := s.entitlements.CheckCreate(ctx, garage.OwnerID, enums.LimitedResourceCars); err != nil {
		return nil, err
	}

	car := &models.Car{
		GarageID:     garageID,
		Name:         strings.TrimSpace(input.Name),
		Year:         input.Year,
		PlateNumber:  input.PlateNumber,
		Mileage:      input.Mileage,
		PurchaseDate: input.PurchaseDate,
		Notes:        input.Notes,
		Status:       enums.CarStatusAvailable,
	}
	if err := s.repo.Create(ctx, car); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create car")
	}
	return FromModel(car, 0), nil
}

func (s *service) Get(ctx context.Context, userID, garageID, carID uuid.UUID) (*CarDTO, error) {
	if _, _, err := s.authorize(ctx, garageID, userID, anyMember()); err != nil {
		return nil, err
	}
	car, err := s.loadCar(ctx, garageID, carID)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.SumExpenses(ctx, carID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum expenses")
	}
	return FromModel(car, total), nil
}

func (s *service) List(ctx context.Context, userID, garageID uuid.UUID, page ListCarsParams) (*CarList, error) {
	if _, _, err := s.authorize(ctx, garageID, userID, anyMember()); err != nil {
		return nil, err
	}
	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	cars, next, err := s.repo.ListByGarage(ctx, garageID, cursor, page.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cars")
	}
	totals, err := s.repo.SumExpensesByCar(ctx, garageID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum expenses")
	}
	dtos := make([]CarDTO, 0, len(cars))
	for i := range cars {
		dtos = append(dtos, *FromModel(&cars[i], totals[cars[i].ID]))
	}
	list := &CarList{Cars: dtos}
	if next != nil {
		list.NextCursor = pagination.EncodeCursor(*next)
	}
	return list, nil
}

func (s *service) Update(ctx context.Context, userID, garageID, carID uuid.UUID, input UpdateCarInput) (*CarDTO, error) {
	if _, _, err := s.authorize(ctx, garageID, userID, permission("edit cars", func(p models.PermissionSet) bool { return p.CanEditCars })); err != nil {
		return nil, err
	}
	car, err := s.loadCar(ctx, garageID, carID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid car input").
				WithDetails([]string{"name must not be empty"})
		}
		car.Name = strings.TrimSpace(*input.Name)
	}
	if input.Year != nil {
		car.Year = *input.Year
	}
	if input.PlateNumber != nil {
		car.PlateNumber = input.PlateNumber
	}
	if input.Mileage != nil {
		car.Mileage = input.Mileage
	}
	if input.PurchaseDate != nil {
		car.PurchaseDate = input.PurchaseDate
	}
	if input.Notes != nil {
		car.Notes = input.Notes
	}

	if err := s.repo.Update(ctx, car); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update car")
	}
	total, err := s.repo.SumExpenses(ctx, carID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum expenses")
	}
	return FromModel(car, total), nil
}

func (s *service) Delete(ctx context.Context, userID, garageID, carID uuid.UUID) error {
	if _, _, err := s.authorize(ctx, garageID, userID, permission("edit cars", func(p models.PermissionSet) bool { return p.CanEditCars })); err != nil {
		return err
	}
	if _, err := s.loadCar(ctx, garageID, carID); err != nil {
		return err
	}
	if err := s.repo.DeleteCascade(ctx, carID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete car")
	}
	return nil
}

func (s *service) SetStatus(ctx context.Context, userID, garageID, carID uuid.UUID, status enums.CarStatus) (*CarDTO, error) {
	if _, _, err := s.authorize(ctx, garageID, userID, permission("edit cars", func(p models.PermissionSet) bool { return p.CanEditCars })); err != nil {
		return nil, err
	}
	car, err := s.loadCar(ctx, garageID, carID)
	if err != nil {
		return nil, err
	}

	if status != enums.CarStatusAvailable && status != enums.CarStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be available or pending")
	}
	if car.Status == enums.CarStatusSold {
		return nil, errCarAlreadySold()
	}

	car.Status = status
	if err := s.repo.Update(ctx, car); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update car status")
	}
	total, err := s.repo.SumExpenses(ctx, carID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum expenses")
	}
	return FromModel(car, total), nil
}

func (s *service) Sell(ctx context.Context, userID, garageID, carID uuid.UUID, salePrice money.Cents) (*CarDTO, error) {
	garage, _, err := s.authorize(ctx, garageID, userID, permission("sell cars", func(p models.PermissionSet) bool { return p.CanSellCars }))
	if err != nil {
		return nil, err
	}
	car, err := s.loadCar(ctx, garageID, carID)
	if err != nil {
		return nil, err
	}
	if car.Status == enums.CarStatusSold {
		return nil, errCarAlreadySold()
	}
	if salePrice <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale price must be positive")
	}

	ownerCosts, partnerCosts, err := s.repo.SumExpensesByPayer(ctx, carID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum expenses")
	}
	if !garage.HasPartner {
		// Without a partner every cost counts as the owner's, whatever the
		// rows say.
		ownerCosts += partnerCosts
		partnerCosts = 0
	}

	var ownerShare int64
	if garage.HasPartner && garage.PartnerSplitRatio != nil {
		ownerShare = *garage.PartnerSplitRatio
	}
	breakdown, err := sales.Calculate(sales.SaleInput{
		SalePrice:         salePrice,
		OwnerExpenses:     ownerCosts,
		PartnerExpenses:   partnerCosts,
		HasPartner:        garage.HasPartner,
		OwnerSharePercent: ownerShare,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	car.Status = enums.CarStatusSold
	car.SalePriceCents = &salePrice
	car.SaleTotalProfitCents = &breakdown.TotalProfit
	car.SaleYouReceiveCents = &breakdown.YouReceive
	car.SalePartnerReceivesCents = breakdown.PartnerReceives
	car.SoldAt = &now

	if err := s.repo.Update(ctx, car); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record sale")
	}
	return FromModel(car, breakdown.TotalCosts), nil
}

func (s *service) CancelSale(ctx context.Context, userID, garageID, carID uuid.UUID) (*CarDTO, error) {
	if _, _, err := s.authorize(ctx, garageID, userID, permission("sell cars", func(p models.PermissionSet) bool { return p.CanSellCars })); err != nil {
		return nil, err
	}
	car, err := s.loadCar(ctx, garageID, carID)
	if err != nil {
		return nil, err
	}
	if car.Status != enums.CarStatusSold {
		return nil, pkgerrors.StateConflict("car_not_sold", "car is not sold")
	}

	// Reverses the sale completely: the car returns to its pre-sale editable
	// state and the ledger unlocks.
	car.Status = enums.CarStatusAvailable
	car.SalePriceCents = nil
	car.SaleTotalProfitCents = nil
	car.SaleYouReceiveCents = nil
	car.SalePartnerReceivesCents = nil
	car.SoldAt = nil

	if err := s.repo.Update(ctx, car); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel sale")
	}
	total, err := s.repo.SumExpenses(ctx, carID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum expenses")
	}
	return FromModel(car, total), nil
}

func (s *service) ListExpenses(ctx context.Context, userID, garageID, carID uuid.UUID) ([]ExpenseDTO, error) {
	if _, _, err := s.authorize(ctx, garageID, userID, anyMember()); err != nil {
		return nil, err
	}
	if _, err := s.loadCar(ctx, garageID, carID); err != nil {
		return nil, err
	}
	expenses, err := s.repo.ListExpenses(ctx, carID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expenses")
	}
	dtos := make([]ExpenseDTO, 0, len(expenses))
	for i := range expenses {
		dtos = append(dtos, *ExpenseFromModel(&expenses[i]))
	}
	return dtos, nil
}

func (s *service) AddExpense(ctx context.Context, userID, garageID, carID uuid.UUID, input ExpenseInput) (*ExpenseDTO, error) {
	garage, _, err := s.authorize(ctx, garageID, userID, permission("add expenses", func(p models.PermissionSet) bool { return p.CanAddExpenses }))
	if err != nil {
		return nil, err
	}
	car, err := s.loadCar(ctx, garageID, carID)
	if err != nil {
		return nil, err
	}
	if car.Status == enums.CarStatusSold {
		return nil, errCarAlreadySold()
	}
	if err := validateExpense(&input, garage); err != nil {
		return nil, err
	}

	expense := &models.Expense{
		CarID:       carID,
		Description: strings.TrimSpace(input.Description),
		AmountCents: input.AmountCents,
		Category:    strings.TrimSpace(input.Category),
		Date:        input.Date,
		PaidBy:      input.PaidBy,
	}
	if err := s.repo.CreateExpense(ctx, expense); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create expense")
	}
	return ExpenseFromModel(expense), nil
}

func (s *service) UpdateExpense(ctx context.Context, userID, garageID, carID, expenseID uuid.UUID, input ExpenseInput) (*ExpenseDTO, error) {
	garage, _, err := s.authorize(ctx, garageID, userID, permission("edit expenses", func(p models.PermissionSet) bool { return p.CanEditExpenses }))
	if err != nil {
		return nil, err
	}
	car, err := s.loadCar(ctx, garageID, carID)
	if err != nil {
		return nil, err
	}
	if car.Status == enums.CarStatusSold {
		return nil, errCarAlreadySold()
	}
	expense, err := s.loadExpense(ctx, carID, expenseID)
	if err != nil {
		return nil, err
	}
	if err := validateExpense(&input, garage); err != nil {
		return nil, err
	}

	expense.Description = strings.TrimSpace(input.Description)
	expense.AmountCents = input.AmountCents
	expense.Category = strings.TrimSpace(input.Category)
	expense.Date = input.Date
	expense.PaidBy = input.PaidBy

	if err := s.repo.UpdateExpense(ctx, expense); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update expense")
	}
	return ExpenseFromModel(expense), nil
}

func (s *service) DeleteExpense(ctx context.Context, userID, garageID, carID, expenseID uuid.UUID) error {
	if _, _, err := s.authorize(ctx, garageID, userID, permission("delete expenses", func(p models.PermissionSet) bool { return p.CanDeleteExpenses })); err != nil {
		return err
	}
	car, err := s.loadCar(ctx, garageID, carID)
	if err != nil {
		return err
	}
	if car.Status == enums.CarStatusSold {
		return errCarAlreadySold()
	}
	if _, err := s.loadExpense(ctx, carID, expenseID); err != nil {
		return err
	}
	if err := s.repo.DeleteExpense(ctx, expenseID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete expense")
	}
	return nil
}

type accessCheck struct {
	name  string
	allow func(models.PermissionSet) bool
}

func permission(name string, allow func(models.PermissionSet) bool) accessCheck {
	return accessCheck{name: name, allow: allow}
}

func anyMember() accessCheck {
	return accessCheck{}
}

func (s *service) authorize(ctx context.Context, garageID, userID uuid.UUID, check accessCheck) (*models.Garage, *models.GarageMember, error) {
	garage, err := s.garages.FindByID(ctx, garageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "garage not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load garage")
	}

	member, err := s.members.GetMember(ctx, garageID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this garage")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}

	if check.allow != nil && !check.allow(member.Permissions) {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("missing permission to %s", check.name))
	}
	return garage, member, nil
}

func (s *service) loadCar(ctx context.Context, garageID, carID uuid.UUID) (*models.Car, error) {
	car, err := s.repo.FindByID(ctx, carID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "car not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load car")
	}
	if car.GarageID != garageID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "car not found")
	}
	return car, nil
}

func (s *service) loadExpense(ctx context.Context, carID, expenseID uuid.UUID) (*models.Expense, error) {
	expense, err := s.repo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "expense not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load expense")
	}
	if expense.CarID != carID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "expense not found")
	}
	return expense, nil
}

func errCarAlreadySold() error {
	return pkgerrors.StateConflict("car_already_sold", "car already sold")
}

func validateExpense(input *ExpenseInput, garage *models.Garage) error {
	var violations []string
	if strings.TrimSpace(input.Description) == "" {
		violations = append(violations, "description must not be empty")
	}
	if input.AmountCents <= 0 {
		violations = append(violations, "amount must be positive")
	}
	if input.PaidBy == "" {
		input.PaidBy = enums.ExpensePayerYou
	}
	if !input.PaidBy.IsValid() {
		violations = append(violations, "paid_by must be you or partner")
	}
	if len(violations) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid expense input").WithDetails(violations)
	}

	// Garages without a partner only ever record owner-paid expenses.
	if !garage.HasPartner {
		input.PaidBy = enums.ExpensePayerYou
	}
	if input.Date.IsZero() {
		input.Date = time.Now().UTC()
	}
	return nil
}
