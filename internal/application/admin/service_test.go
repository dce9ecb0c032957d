package admin

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/autoparts/storefront/internal/domain/catalog"
	"github.com/autoparts/storefront/internal/domain/checkout"
	"github.com/autoparts/storefront/internal/domain/identity"
	"github.com/autoparts/storefront/internal/domain/shared"
	"github.com/autoparts/storefront/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockBackend is a mock implementation of Backend
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) CreateSparePart(ctx context.Context, d catalog.SparePartDraft) (catalog.SparePart, error) {
	args := m.Called(ctx, d)
	return args.Get(0).(catalog.SparePart), args.Error(1)
}

func (m *MockBackend) UpdateSparePart(ctx context.Context, id string, p catalog.SparePartPatch) (catalog.SparePart, error) {
	args := m.Called(ctx, id, p)
	return args.Get(0).(catalog.SparePart), args.Error(1)
}

func (m *MockBackend) DeleteSparePart(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBackend) GetCategory(ctx context.Context, id string) (catalog.Category, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.Category), args.Error(1)
}

func (m *MockBackend) CreateCategory(ctx context.Context, in catalog.CategoryInput) (catalog.Category, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(catalog.Category), args.Error(1)
}

func (m *MockBackend) UpdateCategory(ctx context.Context, id string, in catalog.CategoryInput) (catalog.Category, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(catalog.Category), args.Error(1)
}

func (m *MockBackend) DeleteCategory(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBackend) GetBrand(ctx context.Context, id string) (catalog.Brand, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.Brand), args.Error(1)
}

func (m *MockBackend) CreateBrand(ctx context.Context, in catalog.BrandInput) (catalog.Brand, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(catalog.Brand), args.Error(1)
}

func (m *MockBackend) UpdateBrand(ctx context.Context, id string, in catalog.BrandInput) (catalog.Brand, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(catalog.Brand), args.Error(1)
}

func (m *MockBackend) DeleteBrand(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBackend) GetBrandModel(ctx context.Context, id string) (catalog.BrandModel, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.BrandModel), args.Error(1)
}

func (m *MockBackend) CreateBrandModel(ctx context.Context, in catalog.BrandModelInput) (catalog.BrandModel, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(catalog.BrandModel), args.Error(1)
}

func (m *MockBackend) UpdateBrandModel(ctx context.Context, id string, in catalog.BrandModelInput) (catalog.BrandModel, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(catalog.BrandModel), args.Error(1)
}

func (m *MockBackend) DeleteBrandModel(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBackend) GetModelType(ctx context.Context, id string) (catalog.ModelType, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.ModelType), args.Error(1)
}

func (m *MockBackend) CreateModelType(ctx context.Context, in catalog.ModelTypeInput) (catalog.ModelType, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(catalog.ModelType), args.Error(1)
}

func (m *MockBackend) UpdateModelType(ctx context.Context, id string, in catalog.ModelTypeInput) (catalog.ModelType, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(catalog.ModelType), args.Error(1)
}

func (m *MockBackend) DeleteModelType(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBackend) ListUsers(ctx context.Context, filter identity.UserAccountFilter) ([]identity.UserAccount, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.UserAccount), args.Error(1)
}

func (m *MockBackend) GetUser(ctx context.Context, id string) (identity.UserAccount, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(identity.UserAccount), args.Error(1)
}

func (m *MockBackend) UpdateUser(ctx context.Context, id string, upd identity.AccountUpdate) (identity.UserAccount, error) {
	args := m.Called(ctx, id, upd)
	return args.Get(0).(identity.UserAccount), args.Error(1)
}

func (m *MockBackend) ListOrders(ctx context.Context, filter checkout.OrderFilter) ([]checkout.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]checkout.Order), args.Error(1)
}

func (m *MockBackend) GetOrder(ctx context.Context, id string) (checkout.Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(checkout.Order), args.Error(1)
}

func (m *MockBackend) UploadImage(ctx context.Context, filename string, content io.Reader) (string, error) {
	args := m.Called(ctx, filename, content)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) UploadFile(ctx context.Context, filename string, content io.Reader) (string, error) {
	args := m.Called(ctx, filename, content)
	return args.String(0), args.Error(1)
}

func newTestService(t *testing.T) (*Service, *MockBackend, *cache.QueryCache) {
	t.Helper()
	backend := new(MockBackend)
	qc := cache.NewQueryCache(cache.NewMemoryStore())
	t.Cleanup(func() { _ = qc.Close() })
	return NewService(backend, qc, zap.NewNop()), backend, qc
}

// countingLoad caches a value under group and counts backend loads
func countingLoad(t *testing.T, qc *cache.QueryCache, group cache.Group, loads *int) {
	t.Helper()
	_, err := cache.Fetch(context.Background(), qc, cache.NewKey(group, nil), func(ctx context.Context) (string, error) {
		*loads++
		return "v", nil
	})
	require.NoError(t, err)
}

func TestDelete_RequiresConfirmation(t *testing.T) {
	svc, backend, _ := newTestService(t)
	ctx := context.Background()

	deletes := []func(confirmed bool) error{
		func(c bool) error { return svc.DeleteSparePart(ctx, "x", c) },
		func(c bool) error { return svc.DeleteCategory(ctx, "x", c) },
		func(c bool) error { return svc.DeleteBrand(ctx, "x", c) },
		func(c bool) error { return svc.DeleteBrandModel(ctx, "x", c) },
		func(c bool) error { return svc.DeleteModelType(ctx, "x", c) },
	}
	for _, del := range deletes {
		assert.ErrorIs(t, del(false), shared.ErrConfirmationRequired)
	}
	assert.Empty(t, backend.Calls)
}

func TestDelete_ConfirmedInvalidatesDependents(t *testing.T) {
	svc, backend, qc := newTestService(t)
	ctx := context.Background()
	backend.On("DeleteBrand", mock.Anything, "b1").Return(nil).Once()

	var partLoads, brandLoads, userLoads int
	countingLoad(t, qc, cache.GroupSpareParts, &partLoads)
	countingLoad(t, qc, cache.GroupBrands, &brandLoads)
	countingLoad(t, qc, cache.GroupUsers, &userLoads)

	require.NoError(t, svc.DeleteBrand(ctx, "b1", true))

	countingLoad(t, qc, cache.GroupSpareParts, &partLoads)
	countingLoad(t, qc, cache.GroupBrands, &brandLoads)
	countingLoad(t, qc, cache.GroupUsers, &userLoads)

	assert.Equal(t, 2, partLoads)
	assert.Equal(t, 2, brandLoads)
	assert.Equal(t, 1, userLoads)
	backend.AssertExpectations(t)
}

func TestMutationFailure_DoesNotInvalidate(t *testing.T) {
	svc, backend, qc := newTestService(t)
	ctx := context.Background()
	backend.On("CreateCategory", mock.Anything, mock.Anything).
		Return(catalog.Category{}, errors.New("backend down")).Once()

	var loads int
	countingLoad(t, qc, cache.GroupCategories, &loads)

	_, err := svc.CreateCategory(ctx, catalog.CategoryInput{Name: "Frenos", Title: "Frenos"})
	require.Error(t, err)

	countingLoad(t, qc, cache.GroupCategories, &loads)
	assert.Equal(t, 1, loads)
}

func TestCreate_ValidatesBeforeBackend(t *testing.T) {
	svc, backend, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateBrand(ctx, catalog.BrandInput{})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	_, err = svc.CreateBrandModel(ctx, catalog.BrandModelInput{Name: "Corolla"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	_, err = svc.CreateModelType(ctx, catalog.ModelTypeInput{ModelID: "m1"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	_, err = svc.CreateSparePart(ctx, catalog.SparePartDraft{Name: "Disco", Stock: -1})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	_, err = svc.UpdateBrand(ctx, "b1", catalog.BrandInput{})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	assert.Empty(t, backend.Calls)
}

func TestUpdateSparePart(t *testing.T) {
	svc, backend, _ := newTestService(t)
	stock := 4
	patch := catalog.SparePartPatch{Stock: &stock}
	backend.On("UpdateSparePart", mock.Anything, "p1", patch).Return(catalog.SparePart{ID: "p1", Stock: 4}, nil).Once()

	part, err := svc.UpdateSparePart(context.Background(), "p1", patch)
	require.NoError(t, err)
	assert.Equal(t, 4, part.Stock)
	backend.AssertExpectations(t)
}

func TestUpdateUser(t *testing.T) {
	svc, backend, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpdateUser(ctx, "u1", identity.AccountUpdate{})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = svc.UpdateUser(ctx, "u1", identity.AccountUpdate{Roles: []string{"superuser"}})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	backend.On("UpdateUser", mock.Anything, "u1", identity.AccountUpdate{Roles: []string{"employee"}}).
		Return(identity.UserAccount{ID: "u1", Roles: []string{"employee"}}, nil).Once()
	u, err := svc.UpdateUser(ctx, "u1", identity.AccountUpdate{Roles: []string{" Employee", "employee"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"employee"}, u.Roles)
	backend.AssertExpectations(t)
}

func TestListOrders(t *testing.T) {
	svc, backend, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ListOrders(ctx, checkout.OrderFilter{Status: "LOST"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	filter := checkout.OrderFilter{PaymentStatus: checkout.PaymentStatusPending}
	backend.On("ListOrders", mock.Anything, filter).Return([]checkout.Order{{OrderID: "o1"}}, nil).Once()
	orders, err := svc.ListOrders(ctx, filter)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	_, err = svc.ListOrders(ctx, filter)
	require.NoError(t, err)
	backend.AssertExpectations(t)
}

func TestUpload(t *testing.T) {
	svc, backend, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadCatalogImage, "notes.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	backend.On("UploadImage", mock.Anything, "disco.PNG", mock.Anything).Return("https://cdn/disco.png", nil).Once()
	u, err := svc.Upload(ctx, UploadCatalogImage, "../../disco.PNG", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/disco.png", u)

	backend.On("UploadFile", mock.Anything, "a.jpg", mock.Anything).Return("https://cdn/f/a.jpg", nil).Once()
	u, err = svc.Upload(ctx, UploadFileImage, "a.jpg", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/f/a.jpg", u)
	backend.AssertExpectations(t)
}

func TestAffectedGroups(t *testing.T) {
	assert.Contains(t, AffectedGroups(cache.GroupCategories), cache.GroupSpareParts)
	assert.NotContains(t, AffectedGroups(cache.GroupSpareParts), cache.GroupBrands)
	assert.Equal(t, []cache.Group{cache.GroupOrders}, AffectedGroups(cache.GroupOrders))
}
