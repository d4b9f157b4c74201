package totals

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/feriavirtual/feriavirtual-backend/internal/cartsession"
	"github.com/feriavirtual/feriavirtual-backend/internal/catalog"
	"github.com/feriavirtual/feriavirtual-backend/internal/shipping"
	"github.com/feriavirtual/feriavirtual-backend/pkg/db/models"
	"github.com/feriavirtual/feriavirtual-backend/pkg/enums"
)

type fakeCatalogRepo struct {
	products map[uuid.UUID]models.Product
}

func (f *fakeCatalogRepo) WithTx(tx *gorm.DB) catalog.Repository { return f }

func (f *fakeCatalogRepo) GetStore(_ context.Context, id uuid.UUID) (*models.Store, error) {
	return nil, nil
}

func (f *fakeCatalogRepo) GetStoresByIDs(_ context.Context, ids []uuid.UUID) ([]models.Store, error) {
	return nil, nil
}

func (f *fakeCatalogRepo) GetActiveProduct(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if product, ok := f.products[id]; ok {
		return &product, nil
	}
	return nil, nil
}

func (f *fakeCatalogRepo) GetActiveProductsByIDs(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if product, ok := f.products[id]; ok {
			out = append(out, product)
		}
	}
	return out, nil
}

type fakeShippingResolver struct {
	methods map[uuid.UUID][]models.ShippingMethod
}

func (f *fakeShippingResolver) WithTx(tx *gorm.DB) shipping.Resolver { return f }

func (f *fakeShippingResolver) Resolve(_ context.Context, product *models.Product) ([]models.ShippingMethod, error) {
	return f.methods[product.ID], nil
}

type fixture struct {
	aggregator Aggregator
	store1     uuid.UUID
	store2     uuid.UUID
	productA   uuid.UUID
	productB   uuid.UUID
	methods    map[uuid.UUID][]models.ShippingMethod
}

// Two stores: productA qty 2 @ $10 (store 1), productB qty 1 @ $30 (store 2).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store1:   uuid.New(),
		store2:   uuid.New(),
		productA: uuid.New(),
		productB: uuid.New(),
		methods:  map[uuid.UUID][]models.ShippingMethod{},
	}
	repo := &fakeCatalogRepo{products: map[uuid.UUID]models.Product{
		f.productA: {ID: f.productA, StoreID: f.store1, Name: "A", Price: decimal.RequireFromString("10.00"), IsActive: true},
		f.productB: {ID: f.productB, StoreID: f.store2, Name: "B", Price: decimal.RequireFromString("30.00"), IsActive: true},
	}}
	agg, err := NewAggregator(repo, &fakeShippingResolver{methods: f.methods})
	if err != nil {
		t.Fatalf("NewAggregator failed: %v", err)
	}
	f.aggregator = agg
	return f
}

func (f *fixture) cart() cartsession.Cart {
	return cartsession.Cart{f.productA: 2, f.productB: 1}
}

func mustEqual(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s: expected %s, got %s", name, want, got)
	}
}

func TestComputeNoCoupon(t *testing.T) {
	f := newFixture(t)

	summary, err := f.aggregator.Compute(context.Background(), ComputeInput{Cart: f.cart()})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	mustEqual(t, "subtotal", summary.Subtotal, "50.00")
	mustEqual(t, "discount", summary.Discount, "0")
	mustEqual(t, "shipping", summary.Shipping, "0")
	mustEqual(t, "total", summary.Total, "50.00")
	mustEqual(t, "store1 subtotal", summary.Stores[f.store1].Subtotal, "20.00")
	mustEqual(t, "store2 subtotal", summary.Stores[f.store2].Subtotal, "30.00")
	if len(summary.Items) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(summary.Items))
	}
}

func TestComputeAmountCouponAllocation(t *testing.T) {
	f := newFixture(t)
	coupon := &models.Coupon{
		ID:       uuid.New(),
		Code:     "MINUS15",
		Type:     enums.CouponTypeAmount,
		Value:    decimal.RequireFromString("15"),
		IsActive: true,
	}

	summary, err := f.aggregator.Compute(context.Background(), ComputeInput{Cart: f.cart(), Coupon: coupon})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	mustEqual(t, "discount", summary.Discount, "15.00")
	mustEqual(t, "store1 discount", summary.Stores[f.store1].Discount, "6.00")
	mustEqual(t, "store2 discount", summary.Stores[f.store2].Discount, "9.00")
	mustEqual(t, "store1 total", summary.Stores[f.store1].Total, "14.00")
	mustEqual(t, "store2 total", summary.Stores[f.store2].Total, "21.00")
	mustEqual(t, "total", summary.Total, "35.00")
}

func TestComputePercentCouponCapped(t *testing.T) {
	f := newFixture(t)
	coupon := &models.Coupon{
		ID:       uuid.New(),
		Type:     enums.CouponTypePercent,
		Value:    decimal.RequireFromString("150"),
		IsActive: true,
	}

	summary, err := f.aggregator.Compute(context.Background(), ComputeInput{Cart: f.cart(), Coupon: coupon})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	mustEqual(t, "discount", summary.Discount, "50.00")
	mustEqual(t, "total", summary.Total, "0")
}

func TestComputeFreeShippingZeroesAllShipping(t *testing.T) {
	f := newFixture(t)
	f.methods[f.productA] = []models.ShippingMethod{{ID: 1, Name: "standard", CostPerUnit: decimal.RequireFromString("2.50"), IsActive: true}}
	f.methods[f.productB] = []models.ShippingMethod{{ID: 2, Name: "standard", CostPerUnit: decimal.RequireFromString("4.00"), IsActive: true}}
	coupon := &models.Coupon{ID: uuid.New(), Type: enums.CouponTypeFreeShipping, IsActive: true}

	withShipping, err := f.aggregator.Compute(context.Background(), ComputeInput{Cart: f.cart()})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	mustEqual(t, "shipping before coupon", withShipping.Shipping, "9.00")

	summary, err := f.aggregator.Compute(context.Background(), ComputeInput{Cart: f.cart(), Coupon: coupon})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	mustEqual(t, "shipping", summary.Shipping, "0")
	mustEqual(t, "discount", summary.Discount, "0")
	for storeID, bucket := range summary.Stores {
		if !bucket.Shipping.IsZero() {
			t.Fatalf("store %s shipping should be zero, got %s", storeID, bucket.Shipping)
		}
	}
	for _, item := range summary.Items {
		if !item.LineShipping.IsZero() {
			t.Fatalf("line shipping should be zero, got %s", item.LineShipping)
		}
	}
	mustEqual(t, "total", summary.Total, "50.00")
}

func TestComputeStoreSumsMatchGlobal(t *testing.T) {
	f := newFixture(t)
	f.methods[f.productA] = []models.ShippingMethod{{ID: 1, CostPerUnit: decimal.RequireFromString("1.25"), IsActive: true}}
	f.methods[f.productB] = []models.ShippingMethod{{ID: 2, CostPerUnit: decimal.RequireFromString("3.75"), IsActive: true}}

	summary, err := f.aggregator.Compute(context.Background(), ComputeInput{Cart: f.cart()})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	subtotalSum := decimal.Zero
	shippingSum := decimal.Zero
	for _, bucket := range summary.Stores {
		subtotalSum = subtotalSum.Add(bucket.Subtotal)
		shippingSum = shippingSum.Add(bucket.Shipping)
	}
	if !subtotalSum.Equal(summary.Subtotal) {
		t.Fatalf("store subtotals %s != global %s", subtotalSum, summary.Subtotal)
	}
	if !shippingSum.Equal(summary.Shipping) {
		t.Fatalf("store shipping %s != global %s", shippingSum, summary.Shipping)
	}
}

func TestComputeSelectionAndDefaultMethod(t *testing.T) {
	f := newFixture(t)
	f.methods[f.productA] = []models.ShippingMethod{
		{ID: 1, CostPerUnit: decimal.RequireFromString("2.00"), IsActive: true},
		{ID: 2, CostPerUnit: decimal.RequireFromString("5.00"), IsActive: true},
	}

	summary, err := f.aggregator.Compute(context.Background(), ComputeInput{
		Cart:               cartsession.Cart{f.productA: 2},
		ShippingSelections: cartsession.ShippingSelections{f.productA: 2},
	})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	mustEqual(t, "selected shipping", summary.Shipping, "10.00")

	// Invalid selection falls back to the first method.
	summary, err = f.aggregator.Compute(context.Background(), ComputeInput{
		Cart:               cartsession.Cart{f.productA: 2},
		ShippingSelections: cartsession.ShippingSelections{f.productA: 99},
	})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	mustEqual(t, "fallback shipping", summary.Shipping, "4.00")
}

func TestComputeDropsMissingProducts(t *testing.T) {
	f := newFixture(t)
	ghost := uuid.New()
	cart := f.cart()
	cart[ghost] = 5

	summary, err := f.aggregator.Compute(context.Background(), ComputeInput{Cart: cart})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(summary.Items) != 2 {
		t.Fatalf("expected ghost line dropped, got %d items", len(summary.Items))
	}
	mustEqual(t, "subtotal", summary.Subtotal, "50.00")
}

func TestComputeEmptyCart(t *testing.T) {
	f := newFixture(t)
	summary, err := f.aggregator.Compute(context.Background(), ComputeInput{Cart: cartsession.Cart{}})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if !summary.IsEmpty() {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
}
