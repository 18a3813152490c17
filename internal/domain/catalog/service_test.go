package catalog

import (
	"context"
	"errors"
	"testing"

	"petshop-api/internal/apperr"
	"petshop-api/internal/platform/patch"

	"github.com/shopspring/decimal"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID       map[int64]Item
	seq        int64
	referenced map[int64]bool
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[int64]Item{}, referenced: map[int64]bool{}}
}

func (r *testRepo) Create(ctx context.Context, it Item) (Item, error) {
	r.seq++
	it.ID = r.seq
	r.byID[it.ID] = it
	return it, nil
}

func (r *testRepo) GetByID(ctx context.Context, id int64) (Item, error) {
	it, ok := r.byID[id]
	if !ok {
		return Item{}, apperr.ErrNotFound
	}
	return it, nil
}

func (r *testRepo) FindByName(ctx context.Context, name string) (Item, error) {
	for _, it := range r.byID {
		if it.Name == name {
			return it, nil
		}
	}
	return Item{}, apperr.ErrNotFound
}

func (r *testRepo) List(ctx context.Context, offset, limit int) ([]Item, error) {
	out := make([]Item, 0, len(r.byID))
	for _, it := range r.byID {
		out = append(out, it)
	}
	return out, nil
}

func (r *testRepo) Update(ctx context.Context, id int64, p Patch) (Item, error) {
	it, ok := r.byID[id]
	if !ok {
		return Item{}, apperr.ErrNotFound
	}
	if p.Name.HasValue() {
		it.Name = p.Name.Value
	}
	if p.Price.HasValue() {
		it.Price = p.Price.Value
	}
	r.byID[id] = it
	return it, nil
}

func (r *testRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if r.referenced[id] {
		return false, &apperr.IntegrityError{Message: "service is referenced by existing appointments"}
	}
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// -------------------------
// Tests
// -------------------------

func TestService_Create(t *testing.T) {
	svc := NewService(newTestRepo(), nil)

	it, err := svc.Create(context.Background(), CreateInput{Name: " Bath ", Price: price("50.00"), DurationMinutes: 45})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if it.Name != "Bath" || it.Price.StringFixed(2) != "50.00" {
		t.Fatalf("unexpected item: %+v", it)
	}

	_, err = svc.Create(context.Background(), CreateInput{Name: "Bath", Price: price("10"), DurationMinutes: 10})
	if !errors.Is(err, apperr.ErrIntegrity) {
		t.Fatalf("expected duplicate name integrity error, got %v", err)
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc := NewService(newTestRepo(), nil)

	cases := map[string]CreateInput{
		"empty name":     {Price: price("1"), DurationMinutes: 10},
		"negative price": {Name: "X", Price: price("-0.01"), DurationMinutes: 10},
		"three decimals": {Name: "X", Price: price("1.005"), DurationMinutes: 10},
		"too expensive":  {Name: "X", Price: price("100000000"), DurationMinutes: 10},
		"no duration":    {Name: "X", Price: price("1")},
	}
	for name, in := range cases {
		if _, err := svc.Create(context.Background(), in); !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}

	if _, err := svc.Create(context.Background(), CreateInput{Name: "Free check", Price: decimal.Zero, DurationMinutes: 5}); err != nil {
		t.Fatalf("zero price must be allowed: %v", err)
	}
}

func TestService_Update_Price(t *testing.T) {
	svc := NewService(newTestRepo(), nil)
	it, _ := svc.Create(context.Background(), CreateInput{Name: "Bath", Price: price("50.00"), DurationMinutes: 45})

	got, err := svc.Update(context.Background(), it.ID, Patch{Price: patch.Value(price("60"))})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Price.StringFixed(2) != "60.00" {
		t.Fatalf("expected 60.00, got %s", got.Price.StringFixed(2))
	}

	if _, err := svc.Update(context.Background(), it.ID, Patch{Price: patch.Null[decimal.Decimal]()}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error on null price, got %v", err)
	}
}

func TestService_Delete(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)
	it, _ := svc.Create(context.Background(), CreateInput{Name: "Bath", Price: price("50.00"), DurationMinutes: 45})

	repo.referenced[it.ID] = true
	if err := svc.Delete(context.Background(), it.ID); !errors.Is(err, apperr.ErrIntegrity) {
		t.Fatalf("expected integrity error on referenced service, got %v", err)
	}

	repo.referenced[it.ID] = false
	if err := svc.Delete(context.Background(), it.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(context.Background(), it.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
