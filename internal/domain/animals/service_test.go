package animals

import (
	"context"
	"errors"
	"testing"
	"time"

	"petshop-api/internal/apperr"
	"petshop-api/internal/platform/patch"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID map[int64]Animal
	seq  int64
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[int64]Animal{}}
}

func (r *testRepo) Create(ctx context.Context, a Animal) (Animal, error) {
	r.seq++
	a.ID = r.seq
	r.byID[a.ID] = a
	return a, nil
}

func (r *testRepo) GetByID(ctx context.Context, id int64) (Animal, error) {
	a, ok := r.byID[id]
	if !ok {
		return Animal{}, apperr.ErrNotFound
	}
	return a, nil
}

func (r *testRepo) List(ctx context.Context, f ListFilter) ([]Animal, error) {
	out := make([]Animal, 0)
	for _, a := range r.byID {
		if f.ClientID != nil && a.ClientID != *f.ClientID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *testRepo) Update(ctx context.Context, id int64, p Patch) (Animal, error) {
	a, ok := r.byID[id]
	if !ok {
		return Animal{}, apperr.ErrNotFound
	}
	if p.Name.HasValue() {
		a.Name = p.Name.Value
	}
	if p.BirthDate.Set {
		a.BirthDate = p.BirthDate.Ptr()
	}
	r.byID[id] = a
	return a, nil
}

func (r *testRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

type testClients map[int64]bool

func (c testClients) Exists(ctx context.Context, id int64) (bool, error) {
	return c[id], nil
}

func newTestService() *Service {
	svc := NewService(newTestRepo(), testClients{1: true, 2: true}, nil)
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

// -------------------------
// Tests
// -------------------------

func TestService_Create(t *testing.T) {
	svc := newTestService()
	born := time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)

	a, err := svc.Create(context.Background(), CreateInput{ClientID: 1, Name: " Rex ", Species: "dog", BirthDate: &born})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Name != "Rex" || a.ClientID != 1 {
		t.Fatalf("unexpected animal: %+v", a)
	}
	if owner, err := svc.OwnerOf(context.Background(), a.ID); err != nil || owner != 1 {
		t.Fatalf("expected owner 1, got %d %v", owner, err)
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc := newTestService()
	future := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := map[string]CreateInput{
		"no name":       {ClientID: 1, Species: "dog"},
		"no species":    {ClientID: 1, Name: "Rex"},
		"future birth":  {ClientID: 1, Name: "Rex", Species: "dog", BirthDate: &future},
		"missing owner": {Name: "Rex", Species: "dog"},
	}
	for name, in := range cases {
		if _, err := svc.Create(context.Background(), in); !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestService_Create_UnknownClient(t *testing.T) {
	svc := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{ClientID: 9, Name: "Rex", Species: "dog"})
	if !errors.Is(err, apperr.ErrNotFound) || err.Error() != "client 9 not found" {
		t.Fatalf("expected client not found, got %v", err)
	}
}

func TestService_List_ByClient(t *testing.T) {
	svc := newTestService()
	_, _ = svc.Create(context.Background(), CreateInput{ClientID: 1, Name: "Rex", Species: "dog"})
	_, _ = svc.Create(context.Background(), CreateInput{ClientID: 2, Name: "Mishi", Species: "cat"})

	one := int64(1)
	got, err := svc.List(context.Background(), ListFilter{ClientID: &one})
	if err != nil || len(got) != 1 || got[0].Name != "Rex" {
		t.Fatalf("unexpected list: %+v %v", got, err)
	}

	unknown := int64(7)
	if _, err := svc.List(context.Background(), ListFilter{ClientID: &unknown}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown client, got %v", err)
	}
}

func TestService_Update_BirthDate(t *testing.T) {
	svc := newTestService()
	a, _ := svc.Create(context.Background(), CreateInput{ClientID: 1, Name: "Rex", Species: "dog"})

	future := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.Update(context.Background(), a.ID, Patch{BirthDate: patch.Value(future)}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	got, err := svc.Update(context.Background(), a.ID, Patch{BirthDate: patch.Null[time.Time]()})
	if err != nil || got.BirthDate != nil {
		t.Fatalf("expected birth date cleared, got %+v %v", got, err)
	}
}
