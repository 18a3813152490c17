package clients

import (
	"context"
	"errors"
	"testing"

	"petshop-api/internal/apperr"
	"petshop-api/internal/platform/patch"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID map[int64]Client
	seq  int64
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[int64]Client{}}
}

func (r *testRepo) Create(ctx context.Context, c Client) (Client, error) {
	r.seq++
	c.ID = r.seq
	r.byID[c.ID] = c
	return c, nil
}

func (r *testRepo) GetByID(ctx context.Context, id int64) (Client, error) {
	c, ok := r.byID[id]
	if !ok {
		return Client{}, apperr.ErrNotFound
	}
	return c, nil
}

func (r *testRepo) FindByEmail(ctx context.Context, email string) (Client, error) {
	for _, c := range r.byID {
		if c.Email == email {
			return c, nil
		}
	}
	return Client{}, apperr.ErrNotFound
}

func (r *testRepo) List(ctx context.Context, offset, limit int) ([]Client, error) {
	out := make([]Client, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	return out, nil
}

func (r *testRepo) Update(ctx context.Context, id int64, p Patch) (Client, error) {
	c, ok := r.byID[id]
	if !ok {
		return Client{}, apperr.ErrNotFound
	}
	if p.Name.HasValue() {
		c.Name = p.Name.Value
	}
	if p.Email.HasValue() {
		c.Email = p.Email.Value
	}
	if p.Address.Set {
		c.Address = p.Address.Ptr()
	}
	r.byID[id] = c
	return c, nil
}

func (r *testRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_NormalizesEmail(t *testing.T) {
	svc := NewService(newTestRepo(), nil)

	c, err := svc.Create(context.Background(), CreateInput{Name: " Ana Pérez ", Phone: "555-0101", Email: " Ana@Example.COM "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Name != "Ana Pérez" || c.Email != "ana@example.com" {
		t.Fatalf("expected trimmed fields, got %+v", c)
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc := NewService(newTestRepo(), nil)

	cases := map[string]CreateInput{
		"short name": {Name: "Al", Phone: "1", Email: "al@example.com"},
		"no phone":   {Name: "Alice", Email: "al@example.com"},
		"bad email":  {Name: "Alice", Phone: "1", Email: "not-an-email"},
	}
	for name, in := range cases {
		if _, err := svc.Create(context.Background(), in); !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestService_Create_DuplicateEmailIsIntegrity(t *testing.T) {
	svc := NewService(newTestRepo(), nil)
	if _, err := svc.Create(context.Background(), CreateInput{Name: "Ana", Phone: "1", Email: "ana@example.com"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := svc.Create(context.Background(), CreateInput{Name: "Otra Ana", Phone: "2", Email: "ANA@example.com"})
	if !errors.Is(err, apperr.ErrIntegrity) {
		t.Fatalf("expected integrity error, got %v", err)
	}
}

func TestService_Update(t *testing.T) {
	svc := NewService(newTestRepo(), nil)
	a, _ := svc.Create(context.Background(), CreateInput{Name: "Ana", Phone: "1", Email: "ana@example.com"})
	b, _ := svc.Create(context.Background(), CreateInput{Name: "Beto", Phone: "2", Email: "beto@example.com"})

	if _, err := svc.Update(context.Background(), b.ID, Patch{Email: patch.Value("ana@example.com")}); !errors.Is(err, apperr.ErrIntegrity) {
		t.Fatalf("expected integrity error on taken email, got %v", err)
	}
	if _, err := svc.Update(context.Background(), a.ID, Patch{Name: patch.Null[string]()}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error on null name, got %v", err)
	}

	got, err := svc.Update(context.Background(), a.ID, Patch{Email: patch.Value("ana@example.com"), Address: patch.Value("Calle 1")})
	if err != nil {
		t.Fatalf("update own email: %v", err)
	}
	if got.Address == nil || *got.Address != "Calle 1" {
		t.Fatalf("expected address set, got %+v", got)
	}

	if _, err := svc.Update(context.Background(), 99, Patch{}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_ExistsAndDelete(t *testing.T) {
	svc := NewService(newTestRepo(), nil)
	c, _ := svc.Create(context.Background(), CreateInput{Name: "Ana", Phone: "1", Email: "ana@example.com"})

	if ok, err := svc.Exists(context.Background(), c.ID); err != nil || !ok {
		t.Fatalf("expected client to exist: %v %v", ok, err)
	}
	if err := svc.Delete(context.Background(), c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok, _ := svc.Exists(context.Background(), c.ID); ok {
		t.Fatalf("expected client gone")
	}
	if err := svc.Delete(context.Background(), c.ID); err == nil || err.Error() != "client 1 not found" {
		t.Fatalf("unexpected error: %v", err)
	}
}
