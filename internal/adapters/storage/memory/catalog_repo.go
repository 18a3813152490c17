package memory

import (
	"context"
	"sort"

	"petshop-api/internal/apperr"
	"petshop-api/internal/domain/catalog"
)

type catalogRepo struct {
	s *Store
}

func NewCatalogRepo(s *Store) catalog.Repository {
	return &catalogRepo{s: s}
}

func (r *catalogRepo) Create(ctx context.Context, it catalog.Item) (catalog.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.nameTaken(it.Name, 0) {
		return catalog.Item{}, integrity("services_name_key", "a service with this name already exists")
	}
	it.ID = r.s.nextID("services")
	r.s.services[it.ID] = it
	return it, nil
}

func (r *catalogRepo) GetByID(ctx context.Context, id int64) (catalog.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	it, ok := r.s.services[id]
	if !ok {
		return catalog.Item{}, apperr.ErrNotFound
	}
	return it, nil
}

func (r *catalogRepo) FindByName(ctx context.Context, name string) (catalog.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, it := range r.s.services {
		if it.Name == name {
			return it, nil
		}
	}
	return catalog.Item{}, apperr.ErrNotFound
}

func (r *catalogRepo) List(ctx context.Context, offset, limit int) ([]catalog.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]catalog.Item, 0, len(r.s.services))
	for _, it := range r.s.services {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, offset, limit), nil
}

// Update no toca las líneas ya reservadas: guardan su propio precio.
func (r *catalogRepo) Update(ctx context.Context, id int64, p catalog.Patch) (catalog.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	it, ok := r.s.services[id]
	if !ok {
		return catalog.Item{}, apperr.ErrNotFound
	}
	if p.Name.HasValue() {
		if r.nameTaken(p.Name.Value, id) {
			return catalog.Item{}, integrity("services_name_key", "a service with this name already exists")
		}
		it.Name = p.Name.Value
	}
	if p.Description.Set {
		it.Description = p.Description.Ptr()
	}
	if p.Price.HasValue() {
		it.Price = p.Price.Value
	}
	if p.DurationMinutes.HasValue() {
		it.DurationMinutes = p.DurationMinutes.Value
	}
	r.s.services[id] = it
	return it, nil
}

// Delete emula ON DELETE RESTRICT sobre appointment_services.
func (r *catalogRepo) Delete(ctx context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.services[id]; !ok {
		return false, nil
	}
	if r.s.serviceReferenced(id) {
		return false, integrity("appointment_services_service_id_fkey", "service is referenced by existing appointments")
	}
	delete(r.s.services, id)
	return true, nil
}

func (r *catalogRepo) nameTaken(name string, selfID int64) bool {
	for _, it := range r.s.services {
		if it.Name == name && it.ID != selfID {
			return true
		}
	}
	return false
}
