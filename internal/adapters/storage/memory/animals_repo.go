package memory

import (
	"context"
	"sort"

	"petshop-api/internal/apperr"
	"petshop-api/internal/domain/animals"
)

type animalsRepo struct {
	s *Store
}

func NewAnimalsRepo(s *Store) animals.Repository {
	return &animalsRepo{s: s}
}

func (r *animalsRepo) Create(ctx context.Context, a animals.Animal) (animals.Animal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.clients[a.ClientID]; !ok {
		return animals.Animal{}, integrity("animals_client_id_fkey", "referenced client does not exist")
	}
	a.ID = r.s.nextID("animals")
	r.s.animals[a.ID] = a
	return a, nil
}

func (r *animalsRepo) GetByID(ctx context.Context, id int64) (animals.Animal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.animals[id]
	if !ok {
		return animals.Animal{}, apperr.ErrNotFound
	}
	return a, nil
}

func (r *animalsRepo) List(ctx context.Context, f animals.ListFilter) ([]animals.Animal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]animals.Animal, 0)
	for _, a := range r.s.animals {
		if f.ClientID != nil && a.ClientID != *f.ClientID {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, f.Offset, f.Limit), nil
}

func (r *animalsRepo) Update(ctx context.Context, id int64, p animals.Patch) (animals.Animal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.animals[id]
	if !ok {
		return animals.Animal{}, apperr.ErrNotFound
	}
	if p.Name.HasValue() {
		a.Name = p.Name.Value
	}
	if p.Species.HasValue() {
		a.Species = p.Species.Value
	}
	if p.Breed.Set {
		a.Breed = p.Breed.Ptr()
	}
	if p.BirthDate.Set {
		a.BirthDate = p.BirthDate.Ptr()
	}
	if p.Notes.Set {
		a.Notes = p.Notes.Ptr()
	}
	r.s.animals[id] = a
	return a, nil
}

func (r *animalsRepo) Delete(ctx context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.animals[id]; !ok {
		return false, nil
	}
	r.s.deleteAnimal(id)
	return true, nil
}
