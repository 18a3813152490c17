package memory

import (
	"context"
	"sort"

	"petshop-api/internal/apperr"
	"petshop-api/internal/domain/clients"
)

type clientsRepo struct {
	s *Store
}

func NewClientsRepo(s *Store) clients.Repository {
	return &clientsRepo{s: s}
}

func (r *clientsRepo) Create(ctx context.Context, c clients.Client) (clients.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.emailTaken(c.Email, 0) {
		return clients.Client{}, integrity("clients_email_key", "email already registered")
	}
	c.ID = r.s.nextID("clients")
	c.RegisteredAt = r.s.now().UTC()
	r.s.clients[c.ID] = c
	return c, nil
}

func (r *clientsRepo) GetByID(ctx context.Context, id int64) (clients.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.clients[id]
	if !ok {
		return clients.Client{}, apperr.ErrNotFound
	}
	return c, nil
}

func (r *clientsRepo) FindByEmail(ctx context.Context, email string) (clients.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.clients {
		if c.Email == email {
			return c, nil
		}
	}
	return clients.Client{}, apperr.ErrNotFound
}

func (r *clientsRepo) List(ctx context.Context, offset, limit int) ([]clients.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]clients.Client, 0, len(r.s.clients))
	for _, c := range r.s.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, offset, limit), nil
}

func (r *clientsRepo) Update(ctx context.Context, id int64, p clients.Patch) (clients.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.clients[id]
	if !ok {
		return clients.Client{}, apperr.ErrNotFound
	}
	if p.Name.HasValue() {
		c.Name = p.Name.Value
	}
	if p.Phone.HasValue() {
		c.Phone = p.Phone.Value
	}
	if p.Email.HasValue() {
		if r.emailTaken(p.Email.Value, id) {
			return clients.Client{}, integrity("clients_email_key", "email already registered")
		}
		c.Email = p.Email.Value
	}
	if p.Address.Set {
		c.Address = p.Address.Ptr()
	}
	r.s.clients[id] = c
	return c, nil
}

// Delete cascadea a animales y sus reservas.
func (r *clientsRepo) Delete(ctx context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.clients[id]; !ok {
		return false, nil
	}
	for animalID, a := range r.s.animals {
		if a.ClientID == id {
			r.s.deleteAnimal(animalID)
		}
	}
	delete(r.s.clients, id)
	return true, nil
}

func (r *clientsRepo) emailTaken(email string, selfID int64) bool {
	for _, c := range r.s.clients {
		if c.Email == email && c.ID != selfID {
			return true
		}
	}
	return false
}
