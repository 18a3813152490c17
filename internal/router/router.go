package router

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	mem "petshop-api/internal/adapters/storage/memory"
	pg "petshop-api/internal/adapters/storage/postgres"
	"petshop-api/internal/domain/animals"
	"petshop-api/internal/domain/appointments"
	"petshop-api/internal/domain/catalog"
	"petshop-api/internal/domain/clients"
	"petshop-api/internal/domain/employees"
	"petshop-api/internal/middleware"
	"petshop-api/internal/platform/httpx"
	"petshop-api/internal/platform/logger"

	_ "petshop-api/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger    logger.Logger // nil => Nop
	RateLimit middleware.RateLimitConfig
}

type repos struct {
	clients      clients.Repository
	animals      animals.Repository
	employees    employees.Repository
	catalog      catalog.Repository
	appointments appointments.Repository
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.RateLimit(opts.RateLimit))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "petshop api"})
	})
	r.Get("/health", healthHandler(opts.DB))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	var rp repos
	if opts.DB != nil {
		rp = repos{
			clients:      pg.NewClientsRepo(opts.DB),
			animals:      pg.NewAnimalsRepo(opts.DB),
			employees:    pg.NewEmployeesRepo(opts.DB),
			catalog:      pg.NewCatalogRepo(opts.DB),
			appointments: pg.NewAppointmentsRepo(opts.DB),
		}
	} else {
		store := mem.NewStore()
		rp = repos{
			clients:      mem.NewClientsRepo(store),
			animals:      mem.NewAnimalsRepo(store),
			employees:    mem.NewEmployeesRepo(store),
			catalog:      mem.NewCatalogRepo(store),
			appointments: mem.NewAppointmentsRepo(store),
		}
		log.Warn("DB_DSN not set, using in-memory store", nil)
	}

	// Services por módulo
	clientsSvc := clients.NewService(rp.clients, log)
	animalsSvc := animals.NewService(rp.animals, clientsSvc, log)
	employeesSvc := employees.NewService(rp.employees, log)
	catalogSvc := catalog.NewService(rp.catalog, log)
	appointmentsSvc := appointments.NewService(rp.appointments, animalsSvc, employeesSvc, log)

	// Rutas por módulo
	clients.RegisterRoutes(r, clientsSvc, log)
	animals.RegisterRoutes(r, animalsSvc, log)
	employees.RegisterRoutes(r, employeesSvc, log)
	catalog.RegisterRoutes(r, catalogSvc, log)
	appointments.RegisterRoutes(r, appointmentsSvc, log)

	return r
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				httpx.Error(w, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
