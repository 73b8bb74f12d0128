package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claude/fitcoach/internal/metrics"
	"github.com/claude/fitcoach/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"tailscale.com/client/tailscale/apitype"
)

// Store is the persistence the handlers need. *storage.DB satisfies it.
type Store interface {
	ListAssignments(ctx context.Context, clientID uuid.UUID) ([]models.AssignmentSummary, error)
	FetchAssignment(ctx context.Context, id uuid.UUID) (*models.AssignmentDetail, error)
	StartAssignment(ctx context.Context, id uuid.UUID) (*models.StartResult, error)
	LogSet(ctx context.Context, id uuid.UUID, entry models.SetEntry) (*models.SetRecord, error)
	CompleteAssignment(ctx context.Context, id uuid.UUID) (*models.CompletionResult, error)
	SkipAssignment(ctx context.Context, id uuid.UUID) (*models.SkipResult, error)
	CreateAssignment(ctx context.Context, in models.NewAssignment) (*models.AssignmentSummary, error)
	CatalogStore
	RosterStore
	CallerRecorder
	Ping(ctx context.Context) error
}

// CatalogStore holds the exercise library and workout templates.
type CatalogStore interface {
	ListExercises(ctx context.Context, q models.ExerciseQuery) ([]models.Exercise, error)
	ExerciseFacets(ctx context.Context) (*models.ExerciseFacets, error)
	GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error)
	CreateExercise(ctx context.Context, in models.NewExercise) (*models.Exercise, error)
	ListWorkouts(ctx context.Context) ([]models.Workout, error)
	GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error)
	CreateWorkout(ctx context.Context, in models.WorkoutInput) (*models.Workout, error)
	UpdateWorkout(ctx context.Context, id uuid.UUID, p models.WorkoutPatch) (*models.Workout, error)
	DeleteWorkout(ctx context.Context, id uuid.UUID) error
}

// RosterStore holds a trainer's clients.
type RosterStore interface {
	ListClients(ctx context.Context, active *bool) ([]models.Client, error)
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	CreateClient(ctx context.Context, in models.ClientInput) (*models.Client, error)
	UpdateClient(ctx context.Context, id uuid.UUID, p models.ClientPatch) (*models.Client, error)
	DeleteClient(ctx context.Context, id uuid.UUID) error
}

// WhoIser resolves a tailnet peer from its remote address.
// The tsnet local client satisfies it.
type WhoIser interface {
	WhoIs(ctx context.Context, remoteAddr string) (*apitype.WhoIsResponse, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    Store
	log      *slog.Logger
	apiKey   string
	metrics  *metrics.Manager
	gatherer prometheus.Gatherer
	whois    WhoIser
	router   chi.Router
}

// New creates a new Server with all routes configured. m and gatherer may be
// nil, in which case requests are not instrumented and /metrics is not mounted.
func New(store Store, apiKey string, m *metrics.Manager, gatherer prometheus.Gatherer, log *slog.Logger) *Server {
	s := &Server{
		store:    store,
		log:      log,
		apiKey:   apiKey,
		metrics:  m,
		gatherer: gatherer,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale switches caller identity from the local dev user to WhoIs
// lookups against the tailnet.
func (s *Server) SetTailscale(w WhoIser) {
	s.whois = w
}

// MountMCP serves an MCP transport at /mcp behind the API key.
func (s *Server) MountMCP(h http.Handler) {
	s.router.With(BearerAuth(s.apiKey, s.metrics)).Handle("/mcp", h)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(Instrument(s.metrics))
	s.router.Use(CORS)

	s.router.Get("/health", s.handleHealth)
	if s.gatherer != nil {
		s.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identity)
		r.Get("/me", s.handleMe)

		r.Group(func(r chi.Router) {
			r.Use(BearerAuth(s.apiKey, s.metrics))
			r.Get("/assignments", s.handleListAssignments)
			r.Post("/assignments", s.handleCreateAssignment)
			r.Get("/assignments/client/{clientID}", s.handleListAssignments)
			r.Get("/assignments/{id}", s.handleGetAssignment)
			r.Post("/assignments/{id}/start", s.handleStartAssignment)
			r.Post("/assignments/{id}/logs", s.handleLogSet)
			r.Post("/assignments/{id}/complete", s.handleCompleteAssignment)
			r.Post("/assignments/{id}/skip", s.handleSkipAssignment)
			r.Put("/assignments/{id}/status", s.handleSetAssignmentStatus)

			r.Get("/exercises", s.handleListExercises)
			r.Post("/exercises", s.handleCreateExercise)
			r.Get("/exercises/filters", s.handleExerciseFilters)
			r.Get("/exercises/{id}", s.handleGetExercise)

			r.Get("/workouts", s.handleListWorkouts)
			r.Post("/workouts", s.handleCreateWorkout)
			r.Get("/workouts/{id}", s.handleGetWorkout)
			r.Put("/workouts/{id}", s.handleUpdateWorkout)
			r.Delete("/workouts/{id}", s.handleDeleteWorkout)

			r.Get("/clients", s.handleListClients)
			r.Post("/clients", s.handleCreateClient)
			r.Get("/clients/{id}", s.handleGetClient)
			r.Put("/clients/{id}", s.handleUpdateClient)
			r.Delete("/clients/{id}", s.handleDeleteClient)
		})
	})
}

// identity picks the identity middleware at request time, since SetTailscale
// runs after the routes are built.
func (s *Server) identity(next http.Handler) http.Handler {
	dev := DevIdentity(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.whois == nil {
			dev.ServeHTTP(w, r)
			return
		}
		TailscaleIdentity(s.whois, s.store, s.log)(next).ServeHTTP(w, r)
	})
}
