package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/sirpickle/index-server/internal/api/handlers"
	"github.com/sirpickle/index-server/internal/api/middleware"
	"github.com/sirpickle/index-server/internal/service"
)

// NewRouter wires the HTTP surface. /health is public, /admin requires the
// shared API key, /api is the open query surface.
func NewRouter(svc *service.Service, apiKey string, log *zap.SugaredLogger) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))

	r.HandleFunc("/health", healthCheck).Methods(http.MethodGet)

	h := handlers.New(svc, log)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.Auth(apiKey))
	admin.HandleFunc("/videos", h.AddVideo).Methods(http.MethodPost)

	public := r.PathPrefix("/api").Subrouter()
	public.HandleFunc("/ask", h.Ask).Methods(http.MethodPost)
	public.HandleFunc("/search", h.Search).Methods(http.MethodGet)
	public.HandleFunc("/videos", h.ListVideos).Methods(http.MethodGet)
	public.HandleFunc("/videos/{id}", h.GetVideo).Methods(http.MethodGet)

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
