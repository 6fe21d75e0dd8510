package router

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"bloomkart/internal/handler"
	"bloomkart/internal/middleware"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	floristHandler *handler.FloristHandler,
	checkoutHandler *handler.CheckoutHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Florist handler function
	floristRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		// Check if this is a request for a specific florist ID
		if r.URL.Path != "/api/florists" && r.URL.Path != "/api/florists/" {
			floristHandler.GetByID(w, r)
			return
		}
		floristHandler.GetAvailable(w, r)
	}

	// Register florist routes (both with and without trailing slash)
	mux.HandleFunc("/api/florists", floristRouteHandler)
	mux.HandleFunc("/api/florists/", floristRouteHandler)

	// Checkout handler function
	checkoutRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		switch {
		case path == "/api/checkout/quote":
			checkoutHandler.Quote(w, r)

		case path == "/api/checkout" || path == "/api/checkout/":
			checkoutHandler.Create(w, r)

		case strings.HasSuffix(path, "/abandon"):
			checkoutHandler.Abandon(w, r)

		case strings.HasPrefix(path, "/api/checkout/"):
			checkoutHandler.Status(w, r)

		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}

	// Register checkout routes (both with and without trailing slash)
	mux.HandleFunc("/api/checkout", checkoutRouteHandler)
	mux.HandleFunc("/api/checkout/", checkoutRouteHandler)

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS -> APIKeyAuth
	var h http.Handler = mux
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.RequestID(h)
	h = middleware.Recovery(logger)(h)

	return h
}
