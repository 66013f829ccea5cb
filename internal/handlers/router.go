package handlers

import (
	"net/http"

	"github.com/fitfactory/backend/internal/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Router struct {
	Auth     *AuthHandlers
	Users    *UserHandlers
	Contact  *ContactHandlers
	AuthGate *middleware.AuthMiddleware
}

// NewRouter mounts every endpoint. CORS is applied by the caller around the
// returned router.
func NewRouter(routes Router, logger *logrus.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware(logger))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("FitFactory API is running"))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/signup", routes.Auth.Signup).Methods(http.MethodPost)
	auth.HandleFunc("/verify-otp", routes.Auth.VerifyOTP).Methods(http.MethodPost)
	auth.HandleFunc("/login", routes.Auth.Login).Methods(http.MethodPost)
	auth.HandleFunc("/forgot-password", routes.Auth.ForgotPassword).Methods(http.MethodPost)
	auth.HandleFunc("/reset-password", routes.Auth.ResetPassword).Methods(http.MethodPost)
	auth.Handle("/user-by-email", admin(routes.AuthGate, routes.Auth.UserByEmail)).Methods(http.MethodGet)

	users := api.PathPrefix("/users").Subrouter()
	users.Handle("", admin(routes.AuthGate, routes.Users.List)).Methods(http.MethodGet)
	users.Handle("/update-subscription/{userId}", admin(routes.AuthGate, routes.Users.UpdateSubscription)).Methods(http.MethodPut)
	users.Handle("/admin/loggedin-users", admin(routes.AuthGate, routes.Users.LoggedInUsers)).Methods(http.MethodGet)
	users.Handle("/get-user/{userId}", routes.AuthGate.RequireAuth(http.HandlerFunc(routes.Users.GetUser))).Methods(http.MethodGet)
	users.Handle("/me", routes.AuthGate.RequireAuth(http.HandlerFunc(routes.Users.Me))).Methods(http.MethodGet)

	api.HandleFunc("/contact", routes.Contact.Submit).Methods(http.MethodPost)

	return router
}

func admin(gate *middleware.AuthMiddleware, h http.HandlerFunc) http.Handler {
	return gate.RequireAuth(gate.RequireAdmin(h))
}
