package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/tradepost/messaging/api/validator"
)

// A DB provides a storage layer that persists messages.
type DB interface {
	InsertMessage(ctx context.Context, msg Message) (Message, error)
	ListUserMessages(ctx context.Context, userID string) ([]Message, error)
	ListThreadMessages(ctx context.Context, userID, otherUserID string) ([]Message, error)
	MarkMessagesRead(ctx context.Context, ids []string) error
}

// A Directory resolves references to users and listings, which are owned
// outside this service.
type Directory interface {
	GetUser(ctx context.Context, id string) (Participant, error)
	ListingExists(ctx context.Context, id string) (bool, error)
}

// ErrUserNotFound is returned by a Directory when a user id resolves to
// nothing.
var ErrUserNotFound = errors.New("user not found")

// API provides the REST endpoints for the messaging core.
type API struct {
	Logger    *slog.Logger
	DB        DB
	Directory Directory
	Val       *validator.Validator

	once sync.Once
	mux  *http.ServeMux
}

func (a *API) setupRoutes() {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /messages", a.createMessage)
	mux.HandleFunc("GET /users/{userID}/conversations", a.listConversations)
	mux.HandleFunc("GET /users/{userID}/conversations/{otherUserID}/messages", a.listThreadMessages)

	a.mux = mux
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.once.Do(a.setupRoutes)
	a.Logger.Info("Request received", "method", r.Method, "path", r.URL.Path)
	a.mux.ServeHTTP(w, r)
}

func (a *API) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.Logger.Error("Could not encode JSON body", "error", err.Error())
	}
}

func (a *API) respondError(w http.ResponseWriter, status int, err error, msg string) {
	type response struct {
		Error string `json:"error"`
	}
	a.Logger.Error("Error", "error", err.Error())
	a.respond(w, status, response{Error: msg})
}

func (a *API) validateBody(w http.ResponseWriter, s interface{}) bool {
	errs := a.Val.ValidateStruct(s)
	type response struct {
		Errors []validator.ValidationError `json:"errors"`
	}

	if len(errs) > 0 {
		a.respond(w, http.StatusBadRequest, &response{
			Errors: errs,
		})
		return false
	}
	return true
}
