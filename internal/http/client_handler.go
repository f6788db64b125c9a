package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/application"
)

type clientService interface {
	CreateClient(ctx context.Context, principal application.Principal, input application.ClientInput) (application.Client, error)
	UpdateClient(ctx context.Context, principal application.Principal, clientID string, input application.ClientInput) (application.Client, error)
	GetClient(ctx context.Context, principal application.Principal, clientID string) (application.Client, error)
	ListClients(ctx context.Context, principal application.Principal) ([]application.Client, error)
	DeleteClient(ctx context.Context, principal application.Principal, clientID string) error
	AddLocation(ctx context.Context, principal application.Principal, clientID string, input application.LocationInput) (application.Location, error)
	ListLocations(ctx context.Context, principal application.Principal, clientID string) ([]application.Location, error)
}

type ClientHandler struct {
	service   clientService
	responder responder
	logger    *slog.Logger
}

func NewClientHandler(service clientService, logger *slog.Logger) *ClientHandler {
	base := defaultLogger(logger)
	return &ClientHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ClientHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ClientHandler", operation, attrs...)
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.StaffID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode client request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.StaffID)

	client, err := h.service.CreateClient(r.Context(), principal, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "client creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("client_id", client.ID).InfoContext(r.Context(), "client created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, clientResponse{Client: toClientDTO(client)})
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	clientID, ok := ClientIDFromContext(r.Context())
	if !ok || strings.TrimSpace(clientID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing client id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidClientID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.StaffID, "client_id", clientID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode client update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.StaffID, "client_id", clientID)

	client, err := h.service.UpdateClient(r.Context(), principal, clientID, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "client update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "client updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, clientResponse{Client: toClientDTO(client)})
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	clientID, ok := ClientIDFromContext(r.Context())
	if !ok || strings.TrimSpace(clientID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidClientID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	client, err := h.service.GetClient(r.Context(), principal, clientID)
	if err != nil {
		h.log(r.Context(), "Get", "client_id", clientID).ErrorContext(r.Context(), "client fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, clientResponse{Client: toClientDTO(client)})
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok || strings.TrimSpace(principal.StaffID) == "" {
		h.log(r.Context(), "List", "error_kind", "unauthorized").ErrorContext(r.Context(), "missing authenticated principal")
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}
	logger := h.log(r.Context(), "List", "principal_id", principal.StaffID)
	clients, err := h.service.ListClients(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "client list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(clients)).InfoContext(r.Context(), "clients listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listClientsResponse{Clients: toClientDTOs(clients)})
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	clientID, ok := ClientIDFromContext(r.Context())
	if !ok || strings.TrimSpace(clientID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidClientID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.StaffID, "client_id", clientID)
	if err := h.service.DeleteClient(r.Context(), principal, clientID); err != nil {
		logger.ErrorContext(r.Context(), "client delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "client deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ClientHandler) AddLocation(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	clientID, ok := ClientIDFromContext(r.Context())
	if !ok || strings.TrimSpace(clientID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidClientID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "AddLocation", "principal_id", principal.StaffID, "client_id", clientID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode location request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "AddLocation", "principal_id", principal.StaffID, "client_id", clientID)

	location, err := h.service.AddLocation(r.Context(), principal, clientID, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "location creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("location_id", location.ID).InfoContext(r.Context(), "location added")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, locationResponse{Location: toLocationDTO(location)})
}

func (h *ClientHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	clientID, ok := ClientIDFromContext(r.Context())
	if !ok || strings.TrimSpace(clientID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidClientID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	locations, err := h.service.ListLocations(r.Context(), principal, clientID)
	if err != nil {
		h.log(r.Context(), "ListLocations", "client_id", clientID).ErrorContext(r.Context(), "location list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listLocationsResponse{Locations: toLocationDTOs(locations)})
}

type clientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (r clientRequest) toInput() application.ClientInput {
	return application.ClientInput{
		Name:  strings.TrimSpace(r.Name),
		Email: strings.TrimSpace(r.Email),
		Phone: strings.TrimSpace(r.Phone),
	}
}

type locationRequest struct {
	Label    string  `json:"label"`
	Street   string  `json:"street"`
	City     string  `json:"city"`
	Zip      string  `json:"zip"`
	GateCode *string `json:"gate_code"`
	DogCount int     `json:"dog_count"`
}

func (r locationRequest) toInput() application.LocationInput {
	return application.LocationInput{
		Label:    strings.TrimSpace(r.Label),
		Street:   strings.TrimSpace(r.Street),
		City:     strings.TrimSpace(r.City),
		Zip:      strings.TrimSpace(r.Zip),
		GateCode: r.GateCode,
		DogCount: r.DogCount,
	}
}

type clientResponse struct {
	Client clientDTO `json:"client"`
}

type listClientsResponse struct {
	Clients []clientDTO `json:"clients"`
}

type clientDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toClientDTO(client application.Client) clientDTO {
	return clientDTO{
		ID:        client.ID,
		Name:      client.Name,
		Email:     client.Email,
		Phone:     client.Phone,
		Status:    client.Status,
		CreatedAt: client.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: client.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toClientDTOs(clients []application.Client) []clientDTO {
	if len(clients) == 0 {
		return nil
	}
	out := make([]clientDTO, 0, len(clients))
	for _, client := range clients {
		out = append(out, toClientDTO(client))
	}
	return out
}

type locationResponse struct {
	Location locationDTO `json:"location"`
}

type listLocationsResponse struct {
	Locations []locationDTO `json:"locations"`
}

type locationDTO struct {
	ID        string  `json:"id"`
	ClientID  string  `json:"client_id"`
	Label     string  `json:"label"`
	Street    string  `json:"street"`
	City      string  `json:"city,omitempty"`
	Zip       string  `json:"zip"`
	GateCode  *string `json:"gate_code,omitempty"`
	DogCount  int     `json:"dog_count"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func toLocationDTO(location application.Location) locationDTO {
	return locationDTO{
		ID:        location.ID,
		ClientID:  location.ClientID,
		Label:     location.Label,
		Street:    location.Street,
		City:      location.City,
		Zip:       location.Zip,
		GateCode:  location.GateCode,
		DogCount:  location.DogCount,
		CreatedAt: location.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: location.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toLocationDTOs(locations []application.Location) []locationDTO {
	if len(locations) == 0 {
		return nil
	}
	out := make([]locationDTO, 0, len(locations))
	for _, location := range locations {
		out = append(out, toLocationDTO(location))
	}
	return out
}
