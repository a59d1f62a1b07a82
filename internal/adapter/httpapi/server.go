package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/example/configurator-checkout/internal/adapter/session"
	"github.com/example/configurator-checkout/internal/domain"
	"github.com/example/configurator-checkout/internal/usecase"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 16

type OrderCreator interface {
	Execute(ctx context.Context, configurationID string) (usecase.OrderResult, error)
}

type PaymentCreator interface {
	Execute(ctx context.Context, configurationID string) (usecase.PaymentResult, error)
}

type Server struct {
	Router     *mux.Router
	UCOrder    OrderCreator
	UCPayment  PaymentCreator
	UserHeader string
}

func NewServer(orders OrderCreator, payments PaymentCreator, userHeader string) *Server {
	s := &Server{Router: mux.NewRouter(), UCOrder: orders, UCPayment: payments, UserHeader: userHeader}
	s.Router.Use(RequestLogger(log.Default()), session.Middleware(userHeader))
	s.Router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.Router.HandleFunc("/api/payments", s.handleCreatePayment).Methods(http.MethodPost)
	s.Router.HandleFunc("/api/configurations/{id}/order", s.handleCreateOrder).Methods(http.MethodPost)
	s.Router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	})
	s.Router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// configRef принимает и {"id": "..."}, и просто строку.
type configRef struct {
	ID string
}

func (c *configRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &c.ID)
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	c.ID = obj.ID
	return nil
}

type createPaymentRequest struct {
	ConfigID configRef `json:"configId"`
}

type createPaymentResponse struct {
	TransactionID string       `json:"transactionId"`
	Order         domain.Order `json:"order"`
}

type orderResponse struct {
	Order domain.Order `json:"order"`
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}
	id := strings.TrimSpace(req.ConfigID.ID)
	if id == "" {
		writeError(w, http.StatusBadRequest, codeMissingRequiredField, "configId is required")
		return
	}

	res, err := s.UCPayment.Execute(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, createPaymentResponse{TransactionID: res.TransactionID, Order: res.Order})
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		writeError(w, http.StatusBadRequest, codeMissingRequiredField, "configuration id is required")
		return
	}
	res, err := s.UCOrder.Execute(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse{Order: res.Order})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeDomainError отдаёт клиенту 404 для отсутствующих сущностей; прочие
// ошибки логируются, а клиент получает непрозрачное сообщение.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrConfigurationNotFound):
		writeError(w, http.StatusNotFound, codeConfigurationNotFound, "Configuration not found")
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, codeUserNotFound, "User not found")
	case domain.IsValidation(err):
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
	default:
		log.Printf("request failed method=%s path=%s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
