package webhook

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jackrtech/jacks-telebot/internal/domain"
	"github.com/jackrtech/jacks-telebot/internal/repository"
)

// Orders is the slice of persistence the callback server needs.
type Orders interface {
	MarkPaid(ctx context.Context, orderID string) error
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
}

// Notifier tells the buyer their payment landed.
type Notifier interface {
	OrderPaid(order *domain.Order)
}

// Server receives the payment provider's success redirect and exposes a
// health probe. Orders flip to paid here; everything else about them is
// immutable.
type Server struct {
	addr     string
	orders   Orders
	notifier Notifier
}

func NewServer(addr string, orders Orders, notifier Notifier) *Server {
	return &Server{addr: addr, orders: orders, notifier: notifier}
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/payment/success", s.handleSuccess)
	r.Get("/payment/cancel", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Payment cancelled. Your order is still saved; we'll be in touch."))
	})
	return r
}

func (s *Server) handleSuccess(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("order_id")
	if orderID == "" {
		http.Error(w, "missing order_id", http.StatusBadRequest)
		return
	}

	if err := s.orders.MarkPaid(r.Context(), orderID); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			http.Error(w, "unknown order", http.StatusNotFound)
			return
		}
		log.Printf("failed to mark order %s paid: %v", orderID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if order, err := s.orders.GetOrder(r.Context(), orderID); err == nil {
		s.notifier.OrderPaid(order)
	} else {
		log.Printf("failed to load order %s after payment: %v", orderID, err)
	}

	_, _ = w.Write([]byte("Payment received. Thank you!"))
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("payment callback server listening on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
