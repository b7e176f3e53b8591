package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ProductCatalog/internal/auth"
	"ProductCatalog/pkg/kit"
)

type Server struct {
	Service *Service
	Log     *zap.Logger
}

type stockReq struct {
	Stock *int `json:"stock"`
}

type readyResp struct {
	InstanceID string `json:"instance_id"`
	Products   int    `json:"products"`
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, readyResp{
		InstanceID: s.Service.InstanceID(),
		Products:   s.Service.Len(),
	})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	f, err := FilterFromQuery(r.URL.Query())
	if IsValidation(err) {
		s.writeServiceError(w, r, err)
		return
	}
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad filter", map[string]any{"cause": err.Error()})
		return
	}
	if f.IsEmpty() {
		kit.WriteJSON(w, http.StatusOK, s.Service.List())
		return
	}
	s.writeFiltered(w, r, f)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var f Filter
	if err := kit.DecodeJSON(w, r, &f); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	s.writeFiltered(w, r, f)
}

func (s *Server) writeFiltered(w http.ResponseWriter, r *http.Request, f Filter) {
	out, err := s.Service.Filter(f)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := s.productID(w, r)
	if !ok {
		return
	}

	p, found := s.Service.Get(id)
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var np NewProduct
	if err := kit.DecodeJSON(w, r, &np); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	p, err := s.Service.Create(np)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.audit(r, "product created", p.ID)
	w.Header().Set("Location", fmt.Sprintf("/products/%d", p.ID))
	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) updateStock(w http.ResponseWriter, r *http.Request) {
	id, ok := s.productID(w, r)
	if !ok {
		return
	}

	var req stockReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if req.Stock == nil {
		kit.WriteError(w, r, http.StatusBadRequest, "stock required", nil)
		return
	}

	p, err := s.Service.UpdateInventory(id, *req.Stock)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.audit(r, "inventory updated", id, zap.Int("stock", p.Stock))
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := s.productID(w, r)
	if !ok {
		return
	}

	if err := s.Service.Delete(id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.audit(r, "product deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) productID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "bad id", map[string]any{"id": raw})
		return 0, false
	}
	return id, true
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ce *CatalogError
		ve *ValidationError
	)
	switch {
	case errors.As(err, &ce) && ce.Kind == NotFound:
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": ce.ID})
	case errors.As(err, &ce) && ce.Kind == InvalidStock:
		details := map[string]any{"kind": string(InvalidStock), "stock": ce.Stock}
		if errors.As(err, &ve) {
			details["reason"] = string(ve.Kind)
			details["limit"] = ve.Limit
		}
		kit.WriteError(w, r, http.StatusBadRequest, "invalid stock", details)
	case errors.As(err, &ve):
		kit.WriteError(w, r, http.StatusBadRequest, "validation failed", map[string]any{
			"kind":  string(ve.Kind),
			"field": ve.Field,
			"limit": ve.Limit,
		})
	default:
		if s.Log != nil {
			s.Log.Error("catalog operation failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func (s *Server) audit(r *http.Request, msg string, id uint64, fields ...zap.Field) {
	if s.Log == nil {
		return
	}
	c, _ := auth.CallerFromContext(r.Context())
	s.Log.Info(msg, append(fields, zap.Uint64("id", id), zap.String("caller", c.ID))...)
}

// FilterFromQuery reads name_contains, min_price, max_price and in_stock_only.
// Absent parameters stay unset; price bounds must pass ValidateFilter.
func FilterFromQuery(q url.Values) (Filter, error) {
	var f Filter

	if q.Has("name_contains") {
		v := q.Get("name_contains")
		f.NameContains = &v
	}
	if q.Has("min_price") {
		d, err := decimal.NewFromString(q.Get("min_price"))
		if err != nil {
			return Filter{}, fmt.Errorf("min_price: %w", err)
		}
		f.MinPrice = &d
	}
	if q.Has("max_price") {
		d, err := decimal.NewFromString(q.Get("max_price"))
		if err != nil {
			return Filter{}, fmt.Errorf("max_price: %w", err)
		}
		f.MaxPrice = &d
	}
	if q.Has("in_stock_only") {
		b, err := strconv.ParseBool(q.Get("in_stock_only"))
		if err != nil {
			return Filter{}, fmt.Errorf("in_stock_only: %w", err)
		}
		f.InStockOnly = b
	}

	if err := ValidateFilter(f); err != nil {
		return Filter{}, err
	}
	return f, nil
}

// Query encodes f as the query string GET /products reads back with
// FilterFromQuery.
func (f Filter) Query() url.Values {
	q := url.Values{}
	if f.NameContains != nil {
		q.Set("name_contains", *f.NameContains)
	}
	if f.MinPrice != nil {
		q.Set("min_price", f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		q.Set("max_price", f.MaxPrice.String())
	}
	if f.InStockOnly {
		q.Set("in_stock_only", "true")
	}
	return q
}
