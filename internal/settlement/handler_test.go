package settlement

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/spotnere/admin-api/internal/storage/storagetest"
	"github.com/spotnere/admin-api/pkg/middleware"
	"github.com/spotnere/admin-api/pkg/response"
)

func newTestServer(t *testing.T) (*httptest.Server, storagetest.Backend) {
	t.Helper()
	store := storagetest.NewSQLite(t)
	svc, _ := newTestService(t, store)
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(middleware.OperatorMiddleware)
	r.Route("/api/payouts", h.RegisterPayoutRoutes)
	r.Mount("/api/settlements", h.Routes())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func postSettle(t *testing.T, srv *httptest.Server, placeID string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/payouts/"+placeID+"/settle", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.OperatorHeader, "admin@spotnere")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) *response.APIError {
	t.Helper()
	var body response.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Error == nil {
		t.Fatal("expected error object")
	}
	return body.Error
}

func TestHandler_Settle(t *testing.T) {
	srv, store := newTestServer(t)
	f := storagetest.SeedPlace(t, store, "Arena", "100", "200", "300")

	resp := postSettle(t, srv, f.Place.ID, SettleRequest{BookingIDs: f.BookingIDs(0, 1)})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var settled SettleResponse
	if err := json.NewDecoder(resp.Body).Decode(&settled); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if settled.SettlementID == "" || !settled.Amount.Equal(storagetest.Dec("300")) || len(settled.SettledBookingIDs) != 2 {
		t.Fatalf("unexpected settle response %+v", settled)
	}

	t.Run("repeat is rejected with 409", func(t *testing.T) {
		resp := postSettle(t, srv, f.Place.ID, SettleRequest{BookingIDs: f.BookingIDs(0)})
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("expected 409, got %d", resp.StatusCode)
		}
		apiErr := decodeError(t, resp)
		if apiErr.Code != response.CodeAlreadySettled || len(apiErr.BookingIDs) != 1 || apiErr.BookingIDs[0] != f.Bookings[0].ID {
			t.Errorf("unexpected error %+v", apiErr)
		}
	})

	t.Run("unknown booking is rejected with 400", func(t *testing.T) {
		resp := postSettle(t, srv, f.Place.ID, SettleRequest{BookingIDs: []string{f.Bookings[2].ID, "booking_99"}})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
		apiErr := decodeError(t, resp)
		if apiErr.Code != response.CodeInvalidRequest || len(apiErr.BookingIDs) != 1 || apiErr.BookingIDs[0] != "booking_99" {
			t.Errorf("unexpected error %+v", apiErr)
		}
	})

	t.Run("empty selection is rejected with 400", func(t *testing.T) {
		resp := postSettle(t, srv, f.Place.ID, map[string]any{"booking_ids": []string{}})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
		if apiErr := decodeError(t, resp); apiErr.Code != response.CodeInvalidRequest {
			t.Errorf("unexpected error %+v", apiErr)
		}
	})

	t.Run("settlement is readable by id", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/settlements/" + settled.SettlementID)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var got SettlementResponse
		if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if got.CreatedBy != "admin@spotnere" || got.BookingCount != 2 || got.PlaceID != f.Place.ID {
			t.Errorf("unexpected settlement %+v", got)
		}
	})

	t.Run("unknown settlement is 404", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/settlements/missing")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("place settlements are listed with total", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/payouts/" + f.Place.ID + "/settlements?per_page=5")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if got := resp.Header.Get(response.TotalCountHeader); got != "1" {
			t.Errorf("expected total 1, got %q", got)
		}
		var list []SettlementResponse
		if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if len(list) != 1 || list[0].ID != settled.SettlementID {
			t.Errorf("unexpected list %+v", list)
		}
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/payouts/" + f.Place.ID + "/settlements?page=9223372036854775807")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var list []SettlementResponse
		if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if len(list) != 0 {
			t.Errorf("expected no settlements, got %d", len(list))
		}
	})
}

func TestHandler_Settle_MalformedBody(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/payouts/p1/settle", "application/json", bytes.NewBufferString(`{"booking_ids":`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHandler_Settle_Unavailable(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSettleError(rec, unavailable(nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	var body response.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.Error.Code != response.CodeUnavailable {
		t.Errorf("unexpected code %q", body.Error.Code)
	}
}
