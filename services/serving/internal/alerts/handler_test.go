package alerts

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/appetiteclub/serving/services/serving/internal/serving"
	"github.com/go-chi/chi/v5"
)

func newAlertRouter(e *Engine) http.Handler {
	r := chi.NewRouter()
	NewHandler(e, nil).RegisterRoutes(r)
	return r
}

func TestHandlerDismissFlow(t *testing.T) {
	g := arrivedGroup("550e8400-e29b-41d4-a716-446655440030", 25*time.Minute,
		serving.Item{Name: "Cá chiên", TotalQuantity: 2, Unit: "con"})
	e := NewEngine(NewMockGroupSource(g), NewMockDismissPersister(), nil, Config{}, nil)
	e.Tick(tickNow)
	router := newAlertRouter(e)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/alerts", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("ListActive() status = %d, want %d", w.Code, http.StatusOK)
	}

	id := ServingAlertID(g.ID)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/alerts/"+id+"/dismiss", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Dismiss() status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if len(e.Active()) != 0 {
		t.Error("alert still active after dismiss request")
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/alerts/history", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GetHistory() status = %d, want %d", w.Code, http.StatusOK)
	}

	var env struct {
		Data History `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(env.Data.DismissedIDs) != 1 || env.Data.DismissedIDs[0] != id {
		t.Errorf("dismissed ids = %v, want [%s]", env.Data.DismissedIDs, id)
	}
	if len(env.Data.Alerts) != 1 {
		t.Errorf("history alerts = %d, want 1", len(env.Data.Alerts))
	}
}
