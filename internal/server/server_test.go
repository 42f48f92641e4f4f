package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/qrystalml/enron-summary/internal/model"
	"github.com/qrystalml/enron-summary/internal/store"
)

func newTestService(t *testing.T) (*Service, *model.Run) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	jan := model.Month{Year: 2001, Month: time.January}
	run, err := s.SaveRun(context.Background(), store.RunParams{
		Input:  "events.csv",
		People: []string{"alice", "bob"},
		Counts: []model.PersonCount{{Person: "alice", Sent: 2, Received: 1}},
		Sent: []model.MonthlySent{
			{Person: "alice", Month: jan, Sent: 2},
			{Person: "bob", Month: jan, Sent: 0},
		},
		Contacts: []model.MonthlyShare{
			{Person: "alice", Month: jan, Share: 1},
			{Person: "bob", Month: jan, Share: 0},
		},
	})
	if err != nil {
		t.Fatalf("save run: %v", err)
	}
	return NewService(s), run
}

func get(t *testing.T, svc *Service, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	svc.GetRouter().ServeHTTP(rec, req)
	return rec
}

func TestListRuns(t *testing.T) {
	svc, run := newTestService(t)
	rec := get(t, svc, "/api/v1/runs")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var runs []model.Run
	if err := json.Unmarshal(rec.Body.Bytes(), &runs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != run.ID {
		t.Errorf("expected run %s, got %+v", run.ID, runs)
	}
}

func TestGetLatestRun(t *testing.T) {
	svc, run := newTestService(t)
	rec := get(t, svc, "/api/v1/runs/latest")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got model.Run
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != run.ID || len(got.Sent) != 2 {
		t.Errorf("unexpected run %+v", got)
	}
}

func TestSentJSON(t *testing.T) {
	svc, run := newTestService(t)
	rec := get(t, svc, "/api/v1/runs/"+run.ID+"/sent")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var rows []model.MonthlySent
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 2 || rows[0].Month.String() != "2001-01" {
		t.Errorf("unexpected rows %+v", rows)
	}
}

func TestContactsCSV(t *testing.T) {
	svc, run := newTestService(t)
	rec := get(t, svc, "/api/v1/runs/"+run.ID+"/contacts?format=csv")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv") {
		t.Errorf("expected csv content type, got %q", rec.Header().Get("Content-Type"))
	}
	want := "month,alice,bob\n2001-01,1,0\n"
	if rec.Body.String() != want {
		t.Errorf("expected %q, got %q", want, rec.Body.String())
	}
}

func TestCountsNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	rec := get(t, svc, "/api/v1/runs/nope/counts")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestInvalidLimit(t *testing.T) {
	svc, _ := newTestService(t)
	rec := get(t, svc, "/api/v1/runs?limit=abc")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
