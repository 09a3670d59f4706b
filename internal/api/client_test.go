package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmcdole/campus/internal/domain"
	"github.com/mmcdole/campus/internal/log"
)

// setupServer starts a server answering every request with handler and
// returns a client pointed at it.
func setupServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-token", log.NullLogger())
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func TestFetchPage(t *testing.T) {
	var gotQuery string
	var gotAuth string
	c := setupServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		writeJSON(t, w, http.StatusOK, map[string]any{
			"data": []map[string]any{
				{"id": "n1", "type": "alert", "title": "Fire drill"},
				{"id": "n2", "type": "event", "title": "Sports day"},
			},
			"pagination": domain.NewPagination(1, 2, 5),
			"statistics": domain.Statistics{Total: 5, ByCategory: map[string]int{"alert": 3, "event": 2}},
		})
	})

	page, err := c.Notifications().FetchPage(context.Background(), domain.Query{
		Page: 1, Limit: 2, Category: "alert", Search: "drill", SortField: "createdAt", SortOrder: domain.SortDesc,
	})
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}

	if gotAuth != "Bearer test-token" {
		t.Errorf("expected bearer token, got %q", gotAuth)
	}
	want := "category=alert&limit=2&order=desc&page=1&search=drill&sort=createdAt"
	if gotQuery != want {
		t.Errorf("expected query %q, got %q", want, gotQuery)
	}
	if len(page.Items) != 2 || page.Items[0].ID != "n1" || page.Items[1].Type != "event" {
		t.Errorf("unexpected items: %+v", page.Items)
	}
	if page.Pagination.TotalPages != 3 || !page.Pagination.HasNext {
		t.Errorf("unexpected pagination: %+v", page.Pagination)
	}
	if page.Statistics.Count("alert") != 3 {
		t.Errorf("unexpected statistics: %+v", page.Statistics)
	}
}

func TestFetchPage_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"missing data", `{"pagination":{"page":1,"limit":10,"total":0,"totalPages":0},"statistics":{"total":0}}`},
		{"missing pagination", `{"data":[],"statistics":{"total":0}}`},
		{"missing statistics", `{"data":[],"pagination":{"page":1,"limit":10,"total":0,"totalPages":0}}`},
		{"inconsistent pagination", `{"data":[],"pagination":{"page":1,"limit":10,"total":30,"totalPages":1},"statistics":{"total":30}}`},
		{"totals disagree", `{"data":[],"pagination":{"page":1,"limit":10,"total":3,"totalPages":1},"statistics":{"total":4}}`},
		{"item without id", `{"data":[{"title":"x"}],"pagination":{"page":1,"limit":10,"total":1,"totalPages":1},"statistics":{"total":1}}`},
		{"too many items", `{"data":[{"id":"a"},{"id":"b"}],"pagination":{"page":1,"limit":1,"total":2,"totalPages":2,"hasNext":true},"statistics":{"total":2}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := setupServer(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			})
			_, err := c.Notifications().FetchPage(context.Background(), domain.Query{Page: 1, Limit: 10})
			if !errors.Is(err, domain.ErrMalformedResponse) {
				t.Errorf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusUnauthorized, ``, domain.ErrAuthFailed},
		{http.StatusForbidden, ``, domain.ErrAuthFailed},
		{http.StatusNotFound, `{"error":{"message":"not found"}}`, domain.ErrNotFound},
		{http.StatusUnprocessableEntity, `{"error":{"message":"invalid","fields":{"title":"is required"}}}`, domain.ErrValidation},
		{http.StatusBadRequest, `{"error":{"message":"bad json"}}`, domain.ErrValidation},
		{http.StatusInternalServerError, `{"error":{"message":"boom"}}`, domain.ErrServer},
		{http.StatusBadGateway, `bad gateway`, domain.ErrServer},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := setupServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			_, err := c.Notifications().Create(context.Background(), domain.NotificationInput{})
			if !errors.Is(err, tt.want) {
				t.Errorf("status %d: expected %v, got %v", tt.status, tt.want, err)
			}
		})
	}
}

func TestValidationFields(t *testing.T) {
	c := setupServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnprocessableEntity, map[string]any{
			"error": map[string]any{"message": "invalid notification", "fields": map[string]string{"title": "is required"}},
		})
	})

	_, err := c.Notifications().Create(context.Background(), domain.NotificationInput{})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Message != "invalid notification" || verr.Fields["title"] != "is required" {
		t.Errorf("unexpected validation error: %+v", verr)
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, "", log.NullLogger())
	_, err := c.Subjects().FetchPage(context.Background(), domain.Query{Page: 1, Limit: 10})
	if !errors.Is(err, domain.ErrNetwork) {
		t.Errorf("expected ErrNetwork, got %v", err)
	}
	if !IsTransient(err) {
		t.Error("expected a network error to be transient")
	}
}

func TestTimeoutIsNetworkError(t *testing.T) {
	c := setupServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Attendance().FetchPage(ctx, domain.Query{Page: 1, Limit: 10})
	if !errors.Is(err, domain.ErrNetwork) {
		t.Errorf("expected ErrNetwork, got %v", err)
	}
}

func TestCreateAndUpdate(t *testing.T) {
	var method, path string
	var sent map[string]any
	c := setupServer(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		json.NewDecoder(r.Body).Decode(&sent)
		writeJSON(t, w, http.StatusOK, map[string]any{
			"data":       map[string]any{"id": "a1", "status": "late", "studentName": "Ada"},
			"statistics": domain.Statistics{Total: 9, ByCategory: map[string]int{"late": 2}},
		})
	})

	res, err := c.Attendance().Update(context.Background(), "a1", domain.AttendanceInput{Status: domain.Ptr("late")})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if method != http.MethodPatch || path != "/api/attendance/a1" {
		t.Errorf("expected PATCH /api/attendance/a1, got %s %s", method, path)
	}
	if len(sent) != 1 || sent["status"] != "late" {
		t.Errorf("expected only the status field to be sent, got %v", sent)
	}
	if res.Item.Status != "late" || res.Statistics == nil || res.Statistics.Total != 9 {
		t.Errorf("unexpected result: %+v", res)
	}

	if _, err := c.Attendance().Create(context.Background(), domain.AttendanceInput{}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if method != http.MethodPost || path != "/api/attendance" {
		t.Errorf("expected POST /api/attendance, got %s %s", method, path)
	}
}

func TestCreateWithoutStatistics(t *testing.T) {
	c := setupServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusCreated, map[string]any{
			"data": map[string]any{"id": "s1", "name": "Algebra", "category": "core"},
		})
	})

	res, err := c.Subjects().Create(context.Background(), domain.SubjectInput{Name: domain.Ptr("Algebra")})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if res.Statistics != nil {
		t.Errorf("expected nil statistics, got %+v", res.Statistics)
	}
	if res.Item.Name != "Algebra" {
		t.Errorf("unexpected item: %+v", res.Item)
	}
}

func TestCreate_MissingData(t *testing.T) {
	c := setupServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"statistics":{"total":1}}`)
	})
	_, err := c.Subjects().Create(context.Background(), domain.SubjectInput{})
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	t.Run("no content", func(t *testing.T) {
		c := setupServer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete || r.URL.Path != "/api/notifications/n%201" && r.URL.Path != "/api/notifications/n 1" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			w.WriteHeader(http.StatusNoContent)
		})
		stats, err := c.Notifications().Delete(context.Background(), "n 1")
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if stats != nil {
			t.Errorf("expected nil statistics, got %+v", stats)
		}
	})

	t.Run("with statistics", func(t *testing.T) {
		c := setupServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{
				"statistics": domain.Statistics{Total: 4, ByCategory: map[string]int{"alert": 4}},
			})
		})
		stats, err := c.Notifications().Delete(context.Background(), "n1")
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if stats == nil || stats.Total != 4 {
			t.Errorf("expected server statistics, got %+v", stats)
		}
	})
}
