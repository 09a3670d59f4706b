package attendance

import (
	"context"
	"errors"
	"testing"

	"github.com/mmcdole/campus/internal/domain"
	"github.com/mmcdole/campus/internal/listcache"
	"github.com/mmcdole/campus/internal/listcache/listcachetest"
	"github.com/mmcdole/campus/internal/log"
)

type fakeGateway = listcachetest.FakeGateway[domain.AttendanceRecord, domain.AttendanceInput]

func seed() []domain.AttendanceRecord {
	return []domain.AttendanceRecord{
		{ID: "a1", StudentName: "Ada", ClassID: "9B", Date: "2024-09-02", Status: domain.AttendancePresent},
		{ID: "a2", StudentName: "Grace", ClassID: "9B", Date: "2024-09-02", Status: domain.AttendancePresent},
		{ID: "a3", StudentName: "Alan", ClassID: "9B", Date: "2024-09-02", Status: domain.AttendanceAbsent},
		{ID: "a4", StudentName: "Edsger", ClassID: "9B", Date: "2024-09-02", Status: domain.AttendanceLate},
	}
}

func setupList(t *testing.T, gw *fakeGateway, status string) *List {
	t.Helper()
	client := listcache.NewClient(listcache.Config{}, listcachetest.NewFakeClock(), log.NullLogger())
	l := NewList(client, gw, status)
	t.Cleanup(l.Close)
	if err := l.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	l.Wait()
	return l
}

func setStatusGateway() *fakeGateway {
	return &fakeGateway{
		FetchFunc: listcachetest.StaticPage(seed()),
		UpdateFunc: func(_ context.Context, id string, in domain.AttendanceInput) (domain.MutationResult[domain.AttendanceRecord], error) {
			for _, r := range seed() {
				if r.ID == id {
					r.Status = *in.Status
					return domain.MutationResult[domain.AttendanceRecord]{Item: r}, nil
				}
			}
			return domain.MutationResult[domain.AttendanceRecord]{}, domain.ErrNotFound
		},
	}
}

func TestSetStatus_MovesCategoryCount(t *testing.T) {
	l := setupList(t, setStatusGateway(), "")

	if _, err := l.SetStatus(context.Background(), "a2", domain.AttendanceAbsent); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	stats := l.Statistics()
	if stats.Count(domain.AttendancePresent) != 1 || stats.Count(domain.AttendanceAbsent) != 2 {
		t.Errorf("expected present=1 absent=2, got %v", stats.ByCategory)
	}
	if stats.Total != 4 {
		t.Errorf("expected total unchanged, got %d", stats.Total)
	}
	if l.Items()[1].Status != domain.AttendanceAbsent {
		t.Errorf("expected record replaced in place, got %+v", l.Items()[1])
	}
}

func TestSetStatus_RejectsUnknown(t *testing.T) {
	gw := setStatusGateway()
	l := setupList(t, gw, "")

	_, err := l.SetStatus(context.Background(), "a1", "asleep")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if n := len(gw.Updates()); n != 0 {
		t.Errorf("expected no gateway call, got %d", n)
	}
}

func TestSetStatus_NotFound(t *testing.T) {
	l := setupList(t, setStatusGateway(), "")
	before := l.Statistics()

	_, err := l.SetStatus(context.Background(), "missing", domain.AttendanceLate)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if l.Statistics().Count(domain.AttendanceLate) != before.Count(domain.AttendanceLate) {
		t.Error("expected statistics unchanged after a failed update")
	}
}

func TestNewList_InitialStatusFilter(t *testing.T) {
	gw := setStatusGateway()
	l := setupList(t, gw, domain.AttendanceAbsent)

	if got := gw.Fetches()[0].Category; got != domain.AttendanceAbsent {
		t.Errorf("expected initial fetch filtered to absent, got %q", got)
	}
	if l.Query().SortField != "date" {
		t.Errorf("expected date sort, got %+v", l.Query())
	}
}

func TestRate(t *testing.T) {
	l := setupList(t, setStatusGateway(), "")
	if got := l.Rate(); got != 0.75 {
		t.Errorf("expected rate 0.75, got %v", got)
	}
}

func TestRate_StatusFilter(t *testing.T) {
	// Counters cover every status; Total only the selected one
	gw := &fakeGateway{
		FetchFunc: func(_ context.Context, q domain.Query) (domain.Page[domain.AttendanceRecord], error) {
			var absent []domain.AttendanceRecord
			for _, r := range seed() {
				if r.Status == domain.AttendanceAbsent {
					absent = append(absent, r)
				}
			}
			page := listcachetest.PageOf(absent, q)
			page.Statistics.ByCategory = map[string]int{
				domain.AttendancePresent: 2,
				domain.AttendanceAbsent:  1,
				domain.AttendanceLate:    1,
			}
			return page, nil
		},
	}
	l := setupList(t, gw, domain.AttendanceAbsent)

	if l.Statistics().Total != 1 {
		t.Fatalf("expected 1 absent record, got %+v", l.Statistics())
	}
	if got := l.Rate(); got != 0.75 {
		t.Errorf("expected rate 0.75 under a status filter, got %v", got)
	}
}
