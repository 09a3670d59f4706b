package listcache_test

import (
	"errors"
	"testing"

	"github.com/mmcdole/campus/internal/domain"
	"github.com/mmcdole/campus/internal/listcache"
	"github.com/mmcdole/campus/internal/listcache/listcachetest"
)

func pageOf(items ...rec) domain.Page[rec] {
	return listcachetest.PageOf(items, domain.Query{Page: 1, Limit: 10})
}

func TestStore_BeginFetchKeepsItems(t *testing.T) {
	s := listcache.NewStore[rec](nil)

	gen, err := s.BeginFetch()
	if err != nil {
		t.Fatalf("BeginFetch failed: %v", err)
	}
	if err := s.CommitFetch(gen, pageOf(rec{ID: "1", Category: "A"}), false); err != nil {
		t.Fatalf("CommitFetch failed: %v", err)
	}

	if _, err := s.BeginFetch(); err != nil {
		t.Fatalf("BeginFetch failed: %v", err)
	}
	st := s.Snapshot()
	if !st.Loading {
		t.Error("expected loading after BeginFetch")
	}
	if len(st.Items) != 1 {
		t.Errorf("expected previous items to stay visible, got %d", len(st.Items))
	}
}

func TestStore_CommitFetchDiscardsStale(t *testing.T) {
	s := listcache.NewStore[rec](nil)

	older, _ := s.BeginFetch()
	newer, _ := s.BeginFetch()

	if err := s.CommitFetch(newer, pageOf(rec{ID: "new", Category: "A"}), false); err != nil {
		t.Fatalf("CommitFetch(newer) failed: %v", err)
	}
	err := s.CommitFetch(older, pageOf(rec{ID: "old", Category: "A"}), false)
	if !errors.Is(err, listcache.ErrStaleResponse) {
		t.Fatalf("expected ErrStaleResponse, got %v", err)
	}

	st := s.Snapshot()
	if len(st.Items) != 1 || st.Items[0].ID != "new" {
		t.Errorf("expected newer page to survive, got %+v", st.Items)
	}
	if st.Loading {
		t.Error("expected loading to be cleared by the newer commit")
	}
}

func TestStore_FailFetchKeepsData(t *testing.T) {
	s := listcache.NewStore[rec](nil)

	gen, _ := s.BeginFetch()
	s.CommitFetch(gen, pageOf(rec{ID: "1", Category: "A"}, rec{ID: "2", Category: "B"}), false)

	gen, _ = s.BeginFetch()
	if err := s.FailFetch(gen, domain.ErrServer); err != nil {
		t.Fatalf("FailFetch failed: %v", err)
	}

	st := s.Snapshot()
	if !errors.Is(st.Err, domain.ErrServer) {
		t.Errorf("expected ErrServer, got %v", st.Err)
	}
	if st.Loading {
		t.Error("expected loading to be cleared")
	}
	if len(st.Items) != 2 || st.Statistics.Total != 2 {
		t.Errorf("expected last good page to be kept, got %d items, total %d", len(st.Items), st.Statistics.Total)
	}

	// A new fetch clears the error indicator
	s.BeginFetch()
	if s.Snapshot().Err != nil {
		t.Error("expected BeginFetch to clear the error")
	}
}

func TestStore_FailFetchStaleIsIgnored(t *testing.T) {
	s := listcache.NewStore[rec](nil)

	older, _ := s.BeginFetch()
	s.BeginFetch()

	if err := s.FailFetch(older, domain.ErrNetwork); !errors.Is(err, listcache.ErrStaleResponse) {
		t.Fatalf("expected ErrStaleResponse, got %v", err)
	}
	st := s.Snapshot()
	if st.Err != nil {
		t.Errorf("expected no error from a stale failure, got %v", st.Err)
	}
	if !st.Loading {
		t.Error("expected the newer fetch to still be loading")
	}
}

func TestStore_MergeSkipsDuplicates(t *testing.T) {
	s := listcache.NewStore[rec](nil)

	gen, _ := s.BeginFetch()
	s.CommitFetch(gen, pageOf(rec{ID: "1", Category: "A"}, rec{ID: "2", Category: "A"}), false)

	gen, _ = s.BeginFetch()
	next := pageOf(rec{ID: "2", Category: "A"}, rec{ID: "3", Category: "A"})
	if err := s.CommitFetch(gen, next, true); err != nil {
		t.Fatalf("CommitFetch(merge) failed: %v", err)
	}

	got := ids(s.Snapshot().Items)
	want := []string{"1", "2", "3"}
	if !equalStrings(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	s := listcache.NewStore[rec](nil)
	gen, _ := s.BeginFetch()
	s.CommitFetch(gen, pageOf(rec{ID: "1", Category: "A"}), false)

	snap := s.Snapshot()
	snap.Items[0].ID = "mutated"
	snap.Statistics.ByCategory["A"] = 99

	st := s.Snapshot()
	if st.Items[0].ID != "1" {
		t.Error("expected snapshot items to be detached from the store")
	}
	if st.Statistics.Count("A") != 1 {
		t.Error("expected snapshot statistics to be detached from the store")
	}
}

func TestStore_ClosedIgnoresResults(t *testing.T) {
	s := listcache.NewStore[rec](nil)
	gen, _ := s.BeginFetch()
	s.Close()

	if err := s.CommitFetch(gen, pageOf(rec{ID: "1", Category: "A"}), false); !errors.Is(err, listcache.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if _, err := s.BeginFetch(); !errors.Is(err, listcache.ErrClosed) {
		t.Fatalf("expected ErrClosed from BeginFetch, got %v", err)
	}
	if len(s.Snapshot().Items) != 0 {
		t.Error("expected closed store to be empty")
	}
}

func TestStore_NotifiesOnChange(t *testing.T) {
	calls := 0
	s := listcache.NewStore[rec](func() { calls++ })

	gen, _ := s.BeginFetch()
	s.CommitFetch(gen, pageOf(), false)

	if calls != 2 {
		t.Errorf("expected 2 change notifications, got %d", calls)
	}
}

func ids(items []rec) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
