package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Shahin2512/HCP-Module/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustCreateHCP(t *testing.T, s *Store, name string) model.HCP {
	t.Helper()
	h, err := s.CreateHCP(context.Background(), model.NewHCP{Name: name})
	if err != nil {
		t.Fatalf("CreateHCP(%q): %v", name, err)
	}
	return h
}

// TestMigrationsIdempotent opens the same database twice and checks that no
// migration is applied a second time.
func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	v1, err := s1.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	mustCreateHCP(t, s1, "Dr Persist")
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s2.Close()

	v2, err := s2.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if diff := cmp.Diff(v1, v2); diff != "" {
		t.Errorf("applied migrations changed (-first +second):\n%s", diff)
	}
	if _, err := s2.GetHCPByName(context.Background(), "Dr Persist"); err != nil {
		t.Errorf("data lost across reopen: %v", err)
	}
}

func TestMigrationsOrdered(t *testing.T) {
	s := openTestStore(t)

	versions, err := s.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if len(versions) == 0 {
		t.Fatal("expected at least one applied migration")
	}
	for i := 1; i < len(versions); i++ {
		if versions[i] <= versions[i-1] {
			t.Errorf("migrations not in ascending order: %v", versions)
			break
		}
	}
}

func TestIndexesExist(t *testing.T) {
	s := openTestStore(t)

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?", "idx_interactions_hcp_date").Scan(&count)
	if err != nil {
		t.Fatalf("querying index: %v", err)
	}
	if count != 1 {
		t.Error("index idx_interactions_hcp_date not found")
	}
}

func TestHCPs_CreateGetList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a, err := s.CreateHCP(ctx, model.NewHCP{Name: "Dr A", Specialty: "Oncology", Contact: "a@example.com"})
	if err != nil {
		t.Fatalf("CreateHCP: %v", err)
	}
	b := mustCreateHCP(t, s, "Dr B")
	if a.ID == 0 || b.ID <= a.ID {
		t.Errorf("ids = %d, %d", a.ID, b.ID)
	}

	got, err := s.GetHCP(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetHCP: %v", err)
	}
	if diff := cmp.Diff(a, got); diff != "" {
		t.Errorf("GetHCP mismatch (-want +got):\n%s", diff)
	}

	all, err := s.ListHCPs(ctx, 0, 0)
	if err != nil {
		t.Fatalf("ListHCPs: %v", err)
	}
	if diff := cmp.Diff([]model.HCP{a, b}, all); diff != "" {
		t.Errorf("ListHCPs mismatch (-want +got):\n%s", diff)
	}

	page, err := s.ListHCPs(ctx, 1, 1)
	if err != nil {
		t.Fatalf("ListHCPs page: %v", err)
	}
	if len(page) != 1 || page[0].ID != b.ID {
		t.Errorf("page = %+v", page)
	}
}

func TestHCPs_EmptyListIsNotNil(t *testing.T) {
	s := openTestStore(t)
	hcps, err := s.ListHCPs(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("ListHCPs: %v", err)
	}
	if hcps == nil {
		t.Error("ListHCPs returned nil for an empty table")
	}
}

func TestHCPs_DuplicateName(t *testing.T) {
	s := openTestStore(t)
	mustCreateHCP(t, s, "Dr A")

	_, err := s.CreateHCP(context.Background(), model.NewHCP{Name: "Dr A"})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("err = %v, want ErrDuplicate", err)
	}
}

func TestHCPs_NotFound(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.GetHCP(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetHCP err = %v", err)
	}
	mustCreateHCP(t, s, "Dr A")
	if _, err := s.GetHCPByName(ctx, "dr a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetHCPByName is not exact: err = %v", err)
	}
}

func TestInteractions_CreateFillsDefaultsAndName(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	h := mustCreateHCP(t, s, "Dr A")

	ix, err := s.CreateInteraction(ctx, model.Interaction{
		HCPID:           h.ID,
		Date:            "2024-05-01T00:00:00",
		Time:            "10:30",
		TopicsDiscussed: "Product X",
	})
	if err != nil {
		t.Fatalf("CreateInteraction: %v", err)
	}

	want := model.Interaction{
		ID:              ix.ID,
		HCPID:           h.ID,
		HCPName:         "Dr A",
		Type:            model.TypeMeeting,
		Date:            "2024-05-01T00:00:00",
		Time:            "10:30",
		TopicsDiscussed: "Product X",
		Sentiment:       model.SentimentNeutral,
	}
	if diff := cmp.Diff(want, ix); diff != "" {
		t.Errorf("interaction mismatch (-want +got):\n%s", diff)
	}
}

func TestInteractions_UnknownHCP(t *testing.T) {
	s := openTestStore(t)
	_, err := s.CreateInteraction(context.Background(), model.Interaction{HCPID: 7, Date: "2024-05-01T00:00:00"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestInteractions_ListAndMostRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a := mustCreateHCP(t, s, "Dr A")
	b := mustCreateHCP(t, s, "Dr B")

	dates := []string{"2024-05-01T00:00:00", "2024-06-01T00:00:00", "2024-04-01T00:00:00"}
	for _, d := range dates {
		if _, err := s.CreateInteraction(ctx, model.Interaction{HCPID: a.ID, Date: d, Outcomes: d}); err != nil {
			t.Fatalf("CreateInteraction: %v", err)
		}
	}
	if _, err := s.CreateInteraction(ctx, model.Interaction{HCPID: b.ID, Date: "2025-01-01T00:00:00"}); err != nil {
		t.Fatalf("CreateInteraction: %v", err)
	}

	recent, err := s.MostRecentInteraction(ctx, a.ID)
	if err != nil {
		t.Fatalf("MostRecentInteraction: %v", err)
	}
	if recent.Date != "2024-06-01T00:00:00" {
		t.Errorf("most recent date = %q", recent.Date)
	}

	all, err := s.ListInteractions(ctx, 0, 0)
	if err != nil {
		t.Fatalf("ListInteractions: %v", err)
	}
	if len(all) != 4 || all[3].HCPName != "Dr B" {
		t.Errorf("list = %+v", all)
	}

	page, err := s.ListInteractions(ctx, 1, 2)
	if err != nil {
		t.Fatalf("ListInteractions page: %v", err)
	}
	if len(page) != 2 || page[0].ID != all[1].ID {
		t.Errorf("page = %+v", page)
	}

	c := mustCreateHCP(t, s, "Dr C")
	if _, err := s.MostRecentInteraction(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestInteractions_Update(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a := mustCreateHCP(t, s, "Dr A")
	b := mustCreateHCP(t, s, "Dr B")

	ix, err := s.CreateInteraction(ctx, model.Interaction{HCPID: a.ID, Date: "2024-05-01T00:00:00", Attendees: "nurse"})
	if err != nil {
		t.Fatalf("CreateInteraction: %v", err)
	}

	outcome := "agreed to trial"
	positive := model.SentimentPositive
	updated, err := s.UpdateInteraction(ctx, ix.ID, InteractionPatch{HCPID: &b.ID, Outcomes: &outcome, Sentiment: &positive})
	if err != nil {
		t.Fatalf("UpdateInteraction: %v", err)
	}
	if updated.HCPID != b.ID || updated.HCPName != "Dr B" || updated.Outcomes != outcome || updated.Sentiment != positive {
		t.Errorf("updated = %+v", updated)
	}
	if updated.Attendees != "nurse" {
		t.Errorf("untouched field changed: %q", updated.Attendees)
	}

	missing := 999
	if _, err := s.UpdateInteraction(ctx, ix.ID, InteractionPatch{HCPID: &missing}); !errors.Is(err, ErrNotFound) {
		t.Errorf("reassign to unknown HCP err = %v", err)
	}
	if _, err := s.UpdateInteraction(ctx, 12345, InteractionPatch{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown interaction err = %v", err)
	}
}
