package store

import (
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMailAccountRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.SaveMailAccount("first@inbox.example", "pw1"); err != nil {
		t.Fatalf("SaveMailAccount failed: %v", err)
	}
	if _, err := s.SaveMailAccount("second@inbox.example", "pw2"); err != nil {
		t.Fatalf("SaveMailAccount failed: %v", err)
	}

	acc, err := s.LatestMailAccount()
	if err != nil {
		t.Fatalf("LatestMailAccount failed: %v", err)
	}
	if acc.Address != "second@inbox.example" || acc.Password != "pw2" {
		t.Errorf("unexpected latest account: %+v", acc)
	}
	if acc.LastUsedAt.Valid {
		t.Error("fresh account should have no last_used_at")
	}

	if err := s.TouchMailAccount(acc.Address); err != nil {
		t.Fatalf("TouchMailAccount failed: %v", err)
	}
	acc, err = s.LatestMailAccount()
	if err != nil {
		t.Fatalf("LatestMailAccount failed: %v", err)
	}
	if !acc.LastUsedAt.Valid {
		t.Error("expected last_used_at to be set after touch")
	}
}

func TestDuplicateMailAccountRejected(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.SaveMailAccount("dup@inbox.example", "pw"); err != nil {
		t.Fatalf("SaveMailAccount failed: %v", err)
	}
	if _, err := s.SaveMailAccount("dup@inbox.example", "pw"); err == nil {
		t.Error("expected unique constraint violation")
	}
}

func TestAcquisitionLog(t *testing.T) {
	s := openTestStore(t)
	start := time.Now().Add(-30 * time.Second)

	id, err := s.RecordAcquisition("mailbox", "482910", true, "", start, 12*time.Second)
	if err != nil {
		t.Fatalf("RecordAcquisition failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated id")
	}
	if _, err := s.RecordAcquisition("sms", "", false, "timeout", start.Add(time.Second), 60*time.Second); err != nil {
		t.Fatalf("RecordAcquisition failed: %v", err)
	}

	recent, err := s.RecentAcquisitions(10)
	if err != nil {
		t.Fatalf("RecentAcquisitions failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(recent))
	}
	if recent[0].Channel != "sms" || recent[0].Succeeded {
		t.Errorf("expected failed sms attempt first, got %+v", recent[0])
	}
	if recent[1].OTP != "482910" || recent[1].DurationMS != 12000 {
		t.Errorf("unexpected mailbox attempt: %+v", recent[1])
	}

	total, succeeded, err := s.CountAcquisitions()
	if err != nil {
		t.Fatalf("CountAcquisitions failed: %v", err)
	}
	if total != 2 || succeeded != 1 {
		t.Errorf("expected total=2 succeeded=1, got %d/%d", total, succeeded)
	}
}
