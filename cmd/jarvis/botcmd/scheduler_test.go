package botcmd

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDigestScheduleDue(t *testing.T) {
	t.Parallel()

	schedule := &digestSchedule{weekday: time.Friday, hour: 17}

	// 2024-03-15 is a Friday.
	friday17 := time.Date(2024, 3, 15, 17, 5, 0, 0, time.UTC)
	if !schedule.due(friday17) {
		t.Error("due() = false at scheduled weekday and hour")
	}
	if schedule.due(friday17.Add(-time.Hour)) {
		t.Error("due() = true one hour early")
	}
	if schedule.due(friday17.AddDate(0, 0, 1)) {
		t.Error("due() = true on the wrong weekday")
	}

	schedule.markSent(friday17)
	if schedule.due(friday17.Add(30 * time.Minute)) {
		t.Error("due() = true again on the same day after sending")
	}
	if !schedule.due(friday17.AddDate(0, 0, 7)) {
		t.Error("due() = false the following week")
	}
}

func TestChatDestinationRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chat.json")

	if _, ok, err := LoadChatID(path); err != nil || ok {
		t.Fatalf("LoadChatID(missing) = ok=%v err=%v, want absent", ok, err)
	}

	if err := rememberChatID(path, 12345); err != nil {
		t.Fatalf("rememberChatID() error = %v", err)
	}
	chatID, ok, err := LoadChatID(path)
	if err != nil {
		t.Fatalf("LoadChatID() error = %v", err)
	}
	if !ok || chatID != 12345 {
		t.Errorf("LoadChatID() = %d, %v, want 12345", chatID, ok)
	}

	// Same chat again is a no-op; a new chat overwrites.
	if err := rememberChatID(path, 12345); err != nil {
		t.Fatalf("rememberChatID() repeat error = %v", err)
	}
	if err := rememberChatID(path, 67890); err != nil {
		t.Fatalf("rememberChatID() overwrite error = %v", err)
	}
	chatID, _, err = LoadChatID(path)
	if err != nil {
		t.Fatalf("LoadChatID() error = %v", err)
	}
	if chatID != 67890 {
		t.Errorf("LoadChatID() = %d, want 67890", chatID)
	}
}
