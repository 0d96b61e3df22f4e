package botcmd

import (
	"testing"
	"time"
)

func TestTelegramClientTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		poll time.Duration
		want time.Duration
	}{
		{poll: 30 * time.Second, want: 60 * time.Second},
		{poll: 5 * time.Second, want: 60 * time.Second},
		{poll: 55 * time.Second, want: 65 * time.Second},
		{poll: 2 * time.Minute, want: 2*time.Minute + 10*time.Second},
	}
	for _, tt := range tests {
		if got := telegramClientTimeout(tt.poll); got != tt.want {
			t.Errorf("telegramClientTimeout(%v) = %v, want %v", tt.poll, got, tt.want)
		}
	}
}
