package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/voidgrid/game/service"
)

// Run with -race: readers stamp LastAccessedAt while others read it.
func TestGameServiceConcurrentReads(t *testing.T) {
	manager := NewManager()
	svc := service.NewGameService(manager, newTestLevels(t))
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "corridor")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for n := 0; n < 50; n++ {
				switch (i + n) % 5 {
				case 0:
					if _, err := svc.GetSession(ctx, info.ID); err != nil {
						t.Errorf("GetSession failed: %v", err)
					}
				case 1:
					if _, err := svc.GetGameState(ctx, info.ID); err != nil {
						t.Errorf("GetGameState failed: %v", err)
					}
				case 2:
					if _, err := svc.DescribeCell(ctx, info.ID, 0, 0); err != nil {
						t.Errorf("DescribeCell failed: %v", err)
					}
				case 3:
					if _, err := svc.ListSessions(ctx); err != nil {
						t.Errorf("ListSessions failed: %v", err)
					}
				default:
					manager.CleanupExpiredSessions(time.Hour)
				}
			}
		}(i)
	}
	wg.Wait()

	got, err := svc.GetSession(ctx, info.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.LastAccessedAt.Before(info.CreatedAt) {
		t.Errorf("Expected access time after creation, got %v < %v", got.LastAccessedAt, info.CreatedAt)
	}
}
