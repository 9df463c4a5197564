package lfg

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_ScheduleExpiry_Fires_With_Session_ID(t *testing.T) {
	// Arrange
	s := NewScheduler()
	defer s.Stop()

	fired := make(chan string, 1)

	// Act
	s.ScheduleExpiry("s1", time.Millisecond, func(id string) { fired <- id })

	// Assert
	select {
	case id := <-fired:
		require.Equal(t, "s1", id)
	case <-time.After(time.Second):
		t.Fatal("expiry timer never fired")
	}
}

func Test_ScheduleExpiry_Replaces_Pending_Timer(t *testing.T) {
	// Arrange
	s := NewScheduler()
	defer s.Stop()

	var count int32
	fire := func(string) { atomic.AddInt32(&count, 1) }

	// Act - the second schedule supersedes the first
	s.ScheduleExpiry("s1", time.Hour, fire)
	s.ScheduleExpiry("s1", time.Millisecond, fire)

	// Assert
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&count) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(1), atomic.LoadInt32(&count))
}

func Test_CancelExpiry_Prevents_Fire(t *testing.T) {
	// Arrange
	s := NewScheduler()
	defer s.Stop()

	var count int32
	s.ScheduleExpiry("s1", 20*time.Millisecond, func(string) { atomic.AddInt32(&count, 1) })

	// Act
	s.CancelExpiry("s1")

	// Assert
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, int32(0), atomic.LoadInt32(&count))
}

func Test_Expiry_And_Room_Timers_Are_Independent(t *testing.T) {
	// Arrange
	s := NewScheduler()
	defer s.Stop()

	expired := make(chan string, 1)
	cleaned := make(chan string, 1)

	// Same key in both tables must not collide.
	s.ScheduleExpiry("shared", time.Millisecond, func(id string) { expired <- id })
	s.ScheduleRoomCleanup("shared", time.Millisecond, func(id string) { cleaned <- id })

	// Assert
	for _, ch := range []chan string{expired, cleaned} {
		select {
		case id := <-ch:
			require.Equal(t, "shared", id)
		case <-time.After(time.Second):
			t.Fatal("timer never fired")
		}
	}
}

func Test_CancelRoomCleanup_Prevents_Fire(t *testing.T) {
	// Arrange
	s := NewScheduler()
	defer s.Stop()

	var count int32
	s.ScheduleRoomCleanup("vc-1", 20*time.Millisecond, func(string) { atomic.AddInt32(&count, 1) })

	// Act
	s.CancelRoomCleanup("vc-1")

	// Assert
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, int32(0), atomic.LoadInt32(&count))
}

func Test_Negative_Duration_Fires_Immediately(t *testing.T) {
	// Arrange
	s := NewScheduler()
	defer s.Stop()

	fired := make(chan struct{}, 1)

	// Act
	s.ScheduleExpiry("s1", -time.Minute, func(string) { fired <- struct{}{} })

	// Assert
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("overdue timer never fired")
	}
}

func Test_Stop_Cancels_Pending_And_Rejects_New_Timers(t *testing.T) {
	// Arrange
	s := NewScheduler()

	var count int32
	fire := func(string) { atomic.AddInt32(&count, 1) }

	s.ScheduleExpiry("s1", 20*time.Millisecond, fire)
	s.ScheduleRoomCleanup("vc-1", 20*time.Millisecond, fire)

	// Act
	s.Stop()
	s.ScheduleExpiry("s2", time.Millisecond, fire)

	// Assert
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, int32(0), atomic.LoadInt32(&count))
}
