package sched

import (
	"testing"

	"github.com/LiamStanDev/mini-os/kernel/task"
)

func newTestState(statuses ...task.Status) *managerState {
	tasks := make([]*task.ControlBlock, len(statuses))
	for i, s := range statuses {
		tasks[i] = &task.ControlBlock{Status: s}
	}
	return &managerState{tasks: tasks}
}

func TestFindNextReadyRoundRobin(t *testing.T) {
	st := newTestState(task.StatusRunning, task.StatusReady, task.StatusReady, task.StatusExited)
	st.currentTask = 0

	next := st.findNextReady()
	if next != 1 {
		t.Fatalf("expected task 1 next, got %d", next)
	}
}

func TestFindNextReadySkipsExitedAndWraps(t *testing.T) {
	st := newTestState(task.StatusExited, task.StatusExited, task.StatusRunning, task.StatusReady)
	st.currentTask = 2

	next := st.findNextReady()
	if next != 3 {
		t.Fatalf("expected task 3 next, got %d", next)
	}
}

func TestFindNextReadyReturnsNegativeWhenNoneReady(t *testing.T) {
	st := newTestState(task.StatusExited, task.StatusExited, task.StatusRunning)
	st.currentTask = 2

	if next := st.findNextReady(); next != -1 {
		t.Fatalf("expected no ready task, got %d", next)
	}
}

func TestThreeTaskFairnessNeverStarves(t *testing.T) {
	// Three tasks all Ready except whichever is "current" (Running):
	// each suspend should rotate to the next one in order, eventually
	// visiting every task before repeating - the round-robin fairness
	// property the scheduler exists to provide.
	st := newTestState(task.StatusRunning, task.StatusReady, task.StatusReady)
	visited := []int{0}

	for i := 0; i < 5; i++ {
		next := st.findNextReady()
		if next < 0 {
			t.Fatal("expected a ready task at every step")
		}
		st.tasks[st.currentTask].Status = task.StatusReady
		st.tasks[next].Status = task.StatusRunning
		st.currentTask = next
		visited = append(visited, next)
	}

	seen := map[int]bool{}
	for _, v := range visited[:3] {
		seen[v] = true
	}
	if len(seen) != 3 {
		t.Fatalf("expected all 3 tasks visited within the first 3 steps, got %v", visited)
	}
}
