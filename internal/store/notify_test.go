package store

import "testing"

func TestBroker_TableFilter(t *testing.T) {
	b := NewBroker()
	tasks := b.Subscribe("tasks", nil)
	defer b.Unsubscribe(tasks)
	comments := b.Subscribe("task_comments", nil)
	defer b.Unsubscribe(comments)

	b.Publish("tasks", "update", "task-1", nil)

	select {
	case ch := <-tasks.C:
		if ch.Table != "tasks" || ch.Op != "update" || ch.RowID != "task-1" {
			t.Fatalf("change = %+v", ch)
		}
	default:
		t.Fatalf("tasks subscriber got nothing")
	}
	select {
	case ch := <-comments.C:
		t.Fatalf("comments subscriber should not receive tasks change: %+v", ch)
	default:
	}
}

func TestBroker_ColumnFilter(t *testing.T) {
	b := NewBroker()
	mine := b.Subscribe("task_comments", map[string]string{"task": "task-1"})
	defer b.Unsubscribe(mine)

	b.Publish("task_comments", "insert", "cmt-1", map[string]string{"task": "task-2"})
	select {
	case ch := <-mine.C:
		t.Fatalf("filter should reject other task: %+v", ch)
	default:
	}

	b.Publish("task_comments", "insert", "cmt-2", map[string]string{"task": "task-1"})
	select {
	case ch := <-mine.C:
		if ch.RowID != "cmt-2" {
			t.Fatalf("change = %+v", ch)
		}
	default:
		t.Fatalf("matching change not delivered")
	}
}

func TestBroker_EmptyTableMatchesAll(t *testing.T) {
	b := NewBroker()
	all := b.Subscribe("", nil)
	defer b.Unsubscribe(all)

	b.Publish("projects", "update", "proj-1", nil)
	select {
	case <-all.C:
	default:
		t.Fatalf("wildcard subscriber got nothing")
	}
}

func TestBroker_SlowSubscriberDropsNotBlocks(t *testing.T) {
	b := NewBroker()
	slow := b.Subscribe("tasks", nil)
	defer b.Unsubscribe(slow)

	// Fill the buffer and then some; Publish must never block.
	for i := 0; i < 200; i++ {
		b.Publish("tasks", "update", "task-1", nil)
	}
	if got := len(slow.C); got != cap(slow.C) {
		t.Fatalf("buffered %d, want full buffer %d", got, cap(slow.C))
	}
}

func TestBroker_UnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe("tasks", nil)
	b.Unsubscribe(sub)

	if _, ok := <-sub.C; ok {
		t.Fatalf("channel should be closed after unsubscribe")
	}
	// Double unsubscribe must not panic.
	b.Unsubscribe(sub)
	b.Publish("tasks", "update", "task-1", nil)
}
