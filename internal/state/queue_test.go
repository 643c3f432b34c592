package state

import (
	"errors"
	"reflect"
	"testing"

	"github.com/branyang02/smart-oh-ws-server/internal/models"
)

func student(id string) *Participant {
	return NewParticipant(models.User{ID: id, Name: "Student " + id}, RoleStudent)
}

func ta(id string) *Participant {
	return NewParticipant(models.User{ID: id, Name: "TA " + id}, RoleTA)
}

func TestQueueJoinAppends(t *testing.T) {
	q := NewQueue()
	s1, s2 := student("s1"), student("s2")

	if err := q.Join(s1, -1); err != nil {
		t.Fatalf("join s1: %v", err)
	}
	if err := q.Join(s2, -1); err != nil {
		t.Fatalf("join s2: %v", err)
	}

	if got := q.IDs(); !reflect.DeepEqual(got, []string{"s1", "s2"}) {
		t.Errorf("queue order = %v, want [s1 s2]", got)
	}
	if s1.Location() != LocationQueue {
		t.Errorf("s1 location = %q, want %q", s1.Location(), LocationQueue)
	}
}

func TestQueueJoinAtIndex(t *testing.T) {
	tests := []struct {
		name  string
		index int
		want  []string
	}{
		{"front", 0, []string{"s3", "s1", "s2"}},
		{"middle", 1, []string{"s1", "s3", "s2"}},
		{"end", 2, []string{"s1", "s2", "s3"}},
		{"past end clamps", 99, []string{"s1", "s2", "s3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue()
			if err := q.Join(student("s1"), -1); err != nil {
				t.Fatal(err)
			}
			if err := q.Join(student("s2"), -1); err != nil {
				t.Fatal(err)
			}
			if err := q.Join(student("s3"), tt.index); err != nil {
				t.Fatalf("join at %d: %v", tt.index, err)
			}
			if got := q.IDs(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("queue order = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQueueJoinPlacedParticipant(t *testing.T) {
	q := NewQueue()
	s1 := student("s1")
	if err := q.Join(s1, -1); err != nil {
		t.Fatal(err)
	}

	err := q.Join(s1, -1)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("joining twice = %v, want ErrInvalidState", err)
	}
	if q.Len() != 1 {
		t.Errorf("queue length = %d after rejected join, want 1", q.Len())
	}
}

func TestQueueLeave(t *testing.T) {
	q := NewQueue()
	s1, s2 := student("s1"), student("s2")
	if err := q.Join(s1, -1); err != nil {
		t.Fatal(err)
	}
	if err := q.Join(s2, -1); err != nil {
		t.Fatal(err)
	}

	if err := q.Leave(s1); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if s1.Location() != "" {
		t.Errorf("s1 location = %q after leave, want unset", s1.Location())
	}
	if got := q.IDs(); !reflect.DeepEqual(got, []string{"s2"}) {
		t.Errorf("queue order = %v, want [s2]", got)
	}

	if err := q.Leave(s1); !errors.Is(err, ErrInvalidState) {
		t.Errorf("leaving twice = %v, want ErrInvalidState", err)
	}
}

func TestQueueReorder(t *testing.T) {
	tests := []struct {
		name    string
		ids     []string
		wantErr bool
	}{
		{"permutation", []string{"s3", "s1", "s2"}, false},
		{"identity is a no-op", []string{"s1", "s2", "s3"}, false},
		{"missing member", []string{"s1", "s2"}, true},
		{"stray id", []string{"s1", "s2", "s4"}, true},
		{"duplicate id", []string{"s1", "s2", "s2"}, true},
		{"empty", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue()
			for _, id := range []string{"s1", "s2", "s3"} {
				if err := q.Join(student(id), -1); err != nil {
					t.Fatal(err)
				}
			}

			err := q.Reorder(tt.ids)
			if tt.wantErr {
				if !errors.Is(err, ErrConflict) {
					t.Fatalf("reorder = %v, want ErrConflict", err)
				}
				if got := q.IDs(); !reflect.DeepEqual(got, []string{"s1", "s2", "s3"}) {
					t.Errorf("queue order changed on rejected reorder: %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("reorder: %v", err)
			}
			if got := q.IDs(); !reflect.DeepEqual(got, tt.ids) {
				t.Errorf("queue order = %v, want %v", got, tt.ids)
			}
		})
	}
}
