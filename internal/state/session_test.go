package state

import (
	"errors"
	"reflect"
	"testing"
)

func TestSessionAddAndOrder(t *testing.T) {
	s := NewSession("A")
	t1, s1, s2 := ta("t1"), student("s1"), student("s2")

	if err := s.AddTA(t1, -1); err != nil {
		t.Fatalf("add ta: %v", err)
	}
	if err := s.AddStudent(s1, -1); err != nil {
		t.Fatalf("add student: %v", err)
	}
	if err := s.AddStudent(s2, 1); err != nil {
		t.Fatalf("add student at index: %v", err)
	}

	if got := s.IDs(); !reflect.DeepEqual(got, []string{"t1", "s2", "s1"}) {
		t.Errorf("member order = %v, want [t1 s2 s1]", got)
	}
	for _, p := range []*Participant{t1, s1, s2} {
		if p.Location() != "A" {
			t.Errorf("%s location = %q, want A", p.ID(), p.Location())
		}
	}
	if s.TACount() != 1 {
		t.Errorf("TACount = %d, want 1", s.TACount())
	}
}

func TestSessionRoleChecks(t *testing.T) {
	s := NewSession("A")

	if err := s.AddTA(student("s1"), -1); !errors.Is(err, ErrInvalidState) {
		t.Errorf("AddTA with student = %v, want ErrInvalidState", err)
	}
	if err := s.AddStudent(ta("t1"), -1); !errors.Is(err, ErrInvalidState) {
		t.Errorf("AddStudent with TA = %v, want ErrInvalidState", err)
	}
}

func TestSessionDuplicateMember(t *testing.T) {
	s := NewSession("A")
	t1 := ta("t1")
	if err := s.AddTA(t1, -1); err != nil {
		t.Fatal(err)
	}

	// The participant must be detached from its prior location first; a
	// second add into the same session is always a bug.
	t1.location = ""
	if err := s.AddTA(t1, -1); !errors.Is(err, ErrInvalidState) {
		t.Errorf("duplicate add = %v, want ErrInvalidState", err)
	}
}

func TestSessionRemove(t *testing.T) {
	s := NewSession("A")
	t1, s1 := ta("t1"), student("s1")
	if err := s.AddTA(t1, -1); err != nil {
		t.Fatal(err)
	}
	if err := s.AddStudent(s1, -1); err != nil {
		t.Fatal(err)
	}

	if err := s.Remove(s1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if s1.Location() != "" {
		t.Errorf("s1 location = %q after removal, want unset", s1.Location())
	}
	if err := s.Remove(s1); !errors.Is(err, ErrInvalidState) {
		t.Errorf("removing twice = %v, want ErrInvalidState", err)
	}

	if err := s.Remove(t1); err != nil {
		t.Fatalf("remove ta: %v", err)
	}
	if s.TACount() != 0 {
		t.Errorf("TACount = %d after TA removal, want 0", s.TACount())
	}
}

func TestSessionReorder(t *testing.T) {
	s := NewSession("A")
	if err := s.AddTA(ta("t1"), -1); err != nil {
		t.Fatal(err)
	}
	if err := s.AddStudent(student("s1"), -1); err != nil {
		t.Fatal(err)
	}

	if err := s.Reorder([]string{"s1", "t1"}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if got := s.IDs(); !reflect.DeepEqual(got, []string{"s1", "t1"}) {
		t.Errorf("member order = %v, want [s1 t1]", got)
	}

	if err := s.Reorder([]string{"s1"}); !errors.Is(err, ErrConflict) {
		t.Errorf("partial reorder = %v, want ErrConflict", err)
	}
	if got := s.IDs(); !reflect.DeepEqual(got, []string{"s1", "t1"}) {
		t.Errorf("member order changed on rejected reorder: %v", got)
	}
}
