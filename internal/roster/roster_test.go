package roster

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/alienxp03/warrant/internal/core"
)

func TestReadNames(t *testing.T) {
	t.Run("FirstColumn", func(t *testing.T) {
		in := "alpha,extra\n bravo\n\n,skipped\ncharlie,1,2\n"
		names, err := ReadNames(strings.NewReader(in))
		if err != nil {
			t.Fatalf("ReadNames failed: %v", err)
		}
		if !reflect.DeepEqual(names, []string{"alpha", "bravo", "charlie"}) {
			t.Errorf("unexpected names %v", names)
		}
	})

	t.Run("Malformed", func(t *testing.T) {
		if _, err := ReadNames(strings.NewReader("\"unterminated\n")); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestWriteCredentials(t *testing.T) {
	var buf bytes.Buffer
	people := []*core.Participant{{Name: "alpha", Key: "k1"}, {Name: "bravo", Key: "k2"}}
	if err := WriteCredentials(&buf, people); err != nil {
		t.Fatalf("WriteCredentials failed: %v", err)
	}
	if buf.String() != "alpha,k1\nbravo,k2\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestWriteStatus(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	people := []*core.Participant{
		{Name: "alpha", Key: "k1", LoggedInAt: &at, Approved: true},
		{Name: "bravo", Key: "k2"},
	}
	var buf bytes.Buffer
	if err := WriteStatus(&buf, people); err != nil {
		t.Fatalf("WriteStatus failed: %v", err)
	}
	want := "alpha,k1,2024-03-01 09:30:00+00:00,True\nbravo,k2,None,False\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}
