package chatlog

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/Shahin2512/HCP-Module/internal/model"
)

func msg(text string) model.ChatMessage {
	return model.ChatMessage{Text: text, Sender: model.SenderUser}
}

func TestLog_AppendClearOrdering(t *testing.T) {
	l := New()
	l.Append(msg("a"))
	l.Append(msg("b"))
	l.Clear()
	l.Append(msg("c"))
	l.Append(msg("d"))
	l.Append(msg("d"))
	l.Clear()
	l.Append(msg("e"))
	l.Append(model.ChatMessage{Text: "f", Sender: model.SenderAI})
	l.Append(msg("g"))

	want := []model.ChatMessage{msg("e"), {Text: "f", Sender: model.SenderAI}, msg("g")}
	if got := l.Messages(0); !reflect.DeepEqual(got, want) {
		t.Errorf("Messages() = %+v, want %+v", got, want)
	}
}

func TestLog_NoDeduplication(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		l.Append(msg("same"))
	}
	if l.Len() != 3 {
		t.Errorf("Len = %d, want 3", l.Len())
	}
}

func TestLog_MessagesLimit(t *testing.T) {
	l := New()
	for i := 0; i < 5; i++ {
		l.Append(msg(fmt.Sprintf("m%d", i)))
	}

	got := l.Messages(2)
	if len(got) != 2 || got[0].Text != "m3" || got[1].Text != "m4" {
		t.Errorf("Messages(2) = %+v, want [m3 m4]", got)
	}
}

func TestLog_MessagesReturnsCopy(t *testing.T) {
	l := New()
	l.Append(msg("a"))
	got := l.Messages(0)
	got[0].Text = "mutated"

	if last, _ := l.Last(); last.Text != "a" {
		t.Errorf("log mutated through Messages(): %q", last.Text)
	}
}

func TestLog_LastEmpty(t *testing.T) {
	l := New()
	if _, ok := l.Last(); ok {
		t.Error("Last() on empty log returned ok")
	}
	l.Append(msg("x"))
	l.Clear()
	if _, ok := l.Last(); ok {
		t.Error("Last() after Clear returned ok")
	}
}
