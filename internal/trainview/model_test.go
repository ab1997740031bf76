package trainview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/voiceops/speechadmin/internal/livelog"
	"github.com/voiceops/speechadmin/internal/testutil"
)

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTriggerIgnoredWhileDisabled(t *testing.T) {
	m := New(http.DefaultClient, "http://127.0.0.1:1/api/train?id=x", "en_US-rhasspy")

	// Simulate an in-flight stream: view-model disabled.
	m.vm = livelog.ViewModel{Enabled: false, Log: "Training started\n"}

	updated, cmd := m.Update(keyMsg("t"))
	if cmd != nil {
		t.Fatal("trigger while disabled must not start a request")
	}
	if got := updated.(Model).vm.Log; got != "Training started\n" {
		t.Fatalf("log changed on ignored trigger: %q", got)
	}
}

func TestViewShowsNewestFirstLog(t *testing.T) {
	m := New(http.DefaultClient, "http://example.invalid", "en_US-rhasspy")

	updated, _ := m.Update(vmMsg(livelog.ViewModel{
		Enabled: false,
		Log:     "third\nsecond\nfirst\n",
	}))
	view := updated.(Model).View()

	testutil.AssertContains(t, view, "third\nsecond\nfirst")
	testutil.AssertNotContains(t, view, "press t to train")
}

func TestViewShowsTriggerHintWhenIdle(t *testing.T) {
	m := New(http.DefaultClient, "http://example.invalid", "en_US-rhasspy")
	testutil.AssertContains(t, m.View(), "press t to train")
}

func TestDoneMsgSurfacesError(t *testing.T) {
	m := New(http.DefaultClient, "http://example.invalid", "en_US-rhasspy")

	updated, _ := m.Update(doneMsg{err: context.DeadlineExceeded})
	testutil.AssertContains(t, updated.(Model).View(), "ERROR")
}

func TestRunPlainPrintsInArrivalOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fl := w.(http.Flusher)
		for _, line := range []string{"one\n", "two\n", "three\n"} {
			w.Write([]byte(line))
			fl.Flush()
		}
	}))
	defer srv.Close()

	var out strings.Builder
	err := RunPlain(context.Background(), srv.Client(), srv.URL, func(s string) {
		out.WriteString(s)
	})
	if err != nil {
		t.Fatalf("RunPlain: %v", err)
	}
	if got := out.String(); got != "one\ntwo\nthree\n" {
		t.Fatalf("plain output = %q, want arrival order", got)
	}
}
