package tui

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/foodcalorie/internal/config"
	"github.com/jask/foodcalorie/internal/picker"
	"github.com/jask/foodcalorie/internal/reconcile"
	"github.com/jask/foodcalorie/internal/result"
)

type stubUploader struct {
	streams []chan result.Outcome
	calls   []picker.File
	ctxs    []context.Context
}

func (s *stubUploader) Upload(ctx context.Context, f picker.File) <-chan result.Outcome {
	s.calls = append(s.calls, f)
	s.ctxs = append(s.ctxs, ctx)
	return s.streams[len(s.calls)-1]
}

func stream(outcomes ...result.Outcome) chan result.Outcome {
	ch := make(chan result.Outcome, len(outcomes))
	for _, o := range outcomes {
		ch <- o
	}
	close(ch)
	return ch
}

func testPhoto(t *testing.T) picker.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kimchi.png")
	fh, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(fh, image.NewRGBA(image.Rect(0, 0, 8, 6))))
	require.NoError(t, fh.Close())
	f, ok := picker.Resolve(path)
	require.True(t, ok)
	return f
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Classifier: config.ClassifierConfig{Backend: config.BackendHTTP},
		UI:         config.UIConfig{StartDir: t.TempDir(), NoticeDuration: 2 * time.Second},
	}
}

// newTestApp returns an app whose notice timers are recorded instead of scheduled.
func newTestApp(t *testing.T, up Uploader) (*App, *[]time.Duration) {
	t.Helper()
	a := New(context.Background(), testConfig(t), up, nil)
	var ticks []time.Duration
	a.tick = func(d time.Duration, _ func(time.Time) tea.Msg) tea.Cmd {
		ticks = append(ticks, d)
		return nil
	}
	return a, &ticks
}

func flowApplyMsg(t *testing.T, a *App, msg tea.Msg) {
	t.Helper()
	_, cmd := a.Update(msg)
	flowDrainCmd(t, a, cmd)
}

// flowDrainCmd runs cmd and feeds resulting messages back into Update. Spinner frames
// are skipped so the chain terminates.
func flowDrainCmd(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 64 {
			t.Fatal("command chain exceeded max depth")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch m := next().(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, m...)
		default:
			_, c := a.Update(m)
			queue = append(queue, c)
		}
	}
}

func TestSuccessFlow(t *testing.T) {
	t.Parallel()
	up := &stubUploader{streams: []chan result.Outcome{
		stream(result.Loading{}, result.Success{Items: []result.FoodPrediction{{Name: "Kimchi", People: 2, Calories: 210}}}),
	}}
	a, ticks := newTestApp(t, up)
	photo := testPhoto(t)

	flowApplyMsg(t, a, picker.PickedMsg{File: photo})

	require.Len(t, up.calls, 1)
	require.Equal(t, photo, up.calls[0])
	require.Equal(t, reconcile.UIState{
		FoodName:    "Kimchi",
		FoodPeople:  "2",
		FoodCalorie: "210",
		InfoVisible: true,
	}, a.State())
	require.False(t, a.indicator.Visible())
	require.Nil(t, a.loading)
	require.Empty(t, a.notice.text)
	require.Empty(t, *ticks)
	require.Equal(t, "png 8x6", a.preview)
	require.Nil(t, a.cancel, "session is released once its stream closes")

	view := a.View()
	require.Contains(t, view, "Kimchi")
	require.Contains(t, view, "210 kcal")
	require.Contains(t, view, "kimchi.png")
	require.NotContains(t, view, loadingText)
}

func TestAPIErrorFlowShowsNotice(t *testing.T) {
	t.Parallel()
	up := &stubUploader{streams: []chan result.Outcome{
		stream(result.Loading{}, result.APIError{Code: 500, Message: "Server Error"}),
	}}
	a, ticks := newTestApp(t, up)

	flowApplyMsg(t, a, picker.PickedMsg{File: testPhoto(t)})

	require.False(t, a.State().LoadingVisible)
	require.False(t, a.State().InfoVisible)
	require.Equal(t, "Error Code: 500 Cause: Server Error", a.notice.text)
	require.Equal(t, []time.Duration{2 * time.Second}, *ticks)
	require.Contains(t, a.View(), "Error Code: 500 Cause: Server Error")

	flowApplyMsg(t, a, noticeExpiredMsg{id: a.notice.id})
	require.Empty(t, a.notice.text)
}

func TestOlderNoticeTimerKeepsNewerNotice(t *testing.T) {
	t.Parallel()
	a, _ := newTestApp(t, &stubUploader{})

	a.ShowNotice("first")
	first := a.notice.id
	a.ShowNotice("second")

	flowApplyMsg(t, a, noticeExpiredMsg{id: first})
	require.Equal(t, "second", a.notice.text)
}

func TestLoadingVisibleWhileInFlight(t *testing.T) {
	t.Parallel()
	inFlight := make(chan result.Outcome, 1)
	inFlight <- result.Loading{}
	up := &stubUploader{streams: []chan result.Outcome{inFlight}}
	a, _ := newTestApp(t, up)

	_, cmd := a.Update(picker.PickedMsg{File: testPhoto(t)})
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	// first command is the outcome reader
	_, next := a.Update(batch[0]())

	require.True(t, a.State().LoadingVisible)
	require.True(t, a.indicator.Visible())
	require.NotNil(t, a.loading)
	require.NotNil(t, next)
	require.Contains(t, a.View(), loadingText)

	inFlight <- result.NetworkError{Message: "timeout"}
	close(inFlight)
	flowDrainCmd(t, a, next)

	require.False(t, a.indicator.Visible())
	require.Equal(t, "timeout", a.notice.text)
}

func TestSupersededSessionIsDropped(t *testing.T) {
	t.Parallel()
	first := make(chan result.Outcome, 2)
	first <- result.Loading{}
	second := stream(result.Loading{}, result.Success{Items: []result.FoodPrediction{{Name: "Bibimbap", People: 1, Calories: 560}}})
	up := &stubUploader{streams: []chan result.Outcome{first, second}}
	a, _ := newTestApp(t, up)

	_, cmd := a.Update(picker.PickedMsg{File: testPhoto(t)})
	batch := cmd().(tea.BatchMsg)
	_, pendingFirst := a.Update(batch[0]())
	require.True(t, a.indicator.Visible())

	flowApplyMsg(t, a, picker.PickedMsg{File: testPhoto(t)})
	require.ErrorIs(t, up.ctxs[0].Err(), context.Canceled)
	require.Equal(t, "Bibimbap", a.State().FoodName)
	require.False(t, a.indicator.Visible())

	first <- result.APIError{Code: 499, Message: "stale"}
	close(first)
	flowDrainCmd(t, a, pendingFirst)

	require.Equal(t, "Bibimbap", a.State().FoodName)
	require.Empty(t, a.notice.text, "stale outcomes never reach the reconciler")
}

func TestDeniedPickShowsNotice(t *testing.T) {
	t.Parallel()
	a, ticks := newTestApp(t, &stubUploader{})

	flowApplyMsg(t, a, picker.DeniedMsg{Path: "/root/secret.jpg", Err: errors.New("permission denied: secret.jpg")})
	require.Equal(t, "permission denied: secret.jpg", a.notice.text)
	require.Len(t, *ticks, 1)
}

func TestInitUploadsInitialFile(t *testing.T) {
	t.Parallel()
	photo := testPhoto(t)
	up := &stubUploader{streams: []chan result.Outcome{stream(result.Loading{}, result.EmptyResult{})}}
	a := New(context.Background(), testConfig(t), up, &photo)
	a.tick = func(time.Duration, func(time.Time) tea.Msg) tea.Cmd { return nil }

	flowDrainCmd(t, a, a.Init())
	require.Len(t, up.calls, 1)
	require.Equal(t, reconcile.NullResultNotice, a.notice.text)

	require.Nil(t, New(context.Background(), testConfig(t), up, nil).Init())
}

func TestKeys(t *testing.T) {
	t.Parallel()
	inFlight := make(chan result.Outcome, 1)
	up := &stubUploader{streams: []chan result.Outcome{inFlight}}
	a, _ := newTestApp(t, up)

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")})
	require.True(t, a.picker.IsOpen())
	require.NotNil(t, cmd)

	_, _ = a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, a.picker.IsOpen())

	_, _ = a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	require.True(t, a.help.ShowAll)

	_, _ = a.Update(picker.PickedMsg{File: testPhoto(t)})
	_, cmd = a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
	require.ErrorIs(t, up.ctxs[0].Err(), context.Canceled)
}

func TestIndicatorHandle(t *testing.T) {
	t.Parallel()
	l := newLoadingIndicator()
	require.False(t, l.Dismiss(IndicatorHandle{}))

	h, cmd := l.Show()
	require.NotNil(t, cmd)
	again, cmd := l.Show()
	require.Nil(t, cmd)
	require.Equal(t, h, again)

	stale := h
	require.True(t, l.Dismiss(h))
	require.False(t, l.Visible())

	fresh, _ := l.Show()
	require.NotEqual(t, stale, fresh)
	require.False(t, l.Dismiss(stale))
	require.True(t, l.Visible())
	require.True(t, l.Dismiss(fresh))
}

func TestConsoleStream(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	r := reconcile.New()

	last := Stream(r, stream(result.Loading{}, result.Success{Items: []result.FoodPrediction{{Name: "Kimchi", People: 2, Calories: 210}}}), NewConsole(&buf))
	require.True(t, last.State.InfoVisible)
	require.Equal(t, strings.Join([]string{loadingText, "Food: Kimchi", "People: 2", "Calorie: 210", ""}, "\n"), buf.String())

	buf.Reset()
	r = reconcile.New()
	last = Stream(r, stream(result.Loading{}, result.APIError{Code: 404, Message: "Not Found"}), NewConsole(&buf))
	require.True(t, last.HasNotice)
	require.Equal(t, loadingText+"\nError Code: 404 Cause: Not Found\n", buf.String())
}
