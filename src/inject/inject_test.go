package inject

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-anywhere/src/clipboard"
	"ai-anywhere/src/input"
	"ai-anywhere/src/keyspec"
	"ai-anywhere/src/window"
)

type fakeFocuser struct {
	alive     bool
	restoreOK bool
	restored  int
}

func (f *fakeFocuser) Alive(window.Handle) bool { return f.alive }

func (f *fakeFocuser) Restore(window.Handle) bool {
	f.restored++
	return f.restoreOK
}

type fixture struct {
	board   *clipboard.Memory
	keys    *input.Recorder
	focus   *fakeFocuser
	slept   []time.Duration
	inj     *Injector
	reviews int
}

func newFixture(t *testing.T, review func() (bool, error)) *fixture {
	t.Helper()
	f := &fixture{
		board: clipboard.NewMemory(),
		keys:  &input.Recorder{},
		focus: &fakeFocuser{alive: true, restoreOK: true},
	}
	require.NoError(t, f.board.Write(clipboard.FmtText, []byte("OLD")))
	opts := Options{
		Board:    f.board,
		Keyboard: f.keys,
		Focuser:  f.focus,
		KeyStep:  time.Microsecond,
	}
	if review != nil {
		opts.Reviewer = ReviewerFunc(func(context.Context, Content) (bool, error) {
			f.reviews++
			return review()
		})
	}
	f.inj = New(opts)
	f.inj.sleep = func(d time.Duration) { f.slept = append(f.slept, d) }
	return f
}

func mod() string { return keyspec.ModifierKey(input.PlatformModifier()).String() }

func pasteEvents() []string {
	return []string{"down " + mod(), "down V", "up V", "up " + mod()}
}

const target = window.Handle(0xBEEF)

func TestAutoPasteReplacesSelection(t *testing.T) {
	f := newFixture(t, nil)

	err := f.inj.Inject(context.Background(), Request{
		Content:              Text(`Hello,\n\n\n\nworld`),
		Target:               target,
		Behavior:             AutoPaste,
		HadOriginalSelection: true,
	})
	require.NoError(t, err)

	expected := append([]string{"down Delete", "up Delete"}, pasteEvents()...)
	assert.Equal(t, expected, f.keys.Events())
	assert.Equal(t, "Hello,\n\nworld", f.board.Text(), "formatted result stays on the clipboard")
	assert.Equal(t, 1, f.focus.restored)
	assert.Equal(t, []time.Duration{DefaultHideDelay, DefaultFocusDelay}, f.slept)
}

func TestAutoPasteWithoutSelection(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.inj.Inject(context.Background(), Request{
		Content: Text("result"), Target: target, Behavior: AutoPaste,
	}))
	assert.Equal(t, pasteEvents(), f.keys.Events())
}

func TestClipboardOnlySendsNoKeystrokes(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.inj.Inject(context.Background(), Request{
		Content: Text("result"), Target: target, Behavior: ClipboardOnly, HadOriginalSelection: true,
	}))
	assert.Empty(t, f.keys.Events())
	assert.Equal(t, "result", f.board.Text())
	assert.Equal(t, 1, f.focus.restored, "focus goes back to the target")
	assert.Empty(t, f.slept)
}

func TestTargetGoneDegradesToClipboard(t *testing.T) {
	f := newFixture(t, nil)
	f.focus.alive = false

	require.NoError(t, f.inj.Inject(context.Background(), Request{
		Content: Text("result"), Target: target, Behavior: AutoPaste, HadOriginalSelection: true,
	}))
	assert.Empty(t, f.keys.Events())
	assert.Equal(t, 0, f.focus.restored)
	assert.Equal(t, "result", f.board.Text())
}

func TestFocusFailureDegradesToClipboard(t *testing.T) {
	f := newFixture(t, nil)
	f.focus.restoreOK = false

	require.NoError(t, f.inj.Inject(context.Background(), Request{
		Content: Text("result"), Target: target, Behavior: AutoPaste,
	}))
	assert.Empty(t, f.keys.Events())
	assert.Equal(t, "result", f.board.Text())
}

func TestReview(t *testing.T) {
	tests := []struct {
		name      string
		accept    bool
		err       error
		wantPaste bool
	}{
		{"accepted", true, nil, true},
		{"declined", false, nil, false},
		{"failed", true, errors.New("dialog closed"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, func() (bool, error) { return tt.accept, tt.err })

			err := f.inj.Inject(context.Background(), Request{
				Content: Text("reviewed"), Target: target, Behavior: ReviewThenPaste,
			})
			require.NoError(t, err, "a declined review is not a failure")
			assert.Equal(t, 1, f.reviews)
			assert.Equal(t, "reviewed", f.board.Text())
			if tt.wantPaste {
				assert.Equal(t, pasteEvents(), f.keys.Events())
			} else {
				assert.Empty(t, f.keys.Events())
			}
		})
	}
}

func TestReviewWithoutReviewerDeclines(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.inj.Inject(context.Background(), Request{
		Content: Text("reviewed"), Target: target, Behavior: ReviewThenPaste,
	}))
	assert.Empty(t, f.keys.Events())
	assert.Equal(t, "reviewed", f.board.Text())
}

func TestEmptyResultRestoresClipboard(t *testing.T) {
	f := newFixture(t, nil)

	err := f.inj.Inject(context.Background(), Request{
		Content: Text(`  \n\t  `), Target: target, Behavior: AutoPaste,
	})
	assert.ErrorIs(t, err, ErrNothingToInject)
	assert.Equal(t, "OLD", f.board.Text())
	assert.Empty(t, f.keys.Events())
}

func testImage(t *testing.T, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 4, 4), color.Palette{color.Black, color.White})
	img.SetColorIndex(1, 1, 1)
	var buf bytes.Buffer
	require.NoError(t, encode(&buf, img))
	return buf.Bytes()
}

func encodePNG(b *bytes.Buffer, img image.Image) error { return png.Encode(b, img) }
func encodeGIF(b *bytes.Buffer, img image.Image) error { return gif.Encode(b, img, nil) }

func TestImageBytes(t *testing.T) {
	f := newFixture(t, nil)
	gifData := testImage(t, encodeGIF)

	require.NoError(t, f.inj.Inject(context.Background(), Request{
		Content: Image(gifData, ""), Target: target, Behavior: ClipboardOnly,
	}))

	got := f.board.Read(clipboard.FmtImage)
	require.NotEmpty(t, got)
	assert.True(t, bytes.HasPrefix(got, []byte("\x89PNG")), "images are re-encoded as png")
	_, err := png.Decode(bytes.NewReader(got))
	assert.NoError(t, err)
}

func TestImageFromURL(t *testing.T) {
	pngData := testImage(t, encodePNG)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngData)
	}))
	defer srv.Close()

	f := newFixture(t, nil)
	require.NoError(t, f.inj.Inject(context.Background(), Request{
		Content: Image(nil, srv.URL+"/result.png"), Target: target, Behavior: ClipboardOnly,
	}))
	assert.Equal(t, pngData, f.board.Read(clipboard.FmtImage))
}

func TestImageDataURL(t *testing.T) {
	pngData := testImage(t, encodePNG)
	url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData)

	f := newFixture(t, nil)
	require.NoError(t, f.inj.Inject(context.Background(), Request{
		Content: Image(nil, url), Target: target, Behavior: ClipboardOnly,
	}))
	assert.Equal(t, pngData, f.board.Read(clipboard.FmtImage))
}

func TestUndecodableImageFallsBackToURL(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.inj.Inject(context.Background(), Request{
		Content: Image([]byte("not an image"), "https://example.invalid/a.png"), Target: target, Behavior: AutoPaste,
	}))
	assert.Equal(t, "https://example.invalid/a.png", f.board.Text())
	assert.Equal(t, pasteEvents(), f.keys.Events())
}

func TestFailedImageFetch(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := newFixture(t, nil)
	require.NoError(t, f.inj.Inject(context.Background(), Request{
		Content: Image(nil, srv.URL+"/missing.png"), Target: target, Behavior: ClipboardOnly,
	}))
	assert.Equal(t, srv.URL+"/missing.png", f.board.Text())
}

func TestParseBehavior(t *testing.T) {
	tests := []struct {
		input    string
		expected Behavior
	}{
		{"auto", AutoPaste},
		{"AUTO", AutoPaste},
		{"clipboard", ClipboardOnly},
		{" review ", ReviewThenPaste},
	}
	for _, tt := range tests {
		got, err := ParseBehavior(tt.input)
		if err != nil || got != tt.expected {
			t.Errorf("ParseBehavior(%q) = %v, %v, expected %v", tt.input, got, err, tt.expected)
		}
	}
	if _, err := ParseBehavior("sometimes"); err == nil {
		t.Error("ParseBehavior(sometimes) should fail")
	}
	for _, b := range []Behavior{AutoPaste, ClipboardOnly, ReviewThenPaste} {
		back, err := ParseBehavior(b.String())
		if err != nil || back != b {
			t.Errorf("ParseBehavior(%q) = %v, %v", b.String(), back, err)
		}
	}
}
