package source

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"histoview/internal/logger"
	"histoview/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}))
	return buf.Bytes()
}

type countingFetcher struct {
	calls int32
	body  []byte
	err   error
}

func (f *countingFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.body, f.err
}

type fakeDevice struct {
	frames int
	reads  int
	closed bool
}

func (d *fakeDevice) Read(m *gocv.Mat) bool {
	d.reads++
	if d.reads > d.frames {
		return false
	}
	solid := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(10, 20, 30, 0), 8, 8, gocv.MatTypeCV8UC3)
	defer solid.Close()
	solid.CopyTo(m)
	return true
}

func (d *fakeDevice) Close() error {
	d.closed = true
	return nil
}

func TestDecodeFormats(t *testing.T) {
	img := solidImage(12, 9, color.RGBA{R: 200, G: 30, B: 60, A: 255})

	var gifBuf bytes.Buffer
	require.NoError(t, gif.Encode(&gifBuf, img, nil))

	tests := []struct {
		name string
		data []byte
	}{
		{"png", encodePNG(t, img)},
		{"jpeg", encodeJPEG(t, img)},
		{"gif", gifBuf.Bytes()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := Decode(tt.data)
			require.NoError(t, err)
			defer frame.Close()

			assert.Equal(t, 12, frame.Cols())
			assert.Equal(t, 9, frame.Rows())
			assert.Equal(t, 3, frame.Channels())
		})
	}
}

func TestDecodeKeepsBGROrder(t *testing.T) {
	frame, err := Decode(encodePNG(t, solidImage(4, 4, color.RGBA{R: 255, A: 255})))
	require.NoError(t, err)
	defer frame.Close()

	frameMat := frame.GetMat()
	v := frameMat.GetVecbAt(2, 2)
	assert.Equal(t, []uint8{0, 0, 255}, []uint8{v[0], v[1], v[2]})
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(nil)
	assert.ErrorIs(t, err, ErrUndecodable)

	_, err = Decode([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrUndecodable)
}

func TestStaticUploadWinsOverURL(t *testing.T) {
	fetcher := &countingFetcher{err: errors.New("must not be called")}
	static := NewStatic(fetcher, logger.Nop())

	sel := models.Selection{
		Kind:   models.SourceStatic,
		Upload: encodePNG(t, solidImage(5, 5, color.RGBA{G: 255, A: 255})),
		URL:    "http://example.com/other.png",
	}

	frame, err := static.Acquire(context.Background(), sel)
	require.NoError(t, err)
	defer frame.Close()

	assert.Equal(t, int32(0), atomic.LoadInt32(&fetcher.calls))
	assert.Equal(t, 5, frame.Cols())
}

func TestStaticMalformedUpload(t *testing.T) {
	fetcher := &countingFetcher{}
	static := NewStatic(fetcher, logger.Nop())

	_, err := static.Acquire(context.Background(), models.Selection{Upload: []byte("junk"), UploadName: "x.png"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedUpload)
	assert.NotErrorIs(t, err, ErrNoInput)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fetcher.calls))
}

func TestStaticNoInput(t *testing.T) {
	static := NewStatic(&countingFetcher{}, logger.Nop())

	_, err := static.Acquire(context.Background(), models.Selection{Kind: models.SourceStatic})
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestStaticURLFaultsAreUniform(t *testing.T) {
	tests := []struct {
		name    string
		fetcher *countingFetcher
		want    FaultKind
	}{
		{"plain error", &countingFetcher{err: errors.New("dial failed")}, FaultUnreachable},
		{"bad status", &countingFetcher{err: &FetchError{Kind: FaultBadStatus, Status: 404}}, FaultBadStatus},
		{"garbage body", &countingFetcher{body: []byte("<html>")}, FaultMalformedBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			static := NewStatic(tt.fetcher, logger.Nop())

			frame, err := static.Acquire(context.Background(), models.Selection{URL: "http://example.com/x"})
			assert.Nil(t, frame)
			require.ErrorIs(t, err, ErrNoInput)

			kind, ok := Fault(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, kind)
			assert.Equal(t, int32(1), atomic.LoadInt32(&tt.fetcher.calls))
		})
	}
}

func TestHTTPFetcherClassifiesFaults(t *testing.T) {
	pngBytes := encodePNG(t, solidImage(3, 3, color.RGBA{B: 255, A: 255}))

	mux := http.NewServeMux()
	mux.HandleFunc("/ok.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes)
	})
	mux.HandleFunc("/missing.png", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/huge", func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 2048))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	fetcher := NewHTTPFetcher(2*time.Second, 1024)

	body, err := fetcher.Fetch(context.Background(), srv.URL+"/ok.png")
	require.NoError(t, err)
	assert.Equal(t, pngBytes, body)

	tests := []struct {
		name string
		url  string
		want FaultKind
	}{
		{"not found", srv.URL + "/missing.png", FaultBadStatus},
		{"too large", srv.URL + "/huge", FaultMalformedBody},
		{"bad scheme", "ftp://example.com/a.png", FaultBadURL},
		{"unparsable", "http://[::1", FaultBadURL},
		{"unreachable", "http://unreachable.invalid", FaultUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fetcher.Fetch(context.Background(), tt.url)
			require.ErrorIs(t, err, ErrNoInput)

			kind, ok := Fault(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestUnreachableURLYieldsNoFrame(t *testing.T) {
	static := NewStatic(NewHTTPFetcher(2*time.Second, 0), logger.Nop())

	frame, err := static.Acquire(context.Background(), models.Selection{
		Kind: models.SourceStatic,
		URL:  "http://unreachable.invalid",
	})
	assert.Nil(t, frame)
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestReadFrame(t *testing.T) {
	dev := &fakeDevice{frames: 1}

	frame, err := ReadFrame(dev)
	require.NoError(t, err)
	assert.Equal(t, 8, frame.Rows())
	frame.Close()

	_, err = ReadFrame(dev)
	assert.ErrorIs(t, err, ErrCameraRead)

	_, err = ReadFrame(nil)
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
}

func TestSourceDispatch(t *testing.T) {
	fetcher := &countingFetcher{}
	src := New(NewStatic(fetcher, logger.Nop()))
	dev := &fakeDevice{frames: 1}

	frame, err := src.Acquire(context.Background(), Request{Kind: models.SourceCamera, Device: dev})
	require.NoError(t, err)
	frame.Close()
	assert.Equal(t, 1, dev.reads)

	_, err = src.Acquire(context.Background(), Request{Kind: models.SourceStatic})
	assert.ErrorIs(t, err, ErrNoInput)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fetcher.calls))
}

func TestFaultKindString(t *testing.T) {
	assert.Equal(t, "unreachable", FaultUnreachable.String())
	assert.Equal(t, "bad_status", FaultBadStatus.String())
	assert.Equal(t, "malformed_body", FaultMalformedBody.String())
	assert.Equal(t, "bad_url", FaultBadURL.String())

	_, ok := Fault(errors.New("plain"))
	assert.False(t, ok)
}
