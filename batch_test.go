package pixcc_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/regorov/pixcc"
	"github.com/rs/zerolog"
)

type media struct {
	status      int // http status code
	contentType string
	body        []byte
	isExpected  bool
}

func mediaFiles(t *testing.T) map[string]media {
	valid := pngBytes(t, stripes())
	return map[string]media{
		"404.png":   {status: 404},
		"204.png":   {status: 204},
		"empty.png": {status: 200, contentType: "image/png"},
		"text.txt":  {status: 200, contentType: "text/plain", body: []byte("not an image")},
		"large.png": {status: 200, contentType: "image/png", body: bytes.Repeat([]byte{1}, 4096)},
		"bad.png":   {status: 200, contentType: "image/png", body: []byte("corrupted png"), isExpected: true},
		"10x10.png": {status: 200, contentType: "image/png", body: valid, isExpected: true},
	}
}

func newMediaServer(files map[string]media) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := files[r.URL.Path[1:]]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if f.contentType != "" {
			w.Header().Set("Content-Type", f.contentType)
		}
		w.WriteHeader(f.status)
		_, _ = w.Write(f.body)
	}))
}

type inputMock struct {
	line chan string
}

func newInputMock(locations []string) pixcc.Inputer {
	mock := inputMock{line: make(chan string)}

	go func() {
		for _, l := range locations {
			mock.line <- l
		}
		close(mock.line)
	}()

	return &mock
}

func (mock *inputMock) Next() <-chan string {
	return mock.line
}

// batch returns locations of all media files, one valid local file and one missing local file.
func batch(t *testing.T, srv *httptest.Server, files map[string]media) ([]string, map[string]bool) {
	t.Helper()

	dir := t.TempDir()
	local := filepath.Join(dir, "local.png")
	if err := os.WriteFile(local, pngBytes(t, stripes()), 0644); err != nil {
		t.Fatalf("local file writing failed: %s", err.Error())
	}

	locations := []string{local, filepath.Join(dir, "missing.png"), srv.URL + "/unknown.png"}
	expected := map[string]bool{local: true}
	for name, f := range files {
		locations = append(locations, srv.URL+"/"+name)
		if f.isExpected {
			expected[srv.URL+"/"+name] = true
		}
	}
	return locations, expected
}

func newDownloader(in pixcc.Inputer) *pixcc.MediaDownloader {
	down := pixcc.NewMediaDownloader(zerolog.New(os.Stdout), in)
	down.SetMaxConnsPerHost(1)
	down.SetReadTimeout(10 * time.Second)
	down.SetMaxSize(2048)
	return down
}

func TestMediaDownloader(t *testing.T) {

	files := mediaFiles(t)
	srv := newMediaServer(files)
	defer srv.Close()

	locations, expected := batch(t, srv, files)
	down := newDownloader(newInputMock(locations))
	down.Start(context.Background(), 2)

	downloaded := map[string]bool{}
	for img := range down.Next() {
		downloaded[img.Source()] = true
		if len(img.Bytes()) == 0 {
			t.Errorf("%s is empty", img.Source())
		}
		img.Reset()
	}

	for loc := range expected {
		if !downloaded[loc] {
			t.Errorf("downloader failed. %s is not downloaded", loc)
		}
	}
	for loc := range downloaded {
		if !expected[loc] {
			t.Errorf("downloader failed. %s is not expected", loc)
		}
	}
}

func TestMediaDownloader_Download(t *testing.T) {

	files := mediaFiles(t)
	srv := newMediaServer(files)
	defer srv.Close()

	down := newDownloader(newInputMock(nil))

	var tbl = []struct {
		name string
		err  error
	}{
		{"empty.png", pixcc.ErrMediaIsEmpty},
		{"text.txt", pixcc.ErrMediaNotImage},
		{"10x10.png", nil},
	}

	for i := range tbl {
		img, err := down.Download(context.Background(), srv.URL+"/"+tbl[i].name)
		if err != tbl[i].err {
			t.Errorf("case %d failed. Got %v, expected %v", i, err, tbl[i].err)
		}
		if err == nil {
			img.Reset()
		}
	}

	if _, err := down.Download(context.Background(), srv.URL+"/404.png"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("got %v, expected http code 404", err)
	}
	if _, err := down.Download(context.Background(), srv.URL+"/large.png"); err == nil {
		t.Errorf("oversized response is expected to fail")
	}

	large := filepath.Join(t.TempDir(), "large.png")
	if err := os.WriteFile(large, files["large.png"].body, 0644); err != nil {
		t.Fatalf("local file writing failed: %s", err.Error())
	}
	if _, err := down.Download(context.Background(), large); err != pixcc.ErrMediaTooLarge {
		t.Errorf("got %v, expected %v", err, pixcc.ErrMediaTooLarge)
	}
}

func TestImageProcessor(t *testing.T) {

	files := mediaFiles(t)
	srv := newMediaServer(files)
	defer srv.Close()

	locations, expected := batch(t, srv, files)
	down := newDownloader(newInputMock(locations))
	down.Start(context.Background(), 2)

	dir := t.TempDir()
	out := pixcc.NewBufferedCSV(3)
	if err := out.Open(filepath.Join(dir, "result.csv")); err != nil {
		t.Fatalf("open file failed: %s", err.Error())
	}

	store, err := pixcc.NewDirImageStore(filepath.Join(dir, "images"))
	if err != nil {
		t.Fatalf("image store creation failed: %s", err.Error())
	}

	analyzer := pixcc.NewAnalyzer(pixcc.Options{TopK: 25})
	imgproc := pixcc.NewImageProcessor(zerolog.New(os.Stdout), down, out, store, analyzer)
	imgproc.Start(context.Background(), 2)

	if err := out.Close(); err != nil {
		t.Fatalf("output file close failed: %s", err.Error())
	}

	// bad.png is downloaded, but can not be decoded.
	if imgproc.Processed() != len(expected)-1 || imgproc.Failed() != 1 {
		t.Errorf("processed %d, failed %d", imgproc.Processed(), imgproc.Failed())
	}

	buf, err := os.ReadFile(filepath.Join(dir, "result.csv"))
	if err != nil {
		t.Fatalf("result reading failed: %s", err.Error())
	}
	lines := strings.Split(strings.TrimSpace(string(buf)), "\n")
	if len(lines) != len(expected) {
		t.Fatalf("got %d lines, expected %d:\n%s", len(lines), len(expected), buf)
	}
	if lines[0]+"\n" != (&pixcc.Analysis{}).Header() {
		t.Errorf("header is expected, got %s", lines[0])
	}
	for _, l := range lines[1:] {
		if !strings.HasSuffix(l, `,10,10,100,3,"#ff0000 50 50.00;#00ff00 30 30.00;#0000ff 20 20.00"`) {
			t.Errorf("unexpected line %s", l)
		}
	}

	images, err := filepath.Glob(filepath.Join(dir, "images", "*.png"))
	if err != nil {
		t.Fatalf("glob failed: %s", err.Error())
	}
	if len(images) != 3*imgproc.Processed() {
		t.Errorf("got %d images, expected %d", len(images), 3*imgproc.Processed())
	}
}

func TestPlainTextFileInput_Next(t *testing.T) {

	fname := filepath.Join(t.TempDir(), "input.txt")

	var sb strings.Builder
	sb.WriteString("# comment\n\n")
	urls := make([]string, 1000)
	for i := range urls {
		urls[i] = fmt.Sprintf("http://127.0.0.1/%d.png", i)
		sb.WriteString("  " + urls[i] + "\n")
		if i%100 == 0 {
			sb.WriteString("\n#" + urls[i] + "\n")
		}
	}
	if err := os.WriteFile(fname, []byte(sb.String()), 0644); err != nil {
		t.Fatalf("input file writing failed: %s", err.Error())
	}

	input := pixcc.NewPlainTextFileInput(zerolog.Logger{})
	if err := input.Start(context.Background(), fname); err != nil {
		t.Fatalf("inputer start failed. Details: %s", err.Error())
	}

	i := 0
	for u := range input.Next() {
		if u != urls[i] {
			t.Fatalf("inconsistent reading. Got %s, expected %s", u, urls[i])
		}
		i++
	}
	if i != len(urls) || input.Passed() != len(urls) {
		t.Errorf("got %d lines (%d passed), expected %d", i, input.Passed(), len(urls))
	}

	// cancellation.
	input = pixcc.NewPlainTextFileInput(zerolog.Logger{})
	ctx, cancel := context.WithCancel(context.Background())
	if err := input.Start(ctx, fname); err != nil {
		t.Fatalf("inputer start failed. Details: %s", err.Error())
	}

	i = 0
	for range input.Next() {
		i++
		if i == len(urls)/2 {
			break
		}
	}

	cancel()
	for range input.Next() {
	}

	if input.Passed() == len(urls) {
		t.Errorf("input cancelation failed")
	}

	if err := pixcc.NewPlainTextFileInput(zerolog.Logger{}).Start(context.Background(), fname+".missing"); err == nil {
		t.Errorf("missing input file is expected to fail")
	}
}

type resultMock string

func (r resultMock) Result() string { return string(r) + "\n" }
func (r resultMock) Header() string { return "header\n" }

func TestBufferedCSV(t *testing.T) {

	fname := filepath.Join(t.TempDir(), "result.csv")

	for run := 0; run < 2; run++ {
		out := pixcc.NewBufferedCSV(0)
		if err := out.Open(fname); err != nil {
			t.Fatalf("open file failed: %s", err.Error())
		}
		for i := 0; i < 25; i++ {
			if err := out.Save(resultMock(fmt.Sprintf("%d-%d", run, i))); err != nil {
				t.Fatalf("save failed: %s", err.Error())
			}
		}
		if err := out.Close(); err != nil {
			t.Fatalf("close failed: %s", err.Error())
		}
		// Save and Close after Close are ignored.
		if err := out.Save(resultMock("late")); err != nil {
			t.Errorf("save after close failed: %s", err.Error())
		}
		if err := out.Close(); err != nil {
			t.Errorf("second close failed: %s", err.Error())
		}
	}

	buf, err := os.ReadFile(fname)
	if err != nil {
		t.Fatalf("result reading failed: %s", err.Error())
	}
	lines := strings.Split(strings.TrimSpace(string(buf)), "\n")
	if len(lines) != 51 || lines[0] != "header" || lines[1] != "0-0" || lines[50] != "1-24" {
		t.Errorf("unexpected output:\n%s", buf)
	}
}

func TestDirImageStore(t *testing.T) {

	dir := t.TempDir()
	store, err := pixcc.NewDirImageStore(dir)
	if err != nil {
		t.Fatalf("image store creation failed: %s", err.Error())
	}

	data := pngBytes(t, stripes())
	var tbl = []struct {
		res   pixcc.Analysis
		files []string
	}{
		{res: pixcc.Analysis{Source: "http://host/path/cat photo.png?x=1", OriginalImage: data, QuantizedImage: data, WhiteImage: data},
			files: []string{"000001-cat_photo.original.png", "000001-cat_photo.quantized.png", "000001-cat_photo.white.png"}},
		{res: pixcc.Analysis{Source: "", OriginalImage: data},
			files: []string{"000002-image.original.png"}},
	}

	var expected []string
	for i := range tbl {
		if err := store.Store(&tbl[i].res); err != nil {
			t.Fatalf("case %d failed: %s", i, err.Error())
		}
		expected = append(expected, tbl[i].files...)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("directory reading failed: %s", err.Error())
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Name())
	}
	sort.Strings(expected)
	sort.Strings(got)
	if strings.Join(got, ",") != strings.Join(expected, ",") {
		t.Errorf("got %v, expected %v", got, expected)
	}
}

func TestValidate(t *testing.T) {
	var tbl = []struct {
		data        []byte
		contentType string
		max         int
		err         error
	}{
		{nil, "", 0, pixcc.ErrMediaIsEmpty},
		{[]byte("abc"), "", 2, pixcc.ErrMediaTooLarge},
		{[]byte("abc"), "", 0, nil},
		{[]byte("abc"), "text/plain", 10, pixcc.ErrMediaNotImage},
		{[]byte("abc"), "Image/PNG", 3, nil},
	}

	for i := range tbl {
		if err := pixcc.Validate(tbl[i].data, tbl[i].contentType, tbl[i].max); err != tbl[i].err {
			t.Errorf("case %d failed. Got %v, expected %v", i, err, tbl[i].err)
		}
	}
}
