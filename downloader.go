package pixcc

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// MediaDownloader implements interface Downloader. Supports limiting connection per host,
// configurable amount of workers, uses fasthttp.Client to reduce garbage generation.
// Locations without http:// or https:// scheme are read from local file system.
type MediaDownloader struct {
	log     zerolog.Logger
	input   Inputer
	imgs    chan Imager
	client  fasthttp.Client
	maxSize int
	wg      sync.WaitGroup
}

// Media implement interface Imager and represents downloaded image stored in the memory.
type Media struct {
	resp *fasthttp.Response
	req  *fasthttp.Request
	url  string
}

// LocalMedia implement interface Imager and represents image read from local file.
type LocalMedia struct {
	data []byte
	path string
}

const (
	// DefaultMaxConnsPerHost defines default value of maximum parallel http connections
	// to the host. To prevent DDoS.
	DefaultMaxConnsPerHost = 32

	// DefaultReadTimeout defines maximum duration for full response reading (including body).
	DefaultReadTimeout = 8 * time.Second
)

// NewMediaDownloader returns new instance of MediaDownloader, with default read timeout,
// MaxConnsPerHost (32) and size limit (DefaultMaxSizeMB) parameters.
func NewMediaDownloader(l zerolog.Logger, in Inputer) *MediaDownloader {
	maxSize := DefaultMaxSizeMB * 1024 * 1024
	return &MediaDownloader{
		log:     l.With().Str("component", "downloader").Logger(),
		input:   in,
		imgs:    make(chan Imager, 10),
		maxSize: maxSize,
		client: fasthttp.Client{ReadTimeout: DefaultReadTimeout,
			MaxConnsPerHost:     DefaultMaxConnsPerHost,
			ReadBufferSize:      64 * 1024,
			MaxResponseBodySize: maxSize},
	}
}

// SetMaxConnsPerHost set maximum parallel http connections to the host.
func (id *MediaDownloader) SetMaxConnsPerHost(n int) {
	id.client.MaxConnsPerHost = n
}

// SetReadTimeout set maximum duration for full response reading (including body).
func (id *MediaDownloader) SetReadTimeout(d time.Duration) {
	id.client.ReadTimeout = d
}

// SetMaxSize set maximum image size in bytes. Zero disables the limit.
func (id *MediaDownloader) SetMaxSize(n int) {
	id.maxSize = n
	id.client.MaxResponseBodySize = n
}

// Start launches n parallel image download go-routines.
func (id *MediaDownloader) Start(ctx context.Context, n int) {
	go func() {
		for i := 0; i < n; i++ {
			id.wg.Add(1)
			go id.runner(ctx, i+1)
		}
		id.log.Debug().Int("amount", n).Msg("runners are started")
		id.wg.Wait()
		close(id.imgs)
	}()
}

func (id *MediaDownloader) runner(ctx context.Context, num int) {

	defer id.wg.Done()

	log := id.log.With().Int("runner", num).Logger()
	for {
		select {
		case <-ctx.Done():
			return
		case loc, ok := <-id.input.Next():
			if !ok {
				// input channel is closed due to reaching end of file. Stop the runner.
				return
			}

			t := time.Now()
			img, err := id.Download(ctx, loc)
			if err != nil {
				log.Error().Str("source", loc).Str("errmsg", err.Error()).Msg("image download failed")
				break
			}

			size := len(img.Bytes())

			// catching ctx.Done() while imgs chan is full.
			select {
			case <-ctx.Done():
				img.Reset()
				return
			case id.imgs <- img:
				log.Debug().Str("source", loc).Int("size", size).Str("dur", time.Since(t).String()).Msg("downloaded")
			}
		}
	}
}

// Download retrieves image by URL or reads it from file. Payload is validated
// against size limit and, for HTTP, against response Content-Type.
func (id *MediaDownloader) Download(ctx context.Context, location string) (Imager, error) {

	if !isHTTP(location) {
		return id.readFile(location)
	}

	img := Media{url: location,
		req:  fasthttp.AcquireRequest(),
		resp: fasthttp.AcquireResponse()}

	img.req.SetRequestURI(location)

	if err := id.do(ctx, &img); err != nil {
		img.Reset()
		return nil, err
	}

	if code := img.resp.StatusCode(); code != fasthttp.StatusOK {
		img.Reset()
		return nil, fmt.Errorf("http code %d", code)
	}

	if err := Validate(img.resp.Body(), string(img.resp.Header.ContentType()), id.maxSize); err != nil {
		img.Reset()
		return nil, err
	}

	return &img, nil
}

func (id *MediaDownloader) do(ctx context.Context, img *Media) error {

	err := id.client.Do(img.req, img.resp)
	if err != fasthttp.ErrNoFreeConns {
		return err
	}

	// can be replaced with dymanically calculated delay in accordance
	// to average ratio (image size/download duration) for every host.
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err = id.client.Do(img.req, img.resp); err != fasthttp.ErrNoFreeConns {
				return err
			}
		}
	}
}

func (id *MediaDownloader) readFile(path string) (Imager, error) {

	path = strings.TrimPrefix(path, "file://")

	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if id.maxSize > 0 && fi.Size() > int64(id.maxSize) {
		return nil, ErrMediaTooLarge
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(data, "", id.maxSize); err != nil {
		return nil, err
	}

	return &LocalMedia{data: data, path: path}, nil
}

func isHTTP(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// Next returns chan with downloaded Imagers ready to process.
func (id *MediaDownloader) Next() <-chan Imager {
	return id.imgs
}

// Reset implements interface Imager. Releases HTTP Body buffer.
func (i *Media) Reset() {
	i.resp.ResetBody()
	fasthttp.ReleaseResponse(i.resp)
	fasthttp.ReleaseRequest(i.req)
}

// Bytes returns image as []byte.
func (i *Media) Bytes() []byte {
	return i.resp.Body()
}

// Source returns URL of downloaded image.
func (i *Media) Source() string {
	return i.url
}

// Reset implements interface Imager.
func (i *LocalMedia) Reset() {
	i.data = nil
}

// Bytes returns image as []byte.
func (i *LocalMedia) Bytes() []byte {
	return i.data
}

// Source returns path of the image file.
func (i *LocalMedia) Source() string {
	return i.path
}
