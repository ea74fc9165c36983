package pixcc

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// ImageProcessor implements batch orchestration functionality.
// It reads Imager(s) from Downloader, invocates Analyzer for processing, uses Outputer to save
// result and ImageStore (if set) to save rendered images.
// It's suggested to limit max amount of parallel processing goroutins equal to amount of cores.
type ImageProcessor struct {
	down     Downloader
	output   Outputer
	store    ImageStore
	analyzer *Analyzer
	log      zerolog.Logger
	wg       sync.WaitGroup

	processed int64
	failed    int64
}

// NewImageProcessor returns new instance of ImageProcessor. Store can be nil.
func NewImageProcessor(l zerolog.Logger, d Downloader, o Outputer, s ImageStore, a *Analyzer) *ImageProcessor {
	return &ImageProcessor{
		log:      l.With().Str("component", "imgproc").Logger(),
		down:     d,
		output:   o,
		store:    s,
		analyzer: a}
}

// Start launches n paraller processing goroutines and waits completion.
func (ip *ImageProcessor) Start(ctx context.Context, n int) {

	for i := 0; i < n; i++ {
		ip.wg.Add(1)
		go ip.runner(ctx, i+1)
	}
	ip.log.Debug().Int("amount", n).Msg("runners are started")
	ip.wg.Wait()
}

// Processed returns amount of successfully analyzed images.
func (ip *ImageProcessor) Processed() int {
	return int(atomic.LoadInt64(&ip.processed))
}

// Failed returns amount of images failed on analysis or saving.
func (ip *ImageProcessor) Failed() int {
	return int(atomic.LoadInt64(&ip.failed))
}

func (ip *ImageProcessor) runner(ctx context.Context, num int) {

	defer ip.wg.Done()

	var (
		totalb  int // total amount of bytes passsed through the runner.
		msize   int // max image size in bytes passed passsed through the runner.
		cnt     int // amount if images passed through the runner.
		totalpx int // total amount of pixels analyzed by the runner.
		per100b int
	)
	started := time.Now()
	started100 := started
	log := ip.log.With().Int("runner", num).Logger()

	logstat := func(msg string) {
		log.Info().Int("count", cnt).
			Int("total-bytes", totalb+per100b).
			Int("total-pixels", totalpx).
			Int("total-bsec-thr", (totalb+per100b)/(int(time.Since(started).Seconds()+1))).
			Int("100-bsec-thr", per100b/(int(time.Since(started100).Seconds()+1))).
			Int("max-image-size", msize).Msg(msg)
	}

	for {
		select {
		case <-ctx.Done():
			logstat("interrupted")
			return
		case img, ok := <-ip.down.Next():
			if !ok {
				// Downloader channel with images is closed due to reaching Inputer EOF. Stop the runner.
				logstat("reached EOF")
				return
			}

			src := img.Source()
			size := len(img.Bytes())

			res, err := ip.analyzer.Analyze(src, img.Bytes())
			img.Reset() // return []byte to the pool.
			if err != nil {
				atomic.AddInt64(&ip.failed, 1)
				log.Error().Str("source", src).Str("errmsg", err.Error()).Msg("analysis failed")
				break
			}
			log.Debug().Str("source", src).
				Str("dur", res.Duration.String()).
				Int("unique", res.UniqueColorCount).
				Str("res", res.Result()).Msg("image processed")

			per100b += size
			totalpx += res.TotalPixels
			if size > msize {
				msize = size
			}

			cnt++
			if cnt%100 == 0 {
				logstat("+100 processed")
				totalb += per100b
				started100 = time.Now()
				per100b = 0
			}

			if err := ip.save(res); err != nil {
				atomic.AddInt64(&ip.failed, 1)
				log.Error().Str("source", src).Str("errmsg", err.Error()).Msg("result saving failed")
				break
			}
			atomic.AddInt64(&ip.processed, 1)
		}
	}
}

func (ip *ImageProcessor) save(res *Analysis) error {
	if ip.store != nil {
		if err := ip.store.Store(res); err != nil {
			return err
		}
	}
	return ip.output.Save(res)
}
