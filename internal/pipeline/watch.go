package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/pricetag-ocr/internal/imaging"
)

const (
	// watchTick is how often pending files are checked for stability.
	watchTick = 250 * time.Millisecond

	// settleDelay is how long a file must go without events before it is processed.
	settleDelay = 300 * time.Millisecond
)

// ReportFunc receives the outcome of every image processed in watch mode.
type ReportFunc func(path string, report *Report, err error)

// Watch processes every photo already present in dir and then every photo
// created in it until ctx is cancelled. The crops of photo.jpg are written to
// targetDir/photo. Crops produced by the pipeline itself are ignored.
//
// onReport may be nil. Watch returns nil when ctx is cancelled.
func (p *Processor) Watch(ctx context.Context, dir, targetDir string, onReport ReportFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	existing, err := listPhotos(dir)
	if err != nil {
		return err
	}

	log := p.log.WithField("dir", dir)
	log.WithField("existing", len(existing)).Info("Watching for new photos")

	fileCh := make(chan string, 256)
	go debounce(ctx, w, fileCh, log)

	handle := func(name string) {
		path := filepath.Join(dir, name)
		imgCtx := ctx
		if p.timeout > 0 {
			var cancel context.CancelFunc
			imgCtx, cancel = context.WithTimeout(ctx, p.timeout)
			defer cancel()
		}
		report, err := p.ProcessImage(imgCtx, path, filepath.Join(targetDir, stem(name)))
		if err != nil {
			log.WithField("image", path).WithError(err).Error("Image processing failed")
		}
		if onReport != nil {
			onReport(path, report, err)
		}
	}

	for _, name := range existing {
		if ctx.Err() != nil {
			return nil
		}
		handle(name)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case name, ok := <-fileCh:
			if !ok {
				return nil
			}
			handle(name)
		}
	}
}

// debounce forwards photo names once they have been quiet for settleDelay.
// It closes fileCh when the watcher shuts down or ctx is cancelled.
func debounce(ctx context.Context, w *fsnotify.Watcher, fileCh chan<- string, log logrus.FieldLogger) {
	defer close(fileCh)

	pending := map[string]time.Time{}
	ticker := time.NewTicker(watchTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			name := filepath.Base(ev.Name)
			if !isPhoto(name) {
				continue
			}
			pending[name] = time.Now()
		case <-ticker.C:
			now := time.Now()
			ready := make([]string, 0, len(pending))
			for name, t := range pending {
				if now.Sub(t) > settleDelay {
					ready = append(ready, name)
				}
			}
			sort.Strings(ready)
			for _, name := range ready {
				delete(pending, name)
				select {
				case fileCh <- name:
				case <-ctx.Done():
					return
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("Watch error")
		}
	}
}

// listPhotos returns the photo file names in dir, sorted.
func listPhotos(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && isPhoto(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// isPhoto reports whether name is an image the pipeline should process.
func isPhoto(name string) bool {
	if strings.HasPrefix(name, "tag_") {
		return false
	}
	return imaging.IsSupportedExt(name)
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
