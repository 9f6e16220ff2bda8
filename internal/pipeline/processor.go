package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/pricetag-ocr/internal/detection"
	"github.com/ironsheep/pricetag-ocr/internal/geometry"
	"github.com/ironsheep/pricetag-ocr/internal/imaging"
	"github.com/ironsheep/pricetag-ocr/internal/ocr"
)

// Options configures a Processor.
type Options struct {
	// Filter selects the detections to process. Defaults to detection.DefaultFilter().
	Filter *detection.Filter

	// Workers bounds the number of tags processed concurrently. Values below 1 mean 1.
	Workers int

	// Enhance enables grayscale/contrast preprocessing of crops before OCR.
	Enhance bool

	// Timeout bounds each image processed by Watch. Zero means no limit.
	Timeout time.Duration

	// Out receives the human-readable progress report. Defaults to os.Stdout.
	Out io.Writer

	// Logger receives diagnostics. Defaults to the logrus standard logger.
	Logger logrus.FieldLogger
}

// Processor runs the detect, crop, save and OCR pipeline.
// It is safe to process several images concurrently with one Processor.
type Processor struct {
	detector detection.Detector
	reader   ocr.Reader
	filter   detection.Filter
	workers  int
	enhance  bool
	timeout  time.Duration
	log      logrus.FieldLogger

	outMu sync.Mutex
	out   io.Writer
}

// New creates a Processor using detector to find tags and reader to read them.
func New(detector detection.Detector, reader ocr.Reader, opts Options) *Processor {
	p := &Processor{
		detector: detector,
		reader:   reader,
		filter:   detection.DefaultFilter(),
		workers:  opts.Workers,
		enhance:  opts.Enhance,
		timeout:  opts.Timeout,
		log:      opts.Logger,
		out:      opts.Out,
	}
	if opts.Filter != nil {
		p.filter = *opts.Filter
	}
	if p.workers < 1 {
		p.workers = 1
	}
	if p.log == nil {
		p.log = logrus.StandardLogger()
	}
	if p.out == nil {
		p.out = os.Stdout
	}
	return p
}

// TagFileName returns the file name of the crop with the given index.
func TagFileName(index int) string {
	return fmt.Sprintf("tag_%d.jpg", index)
}

// tagJob is a qualifying detection with its tag index already allocated.
type tagJob struct {
	index int
	det   detection.Result
	box   geometry.PixelBox
}

// ProcessImage runs the pipeline on the photo at imagePath and writes crops
// into targetDir.
//
// The returned error is non-nil only for image-level failures. Per-tag
// failures are reported through Report.Tags and Report.Err.
func (p *Processor) ProcessImage(ctx context.Context, imagePath, targetDir string) (*Report, error) {
	log := p.log.WithField("image", imagePath)
	report := &Report{ImagePath: imagePath, Tags: []TagResult{}}

	p.printf("Processing file %s...\n", imagePath)

	src, err := imaging.Load(imagePath)
	if err != nil {
		return report, fmt.Errorf("load %s: %w", imagePath, err)
	}

	p.printf("\tDetecting price tags...\n")
	results, err := p.detector.Detect(ctx, src.Data)
	if err != nil {
		return report, fmt.Errorf("detect price tags in %s: %w", imagePath, err)
	}
	report.Detected = len(results)
	p.printf("\tDetected %d tags:\n", len(results))

	qualified := p.filter.Apply(results)
	report.Qualified = len(qualified)

	jobs := make([]tagJob, 0, len(qualified))
	for _, det := range qualified {
		box := geometry.CorrectBox(det.Box, src.Width(), src.Height())
		if box.Empty() {
			report.Skipped++
			log.WithFields(logrus.Fields{
				"label":       det.Label,
				"probability": det.Probability,
				"box":         det.Box,
			}).Warn("Skipping detection with empty bounding box")
			continue
		}
		jobs = append(jobs, tagJob{index: len(jobs), det: det, box: box})
	}

	log.WithFields(logrus.Fields{
		"detected":  report.Detected,
		"qualified": report.Qualified,
		"tags":      len(jobs),
		"workers":   p.workers,
	}).Debug("Detection finished")

	tags := make([]TagResult, len(jobs))
	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			tags[i] = p.processTag(ctx, src, job, targetDir, log)
			return nil
		})
	}
	_ = g.Wait()

	report.Tags = tags
	if failed := report.Failed(); failed > 0 {
		p.printf("\tProcessed %d tags, %d failed\n", report.Processed(), failed)
	} else {
		p.printf("\tProcessed %d tags\n", report.Processed())
	}
	return report, nil
}

// processTag crops, saves and reads a single tag. Its console block is
// buffered and written in one piece once the tag is finished.
func (p *Processor) processTag(ctx context.Context, src *imaging.Source, job tagJob, targetDir string, log logrus.FieldLogger) TagResult {
	res := TagResult{Index: job.index, Detection: job.det, Box: job.box, Lines: []string{}}
	log = log.WithField("tag", job.index)

	var buf bytes.Buffer
	defer func() { p.write(buf.Bytes()) }()

	fmt.Fprintf(&buf, "\t\t%s: %.1f%% [ %d, %d, %d, %d ]\n", job.det.Label, job.det.Probability*100,
		job.box.Left, job.box.Top, job.box.Width, job.box.Height)

	fail := func(stage Stage, err error) TagResult {
		res.Err = &TagError{Index: job.index, Stage: stage, Err: err}
		log.WithField("stage", stage).WithError(err).Error("Tag processing failed")
		fmt.Fprintf(&buf, "\t\tTag %d failed at %s: %v\n", job.index, stage, err)
		return res
	}

	cropped, err := imaging.Crop(src.Image, job.box)
	if err != nil {
		return fail(StageCrop, err)
	}

	path, err := imaging.Save(cropped, targetDir, TagFileName(job.index))
	if err != nil {
		return fail(StageSave, err)
	}
	res.Path = path

	if c, err := imaging.DominantColor(cropped); err == nil {
		res.Color = c
		fmt.Fprintf(&buf, "\t\tSaved %s (%s tag, %s)\n", path, c.Name, c.Hex)
	} else {
		log.WithError(err).Debug("Could not sample tag color")
		fmt.Fprintf(&buf, "\t\tSaved %s\n", path)
	}

	data, err := imaging.EncodeJPEG(imaging.PrepareForOCR(cropped, p.enhance))
	if err != nil {
		return fail(StageEncode, err)
	}

	fmt.Fprintf(&buf, "\t\tPerforming OCR...\n")
	lines, err := p.reader.ReadText(ctx, data)
	if err != nil {
		return fail(StageOCR, err)
	}
	res.Lines = append(res.Lines, lines...)

	for _, line := range lines {
		fmt.Fprintf(&buf, "\t\tText: %s\n", line)
	}
	if len(lines) == 0 {
		fmt.Fprintf(&buf, "\t\tNo text recognized\n")
	}
	log.WithField("lines", len(lines)).Debug("Tag processed")

	return res
}

func (p *Processor) printf(format string, args ...interface{}) {
	p.write([]byte(fmt.Sprintf(format, args...)))
}

func (p *Processor) write(b []byte) {
	p.outMu.Lock()
	defer p.outMu.Unlock()
	_, _ = p.out.Write(b)
}
