package metadata

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Line grammar of toolpath comment metadata.
var (
	keyValuePat       = regexp.MustCompile(`^; (.*?) = (.*)$`)
	thumbnailBeginPat = regexp.MustCompile(`^; thumbnail(?:_(\w+))? begin\s+(\d+x\d+)\s+(\d+)`)
	thumbnailEndPat   = regexp.MustCompile(`^; thumbnail(?:_\w+)? end`)
	layerChangePat    = regexp.MustCompile(`^;Z:\d+\.\d+$`)
	// M73 status line: up to six optional single-letter-prefixed numeric
	// fields. Only the presence of each field matters. The capture groups
	// are generated from statusFlagAttrs so the letters and their order
	// stay bound to the flag table.
	statusLinePat = buildStatusLinePat()
)

func buildStatusLinePat() *regexp.Regexp {
	var b strings.Builder
	b.WriteString(`^[^;]*M73 ?`)
	for _, sf := range statusFlagAttrs {
		fmt.Fprintf(&b, `(?:%s(\d+))? ?`, sf.Field)
	}
	b.WriteString(`.*$`)
	return regexp.MustCompile(b.String())
}

// thumbnailCapture holds the state of one in-progress thumbnail block. All
// four fields travel together; a nil capture means no block is open.
type thumbnailCapture struct {
	dims         string
	format       string
	declaredSize int
	fragments    bytes.Buffer
}

// lineParser is the per-line dispatch shared by the whole-file scanner and
// the chunked driver. It feeds recognized attributes and thumbnails into a
// Record and tracks thumbnail-capture and status-scan state.
type lineParser struct {
	rec     *Record
	logger  *slog.Logger
	capture *thumbnailCapture

	statusBudget  int64
	statusScanned int64
}

func newLineParser(rec *Record, statusBudget int64, logger *slog.Logger) *lineParser {
	return &lineParser{rec: rec, logger: logger, statusBudget: statusBudget}
}

// parseLine dispatches one line by its first byte. The line may carry its
// trailing line feed; rawLen is accounted against the status-scan budget
// before any trimming.
func (p *lineParser) parseLine(line []byte) error {
	rawLen := int64(len(line))
	line = bytes.TrimRight(line, "\r\n")
	if len(line) > 0 && line[0] == ';' {
		return p.parseCommentLine(string(line))
	}
	p.parseCodeLine(string(line), rawLen)
	return nil
}

func (p *lineParser) parseCommentLine(line string) error {
	if m := thumbnailBeginPat.FindStringSubmatch(line); m != nil {
		if p.capture != nil {
			// A second begin before the matching end discards the prior
			// partial capture and restarts.
			p.logger.Warn("thumbnail begin while capture in progress, restarting",
				slog.String("dims", p.capture.dims))
		}
		format := DefaultThumbnailFormat
		if m[1] != "" {
			format = strings.ToUpper(m[1])
		}
		size, err := strconv.Atoi(m[3])
		if err != nil {
			return nil
		}
		p.capture = &thumbnailCapture{dims: m[2], format: format, declaredSize: size}
		return nil
	}
	if thumbnailEndPat.MatchString(line) && p.capture != nil {
		done := p.capture
		p.capture = nil
		key := done.dims + "_" + done.format
		data := done.fragments.Bytes()
		if len(data) != done.declaredSize {
			return fmt.Errorf("%w: %s declared %d bytes, captured %d",
				ErrThumbnailMismatch, key, done.declaredSize, len(data))
		}
		p.rec.SetThumbnail(key, data)
		return nil
	}
	if p.capture != nil {
		fragment := strings.TrimSpace(strings.TrimPrefix(line, ";"))
		p.capture.fragments.WriteString(fragment)
		return nil
	}
	if m := keyValuePat.FindStringSubmatch(line); m != nil {
		p.rec.Apply(m[1], m[2])
		return nil
	}
	if layerChangePat.MatchString(line) {
		p.rec.SetFlag("layer_info_present")
	}
	return nil
}

// parseCodeLine looks for the M73 status code. The scan is abandoned once
// every presence flag has been seen or the byte budget is spent, whichever
// comes first.
func (p *lineParser) parseCodeLine(line string, rawLen int64) {
	if p.statusFlagsComplete() || p.statusScanned > p.statusBudget {
		return
	}
	if m := statusLinePat.FindStringSubmatch(line); m != nil {
		for i, sf := range statusFlagAttrs {
			if m[i+1] != "" {
				p.rec.SetFlag(sf.Attr)
			}
		}
	}
	p.statusScanned += rawLen
}

func (p *lineParser) statusFlagsComplete() bool {
	for _, sf := range statusFlagAttrs {
		if _, ok := p.rec.Attributes[sf.Attr]; !ok {
			return false
		}
	}
	return true
}

// Scanner reads toolpath metadata from a seekable stream, confining the
// scan to a byte window at the start and end of the input. The middle of
// the file is skipped with a single seek; whether the jump has happened is
// implicit in the read position.
type Scanner struct {
	parser      *lineParser
	startWindow int64
	endWindow   int64
}

// NewScanner creates a scanner feeding the given record.
func NewScanner(rec *Record, opts Options) *Scanner {
	return &Scanner{
		parser:      newLineParser(rec, opts.StatusScanBudget, opts.logger().With(slog.String("component", "scanner"))),
		startWindow: opts.StartWindowBytes,
		endWindow:   opts.EndWindowBytes,
	}
}

// ScanFile opens and scans one toolpath file.
func (s *Scanner) ScanFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.Scan(f)
}

// Scan processes the stream line by line. While the read offset falls in
// the start window or within the end-window budget of the total size, lines
// are processed sequentially; entering the untouched middle region instead
// seeks directly to the start of the end window. Inputs no larger than the
// two windows combined are scanned in full.
func (s *Scanner) Scan(src io.ReadSeeker) error {
	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return err
	}
	reader := bufio.NewReaderSize(src, 64*1024)

	var pos int64
	for pos < size {
		if pos >= s.startWindow && size-pos > s.endWindow {
			pos = size - s.endWindow
			if _, err := src.Seek(pos, io.SeekStart); err != nil {
				return err
			}
			reader.Reset(src)
		}
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			pos += int64(len(line))
			if perr := s.parser.parseLine(line); perr != nil {
				return perr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}
	return nil
}
