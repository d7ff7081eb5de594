package cifdict

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"

	eng "github.com/reoring/cifdict/internal/engine"
	"github.com/reoring/cifdict/internal/stream"
)

// Report summarizes a validation run.
type Report struct {
	// Blocks lists the validated data block names in input order. The
	// implicit block before any data_ header is reported as "".
	Blocks []string
	// UnknownCategories lists categories not described by the dictionary.
	UnknownCategories []string
	// UnknownKeywords lists tags of known categories whose keyword is not
	// described by the dictionary.
	UnknownKeywords []string
	// Warnings holds stream enforcement issues raised with Warn severity.
	Warnings Issues
}

// Validate checks that the data stream src conforms to d. It returns nil on
// success, Issues describing the violation (all violations with
// ValidateOpt.CollectAll), a *SyntaxError for malformed input, or the
// context's error.
//
// Each data block is validated independently. Values of categories or
// keywords unknown to d are ignored. A bare "?" marks its category as present
// but does not satisfy a mandatory keyword; a bare "." does.
func Validate(ctx context.Context, d *Dictionary, src Source, opts ...ValidateOpt) error {
	_, err := ValidateWithReport(ctx, d, src, opts...)
	return err
}

// ValidateWithReport is like Validate and also returns a Report. The report
// covers the input consumed up to the point validation stopped.
func ValidateWithReport(ctx context.Context, d *Dictionary, src Source, opts ...ValidateOpt) (Report, error) {
	if d == nil {
		return Report{}, ErrNilDictionary
	}
	var opt ValidateOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	v := &validator{
		d:           d,
		opt:         opt,
		log:         loggerOr(opt.Logger),
		unknownCats: map[string]string{},
		unknownKws:  map[string]string{},
	}
	var sink func(eng.SimpleIssue)
	if opt.Strictness.OnDuplicateTag == Warn {
		sink = func(si eng.SimpleIssue) {
			if si.Code == CodeDuplicateTag {
				v.report.Warnings = AppendIssues(v.report.Warnings, fromEngineIssue(si, v.block.name))
			}
		}
	}
	err := v.run(ctx, enforceSource(src, opt, sink))
	v.finishReport()
	if err != nil {
		return v.report, err
	}
	if len(v.issues) > 0 {
		return v.report, v.issues
	}
	return v.report, nil
}

type validator struct {
	d      *Dictionary
	opt    ValidateOpt
	log    *slog.Logger
	issues Issues
	report Report
	block  *blockState

	unknownCats map[string]string
	unknownKws  map[string]string
}

// blockState is the per-block bookkeeping: for every category touched in the
// block, the set of its keywords that received a present value.
type blockState struct {
	name     string
	explicit bool // opened by a data_ header
	content  bool
	touched  map[string]map[string]struct{}
}

func newBlockState(name string, explicit bool) *blockState {
	return &blockState{name: name, explicit: explicit, touched: map[string]map[string]struct{}{}}
}

func (b *blockState) touch(category string) map[string]struct{} {
	kws, ok := b.touched[category]
	if !ok {
		kws = map[string]struct{}{}
		b.touched[category] = kws
	}
	return kws
}

// fail records it and reports whether validation must stop.
func (v *validator) fail(it Issue) error {
	v.issues = AppendIssues(v.issues, it)
	if v.opt.CollectAll {
		return nil
	}
	return v.issues
}

func (v *validator) run(ctx context.Context, src eng.EventSource) error {
	v.block = newBlockState("", false)
	for {
		bs := stream.NewBlockSource(src)
		if err := v.consume(ctx, bs); err != nil {
			return err
		}
		next, ok := bs.Boundary()
		if !ok {
			return v.closeBlock()
		}
		// A data_ header at the very start does not close an empty
		// implicit block.
		if v.block.explicit || v.block.content {
			if err := v.closeBlock(); err != nil {
				return err
			}
		}
		v.log.Debug("data block", "name", next.Name, "line", next.Line)
		v.block = newBlockState(next.Name, true)
	}
}

func (v *validator) consume(ctx context.Context, bs *stream.BlockSource) error {
	frames := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev, err := bs.NextEvent()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var ie eng.IssueError
			if errors.As(err, &ie) {
				v.issues = AppendIssues(v.issues, fromEngineIssue(ie.SimpleIssue, v.block.name))
				return v.issues
			}
			return err
		}
		switch ev.Kind {
		case EventFrameBegin:
			frames++
		case EventFrameEnd:
			frames--
		case EventItem:
			if frames > 0 {
				continue
			}
			if err := v.item(ev); err != nil {
				return err
			}
		}
	}
}

func (v *validator) item(ev Event) error {
	v.block.content = true
	c, ok := v.d.Category(ev.Category)
	if !ok {
		v.noteUnknown(v.unknownCats, "_"+ev.Category)
		return nil
	}
	k, ok := c.Keyword(ev.Keyword)
	if !ok {
		v.noteUnknown(v.unknownKws, ev.Tag)
		return nil
	}
	present := v.block.touch(c.key)
	if Classify(ev.Value) != ValueUnknown {
		present[k.key] = struct{}{}
	}
	if it, ok := k.Check(ev.Value, v.opt.Policy); !ok {
		it.Block = v.block.name
		it.Line = ev.Line
		it.Offset = ev.Offset
		return v.fail(it)
	}
	return nil
}

func (v *validator) noteUnknown(seen map[string]string, name string) {
	key := fold(name)
	if _, ok := seen[key]; ok {
		return
	}
	seen[key] = name
	v.log.Debug("value not described by dictionary", "tag", name, "block", v.block.name)
}

// closeBlock enforces mandatory categories and, for every touched category,
// its mandatory keywords.
func (v *validator) closeBlock() error {
	b := v.block
	v.report.Blocks = append(v.report.Blocks, b.name)
	for _, c := range v.d.Categories() {
		if c.Mandatory() != MandatoryYes {
			continue
		}
		if _, ok := b.touched[c.key]; !ok {
			if err := v.fail(missingCategoryIssue(b.name, c)); err != nil {
				return err
			}
		}
	}

	touched := make([]string, 0, len(b.touched))
	for key := range b.touched {
		touched = append(touched, key)
	}
	sort.Strings(touched)
	for _, key := range touched {
		present := b.touched[key]
		for _, k := range v.d.categories[key].Keywords() {
			if !k.Mandatory() {
				continue
			}
			if _, ok := present[k.key]; !ok {
				if err := v.fail(missingKeywordIssue(b.name, k)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (v *validator) finishReport() {
	v.report.UnknownCategories = sortedValues(v.unknownCats)
	v.report.UnknownKeywords = sortedValues(v.unknownKws)
}

func sortedValues(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
