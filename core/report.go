package core

import (
	"fmt"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"rowmatrix/stats"
)

// Summary is what a Run observed about the matrix it built.
type Summary struct {
	Allocations   int
	Releases      int
	Balanced      bool
	Contiguous    bool
	Disjoint      bool
	SlotsDistinct bool
	Layout        *Layout
	Values        [][]float64
	RowGaps       *stats.AddressStatistics
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) slots(l *Layout) {
	p.printf("Addresses of the row table slots (where the row addresses are kept):\n")
	for i, slot := range l.Slots {
		p.printf("Row %d: \t %s \n", i, slot)
	}
	p.printf("\n")
}

func (p *printer) rowBases(l *Layout) {
	p.printf("Addresses held by the slots (where each row actually starts):\n")
	for i, base := range l.RowBases {
		p.printf("Row %d: \t %s \n", i, base)
	}
	p.printf("\n")
}

func (p *printer) values(values [][]float64) {
	p.printf("The values of the array:\n")
	for _, row := range values {
		for _, v := range row {
			p.printf("%f\t", v)
		}
		p.printf("\n")
	}
	p.printf("\n")
}

func (p *printer) cells(l *Layout) {
	p.printf("Where each value in the array is stored:\n")
	for _, row := range l.Cells {
		for _, addr := range row {
			p.printf("%s\t", addr)
		}
		p.printf("\n")
	}
	p.printf("\n")
}

func (p *printer) dense(d *Dense, rows int) {
	p.printf("The same values as one contiguous block (gonum mat.Dense):\n")
	p.printf("Block: \t %s \n", d.Base())
	for i := 0; i < rows; i++ {
		p.printf("Row %d: \t %s \n", i, d.RowAddr(i))
	}
	p.printf("Row pitch: %d bytes\n\n", d.RowPitch())
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (p *printer) summary(s *Summary) {
	p.printf("Allocations: %d, releases: %d, balanced: %s\n", s.Allocations, s.Releases, yesNo(s.Balanced))
	p.printf("Element size: %d bytes, slot size: %d bytes, slot stride: %d bytes\n",
		s.Layout.ElemSize, s.Layout.SlotSize, s.Layout.SlotStride())
	p.printf("Cells contiguous within each row: %s\n", yesNo(s.Contiguous))
	p.printf("Row buffers disjoint: %s\n", yesNo(s.Disjoint))
	p.printf("Slot addresses distinct from row addresses: %s\n", yesNo(s.SlotsDistinct))
	if gaps := s.RowGaps.GapStats; gaps.GetCount() > 0 {
		p.printf("Gap between consecutive row starts: mean %.1f, min %.0f, max %.0f bytes (ascending: %s)\n",
			gaps.GetMean(), gaps.GetMin(), gaps.GetMax(), yesNo(s.RowGaps.Ascending))
	}
	p.printf("Calloc bytes outstanding: %d\n", OutstandingCallocBytes())
}

// Run builds a cfg.Rows x cfg.Cols matrix with the configured allocator,
// writes the address and value listings to w stage by stage, releases the
// matrix and writes an allocation summary.
func Run(cfg *Config, w io.Writer, logger *zap.Logger) (summary *Summary, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	alloc, err := cfg.NewAllocator()
	if err != nil {
		return nil, err
	}
	tracker := NewTrackingAllocator(alloc, logger)
	p := &printer{w: w}

	m, err := NewMatrix(tracker, cfg.Rows, cfg.Cols)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, m.Release())
	}()
	logger.Debug("row table allocated",
		zap.Int("rows", cfg.Rows),
		zap.Stringer("addr", Addr(baseAddr(m.table))))
	p.slots(m.Layout())

	if err := m.AllocateRows(); err != nil {
		return nil, err
	}
	logger.Debug("rows allocated", zap.Int("cols", cfg.Cols), zap.String("backend", string(cfg.Backend)))
	p.rowBases(m.Layout())

	m.Populate()
	values := m.Values()
	p.values(values)

	layout := m.Layout()
	p.cells(layout)

	if cfg.Dense {
		p.dense(NewDense(cfg.Rows, cfg.Cols, SumOfIndices), cfg.Rows)
	}

	summary = &Summary{
		Layout:        layout,
		Values:        values,
		RowGaps:       layout.RowGaps(),
		SlotsDistinct: layout.SlotsDistinct(),
	}
	if cerr := layout.CheckContiguous(); cerr != nil {
		logger.Warn("layout check", zap.Error(cerr))
	} else {
		summary.Contiguous = true
	}
	if derr := layout.CheckDisjoint(); derr != nil {
		logger.Warn("layout check", zap.Error(derr))
	} else {
		summary.Disjoint = true
	}

	if err := m.Release(); err != nil {
		return nil, err
	}
	logger.Debug("matrix released",
		zap.Int("allocations", tracker.Allocations()),
		zap.Int("releases", tracker.Releases()))

	summary.Allocations = tracker.Allocations()
	summary.Releases = tracker.Releases()
	summary.Balanced = tracker.Balanced()
	p.summary(summary)
	if p.err != nil {
		return nil, fmt.Errorf("write report: %w", p.err)
	}
	return summary, nil
}
