package builder

import "github.com/foliopress/paginator/style"

// event is one recorded builder call.
type event struct {
	apply func(OutputBuilder) error
}

// BufferingBuilder records the event stream instead of building a tree,
// allowing a template engine to speculate: Flush replays everything into a
// real builder, Discard rolls the stream back.
type BufferingBuilder struct {
	events []event
}

// NewBufferingBuilder constructs an empty buffer.
func NewBufferingBuilder() *BufferingBuilder {
	return &BufferingBuilder{}
}

func (b *BufferingBuilder) record(apply func(OutputBuilder) error) error {
	b.events = append(b.events, event{apply: apply})
	return nil
}

// Flush replays the recorded events into out, stopping at the first error.
// The buffer is cleared on success.
func (b *BufferingBuilder) Flush(out OutputBuilder) error {
	for _, e := range b.events {
		if err := e.apply(out); err != nil {
			return err
		}
	}
	b.events = b.events[:0]
	return nil
}

// Discard drops every recorded event.
func (b *BufferingBuilder) Discard() {
	b.events = b.events[:0]
}

// Len returns the number of buffered events.
func (b *BufferingBuilder) Len() int { return len(b.events) }

func (b *BufferingBuilder) StartBlock() error {
	return b.record(func(o OutputBuilder) error { return o.StartBlock() })
}
func (b *BufferingBuilder) EndBlock() error {
	return b.record(func(o OutputBuilder) error { return o.EndBlock() })
}
func (b *BufferingBuilder) StartFlex() error {
	return b.record(func(o OutputBuilder) error { return o.StartFlex() })
}
func (b *BufferingBuilder) EndFlex() error {
	return b.record(func(o OutputBuilder) error { return o.EndFlex() })
}
func (b *BufferingBuilder) StartParagraph() error {
	return b.record(func(o OutputBuilder) error { return o.StartParagraph() })
}
func (b *BufferingBuilder) EndParagraph() error {
	return b.record(func(o OutputBuilder) error { return o.EndParagraph() })
}
func (b *BufferingBuilder) StartList() error {
	return b.record(func(o OutputBuilder) error { return o.StartList() })
}
func (b *BufferingBuilder) EndList() error {
	return b.record(func(o OutputBuilder) error { return o.EndList() })
}
func (b *BufferingBuilder) StartListItem() error {
	return b.record(func(o OutputBuilder) error { return o.StartListItem() })
}
func (b *BufferingBuilder) EndListItem() error {
	return b.record(func(o OutputBuilder) error { return o.EndListItem() })
}
func (b *BufferingBuilder) StartTable() error {
	return b.record(func(o OutputBuilder) error { return o.StartTable() })
}
func (b *BufferingBuilder) EndTable() error {
	return b.record(func(o OutputBuilder) error { return o.EndTable() })
}
func (b *BufferingBuilder) SetTableColumns(widths []style.Dimension) error {
	cp := append([]style.Dimension(nil), widths...)
	return b.record(func(o OutputBuilder) error { return o.SetTableColumns(cp) })
}
func (b *BufferingBuilder) StartTableRow() error {
	return b.record(func(o OutputBuilder) error { return o.StartTableRow() })
}
func (b *BufferingBuilder) EndTableRow() error {
	return b.record(func(o OutputBuilder) error { return o.EndTableRow() })
}
func (b *BufferingBuilder) StartTableCell() error {
	return b.record(func(o OutputBuilder) error { return o.StartTableCell() })
}
func (b *BufferingBuilder) EndTableCell() error {
	return b.record(func(o OutputBuilder) error { return o.EndTableCell() })
}
func (b *BufferingBuilder) AddText(text string) error {
	return b.record(func(o OutputBuilder) error { return o.AddText(text) })
}
func (b *BufferingBuilder) StartHeading(level int, styles ...string) error {
	cp := append([]string(nil), styles...)
	return b.record(func(o OutputBuilder) error { return o.StartHeading(level, cp...) })
}
func (b *BufferingBuilder) EndHeading() error {
	return b.record(func(o OutputBuilder) error { return o.EndHeading() })
}
func (b *BufferingBuilder) AddPageBreak(master string) error {
	return b.record(func(o OutputBuilder) error { return o.AddPageBreak(master) })
}
func (b *BufferingBuilder) StartStyledSpan() error {
	return b.record(func(o OutputBuilder) error { return o.StartStyledSpan() })
}
func (b *BufferingBuilder) EndStyledSpan() error {
	return b.record(func(o OutputBuilder) error { return o.EndStyledSpan() })
}
func (b *BufferingBuilder) StartHyperlink(href string) error {
	return b.record(func(o OutputBuilder) error { return o.StartHyperlink(href) })
}
func (b *BufferingBuilder) EndHyperlink() error {
	return b.record(func(o OutputBuilder) error { return o.EndHyperlink() })
}
func (b *BufferingBuilder) SetAttribute(name, value string) error {
	return b.record(func(o OutputBuilder) error { return o.SetAttribute(name, value) })
}
func (b *BufferingBuilder) StartImage(src string) error {
	return b.record(func(o OutputBuilder) error { return o.StartImage(src) })
}
func (b *BufferingBuilder) EndImage() error {
	return b.record(func(o OutputBuilder) error { return o.EndImage() })
}

var _ OutputBuilder = (*TreeBuilder)(nil)
var _ OutputBuilder = (*BufferingBuilder)(nil)
