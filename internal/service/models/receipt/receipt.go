// Package receipt defines the printer-independent directive language that
// documents are formatted into.
package receipt

// Kind identifies a directive.
type Kind int

const (
	KindAlign Kind = iota
	KindBold
	KindTextSize
	KindLine
	KindSeparator
	KindNewLine
	KindBarcode
	KindCut
)

func (k Kind) String() string {
	switch k {
	case KindAlign:
		return "align"
	case KindBold:
		return "bold"
	case KindTextSize:
		return "text-size"
	case KindLine:
		return "line"
	case KindSeparator:
		return "separator"
	case KindNewLine:
		return "new-line"
	case KindBarcode:
		return "barcode"
	case KindCut:
		return "cut"
	default:
		return "unknown"
	}
}

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
)

type TextSize int

const (
	SizeNormal TextSize = iota
	SizeDoubleHeight
)

type Symbology int

const (
	SymbologyCode128 Symbology = iota
)

// Directive is one printer instruction. Only the fields relevant to Kind
// are set.
type Directive struct {
	Kind      Kind
	Align     Alignment
	Bold      bool
	Size      TextSize
	Text      string
	Symbology Symbology
	// Fallback is printed as a line when the barcode cannot be rendered.
	Fallback string
}

// Document is an ordered directive sequence.
type Document struct {
	Name       string
	Directives []Directive
}

// Builder appends directives fluently.
type Builder struct {
	doc Document
}

func NewBuilder(name string) *Builder {
	return &Builder{doc: Document{Name: name}}
}

func (b *Builder) AlignLeft() *Builder {
	return b.add(Directive{Kind: KindAlign, Align: AlignLeft})
}

func (b *Builder) AlignCenter() *Builder {
	return b.add(Directive{Kind: KindAlign, Align: AlignCenter})
}

func (b *Builder) Bold(on bool) *Builder {
	return b.add(Directive{Kind: KindBold, Bold: on})
}

func (b *Builder) DoubleHeight() *Builder {
	return b.add(Directive{Kind: KindTextSize, Size: SizeDoubleHeight})
}

func (b *Builder) Normal() *Builder {
	return b.add(Directive{Kind: KindTextSize, Size: SizeNormal})
}

func (b *Builder) Line(text string) *Builder {
	return b.add(Directive{Kind: KindLine, Text: text})
}

func (b *Builder) Separator() *Builder {
	return b.add(Directive{Kind: KindSeparator})
}

func (b *Builder) NewLine() *Builder {
	return b.add(Directive{Kind: KindNewLine})
}

func (b *Builder) Barcode(payload string, sym Symbology, fallback string) *Builder {
	return b.add(Directive{Kind: KindBarcode, Text: payload, Symbology: sym, Fallback: fallback})
}

func (b *Builder) Cut() *Builder {
	return b.add(Directive{Kind: KindCut})
}

func (b *Builder) Document() Document {
	out := b.doc
	out.Directives = append([]Directive(nil), b.doc.Directives...)

	return out
}

func (b *Builder) add(d Directive) *Builder {
	b.doc.Directives = append(b.doc.Directives, d)

	return b
}

// WithoutBarcodes returns a copy of the document where every barcode is
// replaced by a line holding its fallback text.
func (d Document) WithoutBarcodes() Document {
	out := Document{Name: d.Name, Directives: make([]Directive, 0, len(d.Directives))}
	for _, dir := range d.Directives {
		if dir.Kind == KindBarcode {
			out.Directives = append(out.Directives, Directive{Kind: KindLine, Text: dir.Fallback})

			continue
		}
		out.Directives = append(out.Directives, dir)
	}

	return out
}

// HasBarcode reports whether the document contains a barcode directive.
func (d Document) HasBarcode() bool {
	for _, dir := range d.Directives {
		if dir.Kind == KindBarcode {
			return true
		}
	}

	return false
}

// Lines returns the text of every line directive, in order. Useful for
// previews and tests.
func (d Document) Lines() []string {
	var out []string
	for _, dir := range d.Directives {
		if dir.Kind == KindLine {
			out = append(out, dir.Text)
		}
	}

	return out
}
