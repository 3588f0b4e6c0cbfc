package semantic

// Document is the write-side model of a report PDF: an ordered page list
// plus optional Info metadata. It carries exactly what the serializer needs
// and nothing it would ignore.
type Document struct {
	Pages []*Page
	Info  *DocumentInfo
}

// Page models a single output page. Every page carries its own MediaBox;
// report pages are sized per source image, so sizes vary within a document.
type Page struct {
	Index     int
	MediaBox  Rectangle
	Resources *Resources
	Contents  []ContentStream
}

// Rectangle represents a PDF rectangle in user-space units.
type Rectangle struct {
	LLX, LLY, URX, URY float64
}

// Width returns the horizontal extent.
func (r Rectangle) Width() float64 { return r.URX - r.LLX }

// Height returns the vertical extent.
func (r Rectangle) Height() float64 { return r.URY - r.LLY }

// Resources holds per-page resources. Report pages reference only image
// XObjects.
type Resources struct {
	XObjects map[string]Image
}

// Image is an image XObject: pixel dimensions plus encoded sample data.
// Filter names the encoding of Data; empty means raw samples that the
// serializer may compress itself.
type Image struct {
	Width            int
	Height           int
	ColorSpace       string // DeviceRGB or DeviceGray
	BitsPerComponent int
	Data             []byte
	Filter           string // e.g. DCTDecode
	SMask            *Image
}

// ContentStream is a sequence of operations on a page.
type ContentStream struct {
	Operations []Operation
}

// Operation represents a PDF operator and its operands.
type Operation struct {
	Operator string
	Operands []Operand
}

// Operand is a type-safe operand value.
type Operand interface {
	operand()
	Type() string
}

type NumberOperand struct{ Value float64 }

func (NumberOperand) operand()     {}
func (NumberOperand) Type() string { return "number" }

type NameOperand struct{ Value string }

func (NameOperand) operand()     {}
func (NameOperand) Type() string { return "name" }

type StringOperand struct{ Value []byte }

func (StringOperand) operand()     {}
func (StringOperand) Type() string { return "string" }

type ArrayOperand struct{ Values []Operand }

func (ArrayOperand) operand()     {}
func (ArrayOperand) Type() string { return "array" }

// DocumentInfo models /Info dictionary values.
type DocumentInfo struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Producer string
}
