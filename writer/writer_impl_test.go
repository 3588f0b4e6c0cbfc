package writer

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/gradesheet/gradesheet/ir/raw"
	"github.com/gradesheet/gradesheet/ir/semantic"
)

func twoPageDoc() *semantic.Document {
	jpeg := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}
	img := semantic.Image{
		Width:            40,
		Height:           30,
		ColorSpace:       "DeviceRGB",
		BitsPerComponent: 8,
		Filter:           "DCTDecode",
		Data:             jpeg,
	}
	page := func(w, h float64) *semantic.Page {
		return &semantic.Page{
			MediaBox: semantic.Rectangle{URX: w, URY: h},
			Resources: &semantic.Resources{
				XObjects: map[string]semantic.Image{"Im0": img},
			},
			Contents: []semantic.ContentStream{
				{
					Operations: []semantic.Operation{
						{Operator: "q"},
						{Operator: "cm", Operands: []semantic.Operand{
							semantic.NumberOperand{Value: w},
							semantic.NumberOperand{Value: 0},
							semantic.NumberOperand{Value: 0},
							semantic.NumberOperand{Value: h},
							semantic.NumberOperand{Value: 0},
							semantic.NumberOperand{Value: 0},
						}},
						{Operator: "Do", Operands: []semantic.Operand{semantic.NameOperand{Value: "Im0"}}},
						{Operator: "Q"},
					},
				},
			},
		}
	}
	return &semantic.Document{Pages: []*semantic.Page{page(290, 100), page(512, 384)}}
}

func TestWriteSkeleton(t *testing.T) {
	doc := twoPageDoc()
	var buf bytes.Buffer
	w := NewWriter()
	if err := w.Write(context.Background(), doc, &buf, Config{}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"%PDF-1.7",
		"/Type /Catalog",
		"/Type /Pages",
		"/Count 2",
		"/Type /Page",
		"[0 0 290 100]",
		"[0 0 512 384]",
		"/Subtype /Image",
		"/Filter /DCTDecode",
		"/Width 40",
		"/Height 30",
		"xref",
		"startxref",
		"%%EOF",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if !strings.HasSuffix(out, "%%EOF\n") {
		t.Errorf("output does not end with EOF marker")
	}
}

func TestWriteDeterministic(t *testing.T) {
	doc := twoPageDoc()
	w := NewWriter()
	var a, b bytes.Buffer
	if err := w.Write(context.Background(), doc, &a, Config{}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := w.Write(context.Background(), doc, &b, Config{}); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Errorf("two writes of the same document differ")
	}
}

func TestWriteInfoDictionary(t *testing.T) {
	doc := twoPageDoc()
	doc.Info = &semantic.DocumentInfo{Title: "Report s-042", Producer: "gradesheet"}
	var buf bytes.Buffer
	if err := NewWriter().Write(context.Background(), doc, &buf, Config{}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "/Title (Report s-042)") {
		t.Errorf("missing Title entry")
	}
	if !strings.Contains(out, "/Producer (gradesheet)") {
		t.Errorf("missing Producer entry")
	}
	if !strings.Contains(out, "/Info ") {
		t.Errorf("trailer missing Info reference")
	}
}

func TestWriteFlateContent(t *testing.T) {
	doc := twoPageDoc()
	var buf bytes.Buffer
	if err := NewWriter().Write(context.Background(), doc, &buf, Config{ContentFilter: FilterFlate}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !strings.Contains(buf.String(), "/Filter /FlateDecode") {
		t.Errorf("content stream not Flate encoded")
	}
}

func TestWriteSoftMask(t *testing.T) {
	doc := twoPageDoc()
	doc.Pages[0].Resources.XObjects["Im0"] = semantic.Image{
		Width: 2, Height: 2, ColorSpace: "DeviceRGB", BitsPerComponent: 8,
		Data: bytes.Repeat([]byte{0x80}, 12),
		SMask: &semantic.Image{
			Width: 2, Height: 2, ColorSpace: "DeviceGray", BitsPerComponent: 8,
			Data: []byte{0xff, 0x7f, 0x7f, 0xff},
		},
	}
	var buf bytes.Buffer
	if err := NewWriter().Write(context.Background(), doc, &buf, Config{}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "/SMask ") {
		t.Errorf("image dictionary missing SMask reference")
	}
	if !strings.Contains(out, "/ColorSpace /DeviceGray") {
		t.Errorf("soft mask not written in DeviceGray")
	}
}

type countingInterceptor struct {
	before int
	after  int
	bytes  int64
}

func (c *countingInterceptor) BeforeWrite(ctx Context, obj raw.Object) error {
	c.before++
	return nil
}

func (c *countingInterceptor) AfterWrite(ctx Context, obj raw.Object, n int64) error {
	c.after++
	c.bytes += n
	return nil
}

func TestWriteInterceptors(t *testing.T) {
	doc := twoPageDoc()
	ic := &countingInterceptor{}
	w := (&WriterBuilder{}).WithInterceptor(ic).Build()
	var buf bytes.Buffer
	if err := w.Write(context.Background(), doc, &buf, Config{}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if ic.before == 0 || ic.before != ic.after {
		t.Errorf("interceptor calls unbalanced: before=%d after=%d", ic.before, ic.after)
	}
	if ic.bytes == 0 {
		t.Errorf("interceptor saw no bytes")
	}
}

func TestWriteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	err := NewWriter().Write(ctx, twoPageDoc(), &buf, Config{})
	if err == nil {
		t.Fatalf("expected error from canceled context")
	}
}

func TestSerializeObjectSortedKeys(t *testing.T) {
	d := raw.Dict()
	d.Set(raw.NameLiteral("Zeta"), raw.NumberInt(1))
	d.Set(raw.NameLiteral("Alpha"), raw.NumberInt(2))
	d.Set(raw.NameLiteral("Mid"), raw.NumberInt(3))
	w := &impl{}
	out, err := w.SerializeObject(raw.ObjectRef{Num: 7}, d)
	if err != nil {
		t.Fatalf("SerializeObject failed: %v", err)
	}
	s := string(out)
	if !strings.HasPrefix(s, "7 0 obj\n") {
		t.Errorf("bad object header: %q", s)
	}
	ia, im, iz := strings.Index(s, "/Alpha"), strings.Index(s, "/Mid"), strings.Index(s, "/Zeta")
	if ia < 0 || im < 0 || iz < 0 || !(ia < im && im < iz) {
		t.Errorf("dictionary keys not sorted: %q", s)
	}
}

func TestSerializeObjectStream(t *testing.T) {
	d := raw.Dict()
	d.Set(raw.NameLiteral("Length"), raw.NumberInt(5))
	stream := raw.NewStream(d, []byte("hello"))
	out, err := (&impl{}).SerializeObject(raw.ObjectRef{Num: 3}, stream)
	if err != nil {
		t.Fatalf("SerializeObject failed: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "stream\nhello\nendstream") {
		t.Errorf("stream payload malformed: %q", s)
	}
}

func TestFormatNumberFixedNotation(t *testing.T) {
	cases := map[float64]string{
		0:         "0",
		290:       "290",
		0.5:       "0.5",
		0.0000001: "0.0000001",
		-12.25:    "-12.25",
	}
	for in, want := range cases {
		if got := formatNumber(in); got != want {
			t.Errorf("formatNumber(%v) = %q, want %q", in, got, want)
		}
	}
}
