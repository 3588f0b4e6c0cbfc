package writer

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/gradesheet/gradesheet/ir/raw"
	"github.com/gradesheet/gradesheet/ir/semantic"
)

type impl struct{ interceptors []Interceptor }

func (w *impl) SerializeObject(ref raw.ObjectRef, obj raw.Object) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d obj\n", ref.Num, ref.Gen)
	buf.Write(serializePrimitive(obj))
	buf.WriteString("\nendobj\n")
	return buf.Bytes(), nil
}

func (w *impl) Write(ctx Context, doc *semantic.Document, out WriterAt, cfg Config) error {
	if doc == nil {
		return fmt.Errorf("writer: nil document")
	}
	version := cfg.Version
	if version == "" {
		version = PDF17
	}

	objects := make(map[raw.ObjectRef]raw.Object)
	objNum := 1
	next := func() raw.ObjectRef {
		ref := raw.ObjectRef{Num: objNum}
		objNum++
		return ref
	}

	catalogRef := next()
	pagesRef := next()

	var infoRef raw.ObjectRef
	if doc.Info != nil {
		infoRef = next()
		objects[infoRef] = infoDict(doc.Info)
	}

	pageRefs := make([]raw.ObjectRef, 0, len(doc.Pages))
	for _, p := range doc.Pages {
		var content bytes.Buffer
		for _, cs := range p.Contents {
			serializeOperations(&content, cs.Operations)
		}
		data := content.Bytes()
		contentDict := raw.Dict()
		if cfg.ContentFilter == FilterFlate && len(data) > 0 {
			data = flateCompress(data)
			contentDict.Set(raw.NameLiteral("Filter"), raw.NameLiteral("FlateDecode"))
		}
		contentDict.Set(raw.NameLiteral("Length"), raw.NumberInt(int64(len(data))))
		contentRef := next()
		objects[contentRef] = raw.NewStream(contentDict, data)

		resDict := raw.Dict()
		if p.Resources != nil && len(p.Resources.XObjects) > 0 {
			xobjDict := raw.Dict()
			names := make([]string, 0, len(p.Resources.XObjects))
			for name := range p.Resources.XObjects {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				img := p.Resources.XObjects[name]
				imgRef := addImage(objects, next, img, cfg)
				xobjDict.Set(raw.NameLiteral(name), raw.Ref(imgRef.Num, 0))
			}
			resDict.Set(raw.NameLiteral("XObject"), xobjDict)
		}

		pageRef := next()
		pageRefs = append(pageRefs, pageRef)
		pageDict := raw.Dict()
		pageDict.Set(raw.NameLiteral("Type"), raw.NameLiteral("Page"))
		pageDict.Set(raw.NameLiteral("Parent"), raw.Ref(pagesRef.Num, 0))
		pageDict.Set(raw.NameLiteral("MediaBox"), raw.NewArray(
			number(p.MediaBox.LLX),
			number(p.MediaBox.LLY),
			number(p.MediaBox.URX),
			number(p.MediaBox.URY),
		))
		pageDict.Set(raw.NameLiteral("Resources"), resDict)
		pageDict.Set(raw.NameLiteral("Contents"), raw.Ref(contentRef.Num, 0))
		objects[pageRef] = pageDict
	}

	kidsArr := raw.NewArray()
	for _, r := range pageRefs {
		kidsArr.Append(raw.Ref(r.Num, 0))
	}
	pagesDict := raw.Dict()
	pagesDict.Set(raw.NameLiteral("Type"), raw.NameLiteral("Pages"))
	pagesDict.Set(raw.NameLiteral("Count"), raw.NumberInt(int64(len(pageRefs))))
	pagesDict.Set(raw.NameLiteral("Kids"), kidsArr)
	objects[pagesRef] = pagesDict

	catalogDict := raw.Dict()
	catalogDict.Set(raw.NameLiteral("Type"), raw.NameLiteral("Catalog"))
	catalogDict.Set(raw.NameLiteral("Pages"), raw.Ref(pagesRef.Num, 0))
	objects[catalogRef] = catalogDict

	var buf bytes.Buffer
	buf.WriteString("%PDF-" + string(version) + "\n%\xE2\xE3\xCF\xD3\n")
	offsets := make(map[int]int64)

	ordered := make([]raw.ObjectRef, 0, len(objects))
	for ref := range objects {
		ordered = append(ordered, ref)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Num < ordered[j].Num })
	for _, ref := range ordered {
		select {
		case <-ctx.Done():
			return fmt.Errorf("writer: canceled")
		default:
		}
		obj := objects[ref]
		for _, ic := range w.interceptors {
			if err := ic.BeforeWrite(ctx, obj); err != nil {
				return fmt.Errorf("writer: interceptor: %w", err)
			}
		}
		offset := int64(buf.Len())
		serialized, err := w.SerializeObject(ref, obj)
		if err != nil {
			return err
		}
		buf.Write(serialized)
		offsets[ref.Num] = offset
		for _, ic := range w.interceptors {
			if err := ic.AfterWrite(ctx, obj, int64(len(serialized))); err != nil {
				return fmt.Errorf("writer: interceptor: %w", err)
			}
		}
	}

	xrefOffset := buf.Len()
	maxObjNum := ordered[len(ordered)-1].Num
	fmt.Fprintf(&buf, "xref\n0 %d\n", maxObjNum+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= maxObjNum; i++ {
		if off, ok := offsets[i]; ok {
			fmt.Fprintf(&buf, "%010d 00000 n \n", off)
		} else {
			buf.WriteString("0000000000 65535 f \n")
		}
	}

	buf.WriteString("trailer\n<<")
	fmt.Fprintf(&buf, "/Size %d ", maxObjNum+1)
	fmt.Fprintf(&buf, "/Root %d 0 R", catalogRef.Num)
	if doc.Info != nil {
		fmt.Fprintf(&buf, " /Info %d 0 R", infoRef.Num)
	}
	buf.WriteString(">>\nstartxref\n")
	fmt.Fprintf(&buf, "%d\n%%%%EOF\n", xrefOffset)

	_, err := out.Write(buf.Bytes())
	return err
}

// addImage emits an image XObject (and its soft mask, when present) and
// returns the object reference. Pre-filtered data passes through; raw
// samples are Flate-compressed when the config asks for it.
func addImage(objects map[raw.ObjectRef]raw.Object, next func() raw.ObjectRef, img semantic.Image, cfg Config) raw.ObjectRef {
	var smaskRef *raw.ObjectRef
	if img.SMask != nil {
		r := addImage(objects, next, *img.SMask, cfg)
		smaskRef = &r
	}

	data := img.Data
	filter := img.Filter
	if filter == "" && cfg.ContentFilter == FilterFlate && len(data) > 0 {
		data = flateCompress(data)
		filter = "FlateDecode"
	}

	dict := raw.Dict()
	dict.Set(raw.NameLiteral("Type"), raw.NameLiteral("XObject"))
	dict.Set(raw.NameLiteral("Subtype"), raw.NameLiteral("Image"))
	dict.Set(raw.NameLiteral("Width"), raw.NumberInt(int64(img.Width)))
	dict.Set(raw.NameLiteral("Height"), raw.NumberInt(int64(img.Height)))
	dict.Set(raw.NameLiteral("ColorSpace"), raw.NameLiteral(colorSpaceName(img.ColorSpace)))
	dict.Set(raw.NameLiteral("BitsPerComponent"), raw.NumberInt(int64(img.BitsPerComponent)))
	if filter != "" {
		dict.Set(raw.NameLiteral("Filter"), raw.NameLiteral(filter))
	}
	dict.Set(raw.NameLiteral("Length"), raw.NumberInt(int64(len(data))))
	if smaskRef != nil {
		dict.Set(raw.NameLiteral("SMask"), raw.Ref(smaskRef.Num, 0))
	}

	ref := next()
	objects[ref] = raw.NewStream(dict, data)
	return ref
}

func infoDict(info *semantic.DocumentInfo) *raw.DictObj {
	d := raw.Dict()
	set := func(key, val string) {
		if val != "" {
			d.Set(raw.NameLiteral(key), raw.Str([]byte(val)))
		}
	}
	set("Title", info.Title)
	set("Author", info.Author)
	set("Subject", info.Subject)
	set("Creator", info.Creator)
	set("Producer", info.Producer)
	return d
}

func colorSpaceName(name string) string {
	if name == "" {
		return "DeviceRGB"
	}
	return name
}

func flateCompress(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write(data)
	zw.Close()
	return buf.Bytes()
}

func serializeOperations(buf *bytes.Buffer, ops []semantic.Operation) {
	for _, op := range ops {
		for _, operand := range op.Operands {
			writeOperand(buf, operand)
			buf.WriteByte(' ')
		}
		buf.WriteString(op.Operator)
		buf.WriteByte('\n')
	}
}

func writeOperand(buf *bytes.Buffer, o semantic.Operand) {
	switch v := o.(type) {
	case semantic.NumberOperand:
		buf.WriteString(formatNumber(v.Value))
	case semantic.NameOperand:
		buf.WriteString("/" + v.Value)
	case semantic.StringOperand:
		buf.WriteByte('(')
		buf.Write(escapeString(v.Value))
		buf.WriteByte(')')
	case semantic.ArrayOperand:
		buf.WriteByte('[')
		for i, item := range v.Values {
			if i > 0 {
				buf.WriteByte(' ')
			}
			writeOperand(buf, item)
		}
		buf.WriteByte(']')
	}
}

// formatNumber renders a PDF numeric literal. Exponent notation is not
// legal in PDF, so reals always use fixed notation.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func escapeString(s []byte) []byte {
	out := make([]byte, 0, len(s))
	for _, b := range s {
		switch b {
		case '\\', '(', ')':
			out = append(out, '\\', b)
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		default:
			out = append(out, b)
		}
	}
	return out
}

func serializePrimitive(o raw.Object) []byte {
	switch v := o.(type) {
	case raw.NameObj:
		return []byte("/" + v.Value())
	case raw.NumberObj:
		if v.IsInteger() {
			return []byte(strconv.FormatInt(v.Int(), 10))
		}
		return []byte(formatNumber(v.Float()))
	case raw.BoolObj:
		if v.Value() {
			return []byte("true")
		}
		return []byte("false")
	case raw.NullObj:
		return []byte("null")
	case raw.StringObj:
		var b bytes.Buffer
		b.WriteByte('(')
		b.Write(escapeString(v.Value()))
		b.WriteByte(')')
		return b.Bytes()
	case *raw.ArrayObj:
		var b bytes.Buffer
		b.WriteByte('[')
		for i, it := range v.Items {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.Write(serializePrimitive(it))
		}
		b.WriteByte(']')
		return b.Bytes()
	case *raw.DictObj:
		var b bytes.Buffer
		b.WriteString("<<")
		keys := make([]string, 0, len(v.KV))
		for k := range v.KV {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString("/" + k + " ")
			b.Write(serializePrimitive(v.KV[k]))
		}
		b.WriteString(">>")
		return b.Bytes()
	case *raw.StreamObj:
		var b bytes.Buffer
		b.Write(serializePrimitive(v.Dict))
		b.WriteString("stream\n")
		b.Write(v.Data)
		b.WriteString("\nendstream")
		return b.Bytes()
	case raw.RefObj:
		return []byte(fmt.Sprintf("%d %d R", v.Ref().Num, v.Ref().Gen))
	default:
		return []byte("null")
	}
}

// number picks the integer form when the value is whole, keeping MediaBox
// entries compact.
func number(f float64) raw.Object {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return raw.NumberInt(int64(f))
	}
	return raw.NumberFloat(f)
}
