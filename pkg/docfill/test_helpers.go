// test_helpers.go contains functions that are exposed only for testing purposes.
// These should not be used in production code.

package docfill

import (
	"archive/zip"
	"bytes"
	"image/color"
	"io"
	"maps"

	"github.com/disintegration/imaging"
)

// BuildTestDOCX creates a minimal DOCX in memory whose body holds bodyXML.
// extra adds parts by name, such as word/fontTable.xml, or replaces one of
// the default parts.
func BuildTestDOCX(bodyXML string, extra map[string]string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	pending := maps.Clone(extra)
	write := func(name, content string) {
		if c, ok := pending[name]; ok {
			content = c
			delete(pending, name)
		}
		f, _ := w.Create(name)
		io.WriteString(f, content)
	}

	write("[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`)

	write("_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`)

	write("word/_rels/document.xml.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`)

	write("word/document.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`+bodyXML+`</w:body></w:document>`)

	for name, content := range pending {
		write(name, content)
	}

	w.Close()
	return buf.Bytes()
}

// BuildTestPNG returns a solid PNG of the given size.
func BuildTestPNG(width, height int) []byte {
	img := imaging.New(width, height, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
