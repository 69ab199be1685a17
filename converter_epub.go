package htmd

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/beevik/etree"
)

// EpubConverter handles EPUB books. Each spine entry is one HTML document.
type EpubConverter struct {
	engine *Engine
}

// NewEpubConverter creates a new EpubConverter.
func NewEpubConverter(e *Engine) *EpubConverter {
	return &EpubConverter{engine: e}
}

func (c *EpubConverter) Accepts(info StreamInfo) bool {
	if info.Extension == ".epub" {
		return true
	}
	mime := strings.ToLower(info.MIMEType)
	return strings.HasPrefix(mime, "application/epub") || strings.HasPrefix(mime, "application/x-epub")
}

func (c *EpubConverter) Convert(reader io.ReadSeeker, info StreamInfo) (*DocumentConverterResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read EPUB: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open EPUB ZIP: %w", err)
	}

	opfPath, err := findOPFPath(zr)
	if err != nil {
		return nil, fmt.Errorf("find OPF: %w", err)
	}

	pkg, err := parseOPF(zr, opfPath)
	if err != nil {
		return nil, fmt.Errorf("parse OPF: %w", err)
	}

	result := &DocumentConverterResult{Title: pkg.meta.title}
	var md strings.Builder
	pkg.meta.writeTo(&md)

	htmlConv := NewHTMLConverter(c.engine)
	opfDir := path.Dir(opfPath)

	for _, idref := range pkg.spine {
		item, ok := pkg.manifest[idref]
		if !ok || !item.isHTML() {
			continue
		}

		href := item.href
		if unescaped, err := url.PathUnescape(href); err == nil {
			href = unescaped
		}
		doc, err := readZipFile(zr, path.Join(opfDir, href))
		if err != nil {
			c.engine.logger.Debug("skipping spine item", "href", item.href, "error", err)
			continue
		}

		converted, err := htmlConv.ConvertString(decodeHTML(doc, ""))
		if err != nil {
			if IsVisitorAbort(err) {
				return nil, err
			}
			continue
		}
		result.add(converted)
		if strings.TrimSpace(converted.Markdown) != "" {
			md.WriteString(converted.Markdown)
			md.WriteString("\n\n")
		}
	}

	result.Markdown = md.String()
	return result, nil
}

type epubMetadata struct {
	title       string
	authors     []string
	language    string
	publisher   string
	date        string
	description string
}

func (m epubMetadata) writeTo(b *strings.Builder) {
	if m.title != "" {
		fmt.Fprintf(b, "# %s\n\n", m.title)
	}
	if len(m.authors) > 0 {
		fmt.Fprintf(b, "**Authors:** %s\n\n", strings.Join(m.authors, ", "))
	}
	for _, field := range []struct{ label, value string }{
		{"Language", m.language},
		{"Publisher", m.publisher},
		{"Date", m.date},
		{"Description", m.description},
	} {
		if field.value != "" {
			fmt.Fprintf(b, "**%s:** %s\n\n", field.label, field.value)
		}
	}
}

type manifestItem struct {
	href      string
	mediaType string
}

func (i manifestItem) isHTML() bool {
	switch strings.ToLower(path.Ext(i.href)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return strings.Contains(i.mediaType, "html")
}

type opfPackage struct {
	meta     epubMetadata
	manifest map[string]manifestItem
	spine    []string
}

var errNoRootfile = errors.New("rootfile not found in container.xml")

// findOPFPath reads the package document location from META-INF/container.xml.
func findOPFPath(zr *zip.Reader) (string, error) {
	data, err := readZipFile(zr, "META-INF/container.xml")
	if err != nil {
		return "", err
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return "", err
	}
	for _, rf := range doc.FindElements("//rootfile") {
		if p := rf.SelectAttrValue("full-path", ""); p != "" {
			return p, nil
		}
	}
	return "", errNoRootfile
}

func parseOPF(zr *zip.Reader, opfPath string) (*opfPackage, error) {
	data, err := readZipFile(zr, opfPath)
	if err != nil {
		return nil, err
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}

	pkg := &opfPackage{manifest: make(map[string]manifestItem)}

	if md := doc.FindElement("//metadata"); md != nil {
		text := func(tag string) string {
			if el := md.FindElement(tag); el != nil {
				return strings.TrimSpace(el.Text())
			}
			return ""
		}
		pkg.meta.title = text("title")
		pkg.meta.language = text("language")
		pkg.meta.publisher = text("publisher")
		pkg.meta.date = text("date")
		pkg.meta.description = text("description")
		for _, el := range md.SelectElements("creator") {
			if name := strings.TrimSpace(el.Text()); name != "" {
				pkg.meta.authors = append(pkg.meta.authors, name)
			}
		}
	}

	for _, el := range doc.FindElements("//manifest/item") {
		id := el.SelectAttrValue("id", "")
		if id == "" {
			continue
		}
		pkg.manifest[id] = manifestItem{
			href:      el.SelectAttrValue("href", ""),
			mediaType: el.SelectAttrValue("media-type", ""),
		}
	}

	for _, el := range doc.FindElements("//spine/itemref") {
		if idref := el.SelectAttrValue("idref", ""); idref != "" {
			pkg.spine = append(pkg.spine, idref)
		}
	}

	return pkg, nil
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	name = strings.TrimPrefix(name, "/")
	for _, f := range zr.File {
		if f.Name == name {
			return readZipMember(f)
		}
	}
	return nil, fmt.Errorf("%s: not found in archive", name)
}
