// Package docx renders DOCX templates whose word/document.xml carries
// text/template actions, and builds minimal DOCX files from code.
//
// An action paragraph whose entire text is "{{p ...}}" is replaced by the bare
// action "{{...}}", so range/if/end can span whole paragraphs and tables.
// Actions must keep their opening "{{" within one run; Word may split the rest.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
	"text/template"
)

var (
	actionRe    = regexp.MustCompile(`(?s)\{\{.*?\}\}`)
	tagRe       = regexp.MustCompile(`<[^>]*>`)
	paragraphRe = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)
	textRunRe   = regexp.MustCompile(`(?s)<w:t(?:\s[^>]*)?>(.*?)</w:t>`)
	pActionRe   = regexp.MustCompile(`^\{\{p\s+(.+)\}\}$`)
)

// Render executes every templated part of the DOCX archive tmpl against data
// and returns the new archive. The rendered XML must be well-formed.
func Render(tmpl []byte, data any) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(tmpl), int64(len(tmpl)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	var found bool
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		if !isTemplated(f.Name) {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}
		if f.Name == "word/document.xml" {
			found = true
		}
		src, err := readFile(f)
		if err != nil {
			return nil, err
		}
		out, err := renderPart(f.Name, src, data)
		if err != nil {
			return nil, err
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate, Modified: f.Modified})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(out); err != nil {
			return nil, err
		}
	}
	if !found {
		return nil, errors.New("word/document.xml not found in archive")
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isTemplated(name string) bool {
	if name == "word/document.xml" {
		return true
	}
	return strings.HasPrefix(name, "word/") && strings.HasSuffix(name, ".xml") &&
		(strings.HasPrefix(name, "word/header") || strings.HasPrefix(name, "word/footer"))
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func renderPart(name string, src []byte, data any) ([]byte, error) {
	t, err := template.New(name).Funcs(Funcs()).Parse(Preprocess(string(src)))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	var out bytes.Buffer
	if err := t.Execute(&out, data); err != nil {
		return nil, fmt.Errorf("execute %s: %w", name, err)
	}
	if err := wellFormed(out.Bytes()); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return out.Bytes(), nil
}

// Preprocess turns WordprocessingML with embedded actions into a text/template
// source: markup inside actions is dropped, entities in actions are decoded and
// "{{p ...}}" paragraphs collapse to their action.
func Preprocess(src string) string {
	src = actionRe.ReplaceAllStringFunc(src, func(a string) string {
		return html.UnescapeString(tagRe.ReplaceAllString(a, ""))
	})
	return paragraphRe.ReplaceAllStringFunc(src, func(p string) string {
		var text strings.Builder
		for _, m := range textRunRe.FindAllStringSubmatch(p, -1) {
			text.WriteString(m[1])
		}
		if m := pActionRe.FindStringSubmatch(strings.TrimSpace(text.String())); m != nil {
			return "{{" + strings.TrimSpace(m[1]) + "}}"
		}
		return p
	})
}

func wellFormed(b []byte) error {
	d := xml.NewDecoder(bytes.NewReader(b))
	for {
		_, err := d.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// ReadText returns the visible text of a DOCX body, one line per paragraph.
func ReadText(doc []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("word/document.xml not found in archive")
	}
	src, err := readFile(docFile)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	var inText, inProps bool
	d := xml.NewDecoder(bytes.NewReader(src))
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "pPr":
				inProps = true
			case "tab":
				if !inProps {
					sb.WriteByte('\t')
				}
			case "br":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "pPr":
				inProps = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
