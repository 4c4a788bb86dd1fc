package postprocess

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
)

type epubContainer struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type opfPackage struct {
	Manifest []struct {
		ID   string `xml:"id,attr"`
		Href string `xml:"href,attr"`
	} `xml:"manifest>item"`
	Spine []struct {
		IDRef string `xml:"idref,attr"`
	} `xml:"spine>itemref"`
}

// CountEpubPages returns the number of spine entries that resolve to a manifest
// item. The count stands in for a page count: it is stable for a given file
// and only loosely tracks the reading length. An itemref whose idref is not in
// the manifest is skipped, so the result can be lower than the raw number of
// <itemref> elements.
func CountEpubPages(epubPath string) (int, error) {
	r, err := zip.OpenReader(epubPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidEpub, err)
	}
	defer func() { _ = r.Close() }()

	var container epubContainer
	if err := decodeZipXML(&r.Reader, "META-INF/container.xml", &container); err != nil {
		return 0, err
	}
	if len(container.Rootfiles) == 0 || container.Rootfiles[0].FullPath == "" {
		return 0, fmt.Errorf("%w: container.xml has no rootfile", ErrInvalidEpub)
	}

	opfPath := path.Clean(container.Rootfiles[0].FullPath)
	var pkg opfPackage
	if err := decodeZipXML(&r.Reader, opfPath, &pkg); err != nil {
		return 0, err
	}

	manifest := make(map[string]bool, len(pkg.Manifest))
	for _, item := range pkg.Manifest {
		manifest[item.ID] = true
	}
	pages := 0
	for _, ref := range pkg.Spine {
		if ref.IDRef != "" && manifest[ref.IDRef] {
			pages++
		}
	}
	return pages, nil
}

func decodeZipXML(r *zip.Reader, name string, v any) error {
	f, err := r.Open(name)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrInvalidEpub, name, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrInvalidEpub, name, err)
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrInvalidEpub, name, err)
	}
	return nil
}
