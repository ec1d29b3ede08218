package gmlgen

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/CognitoIQ/xsd2gml/xmltree"
)

// A Loader reads schema documents from files, directories and
// http(s) URLs.
type Loader struct {
	// Used for URL sources. If nil, http.DefaultClient is used.
	Client *http.Client
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Load reads and parses a single document from a file or URL.
func (l *Loader) Load(source string) (*xmltree.Element, error) {
	var (
		data []byte
		err  error
	)
	if isURL(source) {
		data, err = l.fetch(source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, err
	}
	root, err := xmltree.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	return root, nil
}

func (l *Loader) fetch(url string) ([]byte, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	rsp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer rsp.Body.Close()
	if rsp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, rsp.Status)
	}
	return io.ReadAll(rsp.Body)
}

// LoadAll loads every source in order. A directory source expands to
// the documents returned by LoadDir.
func (l *Loader) LoadAll(sources ...string) ([]*xmltree.Element, error) {
	var docs []*xmltree.Element
	for _, source := range sources {
		if !isURL(source) {
			if fi, err := os.Stat(source); err == nil && fi.IsDir() {
				dir, err := LoadDir(source)
				if err != nil {
					return nil, err
				}
				docs = append(docs, dir...)
				continue
			}
		}
		doc, err := l.Load(source)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// LoadDir loads every .xsd file in dir, sorted by file name.
func LoadDir(dir string) ([]*xmltree.Element, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.xsd"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .xsd files in %s", dir)
	}
	slices.Sort(files)
	var l Loader
	docs := make([]*xmltree.Element, 0, len(files))
	for _, name := range files {
		doc, err := l.Load(name)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
