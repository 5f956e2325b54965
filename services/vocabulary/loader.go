package vocabulary

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// CSV headers, as exported from the course spreadsheet
const (
	colTraditional = "Chinese (Traditional)"
	colPinyin      = "Pinyin"
	colEnglish     = "English Meaning"
	colCategory    = "Category"
	colLesson      = "Lesson"
	colPOS         = "POS"
)

var ErrUnsupportedFormat = errors.New("unsupported vocabulary file format")

// LoadFile reads a .csv or .yaml/.yml vocabulary file.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening vocabulary file: %w", err)
	}
	defer f.Close()

	var words []Word
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		words, err = ReadCSV(f)
	case ".yaml", ".yml":
		words, err = ReadYAML(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, err
	}
	return NewStore(words), nil
}

// ReadCSV parses the spreadsheet export. Unknown columns are ignored and
// missing ones read as empty.
func ReadCSV(r io.Reader) ([]Word, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading vocabulary header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		// NOTE: spreadsheet exports often start with a UTF-8 BOM
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	field := func(record []string, column string) string {
		i, ok := index[column]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var words []Word
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading vocabulary row: %w", err)
		}
		words = append(words, Word{
			Traditional: field(record, colTraditional),
			Pinyin:      field(record, colPinyin),
			English:     field(record, colEnglish),
			Category:    field(record, colCategory),
			Lesson:      parseLesson(field(record, colLesson)),
			POS:         field(record, colPOS),
		})
	}
	return words, nil
}

// ReadYAML parses either a bare list of words or a document with a
// top-level "words" key.
func ReadYAML(r io.Reader) ([]Word, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading vocabulary yaml: %w", err)
	}

	var doc struct {
		Words []Word `yaml:"words"`
	}
	if err := yaml.Unmarshal(data, &doc); err == nil && len(doc.Words) > 0 {
		return doc.Words, nil
	}

	var list []Word
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("error decoding vocabulary yaml: %w", err)
	}
	return list, nil
}

// Only plain digit strings count as a lesson number.
func parseLesson(s string) int {
	if s == "" {
		return 0
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
