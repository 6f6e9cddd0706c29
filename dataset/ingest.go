package dataset

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/rulpipe/pkg/errors"
	"github.com/YuminosukeSato/rulpipe/pkg/log"
)

// Dataset bundles the three raw parts of one C-MAPSS subset: the run-to-
// failure training trajectories, the truncated test trajectories and the
// ground-truth RUL vector for the test units.
type Dataset struct {
	Subset   Subset
	Train    *Table
	Test     *Table
	RULTruth []float64
}

// Ingestor reads one C-MAPSS subset from raw storage.
type Ingestor interface {
	// Ingest locates and reads the subset's raw files below path.
	Ingest(path string, subset Subset) (*Dataset, error)
}

// NewIngestor selects an ingestor from the path type: a .zip file gets the
// archive ingestor, a directory the directory ingestor.
func NewIngestor(path string) (Ingestor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.NewDataNotFoundError(path, "*")
	}
	if info.IsDir() {
		return &DirIngestor{}, nil
	}
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return &ZipIngestor{}, nil
	}
	return nil, errors.NewValueError("dataset.NewIngestor",
		fmt.Sprintf("path %q is neither a .zip archive nor a directory", path))
}

func subsetFileNames(subset Subset) (train, test, rul string) {
	return fmt.Sprintf("train_%s.txt", subset),
		fmt.Sprintf("test_%s.txt", subset),
		fmt.Sprintf("RUL_%s.txt", subset)
}

// DirIngestor reads raw text files from a directory tree, matching by file
// name at any nesting depth.
type DirIngestor struct{}

// Ingest implements Ingestor.
func (d *DirIngestor) Ingest(path string, subset Subset) (*Dataset, error) {
	trainName, testName, rulName := subsetFileNames(subset)

	trainFiles, err := findFiles(path, trainName)
	if err != nil {
		return nil, err
	}
	testFiles, err := findFiles(path, testName)
	if err != nil {
		return nil, err
	}
	rulFiles, err := findFiles(path, rulName)
	if err != nil {
		return nil, err
	}

	cols := RawColumns()
	train, err := readSensorFiles(trainFiles, cols)
	if err != nil {
		return nil, err
	}
	test, err := readSensorFiles(testFiles, cols)
	if err != nil {
		return nil, err
	}
	rul, err := readRULFile(rulFiles[0])
	if err != nil {
		return nil, err
	}

	slog.Info("ingested subset",
		log.StageAttr("ingest"),
		slog.String("subset", string(subset)),
		slog.Int("train_rows", train.NumRows()),
		slog.Int("test_rows", test.NumRows()),
		slog.Int("rul_rows", len(rul)),
	)
	return &Dataset{Subset: subset, Train: train, Test: test, RULTruth: rul}, nil
}

// findFiles returns every file named name under root, sorted by path. A
// subset spanning several physical files is concatenated in this order.
func findFiles(root, name string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == name {
			matches = append(matches, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", root)
	}
	if len(matches) == 0 {
		return nil, errors.NewDataNotFoundError(root, name)
	}
	sort.Strings(matches)
	return matches, nil
}

// ZipIngestor extracts the subset's members from a zip archive into a
// scoped temporary directory and delegates to the directory ingestor. The
// temporary directory is removed on every exit path.
type ZipIngestor struct{}

// Ingest implements Ingestor.
func (z *ZipIngestor) Ingest(path string, subset Subset) (*Dataset, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening archive %s", path)
	}
	defer zr.Close()

	tmp, err := os.MkdirTemp("", "rulpipe-extract-*")
	if err != nil {
		return nil, errors.Wrap(err, "creating extraction dir")
	}
	defer os.RemoveAll(tmp)

	trainName, testName, rulName := subsetFileNames(subset)
	extracted := 0
	for _, wanted := range []string{trainName, testName, rulName} {
		found := false
		for _, member := range zr.File {
			if !matchesMember(member.Name, wanted) {
				continue
			}
			if err := extractMember(member, tmp); err != nil {
				return nil, err
			}
			found = true
			extracted++
		}
		if !found {
			return nil, errors.NewDataNotFoundError(path, wanted)
		}
	}
	slog.Debug("extracted archive members",
		log.StageAttr("ingest"),
		slog.String("archive", path),
		slog.Int("members", extracted),
	)

	return (&DirIngestor{}).Ingest(tmp, subset)
}

// matchesMember matches a zip member by file name regardless of the
// directory it is nested under inside the archive.
func matchesMember(member, name string) bool {
	member = strings.ReplaceAll(member, "\\", "/")
	return member == name || strings.HasSuffix(member, "/"+name)
}

func extractMember(member *zip.File, dir string) error {
	dest := filepath.Join(dir, filepath.FromSlash(member.Name))
	// Reject members that would escape the extraction dir.
	if rel, err := filepath.Rel(dir, dest); err != nil || strings.HasPrefix(rel, "..") {
		return errors.NewValueError("dataset.extractMember",
			fmt.Sprintf("archive member %q escapes extraction directory", member.Name))
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.Wrap(err, "creating extraction subdir")
	}
	src, err := member.Open()
	if err != nil {
		return errors.Wrapf(err, "opening archive member %s", member.Name)
	}
	defer src.Close()
	out, err := os.Create(dest)
	if err != nil {
		return errors.Wrapf(err, "creating %s", dest)
	}
	defer out.Close()
	if _, err := io.Copy(out, src); err != nil {
		return errors.Wrapf(err, "extracting %s", member.Name)
	}
	return nil
}

// readSensorFiles reads and concatenates whitespace-delimited sensor files,
// assigning the canonical column names.
func readSensorFiles(paths []string, cols []string) (*Table, error) {
	t := NewTable(cols)
	for _, p := range paths {
		if err := appendSensorFile(t, p, cols); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func appendSensorFile(t *Table, path string, cols []string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	row := make([]float64, len(cols))
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != len(cols) {
			return errors.NewFormatError(path, lineNo, len(cols), len(fields))
		}
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return errors.Wrapf(errors.NewFormatError(path, lineNo, len(cols), len(fields)),
					"parsing %q", field)
			}
			row[i] = v
		}
		if err := t.AppendRow(row); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	return nil
}

// readRULFile reads the one-column ground-truth RUL vector.
func readRULFile(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	var vals []float64
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 1 {
			return nil, errors.NewFormatError(path, lineNo, 1, len(fields))
		}
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, errors.Wrapf(errors.NewFormatError(path, lineNo, 1, len(fields)),
				"parsing %q", fields[0])
		}
		vals = append(vals, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return vals, nil
}
