// Package export names rendered artifacts and packs them into an archive.
package export

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/Mictilt/qrforge/writer/standard"
)

// maxNameLen caps the sanitised label, not counting the extension.
const maxNameLen = 50

var (
	ErrDuplicateName = errors.New("export: duplicate file name")
	ErrEmptyName     = errors.New("export: empty file name")
)

// File is one named entry of an archive.
type File struct {
	Name string
	Data []byte
}

// Packager writes files into a single archive on w.
type Packager interface {
	Pack(w io.Writer, files []File) error
}

// PackagerFunc adapts a function to Packager.
type PackagerFunc func(w io.Writer, files []File) error

func (f PackagerFunc) Pack(w io.Writer, files []File) error {
	return f(w, files)
}

// ZipPackager writes a deflated ZIP archive with entries in the given order.
type ZipPackager struct{}

func (ZipPackager) Pack(w io.Writer, files []File) error {
	if err := checkNames(files); err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	for _, f := range files {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate})
		if err != nil {
			return errors.Wrapf(err, "export: add %s", f.Name)
		}
		if _, err = fw.Write(f.Data); err != nil {
			return errors.Wrapf(err, "export: write %s", f.Name)
		}
	}

	return errors.Wrap(zw.Close(), "export: finish archive")
}

func checkNames(files []File) error {
	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		if f.Name == "" {
			return ErrEmptyName
		}
		if _, ok := seen[f.Name]; ok {
			return errors.Wrap(ErrDuplicateName, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// Entry is an artifact waiting to be named.
type Entry struct {
	Index int
	Label string
	Data  []byte
}

// FileName is the sanitised label, or "qr-code-{index}" when there is no
// usable label, plus the format's extension.
func FileName(label string, index int, f standard.Format) string {
	base := Sanitize(label)
	if base == "" {
		base = fmt.Sprintf("qr-code-%d", index)
	}
	return base + "." + f.Extension()
}

// Files names entries with FileName. A name already taken gets "-{index}"
// appended to its base, so every returned name is unique.
func Files(entries []Entry, f standard.Format) []File {
	taken := make(map[string]struct{}, len(entries))
	out := make([]File, 0, len(entries))

	for _, e := range entries {
		name := FileName(e.Label, e.Index, f)
		for {
			if _, ok := taken[name]; !ok {
				break
			}
			name = strings.TrimSuffix(name, "."+f.Extension()) + fmt.Sprintf("-%d.", e.Index) + f.Extension()
		}
		taken[name] = struct{}{}
		out = append(out, File{Name: name, Data: e.Data})
	}
	return out
}

// Sanitize keeps ASCII letters, digits, '-', '_' and '.', replaces anything
// else with '_' and truncates to 50 characters. Names made only of dots are
// dropped.
func Sanitize(label string) string {
	label = strings.TrimSpace(label)

	var b strings.Builder
	n := 0
	for _, r := range label {
		if n == maxNameLen {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
		n++
	}

	s := b.String()
	if strings.Trim(s, ".") == "" {
		return ""
	}
	return s
}
