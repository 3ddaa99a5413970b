// Package fs writes staged products to disk as Markdown files.
package fs

import (
	"os"
	"path/filepath"
	"strings"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

// ExportStore writes products to a directory with atomic update semantics.
// Files are saved to a temporary directory, then moved atomically on Commit,
// so a partially written export never replaces a previous one.
type ExportStore struct {
	baseDir string
	name    string
}

// NewExportStore creates a new ExportStore.
// baseDir is the parent directory, name is the output directory name.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewExportStore(baseDir, name string) *ExportStore {
	return &ExportStore{
		baseDir: baseDir,
		name:    name,
	}
}

func (s *ExportStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *ExportStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Save writes one product into the pending export.
func (s *ExportStore) Save(product *scrapsae.Product) error {
	relPath, err := ProductPath(product)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(s.tempDir(), relPath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	content := FormatProduct(product)
	return os.WriteFile(fullPath, []byte(content), 0644)
}

// Commit atomically replaces the final directory with the pending export.
func (s *ExportStore) Commit() error {
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort discards the pending export.
func (s *ExportStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}

// ProductPath returns the relative file path for a product. Products with a
// SKU are filed by SKU; products without one fall back to the path of the
// source URL, so an export never collides on the same deduplication key.
func ProductPath(product *scrapsae.Product) (string, error) {
	key := product.NormalizationKey()
	if key == "" {
		return "", scrapsae.Errorf(scrapsae.EINVALID, "product has no SKU or source URL")
	}

	if product.SKU != "" {
		return sanitizeName(product.SKU) + ".md", nil
	}

	path := strings.TrimPrefix(key, "https://")
	path = strings.TrimPrefix(path, "http://")
	path = strings.Trim(path, "/")
	if path == "" {
		return "index.md", nil
	}

	parts := strings.Split(path, "/")
	for i, part := range parts {
		parts[i] = sanitizeName(part)
	}
	return filepath.Join(parts...) + ".md", nil
}

// sanitizeName replaces characters unsafe for file names with dashes.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		default:
			return '-'
		}
	}, name)
}

// FormatProduct formats a product with YAML frontmatter followed by its
// Markdown description.
func FormatProduct(product *scrapsae.Product) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(product.SourceURL)
	b.WriteString("\ntitle: ")
	b.WriteString(product.Title)
	if product.SKU != "" {
		b.WriteString("\nsku: ")
		b.WriteString(product.SKU)
	}
	if product.Price != "" {
		b.WriteString("\nprice: ")
		b.WriteString(product.Price)
	}
	if product.ImageURL != "" {
		b.WriteString("\nimage: ")
		b.WriteString(product.ImageURL)
	}
	b.WriteString("\nextracted: ")
	b.WriteString(product.CreatedAt.Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	b.WriteString(product.Description)
	return b.String()
}
