package mock

import (
	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

var _ scrapsae.Converter = (*Converter)(nil)

// Converter is a mock implementation of scrapsae.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ scrapsae.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of scrapsae.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*scrapsae.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*scrapsae.ExtractResult, error) {
	return e.ExtractFn(html)
}
