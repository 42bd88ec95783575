package export

import (
	"log"
	"time"
)

type config struct {
	outDir       string
	templatePath string
	cTemplate    string
	dim          int
	format       NumberFormat
	now          func() time.Time
	logger       *log.Logger
}

func defaultConfig() config {
	return config{
		outDir:       ".",
		templatePath: DefaultTemplateName,
		format:       GeneralFormat,
		now:          time.Now,
	}
}

// Option configures an Exporter.
type Option func(*config)

// WithOutputDir sets the directory artifacts are written to.
func WithOutputDir(dir string) Option {
	return func(c *config) { c.outDir = dir }
}

// WithTemplate sets the 20-sim template path.
func WithTemplate(path string) Option {
	return func(c *config) { c.templatePath = path }
}

// WithCTemplate replaces the embedded C template with the file at path.
func WithCTemplate(path string) Option {
	return func(c *config) { c.cTemplate = path }
}

// WithDimension declares the input dimensionality instead of inferring it
// from the support vectors.
func WithDimension(d int) Option {
	return func(c *config) { c.dim = d }
}

// WithNumberFormat sets how the 20-sim array literals are formatted.
func WithNumberFormat(nf NumberFormat) Option {
	return func(c *config) { c.format = nf }
}

// WithClock sets the time source of the %%time%% placeholder.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// WithLogger reports every failed export on l before it is returned.
func WithLogger(l *log.Logger) Option {
	return func(c *config) { c.logger = l }
}
