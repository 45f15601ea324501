package pipeline

import (
	stderrors "errors"
	"io/fs"

	"github.com/matzehuels/orgtower/pkg/dag"
	"github.com/matzehuels/orgtower/pkg/dag/build"
	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/rows"
)

// LoadRows returns the rows selected by opts: opts.Rows when set,
// otherwise the rows read from opts.Source. The active-only filter is
// applied in both cases.
func LoadRows(opts Options) ([]rows.Row, error) {
	rs := opts.Rows
	if rs == nil {
		if err := errors.ValidateRowSource(opts.Source); err != nil {
			return nil, err
		}
		var err error
		rs, err = rows.ReadFile(opts.Source)
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "row source %s not found", opts.Source)
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRowSource, err, "read %s", opts.Source)
		}
	}
	return rows.Filter(rs, opts.ActiveOnly), nil
}

// Build merges rows into a governance graph. Data-quality fallbacks are
// logged at warn level and returned in the report.
func Build(rs []rows.Row, opts Options) (*dag.DAG, build.Report) {
	opts.setLogger()
	g, report := build.Build(rs, build.Options{
		RootID:   opts.RootID,
		RootName: opts.RootName,
		Logger:   opts.Logger,
	})
	if !report.Clean() {
		opts.Logger.Warn("data-quality fallbacks", "report", report.String())
	}
	return g, report
}
