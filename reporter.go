package s3upload

import (
	"io"

	"github.com/fatih/color"
)

// reporter writes one console line per file.
type reporter struct {
	out     io.Writer
	success *color.Color
	planned *color.Color
}

func newReporter(out io.Writer, colored bool) *reporter {
	r := &reporter{
		out:     out,
		success: color.New(color.FgGreen),
		planned: color.New(color.FgCyan),
	}

	for _, c := range []*color.Color{r.success, r.planned} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return r
}

func (r *reporter) uploaded(path, bucket string) error {
	_, err := r.success.Fprintf(r.out, "Uploaded %s to S3 bucket %s\n", path, bucket)
	return err
}

func (r *reporter) wouldUpload(path, bucket string) error {
	_, err := r.planned.Fprintf(r.out, "Would upload %s to S3 bucket %s\n", path, bucket)
	return err
}
