package output

import (
	"fmt"
	"io"

	"github.com/user/rsacalc/internal/rsacore"
	"github.com/user/rsacalc/internal/verify"
	"github.com/user/rsacalc/pkg/sysinfo"
)

type Data struct {
	SystemInfo   *sysinfo.SystemInfo
	Result       *rsacore.Result
	Verification *verify.Result
	ShowTrace    bool
	Verbose      bool
}

type Formatter interface {
	Format(w io.Writer, data Data) error
}

func NewFormatter(format string) (Formatter, error) {
	switch format {
	case "text":
		return &TextFormatter{}, nil
	case "table":
		return &TableFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	case "csv":
		return &CSVFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
