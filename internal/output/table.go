package output

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
)

type TableFormatter struct{}

func (t *TableFormatter) Format(w io.Writer, data Data) error {
	if data.Verbose && data.SystemInfo != nil {
		printSystemInfo(w, data.SystemInfo)
	}

	if r := data.Result; r != nil {
		fmt.Fprintln(w, "RSA Demonstration")
		fmt.Fprintln(w, "=================")
		fmt.Fprintln(w)

		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Quantity", "Value"})
		table.SetBorder(false)
		table.SetCenterSeparator("|")
		table.SetColumnSeparator("|")
		table.SetRowSeparator("-")
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)

		rows := [][]string{
			{"p", r.Params.P.String()},
			{"q", r.Params.Q.String()},
			{"e", r.Params.E.String()},
			{"M", r.Params.M.String()},
			{"n", r.N.String()},
			{"phi(n)", r.Totient.String()},
			{"d", r.D.String()},
			{"C", r.Ciphertext.String()},
			{"decrypted", r.Decrypted.String()},
			{"match", fmt.Sprintf("%t", r.OK)},
			{"elapsed", formatDuration(r.Elapsed)},
		}
		for _, row := range rows {
			table.Append(row)
		}
		table.Render()

		if data.ShowTrace && len(r.Steps) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "Extended Euclidean steps for (%s, %s)\n", r.Params.E, r.Totient)
			fmt.Fprintln(w)

			steps := tablewriter.NewWriter(w)
			steps.SetHeader([]string{"Step", "Quotient", "Remainder", "X", "Y"})
			steps.SetBorder(false)
			steps.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			steps.SetAlignment(tablewriter.ALIGN_LEFT)
			for _, s := range r.Steps {
				steps.Append([]string{
					fmt.Sprintf("%d", s.Iteration),
					s.Quotient,
					s.Remainder,
					s.X,
					s.Y,
				})
			}
			steps.Render()
		}
	}

	if v := data.Verification; v != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Round-Trip Verification")
		fmt.Fprintln(w, "-----------------------")
		fmt.Fprintln(w)

		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{
			"Checked", "Failures", "Errors", "Inverse OK",
			"Total Time", "Avg", "Min", "Max", "Checks/Sec",
		})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.Append([]string{
			fmt.Sprintf("%d", v.Checked),
			fmt.Sprintf("%d", v.Failures),
			fmt.Sprintf("%d", v.Errors),
			fmt.Sprintf("%t", v.KeyInverseOK),
			formatDuration(v.TotalTime),
			formatDuration(v.AverageTime),
			formatDuration(v.MinTime),
			formatDuration(v.MaxTime),
			fmt.Sprintf("%.2f", v.ChecksPerSecond),
		})
		table.Render()
	}

	return nil
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.2fµs", float64(d.Nanoseconds())/1000)
	} else if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	} else if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	return fmt.Sprintf("%.2fm", d.Minutes())
}
