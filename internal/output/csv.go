package output

import (
	"encoding/csv"
	"fmt"
	"io"
)

type CSVFormatter struct{}

func (c *CSVFormatter) Format(w io.Writer, data Data) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{
		"P", "Q", "E", "M",
		"N", "Totient", "D", "Ciphertext", "Decrypted", "Match",
		"VerifyChecked", "VerifyFailures", "VerifyErrors",
		"OS", "Architecture", "CPUModel", "CPUCores",
	}

	if err := writer.Write(header); err != nil {
		return err
	}

	row := make([]string, 0, len(header))
	if r := data.Result; r != nil {
		row = append(row,
			r.Params.P.String(), r.Params.Q.String(), r.Params.E.String(), r.Params.M.String(),
			r.N.String(), r.Totient.String(), r.D.String(),
			r.Ciphertext.String(), r.Decrypted.String(), fmt.Sprintf("%t", r.OK),
		)
	} else {
		row = append(row, "", "", "", "", "", "", "", "", "", "")
	}

	if v := data.Verification; v != nil {
		row = append(row,
			fmt.Sprintf("%d", v.Checked),
			fmt.Sprintf("%d", v.Failures),
			fmt.Sprintf("%d", v.Errors),
		)
	} else {
		row = append(row, "", "", "")
	}

	if info := data.SystemInfo; info != nil {
		row = append(row, info.OS, info.Architecture, info.CPUModel, fmt.Sprintf("%d", info.CPUCores))
	} else {
		row = append(row, "", "", "", "")
	}

	return writer.Write(row)
}
